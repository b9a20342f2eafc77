// Package document provides the document-tree provider: a parsed markup
// tree with per-node attribute access, navigation, source offsets, and
// enter/exit traversal of clause-like nodes in document order.
//
// The compiler core consumes only the Node interface surface; it never
// tokenizes raw markup itself.
package document

import "strings"

// Clause-like element tags.
const (
	TagClause = "spec-clause"
	TagAnnex  = "spec-annex"
	TagIntro  = "spec-intro"
)

// IsClauseLike reports whether a tag introduces a clause.
func IsClauseLike(tag string) bool {
	return tag == TagClause || tag == TagAnnex || tag == TagIntro
}

// Attr is one element attribute, order preserved.
type Attr struct {
	Name  string
	Value string
}

// Node is one element or text node. Text nodes have an empty Tag.
//
// StartOffset is the byte offset of the node's first byte in the
// original source. For elements, InnerStart/InnerEnd delimit the raw
// source between the start and end tags, so substring extraction
// preserves original byte offsets for diagnostics.
type Node struct {
	Tag   string
	Text  string
	Attrs []Attr

	StartOffset int64
	InnerStart  int64
	InnerEnd    int64

	parent   *Node
	children []*Node
}

// IsText reports whether the node is a text node.
func (n *Node) IsText() bool {
	return n.Tag == ""
}

// Attr returns the value of a named attribute and whether it exists.
func (n *Node) Attr(name string) (string, bool) {
	for _, a := range n.Attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// HasAttr reports attribute presence regardless of value.
func (n *Node) HasAttr(name string) bool {
	_, ok := n.Attr(name)
	return ok
}

// ID returns the id attribute, empty when absent.
func (n *Node) ID() string {
	id, _ := n.Attr("id")
	return id
}

// HasClass reports whether the class attribute contains a class.
func (n *Node) HasClass(class string) bool {
	v, ok := n.Attr("class")
	if !ok {
		return false
	}
	for _, c := range strings.Fields(v) {
		if c == class {
			return true
		}
	}
	return false
}

// Parent returns the parent node; nil at the synthetic root.
func (n *Node) Parent() *Node {
	return n.parent
}

// FirstChild returns the first child node, nil when there is none.
func (n *Node) FirstChild() *Node {
	if len(n.children) == 0 {
		return nil
	}
	return n.children[0]
}

// NextSibling returns the node following this one under the same
// parent, nil when this is the last child.
func (n *Node) NextSibling() *Node {
	if n.parent == nil {
		return nil
	}
	sibs := n.parent.children
	for i, s := range sibs {
		if s == n {
			if i+1 < len(sibs) {
				return sibs[i+1]
			}
			return nil
		}
	}
	return nil
}

// Children returns the node's children in document order.
func (n *Node) Children() []*Node {
	return n.children
}

// TextContent concatenates the text of the node's subtree.
func (n *Node) TextContent() string {
	var b strings.Builder
	n.appendText(&b)
	return b.String()
}

func (n *Node) appendText(b *strings.Builder) {
	if n.IsText() {
		b.WriteString(n.Text)
		return
	}
	for _, c := range n.children {
		c.appendText(b)
	}
}

// Visitor receives enter/exit events for clause-like nodes in document
// order. An error from either callback aborts the traversal.
type Visitor interface {
	Enter(n *Node) error
	Exit(n *Node) error
}

// TraverseClauses walks the subtree depth first, firing Enter/Exit for
// each clause-like element. Non-clause elements are descended through
// silently so clauses nested under structural wrappers still register.
func TraverseClauses(n *Node, v Visitor) error {
	clause := IsClauseLike(n.Tag)
	if clause {
		if err := v.Enter(n); err != nil {
			return err
		}
	}
	for _, c := range n.children {
		if c.IsText() {
			continue
		}
		if err := TraverseClauses(c, v); err != nil {
			return err
		}
	}
	if clause {
		return v.Exit(n)
	}
	return nil
}

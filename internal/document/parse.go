package document

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
)

// Document is a parsed markup document. Source keeps the original bytes
// so diagnostics can map offsets back to line and column.
type Document struct {
	Root   *Node
	Source string
}

// Parse builds the document tree from well-formed markup.
//
// The decoder is the stdlib XML tokenizer: it is the one parser that
// reports InputOffset, which the diagnostics contract needs for mapping
// failures back into the original source. Entities must be numeric;
// boolean attributes are written attr="".
func Parse(src []byte) (*Document, error) {
	d := xml.NewDecoder(bytes.NewReader(src))
	root := &Node{}
	cur := root

	for {
		before := d.InputOffset()
		tok, err := d.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("markup: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			n := &Node{
				Tag:         t.Name.Local,
				StartOffset: before,
				InnerStart:  d.InputOffset(),
				parent:      cur,
			}
			for _, a := range t.Attr {
				n.Attrs = append(n.Attrs, Attr{Name: a.Name.Local, Value: a.Value})
			}
			cur.children = append(cur.children, n)
			cur = n
		case xml.EndElement:
			if cur == root {
				return nil, fmt.Errorf("markup: unbalanced end tag </%s>", t.Name.Local)
			}
			cur.InnerEnd = before
			cur = cur.parent
		case xml.CharData:
			cur.children = append(cur.children, &Node{
				Text:        string(t),
				StartOffset: before,
				parent:      cur,
			})
		}
	}
	if cur != root {
		return nil, fmt.Errorf("markup: unclosed element <%s>", cur.Tag)
	}
	return &Document{Root: root, Source: string(src)}, nil
}

// RawInner returns the original source between a node's start and end
// tags, plus the byte offset of its first byte. Header compilation works
// on this substring so its diagnostics keep original positions.
func (d *Document) RawInner(n *Node) (string, int) {
	if n.InnerEnd < n.InnerStart {
		return "", int(n.InnerStart)
	}
	return d.Source[n.InnerStart:n.InnerEnd], int(n.InnerStart)
}

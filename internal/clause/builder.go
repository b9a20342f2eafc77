package clause

import (
	"fmt"
	"strings"

	"github.com/roach88/specmark/internal/biblio"
	"github.com/roach88/specmark/internal/diag"
	"github.com/roach88/specmark/internal/document"
	"github.com/roach88/specmark/internal/effects"
	"github.com/roach88/specmark/internal/header"
)

// Context carries the per-run compile state: the registry, worklist,
// and diagnostics sink are constructed at run start and threaded by
// reference so independent compiles never share state.
type Context struct {
	Doc      *document.Document
	Registry *biblio.Registry
	Worklist *effects.Worklist
	Sink     diag.Sink

	// RootNamespace is the whole-document namespace, already present in
	// Registry.
	RootNamespace string

	// Renderer, when set, is applied to every text run of a clause as it
	// finalizes. Nested clauses and opaque elements are left alone.
	Renderer document.InlineRenderer
}

// Builder constructs the clause tree. It implements document.Visitor:
// Enter creates, numbers, and pushes a clause; Exit compiles its
// header, finalizes notes and examples, registers bibliography entries,
// and pops it. The stack is the only structure mutated during traversal
// proper.
type Builder struct {
	ctx      *Context
	numberer Numberer
	stack    []*Clause

	// Root holds the top-level clauses in document order.
	Root []*Clause
}

// NewBuilder returns a builder for one compile run.
func NewBuilder(ctx *Context) *Builder {
	return &Builder{ctx: ctx}
}

// Enter handles the enter event for a clause-like node.
func (b *Builder) Enter(n *document.Node) error {
	if !document.IsClauseLike(n.Tag) {
		return fmt.Errorf("clause builder: unexpected element <%s>", n.Tag)
	}

	c := &Clause{
		ID:           n.ID(),
		node:         n,
		topLevel:     len(b.stack) == 0,
		IsAnnex:      n.Tag == document.TagAnnex,
		IsBackMatter: n.HasAttr("back-matter"),
		IsNormative:  n.HasAttr("normative"),
	}
	if c.ID == "" {
		b.ctx.Sink.Report(diag.Diagnostic{
			Severity: diag.SeverityWarning,
			Rule:     diag.RuleMissingID,
			Message:  "<" + n.Tag + "> has no id attribute",
		})
	}

	if kindAttr, ok := n.Attr("type"); ok {
		if kind, valid := biblio.ParseOpKind(kindAttr); valid {
			c.Kind = kind
		}
	}

	switch {
	case n.Tag == document.TagIntro, c.IsBackMatter:
		// Introduction and back-matter clauses never advance or consult
		// any counter.
	case c.IsAnnex && c.topLevel:
		c.Number = b.numberer.NextAnnex()
	default:
		c.Number = b.numberer.NextOrdinary(len(b.stack))
	}

	parentNS := b.ctx.RootNamespace
	parent := b.top()
	if parent != nil {
		parentNS = parent.Namespace
	}
	c.Namespace = parentNS
	if ns, ok := n.Attr("namespace"); ok && ns != "" {
		if err := b.ctx.Registry.CreateNamespace(ns, parentNS); err != nil {
			b.ctx.Sink.Report(diag.Diagnostic{
				Severity: diag.SeverityWarning,
				Rule:     diag.RuleDuplicateDefinition,
				Message:  err.Error(),
				NodeID:   c.ID,
			})
		}
		if b.ctx.Registry.HasNamespace(ns) {
			c.Namespace = ns
		}
	}

	if aoid, ok := n.Attr("aoid"); ok {
		c.explicitAoid = true
		if aoid == "" {
			c.Aoid = c.ID
		} else {
			c.Aoid = aoid
		}
	}

	if parent != nil {
		c.Parent = parent
		parent.Subclauses = append(parent.Subclauses, c)
	} else {
		b.Root = append(b.Root, c)
	}
	b.stack = append(b.stack, c)
	return nil
}

// Exit finalizes and pops the clause entered for n. The only fatal
// failure in the whole pipeline is a clause with no locatable header.
func (b *Builder) Exit(n *document.Node) error {
	c := b.top()
	if c == nil || c.node != n {
		return fmt.Errorf("clause builder: exit without matching enter for <%s id=%q>", n.Tag, n.ID())
	}
	b.stack = b.stack[:len(b.stack)-1]

	if b.ctx.Renderer != nil {
		document.SpliceInline(n, b.ctx.Renderer)
	}

	h1 := directChild(n, "h1")
	if h1 == nil {
		return fmt.Errorf("clause %q has no header", c.ID)
	}

	compiled := header.Compile(b.ctx.Doc, h1, c.Kind, c.ID, b.ctx.Sink)
	c.Title = compiled.Title
	if compiled.Structured {
		c.Signature = compiled.Signature
		c.Preamble = compiled.Preamble
		c.SkipGlobalChecks = compiled.SkipGlobalChecks
		c.SkipReturnChecks = compiled.SkipReturnChecks

		if c.explicitAoid {
			b.ctx.Sink.Report(diag.Diagnostic{
				Severity: diag.SeverityWarning,
				Rule:     diag.RuleRedundantAoid,
				Message:  "clause has both an explicit aoid and a structured header",
				NodeID:   c.ID,
			})
		} else if !compiled.Redefinition && c.Aoid == "" && compiled.Name != "" && c.Kind != biblio.OpNone {
			c.Aoid = compiled.Name
		}

		for _, effect := range compiled.Effects {
			c.Effects = append(c.Effects, effect)
			b.ctx.Worklist.Declare(effect, effects.Declaration{
				ClauseID:  c.ID,
				Aoid:      c.Aoid,
				Namespace: c.Namespace,
			})
		}
	}

	b.finalizeBlocks(c, n)
	b.applySpecialKinds(c, n)
	b.register(c)
	return nil
}

func (b *Builder) top() *Clause {
	if len(b.stack) == 0 {
		return nil
	}
	return b.stack[len(b.stack)-1]
}

func directChild(n *document.Node, tag string) *document.Node {
	for _, c := range n.Children() {
		if c.Tag == tag {
			return c
		}
	}
	return nil
}

// finalizeBlocks applies the note/example labeling rule: a lone block
// renders unlabeled, two or more get "1", "2", … in declaration order,
// and editor notes are always unlabeled. Notes and examples label
// independently.
func (b *Builder) finalizeBlocks(c *Clause, n *document.Node) {
	var notes, examples []*document.Node
	for _, child := range n.Children() {
		switch child.Tag {
		case "spec-note":
			notes = append(notes, child)
		case "spec-example":
			examples = append(examples, child)
		}
	}

	numbered := 0
	for _, note := range notes {
		if kind, _ := note.Attr("type"); kind != "editor" {
			numbered++
		}
	}
	seq := 0
	for _, note := range notes {
		label := ""
		if kind, _ := note.Attr("type"); kind != "editor" {
			seq++
			if numbered > 1 {
				label = fmt.Sprintf("%d", seq)
			}
		}
		c.Notes = append(c.Notes, Block{Label: label, Node: note})
	}

	for i, example := range examples {
		label := ""
		if len(examples) > 1 {
			label = fmt.Sprintf("%d", i+1)
		}
		c.Examples = append(c.Examples, Block{Label: label, Node: example})
	}
}

// specialKinds maps attribute names to their rendered labels, in
// rendering order.
var specialKinds = []struct {
	attr  string
	label string
}{
	{"normative-optional", "Normative Optional"},
	{"legacy", "Legacy"},
	{"deprecated", "Deprecated"},
}

func (b *Builder) applySpecialKinds(c *Clause, n *document.Node) {
	var labels []string
	for _, sk := range specialKinds {
		if n.HasAttr(sk.attr) {
			labels = append(labels, sk.label)
		}
	}
	if len(labels) == 0 {
		return
	}
	c.SpecialLabel = strings.Join(labels, ", ")
	b.ctx.Registry.RegisterTermLabel(c.SpecialLabel, c.Namespace)
}

// register adds the clause entry (always) and the op entry (when the
// clause has an aoid and it is not already taken in its namespace).
func (b *Builder) register(c *Clause) {
	b.ctx.Registry.Add(&biblio.Entry{
		Kind:   biblio.EntryClause,
		ID:     c.ID,
		Aoid:   c.Aoid,
		Title:  c.Title,
		Number: c.Number,
	}, c.Namespace)

	if c.Aoid == "" {
		return
	}
	if b.ctx.Registry.OpKeys(c.Namespace)[biblio.Canonical(c.Aoid)] {
		b.ctx.Sink.Report(diag.Diagnostic{
			Severity: diag.SeverityError,
			Rule:     diag.RuleDuplicateDefinition,
			Message:  fmt.Sprintf("%q is already defined in namespace %q", c.Aoid, c.Namespace),
			NodeID:   c.ID,
		})
		return
	}
	b.ctx.Registry.Add(&biblio.Entry{
		Kind:             biblio.EntryOp,
		Aoid:             c.Aoid,
		RefID:            c.ID,
		OpKind:           c.Kind,
		Signature:        c.Signature,
		Effects:          c.Effects,
		SkipGlobalChecks: c.SkipGlobalChecks,
		SkipReturnChecks: c.SkipReturnChecks,
	}, c.Namespace)
}

package document

import "strings"

// InlineRenderer turns a raw text run into rendered inline content.
// Implementations live outside the core; PassthroughRenderer is the
// default used when no renderer is configured.
type InlineRenderer interface {
	Render(text string) string
}

// PassthroughRenderer returns text runs unchanged.
type PassthroughRenderer struct{}

func (PassthroughRenderer) Render(text string) string { return text }

// opaqueTags are element kinds whose contents are never descended into
// for inline rendering: literal blocks, grammar productions, algorithm
// bodies, and nested clauses (which render on their own).
var opaqueTags = map[string]bool{
	"pre":          true,
	"code":         true,
	"spec-alg":     true,
	"spec-grammar": true,
	TagClause:      true,
	TagAnnex:       true,
	TagIntro:       true,
}

// SpliceInline rewrites every text run in the subtree through the
// renderer, preserving leading and trailing whitespace around each run
// verbatim. Opaque elements are skipped whole; the root node itself is
// processed even if its tag is clause-like.
func SpliceInline(n *Node, r InlineRenderer) {
	for _, c := range n.Children() {
		if c.IsText() {
			c.Text = spliceRun(c.Text, r)
			continue
		}
		if opaqueTags[c.Tag] {
			continue
		}
		SpliceInline(c, r)
	}
}

func spliceRun(text string, r InlineRenderer) string {
	core := strings.TrimSpace(text)
	if core == "" {
		return text
	}
	lead := text[:strings.Index(text, core)]
	trail := text[len(lead)+len(core):]
	return lead + r.Render(core) + trail
}

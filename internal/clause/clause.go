// Package clause builds the numbered clause tree. The builder consumes
// enter/exit traversal events in document order, numbers each clause,
// compiles structured headers, and writes bibliography entries and
// effect declarations as clauses finalize.
package clause

import (
	"github.com/roach88/specmark/internal/biblio"
	"github.com/roach88/specmark/internal/document"
	"github.com/roach88/specmark/internal/effects"
)

// Block is one finalized note or example. Label is empty for a lone
// block (and for editor notes); otherwise "1", "2", … in declaration
// order.
type Block struct {
	Label string
	Node  *document.Node
}

// Clause is one titled, numbered document section. Created on enter,
// mutated only during its own exit, immutable afterward.
type Clause struct {
	ID        string
	Namespace string
	Number    string
	Title     string
	Aoid      string
	Kind      biblio.OpKind

	Signature *biblio.Signature
	Effects   []string
	Preamble  []string

	IsAnnex          bool
	IsBackMatter     bool
	IsNormative      bool
	SkipGlobalChecks bool
	SkipReturnChecks bool

	// SpecialLabel is the comma-joined special-kind label (Normative
	// Optional, Legacy, Deprecated) rendered as the clause's first
	// child; empty when none apply.
	SpecialLabel string

	Notes    []Block
	Examples []Block

	// Parent is a non-owning back-reference; Subclauses is the single
	// owning container for children.
	Parent     *Clause
	Subclauses []*Clause

	node         *document.Node
	explicitAoid bool
	topLevel     bool
}

// SectionLabel returns the rendered section-number label: the dotted
// number path, "Annex X (normative|informative)" for top-level annexes,
// and empty for introduction and back-matter clauses.
func (c *Clause) SectionLabel() string {
	if c.Number == "" {
		return ""
	}
	if c.IsAnnex && c.topLevel {
		suffix := " (informative)"
		if c.IsNormative {
			suffix = " (normative)"
		}
		return "Annex " + c.Number + suffix
	}
	return c.Number
}

// CanUseEffect reports whether this clause may carry an effect. The
// one capability rule: static semantics clauses cannot declare
// user-code.
func (c *Clause) CanUseEffect(effect string) bool {
	return effects.CanDeclare(c.Title, effect)
}

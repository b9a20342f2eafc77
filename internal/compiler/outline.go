package compiler

import (
	"github.com/roach88/specmark/internal/biblio"
	"github.com/roach88/specmark/internal/clause"
)

// Outline is the serializable summary of a compile run: the numbered
// clause tree plus the per-namespace bibliography and the effect
// worklist. The CLI renders it, and golden tests pin it down.
type Outline struct {
	Title      string             `json:"title,omitempty"`
	Shortname  string             `json:"shortname,omitempty"`
	Clauses    []OutlineClause    `json:"clauses"`
	Namespaces []OutlineNamespace `json:"namespaces"`
	Effects    []OutlineEffect    `json:"effects,omitempty"`
}

// OutlineClause is one clause of the outline.
type OutlineClause struct {
	Label        string          `json:"label,omitempty"`
	Title        string          `json:"title"`
	ID           string          `json:"id,omitempty"`
	Aoid         string          `json:"aoid,omitempty"`
	Kind         string          `json:"kind,omitempty"`
	SpecialLabel string          `json:"special_label,omitempty"`
	Preamble     []string        `json:"preamble,omitempty"`
	Notes        []string        `json:"notes,omitempty"`
	Examples     []string        `json:"examples,omitempty"`
	Subclauses   []OutlineClause `json:"subclauses,omitempty"`
}

// OutlineNamespace is one namespace's bibliography dump in insertion
// order.
type OutlineNamespace struct {
	Name    string          `json:"name"`
	Parent  string          `json:"parent,omitempty"`
	Entries []*biblio.Entry `json:"entries,omitempty"`
}

// OutlineEffect is one effect's worklist in document order.
type OutlineEffect struct {
	Name      string   `json:"name"`
	ClauseIDs []string `json:"clause_ids"`
}

// Outline builds the outline for this result.
func (r *Result) Outline() Outline {
	out := Outline{
		Title:     r.Metadata.Title,
		Shortname: r.Metadata.Shortname,
		Clauses:   outlineClauses(r.Clauses),
	}
	for _, name := range r.Registry.Namespaces() {
		out.Namespaces = append(out.Namespaces, OutlineNamespace{
			Name:    name,
			Parent:  r.Registry.Parent(name),
			Entries: r.Registry.Entries(name),
		})
	}
	for _, effect := range r.Worklist.Effects() {
		oe := OutlineEffect{Name: effect}
		for _, d := range r.Worklist.Declarations(effect) {
			oe.ClauseIDs = append(oe.ClauseIDs, d.ClauseID)
		}
		out.Effects = append(out.Effects, oe)
	}
	return out
}

func outlineClauses(clauses []*clause.Clause) []OutlineClause {
	var out []OutlineClause
	for _, c := range clauses {
		oc := OutlineClause{
			Label:        c.SectionLabel(),
			Title:        c.Title,
			ID:           c.ID,
			Aoid:         c.Aoid,
			Kind:         string(c.Kind),
			SpecialLabel: c.SpecialLabel,
			Preamble:     c.Preamble,
			Subclauses:   outlineClauses(c.Subclauses),
		}
		for _, n := range c.Notes {
			oc.Notes = append(oc.Notes, blockLabel("Note", n.Label))
		}
		for _, e := range c.Examples {
			oc.Examples = append(oc.Examples, blockLabel("Example", e.Label))
		}
		out = append(out, oc)
	}
	return out
}

func blockLabel(kind, label string) string {
	if label == "" {
		return kind
	}
	return kind + " " + label
}

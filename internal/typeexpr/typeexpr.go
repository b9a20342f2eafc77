// Package typeexpr compiles the prose type notation used in structured
// headers ("a Number", "a List of Strings", "either a Number or an
// abrupt completion") into a tagged type tree.
package typeexpr

import "strings"

// Kind discriminates the Type union.
type Kind string

const (
	KindNamed      Kind = "named"
	KindList       Kind = "list"
	KindRecord     Kind = "record"
	KindUnion      Kind = "union"
	KindCompletion Kind = "completion"
)

// Type is one node of a compiled type tree. Exactly the fields relevant
// to Kind are set. Types are immutable once built.
type Type struct {
	Kind Kind `json:"kind"`

	// Name is the type name for KindNamed.
	Name string `json:"name,omitempty"`

	// Element is the element type for KindList.
	Element *Type `json:"element,omitempty"`

	// Fields are the ordered record fields for KindRecord.
	Fields []Field `json:"fields,omitempty"`

	// Members are the union members for KindUnion, at least two.
	Members []*Type `json:"members,omitempty"`

	// Inner is the wrapped value type for KindCompletion. Nil means a
	// generic or abrupt completion with no stated value type.
	Inner *Type `json:"inner,omitempty"`
}

// Field is a single named record field.
type Field struct {
	Name string `json:"name"`
	Type *Type  `json:"type"`
}

// IsCompletion reports whether t is a completion wrapper.
func (t *Type) IsCompletion() bool {
	return t != nil && t.Kind == KindCompletion
}

// MixesCompletion reports whether t is a union with at least one
// completion member and at least one non-completion member. Such return
// types are diagnosable: an algorithm either always returns completions
// or never does.
func (t *Type) MixesCompletion() bool {
	if t == nil || t.Kind != KindUnion {
		return false
	}
	completions, plain := 0, 0
	for _, m := range t.Members {
		if m.IsCompletion() {
			completions++
		} else {
			plain++
		}
	}
	return completions > 0 && plain > 0
}

// String renders the tree back into compact notation, without articles.
// Intended for diagnostics and test output, not for round-tripping.
func (t *Type) String() string {
	if t == nil {
		return ""
	}
	switch t.Kind {
	case KindNamed:
		return t.Name
	case KindList:
		return "List of " + t.Element.String()
	case KindRecord:
		var b strings.Builder
		b.WriteString("Record { ")
		for i, f := range t.Fields {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString("[[" + f.Name + "]]: " + f.Type.String())
		}
		b.WriteString(" }")
		return b.String()
	case KindUnion:
		parts := make([]string, len(t.Members))
		for i, m := range t.Members {
			parts[i] = m.String()
		}
		return strings.Join(parts, " or ")
	case KindCompletion:
		if t.Inner == nil {
			return "Completion Record"
		}
		return "normal completion containing " + t.Inner.String()
	}
	return ""
}

// Package biblio implements the namespace-scoped bibliography registry.
//
// Every compiled clause contributes one clause entry; clauses defining an
// operation additionally contribute one op entry keyed by aoid. Entries
// live in exactly the namespace they were registered in; lookups that
// miss locally fall back to the parent namespace, recursively, so a
// fragment compiled in a child namespace can reference everything its
// ancestors define without copying.
//
// This package contains type definitions and the in-memory registry. All
// other internal packages import biblio; biblio imports only typeexpr.
package biblio

import "github.com/roach88/specmark/internal/typeexpr"

// OpKind is the closed enumeration of operation kinds a clause may
// declare. Attribute strings are mapped onto this enum once, at parse
// time, instead of being re-compared at every use site.
type OpKind string

const (
	OpNone                  OpKind = ""
	OpAbstract              OpKind = "abstract operation"
	OpSyntaxDirected        OpKind = "syntax-directed operation"
	OpHostDefined           OpKind = "host-defined abstract operation"
	OpImplementationDefined OpKind = "implementation-defined abstract operation"
	OpNumericMethod         OpKind = "numeric method"
)

// ParseOpKind maps a type attribute value to its OpKind. The "sdo"
// shorthand is accepted as an alias. Unrecognized values report false.
func ParseOpKind(s string) (OpKind, bool) {
	switch s {
	case "":
		return OpNone, true
	case "abstract operation":
		return OpAbstract, true
	case "sdo", "syntax-directed operation":
		return OpSyntaxDirected, true
	case "host-defined abstract operation":
		return OpHostDefined, true
	case "implementation-defined abstract operation":
		return OpImplementationDefined, true
	case "numeric method":
		return OpNumericMethod, true
	}
	return OpNone, false
}

// Param is one formal parameter of a compiled signature. Type is nil
// when the header gave no annotation for the parameter.
type Param struct {
	Name string         `json:"name"`
	Type *typeexpr.Type `json:"type,omitempty"`
}

// Signature is the compiled formal signature of an operation. Immutable
// once built.
type Signature struct {
	Required []Param        `json:"required,omitempty"`
	Optional []Param        `json:"optional,omitempty"`
	Return   *typeexpr.Type `json:"return,omitempty"`
}

// EntryKind discriminates the Entry union.
type EntryKind string

const (
	EntryClause EntryKind = "clause"
	EntryOp     EntryKind = "op"
)

// Entry is one bibliography record: either a clause entry or an op
// entry.
//
// Clause entries use ID, Title, Number, and optionally Aoid. Op entries
// use Aoid, RefID, OpKind, Signature, Effects, and the skip flags.
type Entry struct {
	Kind EntryKind `json:"kind"`

	ID     string `json:"id,omitempty"`
	Title  string `json:"title,omitempty"`
	Number string `json:"number,omitempty"`

	Aoid             string     `json:"aoid,omitempty"`
	RefID            string     `json:"ref_id,omitempty"`
	OpKind           OpKind     `json:"op_kind,omitempty"`
	Signature        *Signature `json:"signature,omitempty"`
	Effects          []string   `json:"effects,omitempty"`
	SkipGlobalChecks bool       `json:"skip_global_checks,omitempty"`
	SkipReturnChecks bool       `json:"skip_return_checks,omitempty"`
}

// Key returns the key the entry is registered under within its
// namespace: the aoid for op entries, the clause id for clause entries.
func (e *Entry) Key() string {
	if e.Kind == EntryOp {
		return e.Aoid
	}
	return e.ID
}

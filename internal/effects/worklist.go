// Package effects collects effect declarations for the downstream
// call-graph propagation pass.
//
// The worklist is the collection contract only: which clauses directly
// declared which effect, in document order. Transitive propagation
// across algorithm call graphs happens in a later pass that consumes
// this structure.
package effects

import "strings"

// UserCode is the effect declared by algorithms that may call back into
// user-authored code.
const UserCode = "user-code"

// Declaration identifies one clause that declared an effect directly.
type Declaration struct {
	ClauseID  string `json:"clause_id"`
	Aoid      string `json:"aoid,omitempty"`
	Namespace string `json:"namespace"`
}

// Worklist maps effect name to the clauses that declared it, in
// document order. Append-only; constructed per compile run and threaded
// through the traversal, never package state.
type Worklist struct {
	byEffect map[string][]Declaration
	names    []string
}

// NewWorklist returns an empty worklist.
func NewWorklist() *Worklist {
	return &Worklist{byEffect: make(map[string][]Declaration)}
}

// Declare appends one declaration under an effect name. A clause may
// appear under several effect names.
func (w *Worklist) Declare(effect string, d Declaration) {
	if _, ok := w.byEffect[effect]; !ok {
		w.names = append(w.names, effect)
	}
	w.byEffect[effect] = append(w.byEffect[effect], d)
}

// Declarations returns the declarations for an effect in document
// order.
func (w *Worklist) Declarations(effect string) []Declaration {
	return w.byEffect[effect]
}

// Effects returns effect names in first-declaration order.
func (w *Worklist) Effects() []string {
	return w.names
}

// CanDeclare reports whether a clause with the given title may carry an
// effect. Static semantics clauses run during parsing, before any user
// code can exist, so they can never declare user-code. Declarations are
// recorded regardless; this query is answered where the effect is used.
func CanDeclare(clauseTitle, effect string) bool {
	if effect == UserCode && strings.HasPrefix(clauseTitle, "Static Semantics:") {
		return false
	}
	return true
}

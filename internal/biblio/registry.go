package biblio

import (
	"fmt"

	"golang.org/x/text/unicode/norm"
)

// Registry is the per-compile bibliography store. It is constructed at
// run start and threaded by reference through the traversal, never held
// as package state, so independent compiles in one process cannot
// interfere.
//
// Namespaces form a forest rooted at the whole-document namespace.
// Clause ids and op aoids occupy separate keyspaces within a namespace,
// so only aoid-vs-aoid collisions are detectable.
type Registry struct {
	namespaces map[string]*namespaceRec
	order      []string
}

type namespaceRec struct {
	name   string
	parent string

	// entries preserves insertion order, which equals document order
	// under the single-pass traversal. Later passes rely on that.
	entries    []*Entry
	ops        map[string]*Entry
	clauses    map[string]*Entry
	termLabels []string
}

// Canonical returns the NFC form of a key or namespace name. Authoring
// tools disagree about composed vs decomposed accents; normalizing at
// the registry boundary keeps lookups byte-comparable.
func Canonical(s string) string {
	return norm.NFC.String(s)
}

// NewRegistry creates a registry containing only the root namespace.
func NewRegistry(root string) *Registry {
	r := &Registry{namespaces: make(map[string]*namespaceRec)}
	r.addNamespace(Canonical(root), "")
	return r
}

func (r *Registry) addNamespace(name, parent string) {
	r.namespaces[name] = &namespaceRec{
		name:    name,
		parent:  parent,
		ops:     make(map[string]*Entry),
		clauses: make(map[string]*Entry),
	}
	r.order = append(r.order, name)
}

// CreateNamespace registers a namespace whose lookups fall back to
// parent. The parent must already exist; re-registering a name is an
// error.
func (r *Registry) CreateNamespace(name, parent string) error {
	name, parent = Canonical(name), Canonical(parent)
	if _, ok := r.namespaces[name]; ok {
		return fmt.Errorf("namespace %q already exists", name)
	}
	if _, ok := r.namespaces[parent]; !ok {
		return fmt.Errorf("parent namespace %q does not exist", parent)
	}
	r.addNamespace(name, parent)
	return nil
}

// HasNamespace reports whether a namespace is registered.
func (r *Registry) HasNamespace(name string) bool {
	_, ok := r.namespaces[Canonical(name)]
	return ok
}

// Add inserts an entry into exactly the given namespace. Entries never
// propagate to ancestor or descendant namespaces. Duplicate checking is
// the caller's job (via OpKeys) so the caller controls which definition
// wins and what diagnostic to emit.
func (r *Registry) Add(e *Entry, namespace string) error {
	ns, ok := r.namespaces[Canonical(namespace)]
	if !ok {
		return fmt.Errorf("unknown namespace %q", namespace)
	}
	ns.entries = append(ns.entries, e)
	switch e.Kind {
	case EntryOp:
		ns.ops[Canonical(e.Aoid)] = e
	case EntryClause:
		if e.ID != "" {
			ns.clauses[Canonical(e.ID)] = e
		}
	}
	return nil
}

// OpKeys returns the set of aoid keys directly present in a namespace,
// without parent fallback. Used for duplicate detection before insert.
func (r *Registry) OpKeys(namespace string) map[string]bool {
	keys := make(map[string]bool)
	if ns, ok := r.namespaces[Canonical(namespace)]; ok {
		for k := range ns.ops {
			keys[k] = true
		}
	}
	return keys
}

// LookupOp resolves an aoid starting at namespace and walking parents.
func (r *Registry) LookupOp(aoid, namespace string) (*Entry, bool) {
	return r.lookup(Canonical(aoid), Canonical(namespace), true)
}

// LookupClause resolves a clause id starting at namespace and walking
// parents.
func (r *Registry) LookupClause(id, namespace string) (*Entry, bool) {
	return r.lookup(Canonical(id), Canonical(namespace), false)
}

func (r *Registry) lookup(key, namespace string, op bool) (*Entry, bool) {
	for namespace != "" {
		ns, ok := r.namespaces[namespace]
		if !ok {
			return nil, false
		}
		table := ns.clauses
		if op {
			table = ns.ops
		}
		if e, ok := table[key]; ok {
			return e, true
		}
		namespace = ns.parent
	}
	return nil, false
}

// RegisterTermLabel records a special-kind label (Normative Optional,
// Legacy, Deprecated) in a namespace for the later inline cross-link
// scanning pass.
func (r *Registry) RegisterTermLabel(label, namespace string) {
	if ns, ok := r.namespaces[Canonical(namespace)]; ok {
		ns.termLabels = append(ns.termLabels, label)
	}
}

// TermLabels returns the labels registered in a namespace, in document
// order.
func (r *Registry) TermLabels(namespace string) []string {
	if ns, ok := r.namespaces[Canonical(namespace)]; ok {
		return ns.termLabels
	}
	return nil
}

// Namespaces returns namespace names in creation order.
func (r *Registry) Namespaces() []string {
	return r.order
}

// Parent returns the parent of a namespace; empty for the root.
func (r *Registry) Parent(namespace string) string {
	if ns, ok := r.namespaces[Canonical(namespace)]; ok {
		return ns.parent
	}
	return ""
}

// Entries returns a namespace's entries in insertion (document) order.
func (r *Registry) Entries(namespace string) []*Entry {
	if ns, ok := r.namespaces[Canonical(namespace)]; ok {
		return ns.entries
	}
	return nil
}

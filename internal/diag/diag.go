// Package diag provides the diagnostic records emitted during a compile
// and the append-only collector that gathers them.
//
// Diagnostics are never fatal: the compiler keeps traversing after every
// report so one malformed clause cannot take down the rest of the
// document. Severity and rule codes form closed sets decided here, not
// re-derived from strings at each call site.
package diag

import "fmt"

// Severity classifies a diagnostic.
type Severity string

const (
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Rule identifies the check that produced a diagnostic.
type Rule string

const (
	// RuleMissingID reports a clause-like element without an id attribute.
	RuleMissingID Rule = "missing-id"

	// RuleHeaderFormat reports a header that the header grammar could not
	// parse. The clause keeps its literal header text and no signature.
	RuleHeaderFormat Rule = "header-format"

	// RuleTypeParse reports a parameter or return type annotation the type
	// grammar could not parse.
	RuleTypeParse Rule = "type-parse"

	// RuleDuplicateDefinition reports a second definition of an aoid within
	// one namespace. The first definition wins.
	RuleDuplicateDefinition Rule = "duplicate-definition"

	// RuleNumericMethodName reports a numeric method whose name lacks the
	// "Type::operation" separator.
	RuleNumericMethodName Rule = "numeric-method-name"

	// RuleCompletionUnion reports a return type union mixing completion and
	// non-completion members.
	RuleCompletionUnion Rule = "completion-union"

	// RuleRedundantAoid reports an explicit aoid attribute on a clause that
	// also carries a structured header, which would have assigned one.
	RuleRedundantAoid Rule = "redundant-aoid"

	// RuleMetadata reports a malformed document metadata block.
	RuleMetadata Rule = "metadata"
)

// Diagnostic is a single report against a document node.
//
// Line and Col are 1-based positions into the original document source,
// present only when the producing check had a byte offset to map (parse
// failures do, structural checks usually do not).
type Diagnostic struct {
	Severity Severity `json:"severity"`
	Rule     Rule     `json:"rule"`
	Message  string   `json:"message"`
	NodeID   string   `json:"node_id,omitempty"`
	Line     int      `json:"line,omitempty"`
	Col      int      `json:"col,omitempty"`
}

// String renders the diagnostic in the conventional file:line:col form.
func (d Diagnostic) String() string {
	if d.Line > 0 {
		return fmt.Sprintf("%d:%d: %s: %s (%s)", d.Line, d.Col, d.Severity, d.Message, d.Rule)
	}
	if d.NodeID != "" {
		return fmt.Sprintf("%s: %s: %s (%s)", d.NodeID, d.Severity, d.Message, d.Rule)
	}
	return fmt.Sprintf("%s: %s (%s)", d.Severity, d.Message, d.Rule)
}

// Sink receives diagnostics. Every call is non-fatal.
type Sink interface {
	Report(Diagnostic)
}

// Collector is the standard Sink: an append-only list preserving report
// order, which equals document order under the single-pass traversal.
type Collector struct {
	diags []Diagnostic
}

// NewCollector returns an empty collector.
func NewCollector() *Collector {
	return &Collector{}
}

// Report appends one diagnostic.
func (c *Collector) Report(d Diagnostic) {
	c.diags = append(c.diags, d)
}

// All returns the collected diagnostics in report order.
func (c *Collector) All() []Diagnostic {
	return c.diags
}

// HasErrors reports whether any collected diagnostic is error severity.
func (c *Collector) HasErrors() bool {
	for _, d := range c.diags {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}

// CountByRule returns how many diagnostics were reported for a rule.
func (c *Collector) CountByRule(rule Rule) int {
	n := 0
	for _, d := range c.diags {
		if d.Rule == rule {
			n++
		}
	}
	return n
}

// Position converts a byte offset into src to a 1-based line and column.
// Column counts bytes, not runes, matching what editors do with the raw
// file. Offsets past the end of src clamp to the final position.
func Position(src string, offset int) (line, col int) {
	if offset > len(src) {
		offset = len(src)
	}
	line, col = 1, 1
	for i := 0; i < offset; i++ {
		if src[i] == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}
	return line, col
}

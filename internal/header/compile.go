package header

import (
	"strings"

	"github.com/roach88/specmark/internal/biblio"
	"github.com/roach88/specmark/internal/diag"
	"github.com/roach88/specmark/internal/document"
	"github.com/roach88/specmark/internal/typeexpr"
)

// Compiled is the result of compiling a clause's header. Title is
// always usable; the remaining fields are populated only when the
// clause had a structured header.
type Compiled struct {
	// Structured reports whether a header description list was found.
	Structured bool

	// Title is the finalized one-line header text.
	Title string

	// Name is the parsed operation name; empty when the header grammar
	// failed (consumers substitute PlaceholderName).
	Name string

	// Signature is nil when the header grammar failed.
	Signature *biblio.Signature

	// Fields consumed from the description list.
	Description      string
	For              string
	Effects          []string
	Redefinition     bool
	SkipGlobalChecks bool
	SkipReturnChecks bool

	// Preamble holds the synthesized paragraphs that replace the
	// description list in rendered output.
	Preamble []string
}

// Compile runs the structured-header pipeline for one clause: locate
// the description list, parse the header grammar, compile each type
// annotation, validate against the declared kind, consume the dl
// fields, and synthesize the preamble.
//
// Every failure is reported through sink and degrades gracefully; the
// returned Compiled is always usable.
func Compile(doc *document.Document, h1 *document.Node, kind biblio.OpKind, clauseID string, sink diag.Sink) *Compiled {
	out := &Compiled{Title: collapseText(h1.TextContent())}

	dl := findHeaderList(h1)
	if dl == nil {
		return out
	}
	out.Structured = true

	raw, base := doc.RawInner(h1)
	parsed, err := ParseHeader(raw)
	if err != nil {
		reportParseError(sink, doc, base, err, clauseID, diag.RuleHeaderFormat)
	} else {
		out.Name = parsed.Name
		out.Signature = buildSignature(doc, base, parsed, clauseID, sink)
		validateName(parsed.Name, kind, clauseID, sink)
		if out.Signature.Return.MixesCompletion() {
			sink.Report(diag.Diagnostic{
				Severity: diag.SeverityWarning,
				Rule:     diag.RuleCompletionUnion,
				Message:  "return type mixes completion and non-completion members",
				NodeID:   clauseID,
			})
		}
		if kind == biblio.OpSyntaxDirected {
			// Syntax-directed operations render their parameters via
			// grammar notation elsewhere; the header shows the name only.
			out.Title = parsed.Name
		}
	}

	consumeFields(dl, out)
	out.Preamble = synthesizePreamble(parsed, kind, out)
	return out
}

// findHeaderList returns the description list carrying the header
// marker that immediately follows the header, skipping deleted/inserted
// wrapper markup and empty anchor placeholders. Nil when absent.
func findHeaderList(h1 *document.Node) *document.Node {
	for n := h1.NextSibling(); n != nil; n = n.NextSibling() {
		if n.IsText() {
			if strings.TrimSpace(n.Text) == "" {
				continue
			}
			return nil
		}
		switch n.Tag {
		case "del", "ins":
			if inner := firstElement(n); inner != nil && inner.Tag == "dl" && inner.HasClass("header") {
				return inner
			}
			return nil
		case "a", "span":
			if strings.TrimSpace(n.TextContent()) == "" {
				continue
			}
			return nil
		case "dl":
			if n.HasClass("header") {
				return n
			}
			return nil
		default:
			return nil
		}
	}
	return nil
}

func firstElement(n *document.Node) *document.Node {
	for _, c := range n.Children() {
		if !c.IsText() {
			return c
		}
	}
	return nil
}

func buildSignature(doc *document.Document, base int, parsed *Header, clauseID string, sink diag.Sink) *biblio.Signature {
	sig := &biblio.Signature{}
	compile := func(params []Param) []biblio.Param {
		var out []biblio.Param
		for _, p := range params {
			if p.Deleted {
				continue
			}
			bp := biblio.Param{Name: p.Name}
			if p.TypeText != "" {
				t, err := typeexpr.Parse(p.TypeText)
				if err != nil {
					reportTypeError(sink, doc, base+p.TypeOffset, err, clauseID)
				} else {
					bp.Type = t
				}
			}
			out = append(out, bp)
		}
		return out
	}
	sig.Required = compile(parsed.Params)
	sig.Optional = compile(parsed.Optional)

	if parsed.ReturnText != "" {
		t, err := typeexpr.Parse(parsed.ReturnText)
		if err != nil {
			reportTypeError(sink, doc, base+parsed.ReturnOffset, err, clauseID)
		} else {
			sig.Return = t
		}
	}
	return sig
}

func validateName(name string, kind biblio.OpKind, clauseID string, sink diag.Sink) {
	if kind == biblio.OpNumericMethod && !strings.Contains(name, "::") {
		sink.Report(diag.Diagnostic{
			Severity: diag.SeverityWarning,
			Rule:     diag.RuleNumericMethodName,
			Message:  "numeric method name " + name + " lacks a Type::operation separator",
			NodeID:   clauseID,
		})
	}
}

func reportParseError(sink diag.Sink, doc *document.Document, base int, err error, clauseID string, rule diag.Rule) {
	offset := base
	msg := err.Error()
	if perr, ok := err.(*ParseError); ok {
		offset = base + perr.Offset
		msg = perr.Msg
	}
	line, col := diag.Position(doc.Source, offset)
	sink.Report(diag.Diagnostic{
		Severity: diag.SeverityError,
		Rule:     rule,
		Message:  msg,
		NodeID:   clauseID,
		Line:     line,
		Col:      col,
	})
}

func reportTypeError(sink diag.Sink, doc *document.Document, base int, err error, clauseID string) {
	offset := base
	msg := err.Error()
	if perr, ok := err.(*typeexpr.ParseError); ok {
		offset = base + perr.Offset
		msg = perr.Msg
	}
	line, col := diag.Position(doc.Source, offset)
	sink.Report(diag.Diagnostic{
		Severity: diag.SeverityError,
		Rule:     diag.RuleTypeParse,
		Message:  msg,
		NodeID:   clauseID,
		Line:     line,
		Col:      col,
	})
}

// consumeFields reads the dt/dd pairs of the header description list.
// Unknown field names are ignored so documents can carry editor-local
// annotations without breaking older compilers.
func consumeFields(dl *document.Node, out *Compiled) {
	var field string
	for _, c := range dl.Children() {
		switch c.Tag {
		case "dt":
			field = strings.ToLower(strings.TrimSpace(c.TextContent()))
		case "dd":
			value := strings.TrimSpace(c.TextContent())
			switch field {
			case "description":
				out.Description = value
			case "for":
				out.For = value
			case "effects":
				for _, e := range strings.Split(value, ",") {
					if e = strings.TrimSpace(e); e != "" {
						out.Effects = append(out.Effects, e)
					}
				}
			case "redefinition":
				out.Redefinition = value == "" || value == "true"
			case "skip global checks":
				out.SkipGlobalChecks = value == "" || value == "true"
			case "skip return checks":
				out.SkipReturnChecks = value == "" || value == "true"
			}
			field = ""
		}
	}
}

// synthesizePreamble builds the paragraphs that replace the description
// list in rendered output.
func synthesizePreamble(parsed *Header, kind biblio.OpKind, c *Compiled) []string {
	var paras []string

	kindName := "operation"
	if kind != biblio.OpNone {
		kindName = string(kind)
	}
	name := c.Name
	if name == "" {
		name = PlaceholderName
	}

	var b strings.Builder
	b.WriteString("The " + kindName + " " + name)
	if parsed == nil {
		b.WriteString(" takes " + PlaceholderParams)
	} else {
		b.WriteString(describeParams(parsed))
		if ret := returnPhrase(parsed, c); ret != "" {
			b.WriteString(" and returns " + ret)
		}
	}
	b.WriteString(".")
	paras = append(paras, b.String())

	if c.For != "" {
		paras = append(paras, "It is defined for "+c.For+".")
	}
	if c.Description != "" {
		paras = append(paras, c.Description)
	}
	return paras
}

func describeParams(parsed *Header) string {
	required := paramPhrases(parsed.Params)
	optional := paramPhrases(parsed.Optional)
	if len(required) == 0 && len(optional) == 0 {
		return " takes no arguments"
	}
	var b strings.Builder
	if len(required) > 0 {
		b.WriteString(" takes " + plural("argument", len(required)) + " " + joinAnd(required))
	}
	if len(optional) > 0 {
		if len(required) > 0 {
			b.WriteString(" and optional " + plural("argument", len(optional)) + " " + joinAnd(optional))
		} else {
			b.WriteString(" takes optional " + plural("argument", len(optional)) + " " + joinAnd(optional))
		}
	}
	return b.String()
}

func paramPhrases(params []Param) []string {
	var out []string
	for _, p := range params {
		if p.Deleted {
			continue
		}
		phrase := "_" + p.Name + "_"
		if p.TypeText != "" {
			phrase += " (" + p.TypeText + ")"
		}
		out = append(out, phrase)
	}
	return out
}

func returnPhrase(parsed *Header, c *Compiled) string {
	if c.Signature != nil && c.Signature.Return != nil {
		return parsed.ReturnText
	}
	return ""
}

func plural(word string, n int) string {
	if n == 1 {
		return word
	}
	return word + "s"
}

func joinAnd(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	case 2:
		return items[0] + " and " + items[1]
	}
	return strings.Join(items[:len(items)-1], ", ") + ", and " + items[len(items)-1]
}

func collapseText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Package compiler runs the end-to-end compile: parse the document,
// build the clause tree, and collect the bibliography, effect worklist,
// and diagnostics for one run.
package compiler

import (
	"github.com/google/uuid"

	"github.com/roach88/specmark/internal/biblio"
	"github.com/roach88/specmark/internal/clause"
	"github.com/roach88/specmark/internal/diag"
	"github.com/roach88/specmark/internal/document"
	"github.com/roach88/specmark/internal/effects"
)

// Options configures one compile run.
type Options struct {
	// Renderer is applied to inline text runs during clause
	// finalization. Nil means text passes through unchanged.
	Renderer document.InlineRenderer
}

// Result is everything one compile run produced. The registry and
// worklist belong to this result alone; compiling another document
// cannot disturb them.
type Result struct {
	// RunID uniquely identifies this compile run (uuid v7, so IDs sort
	// by creation time in the snapshot store).
	RunID string

	Doc      *document.Document
	Metadata document.Metadata

	Clauses     []*clause.Clause
	Registry    *biblio.Registry
	Worklist    *effects.Worklist
	Diagnostics *diag.Collector
}

// Compile compiles a document. The returned error is reserved for the
// unrecoverable cases: malformed markup and a clause with no locatable
// header. Everything else degrades into diagnostics on the Result.
func Compile(src []byte, opts Options) (*Result, error) {
	doc, err := document.Parse(src)
	if err != nil {
		return nil, err
	}

	sink := diag.NewCollector()
	meta, metaErr := document.ExtractMetadata(doc)
	if metaErr != nil {
		sink.Report(diag.Diagnostic{
			Severity: diag.SeverityWarning,
			Rule:     diag.RuleMetadata,
			Message:  metaErr.Error(),
		})
	}

	rootNS := meta.RootNamespace()
	ctx := &clause.Context{
		Doc:           doc,
		Registry:      biblio.NewRegistry(rootNS),
		Worklist:      effects.NewWorklist(),
		Sink:          sink,
		RootNamespace: rootNS,
		Renderer:      opts.Renderer,
	}
	builder := clause.NewBuilder(ctx)
	if err := document.TraverseClauses(doc.Root, builder); err != nil {
		return nil, err
	}

	return &Result{
		RunID:       uuid.Must(uuid.NewV7()).String(),
		Doc:         doc,
		Metadata:    meta,
		Clauses:     builder.Root,
		Registry:    ctx.Registry,
		Worklist:    ctx.Worklist,
		Diagnostics: sink,
	}, nil
}

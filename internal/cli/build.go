package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/specmark/internal/biblio"
	"github.com/roach88/specmark/internal/clause"
	"github.com/roach88/specmark/internal/compiler"
	"github.com/roach88/specmark/internal/diag"
)

// BuildOptions holds flags for the build command.
type BuildOptions struct {
	*RootOptions
	Output string // outline file path
	Biblio string // snapshot database path
}

// BuildReport is the payload of a successful build.
type BuildReport struct {
	RunID       string            `json:"run_id"`
	Outline     compiler.Outline  `json:"outline"`
	Diagnostics []diag.Diagnostic `json:"diagnostics,omitempty"`
}

// NewBuildCommand creates the build command.
func NewBuildCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &BuildOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "build <document>",
		Short: "Compile a document into its clause outline",
		Long: `Compile a document: number the clause tree, compile structured
headers, and collect the bibliography and effect worklist.

Diagnostics never stop the build; error-severity diagnostics set a
nonzero exit code after the outline is produced.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors - we handle our own error output
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "write the outline JSON to a file")
	cmd.Flags().StringVar(&opts.Biblio, "biblio", "", "save a bibliography snapshot to a SQLite database")

	return cmd
}

func runBuild(opts *BuildOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	src, err := os.ReadFile(path)
	if err != nil {
		return formatter.Fail(ErrCodeReadFailed, fmt.Sprintf("reading %s: %v", path, err))
	}

	result, err := compiler.Compile(src, compiler.Options{})
	if err != nil {
		return formatter.Fail(ErrCodeCompile, err.Error())
	}
	formatter.Verbosef("Compiled %d clause(s) in run %s", countClauses(result.Clauses), result.RunID)

	report := &BuildReport{
		RunID:       result.RunID,
		Outline:     result.Outline(),
		Diagnostics: result.Diagnostics.All(),
	}

	if opts.Output != "" {
		if err := writeOutlineToFile(report.Outline, opts.Output); err != nil {
			return formatter.Fail(ErrCodeWriteFailed, fmt.Sprintf("writing outline: %v", err))
		}
		formatter.Verbosef("Wrote outline to %s", opts.Output)
	}

	if opts.Biblio != "" {
		if err := saveSnapshot(cmd, opts.Biblio, result); err != nil {
			return formatter.Fail(ErrCodeStore, fmt.Sprintf("saving snapshot: %v", err))
		}
		formatter.Verbosef("Saved bibliography snapshot to %s", opts.Biblio)
	}

	if err := outputBuildReport(formatter, report, opts); err != nil {
		return err
	}

	if result.Diagnostics.HasErrors() {
		return NewExitError(ExitFailure, fmt.Sprintf("document has %d problem(s)", len(report.Diagnostics)))
	}
	return nil
}

func saveSnapshot(cmd *cobra.Command, path string, result *compiler.Result) error {
	store, err := biblio.OpenStore(path)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := cmd.Context()
	seq, err := store.NextRunSeq(ctx)
	if err != nil {
		return err
	}
	return store.SaveSnapshot(ctx, result.RunID, result.Metadata.Shortname, seq, result.Registry)
}

func countClauses(clauses []*clause.Clause) int {
	n := 0
	for _, c := range clauses {
		n += 1 + countClauses(c.Subclauses)
	}
	return n
}

// outputBuildReport renders the build result.
func outputBuildReport(formatter *OutputFormatter, report *BuildReport, opts *BuildOptions) error {
	if formatter.Format == "json" {
		return formatter.OK(report)
	}

	// Diagnostics go to stderr so the outline stays pipeable.
	formatter.WriteDiagnostics(formatter.errWriter(), "", report.Diagnostics)

	fmt.Fprintf(formatter.Writer, "✓ Compiled %d clause(s), %d namespace(s)\n\n",
		countOutlineClauses(report.Outline.Clauses), len(report.Outline.Namespaces))

	printOutline(formatter, report.Outline.Clauses, "")

	if len(report.Outline.Effects) > 0 {
		fmt.Fprintln(formatter.Writer)
		fmt.Fprintln(formatter.Writer, "Effects:")
		for _, e := range report.Outline.Effects {
			fmt.Fprintf(formatter.Writer, "  %s: %d declaration(s)\n", e.Name, len(e.ClauseIDs))
		}
	}

	if opts.Output != "" {
		fmt.Fprintf(formatter.Writer, "\nWrote outline to %s\n", opts.Output)
	}
	if opts.Biblio != "" {
		fmt.Fprintf(formatter.Writer, "\nSaved bibliography snapshot to %s\n", opts.Biblio)
	}
	return nil
}

func countOutlineClauses(clauses []compiler.OutlineClause) int {
	n := 0
	for _, c := range clauses {
		n += 1 + countOutlineClauses(c.Subclauses)
	}
	return n
}

func printOutline(formatter *OutputFormatter, clauses []compiler.OutlineClause, indent string) {
	for _, c := range clauses {
		label := c.Label
		if label != "" {
			label += " "
		}
		fmt.Fprintf(formatter.Writer, "%s%s%s\n", indent, label, c.Title)
		printOutline(formatter, c.Subclauses, indent+"  ")
	}
}

// writeOutlineToFile writes the outline to a file as indented JSON.
func writeOutlineToFile(outline compiler.Outline, filename string) error {
	data, err := json.MarshalIndent(outline, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling outline: %w", err)
	}
	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("writing file: %w", err)
	}
	return nil
}

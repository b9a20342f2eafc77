package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/specmark/internal/compiler"
	"github.com/roach88/specmark/internal/diag"
)

// LintReport is the payload of a lint run.
type LintReport struct {
	Diagnostics []diag.Diagnostic `json:"diagnostics"`
	Errors      int               `json:"errors"`
	Warnings    int               `json:"warnings"`
}

// NewLintCommand creates the lint command.
func NewLintCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lint <document>",
		Short: "Report document problems without producing output",
		Long: `Compile a document and report its diagnostics. The exit code is
nonzero when any error-severity diagnostic was reported.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLint(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runLint(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	src, err := os.ReadFile(path)
	if err != nil {
		return formatter.Fail(ErrCodeReadFailed, fmt.Sprintf("reading %s: %v", path, err))
	}

	result, err := compiler.Compile(src, compiler.Options{})
	if err != nil {
		return formatter.Fail(ErrCodeCompile, err.Error())
	}

	report := &LintReport{Diagnostics: result.Diagnostics.All()}
	report.Errors, report.Warnings = countDiagnostics(report.Diagnostics)

	if formatter.Format == "json" {
		if err := formatter.OK(report); err != nil {
			return err
		}
	} else {
		formatter.WriteDiagnostics(formatter.Writer, path, report.Diagnostics)
		if len(report.Diagnostics) == 0 {
			fmt.Fprintln(formatter.Writer, "✓ No problems found")
		} else {
			fmt.Fprintf(formatter.Writer, "%d error(s), %d warning(s)\n", report.Errors, report.Warnings)
		}
	}

	if report.Errors > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d error(s) found", report.Errors))
	}
	return nil
}

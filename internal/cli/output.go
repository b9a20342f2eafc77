package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/specmark/internal/diag"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Clean run
	ExitFailure      = 1 // Error-severity diagnostics in the document
	ExitCommandError = 2 // Command error (unreadable input, malformed markup, store failures)
)

// Error codes reported in command output.
const (
	ErrCodeReadFailed  = "E002"
	ErrCodeCompile     = "E003"
	ErrCodeWriteFailed = "E004"
	ErrCodeStore       = "E005"
)

// ExitError carries the process exit code for a failed command.
type ExitError struct {
	Code    int    // Exit code (use ExitFailure or ExitCommandError)
	Message string // Error message
}

func (e *ExitError) Error() string {
	return e.Message
}

// NewExitError creates a new ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// GetExitCode maps an error to a process exit code. Errors that are not
// ExitErrors report ExitFailure.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// OutputFormatter renders command results in text or JSON. Verbose and
// diagnostic lines go to ErrWriter so JSON on Writer stays parseable.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer // Defaults to Writer when nil
	Verbose   bool
}

// newFormatter builds the formatter for one command invocation, wired
// to the command's output streams.
func newFormatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
}

// Response is the JSON envelope for command output.
type Response struct {
	Status string         `json:"status"` // "ok" or "error"
	Data   interface{}    `json:"data,omitempty"`
	Error  *ResponseError `json:"error,omitempty"`
}

// ResponseError is the error half of the envelope.
type ResponseError struct {
	Code    string `json:"code"` // "E002", "E003", etc.
	Message string `json:"message"`
}

// OK writes the success envelope for a payload. Text rendering is owned
// by each command, so OK is called on the JSON path only.
func (f *OutputFormatter) OK(data interface{}) error {
	enc := json.NewEncoder(f.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(Response{Status: "ok", Data: data})
}

// Fail reports a command failure in the configured format and returns
// the ExitError cobra propagates to the process exit code.
func (f *OutputFormatter) Fail(code, message string) error {
	if f.Format == "json" {
		_ = json.NewEncoder(f.Writer).Encode(Response{
			Status: "error",
			Error:  &ResponseError{Code: code, Message: message},
		})
	} else {
		fmt.Fprintf(f.Writer, "Error [%s]: %s\n", code, message)
	}
	return NewExitError(ExitCommandError, fmt.Sprintf("%s: %s", code, message))
}

// Verbosef writes a line only when verbose mode is enabled. It always
// targets the error stream so JSON output stays parseable.
func (f *OutputFormatter) Verbosef(format string, args ...interface{}) {
	if !f.Verbose {
		return
	}
	fmt.Fprintf(f.errWriter(), format+"\n", args...)
}

func (f *OutputFormatter) errWriter() io.Writer {
	if f.ErrWriter != nil {
		return f.ErrWriter
	}
	return f.Writer
}

// WriteDiagnostics renders diagnostics one per line to w, prefixed with
// the document path when given.
func (f *OutputFormatter) WriteDiagnostics(w io.Writer, path string, diags []diag.Diagnostic) {
	for _, d := range diags {
		if path != "" {
			fmt.Fprintf(w, "%s: %s\n", path, d.String())
		} else {
			fmt.Fprintln(w, d.String())
		}
	}
}

// countDiagnostics splits a diagnostic list into error and warning
// counts.
func countDiagnostics(diags []diag.Diagnostic) (errs, warnings int) {
	for _, d := range diags {
		if d.Severity == diag.SeverityError {
			errs++
		} else {
			warnings++
		}
	}
	return errs, warnings
}

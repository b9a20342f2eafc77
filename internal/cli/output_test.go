package cli

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/specmark/internal/diag"
)

func TestFailTextFormat(t *testing.T) {
	buf := &bytes.Buffer{}
	f := &OutputFormatter{Format: "text", Writer: buf}

	err := f.Fail(ErrCodeReadFailed, "reading doc.html: no such file")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), ErrCodeReadFailed)
	assert.Contains(t, buf.String(), "Error [E002]: reading doc.html: no such file")
}

func TestFailJSONFormat(t *testing.T) {
	buf := &bytes.Buffer{}
	f := &OutputFormatter{Format: "json", Writer: buf}

	err := f.Fail(ErrCodeStore, "database locked")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	var resp Response
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeStore, resp.Error.Code)
	assert.Equal(t, "database locked", resp.Error.Message)
}

func TestVerbosefTargetsErrWriter(t *testing.T) {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	f := &OutputFormatter{Format: "json", Writer: out, ErrWriter: errOut, Verbose: true}

	f.Verbosef("compiled %d clause(s)", 3)
	assert.Empty(t, out.String())
	assert.Equal(t, "compiled 3 clause(s)\n", errOut.String())

	f.Verbose = false
	f.Verbosef("hidden")
	assert.Equal(t, "compiled 3 clause(s)\n", errOut.String())
}

func TestWriteDiagnostics(t *testing.T) {
	diags := []diag.Diagnostic{
		{Severity: diag.SeverityError, Rule: diag.RuleDuplicateDefinition, Message: "already defined", NodeID: "sec-a"},
		{Severity: diag.SeverityWarning, Rule: diag.RuleMissingID, Message: "no id"},
	}
	f := &OutputFormatter{Format: "text"}

	buf := &bytes.Buffer{}
	f.WriteDiagnostics(buf, "doc.html", diags)
	assert.Contains(t, buf.String(), "doc.html: sec-a: error: already defined (duplicate-definition)")

	buf.Reset()
	f.WriteDiagnostics(buf, "", diags)
	assert.NotContains(t, buf.String(), "doc.html")

	errs, warnings := countDiagnostics(diags)
	assert.Equal(t, 1, errs)
	assert.Equal(t, 1, warnings)
}

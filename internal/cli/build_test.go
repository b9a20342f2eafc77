package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDoc = `<spec-document>
<pre class="metadata">
title: Sample
shortname: sample
</pre>
<spec-clause id="sec-ops">
<h1>Operations</h1>
<spec-clause id="sec-double" type="abstract operation">
<h1>Double ( _n_: a Number ): a Number</h1>
<dl class="header">
<dt>description</dt>
<dd>Doubles a number.</dd>
</dl>
</spec-clause>
</spec-clause>
</spec-document>`

const duplicateAoidDoc = `<spec-document>
<spec-clause id="sec-first" type="abstract operation">
<h1>Op ( ): a Number</h1>
<dl class="header">
</dl>
</spec-clause>
<spec-clause id="sec-second" aoid="Op">
<h1>Second Definition</h1>
</spec-clause>
</spec-document>`

func writeDoc(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "doc.html")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestBuildTextOutput(t *testing.T) {
	path := writeDoc(t, sampleDoc)

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewBuildCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{path})

	err := cmd.Execute()
	require.NoError(t, err)

	output := buf.String()
	assert.Contains(t, output, "✓ Compiled 2 clause(s), 1 namespace(s)")
	assert.Contains(t, output, "1 Operations")
	assert.Contains(t, output, "1.1 Double ( _n_: a Number ): a Number")
}

func TestBuildJSONOutput(t *testing.T) {
	path := writeDoc(t, sampleDoc)

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "json"}
	cmd := NewBuildCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{path})

	err := cmd.Execute()
	require.NoError(t, err)

	var resp Response
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)

	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.NotEmpty(t, data["run_id"])

	outline, ok := data["outline"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "Sample", outline["title"])
}

func TestBuildOutputToFile(t *testing.T) {
	path := writeDoc(t, sampleDoc)
	outputFile := filepath.Join(t.TempDir(), "outline.json")

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewBuildCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{path, "--output", outputFile})

	err := cmd.Execute()
	require.NoError(t, err)

	data, err := os.ReadFile(outputFile)
	require.NoError(t, err)

	var outline map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &outline))
	assert.Equal(t, "sample", outline["shortname"])
	assert.Contains(t, buf.String(), "Wrote outline to")
}

func TestBuildSavesSnapshot(t *testing.T) {
	path := writeDoc(t, sampleDoc)
	dbPath := filepath.Join(t.TempDir(), "biblio.db")

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewBuildCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{path, "--biblio", dbPath})

	err := cmd.Execute()
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Saved bibliography snapshot")

	// The snapshot is readable back through the biblio command.
	listBuf := &bytes.Buffer{}
	listCmd := NewBiblioCommand(&RootOptions{Format: "text"})
	listCmd.SetOut(listBuf)
	listCmd.SetArgs([]string{dbPath})

	require.NoError(t, listCmd.Execute())
	assert.Contains(t, listBuf.String(), "Double")
	assert.Contains(t, listBuf.String(), "sample")
}

func TestBuildDiagnosticsSetExitCode(t *testing.T) {
	path := writeDoc(t, duplicateAoidDoc)

	buf := &bytes.Buffer{}
	errBuf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewBuildCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetErr(errBuf)
	cmd.SetArgs([]string{path})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, errBuf.String(), "duplicate-definition")
	// The outline is still produced.
	assert.Contains(t, buf.String(), "✓ Compiled")
}

func TestBuildMissingFile(t *testing.T) {
	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewBuildCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"/nonexistent/doc.html"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), ErrCodeReadFailed)
}

func TestBuildMalformedDocument(t *testing.T) {
	path := writeDoc(t, "<spec-document><spec-clause>")

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewBuildCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{path})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), ErrCodeCompile)
}

func TestBuildVerboseOutput(t *testing.T) {
	path := writeDoc(t, sampleDoc)

	stdoutBuf := &bytes.Buffer{}
	stderrBuf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text", Verbose: true}
	cmd := NewBuildCommand(rootOpts)
	cmd.SetOut(stdoutBuf)
	cmd.SetErr(stderrBuf) // Verbose output goes to stderr
	cmd.SetArgs([]string{path})

	err := cmd.Execute()
	require.NoError(t, err)

	verboseOutput := stderrBuf.String()
	assert.Contains(t, verboseOutput, "Compiled 2 clause(s)")
}

package cli

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildSnapshot compiles sampleDoc with --biblio and returns the
// database path.
func buildSnapshot(t *testing.T) string {
	t.Helper()
	path := writeDoc(t, sampleDoc)
	dbPath := filepath.Join(t.TempDir(), "biblio.db")

	cmd := NewBuildCommand(&RootOptions{Format: "text"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{path, "--biblio", dbPath})
	require.NoError(t, cmd.Execute())
	return dbPath
}

func TestBiblioListsEntries(t *testing.T) {
	dbPath := buildSnapshot(t)

	buf := &bytes.Buffer{}
	cmd := NewBiblioCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{dbPath})

	err := cmd.Execute()
	require.NoError(t, err)

	output := buf.String()
	assert.Contains(t, output, "sec-double")
	assert.Contains(t, output, "Double")
	assert.Contains(t, output, "3 entries")
}

func TestBiblioNamespaceFilter(t *testing.T) {
	dbPath := buildSnapshot(t)

	buf := &bytes.Buffer{}
	cmd := NewBiblioCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{dbPath, "--ns", "no-such-namespace"})

	err := cmd.Execute()
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "No entries found")
}

func TestBiblioJSONOutput(t *testing.T) {
	dbPath := buildSnapshot(t)

	buf := &bytes.Buffer{}
	cmd := NewBiblioCommand(&RootOptions{Format: "json"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{dbPath})

	err := cmd.Execute()
	require.NoError(t, err)

	var resp Response
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)

	rows, ok := resp.Data.([]interface{})
	require.True(t, ok)
	assert.Len(t, rows, 3)
}

func TestBiblioMissingDatabase(t *testing.T) {
	buf := &bytes.Buffer{}
	cmd := NewBiblioCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{filepath.Join(t.TempDir(), "missing.db")})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), ErrCodeStore)
}

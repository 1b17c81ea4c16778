package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/crewsheet/internal/server"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("CACHE_BACKEND", "none")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_URL", "file:"+filepath.Join(t.TempDir(), "cli.db"))

	var out bytes.Buffer
	cmd := newRootCommand(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func writeDoc(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

const sheet = "PHOTOGRAPHER: John Doe / 917-555-1234\nSTYLIST: Jane Smith / Acme Studio / 917-555-2222\n"

func TestExtract_JSON(t *testing.T) {
	path := writeDoc(t, "crew.txt", sheet)
	out, err := runCLI(t, "extract", path, "-o", "json", "--no-store")
	require.NoError(t, err)

	var resp server.ExtractResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.True(t, resp.Result.Success)
	require.Len(t, resp.Result.Contacts, 2)
	assert.Equal(t, "John Doe", resp.Result.Contacts[0].Name)
}

func TestExtract_Table(t *testing.T) {
	path := writeDoc(t, "crew.txt", sheet)
	out, err := runCLI(t, "extract", path)
	require.NoError(t, err)
	assert.Contains(t, out, "NAME")
	assert.Contains(t, out, "Jane Smith")
}

func TestExtract_BadStrategyFails(t *testing.T) {
	path := writeDoc(t, "crew.txt", sheet)
	_, err := runCLI(t, "extract", path, "--strategy", "telepathy", "--no-store")
	assert.ErrorContains(t, err, "extraction failed")
}

func TestUnknownOutputFormat(t *testing.T) {
	_, err := runCLI(t, "runs", "list", "-o", "yaml")
	assert.ErrorContains(t, err, "unknown output format")
}

func TestExportFile(t *testing.T) {
	path := writeDoc(t, "crew.txt", sheet)
	dest := filepath.Join(t.TempDir(), "crew.xlsx")
	_, err := runCLI(t, "export", path, "--out", dest, "--no-store")
	require.NoError(t, err)

	f, err := excelize.OpenFile(dest)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Contacts")
	require.NoError(t, err)
	assert.Len(t, rows, 3)
}

func TestExport_RequiresOneSource(t *testing.T) {
	_, err := runCLI(t, "export", "--out", "x.xlsx")
	assert.ErrorContains(t, err, "either a file or --run")
}

func TestBatch(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte(sheet), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.csv"), []byte("PRODUCER: Amy Lee / 917-555-3333 / amy@lee.com\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "skip.jpg"), []byte("x"), 0o600))
	dest := filepath.Join(t.TempDir(), "all.csv")

	out, err := runCLI(t, "batch", dir, "-o", "json", "--out", dest, "--no-store")
	require.NoError(t, err)

	var s batchSummary
	require.NoError(t, json.Unmarshal([]byte(out), &s))
	assert.EqualValues(t, 2, s.Stats.Queued)
	require.Len(t, s.Files, 2)
	for _, f := range s.Files {
		assert.Equal(t, "SUCCEEDED", f.Status)
	}

	csv, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Contains(t, string(csv), "Amy Lee")
	assert.Contains(t, string(csv), "John Doe")
}

func TestRunsRoundTrip(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("CACHE_BACKEND", "none")
	t.Setenv("DB_URL", "file:"+filepath.Join(t.TempDir(), "runs.db"))
	path := writeDoc(t, "crew.txt", sheet)

	exec := func(args ...string) string {
		var out bytes.Buffer
		cmd := newRootCommand(&out)
		cmd.SetArgs(args)
		require.NoError(t, cmd.ExecuteContext(context.Background()))
		return out.String()
	}

	var resp server.ExtractResponse
	require.NoError(t, json.Unmarshal([]byte(exec("extract", path, "-o", "json")), &resp))

	listed := exec("runs", "list")
	assert.Contains(t, listed, resp.RunID)

	var shown server.RunResponse
	require.NoError(t, json.Unmarshal([]byte(exec("runs", "show", resp.RunID, "-o", "json")), &shown))
	assert.Len(t, shown.Contacts, 2)
}

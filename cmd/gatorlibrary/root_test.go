package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportPath(t *testing.T) {
	assert.Equal(t, "in/test1_output_file.txt", reportPath("in/test1.txt", "_output_file.txt"))
	assert.Equal(t, "noext.out", reportPath("noext", ".out"))
	assert.Equal(t, "a.b_report", reportPath("a.b.c", "_report"))
}

// execute runs the root command and returns what it wrote to stdout and
// stderr.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestRunWritesReportAndMetrics(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "books.txt")
	metrics := filepath.Join(dir, "metrics.prom")
	require.NoError(t, os.WriteFile(input, []byte(`InsertBook(1,"Dune","Herbert","Yes")
BorrowBook(7,1,1)
BorrowBook(8,1,1)
ColorFlipCount()
Quit()
`), 0o644))

	_, logs, err := execute(t, "--verify", "--metrics-file", metrics, input)
	require.NoError(t, err)
	assert.Contains(t, logs, "run_id=")

	report, err := os.ReadFile(filepath.Join(dir, "books_output_file.txt"))
	require.NoError(t, err)
	assert.Equal(t, "Book 1 Borrowed by Patron 7\n\n"+
		"Book 1 Reserved by Patron 8\n\n"+
		"Colour Flip Count: 0\n\n"+
		"Program Terminated!!\n", string(report))

	exposition, err := os.ReadFile(metrics)
	require.NoError(t, err)
	assert.Contains(t, string(exposition), `gatorlibrary_catalog_operations_total{op="acquire",outcome="granted"} 1`)
	assert.Contains(t, string(exposition), "gatorlibrary_catalog_books 1")
}

func TestRunConfigFileAndOutputFlag(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "in.txt")
	output := filepath.Join(dir, "custom.txt")
	cfgPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("waitlist_capacity: 1\nlog:\n  level: warn\n  format: json\n"), 0o644))
	require.NoError(t, os.WriteFile(input, []byte(`InsertBook(1,"T","A","No")
BorrowBook(7,1,2)
BorrowBook(8,1,1)
PrintBook(1)
`), 0o644))

	_, logs, err := execute(t, "--config", cfgPath, "-o", output, input)
	require.NoError(t, err)
	assert.NotContains(t, logs, "run started")

	report, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Contains(t, string(report), "Reservations = [7]\n")
}

func TestRunErrors(t *testing.T) {
	dir := t.TempDir()

	_, _, err := execute(t)
	assert.Error(t, err)

	_, _, err = execute(t, filepath.Join(dir, "missing.txt"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	input := filepath.Join(dir, "in.txt")
	require.NoError(t, os.WriteFile(input, []byte("Quit()\n"), 0o644))
	_, _, err = execute(t, "--log-level", "loud", input)
	assert.ErrorContains(t, err, "invalid config")
}

func TestRunExportsSpans(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "in.txt")
	require.NoError(t, os.WriteFile(input, []byte("InsertBook(1,\"T\",\"A\",\"Yes\")\nPrintBook(x)\nQuit()\n"), 0o644))

	stdout, _, err := execute(t, "--trace", "stdout", input)
	require.NoError(t, err)
	assert.Contains(t, stdout, `"command.InsertBook"`)
	assert.Contains(t, stdout, `"command.PrintBook"`)
	assert.Contains(t, stdout, `"command.Quit"`)
	assert.Contains(t, stdout, "gatorlibrary/internal/command")
	assert.Contains(t, stdout, `"Code": "Error"`)

	stdout, _, err = execute(t, input)
	require.NoError(t, err)
	assert.Empty(t, stdout)
}

func TestRunRejectsUnknownTraceExporter(t *testing.T) {
	input := filepath.Join(t.TempDir(), "in.txt")
	require.NoError(t, os.WriteFile(input, []byte("Quit()\n"), 0o644))

	_, _, err := execute(t, "--trace", "zipkin", input)
	assert.ErrorContains(t, err, "invalid config")
}

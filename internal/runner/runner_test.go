package runner

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	color.NoColor = true

	os.Exit(m.Run())
}

const cleanDAG = `"""Daily ETL DAG."""
import os

DAG_ID = "etl_daily"

with DAG(DAG_ID) as dag:
    extract()
`

const flaggedDAG = `import os

connect_to_database()
`

const brokenDAG = "def broken(:\n    pass\n"

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func newTestRunner() (*Runner, *bytes.Buffer, *bytes.Buffer) {
	out := new(bytes.Buffer)
	errOut := new(bytes.Buffer)

	return New(out, errOut), out, errOut
}

func TestRun_SingleCleanFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeFile(t, dir, "clean.py", cleanDAG)

	run, out, _ := newTestRunner()

	summary, err := run.Run(context.Background(), path)
	require.NoError(t, err)

	assert.True(t, summary.Passed())
	assert.Equal(t, 1, summary.Checked)
	assert.Contains(t, out.String(), "clean.py - no obvious top-level side effects")
}

func TestRun_SingleFlaggedFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeFile(t, dir, "bad.py", flaggedDAG)

	run, out, _ := newTestRunner()

	summary, err := run.Run(context.Background(), path)
	require.NoError(t, err)

	assert.False(t, summary.Passed())
	assert.Contains(t, out.String(), "Potential issues in bad.py:")
	assert.Contains(t, out.String(), "Line 3: Top-level expression found.")
	assert.Contains(t, out.String(), "Airflow best practice")
}

func TestRun_DirectoryMixed(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "clean.py", cleanDAG)
	writeFile(t, dir, "bad.py", flaggedDAG)

	run, out, _ := newTestRunner()

	summary, err := run.Run(context.Background(), dir)
	require.NoError(t, err)

	assert.False(t, summary.Passed())
	assert.Equal(t, 2, summary.Checked)
	assert.Equal(t, 1, summary.Clean)
	assert.Equal(t, 1, summary.Flagged)
	assert.Contains(t, out.String(), "clean.py - no obvious top-level side effects")
	assert.Contains(t, out.String(), "Potential issues in bad.py:")
}

func TestRun_NestedDirectoriesDiscovered(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	nested := filepath.Join(dir, "dags", "team_a")
	require.NoError(t, os.MkdirAll(nested, 0o750))
	writeFile(t, nested, "bad.py", flaggedDAG)
	writeFile(t, dir, "README.md", "not python")

	run, _, _ := newTestRunner()

	summary, err := run.Run(context.Background(), dir)
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Checked)
	assert.Equal(t, 1, summary.Flagged)
}

func TestRun_HiddenDirectoriesTraversed(t *testing.T) {
	t.Parallel()

	// Discovery covers every directory beneath the target, dot-named
	// ones included; a flagged file must never hide the failure.
	dir := t.TempDir()
	hidden := filepath.Join(dir, ".dags")
	require.NoError(t, os.MkdirAll(hidden, 0o750))
	writeFile(t, hidden, "hidden.py", flaggedDAG)
	writeFile(t, dir, "clean.py", cleanDAG)

	run, out, _ := newTestRunner()

	summary, err := run.Run(context.Background(), dir)
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Checked)
	assert.Equal(t, 1, summary.Flagged)
	assert.False(t, summary.Passed())
	assert.Contains(t, out.String(), "Potential issues in hidden.py:")
}

func TestRun_EmptyDirectory(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	run, _, errOut := newTestRunner()

	summary, err := run.Run(context.Background(), dir)
	require.NoError(t, err)

	assert.True(t, summary.Passed())
	assert.Equal(t, 0, summary.Checked)
	assert.Contains(t, errOut.String(), "No Python files found in")
}

func TestRun_PathNotFound(t *testing.T) {
	t.Parallel()

	run, _, _ := newTestRunner()

	_, err := run.Run(context.Background(), filepath.Join(t.TempDir(), "missing"))
	require.ErrorIs(t, err, ErrPathNotFound)
}

func TestRun_SyntaxErrorDoesNotStopRun(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "broken.py", brokenDAG)
	writeFile(t, dir, "clean.py", cleanDAG)

	run, out, errOut := newTestRunner()

	summary, err := run.Run(context.Background(), dir)
	require.NoError(t, err)

	assert.False(t, summary.Passed())
	assert.Equal(t, 2, summary.Checked)
	assert.Equal(t, 1, summary.SyntaxErrors)
	assert.Contains(t, errOut.String(), "Syntax error in")
	assert.Contains(t, out.String(), "clean.py - no obvious top-level side effects")
}

func TestRun_JSONFormat(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "clean.py", cleanDAG)
	writeFile(t, dir, "bad.py", flaggedDAG)

	run, out, _ := newTestRunner()
	run.Format = FormatJSON

	summary, err := run.Run(context.Background(), dir)
	require.NoError(t, err)
	assert.False(t, summary.Passed())

	var results []FileResult
	require.NoError(t, json.Unmarshal(out.Bytes(), &results))
	require.Len(t, results, 2)

	byStatus := map[FileStatus]int{}
	for _, result := range results {
		byStatus[result.Status]++

		if result.Status == StatusFlagged {
			require.Len(t, result.Issues, 1)
			assert.Equal(t, 3, result.Issues[0].Line)
		}
	}

	assert.Equal(t, 1, byStatus[StatusClean])
	assert.Equal(t, 1, byStatus[StatusFlagged])
}

func TestRun_JSONFormatEmptyDirectory(t *testing.T) {
	t.Parallel()

	run, out, _ := newTestRunner()
	run.Format = FormatJSON

	summary, err := run.Run(context.Background(), t.TempDir())
	require.NoError(t, err)
	assert.True(t, summary.Passed())

	var results []FileResult
	require.NoError(t, json.Unmarshal(out.Bytes(), &results))
	assert.Empty(t, results)
}

func TestRun_UnsupportedFormat(t *testing.T) {
	t.Parallel()

	run, _, _ := newTestRunner()
	run.Format = "xml"

	_, err := run.Run(context.Background(), t.TempDir())
	require.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestRun_VerboseSummaryTable(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "clean.py", cleanDAG)

	run, out, _ := newTestRunner()
	run.Verbose = true

	summary, err := run.Run(context.Background(), dir)
	require.NoError(t, err)
	assert.True(t, summary.Passed())

	assert.Contains(t, out.String(), "FLAGGED")
	assert.Contains(t, out.String(), "SOURCE")
}

// Package runner drives DAG file discovery, per-file checking and
// aggregate reporting for the dagfang CLI.
package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/Sumatoshi-tech/dagfang/pkg/dagcheck"
)

// Output format constants.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// pythonExt is the extension of candidate DAG files.
const pythonExt = ".py"

// Sentinel errors for the traversal driver.
var (
	// ErrPathNotFound indicates the target path does not exist.
	ErrPathNotFound = errors.New("path not found")
	// ErrUnsupportedFormat indicates an unknown --format value.
	ErrUnsupportedFormat = errors.New("unsupported output format")
)

// FileStatus is the per-file outcome of one check.
type FileStatus string

// Per-file outcomes.
const (
	StatusClean   FileStatus = "clean"
	StatusFlagged FileStatus = "flagged"
	StatusError   FileStatus = "error"
)

// FileResult holds the outcome of checking a single file.
type FileResult struct {
	Path   string           `json:"path"`
	Status FileStatus       `json:"status"`
	Issues []dagcheck.Issue `json:"issues,omitempty"`
	Detail string           `json:"detail,omitempty"`

	err error
}

// Summary aggregates outcomes across one run.
type Summary struct {
	Checked      int
	Clean        int
	Flagged      int
	SyntaxErrors int
	SourceBytes  uint64
}

// Passed reports whether every checked file was clean.
func (s Summary) Passed() bool {
	return s.Flagged == 0 && s.SyntaxErrors == 0
}

// Runner checks one path (file or directory tree) and reports results.
type Runner struct {
	Out     io.Writer
	ErrOut  io.Writer
	Format  string
	Verbose bool

	parser *dagcheck.Parser
}

// New creates a Runner writing text results to out and errors to errOut.
func New(out, errOut io.Writer) *Runner {
	return &Runner{
		Out:    out,
		ErrOut: errOut,
		Format: FormatText,
		parser: dagcheck.NewParser(),
	}
}

// Run checks path and reports every result. It returns the aggregate
// summary; callers derive the exit status from Summary.Passed. An error
// is returned only for the immediate-termination cases (missing path,
// unknown format) — malformed input files are data, not faults.
func (r *Runner) Run(ctx context.Context, path string) (Summary, error) {
	if r.Format != FormatText && r.Format != FormatJSON {
		return Summary{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, r.Format)
	}

	info, statErr := os.Stat(path)
	if statErr != nil {
		return Summary{}, fmt.Errorf("%w: %s", ErrPathNotFound, path)
	}

	files := []string{path}

	if info.IsDir() {
		discovered, walkErr := collectPythonFiles(path)
		if walkErr != nil {
			return Summary{}, walkErr
		}

		if len(discovered) == 0 {
			r.reportNoFiles(path)

			if r.Format == FormatJSON {
				return Summary{}, r.writeJSON(nil)
			}

			return Summary{}, nil
		}

		files = discovered
	}

	return r.checkAll(ctx, files, info.IsDir())
}

// checkAll runs the checker over every file, reporting as it goes.
// It never short-circuits: a failing file does not stop the run.
func (r *Runner) checkAll(ctx context.Context, files []string, isDir bool) (Summary, error) {
	var summary Summary

	results := make([]FileResult, 0, len(files))

	for _, file := range files {
		result, size := r.checkFile(ctx, file)

		summary.Checked++
		summary.SourceBytes += size

		switch result.Status {
		case StatusClean:
			summary.Clean++
		case StatusFlagged:
			summary.Flagged++
		case StatusError:
			summary.SyntaxErrors++
		}

		if r.Format == FormatText {
			r.reportResult(result)
		} else {
			results = append(results, result)
		}
	}

	if r.Format == FormatJSON {
		return summary, r.writeJSON(results)
	}

	if r.Verbose && isDir {
		r.writeSummary(summary)
	}

	return summary, nil
}

// checkFile reads, parses and classifies one file. All failures are
// folded into the result; nothing propagates.
func (r *Runner) checkFile(ctx context.Context, path string) (FileResult, uint64) {
	content, readErr := os.ReadFile(path)
	if readErr != nil {
		return FileResult{
			Path:   path,
			Status: StatusError,
			Detail: readErr.Error(),
			err:    readErr,
		}, 0
	}

	size := uint64(len(content))

	issues, checkErr := r.parser.Check(ctx, content)
	if checkErr != nil {
		return FileResult{
			Path:   path,
			Status: StatusError,
			Detail: checkErr.Error(),
			err:    checkErr,
		}, size
	}

	if len(issues) > 0 {
		return FileResult{Path: path, Status: StatusFlagged, Issues: issues}, size
	}

	return FileResult{Path: path, Status: StatusClean}, size
}

// collectPythonFiles recursively gathers *.py files anywhere beneath
// dir, hidden directories included.
func collectPythonFiles(dir string) ([]string, error) {
	var files []string

	err := filepath.WalkDir(dir, func(path string, entry os.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}

		if entry.IsDir() {
			return nil
		}

		if filepath.Ext(path) == pythonExt {
			files = append(files, path)
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk directory: %w", err)
	}

	return files, nil
}

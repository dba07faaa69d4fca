package runner

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/Sumatoshi-tech/dagfang/pkg/dagcheck"
)

const bestPractice = "Airflow best practice: Avoid top-level code that connects to DBs or APIs"

// reportResult writes the human-readable outcome for one file.
// Clean and flagged results go to Out; parse and read failures to ErrOut.
func (r *Runner) reportResult(result FileResult) {
	name := filepath.Base(result.Path)

	switch result.Status {
	case StatusError:
		var parseErr *dagcheck.ParseError
		if errors.As(result.err, &parseErr) {
			color.New(color.FgRed).Fprintf(r.ErrOut, "Syntax error in %s: %v\n", result.Path, parseErr)
		} else {
			color.New(color.FgRed).Fprintf(r.ErrOut, "Cannot check %s: %s\n", result.Path, result.Detail)
		}
	case StatusFlagged:
		color.New(color.FgYellow).Fprintf(r.Out, "Potential issues in %s:\n", name)

		for _, issue := range result.Issues {
			color.New(color.FgYellow).Fprintf(r.Out, "  - Line %d: %s\n", issue.Line, issue.Message)
		}

		color.New(color.FgCyan).Fprintln(r.Out, bestPractice)
	case StatusClean:
		color.New(color.FgGreen).Fprintf(r.Out, "%s - no obvious top-level side effects\n", name)
	}
}

// reportNoFiles warns about a directory with no candidate files.
// An empty directory is not an error.
func (r *Runner) reportNoFiles(dir string) {
	color.New(color.FgYellow).Fprintf(r.ErrOut, "No Python files found in %s\n", dir)
}

// writeSummary renders the aggregate table shown for verbose directory runs.
func (r *Runner) writeSummary(summary Summary) {
	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.AppendHeader(table.Row{"Files", "Clean", "Flagged", "Errors", "Source"})
	tbl.AppendRow(table.Row{
		summary.Checked,
		summary.Clean,
		summary.Flagged,
		summary.SyntaxErrors,
		humanize.IBytes(summary.SourceBytes),
	})

	fmt.Fprintln(r.Out, tbl.Render())
}

// writeJSON encodes per-file results as a JSON array on Out.
func (r *Runner) writeJSON(results []FileResult) error {
	if results == nil {
		results = []FileResult{}
	}

	encoder := json.NewEncoder(r.Out)
	encoder.SetIndent("", "  ")

	encodeErr := encoder.Encode(results)
	if encodeErr != nil {
		return fmt.Errorf("failed to encode JSON: %w", encodeErr)
	}

	return nil
}

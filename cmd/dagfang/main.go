// Package main provides the entry point for the dagfang CLI tool.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/dagfang/internal/runner"
	"github.com/Sumatoshi-tech/dagfang/pkg/version"
)

// ErrChecksFailed indicates at least one file was flagged or unparsable.
var ErrChecksFailed = errors.New("integrity checks failed")

func main() {
	rootCmd := newRootCmd()

	err := rootCmd.Execute()
	if err != nil {
		if !errors.Is(err, ErrChecksFailed) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}

		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		noColor bool
		verbose bool
		format  string
	)

	cmd := &cobra.Command{
		Use:   "dagfang <path>",
		Short: "Validate Airflow DAG files for common anti-patterns",
		Long: `Dagfang checks Python DAG files for top-level code that may cause
scheduler performance issues. Top-level code should only define DAGs,
operators, and imports. It should NOT make DB connections, API calls,
or heavy computations.

The argument is a Python file or a directory searched recursively for
*.py files. Exit status is 0 only when every checked file is clean.`,
		Args: cobra.ExactArgs(1),
		// Errors are printed once, by main; cobra still shows usage for
		// argument-validation failures.
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Arguments are valid from here on; run failures should not
			// re-print usage.
			cmd.SilenceUsage = true

			if noColor {
				color.NoColor = true //nolint:reassign // intentional override of library global
			}

			run := runner.New(cmd.OutOrStdout(), cmd.ErrOrStderr())
			run.Format = format
			run.Verbose = verbose

			summary, err := run.Run(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			if !summary.Passed() {
				return ErrChecksFailed
			}

			return nil
		},
	}

	cmd.Flags().BoolVar(&noColor, "no-color", false, "disable colored output")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "print an aggregate summary for directory runs")
	cmd.Flags().StringVar(&format, "format", runner.FormatText, "output format: text or json")

	cmd.AddCommand(versionCmd())

	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "dagfang %s (commit: %s, built: %s)\n",
				version.Version, version.Commit, version.Date)
		},
	}
}

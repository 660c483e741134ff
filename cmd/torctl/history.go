package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/nao1215/torctl/internal/config"
	"github.com/nao1215/torctl/internal/history"
	"github.com/nao1215/torctl/internal/report"
)

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recorded Tor session renewals",
		Long: `History lists renewal attempts recorded by torctl renew, newest first.

Examples:
  # Show the last 20 renewals
  torctl history

  # Show everything, including raw ControlPort replies
  torctl history -n 0 --verbose

  # Write a Markdown report to a file
  torctl history --markdown --output renewals.md`,
		Args: cobra.NoArgs,
		RunE: runHistoryCmd,
	}

	cmd.Flags().IntP("limit", "n", 20,
		"Maximum number of renewals to show (0 shows all)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output a Markdown report instead of plain text")
	cmd.Flags().StringP("output", "o", "",
		"Write the report to the specified file path (creates directories if needed)")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}
	useMarkdown, err := cmd.Flags().GetBool("markdown")
	if err != nil {
		return err
	}
	outputPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}
	verbose := getVerboseFlag(cmd)

	// Open read-only: listing history must never create an empty database.
	db, err := history.Open(config.XDGDataDir(), history.Options{})
	if err != nil {
		return fmt.Errorf("no renewal history recorded yet (run torctl renew first): %w", err)
	}
	defer db.Close() //nolint:errcheck // Read-only session

	records, err := db.Recent(cmd.Context(), limit)
	if err != nil {
		return err
	}

	var out io.Writer = cmd.OutOrStdout()
	if outputPath != "" {
		if err := os.MkdirAll(filepath.Dir(outputPath), 0750); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
		f, err := os.Create(outputPath) //nolint:gosec // User-provided output path is intentional
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close() //nolint:errcheck // Flushed by the writer below
		out = f
	}

	var w report.Writer
	if useMarkdown {
		w = report.NewMarkdownWriter(out)
	} else {
		w = report.NewSimpleWriter(out, report.WithVerbose(verbose))
	}

	_, err = w.Write(records)
	return err
}

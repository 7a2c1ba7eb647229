package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/nao1215/ucomment/internal/config"
	"github.com/nao1215/ucomment/internal/database"
	"github.com/nao1215/ucomment/internal/report"
)

// defaultHistoryLimit is the number of runs listed when --limit is not set.
const defaultHistoryLimit = 20

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [video-id]",
		Short: "List recorded crawl runs",
		Long: `History lists the crawl runs recorded in the history database, newest
first. Give a video id to list only the runs of that video.

Examples:
  # Last 20 runs as a table
  ucomment history

  # Every run of one video, with error messages
  ucomment history -v -n 0 abc123

  # Markdown report written to a file, table on the terminal
  ucomment history -m -o history.md`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistoryCmd,
	}

	cmd.Flags().BoolP("json", "j", false,
		"Output JSON (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write the report to a file; the table is still shown on stdout")
	cmd.Flags().IntP("limit", "n", defaultHistoryLimit,
		"Maximum number of runs to list (0 = all)")
	cmd.Flags().String("db-dir", "",
		"History database directory (default: XDG data directory)")
	cmd.MarkFlagsMutuallyExclusive("json", "markdown")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()
	jsonOut, err := flags.GetBool("json")
	if err != nil {
		return err
	}
	markdownOut, err := flags.GetBool("markdown")
	if err != nil {
		return err
	}
	outputPath, err := flags.GetString("output")
	if err != nil {
		return err
	}
	limit, err := flags.GetInt("limit")
	if err != nil {
		return err
	}
	dbDir, err := flags.GetString("db-dir")
	if err != nil {
		return err
	}
	if dbDir == "" {
		dbDir = config.XDGDataDir()
	}

	var videoID string
	if len(args) == 1 {
		videoID = args[0]
		if !config.IsValidVideoID(videoID) {
			return fmt.Errorf("%w: %q", config.ErrInvalidVideoID, videoID)
		}
	}

	db, err := database.Open(dbDir, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	crawls, err := db.ListCrawls(cmd.Context(), videoID, limit)
	if err != nil {
		return err
	}

	verbose := getVerboseFlag(cmd)
	stdout := cmd.OutOrStdout()
	table := report.NewSimpleWriter(stdout, report.WithVerbose(verbose))

	if outputPath == "" {
		switch {
		case jsonOut:
			_, err = report.NewJSONWriter(stdout, report.WithPrettyPrint()).Write(crawls)
		case markdownOut:
			_, err = report.NewMarkdownWriter(stdout).Write(crawls)
		default:
			_, err = table.Write(crawls)
		}
		return err
	}

	if dir := filepath.Dir(outputPath); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	f, err := os.Create(outputPath) //nolint:gosec // path given by the operator
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer f.Close()

	var fileWriter report.Writer
	switch {
	case jsonOut:
		fileWriter = report.NewJSONWriter(f, report.WithPrettyPrint())
	case markdownOut:
		fileWriter = report.NewMarkdownWriter(f)
	default:
		fileWriter = report.NewSimpleWriter(f, report.WithVerbose(verbose))
	}

	if _, err := report.NewMultiWriter(fileWriter, table).Write(crawls); err != nil {
		return err
	}
	return f.Close()
}

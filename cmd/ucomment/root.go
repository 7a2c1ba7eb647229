package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	ulog "github.com/nao1215/ucomment/internal/log"
)

// NewRootCmd creates the root command for ucomment.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ucomment",
		Short: "Download the comments of a video to CSV",
		Long: `ucomment downloads the comments and replies of videos into one CSV file
per video (UserId,Author,Comment,Likes).

Videos are crawled with the crawl subcommand, not by passing the video id
to ucomment itself:

  ucomment crawl <video-id>...

Each run is also recorded in a local history database, which the history
command lists.`,
		Example: `  ucomment crawl abc123
  ucomment crawl -o out abc123 def456
  ucomment history`,
		Args:          cobra.ArbitraryArgs,
		RunE:          runRootCmd,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().Bool("log-json", false, "Write logs as JSON")

	cmd.AddCommand(NewCrawlCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// runRootCmd prints the help, or points a bare video id at the crawl
// subcommand.
func runRootCmd(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return cmd.Help()
	}
	return fmt.Errorf("unknown command %q for %q; to crawl a video run: ucomment crawl %s",
		args[0], cmd.CommandPath(), strings.Join(args, " "))
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// newLogger builds the masking logger selected by the global flags.
func newLogger(cmd *cobra.Command, w io.Writer) *slog.Logger {
	verbose := getVerboseFlag(cmd)
	if jsonLogs, err := cmd.Flags().GetBool("log-json"); err == nil && jsonLogs {
		return ulog.NewSecureJSONLogger(w, verbose)
	}
	return ulog.NewSecureLogger(w, verbose)
}

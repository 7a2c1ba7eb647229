package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/nao1215/ucomment/internal/model"
)

// SimpleWriter outputs crawl history as a plain text table.
//
// Design decision: We use plain text with ASCII formatting rather than
// ANSI colors because it works in all terminals and is easy to pipe to
// files or other tools.
type SimpleWriter struct {
	baseWriter

	// verbose adds the error line of failed runs.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithVerbose enables the error line of failed runs.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the crawl history in human-readable format.
func (w *SimpleWriter) Write(crawls []*model.Crawl) (int, error) {
	var sb strings.Builder

	if len(crawls) == 0 {
		sb.WriteString("No crawl runs recorded.\n")
		return w.output.Write([]byte(sb.String()))
	}

	fmt.Fprintf(&sb, "%-6s %-14s %-10s %10s %7s  %-23s %s\n",
		"ID", "VIDEO", "STATUS", "COMMENTS", "PAGES", "STARTED", "DURATION")
	sb.WriteString(strings.Repeat("-", 90))
	sb.WriteString("\n")

	for _, c := range crawls {
		fmt.Fprintf(&sb, "%-6d %-14s %-10s %10d %7d  %-23s %s\n",
			c.ID,
			truncateString(c.VideoID, 14),
			StatusLabel(c.Status),
			c.Comments,
			c.PagesFetched,
			formatTime(c.StartedAt),
			formatDuration(c))

		if w.verbose && c.ErrorMessage != "" {
			fmt.Fprintf(&sb, "       error: %s\n", c.ErrorMessage)
		}
	}

	counts := countByStatus(crawls)
	sb.WriteString("\n")
	fmt.Fprintf(&sb, "%d run(s): %d completed, %d failed, %d cancelled\n",
		len(crawls),
		counts[model.CrawlStatusCompleted],
		counts[model.CrawlStatusFailed],
		counts[model.CrawlStatusCancelled])

	return w.output.Write([]byte(sb.String()))
}

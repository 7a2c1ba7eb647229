package report

import (
	"io"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/nao1215/ucomment/internal/model"
)

// Writer defines the interface for crawl history output.
//
// Design decision: We use an interface to allow different output formats
// and destinations. This enables writing to files, stdout, or network
// connections with the same API.
type Writer interface {
	// Write outputs the crawl runs to the configured destination.
	// Returns the number of bytes written and any error encountered.
	Write(crawls []*model.Crawl) (int, error)
}

// MultiWriter writes to multiple Writers in order.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write outputs the crawls to all configured Writers.
// Returns the total bytes written across all writers.
// Stops on first error encountered.
func (m *MultiWriter) Write(crawls []*model.Crawl) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(crawls)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// timeLayout is used for every timestamp in history output.
const timeLayout = "2006-01-02 15:04:05 MST"

// StatusLabel returns the display label of a crawl status ("Completed").
func StatusLabel(status model.CrawlStatus) string {
	return cases.Title(language.English).String(string(status))
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format(timeLayout)
}

func formatDuration(c *model.Crawl) string {
	d := c.Duration()
	if d == 0 {
		return "-"
	}
	return d.Round(time.Millisecond).String()
}

// truncateString truncates a string to maxLen characters with ellipsis.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}

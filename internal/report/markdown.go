package report

import (
	"io"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/nao1215/ucomment/internal/model"
)

// MarkdownWriter outputs crawl history in Markdown format.
// This format is designed for documentation and sharing.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation, which gives us tables, mermaid charts and GitHub alerts
// without hand-escaping.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the crawl history in Markdown format.
func (w *MarkdownWriter) Write(crawls []*model.Crawl) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Comment Crawl History")
	md.PlainText("")

	w.writeSummary(md, crawls)
	w.writeRuns(md, crawls)
	w.writeFailures(md, crawls)

	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Generated by [ucomment](https://github.com/nao1215/ucomment)*")

	return len(md.String()), md.Build()
}

// writeSummary writes the status summary table, chart and alert.
func (w *MarkdownWriter) writeSummary(md *markdown.Markdown, crawls []*model.Crawl) {
	md.H2("Summary")
	md.PlainText("")

	counts := countByStatus(crawls)
	var comments int64
	for _, c := range crawls {
		comments += c.Comments
	}

	rows := make([][]string, 0, len(statusOrder)+1)
	for _, s := range statusOrder {
		rows = append(rows, []string{StatusLabel(s), strconv.Itoa(counts[s])})
	}
	rows = append(rows, []string{"**Comments**", "**" + strconv.FormatInt(comments, 10) + "**"})

	md.Table(markdown.TableSet{
		Header: []string{"Status", "Runs"},
		Rows:   rows,
	})
	md.PlainText("")

	if len(crawls) > 0 {
		chart := piechart.NewPieChart(
			io.Discard,
			piechart.WithTitle("Crawl Outcomes"),
			piechart.WithShowData(true),
		)
		for _, s := range statusOrder {
			if counts[s] > 0 {
				chart.LabelAndIntValue(StatusLabel(s), uint64(counts[s]))
			}
		}
		md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
		md.PlainText("")
	}

	switch {
	case len(crawls) == 0:
		md.Note("No crawl runs recorded yet.")
	case counts[model.CrawlStatusFailed] > 0:
		md.Warningf("%d crawl run(s) failed. Their CSV files hold partial output.",
			counts[model.CrawlStatusFailed])
	case counts[model.CrawlStatusCancelled] > 0:
		md.Importantf("%d crawl run(s) were cancelled.", counts[model.CrawlStatusCancelled])
	default:
		md.Tip("Every recorded crawl completed.")
	}
	md.PlainText("")
}

// writeRuns writes one table row per crawl run.
func (w *MarkdownWriter) writeRuns(md *markdown.Markdown, crawls []*model.Crawl) {
	if len(crawls) == 0 {
		return
	}

	md.H2("Runs")
	md.PlainText("")

	rows := make([][]string, len(crawls))
	for i, c := range crawls {
		output := c.OutputPath
		if output == "" {
			output = "-"
		}
		rows[i] = []string{
			"`" + c.VideoID + "`",
			StatusLabel(c.Status),
			strconv.FormatInt(c.Comments, 10),
			strconv.Itoa(c.PagesFetched),
			formatTime(c.StartedAt),
			formatDuration(c),
			truncateString(output, 40),
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"Video", "Status", "Comments", "Pages", "Started", "Duration", "Output"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeFailures writes the error of every failed run as a details block.
func (w *MarkdownWriter) writeFailures(md *markdown.Markdown, crawls []*model.Crawl) {
	var failed []*model.Crawl
	for _, c := range crawls {
		if c.ErrorMessage != "" {
			failed = append(failed, c)
		}
	}
	if len(failed) == 0 {
		return
	}

	md.H2("Errors")
	md.PlainText("")
	for _, c := range failed {
		md.Details(c.VideoID+" ("+formatTime(c.StartedAt)+")", c.ErrorMessage)
	}
	md.PlainText("")
}

// statusOrder is the display order of statuses in summaries.
var statusOrder = []model.CrawlStatus{
	model.CrawlStatusCompleted,
	model.CrawlStatusFailed,
	model.CrawlStatusCancelled,
	model.CrawlStatusRunning,
	model.CrawlStatusPending,
}

func countByStatus(crawls []*model.Crawl) map[model.CrawlStatus]int {
	counts := make(map[model.CrawlStatus]int, len(statusOrder))
	for _, c := range crawls {
		counts[c.Status]++
	}
	return counts
}

// Package report provides the output side of a crawl.
//
// Comment records go to sinks:
//   - CSVWriter: the UserId,Author,Comment,Likes file, flushed per row
//   - MultiSink: fans one record out to several sinks
//
// Crawl history goes to writers:
//   - SimpleWriter: human-readable text table for terminal display
//   - MarkdownWriter: Markdown document with a status chart
//   - JSONWriter: structured JSON output for tool integration
//
// Progress renders the live "\r<count>" line and the final total.
//
// Design decision: We separate output formatting from the data structures
// (which are in the model package) so new formats can be added without
// touching the crawl itself.
package report

// Package database provides SQLite-based storage for crawl history.
//
// This package implements the CrawlDB, which stores:
//   - Crawl runs: one row per video id per invocation, with status and counters
//   - Comments: an archive of every record a run emitted, in emission order
//
// The database is one file in the XDG data directory, opened through the
// CGO-free modernc.org/sqlite driver with a single connection, so the
// writes of concurrent batch crawls are serialized.
//
// The CSV file remains the primary output of a crawl. The database is a
// secondary sink and can be disabled from the command line.
package database

// Package model defines the core data structures used throughout ucomment.
//
// This package contains the following main types:
//   - Token: An opaque continuation token issued by the remote service
//   - Comment: One extracted comment, the unit written to every sink
//   - Counter: The shared count of comments emitted during a crawl
//   - Crawl: The record of one crawl run (status, counts, timing)
//
// Design decision: We separate models into their own package to avoid circular
// dependencies. The bootstrap, innertube, crawler, report and database packages
// all need these types, so centralizing them prevents import cycles.
package model

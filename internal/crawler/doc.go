// Package crawler walks a video's comment tree.
//
// # Architecture
//
// The tree is not known up front. Every fetched page is a flat list of nodes,
// and some of those nodes carry continuation tokens that lead to further
// pages: "load more" buttons, pagination cursors and the reply section of a
// thread. The Walker follows every token it discovers, depth-first, and
// emits one record per comment it classifies.
//
// Design decision: The walk uses an explicit stack of frames instead of
// recursion because:
//  1. Reply and pagination chains have no upper bound on their length
//  2. Cancellation and the page limit are checked in one place
//
// Each frame holds the nodes of one page, the index of the next node to
// classify and the tokens the previously classified node produced. Those
// tokens are drained, each pushing a new frame, before the next sibling is
// classified. The output order is therefore identical to a recursive
// depth-first walk.
//
// # Components
//
//   - Classify: pure node classification
//   - ExtractComment: field extraction with per-field defaults
//   - Walker: the traversal loop
//
// # Errors
//
// A fetch failure aborts the walk. A node that does not fit the node schema
// is a MalformedNodeError: it is logged, counted and skipped, and the walk
// continues with its siblings.
//
// # Usage
//
//	w := crawler.NewWalker(fetcher, crawler.WithMaxPages(1000))
//	stats, err := w.Walk(ctx, token, counter, sink)
package crawler

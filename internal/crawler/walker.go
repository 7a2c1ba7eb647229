package crawler

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nao1215/ucomment/internal/innertube"
	"github.com/nao1215/ucomment/internal/model"
)

// Fetcher returns the nodes of the page a token leads to.
type Fetcher interface {
	Fetch(ctx context.Context, token model.Token) ([]innertube.Node, error)
}

// Sink receives comment records in discovery order.
// Implementations need not be safe for concurrent use.
type Sink interface {
	Append(c model.Comment) error
}

// Stats summarizes one walk.
type Stats struct {
	// Pages is the number of pages fetched.
	Pages int
	// Nodes is the number of nodes classified, malformed ones included.
	Nodes int
	// Comments is the number of records emitted.
	Comments int
	// Duplicates is the number of tokens skipped because they were
	// already followed.
	Duplicates int
	// Malformed is the number of nodes skipped as undecodable.
	Malformed int
}

// Walker performs the depth-first walk of a comment tree.
type Walker struct {
	fetcher  Fetcher
	maxPages int
	progress func(total int64)
	logger   *slog.Logger
}

// Option configures a Walker.
type Option func(*Walker)

// WithMaxPages stops the walk with ErrPageLimit once n pages were fetched.
// 0 means no limit.
func WithMaxPages(n int) Option {
	return func(w *Walker) {
		if n >= 0 {
			w.maxPages = n
		}
	}
}

// WithProgress registers fn to be called after every emitted record with
// the counter's new total.
func WithProgress(fn func(total int64)) Option {
	return func(w *Walker) {
		w.progress = fn
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Walker) {
		w.logger = logger
	}
}

// NewWalker creates a Walker that fetches pages through fetcher.
func NewWalker(fetcher Fetcher, opts ...Option) *Walker {
	w := &Walker{
		fetcher: fetcher,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// frame is one fetched page on the walk stack.
type frame struct {
	// page is the fingerprint of the token the page was fetched with.
	page string
	// nodes is the page's item list.
	nodes []innertube.Node
	// next is the index of the next node to classify.
	next int
	// pending holds the tokens of the node classified last, not yet followed.
	pending []model.Token
}

// Walk follows token and everything reachable from it. Every record is
// appended to sink and counted on counter. The returned Stats are valid
// even when an error is returned.
//
// ctx is checked before every fetch. A fetch or sink error aborts the walk;
// malformed nodes do not.
func (w *Walker) Walk(ctx context.Context, token model.Token, counter *model.Counter, sink Sink) (Stats, error) {
	var stats Stats
	visited := make(map[string]struct{})
	stack := []*frame{{pending: []model.Token{token}}}

	for len(stack) > 0 {
		top := stack[len(stack)-1]

		if len(top.pending) > 0 {
			tok := top.pending[0]
			top.pending = top.pending[1:]

			fp := tok.Fingerprint()
			if _, seen := visited[fp]; seen {
				stats.Duplicates++
				w.logger.Debug("continuation already followed", "fingerprint", fp)
				continue
			}
			visited[fp] = struct{}{}

			if err := ctx.Err(); err != nil {
				return stats, err
			}
			if w.maxPages > 0 && stats.Pages >= w.maxPages {
				return stats, fmt.Errorf("%w: %d pages", ErrPageLimit, w.maxPages)
			}

			nodes, err := w.fetcher.Fetch(ctx, tok)
			if err != nil {
				return stats, fmt.Errorf("fetch page %s: %w", fp, err)
			}
			stats.Pages++
			w.logger.Debug("page fetched", "fingerprint", fp, "nodes", len(nodes), "depth", len(stack))

			stack = append(stack, &frame{page: fp, nodes: nodes})
			continue
		}

		if top.next < len(top.nodes) {
			idx := top.next
			top.next++
			stats.Nodes++

			c, err := Classify(top.nodes[idx])
			if err != nil {
				stats.Malformed++
				w.logger.Warn("skipping node",
					"error", &MalformedNodeError{Index: idx, Page: top.page, Err: err})
				continue
			}

			if c.Comment != nil {
				if err := sink.Append(ExtractComment(c.Comment)); err != nil {
					return stats, fmt.Errorf("append comment: %w", err)
				}
				stats.Comments++
				total := counter.Inc()
				if w.progress != nil {
					w.progress(total)
				}
			}

			top.pending = c.Tokens()
			continue
		}

		stack = stack[:len(stack)-1]
	}

	return stats, nil
}

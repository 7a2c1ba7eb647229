package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/nao1215/ucomment/internal/model"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency is the number of crawls run at once when no limit is set.
const DefaultConcurrency = 4

// BatchProcessor crawls several video ids concurrently.
//
// Design decision: A crawl failure does not cancel the other crawls. Each
// crawl keeps its own outcome on its record and the caller decides what a
// failed crawl means for the process.
type BatchProcessor struct {
	// pipelineFactory builds a fresh pipeline for each crawl, so steps
	// holding per-crawl state (the output file) are never shared.
	pipelineFactory func(videoID string) *Pipeline

	// crawlFactory builds the record of each crawl.
	crawlFactory func(videoID string) *model.Crawl

	concurrency int
	logger      *slog.Logger
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithBatchLogger sets a custom logger for batch processing.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchProcessor) {
		b.logger = logger
	}
}

// WithConcurrency sets the maximum number of concurrent crawls.
// Non-positive values are ignored.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// WithCrawlFactory overrides how crawl records are created.
// The default is model.NewCrawl.
func WithCrawlFactory(fn func(videoID string) *model.Crawl) BatchOption {
	return func(b *BatchProcessor) {
		if fn != nil {
			b.crawlFactory = fn
		}
	}
}

// NewBatchProcessor creates a new BatchProcessor.
func NewBatchProcessor(pipelineFactory func(videoID string) *Pipeline, opts ...BatchOption) *BatchProcessor {
	bp := &BatchProcessor{
		pipelineFactory: pipelineFactory,
		crawlFactory:    model.NewCrawl,
		concurrency:     DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(bp)
	}
	if bp.logger == nil {
		bp.logger = slog.Default()
	}
	return bp
}

// ProcessBatch crawls every id and returns one record per id, in input
// order. Records of crawls that never started because ctx was cancelled
// are marked cancelled.
//
// The returned error is ctx's error if the batch was cancelled, nil
// otherwise. Per-crawl failures are only on the records.
func (bp *BatchProcessor) ProcessBatch(ctx context.Context, videoIDs []string) ([]*model.Crawl, error) {
	return bp.process(ctx, videoIDs, nil)
}

// ProcessBatchWithCallback is ProcessBatch with callback invoked as each
// crawl ends. callback runs on the crawl's goroutine and must be safe for
// concurrent use.
func (bp *BatchProcessor) ProcessBatchWithCallback(
	ctx context.Context,
	videoIDs []string,
	callback func(crawl *model.Crawl, index int),
) ([]*model.Crawl, error) {
	return bp.process(ctx, videoIDs, callback)
}

func (bp *BatchProcessor) process(
	ctx context.Context,
	videoIDs []string,
	callback func(crawl *model.Crawl, index int),
) ([]*model.Crawl, error) {
	bp.logger.Debug("starting batch",
		"videos", len(videoIDs),
		"concurrency", bp.concurrency,
	)
	start := time.Now()

	// Each goroutine writes only its own index.
	crawls := make([]*model.Crawl, len(videoIDs))
	for i, id := range videoIDs {
		crawls[i] = bp.crawlFactory(id)
	}

	var g errgroup.Group
	g.SetLimit(bp.concurrency)

	for i, crawl := range crawls {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				crawl.Finish(time.Now(), model.CrawlStatusCancelled, err)
			} else if err := bp.pipelineFactory(crawl.VideoID).Execute(ctx, crawl); err != nil {
				bp.logger.Warn("crawl failed", "video", crawl.VideoID, "error", err)
			}
			if callback != nil {
				callback(crawl, i)
			}
			return nil
		})
	}
	_ = g.Wait() //nolint:errcheck // goroutines never return an error

	bp.logger.Debug("batch complete",
		"videos", len(videoIDs),
		"elapsed", time.Since(start),
	)
	return crawls, ctx.Err()
}

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/nao1215/ucomment/internal/crawler"
	"github.com/nao1215/ucomment/internal/model"
	"github.com/nao1215/ucomment/internal/report"
)

// ErrOutputNotOpen is returned by WalkStep when its output step has not
// opened the CSV file.
var ErrOutputNotOpen = errors.New("output not open")

// OutputStep creates the CSV file of a crawl at crawl.OutputPath and seeds
// it with the header row. It owns the file until the pipeline closes it.
//
// Design decision: The file is created before the bootstrap token is
// resolved, so a crawl that fails to bootstrap still leaves a header-only
// file behind.
type OutputStep struct {
	csv    *report.CSVWriter
	logger *slog.Logger
}

// NewOutputStep creates an output step.
func NewOutputStep(logger *slog.Logger) *OutputStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &OutputStep{logger: logger}
}

// Name returns the step name.
func (s *OutputStep) Name() string {
	return "output"
}

// Do creates the output file.
func (s *OutputStep) Do(_ context.Context, crawl *model.Crawl) error {
	if crawl.OutputPath == "" {
		return fmt.Errorf("crawl %s: %w", crawl.VideoID, ErrOutputNotOpen)
	}
	w, err := report.CreateCSVFile(crawl.OutputPath)
	if err != nil {
		return err
	}
	s.csv = w
	s.logger.Debug("output created", "video", crawl.VideoID, "path", crawl.OutputPath)
	return nil
}

// Writer returns the CSV writer, or nil before Do succeeded.
func (s *OutputStep) Writer() *report.CSVWriter {
	return s.csv
}

// Close flushes and closes the file. It is safe to call more than once.
func (s *OutputStep) Close() error {
	if s.csv == nil {
		return nil
	}
	err := s.csv.Close()
	s.csv = nil
	return err
}

// Resolver returns the first continuation token of a page.
// *bootstrap.Resolver satisfies it.
type Resolver interface {
	Resolve(ctx context.Context, pageURL string) (model.Token, error)
}

// ResolveStep extracts the bootstrap token from the crawl's watch page.
type ResolveStep struct {
	resolver Resolver
}

// NewResolveStep creates a resolve step.
func NewResolveStep(resolver Resolver) *ResolveStep {
	return &ResolveStep{resolver: resolver}
}

// Name returns the step name.
func (s *ResolveStep) Name() string {
	return "resolve"
}

// Do resolves crawl.PageURL and stores the token on the crawl.
func (s *ResolveStep) Do(ctx context.Context, crawl *model.Crawl) error {
	tok, err := s.resolver.Resolve(ctx, crawl.PageURL)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", crawl.VideoID, err)
	}
	crawl.BootstrapToken = tok
	return nil
}

// WalkStep walks the comment tree from the bootstrap token, writing every
// record to the output step's CSV file and to any archive sink.
type WalkStep struct {
	walker  *crawler.Walker
	output  *OutputStep
	counter *model.Counter
	archive func(ctx context.Context, crawl *model.Crawl) crawler.Sink
	logger  *slog.Logger
}

// WalkStepOption configures a WalkStep.
type WalkStepOption func(*WalkStep)

// WithArchive adds a second sink built per crawl, after the crawl record
// has been saved. A nil sink from fn is ignored. The archive never fails
// the crawl: its first error is logged and the archive is dropped for the
// rest of the walk.
func WithArchive(fn func(ctx context.Context, crawl *model.Crawl) crawler.Sink) WalkStepOption {
	return func(s *WalkStep) {
		s.archive = fn
	}
}

// WithWalkLogger sets a custom logger for the walk step.
func WithWalkLogger(logger *slog.Logger) WalkStepOption {
	return func(s *WalkStep) {
		s.logger = logger
	}
}

// NewWalkStep creates a walk step writing to output. counter is shared
// with the caller, which reads the running total from it.
func NewWalkStep(walker *crawler.Walker, output *OutputStep, counter *model.Counter, opts ...WalkStepOption) *WalkStep {
	s := &WalkStep{
		walker:  walker,
		output:  output,
		counter: counter,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the step name.
func (s *WalkStep) Name() string {
	return "walk"
}

// Do walks the tree. The walk statistics are stored on the crawl even when
// the walk fails.
func (s *WalkStep) Do(ctx context.Context, crawl *model.Crawl) error {
	if s.output == nil || s.output.Writer() == nil {
		return fmt.Errorf("crawl %s: %w", crawl.VideoID, ErrOutputNotOpen)
	}

	sinks := []report.Appender{s.output.Writer()}
	if s.archive != nil {
		if a := s.archive(ctx, crawl); a != nil {
			sinks = append(sinks, &bestEffortSink{next: a, videoID: crawl.VideoID, logger: s.logger})
		}
	}

	stats, err := s.walker.Walk(ctx, crawl.BootstrapToken, s.counter, report.NewMultiSink(sinks...))
	crawl.Comments = int64(stats.Comments)
	crawl.PagesFetched = stats.Pages
	crawl.DuplicateTokens = stats.Duplicates
	crawl.MalformedNodes = stats.Malformed

	if stats.Malformed > 0 {
		s.logger.Warn("malformed nodes skipped", "video", crawl.VideoID, "count", stats.Malformed)
	}
	if err != nil {
		return fmt.Errorf("walk %s: %w", crawl.VideoID, err)
	}
	return nil
}

// bestEffortSink forwards records to next until next fails once. The
// failure is logged and swallowed; later records are discarded.
type bestEffortSink struct {
	next     crawler.Sink
	videoID  string
	logger   *slog.Logger
	disabled bool
}

// Append implements crawler.Sink.
func (s *bestEffortSink) Append(c model.Comment) error {
	if s.disabled {
		return nil
	}
	if err := s.next.Append(c); err != nil {
		s.disabled = true
		s.logger.Warn("archive disabled", "video", s.videoID, "error", err)
	}
	return nil
}

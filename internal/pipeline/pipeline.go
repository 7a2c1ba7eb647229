package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/nao1215/ucomment/internal/model"
)

// Step is one stage of a crawl run. Steps run in sequence and share the
// crawl record, which each step reads from and fills in.
//
// Design decision: Steps are an interface rather than function types so a
// step can carry its collaborators (resolver, walker, output) and report a
// stable name for logging.
type Step interface {
	// Do executes the step. A returned error ends the run; later steps
	// are skipped.
	Do(ctx context.Context, crawl *model.Crawl) error

	// Name returns the step's name for logging purposes.
	Name() string
}

// Recorder persists crawl records. *database.CrawlDB satisfies it.
type Recorder interface {
	SaveCrawl(ctx context.Context, c *model.Crawl) error
	UpdateCrawl(ctx context.Context, c *model.Crawl) error
}

// Pipeline runs the steps of one crawl and records its outcome.
type Pipeline struct {
	steps    []Step
	logger   *slog.Logger
	recorder Recorder
	now      func() time.Time
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets a custom logger for the pipeline.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithRecorder stores the crawl record when the run starts and again when
// it ends. Recording failures are logged and never fail the run.
func WithRecorder(r Recorder) Option {
	return func(p *Pipeline) {
		p.recorder = r
	}
}

// WithClock overrides the time source used for the start and finish times.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) {
		if now != nil {
			p.now = now
		}
	}
}

// New creates a new Pipeline with the given options.
// Steps should be added using AddStep after creation.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		steps: make([]Step, 0),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	return p
}

// AddStep appends a step to the pipeline.
func (p *Pipeline) AddStep(step Step) {
	p.steps = append(p.steps, step)
}

// AddSteps appends multiple steps to the pipeline.
func (p *Pipeline) AddSteps(steps ...Step) {
	p.steps = append(p.steps, steps...)
}

// Execute runs the steps in order on crawl and returns the error that
// ended the run, if any.
//
// The crawl is marked running before the first step and finished with
// completed, failed or cancelled afterwards. Steps implementing io.Closer
// are closed in reverse order once the steps are done, whatever the
// outcome, and a close error fails an otherwise successful run.
//
// Design decision: Context is checked between steps. Steps that block
// (fetching, walking) check it themselves.
func (p *Pipeline) Execute(ctx context.Context, crawl *model.Crawl) error {
	crawl.Start(p.now())
	if p.recorder != nil {
		if err := p.recorder.SaveCrawl(ctx, crawl); err != nil {
			p.logger.Warn("failed to record crawl start", "video", crawl.VideoID, "error", err)
		}
	}

	err := p.run(ctx, crawl)
	if cerr := p.closeSteps(); cerr != nil && err == nil {
		err = cerr
	}

	crawl.Finish(p.now(), outcome(ctx, err), err)
	p.logger.Info("crawl finished",
		"video", crawl.VideoID,
		"status", string(crawl.Status),
		"comments", crawl.Comments,
		"pages", crawl.PagesFetched,
		"duration", crawl.Duration(),
	)

	if p.recorder != nil && crawl.ID != 0 {
		// The run may have ended because ctx was cancelled; the final
		// state is still written.
		if rerr := p.recorder.UpdateCrawl(context.WithoutCancel(ctx), crawl); rerr != nil {
			p.logger.Warn("failed to record crawl outcome", "video", crawl.VideoID, "error", rerr)
		}
	}
	return err
}

func (p *Pipeline) run(ctx context.Context, crawl *model.Crawl) error {
	for _, step := range p.steps {
		if err := ctx.Err(); err != nil {
			p.logger.Warn("pipeline cancelled",
				"step", step.Name(),
				"video", crawl.VideoID,
				"reason", err,
			)
			return err
		}

		p.logger.Debug("executing step", "step", step.Name(), "video", crawl.VideoID)
		if err := step.Do(ctx, crawl); err != nil {
			p.logger.Error("step failed",
				"step", step.Name(),
				"video", crawl.VideoID,
				"error", err,
			)
			return err
		}
	}
	return nil
}

func (p *Pipeline) closeSteps() error {
	var errs []error
	for i := len(p.steps) - 1; i >= 0; i-- {
		c, ok := p.steps[i].(io.Closer)
		if !ok {
			continue
		}
		if err := c.Close(); err != nil {
			p.logger.Error("failed to close step", "step", p.steps[i].Name(), "error", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// outcome maps the error that ended a run to a crawl status.
func outcome(ctx context.Context, err error) model.CrawlStatus {
	switch {
	case err == nil:
		return model.CrawlStatusCompleted
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded), ctx.Err() != nil:
		return model.CrawlStatusCancelled
	default:
		return model.CrawlStatusFailed
	}
}

// StepCount returns the number of steps in the pipeline.
func (p *Pipeline) StepCount() int {
	return len(p.steps)
}

// StepNames returns the names of all steps in execution order.
func (p *Pipeline) StepNames() []string {
	names := make([]string, len(p.steps))
	for i, step := range p.steps {
		names[i] = step.Name()
	}
	return names
}

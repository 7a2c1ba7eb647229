package model

import (
	"fmt"
	"time"
)

// WatchURLTemplate builds the bootstrap page URL from a video id.
const WatchURLTemplate = "https://www.youtube.com/watch?v=%s"

// CrawlStatus describes where a crawl run is in its lifecycle.
type CrawlStatus string

const (
	// CrawlStatusPending means the crawl has been created but not started.
	CrawlStatusPending CrawlStatus = "pending"

	// CrawlStatusRunning means the crawl is in progress.
	CrawlStatusRunning CrawlStatus = "running"

	// CrawlStatusCompleted means every reachable token was followed.
	CrawlStatusCompleted CrawlStatus = "completed"

	// CrawlStatusFailed means a fatal error (bootstrap or fetch) stopped the crawl.
	CrawlStatusFailed CrawlStatus = "failed"

	// CrawlStatusCancelled means the crawl was stopped by an external signal.
	CrawlStatusCancelled CrawlStatus = "cancelled"
)

// Crawl is the record of one crawl run for one identifier.
// It is filled in by the pipeline steps and persisted to the history database.
type Crawl struct {
	// ID is the database id of the run. Zero until the run is saved.
	ID int64 `json:"id,omitempty"`

	// VideoID is the identifier supplied by the operator.
	VideoID string `json:"video_id"`

	// PageURL is the bootstrap document URL built from VideoID.
	PageURL string `json:"page_url"`

	// BootstrapToken is the first continuation token. Never serialized.
	BootstrapToken Token `json:"-"`

	// Status is the lifecycle state of the run.
	Status CrawlStatus `json:"status"`

	// Comments is the number of comments emitted by this run.
	Comments int64 `json:"comments"`

	// PagesFetched is the number of continuation pages fetched.
	PagesFetched int `json:"pages_fetched"`

	// DuplicateTokens is the number of tokens skipped because they were
	// already followed earlier in the walk.
	DuplicateTokens int `json:"duplicate_tokens"`

	// MalformedNodes is the number of nodes skipped because their
	// nested fields could not be decoded.
	MalformedNodes int `json:"malformed_nodes"`

	// OutputPath is where the CSV rows of this run were written.
	OutputPath string `json:"output_path,omitempty"`

	// StartedAt is when the run started.
	StartedAt time.Time `json:"started_at"`

	// FinishedAt is when the run ended, successfully or not.
	FinishedAt time.Time `json:"finished_at,omitempty"`

	// Error is the fatal error that ended the run, if any.
	Error error `json:"-"`

	// ErrorMessage is the string form of Error, kept for storage.
	ErrorMessage string `json:"error,omitempty"`
}

// NewCrawl creates a pending crawl for the given video id.
func NewCrawl(videoID string) *Crawl {
	return &Crawl{
		VideoID: videoID,
		PageURL: fmt.Sprintf(WatchURLTemplate, videoID),
		Status:  CrawlStatusPending,
	}
}

// Start marks the crawl as running.
func (c *Crawl) Start(now time.Time) {
	c.Status = CrawlStatusRunning
	c.StartedAt = now
}

// Finish records the outcome of the crawl. A nil err means completion.
func (c *Crawl) Finish(now time.Time, status CrawlStatus, err error) {
	c.Status = status
	c.FinishedAt = now
	if err != nil {
		c.Error = err
		c.ErrorMessage = err.Error()
	}
}

// Duration returns how long the crawl ran.
// It returns zero if the crawl has not finished.
func (c *Crawl) Duration() time.Duration {
	if c.FinishedAt.IsZero() || c.StartedAt.IsZero() {
		return 0
	}
	return c.FinishedAt.Sub(c.StartedAt)
}

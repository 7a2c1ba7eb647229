package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/ucomment/internal/model"
)

// FileName is the database file name inside the data directory.
const FileName = "ucomment.db"

// ErrCrawlNotFound is returned when a crawl id does not exist.
var ErrCrawlNotFound = errors.New("crawl not found")

// CrawlDB provides SQLite-based storage for crawl runs and their comments.
//
// Design decision: We use a single database file for all videos rather
// than one per video. This keeps the history command a single query.
type CrawlDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures CrawlDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent performance.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a CrawlDB in dbDir.
// If CreateIfNotExists is true, the directory and database file are created.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*CrawlDB, error) {
	dbPath := filepath.Join(dbDir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// modernc.org/sqlite: mode=rw refuses to create a missing file, mode=rwc allows it.
	var dsn string
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	} else {
		dsn = dbPath + "?mode=rw"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// One connection serializes the writes of concurrent batch crawls.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	cdb := &CrawlDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := cdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return cdb, nil
}

// Path returns the database file path.
func (cdb *CrawlDB) Path() string {
	return cdb.dbPath
}

// Close closes the database connection.
func (cdb *CrawlDB) Close() error {
	return cdb.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (cdb *CrawlDB) createTables() error {
	schema := `
	-- One row per crawl run
	CREATE TABLE IF NOT EXISTS crawls (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		video_id TEXT NOT NULL,
		page_url TEXT NOT NULL,
		status TEXT NOT NULL,
		comments INTEGER NOT NULL DEFAULT 0,
		pages_fetched INTEGER NOT NULL DEFAULT 0,
		duplicate_tokens INTEGER NOT NULL DEFAULT 0,
		malformed_nodes INTEGER NOT NULL DEFAULT 0,
		output_path TEXT NOT NULL DEFAULT '',
		started_at TEXT NOT NULL DEFAULT '',
		finished_at TEXT NOT NULL DEFAULT '',
		error TEXT NOT NULL DEFAULT ''
	);

	CREATE INDEX IF NOT EXISTS idx_crawls_video ON crawls(video_id);
	CREATE INDEX IF NOT EXISTS idx_crawls_started ON crawls(started_at);

	-- Comments emitted by a run, in emission order
	CREATE TABLE IF NOT EXISTS comments (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		crawl_id INTEGER NOT NULL REFERENCES crawls(id),
		position INTEGER NOT NULL,
		author_id TEXT NOT NULL,
		author_name TEXT NOT NULL,
		text TEXT NOT NULL,
		vote_count INTEGER NOT NULL,
		UNIQUE(crawl_id, position)
	);

	CREATE INDEX IF NOT EXISTS idx_comments_crawl ON comments(crawl_id);
	CREATE INDEX IF NOT EXISTS idx_comments_author ON comments(author_id);
	`

	_, err := cdb.db.ExecContext(context.Background(), schema)
	return err
}

// SaveCrawl inserts c and sets c.ID.
func (cdb *CrawlDB) SaveCrawl(ctx context.Context, c *model.Crawl) error {
	query := `
	INSERT INTO crawls (video_id, page_url, status, comments, pages_fetched, duplicate_tokens,
		malformed_nodes, output_path, started_at, finished_at, error)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := cdb.db.ExecContext(ctx, query,
		c.VideoID,
		c.PageURL,
		string(c.Status),
		c.Comments,
		c.PagesFetched,
		c.DuplicateTokens,
		c.MalformedNodes,
		c.OutputPath,
		formatTimestamp(c.StartedAt),
		formatTimestamp(c.FinishedAt),
		c.ErrorMessage,
	)
	if err != nil {
		return fmt.Errorf("failed to save crawl: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read crawl id: %w", err)
	}
	c.ID = id
	return nil
}

// UpdateCrawl overwrites the stored state of c. c must have been saved.
func (cdb *CrawlDB) UpdateCrawl(ctx context.Context, c *model.Crawl) error {
	query := `
	UPDATE crawls SET
		status = ?, comments = ?, pages_fetched = ?, duplicate_tokens = ?, malformed_nodes = ?,
		output_path = ?, started_at = ?, finished_at = ?, error = ?
	WHERE id = ?
	`

	result, err := cdb.db.ExecContext(ctx, query,
		string(c.Status),
		c.Comments,
		c.PagesFetched,
		c.DuplicateTokens,
		c.MalformedNodes,
		c.OutputPath,
		formatTimestamp(c.StartedAt),
		formatTimestamp(c.FinishedAt),
		c.ErrorMessage,
		c.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update crawl: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update crawl: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: id %d", ErrCrawlNotFound, c.ID)
	}
	return nil
}

const crawlColumns = `id, video_id, page_url, status, comments, pages_fetched, duplicate_tokens,
	malformed_nodes, output_path, started_at, finished_at, error`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCrawl(row rowScanner) (*model.Crawl, error) {
	var (
		c                 model.Crawl
		status            string
		started, finished string
	)
	err := row.Scan(
		&c.ID,
		&c.VideoID,
		&c.PageURL,
		&status,
		&c.Comments,
		&c.PagesFetched,
		&c.DuplicateTokens,
		&c.MalformedNodes,
		&c.OutputPath,
		&started,
		&finished,
		&c.ErrorMessage,
	)
	if err != nil {
		return nil, err
	}
	c.Status = model.CrawlStatus(status)
	c.StartedAt = parseTimestamp(started)
	c.FinishedAt = parseTimestamp(finished)
	return &c, nil
}

// GetCrawl retrieves a crawl by its database ID.
func (cdb *CrawlDB) GetCrawl(ctx context.Context, id int64) (*model.Crawl, error) {
	query := `SELECT ` + crawlColumns + ` FROM crawls WHERE id = ?`

	c, err := scanCrawl(cdb.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: id %d", ErrCrawlNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get crawl: %w", err)
	}
	return c, nil
}

// ListCrawls returns crawls newest first. An empty videoID lists every
// video; limit <= 0 means no limit.
func (cdb *CrawlDB) ListCrawls(ctx context.Context, videoID string, limit int) ([]*model.Crawl, error) {
	query := `SELECT ` + crawlColumns + ` FROM crawls WHERE 1=1`
	args := make([]any, 0, 2)

	if videoID != "" {
		query += " AND video_id = ?"
		args = append(args, videoID)
	}
	query += " ORDER BY id DESC"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := cdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list crawls: %w", err)
	}
	defer rows.Close()

	var crawls []*model.Crawl
	for rows.Next() {
		c, err := scanCrawl(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan crawl: %w", err)
		}
		crawls = append(crawls, c)
	}

	return crawls, rows.Err()
}

// ListComments returns the archived comments of a crawl in emission order.
func (cdb *CrawlDB) ListComments(ctx context.Context, crawlID int64) ([]model.Comment, error) {
	query := `
	SELECT author_id, author_name, text, vote_count
	FROM comments
	WHERE crawl_id = ?
	ORDER BY position
	`

	rows, err := cdb.db.QueryContext(ctx, query, crawlID)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	defer rows.Close()

	var comments []model.Comment
	for rows.Next() {
		var (
			c     model.Comment
			votes int64
		)
		if err := rows.Scan(&c.AuthorID, &c.AuthorName, &c.Text, &votes); err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		c.VoteCount = uint64(votes) //nolint:gosec // stored from a uint64 that fits int64
		comments = append(comments, c)
	}

	return comments, rows.Err()
}

// CommentSink archives the comments of one crawl. It satisfies the crawler
// sink contract and is not safe for concurrent use.
type CommentSink struct {
	db      *CrawlDB
	ctx     context.Context //nolint:containedctx // the sink contract has no context parameter
	crawlID int64
	next    int64
}

// CommentSink returns a sink archiving comments under crawlID.
func (cdb *CrawlDB) CommentSink(ctx context.Context, crawlID int64) *CommentSink {
	return &CommentSink{db: cdb, ctx: ctx, crawlID: crawlID}
}

// Append stores c as the next comment of the crawl.
func (s *CommentSink) Append(c model.Comment) error {
	query := `
	INSERT INTO comments (crawl_id, position, author_id, author_name, text, vote_count)
	VALUES (?, ?, ?, ?, ?, ?)
	`

	votes := int64(c.VoteCount) //nolint:gosec // like counts are far below 2^63
	if _, err := s.db.db.ExecContext(s.ctx, query,
		s.crawlID, s.next, c.AuthorID, c.AuthorName, c.Text, votes); err != nil {
		return fmt.Errorf("failed to archive comment: %w", err)
	}
	s.next++
	return nil
}

// formatTimestamp renders t for storage. The zero time is stored as "".
func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nao1215/ucomment/internal/bootstrap"
	"github.com/nao1215/ucomment/internal/config"
	"github.com/nao1215/ucomment/internal/crawler"
	"github.com/nao1215/ucomment/internal/database"
	"github.com/nao1215/ucomment/internal/innertube"
	"github.com/nao1215/ucomment/internal/model"
	"github.com/nao1215/ucomment/internal/pipeline"
	"github.com/nao1215/ucomment/internal/report"
	"github.com/nao1215/ucomment/internal/transport"
)

// NewCrawlCmd creates the crawl command.
func NewCrawlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl [video-id]...",
		Short: "Download the comments of one or more videos",
		Long: `Crawl downloads every comment and reply of each video into
<output-dir>/<video-id>.csv with the header UserId,Author,Comment,Likes.

Rows are flushed as they are written, so a crawl that fails half way keeps
the rows it reached. The running count is shown on stderr and the final
"total = N" line is printed on stdout.

Examples:
  # Crawl one video into ./abc123.csv
  ucomment crawl abc123

  # Crawl three videos, two at a time, into ./out
  ucomment crawl -o out -b 2 abc123 def456 ghi789

  # Stop each crawl after 50 continuation pages
  ucomment crawl -p 50 abc123

  # Go through a local SOCKS5 proxy
  ucomment crawl -x 127.0.0.1:9050 abc123

Configuration file (.ucomment) example:
  client:
    cookie: "CONSENT=YES+1"
    clientVersion: "2.20230120.00.00"
  defaults:
    outputDir: comments
    batchSize: 2`,
		Args: cobra.ArbitraryArgs,
		RunE: runCrawlCmd,
	}

	cmd.Flags().StringP("output-dir", "o", config.DefaultOutputDir,
		"Directory the CSV files are written to")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Timeout for each request")
	cmd.Flags().IntP("batch", "b", config.DefaultBatchSize,
		"Number of videos crawled concurrently")
	cmd.Flags().IntP("max-pages", "p", config.DefaultMaxPages,
		"Maximum continuation pages per video (0 = no limit)")
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .ucomment in current or home directory)")
	cmd.Flags().StringP("proxy", "x", "",
		"SOCKS5 proxy address (e.g., 127.0.0.1:9050)")
	cmd.Flags().Bool("no-db", false,
		"Do not record the crawl in the history database")
	cmd.Flags().String("db-dir", "",
		"History database directory (default: XDG data directory)")
	cmd.Flags().BoolP("quiet", "q", false,
		"Do not show the running comment count")

	return cmd
}

// runCrawlCmd executes the crawl command.
func runCrawlCmd(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return cmd.Usage()
	}

	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := newLogger(cmd, cmd.ErrOrStderr())
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return runCrawl(ctx, cfg, logger, cmd.OutOrStdout(), cmd.ErrOrStderr())
}

// buildConfig creates a Config from the defaults, the config file and the
// flags, in that order of precedence.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()
	cfg.VideoIDs = args
	cfg.Verbose = getVerboseFlag(cmd)

	var err error
	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	// An explicit path must exist; the implicit search may find nothing.
	configPath := config.FindConfigFile(cfg.ConfigFilePath)
	switch {
	case configPath != "":
		file, err := config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		file.ApplyTo(cfg)
	case cfg.ConfigFilePath != "":
		return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, cfg.ConfigFilePath)
	}

	flags := cmd.Flags()
	if flags.Changed("output-dir") {
		if cfg.OutputDir, err = flags.GetString("output-dir"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("timeout") {
		if cfg.Timeout, err = flags.GetDuration("timeout"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("batch") {
		if cfg.BatchSize, err = flags.GetInt("batch"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("max-pages") {
		if cfg.MaxPages, err = flags.GetInt("max-pages"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("proxy") {
		if cfg.ProxyAddress, err = flags.GetString("proxy"); err != nil {
			return nil, err
		}
	}
	if cfg.Quiet, err = flags.GetBool("quiet"); err != nil {
		return nil, err
	}

	noDB, err := flags.GetBool("no-db")
	if err != nil {
		return nil, err
	}
	cfg.SaveToDB = !noDB

	dbDir, err := flags.GetString("db-dir")
	if err != nil {
		return nil, err
	}
	if dbDir != "" {
		cfg.DBDir = dbDir
	}

	return cfg, nil
}

// crawlClients are the collaborators shared by every crawl of a run.
type crawlClients struct {
	resolver *bootstrap.Resolver
	fetcher  *innertube.Fetcher
}

// newCrawlClients wires the HTTP client, the bootstrap resolver and the
// page fetcher from cfg.
func newCrawlClients(cfg *config.Config, logger *slog.Logger) (*crawlClients, error) {
	headers := map[string]string{
		"User-Agent":      cfg.BrowserUserAgent,
		"Accept-Language": cfg.AcceptLanguage,
	}
	for k, v := range cfg.Client.Headers {
		headers[k] = v
	}

	client, err := transport.NewClient(cfg.Timeout,
		transport.WithProxy(cfg.ProxyAddress),
		transport.WithHeaders(headers),
		transport.WithCookie(cfg.Client.Cookie),
		transport.WithLogger(logger),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP client: %w", err)
	}
	rc := client.Resty()

	resolver := bootstrap.NewResolver(rc,
		bootstrap.WithMarker(cfg.Client.Marker),
		bootstrap.WithPrefixLength(cfg.Client.PrefixLength),
		bootstrap.WithLogger(logger),
	)

	fetcherOpts := []innertube.FetcherOption{
		innertube.WithClientContext(innertube.ClientContext{
			UserAgent:     cfg.Client.UserAgent,
			ClientName:    cfg.Client.ClientName,
			ClientVersion: cfg.Client.ClientVersion,
		}),
		innertube.WithLogger(logger),
	}
	if cfg.Client.APIBaseURL != "" {
		fetcherOpts = append(fetcherOpts, innertube.WithBaseURL(cfg.Client.APIBaseURL))
	}

	return &crawlClients{
		resolver: resolver,
		fetcher:  innertube.NewFetcher(rc, fetcherOpts...),
	}, nil
}

// runCrawl crawls every video of cfg and prints the total. The total is
// printed even when a crawl fails; the returned error joins the errors of
// every crawl that did not complete.
func runCrawl(ctx context.Context, cfg *config.Config, logger *slog.Logger, stdout, stderr io.Writer) error {
	clients, err := newCrawlClients(cfg, logger)
	if err != nil {
		return err
	}

	var db *database.CrawlDB
	if cfg.SaveToDB {
		db, err = database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()
		logger.Debug("database opened", "path", db.Path())
	}

	var counter model.Counter
	progress := report.NewProgress(stderr, cfg.Quiet)

	factory := func(string) *pipeline.Pipeline {
		output := pipeline.NewOutputStep(logger)
		walker := crawler.NewWalker(clients.fetcher,
			crawler.WithMaxPages(cfg.MaxPages),
			crawler.WithProgress(progress.Update),
			crawler.WithLogger(logger),
		)

		opts := []pipeline.Option{pipeline.WithLogger(logger)}
		var walkOpts []pipeline.WalkStepOption
		if db != nil {
			opts = append(opts, pipeline.WithRecorder(db))
			walkOpts = append(walkOpts, pipeline.WithArchive(archiveSink(db)))
		}
		walkOpts = append(walkOpts, pipeline.WithWalkLogger(logger))

		p := pipeline.New(opts...)
		p.AddSteps(
			output,
			pipeline.NewResolveStep(clients.resolver),
			pipeline.NewWalkStep(walker, output, &counter, walkOpts...),
		)
		return p
	}

	bp := pipeline.NewBatchProcessor(factory,
		pipeline.WithConcurrency(cfg.BatchSize),
		pipeline.WithBatchLogger(logger),
		pipeline.WithCrawlFactory(func(videoID string) *model.Crawl {
			c := model.NewCrawl(videoID)
			c.PageURL = fmt.Sprintf(cfg.WatchURL, videoID)
			c.OutputPath = cfg.OutputPath(videoID)
			return c
		}),
	)

	crawls, batchErr := bp.ProcessBatch(ctx, cfg.VideoIDs)
	progress.Done()

	if err := report.WriteTotal(stdout, counter.Load()); err != nil {
		return err
	}
	if err := crawlErrors(crawls); err != nil {
		return err
	}
	return batchErr
}

// archiveSink returns the per-crawl comment archive of db. Crawls that
// could not be recorded have no id and are not archived.
func archiveSink(db *database.CrawlDB) func(context.Context, *model.Crawl) crawler.Sink {
	return func(ctx context.Context, c *model.Crawl) crawler.Sink {
		if c.ID == 0 {
			return nil
		}
		return db.CommentSink(ctx, c.ID)
	}
}

// crawlErrors joins the errors of the crawls that did not complete.
func crawlErrors(crawls []*model.Crawl) error {
	var errs []error
	for _, c := range crawls {
		if c.Status == model.CrawlStatusCompleted {
			continue
		}
		if c.Error != nil {
			errs = append(errs, fmt.Errorf("%s: %w", c.VideoID, c.Error))
		} else {
			errs = append(errs, fmt.Errorf("%s: crawl %s", c.VideoID, c.Status))
		}
	}
	return errors.Join(errs...)
}

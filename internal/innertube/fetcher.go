package innertube

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-resty/resty/v2"

	"github.com/nao1215/ucomment/internal/model"
)

// Fetcher retrieves continuation pages.
type Fetcher struct {
	client        *resty.Client
	baseURL       string
	clientContext ClientContext
	logger        *slog.Logger
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithBaseURL overrides the service origin. Used by tests to point at an
// httptest server.
func WithBaseURL(baseURL string) FetcherOption {
	return func(f *Fetcher) {
		f.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithClientContext overrides the client identity sent in the request body.
// Empty fields keep their defaults.
func WithClientContext(cc ClientContext) FetcherOption {
	return func(f *Fetcher) {
		if cc.UserAgent != "" {
			f.clientContext.UserAgent = cc.UserAgent
		}
		if cc.ClientName != "" {
			f.clientContext.ClientName = cc.ClientName
		}
		if cc.ClientVersion != "" {
			f.clientContext.ClientVersion = cc.ClientVersion
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) FetcherOption {
	return func(f *Fetcher) {
		f.logger = logger
	}
}

// NewFetcher creates a Fetcher on top of client.
func NewFetcher(client *resty.Client, opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		client:        client,
		baseURL:       DefaultBaseURL,
		clientContext: DefaultClientContext(),
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Endpoint returns the full URL pages are posted to.
func (f *Fetcher) Endpoint() string {
	return f.baseURL + NextPath
}

// Fetch posts token to the continuation endpoint and returns the page's items.
// Every failure wraps ErrFetchFailed.
func (f *Fetcher) Fetch(ctx context.Context, token model.Token) ([]Node, error) {
	body := nextRequest{
		Context:      requestContext{Client: f.clientContext},
		Continuation: string(token),
	}

	resp, err := f.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		Post(f.Endpoint())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetchFailed, err)
	}
	if resp.IsError() {
		return nil, &StatusError{StatusCode: resp.StatusCode(), Status: resp.Status()}
	}

	nodes, err := ParsePage(resp.Body())
	if err != nil {
		return nil, err
	}

	f.logger.Debug("page fetched",
		"continuation", string(token),
		"items", len(nodes),
		"bytes", len(resp.Body()))

	return nodes, nil
}

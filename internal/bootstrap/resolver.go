package bootstrap

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"github.com/go-resty/resty/v2"

	"github.com/nao1215/ucomment/internal/model"
	"github.com/nao1215/ucomment/internal/transport"
)

const (
	// DefaultMarker identifies the script holding the initial page state.
	DefaultMarker = "ytInitialData"
	// DefaultPrefixLength is the number of leading bytes cut from the script
	// text before the JSON payload starts.
	DefaultPrefixLength = 19
)

// Resolver fetches a watch page and resolves its first continuation token.
type Resolver struct {
	client    *resty.Client
	marker    string
	prefixLen int
	logger    *slog.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithMarker overrides the script marker.
func WithMarker(marker string) Option {
	return func(r *Resolver) {
		if marker != "" {
			r.marker = marker
		}
	}
}

// WithPrefixLength overrides the number of bytes cut before the payload.
func WithPrefixLength(n int) Option {
	return func(r *Resolver) {
		if n > 0 {
			r.prefixLen = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) {
		r.logger = logger
	}
}

// NewResolver creates a Resolver on top of client.
func NewResolver(client *resty.Client, opts ...Option) *Resolver {
	r := &Resolver{
		client:    client,
		marker:    DefaultMarker,
		prefixLen: DefaultPrefixLength,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve fetches pageURL and returns the first continuation token found in
// its initial data. Transport failures wrap transport.ErrFetchFailed; a page
// without a usable token yields ErrTokenNotFound.
func (r *Resolver) Resolve(ctx context.Context, pageURL string) (model.Token, error) {
	resp, err := r.client.R().
		SetContext(ctx).
		SetHeader("Accept", "text/html").
		Get(pageURL)
	if err != nil {
		return "", fmt.Errorf("%w: get %s: %w", transport.ErrFetchFailed, pageURL, err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("%w: get %s: unexpected status %d", transport.ErrFetchFailed, pageURL, resp.StatusCode())
	}

	payload, err := Payload(bytes.NewReader(resp.Body()), r.marker, r.prefixLen)
	if err != nil {
		return "", err
	}

	data, err := Decode(payload)
	if err != nil {
		return "", err
	}

	token, err := FindToken(data)
	if err != nil {
		return "", err
	}

	r.logger.Debug("bootstrap token resolved", "url", pageURL, "continuation", string(token))
	return token, nil
}

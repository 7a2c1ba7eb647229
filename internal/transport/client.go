package transport

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/http/cookiejar"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/net/proxy"
)

// maxRedirects bounds redirect chains (consent interstitials redirect once or twice).
const maxRedirects = 10

// Client owns the HTTP configuration shared by every request of a run.
//
// Design decision: We don't connect to the proxy in the constructor because:
// 1. It separates object creation from network operations
// 2. A misconfigured proxy surfaces as a fetch error on the first request,
// which the crawl already treats as fatal
type Client struct {
	// proxyAddress is the SOCKS5 proxy in "host:port" format, empty for direct.
	proxyAddress string

	// dialer is the SOCKS5 dialer, nil when no proxy is configured.
	dialer proxy.Dialer

	// timeout bounds each request, including reading the body.
	timeout time.Duration

	// headers are added to every request.
	headers map[string]string

	// cookie is sent with every request (e.g. a consent cookie).
	cookie string

	// logger receives resty's own warnings and debug output.
	logger *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithProxy routes all requests through the SOCKS5 proxy at address.
// An empty address means a direct connection.
func WithProxy(address string) Option {
	return func(c *Client) {
		c.proxyAddress = address
	}
}

// WithHeaders adds headers to every request.
func WithHeaders(headers map[string]string) Option {
	return func(c *Client) {
		for k, v := range headers {
			c.headers[k] = v
		}
	}
}

// WithCookie sends cookie with every request.
func WithCookie(cookie string) Option {
	return func(c *Client) {
		c.cookie = cookie
	}
}

// WithLogger sets the logger resty reports to.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a Client with the given per-request timeout.
// It validates the proxy address format but does not dial it.
func NewClient(timeout time.Duration, opts ...Option) (*Client, error) {
	c := &Client{
		timeout: timeout,
		headers: make(map[string]string),
		logger:  slog.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.proxyAddress != "" {
		if !isValidProxyAddress(c.proxyAddress) {
			return nil, ErrInvalidProxyAddress
		}

		// nil auth: local SOCKS proxies typically don't require authentication
		dialer, err := proxy.SOCKS5("tcp", c.proxyAddress, nil, proxy.Direct)
		if err != nil {
			return nil, fmt.Errorf("failed to create SOCKS5 dialer: %w", err)
		}
		c.dialer = dialer
	}

	return c, nil
}

// ProxyAddress returns the configured proxy address, or "" for direct connections.
func (c *Client) ProxyAddress() string {
	return c.proxyAddress
}

// NewHTTPClient creates a new *http.Client with the configured transport.
func (c *Client) NewHTTPClient() *http.Client {
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 4,
		IdleConnTimeout:     90 * time.Second,
		ForceAttemptHTTP2:   true,
	}

	if c.dialer != nil {
		transport.Proxy = nil
		transport.DialContext = c.dialContext
	}

	jar, _ := cookiejar.New(nil) //nolint:errcheck // cookiejar.New only fails with invalid options

	return &http.Client{
		Transport: transport,
		Timeout:   c.timeout,
		Jar:       jar,
		CheckRedirect: func(_ *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return http.ErrUseLastResponse
			}
			return nil
		},
	}
}

// Resty creates a resty client on top of NewHTTPClient with the default
// headers and cookie applied.
func (c *Client) Resty() *resty.Client {
	rc := resty.NewWithClient(c.NewHTTPClient()).
		SetLogger(newRestyLogger(c.logger)).
		SetHeaders(c.headers)

	if c.cookie != "" {
		rc.SetHeader("Cookie", c.cookie)
	}

	return rc
}

// dialContext dials through the SOCKS5 proxy while honoring ctx.
func (c *Client) dialContext(ctx context.Context, network, address string) (net.Conn, error) {
	if cd, ok := c.dialer.(proxy.ContextDialer); ok {
		return cd.DialContext(ctx, network, address)
	}

	type dialResult struct {
		conn net.Conn
		err  error
	}
	resultCh := make(chan dialResult, 1)

	go func() {
		conn, err := c.dialer.Dial(network, address)
		resultCh <- dialResult{conn, err}
	}()

	select {
	case result := <-resultCh:
		return result.conn, result.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// isValidProxyAddress checks if the address is in valid "host:port" format.
func isValidProxyAddress(address string) bool {
	host, port, err := net.SplitHostPort(address)
	if err != nil || host == "" || port == "" {
		return false
	}

	portNum, err := strconv.Atoi(port)
	if err != nil || strings.HasPrefix(port, "+") {
		return false
	}

	return portNum >= 1 && portNum <= 65535
}

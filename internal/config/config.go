package config

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// DefaultTimeout bounds each HTTP request, not the whole crawl.
	// Continuation pages are small, so 30 seconds only trips on a stalled
	// connection.
	DefaultTimeout = 30 * time.Second

	// DefaultBatchSize is the number of videos crawled concurrently.
	// Each crawl is sequential on its own, so this is also the number of
	// requests in flight.
	DefaultBatchSize = 4

	// DefaultMaxPages of 0 means a crawl follows every token it finds.
	DefaultMaxPages = 0

	// DefaultOutputDir is where <video-id>.csv files are written.
	DefaultOutputDir = "."

	// DefaultWatchURL builds the bootstrap page URL from a video id.
	DefaultWatchURL = "https://www.youtube.com/watch?v=%s"

	// DefaultBrowserUserAgent is the User-Agent header of every request.
	// The service serves the full watch page only to browser-like agents.
	DefaultBrowserUserAgent = "Mozilla/5.0 (X11; Linux x86_64; rv:109.0) Gecko/20100101 Firefox/109.0"

	// DefaultAcceptLanguage keeps vote counts and labels in English.
	DefaultAcceptLanguage = "en"

	// AppName is the application name used for XDG directory paths.
	AppName = "ucomment"
)

// Config holds all configuration options for ucomment.
// It is populated from defaults, then the config file, then CLI flags, and
// passed through the application via dependency injection.
//
// Design decision: We use a single flat struct for the crawl options. The
// only nested part is ClientConfig, which mirrors the config file section
// of the same name.
type Config struct {
	// VideoIDs is the list of videos to crawl.
	VideoIDs []string

	// OutputDir is the directory <video-id>.csv files are written to.
	OutputDir string

	// ProxyAddress is an optional SOCKS5 proxy in "host:port" format.
	// Empty means a direct connection.
	ProxyAddress string

	// Timeout is the per-request timeout.
	Timeout time.Duration

	// MaxPages stops a crawl after this many continuation pages.
	// 0 means no limit.
	MaxPages int

	// BatchSize is the number of videos crawled concurrently.
	BatchSize int

	// Verbose enables detailed log output using slog.LevelDebug.
	// When false, only warnings and errors are logged.
	Verbose bool

	// Quiet suppresses the live progress counter. The final total is
	// always printed.
	Quiet bool

	// ConfigFilePath is the path to the configuration file.
	// If empty, the tool searches for .ucomment in the current directory
	// and then in the user's home directory.
	ConfigFilePath string

	// DBDir is the directory of the crawl history database.
	// Defaults to XDG data directory (~/.local/share/ucomment on Linux).
	DBDir string

	// SaveToDB records runs and archives comments in the history database.
	SaveToDB bool

	// WatchURL is the bootstrap page URL template. It must contain one %s,
	// replaced by the video id.
	WatchURL string

	// BrowserUserAgent is the User-Agent header of every request.
	BrowserUserAgent string

	// AcceptLanguage is the Accept-Language header of every request.
	AcceptLanguage string

	// Client is the identity sent in continuation requests. Empty fields
	// use the built-in web client identity.
	Client ClientConfig
}

// NewConfig creates a new Config with default values.
//
// Design decision: We use a constructor function instead of relying on
// zero values because many defaults are non-zero (e.g., timeout, batch size).
// This also serves as documentation of what the defaults are.
func NewConfig() *Config {
	return &Config{
		OutputDir:        DefaultOutputDir,
		Timeout:          DefaultTimeout,
		MaxPages:         DefaultMaxPages,
		BatchSize:        DefaultBatchSize,
		DBDir:            XDGDataDir(),
		SaveToDB:         true,
		WatchURL:         DefaultWatchURL,
		BrowserUserAgent: DefaultBrowserUserAgent,
		AcceptLanguage:   DefaultAcceptLanguage,
	}
}

// XDGDataDir returns the XDG data directory for ucomment.
// On Linux: ~/.local/share/ucomment
// On macOS: ~/Library/Application Support/ucomment
// On Windows: %LOCALAPPDATA%\ucomment
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for ucomment.
// On Linux: ~/.config/ucomment
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// OutputPath returns the CSV path for a video id.
func (c *Config) OutputPath(videoID string) string {
	return filepath.Join(c.OutputDir, videoID+".csv")
}

// Validate checks if the configuration is valid.
// It returns a specific error describing what is invalid.
//
// We chose to return the first error found rather than collecting all errors
// because fixing one error often makes others irrelevant.
func (c *Config) Validate() error {
	if len(c.VideoIDs) == 0 {
		return ErrNoTarget
	}

	for _, id := range c.VideoIDs {
		if !IsValidVideoID(id) {
			return ErrInvalidVideoID
		}
	}

	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}

	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}

	if c.MaxPages < 0 {
		return ErrInvalidMaxPages
	}

	if c.OutputDir == "" {
		return ErrEmptyOutputDir
	}

	if strings.Count(c.WatchURL, "%s") != 1 {
		return ErrInvalidWatchURL
	}

	return c.Client.Validate()
}

// IsValidVideoID reports whether id is made only of the characters the
// service uses in video ids. The id becomes a file name, so separators
// and dots are rejected.
func IsValidVideoID(id string) bool {
	if id == "" {
		return false
	}
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			return false
		}
	}
	return true
}

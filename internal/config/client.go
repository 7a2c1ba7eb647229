package config

import (
	"net/url"
)

// ClientConfig is the client identity and page-scraping knobs. The service
// changes these from time to time, so they live in the config file rather
// than in code. Empty values use the built-in defaults.
type ClientConfig struct {
	// UserAgent is the user agent reported inside continuation requests.
	UserAgent string `yaml:"userAgent,omitempty"`

	// ClientName identifies the client type, e.g. "WEB".
	ClientName string `yaml:"clientName,omitempty"`

	// ClientVersion is the client version string.
	ClientVersion string `yaml:"clientVersion,omitempty"`

	// APIBaseURL is the origin continuation requests are posted to.
	APIBaseURL string `yaml:"apiBaseURL,omitempty"`

	// Marker identifies the watch page script holding the initial data.
	Marker string `yaml:"marker,omitempty"`

	// PrefixLength is the number of bytes cut from the script text before
	// the JSON payload starts. 0 uses the default.
	PrefixLength int `yaml:"prefixLength,omitempty"`

	// Cookie is sent with every request, e.g. a consent cookie.
	// Format: "name=value" or "name1=value1; name2=value2"
	Cookie string `yaml:"cookie,omitempty"`

	// Headers are extra HTTP headers sent with every request.
	Headers map[string]string `yaml:"headers,omitempty"`
}

// Validate checks the fields that have a fixed format.
func (cc ClientConfig) Validate() error {
	if cc.APIBaseURL != "" {
		u, err := url.Parse(cc.APIBaseURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return ErrInvalidAPIBaseURL
		}
	}
	if cc.PrefixLength < 0 {
		return ErrInvalidPrefixLength
	}
	return nil
}

// merge overlays the non-empty fields of other on cc.
func (cc ClientConfig) merge(other ClientConfig) ClientConfig {
	result := cc
	if other.UserAgent != "" {
		result.UserAgent = other.UserAgent
	}
	if other.ClientName != "" {
		result.ClientName = other.ClientName
	}
	if other.ClientVersion != "" {
		result.ClientVersion = other.ClientVersion
	}
	if other.APIBaseURL != "" {
		result.APIBaseURL = other.APIBaseURL
	}
	if other.Marker != "" {
		result.Marker = other.Marker
	}
	if other.PrefixLength != 0 {
		result.PrefixLength = other.PrefixLength
	}
	if other.Cookie != "" {
		result.Cookie = other.Cookie
	}
	if len(other.Headers) > 0 {
		headers := make(map[string]string, len(cc.Headers)+len(other.Headers))
		for k, v := range cc.Headers {
			headers[k] = v
		}
		for k, v := range other.Headers {
			headers[k] = v
		}
		result.Headers = headers
	}
	return result
}

// Defaults holds defaults for crawl options that are also CLI flags.
// Flags given on the command line win over these.
type Defaults struct {
	// OutputDir is the directory CSV files are written to.
	OutputDir string `yaml:"outputDir,omitempty"`

	// Proxy is a SOCKS5 proxy in "host:port" format.
	Proxy string `yaml:"proxy,omitempty"`

	// MaxPages is the per-crawl page limit. 0 means no limit.
	MaxPages int `yaml:"maxPages,omitempty"`

	// BatchSize is the number of concurrent crawls.
	BatchSize int `yaml:"batchSize,omitempty"`

	// WatchURL is the bootstrap page URL template.
	WatchURL string `yaml:"watchURL,omitempty"`
}

// File represents the structure of the .ucomment configuration file.
type File struct {
	// Client overrides the client identity and scraping knobs.
	Client ClientConfig `yaml:"client,omitempty"`

	// Defaults overrides the built-in crawl option defaults.
	Defaults Defaults `yaml:"defaults,omitempty"`
}

// ApplyTo overlays the file's non-empty values on cfg.
func (f *File) ApplyTo(cfg *Config) {
	if f == nil {
		return
	}

	cfg.Client = cfg.Client.merge(f.Client)

	if f.Defaults.OutputDir != "" {
		cfg.OutputDir = f.Defaults.OutputDir
	}
	if f.Defaults.Proxy != "" {
		cfg.ProxyAddress = f.Defaults.Proxy
	}
	if f.Defaults.MaxPages != 0 {
		cfg.MaxPages = f.Defaults.MaxPages
	}
	if f.Defaults.BatchSize != 0 {
		cfg.BatchSize = f.Defaults.BatchSize
	}
	if f.Defaults.WatchURL != "" {
		cfg.WatchURL = f.Defaults.WatchURL
	}
}

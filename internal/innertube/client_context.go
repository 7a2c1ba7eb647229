package innertube

// Defaults sent with every request. The service rejects requests whose
// client version is too old, so these may need bumping over time.
const (
	// DefaultBaseURL is the service origin.
	DefaultBaseURL = "https://www.youtube.com"
	// NextPath is the continuation endpoint path.
	NextPath = "/youtubei/v1/next"
	// DefaultUserAgent is the user agent reported inside the request body.
	DefaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64; rv:109.0) Gecko/20100101 Firefox/109.0,gzip(gfe)"
	// DefaultClientName identifies the web client.
	DefaultClientName = "WEB"
	// DefaultClientVersion is the web client version.
	DefaultClientVersion = "2.20230120.00.00"
)

// ClientContext is the client identity embedded in every request body.
type ClientContext struct {
	UserAgent     string `json:"userAgent"`
	ClientName    string `json:"clientName"`
	ClientVersion string `json:"clientVersion"`
}

// DefaultClientContext returns the stock web client identity.
func DefaultClientContext() ClientContext {
	return ClientContext{
		UserAgent:     DefaultUserAgent,
		ClientName:    DefaultClientName,
		ClientVersion: DefaultClientVersion,
	}
}

type nextRequest struct {
	Context      requestContext `json:"context"`
	Continuation string         `json:"continuation"`
}

type requestContext struct {
	Client ClientContext `json:"client"`
}

package follow

import (
	"context"
	"net/http"
	"time"
)

// FetchRequest captures everything needed for one manual-redirect fetch.
type FetchRequest struct {
	URL       string
	UserAgent string
	Timeout   time.Duration
}

// FetchResponse is the raw outcome of a single fetch. Redirect statuses
// are returned as-is; the transport must not follow them.
type FetchResponse struct {
	URL        string
	StatusCode int
	Headers    http.Header
	Body       []byte
	Duration   time.Duration
}

// Fetcher performs exactly one HTTP request with auto-redirects disabled.
type Fetcher interface {
	Fetch(ctx context.Context, request FetchRequest) (FetchResponse, error)
}

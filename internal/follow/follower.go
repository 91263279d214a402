package follow

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"time"

	"github.com/mbellgrove/linkweaver/internal/cache"
	"github.com/mbellgrove/linkweaver/internal/metrics"
)

// Defaults applied when Options leaves a knob at its zero value.
const (
	DefaultMaxRedirectDepth = 10
	DefaultFetchTimeout     = 2500 * time.Millisecond
)

// ErrDepthExceeded is returned when a redirect chain outgrows
// Options.MaxRedirectDepth. The resolution fails; the caller's process
// does not.
var ErrDepthExceeded = errors.New("redirect depth exceeded")

// metaRefreshPattern matches the zero-delay meta-refresh directive,
// e.g. <meta http-equiv="refresh" content="0; url=https://target">.
// The pattern is deliberately literal: it tolerates whitespace and either
// quote style but assumes the documented attribute ordering, so malformed
// but technically valid meta-refresh tags may be missed.
var metaRefreshPattern = regexp.MustCompile(`(CONTENT|content)=["']0;\s*(URL|url)=(.*?)["']\s*>`)

// redirectStatuses are the HTTP statuses treated as transport redirects.
var redirectStatuses = map[int]bool{
	http.StatusMovedPermanently:  true,
	http.StatusFound:             true,
	http.StatusSeeOther:          true,
	http.StatusTemporaryRedirect: true,
	http.StatusPermanentRedirect: true,
}

// Options configures one follower instance.
type Options struct {
	// MaxRedirectDepth bounds hops per origin URL. Zero means the default.
	MaxRedirectDepth int
	// FetchTimeout bounds each individual fetch. Zero means the default.
	FetchTimeout time.Duration
	// UserAgent is sent on every outbound request.
	UserAgent string
	// StripTrackingParams removes utm_* query parameters from each URL
	// immediately before fetching it.
	StripTrackingParams bool
}

func (o Options) withDefaults() Options {
	if o.MaxRedirectDepth <= 0 {
		o.MaxRedirectDepth = DefaultMaxRedirectDepth
	}
	if o.FetchTimeout <= 0 {
		o.FetchTimeout = DefaultFetchTimeout
	}
	return o
}

// Follower chases redirect chains one hop at a time. An optional cache
// memoizes complete visit sequences per origin URL; it is advisory, so a
// duplicate fetch on a racing miss is tolerated.
type Follower struct {
	fetcher Fetcher
	cache   *cache.LRU[string, []Visit]
	opts    Options
}

// NewFollower builds a Follower. The cache may be nil to disable
// memoization.
func NewFollower(fetcher Fetcher, visits *cache.LRU[string, []Visit], opts Options) *Follower {
	return &Follower{
		fetcher: fetcher,
		cache:   visits,
		opts:    opts.withDefaults(),
	}
}

// Follow resolves originURL into its ordered hop sequence. The returned
// slice always ends in an error or terminal visit. A non-nil error is
// returned only when the chain exceeds the depth limit; per-hop failures
// are captured as VisitKindError values instead.
func (f *Follower) Follow(ctx context.Context, originURL string) ([]Visit, error) {
	origin := EnsureScheme(originURL)

	if f.cache != nil {
		if visits, ok := f.cache.Get(origin); ok {
			metrics.RecordCacheLookup(true)
			return visits, nil
		}
		metrics.RecordCacheLookup(false)
	}

	visits, err := f.chase(ctx, origin)
	if err != nil {
		return visits, err
	}
	if f.cache != nil {
		f.cache.Put(origin, visits)
	}
	metrics.RecordRedirectChain(len(visits))
	return visits, nil
}

func (f *Follower) chase(ctx context.Context, origin string) ([]Visit, error) {
	currentURL := origin
	visits := make([]Visit, 0, 2)

	for position := 1; ; position++ {
		if position > f.opts.MaxRedirectDepth {
			return visits, fmt.Errorf("%w after %d hops from %s", ErrDepthExceeded, len(visits), origin)
		}

		visit := f.visit(ctx, currentURL)
		visits = append(visits, visit)
		metrics.RecordVisit(string(visit.Kind))

		if !visit.IsRedirect() {
			return visits, nil
		}
		currentURL = visit.RedirectURL
	}
}

// visit fetches currentURL once and classifies the response. Failures of
// any kind are converted into a VisitKindError value, never propagated.
func (f *Follower) visit(ctx context.Context, currentURL string) Visit {
	fetchURL := currentURL
	if f.opts.StripTrackingParams {
		if stripped, err := StripTrackingParams(fetchURL); err == nil {
			fetchURL = stripped
		}
	}

	response, err := f.fetcher.Fetch(ctx, FetchRequest{
		URL:       fetchURL,
		UserAgent: f.opts.UserAgent,
		Timeout:   f.opts.FetchTimeout,
	})
	if err != nil {
		return Visit{Kind: VisitKindError, URL: fetchURL, Err: err}
	}
	metrics.RecordFetchDuration(response.Duration)
	return classifyResponse(fetchURL, response)
}

func classifyResponse(fetchURL string, response FetchResponse) Visit {
	contentType := response.Headers.Get("Content-Type")
	mediaType := ParseMediaType(contentType)

	base := Visit{
		URL:         fetchURL,
		StatusCode:  response.StatusCode,
		Headers:     response.Headers,
		ContentType: contentType,
		MediaType:   mediaType,
	}

	if redirectStatuses[response.StatusCode] {
		location := response.Headers.Get("Location")
		if location == "" {
			base.Kind = VisitKindError
			base.Err = fmt.Errorf("status %d without Location header", response.StatusCode)
			return base
		}
		target, err := resolveRedirectTarget(fetchURL, location)
		if err != nil {
			base.Kind = VisitKindError
			base.Err = fmt.Errorf("malformed Location %q: %w", location, err)
			return base
		}
		base.Kind = VisitKindHTTPRedirect
		base.RedirectURL = target
		return base
	}

	if response.StatusCode == http.StatusOK && mediaType.IsText() {
		body := string(response.Body)
		if target, ok := metaRefreshTarget(body); ok {
			resolved, err := resolveRedirectTarget(fetchURL, target)
			if err != nil {
				base.Kind = VisitKindError
				base.Err = fmt.Errorf("malformed meta-refresh target %q: %w", target, err)
				return base
			}
			base.Kind = VisitKindContentRedirect
			base.RedirectURL = resolved
			base.Body = body
			return base
		}
		base.Kind = VisitKindTerminalText
		base.Body = body
		return base
	}

	base.Kind = VisitKindTerminal
	return base
}

// metaRefreshTarget scans html for a zero-delay meta-refresh directive
// and returns its target URL.
func metaRefreshTarget(html string) (string, bool) {
	m := metaRefreshPattern.FindStringSubmatch(html)
	if m == nil {
		return "", false
	}
	return m[3], true
}

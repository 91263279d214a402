package follow

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"testing"

	"github.com/mbellgrove/linkweaver/internal/cache"
)

type stubResponse struct {
	status      int
	contentType string
	location    string
	body        string
	err         error
}

// stubFetcher serves canned responses keyed by URL and counts fetches.
type stubFetcher struct {
	mu        sync.Mutex
	responses map[string]stubResponse
	fetched   []string
}

func newStubFetcher(responses map[string]stubResponse) *stubFetcher {
	return &stubFetcher{responses: responses}
}

func (f *stubFetcher) Fetch(_ context.Context, request FetchRequest) (FetchResponse, error) {
	f.mu.Lock()
	f.fetched = append(f.fetched, request.URL)
	f.mu.Unlock()

	r, ok := f.responses[request.URL]
	if !ok {
		return FetchResponse{}, fmt.Errorf("no route to %s", request.URL)
	}
	if r.err != nil {
		return FetchResponse{}, r.err
	}
	headers := http.Header{}
	if r.contentType != "" {
		headers.Set("Content-Type", r.contentType)
	}
	if r.location != "" {
		headers.Set("Location", r.location)
	}
	return FetchResponse{
		URL:        request.URL,
		StatusCode: r.status,
		Headers:    headers,
		Body:       []byte(r.body),
	}, nil
}

func (f *stubFetcher) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.fetched)
}

func TestFollowSingleTerminal(t *testing.T) {
	t.Parallel()

	fetcher := newStubFetcher(map[string]stubResponse{
		"https://example.com/page": {status: 200, contentType: "text/html; charset=utf-8", body: "<html><title>hi</title></html>"},
	})
	follower := NewFollower(fetcher, nil, Options{})

	visits, err := follower.Follow(context.Background(), "https://example.com/page")
	if err != nil {
		t.Fatalf("Follow() error = %v", err)
	}
	if len(visits) != 1 {
		t.Fatalf("got %d visits, want 1", len(visits))
	}
	v := visits[0]
	if v.Kind != VisitKindTerminalText {
		t.Fatalf("kind = %s, want %s", v.Kind, VisitKindTerminalText)
	}
	if !v.IsTerminal() || !v.IsTerminalText() {
		t.Fatalf("terminal predicates failed for %+v", v)
	}
	if v.Body == "" {
		t.Fatalf("expected body to be retained")
	}
	if v.MediaType.Essence != "text/html" || v.MediaType.Major != "text" {
		t.Fatalf("media type = %+v", v.MediaType)
	}
}

func TestFollowRedirectChain(t *testing.T) {
	t.Parallel()

	fetcher := newStubFetcher(map[string]stubResponse{
		"https://short.example/a": {status: 301, location: "https://mid.example/b"},
		"https://mid.example/b":   {status: 302, location: "https://final.example/c"},
		"https://final.example/c": {status: 200, contentType: "text/html", body: "<html></html>"},
	})
	follower := NewFollower(fetcher, nil, Options{})

	visits, err := follower.Follow(context.Background(), "https://short.example/a")
	if err != nil {
		t.Fatalf("Follow() error = %v", err)
	}
	if len(visits) != 3 {
		t.Fatalf("got %d visits, want 3", len(visits))
	}
	for i, v := range visits[:2] {
		if v.Kind != VisitKindHTTPRedirect {
			t.Fatalf("visit %d kind = %s, want %s", i, v.Kind, VisitKindHTTPRedirect)
		}
		if v.IsTerminal() {
			t.Fatalf("visit %d should not be terminal", i)
		}
	}
	last := visits[2]
	if !last.IsTerminal() {
		t.Fatalf("final visit should be terminal, got %s", last.Kind)
	}
	terminal, ok := Terminal(visits)
	if !ok || terminal.URL != "https://final.example/c" {
		t.Fatalf("Terminal() = %+v, %v", terminal, ok)
	}
}

func TestFollowMetaRefreshRedirect(t *testing.T) {
	t.Parallel()

	page := `<html><head><meta http-equiv="refresh" content="0; url=https://final.example/article"></head></html>`
	fetcher := newStubFetcher(map[string]stubResponse{
		"https://hop.example/r":         {status: 200, contentType: "text/html", body: page},
		"https://final.example/article": {status: 200, contentType: "text/html", body: "<html><title>done</title></html>"},
	})
	follower := NewFollower(fetcher, nil, Options{})

	visits, err := follower.Follow(context.Background(), "https://hop.example/r")
	if err != nil {
		t.Fatalf("Follow() error = %v", err)
	}
	if len(visits) != 2 {
		t.Fatalf("got %d visits, want 2", len(visits))
	}
	if visits[0].Kind != VisitKindContentRedirect {
		t.Fatalf("first visit kind = %s, want %s", visits[0].Kind, VisitKindContentRedirect)
	}
	if visits[0].RedirectURL != "https://final.example/article" {
		t.Fatalf("redirect url = %s", visits[0].RedirectURL)
	}
	if visits[1].Kind != VisitKindTerminalText {
		t.Fatalf("final visit kind = %s", visits[1].Kind)
	}
}

func TestFollowRedirectWithoutLocation(t *testing.T) {
	t.Parallel()

	fetcher := newStubFetcher(map[string]stubResponse{
		"https://broken.example/": {status: 301},
	})
	follower := NewFollower(fetcher, nil, Options{})

	visits, err := follower.Follow(context.Background(), "https://broken.example/")
	if err != nil {
		t.Fatalf("Follow() error = %v", err)
	}
	if len(visits) != 1 {
		t.Fatalf("got %d visits, want 1", len(visits))
	}
	if !visits[0].IsError() {
		t.Fatalf("expected error visit, got %s", visits[0].Kind)
	}
	if visits[0].Err == nil {
		t.Fatalf("expected populated error")
	}
}

func TestFollowDepthExceeded(t *testing.T) {
	t.Parallel()

	fetcher := newStubFetcher(map[string]stubResponse{
		"https://a.example/": {status: 301, location: "https://b.example/"},
		"https://b.example/": {status: 301, location: "https://a.example/"},
	})
	follower := NewFollower(fetcher, nil, Options{MaxRedirectDepth: 4})

	_, err := follower.Follow(context.Background(), "https://a.example/")
	if !errors.Is(err, ErrDepthExceeded) {
		t.Fatalf("Follow() error = %v, want ErrDepthExceeded", err)
	}
}

func TestFollowNetworkErrorBecomesVisitError(t *testing.T) {
	t.Parallel()

	fetcher := newStubFetcher(map[string]stubResponse{
		"https://t": {err: errors.New("dial tcp: no such host")},
	})
	follower := NewFollower(fetcher, nil, Options{})

	visits, err := follower.Follow(context.Background(), "https://t")
	if err != nil {
		t.Fatalf("Follow() error = %v", err)
	}
	if len(visits) != 1 || !visits[0].IsError() {
		t.Fatalf("visits = %+v", visits)
	}
}

func TestFollowNonTextTerminalKeepsNoBody(t *testing.T) {
	t.Parallel()

	fetcher := newStubFetcher(map[string]stubResponse{
		"https://files.example/doc.pdf": {status: 200, contentType: "application/pdf", body: "%PDF-1.4"},
	})
	follower := NewFollower(fetcher, nil, Options{})

	visits, err := follower.Follow(context.Background(), "https://files.example/doc.pdf")
	if err != nil {
		t.Fatalf("Follow() error = %v", err)
	}
	v := visits[0]
	if v.Kind != VisitKindTerminal {
		t.Fatalf("kind = %s, want %s", v.Kind, VisitKindTerminal)
	}
	if v.Body != "" {
		t.Fatalf("expected body to be dropped for non-text terminal")
	}
}

func TestFollowNotFoundIsTerminalNotText(t *testing.T) {
	t.Parallel()

	fetcher := newStubFetcher(map[string]stubResponse{
		"https://short.example/gone": {status: 404, contentType: "text/html", body: "<html>not found</html>"},
	})
	follower := NewFollower(fetcher, nil, Options{})

	visits, err := follower.Follow(context.Background(), "https://short.example/gone")
	if err != nil {
		t.Fatalf("Follow() error = %v", err)
	}
	v := visits[0]
	if v.Kind != VisitKindTerminal {
		t.Fatalf("kind = %s, want %s", v.Kind, VisitKindTerminal)
	}
	if v.StatusCode != 404 {
		t.Fatalf("status = %d, want 404", v.StatusCode)
	}
	if v.IsTerminalText() {
		t.Fatalf("404 must not classify as terminal text")
	}
}

func TestFollowDefaultsScheme(t *testing.T) {
	t.Parallel()

	fetcher := newStubFetcher(map[string]stubResponse{
		"http://example.com/x": {status: 200, contentType: "text/plain", body: "ok"},
	})
	follower := NewFollower(fetcher, nil, Options{})

	visits, err := follower.Follow(context.Background(), "example.com/x")
	if err != nil {
		t.Fatalf("Follow() error = %v", err)
	}
	if visits[0].URL != "http://example.com/x" {
		t.Fatalf("fetched %s, want scheme-defaulted URL", visits[0].URL)
	}
}

func TestFollowUsesCache(t *testing.T) {
	t.Parallel()

	fetcher := newStubFetcher(map[string]stubResponse{
		"https://example.com/": {status: 200, contentType: "text/plain", body: "ok"},
	})
	visitCache := cache.NewLRU[string, []Visit](4)
	follower := NewFollower(fetcher, visitCache, Options{})

	if _, err := follower.Follow(context.Background(), "https://example.com/"); err != nil {
		t.Fatalf("first Follow() error = %v", err)
	}
	if _, err := follower.Follow(context.Background(), "https://example.com/"); err != nil {
		t.Fatalf("second Follow() error = %v", err)
	}
	if got := fetcher.count(); got != 1 {
		t.Fatalf("fetch count = %d, want 1 (cache hit expected)", got)
	}
}

func TestFollowStripsTrackingParams(t *testing.T) {
	t.Parallel()

	fetcher := newStubFetcher(map[string]stubResponse{
		"https://example.com/story": {status: 200, contentType: "text/plain", body: "ok"},
	})
	follower := NewFollower(fetcher, nil, Options{StripTrackingParams: true})

	visits, err := follower.Follow(context.Background(), "https://example.com/story?utm_source=tw&utm_medium=social")
	if err != nil {
		t.Fatalf("Follow() error = %v", err)
	}
	if visits[0].URL != "https://example.com/story" {
		t.Fatalf("fetched %s, want tracking params stripped", visits[0].URL)
	}
}

func TestFollowRelativeLocationResolved(t *testing.T) {
	t.Parallel()

	fetcher := newStubFetcher(map[string]stubResponse{
		"https://example.com/a": {status: 302, location: "/b"},
		"https://example.com/b": {status: 200, contentType: "text/plain", body: "ok"},
	})
	follower := NewFollower(fetcher, nil, Options{})

	visits, err := follower.Follow(context.Background(), "https://example.com/a")
	if err != nil {
		t.Fatalf("Follow() error = %v", err)
	}
	if visits[0].RedirectURL != "https://example.com/b" {
		t.Fatalf("redirect url = %s, want absolute", visits[0].RedirectURL)
	}
	if len(visits) != 2 || !visits[1].IsTerminal() {
		t.Fatalf("visits = %+v", visits)
	}
}

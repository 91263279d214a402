package enrich

import (
	"bytes"
	"context"
	"strings"

	"github.com/mbellgrove/linkweaver/internal/download"
	"github.com/mbellgrove/linkweaver/internal/follow"
	"github.com/mbellgrove/linkweaver/internal/metrics"
	"github.com/mbellgrove/linkweaver/internal/resource"
)

// ContentDownloader streams the terminal body to disk through the
// downloader collaborator. Text bodies retained by the follower are
// written directly; binary terminals are re-fetched since the follower
// keeps no opaque payloads.
type ContentDownloader struct {
	downloader download.Downloader
	fetcher    follow.Fetcher
}

// NewContentDownloader builds the step. The fetcher supplies bodies for
// non-text terminals and may be nil when only text downloads are needed.
func NewContentDownloader(d download.Downloader, fetcher follow.Fetcher) *ContentDownloader {
	return &ContentDownloader{downloader: d, fetcher: fetcher}
}

// Transform downloads the terminal payload. A missing terminal result
// yields a download-skip variant; I/O failures surface as error-result
// values on the resource rather than step errors.
func (s *ContentDownloader) Transform(ctx context.Context, r resource.Resource) (resource.Resource, error) {
	if r.IsInvalid() {
		return r, nil
	}
	if r.Terminal == nil {
		next := resource.Derive(r, "download skipped")
		skipped := download.Skipped("no terminal result to download")
		next.Download = &skipped
		metrics.RecordDownload(string(skipped.Kind))
		return next, nil
	}

	result := s.download(ctx, r)
	metrics.RecordDownload(string(result.Kind))

	next := resource.Derive(r, "downloaded terminal content")
	next.Download = &result
	return next, nil
}

func (s *ContentDownloader) download(ctx context.Context, r resource.Resource) download.Result {
	if r.Terminal.IsTerminalText() {
		return s.downloader.Download(ctx, strings.NewReader(r.Terminal.Body))
	}
	if s.fetcher == nil {
		return download.Skipped("no fetcher configured for binary content")
	}
	response, err := s.fetcher.Fetch(ctx, follow.FetchRequest{URL: r.URI})
	if err != nil {
		return download.Result{Kind: download.KindError, Err: err}
	}
	return s.downloader.Download(ctx, bytes.NewReader(response.Body))
}

// TypeFilteredDownloader gates a download step behind a content-type
// allow-list: resources whose terminal content type is not allowed pass
// through unchanged.
type TypeFilteredDownloader struct {
	inner   *ContentDownloader
	allowed map[string]bool
}

// NewTypeFilteredDownloader builds the filter around a download step.
// Entries are MIME essences, e.g. "application/pdf".
func NewTypeFilteredDownloader(inner *ContentDownloader, allowedContentTypes []string) *TypeFilteredDownloader {
	allowed := make(map[string]bool, len(allowedContentTypes))
	for _, ct := range allowedContentTypes {
		ct = strings.ToLower(strings.TrimSpace(ct))
		if ct != "" {
			allowed[ct] = true
		}
	}
	return &TypeFilteredDownloader{inner: inner, allowed: allowed}
}

// Transform delegates to the inner downloader only for allowed content
// types.
func (s *TypeFilteredDownloader) Transform(ctx context.Context, r resource.Resource) (resource.Resource, error) {
	if r.Terminal == nil || !s.allowed[r.Terminal.MediaType.Essence] {
		return r, nil
	}
	return s.inner.Transform(ctx, r)
}

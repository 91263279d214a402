package enrich

import (
	"context"
	"fmt"

	"github.com/mbellgrove/linkweaver/internal/readable"
	"github.com/mbellgrove/linkweaver/internal/resource"
)

// ReadableExtractor runs the injected readability collaborator over a
// terminal text resource and attaches the simplified article.
type ReadableExtractor struct {
	extractor readable.Extractor
}

// NewReadableExtractor builds the step around an extractor resolved at
// startup.
func NewReadableExtractor(extractor readable.Extractor) *ReadableExtractor {
	return &ReadableExtractor{extractor: extractor}
}

// Transform extracts readable content; it is a no-op without a terminal
// text body. Collaborator failures propagate as step failures.
func (s *ReadableExtractor) Transform(_ context.Context, r resource.Resource) (resource.Resource, error) {
	if !r.HasTerminalText() {
		return r, nil
	}

	article, err := s.extractor.Extract(r.Terminal.Body, r.URI)
	if err != nil {
		return r, fmt.Errorf("readable extraction for %s: %w", r.URI, err)
	}

	next := resource.Derive(r, "extracted readable content")
	next.Readable = &article
	return next, nil
}

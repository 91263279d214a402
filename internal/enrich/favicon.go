package enrich

import (
	"context"
	"fmt"
	"net/url"

	"github.com/mbellgrove/linkweaver/internal/pipeline"
	"github.com/mbellgrove/linkweaver/internal/resource"
)

// FaviconResolver derives scheme://host/favicon.ico for a resource and
// acquires it through a caller-supplied sub-pipeline, attaching the
// outcome to the resource.
type FaviconResolver struct {
	sub pipeline.Transformer
}

// NewFaviconResolver builds the step. The sub-pipeline decides what
// acquiring the icon means: following it, downloading it, or both.
func NewFaviconResolver(sub pipeline.Transformer) *FaviconResolver {
	if sub == nil {
		sub = pipeline.Identity
	}
	return &FaviconResolver{sub: sub}
}

// Transform resolves the favicon. Sub-pipeline failures propagate.
func (s *FaviconResolver) Transform(ctx context.Context, r resource.Resource) (resource.Resource, error) {
	if r.IsInvalid() || r.URI == "" {
		return r, nil
	}

	u, err := url.Parse(r.URI)
	if err != nil || u.Host == "" {
		return r, nil
	}
	iconURL := fmt.Sprintf("%s://%s/favicon.ico", u.Scheme, u.Host)

	icon, err := s.sub.Transform(ctx, resource.New(iconURL, r.Origin, ""))
	if err != nil {
		return r, fmt.Errorf("resolve favicon %s: %w", iconURL, err)
	}

	next := resource.Derive(r, fmt.Sprintf("resolved favicon %s", iconURL))
	next.Favicon = &icon
	return next, nil
}

package enrich

import (
	"context"

	"github.com/mbellgrove/linkweaver/internal/follow"
	"github.com/mbellgrove/linkweaver/internal/resource"
)

// TrackingStripper removes utm_* query parameters from the resource URI.
type TrackingStripper struct{}

// NewTrackingStripper builds the step.
func NewTrackingStripper() TrackingStripper {
	return TrackingStripper{}
}

// Transform strips tracking parameters; it is a no-op when the URI is
// unchanged or cannot be parsed.
func (TrackingStripper) Transform(_ context.Context, r resource.Resource) (resource.Resource, error) {
	stripped, err := follow.StripTrackingParams(r.URI)
	if err != nil || stripped == r.URI {
		return r, nil
	}
	next := resource.Derive(r, "removed tracking parameters")
	next.URI = stripped
	return next, nil
}

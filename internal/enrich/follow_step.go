package enrich

import (
	"context"
	"fmt"

	"github.com/mbellgrove/linkweaver/internal/follow"
	"github.com/mbellgrove/linkweaver/internal/resource"
)

// LinkFollower resolves the resource URI through its redirect chain,
// producing a followed resource whose URI is the final resolved URL, or
// an invalid resource when resolution fails.
type LinkFollower struct {
	follower *follow.Follower
}

// NewLinkFollower builds the step around a configured follower.
func NewLinkFollower(follower *follow.Follower) *LinkFollower {
	return &LinkFollower{follower: follower}
}

// Transform follows redirects for r. Resolution failures become invalid
// resources, never returned errors: a dead link is data, not a fault in
// the pipeline.
func (s *LinkFollower) Transform(ctx context.Context, r resource.Resource) (resource.Resource, error) {
	if r.IsInvalid() {
		return r, nil
	}

	visits, err := s.follower.Follow(ctx, r.URI)
	if err != nil {
		return resource.Invalidate(r, err, "redirect resolution failed"), nil
	}
	if len(visits) == 0 {
		return resource.Invalidate(r, fmt.Errorf("no visits recorded for %s", r.URI), "redirect resolution failed"), nil
	}

	last := visits[len(visits)-1]
	if last.IsError() {
		return resource.Invalidate(r, last.Err, fmt.Sprintf("visit %d failed", len(visits))), nil
	}

	terminal := last
	next := resource.Derive(r, fmt.Sprintf("followed %d visits to %s", len(visits), terminal.URL))
	next.Kind = resource.KindFollowed
	next.URI = terminal.URL
	next.Visits = visits
	next.Terminal = &terminal
	return next, nil
}

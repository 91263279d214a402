package enrich

import (
	"context"
	"fmt"

	"github.com/mbellgrove/linkweaver/internal/resource"
)

// ContentGoverner attaches the terminal content-type classification to a
// followed resource so later steps can decide applicability without
// re-fetching.
type ContentGoverner struct{}

// NewContentGoverner builds the step.
func NewContentGoverner() ContentGoverner {
	return ContentGoverner{}
}

// Transform tags the resource; it is a no-op unless the resource was
// followed to a terminal text result.
func (ContentGoverner) Transform(_ context.Context, r resource.Resource) (resource.Resource, error) {
	if !r.IsFollowed() || !r.HasTerminalText() {
		return r, nil
	}
	next := resource.Derive(r, fmt.Sprintf("governed content type %s", r.Terminal.MediaType.Essence))
	next.ContentType = r.Terminal.ContentType
	next.MediaType = r.Terminal.MediaType
	return next, nil
}

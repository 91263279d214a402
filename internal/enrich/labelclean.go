// Package enrich implements the pipeline steps that turn a raw link
// into a resolved, classified, content-enriched resource.
package enrich

import (
	"context"
	"regexp"
	"strings"

	"github.com/mbellgrove/linkweaver/internal/resource"
)

var labelBreaks = regexp.MustCompile(`\s*[\r\n]+\s*`)

// LabelCleaner collapses CR/LF runs in a resource label to single
// spaces and trims the result.
type LabelCleaner struct{}

// NewLabelCleaner builds the step.
func NewLabelCleaner() LabelCleaner {
	return LabelCleaner{}
}

// Transform cleans the label; it is a no-op when the label is absent or
// already clean.
func (LabelCleaner) Transform(_ context.Context, r resource.Resource) (resource.Resource, error) {
	if r.Label == "" {
		return r, nil
	}
	cleaned := strings.TrimSpace(labelBreaks.ReplaceAllString(r.Label, " "))
	if cleaned == r.Label {
		return r, nil
	}
	next := resource.Derive(r, "cleaned label whitespace")
	next.Label = cleaned
	return next, nil
}

// Package supply enumerates candidate links from a document and feeds
// each transformed, surviving resource to a consumer callback.
package supply

import (
	"context"
	"fmt"

	"github.com/mbellgrove/linkweaver/internal/htmldoc"
	"github.com/mbellgrove/linkweaver/internal/pipeline"
	"github.com/mbellgrove/linkweaver/internal/resource"
)

// Filter decides whether a resource is retained.
type Filter interface {
	Retain(r resource.Resource) bool
}

// FilterFunc adapts a function to Filter.
type FilterFunc func(r resource.Resource) bool

// Retain calls f.
func (f FilterFunc) Retain(r resource.Resource) bool {
	return f(r)
}

// All composes filters with logical AND; the first rejection stops
// further evaluation. With no filters everything is retained.
func All(filters ...Filter) Filter {
	return FilterFunc(func(r resource.Resource) bool {
		for _, filter := range filters {
			if filter == nil {
				continue
			}
			if !filter.Retain(r) {
				return false
			}
		}
		return true
	})
}

// Supplier walks a document's anchors in document order, builds one raw
// resource per anchor, and runs each through the transformation
// pipeline, applying retention filters before and after.
type Supplier struct {
	doc    *htmldoc.Document
	origin string
	pre    Filter
	post   Filter
	pipe   pipeline.Transformer
}

// New builds a Supplier. Either filter may be nil; a nil pipe is the
// identity.
func New(doc *htmldoc.Document, origin string, pre, post Filter, pipe pipeline.Transformer) *Supplier {
	if pipe == nil {
		pipe = pipeline.Identity
	}
	return &Supplier{doc: doc, origin: origin, pre: pre, post: post, pipe: pipe}
}

// ForEachResource invokes consume for every surviving resource,
// preserving document order. Pipeline and consumer errors stop the walk
// and propagate.
func (s *Supplier) ForEachResource(ctx context.Context, consume func(resource.Resource) error) error {
	for _, anchor := range s.doc.Anchors(nil) {
		raw := resource.New(anchor.Href, s.origin, anchor.Label)
		if s.pre != nil && !s.pre.Retain(raw) {
			continue
		}

		transformed, err := s.pipe.Transform(ctx, raw)
		if err != nil {
			return fmt.Errorf("transform %s: %w", anchor.Href, err)
		}

		if s.post != nil && !s.post.Retain(transformed) {
			continue
		}
		if err := consume(transformed); err != nil {
			return fmt.Errorf("consume %s: %w", transformed.URI, err)
		}
	}
	return nil
}

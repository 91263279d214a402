// Package resource defines the immutable value threaded through the
// transformation pipeline. Every enrichment step produces a new Resource
// carrying a back-reference to its predecessor, so the full provenance
// chain is always reconstructable.
package resource

import (
	"github.com/mbellgrove/linkweaver/internal/download"
	"github.com/mbellgrove/linkweaver/internal/follow"
)

// Kind is the explicit discriminant for the resource union. Downstream
// consumers branch on capability predicates rather than probing for
// field presence.
type Kind string

// Resource kinds.
const (
	// KindOriginal marks a raw, untransformed resource.
	KindOriginal Kind = "original"
	// KindTransformed marks a resource produced by an enrichment step.
	KindTransformed Kind = "transformed"
	// KindFollowed marks a resource whose URI was resolved through a
	// redirect chain.
	KindFollowed Kind = "followed"
	// KindInvalid marks a resource that failed resolution. Terminal.
	KindInvalid Kind = "invalid"
)

// SocialGraph bundles the Open Graph and Twitter Card metadata extracted
// from a page.
type SocialGraph struct {
	OpenGraph   map[string]string `json:"open_graph,omitempty"`
	TwitterCard map[string]string `json:"twitter_card,omitempty"`
}

// Curated is the editorial enrichment derived once per terminal text
// resource: resolved title plus social metadata. Derived data is never
// retroactively updated.
type Curated struct {
	Title       string       `json:"title"`
	Social      *SocialGraph `json:"social,omitempty"`
	ContentType string       `json:"content_type,omitempty"`
}

// Readable is the simplified article produced by the readability
// collaborator.
type Readable struct {
	Title       string `json:"title"`
	Content     string `json:"content"`
	TextContent string `json:"text_content"`
	Excerpt     string `json:"excerpt,omitempty"`
	SiteName    string `json:"site_name,omitempty"`
}

// Resource is an immutable link-resolution value. Construction helpers
// and enrichment steps copy it; nothing mutates one in place.
type Resource struct {
	Kind Kind `json:"kind"`
	// URI is the resource address; for followed resources it is the
	// final resolved URL.
	URI string `json:"uri"`
	// Origin identifies who or what produced the resource.
	Origin string `json:"origin,omitempty"`
	// Label is optional display text, e.g. anchor text.
	Label string `json:"label,omitempty"`
	// DOI is an optional digital object identifier.
	DOI string `json:"doi,omitempty"`

	// TransformedFrom points to the prior state; nil for originals.
	TransformedFrom *Resource `json:"-"`
	// PipePosition counts content-altering transformations applied so
	// far: 0 for the first change to an original, +1 per later change.
	PipePosition int `json:"pipe_position"`
	// Remarks describes what the producing step changed.
	Remarks string `json:"remarks,omitempty"`

	// Err holds the root failure for invalid resources.
	Err error `json:"-"`

	// Visits is the ordered hop sequence recorded while following
	// redirects; Terminal is its final visit when one exists.
	Visits   []follow.Visit `json:"visits,omitempty"`
	Terminal *follow.Visit  `json:"terminal,omitempty"`

	// ContentType carries the governed MIME classification.
	ContentType string           `json:"content_type,omitempty"`
	MediaType   follow.MediaType `json:"media_type,omitempty"`

	// Enrichment attachments.
	Curated  *Curated         `json:"curated,omitempty"`
	Readable *Readable        `json:"readable,omitempty"`
	Download *download.Result `json:"download,omitempty"`
	Favicon  *Resource        `json:"favicon,omitempty"`
}

// New builds an original resource.
func New(uri, origin, label string) Resource {
	return Resource{
		Kind:   KindOriginal,
		URI:    uri,
		Origin: origin,
		Label:  label,
	}
}

// Derive returns a copy of r advanced one pipeline position, linked back
// to r, carrying remarks about the change. The copy keeps r's kind
// unless r was still an original, in which case it becomes transformed.
func Derive(r Resource, remarks string) Resource {
	prior := r
	next := r
	next.TransformedFrom = &prior
	next.Remarks = remarks
	if prior.Kind == KindOriginal {
		next.Kind = KindTransformed
		next.PipePosition = 0
	} else {
		next.PipePosition = prior.PipePosition + 1
	}
	return next
}

// Invalidate returns the terminal invalid state for r.
func Invalidate(r Resource, err error, remarks string) Resource {
	next := Derive(r, remarks)
	next.Kind = KindInvalid
	next.Err = err
	return next
}

// IsTransformed reports whether r has been altered by at least one step.
func (r Resource) IsTransformed() bool {
	return r.Kind != KindOriginal
}

// IsInvalid reports whether r is a terminal failure state.
func (r Resource) IsInvalid() bool {
	return r.Kind == KindInvalid
}

// IsFollowed reports whether r carries a resolved redirect chain.
func (r Resource) IsFollowed() bool {
	return r.Kind == KindFollowed
}

// HasTerminalText reports whether r's chain ended in a text response
// with a retained body.
func (r Resource) HasTerminalText() bool {
	return r.Terminal != nil && r.Terminal.IsTerminalText()
}

// HasGovernedContent reports whether a content-type classification has
// been attached.
func (r Resource) HasGovernedContent() bool {
	return r.ContentType != ""
}

// HasCuratedContent reports whether curation metadata has been attached.
func (r Resource) HasCuratedContent() bool {
	return r.Curated != nil
}

// HasDownload reports whether a download was attempted for r.
func (r Resource) HasDownload() bool {
	return r.Download != nil
}

// History walks the provenance chain from r back to the original,
// newest first.
func (r Resource) History() []Resource {
	out := []Resource{r}
	for prior := r.TransformedFrom; prior != nil; prior = prior.TransformedFrom {
		out = append(out, *prior)
	}
	return out
}

// Package follow implements the redirect-resolution engine. Given an
// origin URL it issues single, non-auto-following HTTP fetches, chasing
// HTTP 3xx and zero-delay meta-refresh redirects until the chain reaches
// a terminal response, an error, or the configured depth limit.
package follow

import (
	"net/http"
)

// VisitKind discriminates the outcome of one HTTP interaction.
type VisitKind string

// Visit outcome tags.
const (
	VisitKindError           VisitKind = "error"
	VisitKindHTTPRedirect    VisitKind = "http_redirect"
	VisitKindContentRedirect VisitKind = "content_redirect"
	VisitKindTerminal        VisitKind = "terminal"
	VisitKindTerminalText    VisitKind = "terminal_text"
)

// Visit records the outcome of one fetch during redirect following.
// Exactly one Visit is produced per hop; the slice of visits for one
// origin URL always ends in an error or a terminal variant.
type Visit struct {
	Kind VisitKind `json:"kind"`
	// URL is the address that was fetched for this hop.
	URL string `json:"url"`
	// Err is set only for VisitKindError.
	Err error `json:"-"`
	// RedirectURL is set for the redirect variants.
	RedirectURL string `json:"redirect_url,omitempty"`

	StatusCode int         `json:"status_code,omitempty"`
	Headers    http.Header `json:"headers,omitempty"`
	// ContentType is the raw Content-Type header value.
	ContentType string    `json:"content_type,omitempty"`
	MediaType   MediaType `json:"media_type,omitempty"`
	// Body holds the full response text for VisitKindTerminalText and,
	// when retained, for VisitKindContentRedirect.
	Body string `json:"-"`
}

// IsRedirect reports whether the visit instructs the follower to hop again.
func (v Visit) IsRedirect() bool {
	return v.Kind == VisitKindHTTPRedirect || v.Kind == VisitKindContentRedirect
}

// IsTerminal reports whether the visit ends the chain with a response.
func (v Visit) IsTerminal() bool {
	return v.Kind == VisitKindTerminal || v.Kind == VisitKindTerminalText
}

// IsTerminalText reports whether the visit is terminal with a retained
// text body.
func (v Visit) IsTerminalText() bool {
	return v.Kind == VisitKindTerminalText
}

// IsError reports whether the visit recorded a per-hop failure.
func (v Visit) IsError() bool {
	return v.Kind == VisitKindError
}

// Terminal returns the last visit of a chain when it is a terminal
// variant, or false otherwise.
func Terminal(visits []Visit) (Visit, bool) {
	if len(visits) == 0 {
		return Visit{}, false
	}
	last := visits[len(visits)-1]
	if !last.IsTerminal() {
		return Visit{}, false
	}
	return last, true
}

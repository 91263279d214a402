package follow

import (
	"mime"
	"strings"
)

// MediaType is the parsed form of a Content-Type header.
type MediaType struct {
	// Essence is the type/subtype pair without parameters,
	// e.g. "text/html".
	Essence string `json:"essence,omitempty"`
	// Major is the part before the slash, e.g. "text".
	Major string `json:"major,omitempty"`
	// Params carries the media type parameters, e.g. charset.
	Params map[string]string `json:"params,omitempty"`
}

// IsText reports whether the major type is "text".
func (m MediaType) IsText() bool {
	return m.Major == "text"
}

// ParseMediaType extracts the MIME essence and major type from a raw
// Content-Type header value. An unparseable or empty header yields a
// zero MediaType, never an error: classification is best-effort and a
// missing content type simply means "not text".
func ParseMediaType(contentType string) MediaType {
	contentType = strings.TrimSpace(contentType)
	if contentType == "" {
		return MediaType{}
	}
	essence, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		// Fall back to the bare essence before any parameters.
		essence = strings.ToLower(strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0]))
		params = nil
	}
	major, _, _ := strings.Cut(essence, "/")
	return MediaType{Essence: essence, Major: major, Params: params}
}

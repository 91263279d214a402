// Package readable provides article extraction behind an injected
// collaborator interface, resolved once at construction.
package readable

import (
	"fmt"
	"net/url"
	"strings"

	readability "github.com/go-shiori/go-readability"

	"github.com/mbellgrove/linkweaver/internal/resource"
)

// Extractor turns full page HTML into a simplified article.
type Extractor interface {
	Extract(html, pageURL string) (resource.Readable, error)
}

// ShioriExtractor implements Extractor with go-readability.
type ShioriExtractor struct{}

// NewShioriExtractor builds the default extractor.
func NewShioriExtractor() *ShioriExtractor {
	return &ShioriExtractor{}
}

// Extract runs readability over the document.
func (ShioriExtractor) Extract(html, pageURL string) (resource.Readable, error) {
	parsedURL, err := url.Parse(pageURL)
	if err != nil {
		return resource.Readable{}, fmt.Errorf("parse page url: %w", err)
	}
	article, err := readability.FromReader(strings.NewReader(html), parsedURL)
	if err != nil {
		return resource.Readable{}, fmt.Errorf("extract readable content: %w", err)
	}
	return resource.Readable{
		Title:       strings.TrimSpace(article.Title),
		Content:     article.Content,
		TextContent: article.TextContent,
		Excerpt:     strings.TrimSpace(article.Excerpt),
		SiteName:    strings.TrimSpace(article.SiteName),
	}, nil
}

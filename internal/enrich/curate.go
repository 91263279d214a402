package enrich

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/mbellgrove/linkweaver/internal/htmldoc"
	"github.com/mbellgrove/linkweaver/internal/resource"
)

// siteSuffix matches a trailing " | SiteName" in a page title.
var siteSuffix = regexp.MustCompile(`\s+\|\s+[^|]+$`)

// Curator extracts Open Graph and Twitter Card metadata from a terminal
// text resource and resolves a display title: Open Graph first, then
// Twitter Card, then the page <title> with any trailing " | SiteName"
// suffix stripped.
type Curator struct {
	// StripSiteSuffix controls suffix removal on the page-title
	// fallback.
	StripSiteSuffix bool
}

// NewCurator builds the step with suffix stripping enabled.
func NewCurator() Curator {
	return Curator{StripSiteSuffix: true}
}

// Transform curates the resource; it is a no-op unless a terminal text
// body is available. Parse failures propagate to the pipeline caller.
func (c Curator) Transform(_ context.Context, r resource.Resource) (resource.Resource, error) {
	if !r.HasTerminalText() {
		return r, nil
	}

	doc, err := htmldoc.ParseString(r.Terminal.Body, r.URI)
	if err != nil {
		return r, fmt.Errorf("curate %s: %w", r.URI, err)
	}

	social := extractSocialGraph(doc)
	title := c.resolveTitle(doc, social)

	next := resource.Derive(r, "curated social metadata and title")
	next.Curated = &resource.Curated{
		Title:       title,
		Social:      social,
		ContentType: r.Terminal.ContentType,
	}
	return next, nil
}

// extractSocialGraph walks meta tags in document order; the last tag
// seen for a property wins.
func extractSocialGraph(doc *htmldoc.Document) *resource.SocialGraph {
	openGraph := make(map[string]string)
	twitterCard := make(map[string]string)

	for _, tag := range doc.Meta() {
		switch {
		case strings.HasPrefix(tag.Property, "og:"):
			openGraph[strings.TrimPrefix(tag.Property, "og:")] = tag.Content
		case strings.HasPrefix(tag.Name, "twitter:"):
			twitterCard[strings.TrimPrefix(tag.Name, "twitter:")] = tag.Content
		case strings.HasPrefix(tag.Property, "twitter:"):
			twitterCard[strings.TrimPrefix(tag.Property, "twitter:")] = tag.Content
		}
	}

	if len(openGraph) == 0 && len(twitterCard) == 0 {
		return nil
	}
	return &resource.SocialGraph{OpenGraph: openGraph, TwitterCard: twitterCard}
}

func (c Curator) resolveTitle(doc *htmldoc.Document, social *resource.SocialGraph) string {
	if social != nil {
		if t := strings.TrimSpace(social.OpenGraph["title"]); t != "" {
			return t
		}
		if t := strings.TrimSpace(social.TwitterCard["title"]); t != "" {
			return t
		}
	}
	title := doc.Title()
	if c.StripSiteSuffix {
		title = strings.TrimSpace(siteSuffix.ReplaceAllString(title, ""))
	}
	return title
}

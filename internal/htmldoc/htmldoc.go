// Package htmldoc wraps goquery behind the small query surface the
// resolver needs: anchors, meta tags, JSON-LD schemas, and page icons.
package htmldoc

import (
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Anchor is one <a> element with its resolved target and display text.
type Anchor struct {
	Href  string
	Label string
}

// MetaTag is one <meta> element, in document order.
type MetaTag struct {
	Name     string
	Property string
	Content  string
}

// Icon is one page icon candidate from <link rel="icon"> and friends.
type Icon struct {
	Href  string
	Rel   string
	Sizes string
}

// Document is a parsed, queryable HTML page.
type Document struct {
	doc  *goquery.Document
	base *url.URL
}

// Parse reads HTML and prepares it for querying. baseURL, when
// non-empty, is used to absolutize relative anchor and icon targets.
func Parse(r io.Reader, baseURL string) (*Document, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	var base *url.URL
	if baseURL != "" {
		base, err = url.Parse(baseURL)
		if err != nil {
			return nil, fmt.Errorf("parse base url: %w", err)
		}
	}
	return &Document{doc: doc, base: base}, nil
}

// ParseString is Parse over an in-memory page.
func ParseString(html, baseURL string) (*Document, error) {
	return Parse(strings.NewReader(html), baseURL)
}

// Anchors returns the document's anchors in document order. A nil filter
// keeps everything; otherwise only anchors the filter accepts survive.
func (d *Document) Anchors(filter func(Anchor) bool) []Anchor {
	var anchors []Anchor
	d.doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, ok := sel.Attr("href")
		if !ok || strings.TrimSpace(href) == "" {
			return
		}
		a := Anchor{
			Href:  d.absolutize(href),
			Label: strings.TrimSpace(sel.Text()),
		}
		if filter != nil && !filter(a) {
			return
		}
		anchors = append(anchors, a)
	})
	return anchors
}

// Meta returns every <meta> tag in document order.
func (d *Document) Meta() []MetaTag {
	var tags []MetaTag
	d.doc.Find("meta").Each(func(_ int, sel *goquery.Selection) {
		name, _ := sel.Attr("name")
		property, _ := sel.Attr("property")
		content, _ := sel.Attr("content")
		if name == "" && property == "" {
			return
		}
		tags = append(tags, MetaTag{Name: name, Property: property, Content: content})
	})
	return tags
}

// Title returns the page <title> text, trimmed.
func (d *Document) Title() string {
	return strings.TrimSpace(d.doc.Find("title").First().Text())
}

// UntypedSchemas returns the page's JSON-LD blocks as untyped maps.
// When unwrapGraph is set, a top-level @graph array is flattened into
// its member objects. A nil filter keeps everything.
func (d *Document) UntypedSchemas(unwrapGraph bool, filter func(map[string]any) bool) []map[string]any {
	var schemas []map[string]any
	keep := func(m map[string]any) {
		if filter != nil && !filter(m) {
			return
		}
		schemas = append(schemas, m)
	}
	d.doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, sel *goquery.Selection) {
		var parsed map[string]any
		if err := json.Unmarshal([]byte(sel.Text()), &parsed); err != nil {
			return
		}
		if unwrapGraph {
			if graph, ok := parsed["@graph"].([]any); ok {
				for _, node := range graph {
					if m, ok := node.(map[string]any); ok {
						keep(m)
					}
				}
				return
			}
		}
		keep(parsed)
	})
	return schemas
}

// PageIcons returns the icon candidates declared in link tags.
func (d *Document) PageIcons() []Icon {
	var icons []Icon
	d.doc.Find(`link[rel~="icon"], link[rel="shortcut icon"], link[rel="apple-touch-icon"]`).Each(
		func(_ int, sel *goquery.Selection) {
			href, ok := sel.Attr("href")
			if !ok || strings.TrimSpace(href) == "" {
				return
			}
			rel, _ := sel.Attr("rel")
			sizes, _ := sel.Attr("sizes")
			icons = append(icons, Icon{Href: d.absolutize(href), Rel: rel, Sizes: sizes})
		})
	return icons
}

func (d *Document) absolutize(href string) string {
	if d.base == nil {
		return href
	}
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return href
	}
	return d.base.ResolveReference(ref).String()
}

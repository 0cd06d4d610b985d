// Package extract pulls structured metadata out of archived HTML.
//
// Replayed pages come back as the full document the archive captured, often
// with the archive's own replay toolbar and rewritten resource URLs
// injected on top. This package provides the two post-processing steps the
// CLI and API offer:
//
//   - [Metadata]: title, description, canonical URL, link count, and a
//     short text snippet for listings and saved-library entries
//   - [StripArchiveChrome]: remove the injected replay toolbar and undo
//     the archive's resource URL rewriting
package extract

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// snippetLength bounds the text excerpt in Metadata.
const snippetLength = 200

// Meta is the extracted summary of one archived page.
type Meta struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Canonical   string `json:"canonical,omitempty"`
	Links       int    `json:"links"`
	Snippet     string `json:"snippet,omitempty"`
}

// Metadata parses html and extracts its summary fields. Pages without a
// title or description yield empty strings rather than an error; only
// unparseable input fails.
func Metadata(html string) (*Meta, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	m := &Meta{
		Title: strings.TrimSpace(doc.Find("title").First().Text()),
		Links: doc.Find("a[href]").Length(),
	}

	if desc, ok := doc.Find(`meta[name="description"]`).Attr("content"); ok {
		m.Description = strings.TrimSpace(desc)
	} else if desc, ok := doc.Find(`meta[property="og:description"]`).Attr("content"); ok {
		m.Description = strings.TrimSpace(desc)
	}

	if canonical, ok := doc.Find(`link[rel="canonical"]`).Attr("href"); ok {
		m.Canonical = strings.TrimSpace(canonical)
	}

	m.Snippet = snippet(doc)
	return m, nil
}

// Title is a convenience for callers that only need the page title, such
// as naming saved library records.
func Title(html string) string {
	m, err := Metadata(html)
	if err != nil {
		return ""
	}
	return m.Title
}

// snippet returns the first snippetLength characters of the page's body
// text, whitespace-collapsed.
func snippet(doc *goquery.Document) string {
	body := doc.Find("body").First()
	// Drop non-content elements before reading text.
	body.Find("script, style, noscript").Remove()

	text := strings.Join(strings.Fields(body.Text()), " ")
	if len(text) > snippetLength {
		text = text[:snippetLength]
		// Avoid cutting a word in half.
		if i := strings.LastIndexByte(text, ' '); i > 0 {
			text = text[:i]
		}
		text += "…"
	}
	return text
}

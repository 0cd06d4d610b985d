package extract

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Elements the replay endpoint injects into captured pages. The toolbar
// lives in the wm-ipp containers; the supporting scripts and stylesheets
// are all served from the archive's own hosts.
const injectedSelectors = `#wm-ipp-base, #wm-ipp-print, #wm-ipp, ` +
	`script[src*="archive.org"], link[href*="archive.org"], ` +
	`script[src*="/_static/"], link[href*="/_static/"]`

// replayPrefix matches the archive's URL rewriting: an optional replay host,
// then /web/<timestamp> with an optional resource-type suffix (js_, cs_,
// im_, if_, ...), then the original URL.
var replayPrefix = regexp.MustCompile(`^(?:https?://web\.archive\.org)?/web/\d{4,14}(?:[a-z]{2}_)?/(.+)$`)

// toolbarInsert matches the commented toolbar block the replay endpoint
// splices in after <head>. Removed textually because the comments survive
// DOM-based deletion.
var toolbarInsert = regexp.MustCompile(`(?s)<!--\s*BEGIN WAYBACK TOOLBAR INSERT\s*-->.*?<!--\s*END WAYBACK TOOLBAR INSERT\s*-->`)

// StripArchiveChrome removes the replay toolbar and injected scripts from
// an archived page and rewrites resource URLs back to their original form.
// The result approximates the page as it was originally served.
func StripArchiveChrome(html string) (string, error) {
	html = toolbarInsert.ReplaceAllString(html, "")

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}

	doc.Find(injectedSelectors).Remove()

	// Inline __wm bootstrap scripts carry no src attribute.
	doc.Find("script").Each(func(_ int, s *goquery.Selection) {
		if strings.Contains(s.Text(), "__wm.") {
			s.Remove()
		}
	})

	for _, attr := range []string{"href", "src"} {
		doc.Find("[" + attr + "]").Each(func(_ int, s *goquery.Selection) {
			val, _ := s.Attr(attr)
			if m := replayPrefix.FindStringSubmatch(val); m != nil {
				s.SetAttr(attr, m[1])
			}
		})
	}

	out, err := doc.Html()
	if err != nil {
		return "", fmt.Errorf("render html: %w", err)
	}
	return out, nil
}

// Package sites provides the concrete Source Adapter (SA) implementations:
// one file per registered source, each grounded on the matching crawler in
// the original Rust implementation's scrape/crawlers directory.
package sites

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// parseHTML wraps raw bytes in a goquery document, the shared entry point
// every HTML-based adapter in this package uses to turn a Document's bytes
// into something selectors can walk.
func parseHTML(html []byte) (*goquery.Document, error) {
	return goquery.NewDocumentFromReader(bytes.NewReader(html))
}

// text returns the trimmed text content of sel's first match.
func text(sel *goquery.Selection) string {
	return strings.TrimSpace(sel.First().Text())
}

// optionalString returns a pointer to s, or nil if s is empty after
// trimming, matching the original source's Option<String> idiom.
func optionalString(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// nextSiblingElement walks past text/comment nodes to the next element
// sibling, mirroring the original source's next_sibling_element helper
// (officials.rs) for table-row label/value pairs.
func nextSiblingElement(sel *goquery.Selection) *goquery.Selection {
	next := sel.Next()
	for next.Length() > 0 {
		if goquery.NodeName(next) != "#text" {
			return next
		}
		next = next.Next()
	}
	return next
}

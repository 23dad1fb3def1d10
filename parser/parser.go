// Package parser extracts item attributes from fetched wiki pages.
package parser

import (
	"bytes"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ErrNoInfobox signals that a page has no item infobox. This is not a
// failure: redirects and non-item pages simply lack the container, and
// callers should skip the page rather than record an error.
var ErrNoInfobox = errors.New("parser: no item infobox")

// ParseAttributes extracts the label/value pairs from the item infobox of a
// detail page. Each two-cell table row inside the first div.infobox becomes
// one entry, with both cells whitespace-trimmed; on duplicate labels the last
// occurrence wins. Returns ErrNoInfobox when the container is absent.
func ParseAttributes(body []byte) (map[string]string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse page: %w", err)
	}

	infobox := doc.Find("div.infobox").First()
	if infobox.Length() == 0 {
		return nil, ErrNoInfobox
	}

	attrs := make(map[string]string)
	infobox.Find("tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() != 2 {
			return
		}
		key := strings.TrimSpace(cells.Eq(0).Text())
		value := strings.TrimSpace(cells.Eq(1).Text())
		attrs[key] = value
	})
	return attrs, nil
}

// ItemNameFromURL derives an item's display name from its detail page URL:
// the last path segment with underscores replaced by spaces.
func ItemNameFromURL(rawURL string) string {
	pagePath := rawURL
	if parsed, err := url.Parse(rawURL); err == nil && parsed.Path != "" {
		pagePath = parsed.Path
	}
	segment := pagePath[strings.LastIndex(pagePath, "/")+1:]
	return strings.ReplaceAll(segment, "_", " ")
}

// Package textbook extracts display metadata from HTML textbooks before
// upload so events and logs can name what was sent.
package textbook

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const maxHTMLBodyBytes = 1 << 20 // 1 MiB

// Meta is what could be learned about a textbook from its markup.
type Meta struct {
	Title       string
	Description string
	CoverURL    string
}

// Inspect parses an HTML document and extracts title, description, and cover
// image, preferring OpenGraph tags over plain head elements.
func Inspect(r io.Reader) (Meta, error) {
	doc, err := goquery.NewDocumentFromReader(io.LimitReader(r, maxHTMLBodyBytes))
	if err != nil {
		return Meta{}, fmt.Errorf("parse html: %w", err)
	}

	extract := func(sel string) string {
		if node := doc.Find(sel).First(); node.Length() > 0 {
			if val, ok := node.Attr("content"); ok {
				return strings.TrimSpace(val)
			}
		}
		return ""
	}

	m := Meta{}
	m.Title = firstNonEmpty(
		extract(`meta[property="og:title"]`),
		strings.TrimSpace(doc.Find("title").First().Text()),
		strings.TrimSpace(doc.Find("h1").First().Text()),
	)
	m.Description = firstNonEmpty(
		extract(`meta[property="og:description"]`),
		extract(`meta[name="description"]`),
	)
	m.CoverURL = extract(`meta[property="og:image"]`)

	return m, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

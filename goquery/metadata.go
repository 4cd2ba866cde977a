package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/claudehenchoz/gensi"
)

// Metadata fallback chains, tried in order; first non-empty match wins.
// The generic page title and leading heading are last resorts for title
// only.
var (
	titleChain = []metaSource{
		{selector: `meta[property="og:title"]`, attr: "content"},
		{selector: `meta[name="twitter:title"]`, attr: "content"},
		{selector: "title"},
		{selector: "h1"},
	}
	authorChain = []metaSource{
		{selector: `meta[name="author"]`, attr: "content"},
		{selector: `meta[property="article:author"]`, attr: "content"},
		{selector: `meta[property="og:article:author"]`, attr: "content"},
		{selector: "span.author"},
		{selector: "div.author"},
		{selector: `a[rel="author"]`},
	}
	dateChain = []metaSource{
		{selector: `meta[property="article:published_time"]`, attr: "content"},
		{selector: `meta[property="og:article:published_time"]`, attr: "content"},
		{selector: "time[datetime]", attr: "datetime"},
		{selector: `meta[name="date"]`, attr: "content"},
		{selector: `meta[name="pubdate"]`, attr: "content"},
		{selector: "time"},
	}
)

// metaSource is one well-known metadata location: a selector plus an
// optional attribute. An empty attr reads the element text.
type metaSource struct {
	selector string
	attr     string
}

// applyFallback fills any still-empty metadata field from its chain.
// Exhausting a chain leaves the field empty; that is a valid terminal
// state, not an error.
func applyFallback(doc *goquery.Document, result *gensi.ExtractResult) {
	if result.Title == "" {
		result.Title = firstMatch(doc, titleChain)
	}
	if result.Author == "" {
		result.Author = firstMatch(doc, authorChain)
	}
	if result.Date == "" {
		result.Date = firstMatch(doc, dateChain)
	}
}

func firstMatch(doc *goquery.Document, chain []metaSource) string {
	for _, src := range chain {
		sel := doc.Find(src.selector).First()
		if sel.Length() == 0 {
			continue
		}
		var value string
		if src.attr != "" {
			value, _ = sel.Attr(src.attr)
		} else {
			value = sel.Text()
		}
		if value = strings.TrimSpace(value); value != "" {
			return value
		}
	}
	return ""
}

// Package bluemonday sanitizes article markup down to the XHTML subset
// EPUB 2.0.1 readers accept. Scripts, event handlers, unknown elements
// and unsafe URL schemes are stripped before content is packaged.
package bluemonday

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// allowedTags is the XHTML 1.1 subset EPUB 2.0.1 readers render.
// script and style never appear here; article content has no business
// carrying either.
var allowedTags = []string{
	"a", "abbr", "acronym", "address", "article", "aside", "audio",
	"b", "bdi", "bdo", "big", "blockquote", "body", "br", "button",
	"canvas", "caption", "cite", "code", "col", "colgroup",
	"data", "datalist", "dd", "del", "details", "dfn", "dialog", "div", "dl", "dt",
	"em", "embed",
	"fieldset", "figcaption", "figure", "footer", "form",
	"h1", "h2", "h3", "h4", "h5", "h6", "head", "header", "hr", "html",
	"i", "iframe", "img", "input", "ins",
	"kbd", "keygen",
	"label", "legend", "li", "link",
	"main", "map", "mark", "menu", "menuitem", "meta", "meter",
	"nav", "noscript",
	"object", "ol", "optgroup", "option", "output",
	"p", "param", "picture", "pre", "progress",
	"q",
	"rp", "rt", "ruby",
	"s", "samp", "section", "select", "small", "source", "span",
	"strong", "sub", "summary", "sup", "svg",
	"table", "tbody", "td", "template", "textarea", "tfoot", "th", "thead",
	"time", "title", "tr", "track",
	"u", "ul",
	"var", "video",
	"wbr",
}

// Sanitizer strips article content down to EPUB-safe markup. The zero
// value is not usable; construct with NewSanitizer.
type Sanitizer struct {
	policy *bluemonday.Policy
}

// NewSanitizer builds a sanitizer with the EPUB 2.0.1 policy.
func NewSanitizer() *Sanitizer {
	p := bluemonday.NewPolicy()
	p.AllowElements(allowedTags...)

	p.AllowAttrs("class", "id", "lang", "dir", "title", "style").Globally()
	p.AllowAttrs("href", "name", "target").OnElements("a")
	p.AllowAttrs("src", "alt", "width", "height", "title").OnElements("img")
	p.AllowAttrs("src", "controls", "autoplay", "loop", "preload").OnElements("audio")
	p.AllowAttrs("src", "controls", "autoplay", "loop", "preload", "width", "height", "poster").OnElements("video")
	p.AllowAttrs("src", "type").OnElements("source")
	p.AllowAttrs("rel", "href", "type").OnElements("link")
	p.AllowAttrs("border", "cellpadding", "cellspacing", "width", "summary").OnElements("table")
	p.AllowAttrs("colspan", "rowspan", "headers", "width", "height", "align", "valign").OnElements("td")
	p.AllowAttrs("colspan", "rowspan", "scope", "width", "height", "align", "valign").OnElements("th")
	p.AllowAttrs("start", "type", "reversed").OnElements("ol")
	p.AllowAttrs("type").OnElements("ul")
	p.AllowAttrs("value").OnElements("li")
	p.AllowAttrs("cite").OnElements("blockquote", "q")
	p.AllowAttrs("cite", "datetime").OnElements("del", "ins")
	p.AllowAttrs("datetime").OnElements("time")

	p.AllowURLSchemes("http", "https", "mailto", "ftp", "data")
	// Embedded images are rewritten to bare local filenames before
	// packaging, so relative references must survive.
	p.AllowRelativeURLs(true)

	return &Sanitizer{policy: p}
}

// Sanitize cleans one article body. When cleaning leaves nothing, the
// input is wrapped in a div and cleaned once more; some extractors hand
// back bare top-level fragments a strict pass rejects outright. An
// empty return means the content could not be salvaged.
func (s *Sanitizer) Sanitize(html string) string {
	out := s.policy.Sanitize(html)
	if strings.TrimSpace(out) != "" {
		return out
	}
	out = s.policy.Sanitize("<div>" + html + "</div>")
	if strings.TrimSpace(out) != "" {
		return out
	}
	return ""
}

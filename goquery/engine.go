// Package goquery implements the markup side of the extraction engine:
// selector-driven article extraction with the metadata-fallback chain,
// index reference extraction, cover URL extraction, and thumbnail
// candidate collection. The script escape hatch receives the parsed
// document handle.
package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/claudehenchoz/gensi"
)

// Engine extracts structured output from markup. Scripts may be nil when
// no recipe in play uses the escape hatch.
type Engine struct {
	Scripts gensi.ScriptRunner
}

// NewEngine creates an Engine with the given script runner.
func NewEngine(scripts gensi.ScriptRunner) *Engine {
	return &Engine{Scripts: scripts}
}

// ExtractArticle extracts content plus title/author/date from an article
// page. Strategy order: the embedded script when present, otherwise the
// structural selectors. The metadata-fallback chain fills whatever the
// chosen strategy left empty.
//
// Selector mode upholds the ordering invariant: metadata selectors read
// the full document first, remove selectors are applied to a clone, and
// the content is serialized from that clone last. Metadata and remove
// selectors may therefore target overlapping nodes.
func (e *Engine) ExtractArticle(baseURL, html string, spec *gensi.ArticleSpec) (*gensi.ExtractResult, error) {
	doc, err := parse(html)
	if err != nil {
		return nil, err
	}

	if spec != nil && spec.Script != "" {
		return e.extractArticleScript(doc, spec.Script)
	}

	if spec == nil || spec.Content == "" {
		return nil, gensi.Errorf(gensi.ECONFIG, "article content selector required")
	}

	result := &gensi.ExtractResult{}

	// Metadata first, against the pristine document.
	if spec.Title != "" {
		result.Title = textOf(doc.Find(spec.Title).First())
	}
	if spec.Author != "" {
		result.Author = textOf(doc.Find(spec.Author).First())
	}
	if spec.Date != "" {
		sel := doc.Find(spec.Date).First()
		if dt, ok := sel.Attr("datetime"); ok && strings.TrimSpace(dt) != "" {
			result.Date = strings.TrimSpace(dt)
		} else {
			result.Date = textOf(sel)
		}
	}

	// A configured content selector that matches nothing is a hard
	// failure, not an empty result.
	if doc.Find(spec.Content).Length() == 0 {
		return nil, gensi.Errorf(gensi.EEXTRACT, "content selector %q matched nothing", spec.Content)
	}

	// Removal happens on a clone so the metadata pass above, and the
	// fallback pass below, still see the full document.
	clone, err := parse(html)
	if err != nil {
		return nil, err
	}
	for _, rm := range spec.Remove {
		clone.Find(rm).Remove()
	}

	content := clone.Find(spec.Content).First()
	serialized, err := goquery.OuterHtml(content)
	if err != nil {
		return nil, gensi.Errorf(gensi.EINTERNAL, "failed to serialize content: %v", err)
	}
	result.Content = serialized

	applyFallback(doc, result)
	return result, nil
}

// extractArticleScript runs the escape hatch with the parsed document. A
// string result is raw content with the full fallback chain applied; a
// map result must carry content and gets fallback only for absent
// metadata; anything else is a hard error.
func (e *Engine) extractArticleScript(doc *goquery.Document, script string) (*gensi.ExtractResult, error) {
	if e.Scripts == nil {
		return nil, gensi.Errorf(gensi.ECONFIG, "recipe uses a script but no script runner is configured")
	}

	out, err := e.Scripts.Execute(script, map[string]any{"document": doc})
	if err != nil {
		return nil, err
	}

	result := &gensi.ExtractResult{}
	switch v := out.(type) {
	case string:
		result.Content = v
	case map[string]any:
		content, ok := v["content"].(string)
		if !ok {
			return nil, gensi.Errorf(gensi.EEXTRACT, "article script result must include a content string")
		}
		result.Content = content
		result.Title, _ = v["title"].(string)
		result.Author, _ = v["author"].(string)
		result.Date, _ = v["date"].(string)
	default:
		return nil, gensi.Errorf(gensi.EEXTRACT, "article script must return a string or an object, got %T", out)
	}

	applyFallback(doc, result)
	return result, nil
}

// ExtractIndexRefs extracts article references from a listing page using
// the items/link selector pair, or the index script when present.
func (e *Engine) ExtractIndexRefs(baseURL, html string, spec *gensi.IndexSpec) ([]gensi.ArticleRef, error) {
	doc, err := parse(html)
	if err != nil {
		return nil, err
	}

	if spec.Script != "" {
		if e.Scripts == nil {
			return nil, gensi.Errorf(gensi.ECONFIG, "recipe uses a script but no script runner is configured")
		}
		out, err := e.Scripts.Execute(spec.Script, map[string]any{"document": doc})
		if err != nil {
			return nil, err
		}
		return gensi.RefsFromScript(baseURL, out)
	}

	var refs []gensi.ArticleRef
	doc.Find(spec.Items).Each(func(_ int, item *goquery.Selection) {
		link := item.Find(spec.Link).First()
		href, ok := link.Attr("href")
		if !ok || href == "" {
			return
		}
		refs = append(refs, gensi.ArticleRef{URL: gensi.ResolveURL(baseURL, href)})
	})

	return refs, nil
}

// ExtractCoverURL extracts the cover image URL from a page: a script
// returning a URL string, or an img selector. A selector that matches
// nothing yields the empty string; the cover is optional and its absence
// is not an error here.
func (e *Engine) ExtractCoverURL(baseURL, html string, spec *gensi.CoverSpec) (string, error) {
	doc, err := parse(html)
	if err != nil {
		return "", err
	}

	if spec.Script != "" {
		if e.Scripts == nil {
			return "", gensi.Errorf(gensi.ECONFIG, "recipe uses a script but no script runner is configured")
		}
		out, err := e.Scripts.Execute(spec.Script, map[string]any{"document": doc})
		if err != nil {
			return "", err
		}
		s, ok := out.(string)
		if !ok {
			return "", gensi.Errorf(gensi.EEXTRACT, "cover script must return a string, got %T", out)
		}
		return gensi.ResolveURL(baseURL, s), nil
	}

	if spec.Selector == "" {
		return "", gensi.Errorf(gensi.ECONFIG, "cover selector required when URL is not an image")
	}

	src, ok := doc.Find(spec.Selector).First().Attr("src")
	if !ok || src == "" {
		return "", nil
	}
	return gensi.ResolveURL(baseURL, src), nil
}

func parse(html string) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, gensi.Errorf(gensi.EEXTRACT, "failed to parse HTML: %v", err)
	}
	return doc, nil
}

func textOf(sel *goquery.Selection) string {
	return strings.TrimSpace(sel.Text())
}

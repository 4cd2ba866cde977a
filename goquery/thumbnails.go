package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/claudehenchoz/gensi"
	"github.com/tidwall/gjson"
)

// DefaultThumbnailMax caps the candidates collected per article.
const DefaultThumbnailMax = 6

// ExtractThumbnails collects cover-candidate image URLs from a page:
// social-card meta tags first, then JSON-LD image declarations, then
// body images. The list is de-duplicated preserving first-seen order
// and capped at max (DefaultThumbnailMax when max <= 0). Scoring and
// mosaic assembly belong to the cover-generation collaborator; this
// only gathers candidates.
func ExtractThumbnails(baseURL, html string, max int) []string {
	if max <= 0 {
		max = DefaultThumbnailMax
	}

	doc, err := parse(html)
	if err != nil {
		return nil
	}

	var candidates []string
	add := func(raw string) {
		raw = strings.TrimSpace(raw)
		if raw == "" || strings.HasPrefix(raw, "data:") {
			return
		}
		candidates = append(candidates, gensi.ResolveURL(baseURL, raw))
	}

	for _, sel := range []string{`meta[property="og:image"]`, `meta[name="twitter:image"]`} {
		doc.Find(sel).Each(func(_ int, s *goquery.Selection) {
			if content, ok := s.Attr("content"); ok {
				add(content)
			}
		})
	}

	doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, s *goquery.Selection) {
		for _, u := range jsonLDImages(s.Text()) {
			add(u)
		}
	})

	doc.Find("article img, main img, img").Each(func(_ int, s *goquery.Selection) {
		if src, ok := s.Attr("src"); ok {
			add(src)
		}
	})

	seen := make(map[string]bool, len(candidates))
	var unique []string
	for _, u := range candidates {
		if seen[u] {
			continue
		}
		seen[u] = true
		unique = append(unique, u)
		if len(unique) == max {
			break
		}
	}
	return unique
}

// jsonLDImages pulls image URLs out of a JSON-LD block. The image field
// may be a string, a list, or an ImageObject with a url.
func jsonLDImages(data string) []string {
	if !gjson.Valid(data) {
		return nil
	}
	image := gjson.Get(data, "image")
	if !image.Exists() {
		return nil
	}

	var urls []string
	collect := func(r gjson.Result) {
		switch {
		case r.Type == gjson.String:
			urls = append(urls, r.String())
		case r.IsObject():
			if u := r.Get("url"); u.Exists() {
				urls = append(urls, u.String())
			}
		}
	}

	if image.IsArray() {
		image.ForEach(func(_, value gjson.Result) bool {
			collect(value)
			return true
		})
	} else {
		collect(image)
	}
	return urls
}

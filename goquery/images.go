package goquery

import (
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/cespare/xxhash/v2"
	"github.com/claudehenchoz/gensi"
)

// EmbedImages rewrites a content fragment's inline images to local
// filenames. Each img src is resolved against baseURL and handed to
// fetch; on success the src attribute is replaced with a stable
// hash-derived filename and the payload is recorded under that name.
// When fetch reports failure the src is left as the absolute URL so the
// reference at least stays resolvable. Inline data URIs pass through
// untouched.
func EmbedImages(baseURL, html string, fetch func(url string) ([]byte, bool)) (string, map[string][]byte) {
	doc, err := parse(html)
	if err != nil {
		return html, nil
	}

	images := make(map[string][]byte)
	doc.Find("img").Each(func(_ int, s *goquery.Selection) {
		src := strings.TrimSpace(s.AttrOr("src", ""))
		if src == "" || strings.HasPrefix(src, "data:") {
			return
		}
		abs := gensi.ResolveURL(baseURL, src)
		payload, ok := fetch(abs)
		if !ok {
			s.SetAttr("src", abs)
			return
		}
		name := imageFilename(abs)
		images[name] = payload
		s.SetAttr("src", name)
	})

	out, err := doc.Find("body").First().Html()
	if err != nil {
		return html, nil
	}
	if len(images) == 0 {
		images = nil
	}
	return out, images
}

// imageFilename derives a collision-resistant local name from the image
// URL, keeping the original extension when it has one.
func imageFilename(rawURL string) string {
	ext := ".jpg"
	if u, err := url.Parse(rawURL); err == nil {
		if e := strings.ToLower(path.Ext(u.Path)); e != "" {
			ext = e
		}
	}
	return fmt.Sprintf("img-%016x%s", xxhash.Sum64String(rawURL), ext)
}

package goquery_test

import (
	"testing"

	gensigoquery "github.com/claudehenchoz/gensi/goquery"
	"github.com/stretchr/testify/assert"
)

func TestExtractThumbnails(t *testing.T) {
	t.Parallel()

	t.Run("meta tags come before body images", func(t *testing.T) {
		t.Parallel()

		html := `<html><head>
			<meta property="og:image" content="/img/social.jpg">
		</head><body>
			<article><img src="/img/inline.png"></article>
		</body></html>`

		got := gensigoquery.ExtractThumbnails("https://example.com", html, 0)
		assert.Equal(t, []string{
			"https://example.com/img/social.jpg",
			"https://example.com/img/inline.png",
		}, got)
	})

	t.Run("JSON-LD images are collected", func(t *testing.T) {
		t.Parallel()

		html := `<html><head>
			<script type="application/ld+json">
				{"@type": "NewsArticle", "image": ["https://cdn.example/a.jpg", {"url": "https://cdn.example/b.jpg"}]}
			</script>
		</head><body></body></html>`

		got := gensigoquery.ExtractThumbnails("https://example.com", html, 0)
		assert.Equal(t, []string{
			"https://cdn.example/a.jpg",
			"https://cdn.example/b.jpg",
		}, got)
	})

	t.Run("duplicates collapse and cap applies", func(t *testing.T) {
		t.Parallel()

		html := `<html><head>
			<meta property="og:image" content="/same.jpg">
			<meta name="twitter:image" content="/same.jpg">
		</head><body>
			<img src="/one.jpg"><img src="/two.jpg"><img src="/three.jpg">
		</body></html>`

		got := gensigoquery.ExtractThumbnails("https://example.com", html, 3)
		assert.Equal(t, []string{
			"https://example.com/same.jpg",
			"https://example.com/one.jpg",
			"https://example.com/two.jpg",
		}, got)
	})

	t.Run("data URIs are skipped", func(t *testing.T) {
		t.Parallel()

		html := `<html><body><img src="data:image/png;base64,AAAA"><img src="/real.jpg"></body></html>`

		got := gensigoquery.ExtractThumbnails("https://example.com", html, 0)
		assert.Equal(t, []string{"https://example.com/real.jpg"}, got)
	})
}

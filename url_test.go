package gensi_test

import (
	"testing"

	"github.com/claudehenchoz/gensi"
	"github.com/stretchr/testify/assert"
)

func TestResolveURL(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "https://example.com/a", gensi.ResolveURL("https://example.com/news", "/a"))
	assert.Equal(t, "https://example.com/news/a", gensi.ResolveURL("https://example.com/news/", "a"))
	assert.Equal(t, "https://other.org/x", gensi.ResolveURL("https://example.com/", "https://other.org/x"))
	assert.Equal(t, "/a", gensi.ResolveURL("", "/a"))
}

func TestIsImageURL(t *testing.T) {
	t.Parallel()

	assert.True(t, gensi.IsImageURL("https://example.com/cover.jpg"))
	assert.True(t, gensi.IsImageURL("https://example.com/cover.PNG?v=2"))
	assert.False(t, gensi.IsImageURL("https://example.com/cover"))
	assert.False(t, gensi.IsImageURL("https://example.com/page.html"))
}

func TestURLExt(t *testing.T) {
	t.Parallel()

	assert.Equal(t, ".png", gensi.URLExt("https://example.com/a/cover.PNG?v=2"))
	assert.Equal(t, "", gensi.URLExt("https://example.com/cover"))
	assert.Equal(t, "", gensi.URLExt("https://example.com/a.b/cover"))
}

func TestMatchesDomain(t *testing.T) {
	t.Parallel()

	assert.True(t, gensi.MatchesDomain("example.com", "example.com"))
	assert.True(t, gensi.MatchesDomain("blog.example.com", "example.com"))
	assert.True(t, gensi.MatchesDomain("Blog.Example.COM", "example.com"))
	assert.False(t, gensi.MatchesDomain("notexample.com", "example.com"))
	assert.False(t, gensi.MatchesDomain("example.com.evil.org", "example.com"))
}

func TestHostOf(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "example.com", gensi.HostOf("https://example.com/a"))
	assert.Equal(t, "", gensi.HostOf("://bad"))
}

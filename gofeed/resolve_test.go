package gofeed_test

import (
	"testing"

	"github.com/claudehenchoz/gensi"
	gensigofeed "github.com/claudehenchoz/gensi/gofeed"
	"github.com/claudehenchoz/gensi/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const rssFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0" xmlns:content="http://purl.org/rss/1.0/modules/content/">
<channel>
	<title>Example Feed</title>
	<link>https://example.com</link>
	<item>
		<title>First</title>
		<link>https://example.com/first</link>
		<content:encoded><![CDATA[<p>Full first body</p>]]></content:encoded>
	</item>
	<item>
		<title>Second</title>
		<link>https://example.com/second</link>
	</item>
	<item>
		<title>Third</title>
		<link>https://example.com/third</link>
	</item>
</channel>
</rss>`

const atomFeed = `<?xml version="1.0" encoding="utf-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
	<title>Atom Example</title>
	<entry>
		<title>Entry</title>
		<link rel="alternate" href="https://example.com/entry"/>
		<id>urn:1</id>
	</entry>
</feed>`

func TestResolve(t *testing.T) {
	t.Parallel()

	t.Run("maps entries to references by link", func(t *testing.T) {
		t.Parallel()

		refs, err := gensigofeed.Resolve("https://example.com/feed.xml", rssFeed,
			&gensi.IndexSpec{Kind: gensi.IndexSyndication}, nil)
		require.NoError(t, err)
		require.Len(t, refs, 3)
		assert.Equal(t, "https://example.com/first", refs[0].URL)
		assert.Empty(t, refs[0].Content)
	})

	t.Run("limit caps entries in feed order", func(t *testing.T) {
		t.Parallel()

		refs, err := gensigofeed.Resolve("https://example.com/feed.xml", rssFeed,
			&gensi.IndexSpec{Kind: gensi.IndexSyndication, Limit: 2}, nil)
		require.NoError(t, err)
		require.Len(t, refs, 2)
		assert.Equal(t, "https://example.com/first", refs[0].URL)
		assert.Equal(t, "https://example.com/second", refs[1].URL)
	})

	t.Run("useFeedContent prefers embedded content", func(t *testing.T) {
		t.Parallel()

		refs, err := gensigofeed.Resolve("https://example.com/feed.xml", rssFeed,
			&gensi.IndexSpec{Kind: gensi.IndexSyndication, UseFeedContent: true}, nil)
		require.NoError(t, err)
		require.Len(t, refs, 3)
		assert.Equal(t, "<p>Full first body</p>", refs[0].Content)
		assert.Equal(t, "First", refs[0].Title)
		// Entries without embedded content still fetch normally.
		assert.Empty(t, refs[1].Content)
	})

	t.Run("atom feeds parse transparently", func(t *testing.T) {
		t.Parallel()

		refs, err := gensigofeed.Resolve("https://example.com/atom.xml", atomFeed,
			&gensi.IndexSpec{Kind: gensi.IndexSyndication}, nil)
		require.NoError(t, err)
		require.Len(t, refs, 1)
		assert.Equal(t, "https://example.com/entry", refs[0].URL)
	})

	t.Run("script receives the parsed feed and skips filtering", func(t *testing.T) {
		t.Parallel()

		var sawFeed bool
		runner := &mock.ScriptRunner{
			ExecuteFn: func(source string, bindings map[string]any) (any, error) {
				_, sawFeed = bindings["feed"]
				return []any{map[string]any{"url": "https://example.com/scripted"}}, nil
			},
		}

		refs, err := gensigofeed.Resolve("https://example.com/feed.xml", rssFeed,
			&gensi.IndexSpec{Kind: gensi.IndexSyndication, Script: "result = whatever", Limit: 1}, runner)
		require.NoError(t, err)
		assert.True(t, sawFeed)
		require.Len(t, refs, 1)
		assert.Equal(t, "https://example.com/scripted", refs[0].URL)
	})

	t.Run("unparseable document is an extraction error", func(t *testing.T) {
		t.Parallel()

		_, err := gensigofeed.Resolve("https://example.com/feed.xml", "{not xml}",
			&gensi.IndexSpec{Kind: gensi.IndexSyndication}, nil)
		require.Error(t, err)
		assert.Equal(t, gensi.EEXTRACT, gensi.ErrorCode(err))
	})
}

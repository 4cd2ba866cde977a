package resolve_test

import (
	"context"
	"testing"

	"github.com/claudehenchoz/gensi"
	gensigoquery "github.com/claudehenchoz/gensi/goquery"
	"github.com/claudehenchoz/gensi/mock"
	"github.com/claudehenchoz/gensi/resolve"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func staticFetcher(t *testing.T, body string) *mock.Fetcher {
	t.Helper()
	return &mock.Fetcher{
		FetchFn: func(ctx context.Context, url string, purpose gensi.Purpose) (string, string, error) {
			assert.Equal(t, gensi.PurposeIndex, purpose)
			return body, url, nil
		},
	}
}

func TestResolver_Markup(t *testing.T) {
	t.Parallel()

	const listing = `<html><body>
		<div class="story"><a href="/2024/one">One</a></div>
		<div class="story"><a href="/2024/two">Two</a></div>
	</body></html>`

	r := resolve.NewResolver(staticFetcher(t, listing), gensigoquery.NewEngine(nil), nil, nil)

	refs, err := r.Resolve(context.Background(), &gensi.IndexSpec{
		Kind: gensi.IndexMarkup, URL: "https://example.com/news",
		Items: "div.story", Link: "a",
	})
	require.NoError(t, err)
	require.Len(t, refs, 2)
	assert.Equal(t, "https://example.com/2024/one", refs[0].URL)
	assert.Equal(t, "https://example.com/2024/two", refs[1].URL)
}

func TestResolver_Structured(t *testing.T) {
	t.Parallel()

	t.Run("path pointing at a URL list", func(t *testing.T) {
		t.Parallel()

		const listing = `{"data":{"items":[{"url":"/a"},{"url":"/b"}]}}`
		r := resolve.NewResolver(staticFetcher(t, listing), gensigoquery.NewEngine(nil), nil, nil)

		refs, err := r.Resolve(context.Background(), &gensi.IndexSpec{
			Kind: gensi.IndexStructured, URL: "https://example.com/api/list",
			Path: "data.items.#.url",
		})
		require.NoError(t, err)
		require.Len(t, refs, 2)
		assert.Equal(t, "https://example.com/a", refs[0].URL)
		assert.Equal(t, "https://example.com/b", refs[1].URL)
	})

	t.Run("path narrowing to an embedded markup fragment", func(t *testing.T) {
		t.Parallel()

		const listing = `{"rendered":"<ul><li class=\"item\"><a href=\"/x\">X</a></li></ul>"}`
		r := resolve.NewResolver(staticFetcher(t, listing), gensigoquery.NewEngine(nil), nil, nil)

		refs, err := r.Resolve(context.Background(), &gensi.IndexSpec{
			Kind: gensi.IndexStructured, URL: "https://example.com/api/list",
			Path: "rendered", Items: "li.item", Link: "a",
		})
		require.NoError(t, err)
		require.Len(t, refs, 1)
		assert.Equal(t, "https://example.com/x", refs[0].URL)
	})

	t.Run("script receives the decoded payload", func(t *testing.T) {
		t.Parallel()

		runner := &mock.ScriptRunner{
			ExecuteFn: func(source string, bindings map[string]any) (any, error) {
				data, ok := bindings["data"].(map[string]any)
				require.True(t, ok)
				require.Contains(t, data, "posts")
				return []any{map[string]any{"url": "https://example.com/from-script"}}, nil
			},
		}
		r := resolve.NewResolver(staticFetcher(t, `{"posts":[]}`), gensigoquery.NewEngine(runner), runner, nil)

		refs, err := r.Resolve(context.Background(), &gensi.IndexSpec{
			Kind: gensi.IndexStructured, URL: "https://example.com/api/list",
			Script: "result = refs",
		})
		require.NoError(t, err)
		require.Len(t, refs, 1)
		assert.Equal(t, "https://example.com/from-script", refs[0].URL)
	})

	t.Run("invalid JSON is an extraction error", func(t *testing.T) {
		t.Parallel()

		r := resolve.NewResolver(staticFetcher(t, "<html>"), gensigoquery.NewEngine(nil), nil, nil)

		_, err := r.Resolve(context.Background(), &gensi.IndexSpec{
			Kind: gensi.IndexStructured, URL: "https://example.com/api/list",
			Path: "data.items",
		})
		require.Error(t, err)
		assert.Equal(t, gensi.EEXTRACT, gensi.ErrorCode(err))
	})
}

func TestResolver_Syndication(t *testing.T) {
	t.Parallel()

	const feed = `<?xml version="1.0"?><rss version="2.0"><channel>
		<title>Feed</title>
		<item><title>A</title><link>https://example.com/a</link></item>
	</channel></rss>`

	r := resolve.NewResolver(staticFetcher(t, feed), gensigoquery.NewEngine(nil), nil, nil)

	refs, err := r.Resolve(context.Background(), &gensi.IndexSpec{
		Kind: gensi.IndexSyndication, URL: "https://example.com/feed.xml",
	})
	require.NoError(t, err)
	require.Len(t, refs, 1)
	assert.Equal(t, "https://example.com/a", refs[0].URL)
}

type socialStub struct {
	refs []gensi.ArticleRef
}

func (s *socialStub) Resolve(ctx context.Context, spec *gensi.IndexSpec) ([]gensi.ArticleRef, error) {
	return s.refs, nil
}

func TestResolver_Social(t *testing.T) {
	t.Parallel()

	t.Run("delegates to the social resolver", func(t *testing.T) {
		t.Parallel()

		stub := &socialStub{refs: []gensi.ArticleRef{{URL: "https://example.com/social"}}}
		r := resolve.NewResolver(nil, gensigoquery.NewEngine(nil), nil, stub)

		refs, err := r.Resolve(context.Background(), &gensi.IndexSpec{
			Kind: gensi.IndexSocial, Handle: "writer.example.com", Limit: 10,
		})
		require.NoError(t, err)
		require.Len(t, refs, 1)
		assert.Equal(t, "https://example.com/social", refs[0].URL)
	})

	t.Run("missing social resolver is reported", func(t *testing.T) {
		t.Parallel()

		r := resolve.NewResolver(nil, gensigoquery.NewEngine(nil), nil, nil)
		_, err := r.Resolve(context.Background(), &gensi.IndexSpec{
			Kind: gensi.IndexSocial, Handle: "writer.example.com", Limit: 10,
		})
		require.Error(t, err)
		assert.Equal(t, gensi.ENOTIMPLEMENTED, gensi.ErrorCode(err))
	})
}

func TestResolver_Transform(t *testing.T) {
	t.Parallel()

	const listing = `<html><body>
		<div class="story"><a href="https://example.com/2024/my-article/">One</a></div>
		<div class="story"><a href="https://example.com/about">About</a></div>
	</body></html>`

	t.Run("pattern rewrites matching URLs and leaves others alone", func(t *testing.T) {
		t.Parallel()

		r := resolve.NewResolver(staticFetcher(t, listing), gensigoquery.NewEngine(nil), nil, nil)

		refs, err := r.Resolve(context.Background(), &gensi.IndexSpec{
			Kind: gensi.IndexMarkup, URL: "https://example.com/news",
			Items: "div.story", Link: "a",
			Transform: &gensi.URLTransform{
				Pattern:  `/(\d+)/([a-z-]+)/`,
				Template: "https://example.com/print?id={1}&slug={2}",
			},
		})
		require.NoError(t, err)
		require.Len(t, refs, 2)
		assert.Equal(t, "https://example.com/print?id=2024&slug=my-article", refs[0].URL)
		assert.Equal(t, "https://example.com/about", refs[1].URL)
	})

	t.Run("script transform receives each URL", func(t *testing.T) {
		t.Parallel()

		runner := &mock.ScriptRunner{
			ExecuteFn: func(source string, bindings map[string]any) (any, error) {
				return bindings["url"].(string) + "?print=1", nil
			},
		}
		r := resolve.NewResolver(staticFetcher(t, listing), gensigoquery.NewEngine(runner), runner, nil)

		refs, err := r.Resolve(context.Background(), &gensi.IndexSpec{
			Kind: gensi.IndexMarkup, URL: "https://example.com/news",
			Items: "div.story", Link: "a",
			Transform: &gensi.URLTransform{Script: "result = url + '?print=1'"},
		})
		require.NoError(t, err)
		require.Len(t, refs, 2)
		assert.Equal(t, "https://example.com/2024/my-article/?print=1", refs[0].URL)
	})

	t.Run("script transform returning a non-string fails", func(t *testing.T) {
		t.Parallel()

		runner := &mock.ScriptRunner{
			ExecuteFn: func(source string, bindings map[string]any) (any, error) {
				return 42, nil
			},
		}
		r := resolve.NewResolver(staticFetcher(t, listing), gensigoquery.NewEngine(runner), runner, nil)

		_, err := r.Resolve(context.Background(), &gensi.IndexSpec{
			Kind: gensi.IndexMarkup, URL: "https://example.com/news",
			Items: "div.story", Link: "a",
			Transform: &gensi.URLTransform{Script: "result = 42"},
		})
		require.Error(t, err)
		assert.Equal(t, gensi.EEXTRACT, gensi.ErrorCode(err))
	})
}

package yaml_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/claudehenchoz/gensi"
	gensiyaml "github.com/claudehenchoz/gensi/yaml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fullRecipe = `
title: Weekend Reads
author: The Editors
language: en
cover:
  url: https://example.com/cover.jpg
article:
  content: div.article-body
  remove:
    - aside
    - div.newsletter-signup
  title: h1.headline
indexes:
  - name: Front Page
    kind: markup
    url: https://example.com/
    items: div.teaser
    link: a.teaser-link
    transform:
      pattern: '/(\d+)/([a-z-]+)/'
      template: 'https://example.com/print?id={1}&slug={2}'
  - name: Feed
    kind: syndication
    url: https://example.com/feed.xml
    limit: 5
    useFeedContent: true
  - name: Links
    kind: social
    handle: editors.example.com
    domain: example.com
    limit: 25
replacements:
  - pattern: 'Advertisement'
    replacement: ''
`

func TestParseRecipe(t *testing.T) {
	t.Parallel()

	t.Run("full recipe", func(t *testing.T) {
		t.Parallel()

		recipe, err := gensiyaml.ParseRecipe([]byte(fullRecipe))
		require.NoError(t, err)

		assert.Equal(t, "Weekend Reads", recipe.Title)
		assert.Equal(t, "en", recipe.Language)
		require.NotNil(t, recipe.Cover)
		assert.Equal(t, "https://example.com/cover.jpg", recipe.Cover.URL)
		require.NotNil(t, recipe.Article)
		assert.Equal(t, "div.article-body", recipe.Article.Content)
		assert.Equal(t, []string{"aside", "div.newsletter-signup"}, recipe.Article.Remove)

		require.Len(t, recipe.Indexes, 3)
		assert.Equal(t, gensi.IndexMarkup, recipe.Indexes[0].Kind)
		require.NotNil(t, recipe.Indexes[0].Transform)
		assert.Equal(t, `/(\d+)/([a-z-]+)/`, recipe.Indexes[0].Transform.Pattern)
		assert.True(t, recipe.Indexes[1].UseFeedContent)
		assert.Equal(t, "editors.example.com", recipe.Indexes[2].Handle)
		require.Len(t, recipe.Replacements, 1)
	})

	t.Run("invalid yaml", func(t *testing.T) {
		t.Parallel()

		_, err := gensiyaml.ParseRecipe([]byte("title: [unclosed"))
		require.Error(t, err)
		assert.Equal(t, gensi.ECONFIG, gensi.ErrorCode(err))
	})

	t.Run("validation failures surface as config errors", func(t *testing.T) {
		t.Parallel()

		for name, doc := range map[string]string{
			"missing title":      "indexes:\n  - kind: markup\n    url: https://x\n    items: li\n    link: a\n",
			"no indexes":         "title: T\n",
			"markup needs items": "title: T\nindexes:\n  - kind: markup\n    url: https://x\n",
			"social limit range": "title: T\nindexes:\n  - kind: social\n    handle: h\n    limit: 500\n",
		} {
			t.Run(name, func(t *testing.T) {
				_, err := gensiyaml.ParseRecipe([]byte(doc))
				require.Error(t, err)
				assert.Equal(t, gensi.ECONFIG, gensi.ErrorCode(err))
			})
		}
	})
}

func TestParseRecipeFile(t *testing.T) {
	t.Parallel()

	t.Run("reads from disk", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "reads.gensi")
		require.NoError(t, os.WriteFile(path, []byte(fullRecipe), 0o644))

		recipe, err := gensiyaml.ParseRecipeFile(path)
		require.NoError(t, err)
		assert.Equal(t, "Weekend Reads", recipe.Title)
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()

		_, err := gensiyaml.ParseRecipeFile(filepath.Join(t.TempDir(), "nope.gensi"))
		require.Error(t, err)
		assert.Equal(t, gensi.ENOTFOUND, gensi.ErrorCode(err))
	})
}

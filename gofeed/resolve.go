// Package gofeed resolves syndication-feed indexes. The gofeed library
// detects and normalizes RSS and Atom transparently, so one resolver
// covers both.
package gofeed

import (
	"github.com/claudehenchoz/gensi"
	"github.com/mmcdole/gofeed"
)

// Resolve turns a fetched feed document into article references.
//
// With a script, the parsed feed is handed to the escape hatch as the
// "feed" binding and no further mapping or capping applies. Without one,
// each entry maps to a reference by its canonical link; when the spec
// requests it, an entry's embedded full-content field rides along as
// inline content (skipping the article fetch), and the list is capped to
// the spec's limit.
func Resolve(feedURL, content string, spec *gensi.IndexSpec, scripts gensi.ScriptRunner) ([]gensi.ArticleRef, error) {
	fp := gofeed.NewParser()
	feed, err := fp.ParseString(content)
	if err != nil {
		return nil, gensi.Errorf(gensi.EEXTRACT, "failed to parse feed: %v", err)
	}

	if spec.Script != "" {
		if scripts == nil {
			return nil, gensi.Errorf(gensi.ECONFIG, "recipe uses a script but no script runner is configured")
		}
		out, err := scripts.Execute(spec.Script, map[string]any{"feed": feed})
		if err != nil {
			return nil, err
		}
		return gensi.RefsFromScript(feedURL, out)
	}

	items := feed.Items
	if spec.Limit > 0 && len(items) > spec.Limit {
		items = items[:spec.Limit]
	}

	refs := make([]gensi.ArticleRef, 0, len(items))
	for _, item := range items {
		if item.Link == "" {
			continue
		}
		ref := gensi.ArticleRef{URL: gensi.ResolveURL(feedURL, item.Link)}

		if spec.UseFeedContent && item.Content != "" {
			ref.Content = item.Content
			ref.Title = item.Title
			ref.Author = itemAuthor(item)
			ref.Date = item.Published
		}

		refs = append(refs, ref)
	}
	return refs, nil
}

// itemAuthor prefers the entry author, then Dublin Core creators.
func itemAuthor(item *gofeed.Item) string {
	if item.Author != nil && item.Author.Name != "" {
		return item.Author.Name
	}
	for _, a := range item.Authors {
		if a.Name != "" {
			return a.Name
		}
	}
	if item.DublinCoreExt != nil && len(item.DublinCoreExt.Creator) > 0 {
		return item.DublinCoreExt.Creator[0]
	}
	return ""
}

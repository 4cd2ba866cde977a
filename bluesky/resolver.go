// Package bluesky resolves social indexes against the public Bluesky
// XRPC API. A social index walks an account's author feed and collects
// the external links shared as link cards, optionally restricted to a
// single domain.
package bluesky

import (
	"context"
	"fmt"
	"net/url"

	"github.com/claudehenchoz/gensi"
	gensigjson "github.com/claudehenchoz/gensi/gjson"
	"github.com/tidwall/gjson"
)

// DefaultEndpoint is the unauthenticated Bluesky AppView.
const DefaultEndpoint = "https://public.api.bsky.app"

// Resolver turns a social index spec into article references.
type Resolver struct {
	fetcher  gensi.Fetcher
	scripts  gensi.ScriptRunner
	endpoint string
}

// NewResolver returns a resolver backed by fetcher. Scripted indexes
// need a non-nil runner.
func NewResolver(fetcher gensi.Fetcher, scripts gensi.ScriptRunner, opts ...Option) *Resolver {
	r := &Resolver{
		fetcher:  fetcher,
		scripts:  scripts,
		endpoint: DefaultEndpoint,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithEndpoint overrides the XRPC endpoint, mainly for tests.
func WithEndpoint(endpoint string) Option {
	return func(r *Resolver) { r.endpoint = endpoint }
}

// Resolve fetches the author feed for spec.Handle and returns the
// shared links as references, deduplicated first-seen and capped at
// spec.Limit.
func (r *Resolver) Resolve(ctx context.Context, spec *gensi.IndexSpec) ([]gensi.ArticleRef, error) {
	feedURL := r.feedURL(spec)
	body, _, err := r.fetcher.Fetch(ctx, feedURL, gensi.PurposeIndex)
	if err != nil {
		return nil, err
	}

	if msg := gjson.Get(body, "error"); msg.Exists() {
		return nil, gensi.Errorf(gensi.EFETCH, "bluesky: %s: %s", msg.String(), gjson.Get(body, "message").String())
	}

	if spec.Script != "" {
		return r.resolveScript(body, spec)
	}

	seen := make(map[string]struct{})
	var refs []gensi.ArticleRef
	for _, post := range gjson.Get(body, "feed").Array() {
		uri := post.Get("post.embed.external.uri").String()
		if uri == "" {
			continue
		}
		if spec.Domain != "" && !gensi.MatchesDomain(gensi.HostOf(uri), spec.Domain) {
			continue
		}
		if _, ok := seen[uri]; ok {
			continue
		}
		seen[uri] = struct{}{}
		refs = append(refs, gensi.ArticleRef{URL: uri})
		if spec.Limit > 0 && len(refs) >= spec.Limit {
			break
		}
	}
	return refs, nil
}

func (r *Resolver) resolveScript(body string, spec *gensi.IndexSpec) ([]gensi.ArticleRef, error) {
	if r.scripts == nil {
		return nil, gensi.Errorf(gensi.ECONFIG, "index %q uses a script but no script runner is configured", spec.Name)
	}
	feed, err := gensigjson.Decode(body)
	if err != nil {
		return nil, err
	}
	out, err := r.scripts.Execute(spec.Script, map[string]any{"feed": feed})
	if err != nil {
		return nil, err
	}
	// The script owns selection entirely; Limit only sizes the upstream
	// request.
	return gensi.RefsFromScript("", out)
}

func (r *Resolver) feedURL(spec *gensi.IndexSpec) string {
	limit := spec.Limit
	if limit <= 0 {
		limit = 50
	}
	q := url.Values{}
	q.Set("actor", spec.Handle)
	q.Set("limit", fmt.Sprint(limit))
	q.Set("filter", "posts_no_replies")
	return r.endpoint + "/xrpc/app.bsky.feed.getAuthorFeed?" + q.Encode()
}

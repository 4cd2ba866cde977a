// Package resolve turns index specs into flat lists of article
// references. It dispatches on the index kind: markup listings go
// through the selector engine, structured listings through path
// expressions, syndication feeds through the feed parser, and social
// indexes through the social resolver.
package resolve

import (
	"context"

	"github.com/claudehenchoz/gensi"
	gensigjson "github.com/claudehenchoz/gensi/gjson"
	gensigofeed "github.com/claudehenchoz/gensi/gofeed"
	gensigoquery "github.com/claudehenchoz/gensi/goquery"
)

// SocialResolver resolves a social index against its upstream API.
type SocialResolver interface {
	Resolve(ctx context.Context, spec *gensi.IndexSpec) ([]gensi.ArticleRef, error)
}

// Resolver resolves indexes of every kind.
type Resolver struct {
	Fetcher gensi.Fetcher
	Engine  *gensigoquery.Engine
	Scripts gensi.ScriptRunner
	Social  SocialResolver
}

// NewResolver wires a resolver from its collaborators.
func NewResolver(fetcher gensi.Fetcher, engine *gensigoquery.Engine, scripts gensi.ScriptRunner, social SocialResolver) *Resolver {
	return &Resolver{Fetcher: fetcher, Engine: engine, Scripts: scripts, Social: social}
}

// Resolve returns the article references for one index, with the
// index's URL transform already applied. Index fetches always bypass
// the cache so re-runs pick up new articles.
func (r *Resolver) Resolve(ctx context.Context, spec *gensi.IndexSpec) ([]gensi.ArticleRef, error) {
	var (
		refs []gensi.ArticleRef
		err  error
	)
	switch spec.Kind {
	case gensi.IndexMarkup:
		refs, err = r.resolveMarkup(ctx, spec)
	case gensi.IndexStructured:
		refs, err = r.resolveStructured(ctx, spec)
	case gensi.IndexSyndication:
		refs, err = r.resolveSyndication(ctx, spec)
	case gensi.IndexSocial:
		if r.Social == nil {
			return nil, gensi.Errorf(gensi.ENOTIMPLEMENTED, "no social resolver configured")
		}
		refs, err = r.Social.Resolve(ctx, spec)
	default:
		return nil, gensi.Errorf(gensi.ECONFIG, "index %q: unknown kind %q", spec.Name, spec.Kind)
	}
	if err != nil {
		return nil, err
	}
	return r.applyTransform(refs, spec.Transform)
}

func (r *Resolver) resolveMarkup(ctx context.Context, spec *gensi.IndexSpec) ([]gensi.ArticleRef, error) {
	body, resolvedURL, err := r.Fetcher.Fetch(ctx, spec.URL, gensi.PurposeIndex)
	if err != nil {
		return nil, err
	}
	return r.Engine.ExtractIndexRefs(resolvedURL, body, spec)
}

// resolveStructured handles JSON listings. A script receives the decoded
// payload directly. Without a script, Path either yields a list of URL
// strings or narrows to an embedded markup fragment that the Items/Link
// selectors then walk.
func (r *Resolver) resolveStructured(ctx context.Context, spec *gensi.IndexSpec) ([]gensi.ArticleRef, error) {
	body, resolvedURL, err := r.Fetcher.Fetch(ctx, spec.URL, gensi.PurposeIndex)
	if err != nil {
		return nil, err
	}

	if spec.Script != "" {
		if r.Scripts == nil {
			return nil, gensi.Errorf(gensi.ECONFIG, "index %q uses a script but no script runner is configured", spec.Name)
		}
		data, err := gensigjson.Decode(body)
		if err != nil {
			return nil, err
		}
		out, err := r.Scripts.Execute(spec.Script, map[string]any{
			"data": data,
			"url":  resolvedURL,
		})
		if err != nil {
			return nil, err
		}
		return gensi.RefsFromScript(resolvedURL, out)
	}

	if spec.Path != "" && spec.Items == "" {
		urls, err := gensigjson.ExtractList(body, spec.Path)
		if err != nil {
			return nil, err
		}
		refs := make([]gensi.ArticleRef, 0, len(urls))
		for _, u := range urls {
			refs = append(refs, gensi.ArticleRef{URL: gensi.ResolveURL(resolvedURL, u)})
		}
		return refs, nil
	}

	fragment := body
	if spec.Path != "" {
		fragment, err = gensigjson.Extract(body, spec.Path)
		if err != nil {
			return nil, err
		}
	}
	return r.Engine.ExtractIndexRefs(resolvedURL, fragment, spec)
}

func (r *Resolver) resolveSyndication(ctx context.Context, spec *gensi.IndexSpec) ([]gensi.ArticleRef, error) {
	body, resolvedURL, err := r.Fetcher.Fetch(ctx, spec.URL, gensi.PurposeIndex)
	if err != nil {
		return nil, err
	}
	return gensigofeed.Resolve(resolvedURL, body, spec, r.Scripts)
}

// applyTransform rewrites every reference URL through the index's
// transform. Pattern mode leaves unmatched URLs alone; script mode must
// return a string.
func (r *Resolver) applyTransform(refs []gensi.ArticleRef, transform *gensi.URLTransform) ([]gensi.ArticleRef, error) {
	if transform == nil {
		return refs, nil
	}
	for i := range refs {
		if transform.Script != "" {
			if r.Scripts == nil {
				return nil, gensi.Errorf(gensi.ECONFIG, "url transform uses a script but no script runner is configured")
			}
			out, err := r.Scripts.Execute(transform.Script, map[string]any{"url": refs[i].URL})
			if err != nil {
				return nil, err
			}
			s, ok := out.(string)
			if !ok {
				return nil, gensi.Errorf(gensi.EEXTRACT, "url transform script must return a string, got %T", out)
			}
			refs[i].URL = s
			continue
		}
		rewritten, err := transform.Apply(refs[i].URL)
		if err != nil {
			return nil, err
		}
		refs[i].URL = rewritten
	}
	return refs, nil
}

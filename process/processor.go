// Package process drives an end-to-end run: resolve the cover, resolve
// every index, fetch and extract each article under a bounded worker
// pool, then hand the assembled sections to the packaging collaborator.
package process

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"

	"github.com/claudehenchoz/gensi"
	gensibluemonday "github.com/claudehenchoz/gensi/bluemonday"
	gensigjson "github.com/claudehenchoz/gensi/gjson"
	gensigoquery "github.com/claudehenchoz/gensi/goquery"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency bounds the article fan-out when the caller does not
// set a width.
const DefaultConcurrency = 5

// IndexResolver resolves one index spec into article references.
type IndexResolver interface {
	Resolve(ctx context.Context, spec *gensi.IndexSpec) ([]gensi.ArticleRef, error)
}

// Processor runs a recipe end to end.
type Processor struct {
	Fetcher   gensi.Fetcher
	Resolver  IndexResolver
	Engine    *gensigoquery.Engine
	Scripts   gensi.ScriptRunner
	Builder   gensi.Builder
	Covers    gensi.CoverGenerator
	Sanitizer *gensibluemonday.Sanitizer

	// Concurrency bounds the number of articles in flight at once.
	Concurrency int

	Logger *slog.Logger
}

// task pairs one reference with the index it came from. Position is the
// reference's slot in the run-wide flat order.
type task struct {
	position int
	group    int
	ref      gensi.ArticleRef
	spec     *gensi.IndexSpec
}

// taskResult carries one processed article back to the collector.
type taskResult struct {
	position  int
	record    *gensi.ArticleRecord
	thumbnail string
}

// Run executes the recipe and writes the packaged document to outPath.
// A cover failure or a single article failure degrades the result;
// a failed index aborts the run, since its section could never be
// populated.
func (p *Processor) Run(ctx context.Context, recipe *gensi.Recipe, outPath string, progress gensi.ProgressFunc) error {
	report := func(ev gensi.Progress) {
		if progress != nil {
			progress(ev)
		}
	}
	fail := func(stage gensi.Stage, err error) error {
		report(gensi.Progress{Stage: gensi.StageError, Message: fmt.Sprintf("%s: %s", stage, gensi.ErrorMessage(err))})
		return err
	}

	cover, coverExt := p.resolveCover(ctx, recipe.Cover, report)

	// Resolve every index sequentially so group order is preserved and
	// the total article count is known before any article work starts.
	var tasks []task
	for i := range recipe.Indexes {
		ix := &recipe.Indexes[i]
		report(gensi.Progress{Stage: gensi.StageIndex, Current: i + 1, Total: len(recipe.Indexes), Message: ix.Name})
		refs, err := p.Resolver.Resolve(ctx, ix)
		if err != nil {
			return fail(gensi.StageIndex, err)
		}
		for _, ref := range refs {
			tasks = append(tasks, task{position: len(tasks), group: i, ref: ref, spec: ix})
		}
	}

	results := p.processArticles(ctx, recipe, tasks, report)

	sections := make([]*gensi.Section, len(recipe.Indexes))
	for i := range recipe.Indexes {
		sections[i] = &gensi.Section{Name: recipe.Indexes[i].Name}
	}
	var thumbnails []string
	seenThumbs := make(map[string]bool)
	for i, res := range results {
		sections[tasks[i].group].Articles = append(sections[tasks[i].group].Articles, res.record)
		if res.thumbnail != "" && !seenThumbs[res.thumbnail] {
			seenThumbs[res.thumbnail] = true
			thumbnails = append(thumbnails, res.thumbnail)
		}
	}

	if cover == nil && p.Covers != nil {
		report(gensi.Progress{Stage: gensi.StageCover, Message: "generating cover"})
		generated, ext, err := p.Covers.Generate(ctx, recipe.Title, recipe.Author, thumbnails)
		if err != nil {
			p.logger().Warn("cover generation failed, continuing without cover", "error", err)
		} else {
			cover, coverExt = generated, ext
		}
	}

	report(gensi.Progress{Stage: gensi.StageBuilding, Message: outPath})
	in := &gensi.BuildInput{
		Title:    recipe.Title,
		Author:   recipe.Author,
		Language: recipe.Language,
		Sections: sections,
		Cover:    cover,
		CoverExt: coverExt,
	}
	if err := p.Builder.Build(ctx, in, outPath); err != nil {
		return fail(gensi.StageBuilding, err)
	}

	report(gensi.Progress{Stage: gensi.StageDone})
	return nil
}

// processArticles fans the tasks out through a bounded pool and gathers
// the results back into discovery order. Workers never return errors:
// a failed article becomes a placeholder record so siblings in flight
// are unaffected.
func (p *Processor) processArticles(ctx context.Context, recipe *gensi.Recipe, tasks []task, report gensi.ProgressFunc) []taskResult {
	concurrency := p.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	resultCh := make(chan taskResult, len(tasks))
	var completed atomic.Int64
	total := len(tasks)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	go func() {
		for _, tk := range tasks {
			tk := tk
			g.Go(func() error {
				resultCh <- p.processArticle(gctx, recipe, tk)
				return nil
			})
		}
		_ = g.Wait()
		close(resultCh)
	}()

	results := make([]taskResult, len(tasks))
	for res := range resultCh {
		results[res.position] = res
		report(gensi.Progress{
			Stage:   gensi.StageArticle,
			Current: int(completed.Add(1)),
			Total:   total,
			Message: res.record.URL,
		})
	}
	return results
}

// processArticle fetches and extracts one article. Every failure path
// degrades to a placeholder record referencing the URL.
func (p *Processor) processArticle(ctx context.Context, recipe *gensi.Recipe, tk task) taskResult {
	spec := recipe.ArticleSpecFor(tk.spec)

	record, thumbnail, err := p.extractRecord(ctx, spec, tk.ref)
	if err != nil {
		p.logger().Warn("article failed", "url", tk.ref.URL, "error", err)
		return taskResult{position: tk.position, record: p.failedRecord(tk, err)}
	}

	record.ID = uuid.NewString()
	record.GroupName = tk.spec.Name
	record.Content = gensi.ApplyReplacements(record.Content, recipe.Replacements)
	return taskResult{position: tk.position, record: record, thumbnail: thumbnail}
}

func (p *Processor) extractRecord(ctx context.Context, spec *gensi.ArticleSpec, ref gensi.ArticleRef) (*gensi.ArticleRecord, string, error) {
	var record *gensi.ArticleRecord
	var thumbnail string
	baseURL := ref.URL

	// Pre-extracted content from the resolver skips the network.
	if ref.Content != "" {
		record = &gensi.ArticleRecord{
			URL:     ref.URL,
			Title:   ref.Title,
			Author:  ref.Author,
			Date:    ref.Date,
			Content: ref.Content,
		}
	} else {
		body, resolvedURL, err := p.Fetcher.Fetch(ctx, ref.URL, gensi.PurposeArticle)
		if err != nil {
			return nil, "", err
		}
		baseURL = resolvedURL

		var result *gensi.ExtractResult
		if spec != nil && spec.Kind == gensi.KindStructured {
			result, err = p.extractStructured(body, resolvedURL, spec)
		} else {
			result, err = p.Engine.ExtractArticle(resolvedURL, body, markupSpec(spec))
			if thumbs := gensigoquery.ExtractThumbnails(resolvedURL, body, 1); len(thumbs) > 0 {
				thumbnail = thumbs[0]
			}
		}
		if err != nil {
			return nil, "", err
		}

		record = &gensi.ArticleRecord{
			URL:     ref.URL,
			Title:   result.Title,
			Author:  result.Author,
			Date:    result.Date,
			Content: result.Content,
		}
	}
	if p.Sanitizer != nil {
		clean := p.Sanitizer.Sanitize(record.Content)
		if strings.TrimSpace(clean) == "" {
			clean = fmt.Sprintf("<p>Content could not be sanitized from %s</p>", ref.URL)
		}
		record.Content = clean
	}
	if spec.ImagesEnabled() {
		record.Content, record.Images = gensigoquery.EmbedImages(baseURL, record.Content, func(imageURL string) ([]byte, bool) {
			payload, _, err := p.Fetcher.FetchBinary(ctx, imageURL, gensi.PurposeImage)
			if err != nil {
				p.logger().Debug("image download failed", "url", imageURL, "error", err)
				return nil, false
			}
			return payload, true
		})
	}
	return record, thumbnail, nil
}

// extractStructured handles structured article bodies: a script sees the
// decoded payload, a paths map extracts content plus metadata in one
// pass, a single path yields content alone.
func (p *Processor) extractStructured(body, resolvedURL string, spec *gensi.ArticleSpec) (*gensi.ExtractResult, error) {
	if spec.Script != "" {
		if p.Scripts == nil {
			return nil, gensi.Errorf(gensi.ECONFIG, "article uses a script but no script runner is configured")
		}
		data, err := gensigjson.Decode(body)
		if err != nil {
			return nil, err
		}
		out, err := p.Scripts.Execute(spec.Script, map[string]any{
			"data": data,
			"url":  resolvedURL,
		})
		if err != nil {
			return nil, err
		}
		return resultFromScript(out)
	}

	if spec.Paths != nil {
		fields, err := gensigjson.ExtractFields(body, spec.Paths)
		if err != nil {
			return nil, err
		}
		return &gensi.ExtractResult{
			Content: fields["content"],
			Title:   fields["title"],
			Author:  fields["author"],
			Date:    fields["date"],
		}, nil
	}

	content, err := gensigjson.Extract(body, spec.Path)
	if err != nil {
		return nil, err
	}
	return &gensi.ExtractResult{Content: content}, nil
}

// resultFromScript coerces a structured-article script's output: a bare
// string is content, an object must carry at least a content string.
func resultFromScript(out any) (*gensi.ExtractResult, error) {
	switch v := out.(type) {
	case string:
		return &gensi.ExtractResult{Content: v}, nil
	case map[string]any:
		content, ok := v["content"].(string)
		if !ok || content == "" {
			return nil, gensi.Errorf(gensi.EEXTRACT, "article script object must carry a content string")
		}
		result := &gensi.ExtractResult{Content: content}
		result.Title, _ = v["title"].(string)
		result.Author, _ = v["author"].(string)
		result.Date, _ = v["date"].(string)
		return result, nil
	default:
		return nil, gensi.Errorf(gensi.EEXTRACT, "article script must return a string or an object, got %T", out)
	}
}

// markupSpec supplies the whole-document fallback for articles with no
// configured spec: keep the body element and rely on the metadata chain.
func markupSpec(spec *gensi.ArticleSpec) *gensi.ArticleSpec {
	if spec != nil {
		return spec
	}
	return &gensi.ArticleSpec{Content: "body"}
}

func (p *Processor) failedRecord(tk task, err error) *gensi.ArticleRecord {
	return &gensi.ArticleRecord{
		ID:        uuid.NewString(),
		GroupName: tk.spec.Name,
		URL:       tk.ref.URL,
		Title:     tk.ref.URL,
		Content: fmt.Sprintf(`<p>This article could not be retrieved: <a href="%s">%s</a></p><p>%s</p>`,
			tk.ref.URL, tk.ref.URL, gensi.ErrorMessage(err)),
		Failed: true,
	}
}

// resolveCover resolves an explicit cover spec. Failures log and return
// nil; the run proceeds and may still derive a cover from thumbnails.
func (p *Processor) resolveCover(ctx context.Context, spec *gensi.CoverSpec, report gensi.ProgressFunc) ([]byte, string) {
	if spec == nil {
		return nil, ""
	}
	report(gensi.Progress{Stage: gensi.StageCover, Message: spec.URL})

	imageURL := spec.URL
	if !gensi.IsImageURL(spec.URL) || spec.Selector != "" || spec.Script != "" {
		body, resolvedURL, err := p.Fetcher.Fetch(ctx, spec.URL, gensi.PurposeCover)
		if err != nil {
			p.logger().Warn("cover page fetch failed, continuing without cover", "url", spec.URL, "error", err)
			return nil, ""
		}
		imageURL, err = p.Engine.ExtractCoverURL(resolvedURL, body, spec)
		if err != nil || imageURL == "" {
			p.logger().Warn("cover image not found, continuing without cover", "url", spec.URL, "error", err)
			return nil, ""
		}
	}

	payload, _, err := p.Fetcher.FetchBinary(ctx, imageURL, gensi.PurposeCover)
	if err != nil {
		p.logger().Warn("cover download failed, continuing without cover", "url", imageURL, "error", err)
		return nil, ""
	}
	return payload, coverExt(imageURL)
}

func coverExt(imageURL string) string {
	if ext := gensi.URLExt(imageURL); ext != "" {
		return ext
	}
	return ".jpg"
}

func (p *Processor) logger() *slog.Logger {
	if p.Logger != nil {
		return p.Logger
	}
	return slog.Default()
}

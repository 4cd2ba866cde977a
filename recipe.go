package gensi

// IndexKind identifies which resolver strategy applies to an index.
type IndexKind string

// Index kinds.
const (
	IndexMarkup      IndexKind = "markup"      // HTML listing page, selector-driven
	IndexStructured  IndexKind = "structured"  // JSON listing, path- or selector-driven
	IndexSyndication IndexKind = "syndication" // RSS/Atom feed
	IndexSocial      IndexKind = "social"      // social author feed with link cards
)

// ContentKind identifies how fetched article content should be parsed
// before extraction.
type ContentKind string

// Content kinds.
const (
	KindMarkup     ContentKind = "markup"
	KindStructured ContentKind = "structured"
)

// Recipe is the parsed form of a .gensi recipe file. It is parsed once at
// run start and is immutable thereafter.
type Recipe struct {
	Title        string        `json:"title" yaml:"title"`
	Author       string        `json:"author" yaml:"author"`
	Language     string        `json:"language" yaml:"language"`
	Cover        *CoverSpec    `json:"cover,omitempty" yaml:"cover,omitempty"`
	Article      *ArticleSpec  `json:"article,omitempty" yaml:"article,omitempty"`
	Indexes      []IndexSpec   `json:"indexes" yaml:"indexes"`
	Replacements []Replacement `json:"replacements,omitempty" yaml:"replacements,omitempty"`
}

// Validate returns an error if the recipe is missing required fields or
// carries an invalid index configuration. Validation happens once, before
// the pipeline runs; components downstream assume a validated recipe.
func (r *Recipe) Validate() error {
	if r.Title == "" {
		return Errorf(ECONFIG, "recipe title required")
	}
	if len(r.Indexes) == 0 {
		return Errorf(ECONFIG, "at least one index required")
	}
	for i := range r.Indexes {
		if err := r.Indexes[i].Validate(); err != nil {
			return err
		}
	}
	if r.Cover != nil && r.Cover.URL == "" {
		return Errorf(ECONFIG, "cover URL required")
	}
	if r.Article != nil {
		if err := r.Article.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// ArticleSpecFor returns the article spec for an index: the per-index
// override if present, otherwise the recipe-wide spec. May return nil.
func (r *Recipe) ArticleSpecFor(ix *IndexSpec) *ArticleSpec {
	if ix != nil && ix.Article != nil {
		return ix.Article
	}
	return r.Article
}

// IndexSpec describes one source listing. Kind determines which resolver
// strategy applies and which fields are required.
type IndexSpec struct {
	// Name labels the section this index populates in the final document.
	// Optional; an empty name produces an unnamed section.
	Name string `json:"name" yaml:"name"`

	URL  string    `json:"url" yaml:"url"`
	Kind IndexKind `json:"kind" yaml:"kind"`

	// Items and Link locate article anchors on a markup listing:
	// Items selects the repeated container elements, Link selects the
	// anchor inside each. Required for markup kind unless Script is set.
	Items string `json:"items,omitempty" yaml:"items,omitempty"`
	Link  string `json:"link,omitempty" yaml:"link,omitempty"`

	// Path narrows structured listing data, either to a list of URL
	// strings or to an embedded markup fragment that Items/Link then
	// operate on.
	Path string `json:"path,omitempty" yaml:"path,omitempty"`

	// Limit caps syndication and social results. For social indexes the
	// value doubles as the upstream request size and must be in [1,100].
	Limit int `json:"limit,omitempty" yaml:"limit,omitempty"`

	// UseFeedContent prefers an entry's embedded full-content field over
	// fetching its link (syndication kind).
	UseFeedContent bool `json:"useFeedContent,omitempty" yaml:"useFeedContent,omitempty"`

	// Handle identifies the social feed author.
	Handle string `json:"handle,omitempty" yaml:"handle,omitempty"`

	// Domain restricts social results to links on this host or any of
	// its subdomains.
	Domain string `json:"domain,omitempty" yaml:"domain,omitempty"`

	// Article overrides the recipe-wide article spec for this index.
	Article *ArticleSpec `json:"article,omitempty" yaml:"article,omitempty"`

	// Transform rewrites every extracted article URL.
	Transform *URLTransform `json:"transform,omitempty" yaml:"transform,omitempty"`

	// Script is the escape hatch: it replaces selector/path extraction
	// for this index entirely.
	Script string `json:"script,omitempty" yaml:"script,omitempty"`
}

// Validate returns an error if the index spec is incomplete for its kind.
func (ix *IndexSpec) Validate() error {
	if ix.URL == "" && ix.Kind != IndexSocial {
		return Errorf(ECONFIG, "index %q: URL required", ix.Name)
	}
	switch ix.Kind {
	case IndexMarkup:
		if ix.Script == "" && (ix.Items == "" || ix.Link == "") {
			return Errorf(ECONFIG, "index %q: items and link selectors required for markup kind", ix.Name)
		}
	case IndexStructured:
		if ix.Script == "" && ix.Path == "" && (ix.Items == "" || ix.Link == "") {
			return Errorf(ECONFIG, "index %q: path or items/link selectors required for structured kind", ix.Name)
		}
	case IndexSyndication:
		// No extra requirements; the feed itself carries the links.
	case IndexSocial:
		if ix.Handle == "" {
			return Errorf(ECONFIG, "index %q: handle required for social kind", ix.Name)
		}
		if ix.Limit < 1 || ix.Limit > 100 {
			return Errorf(ECONFIG, "index %q: limit must be between 1 and 100", ix.Name)
		}
	default:
		return Errorf(ECONFIG, "index %q: unknown kind %q", ix.Name, ix.Kind)
	}
	if ix.Transform != nil {
		if err := ix.Transform.Validate(); err != nil {
			return err
		}
	}
	if ix.Article != nil {
		return ix.Article.Validate()
	}
	return nil
}

// ArticleSpec describes how to extract one article's content and metadata.
type ArticleSpec struct {
	// Kind selects how the fetched body is parsed. Defaults to markup.
	Kind ContentKind `json:"kind,omitempty" yaml:"kind,omitempty"`

	// Content locates the node tree to keep. Required in selector mode.
	Content string `json:"content,omitempty" yaml:"content,omitempty"`

	// Remove lists selectors whose subtrees are stripped from the
	// extracted content, in order.
	Remove []string `json:"remove,omitempty" yaml:"remove,omitempty"`

	// Title, Author and Date selectors run against the full document.
	// Missing selectors fall back to well-known metadata locations.
	Title  string `json:"title,omitempty" yaml:"title,omitempty"`
	Author string `json:"author,omitempty" yaml:"author,omitempty"`
	Date   string `json:"date,omitempty" yaml:"date,omitempty"`

	// Path extracts markup content from structured data in one step.
	Path string `json:"path,omitempty" yaml:"path,omitempty"`

	// Paths extracts content plus metadata from structured data in one
	// pass. Must contain a "content" key.
	Paths map[string]string `json:"paths,omitempty" yaml:"paths,omitempty"`

	// Images controls whether inline images are downloaded and embedded.
	// Nil means enabled.
	Images *bool `json:"images,omitempty" yaml:"images,omitempty"`

	// Script replaces selector/path extraction entirely.
	Script string `json:"script,omitempty" yaml:"script,omitempty"`
}

// Validate returns an error if the article spec has no usable strategy.
func (a *ArticleSpec) Validate() error {
	if a.Script != "" {
		return nil
	}
	// Path expressions only run against structured bodies; catching the
	// mismatch here beats a dead extraction on every article.
	if (a.Path != "" || a.Paths != nil) && a.Kind != KindStructured {
		return Errorf(ECONFIG, "article path extraction requires kind: structured")
	}
	if a.Paths != nil {
		if _, ok := a.Paths["content"]; !ok {
			return Errorf(ECONFIG, "article paths must include a content path")
		}
		return nil
	}
	if a.Path != "" {
		return nil
	}
	if a.Content == "" {
		return Errorf(ECONFIG, "article content selector required")
	}
	return nil
}

// ImagesEnabled reports whether inline images should be processed.
func (a *ArticleSpec) ImagesEnabled() bool {
	return a == nil || a.Images == nil || *a.Images
}

// CoverSpec describes where the cover image comes from: a direct image
// URL, a page plus an img selector, or a script returning an image URL.
type CoverSpec struct {
	URL      string `json:"url" yaml:"url"`
	Selector string `json:"selector,omitempty" yaml:"selector,omitempty"`
	Script   string `json:"script,omitempty" yaml:"script,omitempty"`
}

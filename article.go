package gensi

// ArticleRef points at one article discovered by an index resolver.
// Refs are immutable once produced and consumed exactly once by the
// orchestrator's fetch pass.
type ArticleRef struct {
	URL string `json:"url"`

	// Content, when non-empty, is pre-extracted markup handed over by the
	// resolver; the fetch pass skips the network for this article.
	Content string `json:"content,omitempty"`

	// Title, Author and Date carry metadata the resolver already knows
	// (feed entries, script output). Used only alongside Content.
	Title  string `json:"title,omitempty"`
	Author string `json:"author,omitempty"`
	Date   string `json:"date,omitempty"`
}

// RefsFromScript coerces an index script's result into article
// references. Scripts yield a list of objects each carrying at least a
// url, optionally content and metadata; URLs are resolved against
// baseURL. Any other shape is a hard error.
func RefsFromScript(baseURL string, out any) ([]ArticleRef, error) {
	list, ok := out.([]any)
	if !ok {
		return nil, Errorf(EEXTRACT, "index script must return a list, got %T", out)
	}

	refs := make([]ArticleRef, 0, len(list))
	for _, item := range list {
		m, ok := item.(map[string]any)
		if !ok {
			return nil, Errorf(EEXTRACT, "index script list entries must be objects with a url")
		}
		rawURL, ok := m["url"].(string)
		if !ok || rawURL == "" {
			return nil, Errorf(EEXTRACT, "index script list entries must be objects with a url")
		}
		ref := ArticleRef{URL: ResolveURL(baseURL, rawURL)}
		ref.Content, _ = m["content"].(string)
		ref.Title, _ = m["title"].(string)
		ref.Author, _ = m["author"].(string)
		ref.Date, _ = m["date"].(string)
		refs = append(refs, ref)
	}
	return refs, nil
}

// ExtractResult holds the outcome of extracting one unit of content.
// Empty fields are valid terminal states: extraction that finds nothing
// reports emptiness rather than failing, unless a required selector was
// configured and absent.
type ExtractResult struct {
	Content string `json:"content"`
	Title   string `json:"title"`
	Author  string `json:"author"`
	Date    string `json:"date"`
}

// ArticleRecord is the normalized, final form of one article as handed to
// the packaging collaborator.
type ArticleRecord struct {
	ID        string `json:"id"`
	GroupName string `json:"groupName,omitempty"`
	URL       string `json:"url"`
	Title     string `json:"title"`
	Author    string `json:"author"`
	Date      string `json:"date"`
	Content   string `json:"content"`

	// Images maps inline asset filenames to their bytes.
	Images map[string][]byte `json:"-"`

	// Failed marks a degraded record produced from an unrecoverable
	// per-article error; Content then holds placeholder markup
	// referencing the URL.
	Failed bool `json:"failed,omitempty"`
}

// Validate returns an error if the record is unfit for packaging.
func (a *ArticleRecord) Validate() error {
	if a.URL == "" {
		return Errorf(EINVALID, "article record URL required")
	}
	if a.Content == "" {
		return Errorf(EINVALID, "article record content required")
	}
	return nil
}

// Section groups the article records produced by one index, in the order
// their references were discovered.
type Section struct {
	Name     string           `json:"name,omitempty"`
	Articles []*ArticleRecord `json:"articles"`
}

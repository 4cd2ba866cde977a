package gensi

import "context"

// BuildInput is everything the packaging collaborator needs to assemble
// the final document.
type BuildInput struct {
	Title    string
	Author   string
	Language string

	// Sections hold the article records grouped by index, in declaration
	// order.
	Sections []*Section

	// Cover is the cover image payload, nil when no cover was resolved.
	// CoverExt is its format extension (".jpg", ".png", ...).
	Cover    []byte
	CoverExt string
}

// Builder assembles normalized article records into a packaged document.
type Builder interface {
	Build(ctx context.Context, in *BuildInput, outPath string) error
}

// CoverGenerator derives a cover image from candidate thumbnails collected
// incidentally during the article pass. The candidate list is already
// de-duplicated and order-preserving. Implementations may fall back to a
// text-only cover when no candidates are usable; a returned error means
// the run proceeds without a cover.
type CoverGenerator interface {
	Generate(ctx context.Context, title, author string, thumbnails []string) (cover []byte, ext string, err error)
}

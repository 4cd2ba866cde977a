// Package gensi converts heterogeneous remote content sources (HTML pages,
// JSON APIs, RSS/Atom feeds, a social-feed API) into a normalized sequence
// of article records, driven by a declarative per-source recipe, and hands
// the results to a packaging collaborator that assembles them into an EPUB.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., sqlite/, goquery/, gofeed/), with
// orchestration in process/ and the CLI in cmd/gensi.
package gensi

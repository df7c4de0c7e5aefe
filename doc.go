// Package sightline answers point queries over compiled-unit symbol spans:
// given a cursor position, what symbol is here, what is its type, where is
// it documented, and where is it defined. It is the introspection core of
// a language tooling server; the compiler front end that produces spans
// and types, and the reader of on-disk export tables, are external
// collaborators.
//
// # Inputs
//
// A compilation unit arrives as [SpansInfo]: ordered value spans
// (expression-level occurrences) and constraint spans (typeclass
// constraints used to annotate types). Each [SpanInfo] carries a half-open
// [Range], a closed-sum [SpanSource], an optional [TypeExpr], and raw
// documentation text. Inputs are immutable for the lifetime of a query and
// are never persisted here.
//
// # Queries
//
//	pos := sightline.Position{Line: 2, Col: 5}
//	hover := sightline.HoverSynopsis(pos, spans, opts)
//	loc := sightline.GoToDefinition(ctx, pos, spans.Values, fetch)
//	locs := sightline.GoToTypeDefinition(ctx, pos, spans.Values, fetch)
//
// [HoverSynopsis] formats the best enclosing value span into fenced
// display lines, demoting compiler-synthesized occurrences and annotating
// types with applicable constraints. [GoToDefinition] returns the first
// resolvable definition location under the cursor; [GoToTypeDefinition]
// resolves the head type constructor of every candidate.
//
// # Definition resolution
//
// [ResolveDefinition] uses an identity's recorded location when it is
// usable. Wired-in builtins never resolve. External-package identities
// fall back to the owning module's export table, obtained through an
// injected [ExportFetcher] capability; [DBFetcher] supplies one backed by
// the SQLite side index in internal/exportdb. Resolution fails soft: a
// candidate that cannot be resolved yields nothing and never aborts its
// siblings.
//
// # Positions
//
// All lines and columns are 0-based. Span ranges are half-open: a cursor
// exactly on a span's end column is outside the span.
package sightline

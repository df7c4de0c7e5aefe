package sightline

import "context"

// ExportEntry pairs an exported name with its recorded definition location.
type ExportEntry struct {
	Name   string
	Module ModuleRef
	Loc    Location
}

func (e ExportEntry) identity() Identity {
	mod := e.Module
	return Identity{Name: e.Name, Module: &mod}
}

// ExportTable is one module's export side index: the interface file it was
// read from plus the entries it declares.
type ExportTable struct {
	File    string
	Entries []ExportEntry
}

// ExportFetcher loads the export table for a module. It is a capability
// supplied by the host, may block, and honors ctx cancellation. Returning
// (nil, nil) means the module has no table.
type ExportFetcher func(ctx context.Context, mod ModuleRef) (*ExportTable, error)

// ResolveDefinition produces the definition location for an identity. A
// usable recorded location is returned directly with no fetch; wired-in
// builtins never resolve. Otherwise the owning module's export table is
// consulted and the matching entry's location is rewritten to the table's
// interface file, since the entry's compile-time path may not exist on
// this machine.
//
// Every failure along the way (no module, fetch error or cancellation, no
// matching entry) degrades to nil rather than an error: callers get fewer
// results, never a failed query.
func ResolveDefinition(ctx context.Context, id Identity, fetch ExportFetcher) *Location {
	switch def := id.Def.(type) {
	case KnownDefinition:
		loc := def.Loc
		return &loc
	case BuiltinDefinition:
		return nil
	}
	if id.Module == nil || fetch == nil {
		return nil
	}
	table, err := fetch(ctx, *id.Module)
	if err != nil || table == nil {
		return nil
	}
	for _, entry := range table.Entries {
		if id.SameDeclaration(entry.identity()) {
			loc := entry.Loc
			loc.File = table.File
			return &loc
		}
	}
	return nil
}

// GoToDefinition resolves the definition of the occurrence under pos:
// the first enclosing span that yields a location wins. Spans carrying a
// raw location yield it directly, named spans go through
// ResolveDefinition, literals and sourceless spans yield nothing.
func GoToDefinition(ctx context.Context, pos Position, spans []SpanInfo, fetch ExportFetcher) *Location {
	fetch = memoFetcher(fetch)
	for _, s := range SpansEnclosing(pos, spans) {
		if loc := spanDefinition(ctx, s, fetch); loc != nil {
			return loc
		}
	}
	return nil
}

func spanDefinition(ctx context.Context, s SpanInfo, fetch ExportFetcher) *Location {
	switch src := s.Source.(type) {
	case LocationSource:
		loc := src.Loc
		return &loc
	case NamedSource:
		return ResolveDefinition(ctx, src.Name, fetch)
	case LiteralSource, NoSource:
		return nil
	default:
		return nil
	}
}

// GoToTypeDefinition resolves, for every span enclosing pos, the
// definition of the head type constructor of the span's type: List in
// List<Int>. Spans without a type or whose type is not a constructor
// application contribute nothing. All resolved locations are returned in
// candidate order; one candidate failing never aborts its siblings.
func GoToTypeDefinition(ctx context.Context, pos Position, spans []SpanInfo, fetch ExportFetcher) []Location {
	fetch = memoFetcher(fetch)
	var out []Location
	for _, s := range SpansEnclosing(pos, spans) {
		con, ok := HeadCon(s.Type)
		if !ok {
			continue
		}
		if loc := ResolveDefinition(ctx, con, fetch); loc != nil {
			out = append(out, *loc)
		}
	}
	return out
}

// memoFetcher wraps fetch so repeated lookups of one module within a
// single query reuse the first outcome, failures included. An optimization
// only: the table is immutable for the life of a query, so correctness
// never depends on it.
func memoFetcher(fetch ExportFetcher) ExportFetcher {
	if fetch == nil {
		return nil
	}
	type outcome struct {
		table *ExportTable
		err   error
	}
	memo := make(map[ModuleRef]outcome)
	return func(ctx context.Context, mod ModuleRef) (*ExportTable, error) {
		if o, ok := memo[mod]; ok {
			return o.table, o.err
		}
		table, err := fetch(ctx, mod)
		memo[mod] = outcome{table, err}
		return table, err
	}
}

package sightline

// SpanSource says what a span occurrence refers to. The variant set is
// fixed by the producing compiler and must never grow silently; every
// consumer switches exhaustively over it.
type SpanSource interface {
	isSpanSource()
}

// NamedSource ties a span to a declared symbol.
type NamedSource struct {
	Name Identity
}

// LiteralSource is a literal occurrence carrying its display text.
type LiteralSource struct {
	Text string
}

// LocationSource carries a raw location and no symbol identity.
type LocationSource struct {
	Loc Location
}

// NoSource marks a span with no usable identity.
type NoSource struct{}

func (NamedSource) isSpanSource()    {}
func (LiteralSource) isSpanSource()  {}
func (LocationSource) isSpanSource() {}
func (NoSource) isSpanSource()       {}

// SpanInfo is one symbol occurrence: a range plus whatever identity, type,
// and documentation the compiler resolved for it. Inputs are immutable for
// the lifetime of a query.
type SpanInfo struct {
	Range  Range
	Source SpanSource
	Type   TypeExpr // nil for type-level/class occurrences
	Docs   string   // raw documentation text, "" if none
}

// SpansInfo is the per-compilation-unit input to hover queries: value
// (expression-level) occurrences, and the typeclass-constraint occurrences
// used to annotate value types with their constraints.
type SpansInfo struct {
	Values      []SpanInfo
	Constraints []SpanInfo
}

// SpansEnclosing filters spans to those whose range contains pos,
// preserving input order. The containment rule is half-open: span starts
// are inclusive, span ends exclusive.
func SpansEnclosing(pos Position, spans []SpanInfo) []SpanInfo {
	var out []SpanInfo
	for _, s := range spans {
		if s.Range.Contains(pos) {
			out = append(out, s)
		}
	}
	return out
}

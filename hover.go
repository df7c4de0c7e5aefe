package sightline

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// RenderOptions configures hover formatting.
type RenderOptions struct {
	// SyntaxTag labels the code fence around the primary line.
	SyntaxTag string

	// NewColonConvention selects ": " type annotations instead of ":: ".
	NewColonConvention bool

	// RenderDocs converts raw documentation text to display text. When nil
	// the text passes through unchanged.
	RenderDocs func(string) string
}

// Hover is a formatted synopsis of the occurrence under the cursor.
type Hover struct {
	Range *Range   // range of the primary matched span
	Lines []string // display lines, fenced and annotated
}

const (
	literalDisplayMax   = 50
	literalTruncateKeep = 46

	// Shown when a named span carries a zero identity. That breaks the
	// producer contract; one malformed span must not sink the synopsis.
	unknownSymbol = "<unknown symbol>"
)

// HoverSynopsis formats the best value span enclosing pos into display
// lines. Compiler-synthesized occurrences (derived equality and show
// instances) are demoted so a user-written occurrence wins the primary
// slot. Returns nil when no value span encloses pos.
func HoverSynopsis(pos Position, info SpansInfo, opts RenderOptions) *Hover {
	candidates := demoteSynthetic(SpansEnclosing(pos, info.Values))
	if len(candidates) == 0 {
		return nil
	}
	primary := candidates[0]

	var lines []string
	if primary.Type == nil {
		lines = classLines(primary, opts)
	} else {
		constraints := relevantConstraints(pos, info.Constraints, primary.Type)
		lines = valueLines(primary, constraints, opts)
	}

	lines = dropEmpty(lines)
	rng := primary.Range
	return &Hover{Range: &rng, Lines: lines}
}

// demoteSynthetic moves synthesized spans behind user-written ones. Stable
// bucket partition: relative order within each bucket is preserved.
func demoteSynthetic(spans []SpanInfo) []SpanInfo {
	var kept, demoted []SpanInfo
	for _, s := range spans {
		if isSyntheticName(s) {
			demoted = append(demoted, s)
		} else {
			kept = append(kept, s)
		}
	}
	return append(kept, demoted...)
}

// isSyntheticName spots auto-derived equality/show occurrences by substring
// on the unqualified name. Best-effort: a user name containing "==" is
// demoted too, which only costs it the primary slot.
func isSyntheticName(s SpanInfo) bool {
	named, ok := s.Source.(NamedSource)
	if !ok {
		return false
	}
	return strings.Contains(named.Name.Name, "==") ||
		strings.Contains(named.Name.Name, "showsPrec")
}

// classLines renders a type-level/class occurrence: fenced name, defined
// note, documentation.
func classLines(primary SpanInfo, opts RenderOptions) []string {
	name := unknownSymbol
	note := ""
	if named, ok := primary.Source.(NamedSource); ok && !named.Name.IsZero() {
		name = named.Name.Name
		note = definedNote(named.Name)
	}
	return []string{
		codeFence(opts.SyntaxTag, name),
		note,
		renderDocs(primary.Docs, opts),
	}
}

// valueLines renders an expression-level occurrence: fenced name-plus-type,
// defined note, documentation.
func valueLines(primary SpanInfo, constraints []TypeExpr, opts RenderOptions) []string {
	annotation := typeAnnotation(primary.Type, constraints, opts)

	var body, note string
	switch src := primary.Source.(type) {
	case NamedSource:
		body = src.Name.QualifiedName() + "\n" + annotation
		note = definedNote(src.Name)
	case LiteralSource:
		body = truncateLiteral(src.Text) + "\n" + annotation
	case LocationSource, NoSource:
		body = annotation
	default:
		body = annotation
	}
	return []string{
		codeFence(opts.SyntaxTag, body),
		note,
		renderDocs(primary.Docs, opts),
	}
}

// relevantConstraints returns the types of constraint spans that enclose
// pos and share at least one free type variable with the primary type.
// Disjoint constraints are excluded even when positionally enclosing.
func relevantConstraints(pos Position, constraints []SpanInfo, primary TypeExpr) []TypeExpr {
	primaryVars := FreeVars(primary)
	var out []TypeExpr
	for _, c := range SpansEnclosing(pos, constraints) {
		if c.Type == nil {
			continue
		}
		if intersects(FreeVars(c.Type), primaryVars) {
			out = append(out, c.Type)
		}
	}
	return out
}

// typeAnnotation builds the ":: T" (or ": T") line, threading applicable
// constraints in on a "=>" continuation line.
func typeAnnotation(t TypeExpr, constraints []TypeExpr, opts RenderOptions) string {
	colon := ":: "
	if opts.NewColonConvention {
		colon = ": "
	}
	switch len(constraints) {
	case 0:
		return colon + t.Render()
	case 1:
		return colon + constraints[0].Render() + "\n=> " + t.Render()
	default:
		rendered := make([]string, len(constraints))
		for i, c := range constraints {
			rendered[i] = c.Render()
		}
		return colon + "(" + strings.Join(rendered, ", ") + ")\n=> " + t.Render()
	}
}

// definedNote renders the "*Defined ...*" footnote for an identity.
// Returns "" for a zero identity.
func definedNote(id Identity) string {
	if id.IsZero() {
		return ""
	}
	var where string
	switch def := id.Def.(type) {
	case KnownDefinition:
		// 1-based for human eyes; everything internal stays 0-based.
		where = fmt.Sprintf("at %s:%d:%d",
			def.Loc.File, def.Loc.Range.Start.Line+1, def.Loc.Range.Start.Col+1)
	case BuiltinDefinition:
		where = "in the compiler"
	case UnknownDefinition:
		switch {
		case id.Module != nil:
			where = "in " + id.Module.String()
		case def.Reason != "":
			where = def.Reason
		default:
			where = "at an unknown location"
		}
	default:
		where = "at an unknown location"
	}
	return "*Defined " + where + "*\n"
}

// truncateLiteral caps literal display text at 50 characters, marking the
// cut with " ...". Counts runes, not bytes, so multibyte text is never
// split mid-sequence.
func truncateLiteral(text string) string {
	if utf8.RuneCountInString(text) <= literalDisplayMax {
		return text
	}
	return string([]rune(text)[:literalTruncateKeep]) + " ..."
}

func codeFence(tag, body string) string {
	return "```" + tag + "\n" + body + "\n```\n"
}

func renderDocs(docs string, opts RenderOptions) string {
	if docs == "" || opts.RenderDocs == nil {
		return docs
	}
	return opts.RenderDocs(docs)
}

func intersects(a, b map[string]bool) bool {
	for v := range a {
		if b[v] {
			return true
		}
	}
	return false
}

func dropEmpty(lines []string) []string {
	out := lines[:0:0]
	for _, l := range lines {
		if l != "" {
			out = append(out, l)
		}
	}
	return out
}

package sightline

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func typedSpan(line, startCol, endCol int, source SpanSource, typ TypeExpr) SpanInfo {
	s := span(line, startCol, endCol, source)
	s.Type = typ
	return s
}

func TestHoverSynopsis_ValueSpan(t *testing.T) {
	info := SpansInfo{
		Values: []SpanInfo{typedSpan(2, 4, 10, named("answer"), con("Int"))},
	}

	hover := HoverSynopsis(Position{Line: 2, Col: 5}, info, RenderOptions{})
	require.NotNil(t, hover)
	require.NotNil(t, hover.Range)
	assert.Equal(t, Range{Start: Position{Line: 2, Col: 4}, End: Position{Line: 2, Col: 10}}, *hover.Range)
	require.Len(t, hover.Lines, 1)
	assert.Equal(t, "```\nanswer\n:: Int\n```\n", hover.Lines[0])
}

func TestHoverSynopsis_EndExclusive(t *testing.T) {
	info := SpansInfo{
		Values: []SpanInfo{typedSpan(2, 4, 10, named("answer"), con("Int"))},
	}

	assert.Nil(t, HoverSynopsis(Position{Line: 2, Col: 10}, info, RenderOptions{}))
}

func TestHoverSynopsis_Empty(t *testing.T) {
	assert.Nil(t, HoverSynopsis(Position{Line: 0, Col: 0}, SpansInfo{}, RenderOptions{}))
}

func TestHoverSynopsis_SyntaxTagAndColons(t *testing.T) {
	info := SpansInfo{
		Values: []SpanInfo{typedSpan(0, 0, 5, named("xs"), con("List", tvar("a")))},
	}

	hover := HoverSynopsis(Position{Line: 0, Col: 2}, info, RenderOptions{
		SyntaxTag:          "haskell",
		NewColonConvention: true,
	})
	require.NotNil(t, hover)
	assert.Equal(t, "```haskell\nxs\n: List<a>\n```\n", hover.Lines[0])
}

func TestHoverSynopsis_QualifiedName(t *testing.T) {
	mod := ModuleRef{Unit: "base", Name: "Data.List"}
	source := NamedSource{Name: Identity{Name: "map", Module: &mod}}
	info := SpansInfo{
		Values: []SpanInfo{typedSpan(0, 0, 3, source, con("Int"))},
	}

	hover := HoverSynopsis(Position{Line: 0, Col: 1}, info, RenderOptions{})
	require.NotNil(t, hover)
	assert.Contains(t, hover.Lines[0], "Data.List.map\n:: Int")
}

func TestHoverSynopsis_LiteralTruncation(t *testing.T) {
	long := strings.Repeat("x", 51)
	info := SpansInfo{
		Values: []SpanInfo{typedSpan(0, 0, 60, LiteralSource{Text: long}, con("Text"))},
	}

	hover := HoverSynopsis(Position{Line: 0, Col: 1}, info, RenderOptions{})
	require.NotNil(t, hover)
	assert.Contains(t, hover.Lines[0], strings.Repeat("x", 46)+" ...\n:: Text")
	assert.NotContains(t, hover.Lines[0], strings.Repeat("x", 47))
}

func TestTruncateLiteral(t *testing.T) {
	assert.Equal(t, "short", truncateLiteral("short"))

	exactly50 := strings.Repeat("y", 50)
	assert.Equal(t, exactly50, truncateLiteral(exactly50))

	over := strings.Repeat("y", 51)
	got := truncateLiteral(over)
	assert.Equal(t, strings.Repeat("y", 46)+" ...", got)
	assert.Len(t, got, 50)
}

func TestTruncateLiteral_CountsRunesNotBytes(t *testing.T) {
	// 30 characters but 60 bytes: under the display cap, so unchanged.
	multibyte := strings.Repeat("é", 30)
	assert.Equal(t, multibyte, truncateLiteral(multibyte))

	exactly50 := strings.Repeat("é", 50)
	assert.Equal(t, exactly50, truncateLiteral(exactly50))

	got := truncateLiteral(strings.Repeat("é", 51))
	assert.Equal(t, strings.Repeat("é", 46)+" ...", got)
	assert.True(t, utf8.ValidString(got), "the cut must fall on a rune boundary")
}

func TestHoverSynopsis_NoSourceShowsAnnotationOnly(t *testing.T) {
	info := SpansInfo{
		Values: []SpanInfo{typedSpan(0, 0, 5, NoSource{}, con("Int"))},
	}

	hover := HoverSynopsis(Position{Line: 0, Col: 1}, info, RenderOptions{})
	require.NotNil(t, hover)
	assert.Equal(t, "```\n:: Int\n```\n", hover.Lines[0])
}

func TestHoverSynopsis_ClassOccurrence(t *testing.T) {
	mod := ModuleRef{Unit: "base", Name: "Data.Eq"}
	source := NamedSource{Name: Identity{
		Name:   "Eq",
		Module: &mod,
		Def: KnownDefinition{Loc: Location{
			File:  "Data/Eq.mod",
			Range: Range{Start: Position{Line: 10, Col: 0}, End: Position{Line: 10, Col: 2}},
		}},
	}}
	s := span(3, 0, 2, source)
	s.Docs = "Equality comparison."
	info := SpansInfo{Values: []SpanInfo{s}}

	hover := HoverSynopsis(Position{Line: 3, Col: 1}, info, RenderOptions{})
	require.NotNil(t, hover)
	require.Len(t, hover.Lines, 3)
	assert.Equal(t, "```\nEq\n```\n", hover.Lines[0])
	assert.Equal(t, "*Defined at Data/Eq.mod:11:1*\n", hover.Lines[1])
	assert.Equal(t, "Equality comparison.", hover.Lines[2])
}

func TestHoverSynopsis_ZeroIdentityPlaceholder(t *testing.T) {
	// A named span with a zero identity breaks the producer contract; the
	// synopsis degrades to a placeholder instead of failing.
	info := SpansInfo{
		Values: []SpanInfo{span(0, 0, 5, NamedSource{})},
	}

	hover := HoverSynopsis(Position{Line: 0, Col: 1}, info, RenderOptions{})
	require.NotNil(t, hover)
	require.Len(t, hover.Lines, 1)
	assert.Equal(t, "```\n<unknown symbol>\n```\n", hover.Lines[0])
}

func TestHoverSynopsis_DemotesSynthetic(t *testing.T) {
	info := SpansInfo{
		Values: []SpanInfo{
			typedSpan(0, 0, 10, named("$c=="), con("Bool")),
			typedSpan(0, 0, 10, named("user"), con("Int")),
		},
	}

	hover := HoverSynopsis(Position{Line: 0, Col: 2}, info, RenderOptions{})
	require.NotNil(t, hover)
	assert.Contains(t, hover.Lines[0], "user", "derived equality must not win the primary slot")
}

func TestDemoteSynthetic_StablePartition(t *testing.T) {
	spans := []SpanInfo{
		span(0, 0, 1, named("showsPrec")),
		span(0, 0, 2, named("alpha")),
		span(0, 0, 3, named("a==b")),
		span(0, 0, 4, named("beta")),
	}

	got := demoteSynthetic(spans)
	require.Len(t, got, 4)
	assert.Equal(t, named("alpha"), got[0].Source)
	assert.Equal(t, named("beta"), got[1].Source)
	assert.Equal(t, named("showsPrec"), got[2].Source)
	assert.Equal(t, named("a==b"), got[3].Source)
}

func TestDemoteSynthetic_SubstringHeuristic(t *testing.T) {
	// Deliberately loose: a user method merely containing the substring is
	// demoted too.
	spans := []SpanInfo{
		span(0, 0, 1, named("showsPrecisely")),
		span(0, 0, 2, named("plain")),
	}

	got := demoteSynthetic(spans)
	assert.Equal(t, named("plain"), got[0].Source)
	assert.Equal(t, named("showsPrecisely"), got[1].Source)
}

func TestHoverSynopsis_SingleConstraint(t *testing.T) {
	info := SpansInfo{
		Values: []SpanInfo{
			typedSpan(1, 4, 6, named("eq"), TypeFunc{From: tvar("a"), To: con("Bool")}),
		},
		Constraints: []SpanInfo{
			typedSpan(1, 0, 40, NoSource{}, con("Eq", tvar("a"))),
		},
	}

	hover := HoverSynopsis(Position{Line: 1, Col: 5}, info, RenderOptions{})
	require.NotNil(t, hover)
	assert.Equal(t, "```\neq\n:: Eq<a>\n=> a -> Bool\n```\n", hover.Lines[0])
}

func TestHoverSynopsis_MultipleConstraints(t *testing.T) {
	info := SpansInfo{
		Values: []SpanInfo{
			typedSpan(1, 4, 6, named("f"), tvar("a")),
		},
		Constraints: []SpanInfo{
			typedSpan(1, 0, 40, NoSource{}, con("Eq", tvar("a"))),
			typedSpan(1, 0, 40, NoSource{}, con("Show", tvar("a"))),
		},
	}

	hover := HoverSynopsis(Position{Line: 1, Col: 5}, info, RenderOptions{})
	require.NotNil(t, hover)
	assert.Equal(t, "```\nf\n:: (Eq<a>, Show<a>)\n=> a\n```\n", hover.Lines[0])
}

func TestHoverSynopsis_DisjointConstraintExcluded(t *testing.T) {
	info := SpansInfo{
		Values: []SpanInfo{
			typedSpan(1, 4, 6, named("f"), tvar("a")),
		},
		Constraints: []SpanInfo{
			// Encloses the position but shares no type variables.
			typedSpan(1, 0, 40, NoSource{}, con("Eq", tvar("z"))),
		},
	}

	hover := HoverSynopsis(Position{Line: 1, Col: 5}, info, RenderOptions{})
	require.NotNil(t, hover)
	assert.Equal(t, "```\nf\n:: a\n```\n", hover.Lines[0])
}

func TestHoverSynopsis_ConstraintOutsidePositionExcluded(t *testing.T) {
	info := SpansInfo{
		Values: []SpanInfo{
			typedSpan(1, 4, 6, named("f"), tvar("a")),
		},
		Constraints: []SpanInfo{
			typedSpan(7, 0, 40, NoSource{}, con("Eq", tvar("a"))),
		},
	}

	hover := HoverSynopsis(Position{Line: 1, Col: 5}, info, RenderOptions{})
	require.NotNil(t, hover)
	assert.Equal(t, "```\nf\n:: a\n```\n", hover.Lines[0])
}

func TestHoverSynopsis_DocsRenderer(t *testing.T) {
	s := typedSpan(0, 0, 3, named("v"), con("Int"))
	s.Docs = "raw docs"
	info := SpansInfo{Values: []SpanInfo{s}}

	hover := HoverSynopsis(Position{Line: 0, Col: 1}, info, RenderOptions{
		RenderDocs: func(d string) string { return "rendered: " + d },
	})
	require.NotNil(t, hover)
	require.Len(t, hover.Lines, 3)
	assert.Equal(t, "rendered: raw docs", hover.Lines[2])
}

func TestDefinedNote(t *testing.T) {
	mod := ModuleRef{Unit: "base", Name: "Data.List"}

	known := Identity{Name: "map", Def: KnownDefinition{Loc: Location{
		File:  "src/List.mod",
		Range: Range{Start: Position{Line: 4, Col: 2}, End: Position{Line: 4, Col: 5}},
	}}}
	assert.Equal(t, "*Defined at src/List.mod:5:3*\n", definedNote(known))

	builtin := Identity{Name: "Int#", Def: BuiltinDefinition{}}
	assert.Equal(t, "*Defined in the compiler*\n", definedNote(builtin))

	external := Identity{Name: "map", Module: &mod, Def: UnknownDefinition{}}
	assert.Equal(t, "*Defined in base:Data.List*\n", definedNote(external))

	assert.Equal(t, "", definedNote(Identity{}), "zero identity yields no note")
}

package spanfile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jward/sightline"
)

const sampleSpans = `{
  "file": "src/Main.mod",
  "values": [
    {
      "start_line": 2, "start_col": 4, "end_line": 2, "end_col": 10,
      "source": {
        "kind": "name",
        "name": {
          "name": "answer",
          "module": {"unit": "mylib", "name": "Main"},
          "def": {
            "kind": "known",
            "loc": {"file": "src/Main.mod", "start_line": 2, "start_col": 4, "end_line": 2, "end_col": 10}
          }
        }
      },
      "type": {"kind": "con", "con": {"name": "Int", "def": {"kind": "builtin"}}},
      "docs": "The answer."
    },
    {
      "start_line": 3, "start_col": 0, "end_line": 3, "end_col": 7,
      "source": {"kind": "literal", "text": "\"hello\""},
      "type": {"kind": "con", "con": {"name": "Text"}}
    },
    {
      "start_line": 4, "start_col": 0, "end_line": 4, "end_col": 1,
      "source": {"kind": "name", "name": {"name": "f", "def": {"kind": "unknown", "reason": "external"}}},
      "type": {
        "kind": "fun",
        "from": {"kind": "var", "name": "a"},
        "to": {"kind": "con", "con": {"name": "List"}, "args": [{"kind": "var", "name": "a"}]}
      }
    }
  ],
  "constraints": [
    {
      "start_line": 4, "start_col": 0, "end_line": 4, "end_col": 30,
      "source": {"kind": "none"},
      "type": {"kind": "con", "con": {"name": "Eq"}, "args": [{"kind": "var", "name": "a"}]}
    }
  ]
}`

func TestParseSpans(t *testing.T) {
	unit, err := ParseSpans([]byte(sampleSpans))
	require.NoError(t, err)
	assert.Equal(t, "src/Main.mod", unit.File)
	require.Len(t, unit.Spans.Values, 3)
	require.Len(t, unit.Spans.Constraints, 1)

	answer := unit.Spans.Values[0]
	assert.Equal(t, sightline.Range{
		Start: sightline.Position{Line: 2, Col: 4},
		End:   sightline.Position{Line: 2, Col: 10},
	}, answer.Range)
	named, ok := answer.Source.(sightline.NamedSource)
	require.True(t, ok)
	assert.Equal(t, "answer", named.Name.Name)
	require.NotNil(t, named.Name.Module)
	assert.Equal(t, "mylib", named.Name.Module.Unit)
	known, ok := named.Name.Def.(sightline.KnownDefinition)
	require.True(t, ok)
	assert.Equal(t, "src/Main.mod", known.Loc.File)
	assert.Equal(t, "The answer.", answer.Docs)

	lit, ok := unit.Spans.Values[1].Source.(sightline.LiteralSource)
	require.True(t, ok)
	assert.Equal(t, `"hello"`, lit.Text)

	fn, ok := unit.Spans.Values[2].Type.(sightline.TypeFunc)
	require.True(t, ok)
	assert.Equal(t, "a -> List<a>", fn.Render())

	_, ok = unit.Spans.Constraints[0].Source.(sightline.NoSource)
	assert.True(t, ok)
}

func TestParseSpans_MissingSourceMeansNoSource(t *testing.T) {
	unit, err := ParseSpans([]byte(`{"file": "f", "values": [
		{"start_line": 0, "start_col": 0, "end_line": 0, "end_col": 1}
	]}`))
	require.NoError(t, err)
	require.Len(t, unit.Spans.Values, 1)
	_, ok := unit.Spans.Values[0].Source.(sightline.NoSource)
	assert.True(t, ok)
	assert.Nil(t, unit.Spans.Values[0].Type)
}

func TestParseSpans_RejectsUnknownTags(t *testing.T) {
	cases := []struct {
		name string
		data string
		want string
	}{
		{
			"source kind",
			`{"values": [{"source": {"kind": "mystery"}}]}`,
			`unknown source kind "mystery"`,
		},
		{
			"type kind",
			`{"values": [{"type": {"kind": "tuple"}}]}`,
			`unknown type kind "tuple"`,
		},
		{
			"hint kind",
			`{"values": [{"source": {"kind": "name", "name": {"name": "x", "def": {"kind": "guessed"}}}}]}`,
			`unknown definition hint kind "guessed"`,
		},
		{
			"location source without loc",
			`{"values": [{"source": {"kind": "location"}}]}`,
			"location source without loc",
		},
		{
			"function type missing arms",
			`{"values": [{"type": {"kind": "fun"}}]}`,
			"function type missing from/to",
		},
	}
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseSpans([]byte(tt.data))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestEncodeSpansRoundTrip(t *testing.T) {
	unit, err := ParseSpans([]byte(sampleSpans))
	require.NoError(t, err)

	data, err := EncodeSpans(unit)
	require.NoError(t, err)

	again, err := ParseSpans(data)
	require.NoError(t, err)
	assert.Equal(t, unit, again)
}

func TestLoadSpans(t *testing.T) {
	path := filepath.Join(t.TempDir(), "main.spans.json")
	require.NoError(t, os.WriteFile(path, []byte(sampleSpans), 0o644))

	unit, err := LoadSpans(path)
	require.NoError(t, err)
	assert.Equal(t, "src/Main.mod", unit.File)

	_, err = LoadSpans(filepath.Join(t.TempDir(), "absent.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading")
}

func TestLoadExports(t *testing.T) {
	path := filepath.Join(t.TempDir(), "list.exports.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"module": {"unit": "base", "name": "Data.List"},
		"interface_path": "/dist/Data.List.iface",
		"entries": [
			{"name": "map", "loc": {"file": "/build/List.mod", "start_line": 4, "start_col": 2, "end_line": 4, "end_col": 5}},
			{"name": "filter", "loc": {"file": "/build/List.mod", "start_line": 9, "start_col": 0, "end_line": 9, "end_col": 6}}
		]
	}`), 0o644))

	exp, err := LoadExports(path)
	require.NoError(t, err)
	assert.Equal(t, sightline.ModuleRef{Unit: "base", Name: "Data.List"}, exp.Module)
	assert.Equal(t, "/dist/Data.List.iface", exp.InterfacePath)
	require.Len(t, exp.Entries, 2)
	assert.Equal(t, "map", exp.Entries[0].Name)
	assert.Equal(t, exp.Module, exp.Entries[0].Module, "entries inherit the dump's module")
	assert.Equal(t, sightline.Position{Line: 4, Col: 2}, exp.Entries[0].Loc.Range.Start)
}

// Package spanfile reads and writes the JSON interchange format for
// compiled-unit span dumps and export dumps. The compiler collaborator
// emits these files per compilation unit; the CLI loads them as query
// inputs. Span sources, type expressions, and definition hints are tagged
// unions; an unrecognized tag is an error, never a silent skip, because
// the variant sets are closed.
package spanfile

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/jward/sightline"
)

// Unit is one compilation unit's span dump.
type Unit struct {
	File  string
	Spans sightline.SpansInfo
}

// Exports is one module's export dump, ready for loading into the side
// index.
type Exports struct {
	Module        sightline.ModuleRef
	InterfacePath string
	Entries       []sightline.ExportEntry
}

// --- Wire structs ---

type unitJSON struct {
	File        string     `json:"file"`
	Values      []spanJSON `json:"values"`
	Constraints []spanJSON `json:"constraints,omitempty"`
}

type spanJSON struct {
	StartLine int         `json:"start_line"`
	StartCol  int         `json:"start_col"`
	EndLine   int         `json:"end_line"`
	EndCol    int         `json:"end_col"`
	Source    *sourceJSON `json:"source,omitempty"`
	Type      *typeJSON   `json:"type,omitempty"`
	Docs      string      `json:"docs,omitempty"`
}

type sourceJSON struct {
	Kind string        `json:"kind"` // name | literal | location | none
	Name *identityJSON `json:"name,omitempty"`
	Text string        `json:"text,omitempty"`
	Loc  *locJSON      `json:"loc,omitempty"`
}

type identityJSON struct {
	Name   string      `json:"name"`
	Module *moduleJSON `json:"module,omitempty"`
	Def    *hintJSON   `json:"def,omitempty"`
}

type moduleJSON struct {
	Unit string `json:"unit,omitempty"`
	Name string `json:"name"`
}

type hintJSON struct {
	Kind   string   `json:"kind"` // known | builtin | unknown
	Loc    *locJSON `json:"loc,omitempty"`
	Reason string   `json:"reason,omitempty"`
}

type locJSON struct {
	File      string `json:"file"`
	StartLine int    `json:"start_line"`
	StartCol  int    `json:"start_col"`
	EndLine   int    `json:"end_line"`
	EndCol    int    `json:"end_col"`
}

type typeJSON struct {
	Kind string        `json:"kind"` // var | con | fun
	Name string        `json:"name,omitempty"`
	Con  *identityJSON `json:"con,omitempty"`
	Args []typeJSON    `json:"args,omitempty"`
	From *typeJSON     `json:"from,omitempty"`
	To   *typeJSON     `json:"to,omitempty"`
}

type exportsJSON struct {
	Module        moduleJSON        `json:"module"`
	InterfacePath string            `json:"interface_path"`
	Entries       []exportEntryJSON `json:"entries"`
}

type exportEntryJSON struct {
	Name string  `json:"name"`
	Loc  locJSON `json:"loc"`
}

// --- Decoding ---

// LoadSpans reads a span dump from disk.
func LoadSpans(path string) (*Unit, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("spanfile: reading %s: %w", path, err)
	}
	u, err := ParseSpans(data)
	if err != nil {
		return nil, fmt.Errorf("spanfile: %s: %w", path, err)
	}
	return u, nil
}

// ParseSpans decodes a span dump from raw JSON.
func ParseSpans(data []byte) (*Unit, error) {
	var raw unitJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode span dump: %w", err)
	}
	values, err := decodeSpans(raw.Values)
	if err != nil {
		return nil, fmt.Errorf("values: %w", err)
	}
	constraints, err := decodeSpans(raw.Constraints)
	if err != nil {
		return nil, fmt.Errorf("constraints: %w", err)
	}
	return &Unit{
		File:  raw.File,
		Spans: sightline.SpansInfo{Values: values, Constraints: constraints},
	}, nil
}

// LoadExports reads a module export dump from disk.
func LoadExports(path string) (*Exports, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("spanfile: reading %s: %w", path, err)
	}
	var raw exportsJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("spanfile: %s: decode export dump: %w", path, err)
	}

	mod := sightline.ModuleRef{Unit: raw.Module.Unit, Name: raw.Module.Name}
	out := &Exports{Module: mod, InterfacePath: raw.InterfacePath}
	for _, e := range raw.Entries {
		out.Entries = append(out.Entries, sightline.ExportEntry{
			Name:   e.Name,
			Module: mod,
			Loc:    decodeLoc(e.Loc),
		})
	}
	return out, nil
}

func decodeSpans(raw []spanJSON) ([]sightline.SpanInfo, error) {
	var out []sightline.SpanInfo
	for i, s := range raw {
		span, err := decodeSpan(s)
		if err != nil {
			return nil, fmt.Errorf("span %d: %w", i, err)
		}
		out = append(out, span)
	}
	return out, nil
}

func decodeSpan(raw spanJSON) (sightline.SpanInfo, error) {
	source, err := decodeSource(raw.Source)
	if err != nil {
		return sightline.SpanInfo{}, err
	}
	typ, err := decodeType(raw.Type)
	if err != nil {
		return sightline.SpanInfo{}, err
	}
	return sightline.SpanInfo{
		Range: sightline.Range{
			Start: sightline.Position{Line: raw.StartLine, Col: raw.StartCol},
			End:   sightline.Position{Line: raw.EndLine, Col: raw.EndCol},
		},
		Source: source,
		Type:   typ,
		Docs:   raw.Docs,
	}, nil
}

func decodeSource(raw *sourceJSON) (sightline.SpanSource, error) {
	if raw == nil {
		return sightline.NoSource{}, nil
	}
	switch raw.Kind {
	case "name":
		id, err := decodeIdentity(raw.Name)
		if err != nil {
			return nil, err
		}
		return sightline.NamedSource{Name: id}, nil
	case "literal":
		return sightline.LiteralSource{Text: raw.Text}, nil
	case "location":
		if raw.Loc == nil {
			return nil, fmt.Errorf("location source without loc")
		}
		return sightline.LocationSource{Loc: decodeLoc(*raw.Loc)}, nil
	case "none":
		return sightline.NoSource{}, nil
	default:
		return nil, fmt.Errorf("unknown source kind %q", raw.Kind)
	}
}

func decodeIdentity(raw *identityJSON) (sightline.Identity, error) {
	if raw == nil {
		return sightline.Identity{}, nil
	}
	id := sightline.Identity{Name: raw.Name}
	if raw.Module != nil {
		id.Module = &sightline.ModuleRef{Unit: raw.Module.Unit, Name: raw.Module.Name}
	}
	if raw.Def != nil {
		switch raw.Def.Kind {
		case "known":
			if raw.Def.Loc == nil {
				return sightline.Identity{}, fmt.Errorf("known definition without loc")
			}
			id.Def = sightline.KnownDefinition{Loc: decodeLoc(*raw.Def.Loc)}
		case "builtin":
			id.Def = sightline.BuiltinDefinition{}
		case "unknown":
			id.Def = sightline.UnknownDefinition{Reason: raw.Def.Reason}
		default:
			return sightline.Identity{}, fmt.Errorf("unknown definition hint kind %q", raw.Def.Kind)
		}
	}
	return id, nil
}

func decodeType(raw *typeJSON) (sightline.TypeExpr, error) {
	if raw == nil {
		return nil, nil
	}
	switch raw.Kind {
	case "var":
		return sightline.TypeVar{Name: raw.Name}, nil
	case "con":
		con, err := decodeIdentity(raw.Con)
		if err != nil {
			return nil, err
		}
		var args []sightline.TypeExpr
		for i := range raw.Args {
			arg, err := decodeType(&raw.Args[i])
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
		}
		return sightline.TypeCon{Con: con, Args: args}, nil
	case "fun":
		if raw.From == nil || raw.To == nil {
			return nil, fmt.Errorf("function type missing from/to")
		}
		from, err := decodeType(raw.From)
		if err != nil {
			return nil, err
		}
		to, err := decodeType(raw.To)
		if err != nil {
			return nil, err
		}
		return sightline.TypeFunc{From: from, To: to}, nil
	default:
		return nil, fmt.Errorf("unknown type kind %q", raw.Kind)
	}
}

func decodeLoc(raw locJSON) sightline.Location {
	return sightline.Location{
		File: raw.File,
		Range: sightline.Range{
			Start: sightline.Position{Line: raw.StartLine, Col: raw.StartCol},
			End:   sightline.Position{Line: raw.EndLine, Col: raw.EndCol},
		},
	}
}

// --- Encoding ---

// EncodeSpans serializes a unit back to the dump format. Used by the
// syntactic front end to emit spans other tools can consume.
func EncodeSpans(u *Unit) ([]byte, error) {
	raw := unitJSON{File: u.File}
	var err error
	if raw.Values, err = encodeSpans(u.Spans.Values); err != nil {
		return nil, fmt.Errorf("spanfile: values: %w", err)
	}
	if raw.Constraints, err = encodeSpans(u.Spans.Constraints); err != nil {
		return nil, fmt.Errorf("spanfile: constraints: %w", err)
	}
	return json.MarshalIndent(raw, "", "  ")
}

func encodeSpans(spans []sightline.SpanInfo) ([]spanJSON, error) {
	var out []spanJSON
	for _, s := range spans {
		source, err := encodeSource(s.Source)
		if err != nil {
			return nil, err
		}
		typ, err := encodeType(s.Type)
		if err != nil {
			return nil, err
		}
		out = append(out, spanJSON{
			StartLine: s.Range.Start.Line,
			StartCol:  s.Range.Start.Col,
			EndLine:   s.Range.End.Line,
			EndCol:    s.Range.End.Col,
			Source:    source,
			Type:      typ,
			Docs:      s.Docs,
		})
	}
	return out, nil
}

func encodeSource(src sightline.SpanSource) (*sourceJSON, error) {
	switch v := src.(type) {
	case sightline.NamedSource:
		return &sourceJSON{Kind: "name", Name: encodeIdentity(v.Name)}, nil
	case sightline.LiteralSource:
		return &sourceJSON{Kind: "literal", Text: v.Text}, nil
	case sightline.LocationSource:
		loc := encodeLoc(v.Loc)
		return &sourceJSON{Kind: "location", Loc: &loc}, nil
	case sightline.NoSource:
		return &sourceJSON{Kind: "none"}, nil
	case nil:
		return &sourceJSON{Kind: "none"}, nil
	default:
		return nil, fmt.Errorf("unencodable source %T", src)
	}
}

func encodeIdentity(id sightline.Identity) *identityJSON {
	out := &identityJSON{Name: id.Name}
	if id.Module != nil {
		out.Module = &moduleJSON{Unit: id.Module.Unit, Name: id.Module.Name}
	}
	switch def := id.Def.(type) {
	case sightline.KnownDefinition:
		loc := encodeLoc(def.Loc)
		out.Def = &hintJSON{Kind: "known", Loc: &loc}
	case sightline.BuiltinDefinition:
		out.Def = &hintJSON{Kind: "builtin"}
	case sightline.UnknownDefinition:
		out.Def = &hintJSON{Kind: "unknown", Reason: def.Reason}
	}
	return out
}

func encodeType(t sightline.TypeExpr) (*typeJSON, error) {
	switch v := t.(type) {
	case nil:
		return nil, nil
	case sightline.TypeVar:
		return &typeJSON{Kind: "var", Name: v.Name}, nil
	case sightline.TypeCon:
		out := &typeJSON{Kind: "con", Con: encodeIdentity(v.Con)}
		for _, a := range v.Args {
			arg, err := encodeType(a)
			if err != nil {
				return nil, err
			}
			out.Args = append(out.Args, *arg)
		}
		return out, nil
	case sightline.TypeFunc:
		from, err := encodeType(v.From)
		if err != nil {
			return nil, err
		}
		to, err := encodeType(v.To)
		if err != nil {
			return nil, err
		}
		return &typeJSON{Kind: "fun", From: from, To: to}, nil
	default:
		return nil, fmt.Errorf("unencodable type %T", t)
	}
}

func encodeLoc(loc sightline.Location) locJSON {
	return locJSON{
		File:      loc.File,
		StartLine: loc.Range.Start.Line,
		StartCol:  loc.Range.Start.Col,
		EndLine:   loc.Range.End.Line,
		EndCol:    loc.Range.End.Col,
	}
}

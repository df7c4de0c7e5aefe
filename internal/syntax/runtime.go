// Package syntax is the syntactic span producer: when no compiler dump
// exists for a file, it parses with tree-sitter and runs a per-language
// Risor classification script that emits name and literal spans. Purely
// syntactic output: no types, no modules, no resolvable definitions.
package syntax

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/risor-io/risor"
	"github.com/risor-io/risor/object"

	"github.com/jward/sightline"
)

// Runtime embeds a Risor VM wired with tree-sitter host functions for
// span classification scripts.
type Runtime struct {
	scriptsDir string
	fsys       fs.FS
	sources    *sourceStore
}

// Option configures a Runtime.
type Option func(*Runtime)

// WithFS configures the Runtime to load scripts from an fs.FS instead of
// from disk. This enables embedding scripts via go:embed.
func WithFS(fsys fs.FS) Option {
	return func(r *Runtime) {
		r.fsys = fsys
	}
}

// NewRuntime creates a Runtime loading scripts from scriptsDir, unless
// WithFS overrides the source.
func NewRuntime(scriptsDir string, opts ...Option) *Runtime {
	r := &Runtime{
		scriptsDir: scriptsDir,
		sources:    newSourceStore(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// SpanScriptPath returns the path of a language's span script relative to
// the scripts root.
func SpanScriptPath(language string) string {
	return filepath.Join("spans", language+".risor")
}

// Extract parses the file at path and returns the spans its language
// script emits, ordered by start position.
func (r *Runtime) Extract(ctx context.Context, path string) ([]sightline.SpanInfo, error) {
	lang, ok := LanguageForFile(path)
	if !ok {
		return nil, fmt.Errorf("syntax: unsupported file type: %s", path)
	}
	return r.run(ctx, lang, map[string]any{
		"source_path": path,
		"source_text": "",
	})
}

// ExtractSource classifies source text directly. Useful for tests and for
// hosts holding unsaved buffers.
func (r *Runtime) ExtractSource(ctx context.Context, source, language string) ([]sightline.SpanInfo, error) {
	return r.run(ctx, language, map[string]any{
		"source_path": "",
		"source_text": source,
	})
}

func (r *Runtime) run(ctx context.Context, language string, inputs map[string]any) ([]sightline.SpanInfo, error) {
	scriptPath := SpanScriptPath(language)
	src, err := r.loadScript(scriptPath)
	if err != nil {
		return nil, err
	}

	collector := &spanCollector{}
	globals := map[string]any{
		"parse":     makeParseFn(r.sources),
		"parse_src": makeParseSrcFn(r.sources),
		"node_text": makeNodeTextFn(r.sources),
		"query":     makeQueryFn(r.sources),
		"emit_span": makeEmitSpanFn(r.sources, collector),
		"log":       mustProxy(&logObject{prefix: "sightline"}),
		"language":  language,
	}
	for k, v := range inputs {
		globals[k] = v
	}

	var opts []risor.Option
	for name, val := range globals {
		opts = append(opts, risor.WithGlobal(name, val))
	}
	if _, err := risor.Eval(ctx, src, opts...); err != nil {
		return nil, fmt.Errorf("syntax: script %s: %w", scriptPath, err)
	}

	spans := collector.spans
	sort.SliceStable(spans, func(i, j int) bool {
		a, b := spans[i].Range.Start, spans[j].Range.Start
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Col < b.Col
	})
	return spans, nil
}

// loadScript reads a .risor file from the configured fs.FS or scriptsDir.
func (r *Runtime) loadScript(path string) (string, error) {
	if r.fsys != nil {
		fsPath := strings.TrimPrefix(filepath.ToSlash(path), "/")
		data, err := fs.ReadFile(r.fsys, fsPath)
		if err != nil {
			return "", fmt.Errorf("syntax: loading script %s from fs: %w", fsPath, err)
		}
		return string(data), nil
	}

	fullPath := path
	if !filepath.IsAbs(path) {
		fullPath = filepath.Join(r.scriptsDir, path)
	}

	data, err := os.ReadFile(fullPath)
	if err != nil {
		return "", fmt.Errorf("syntax: loading script %s: %w", fullPath, err)
	}
	return string(data), nil
}

func mustProxy(v any) object.Object {
	p, err := object.NewProxy(v)
	if err != nil {
		panic(fmt.Sprintf("syntax: proxy error: %v", err))
	}
	return p
}

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/jward/sightline"
	"github.com/jward/sightline/internal/exportdb"
	"github.com/jward/sightline/internal/spanfile"
)

var hoverCmd = &cobra.Command{
	Use:   "hover <spans.json> <line> <col>",
	Short: "Show the hover synopsis at a position",
	Long:  "Loads a compiled-unit span dump and formats the symbol under the given 0-based position.",
	Args:  cobra.ExactArgs(3),
	RunE:  runHover,
}

var defCmd = &cobra.Command{
	Use:   "def <spans.json> <line> <col>",
	Short: "Resolve the definition of the symbol at a position",
	Args:  cobra.ExactArgs(3),
	RunE:  runDef,
}

var typedefCmd = &cobra.Command{
	Use:   "typedef <spans.json> <line> <col>",
	Short: "Resolve the type definitions for the spans at a position",
	Long:  "For every span enclosing the position, resolves the definition of the head type constructor of the span's type.",
	Args:  cobra.ExactArgs(3),
	RunE:  runTypedef,
}

func runHover(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	unit, pos, err := loadQueryInput(args)
	if err != nil {
		return err
	}

	hover := sightline.HoverSynopsis(pos, unit.Spans, sightline.RenderOptions{
		SyntaxTag:          cfg.Syntax,
		NewColonConvention: cfg.NewColons,
	})

	if flagFormat == "json" {
		return outputJSON(cliHoverFrom(hover))
	}
	if hover == nil {
		return nil
	}
	for _, line := range hover.Lines {
		fmt.Println(line)
	}
	return nil
}

func runDef(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	unit, pos, err := loadQueryInput(args)
	if err != nil {
		return err
	}
	fetch, closeFetch, err := openFetcher(cfg)
	if err != nil {
		return err
	}
	defer closeFetch()

	loc := sightline.GoToDefinition(cmd.Context(), pos, unit.Spans.Values, fetch)

	if flagFormat == "json" {
		var locs []cliLocation
		if loc != nil {
			locs = append(locs, cliLocationFrom(*loc))
		}
		return outputJSON(locs)
	}
	if loc != nil {
		fmt.Println(loc)
	}
	return nil
}

func runTypedef(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	unit, pos, err := loadQueryInput(args)
	if err != nil {
		return err
	}
	fetch, closeFetch, err := openFetcher(cfg)
	if err != nil {
		return err
	}
	defer closeFetch()

	locs := sightline.GoToTypeDefinition(cmd.Context(), pos, unit.Spans.Values, fetch)

	if flagFormat == "json" {
		out := make([]cliLocation, 0, len(locs))
		for _, loc := range locs {
			out = append(out, cliLocationFrom(loc))
		}
		return outputJSON(out)
	}
	for _, loc := range locs {
		fmt.Println(loc)
	}
	return nil
}

// --- Helpers ---

// loadQueryInput parses the shared <spans.json> <line> <col> arguments.
func loadQueryInput(args []string) (*spanfile.Unit, sightline.Position, error) {
	unit, err := spanfile.LoadSpans(args[0])
	if err != nil {
		return nil, sightline.Position{}, err
	}
	line, err := parseIntArg(args[1], "line")
	if err != nil {
		return nil, sightline.Position{}, err
	}
	col, err := parseIntArg(args[2], "col")
	if err != nil {
		return nil, sightline.Position{}, err
	}
	return unit, sightline.Position{Line: line, Col: col}, nil
}

// parseIntArg parses a positional argument as an integer with a clear error.
func parseIntArg(value, name string) (int, error) {
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: must be a non-negative integer", name, value)
	}
	if n < 0 {
		return 0, fmt.Errorf("invalid %s %q: must be non-negative", name, value)
	}
	return n, nil
}

// openFetcher opens the exports DB as an ExportFetcher. A missing DB file
// yields a nil fetcher: external-package identities simply don't resolve.
func openFetcher(cfg Config) (sightline.ExportFetcher, func(), error) {
	if _, err := os.Stat(cfg.ExportsDB); os.IsNotExist(err) {
		return nil, func() {}, nil
	}
	s, err := exportdb.NewStore(cfg.ExportsDB)
	if err != nil {
		return nil, nil, fmt.Errorf("opening exports db: %w", err)
	}
	return sightline.DBFetcher(s), func() { s.Close() }, nil
}

func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// --- JSON shapes ---

type cliRange struct {
	StartLine int `json:"start_line"`
	StartCol  int `json:"start_col"`
	EndLine   int `json:"end_line"`
	EndCol    int `json:"end_col"`
}

type cliLocation struct {
	File string `json:"file"`
	cliRange
}

type cliHover struct {
	Range *cliRange `json:"range,omitempty"`
	Lines []string  `json:"lines"`
}

func cliRangeFrom(r sightline.Range) cliRange {
	return cliRange{
		StartLine: r.Start.Line,
		StartCol:  r.Start.Col,
		EndLine:   r.End.Line,
		EndCol:    r.End.Col,
	}
}

func cliLocationFrom(loc sightline.Location) cliLocation {
	return cliLocation{File: loc.File, cliRange: cliRangeFrom(loc.Range)}
}

func cliHoverFrom(h *sightline.Hover) *cliHover {
	if h == nil {
		return nil
	}
	out := &cliHover{Lines: h.Lines}
	if h.Range != nil {
		r := cliRangeFrom(*h.Range)
		out.Range = &r
	}
	return out
}

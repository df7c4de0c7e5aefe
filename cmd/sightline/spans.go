package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jward/sightline"
	"github.com/jward/sightline/internal/spanfile"
	"github.com/jward/sightline/internal/syntax"
	"github.com/jward/sightline/scripts"
)

var flagScriptsDir string

var spansCmd = &cobra.Command{
	Use:   "spans <source-file>",
	Short: "Extract syntactic spans from a source file",
	Long:  "Parses a source file with tree-sitter and runs its language's span classification script. Output is purely syntactic: name and literal spans without types or resolvable definitions.",
	Args:  cobra.ExactArgs(1),
	RunE:  runSpans,
}

func init() {
	spansCmd.Flags().StringVar(&flagScriptsDir, "scripts-dir", "", "load scripts from disk path instead of embedded")
}

func runSpans(cmd *cobra.Command, args []string) error {
	path, err := filepath.Abs(args[0])
	if err != nil {
		return fmt.Errorf("resolving path %q: %w", args[0], err)
	}
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("file not found: %s", path)
	}

	var opts []syntax.Option
	if flagScriptsDir == "" {
		opts = append(opts, syntax.WithFS(scripts.FS))
	}
	rt := syntax.NewRuntime(flagScriptsDir, opts...)

	spans, err := rt.Extract(cmd.Context(), path)
	if err != nil {
		return err
	}

	if flagFormat == "json" {
		data, err := spanfile.EncodeSpans(&spanfile.Unit{
			File:  path,
			Spans: sightline.SpansInfo{Values: spans},
		})
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}

	for _, s := range spans {
		fmt.Printf("%d:%d-%d:%d %s\n",
			s.Range.Start.Line, s.Range.Start.Col,
			s.Range.End.Line, s.Range.End.Col,
			describeSource(s.Source))
	}
	return nil
}

// describeSource renders a span source for the text format.
func describeSource(src sightline.SpanSource) string {
	switch v := src.(type) {
	case sightline.NamedSource:
		return "name " + v.Name.Name
	case sightline.LiteralSource:
		return "literal " + v.Text
	case sightline.LocationSource:
		return "location " + v.Loc.String()
	case sightline.NoSource:
		return "none"
	default:
		return "none"
	}
}

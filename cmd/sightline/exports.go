package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jward/sightline/internal/exportdb"
	"github.com/jward/sightline/internal/spanfile"
)

var exportsCmd = &cobra.Command{
	Use:   "exports",
	Short: "Manage the export-table side index",
}

var exportsLoadCmd = &cobra.Command{
	Use:   "load <exports.json>...",
	Short: "Load module export dumps into the side index",
	Long:  "Reads per-module export dumps and writes them to the SQLite exports database. Reloading a module replaces its previous entries.",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runExportsLoad,
}

var exportsModulesCmd = &cobra.Command{
	Use:   "modules",
	Short: "List indexed modules",
	Args:  cobra.NoArgs,
	RunE:  runExportsModules,
}

func init() {
	exportsCmd.AddCommand(exportsLoadCmd)
	exportsCmd.AddCommand(exportsModulesCmd)
}

func runExportsLoad(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(cfg.ExportsDB), 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Dir(cfg.ExportsDB), err)
	}
	store, err := exportdb.NewStore(cfg.ExportsDB)
	if err != nil {
		return fmt.Errorf("opening exports db: %w", err)
	}
	defer store.Close()
	if err := store.Migrate(); err != nil {
		return err
	}

	ctx := cmd.Context()
	for _, path := range args {
		dump, err := spanfile.LoadExports(path)
		if err != nil {
			return err
		}

		module := &exportdb.Module{
			Unit:          dump.Module.Unit,
			Name:          dump.Module.Name,
			InterfacePath: dump.InterfacePath,
		}
		exports := make([]*exportdb.Export, 0, len(dump.Entries))
		for _, e := range dump.Entries {
			exports = append(exports, &exportdb.Export{
				Name:      e.Name,
				File:      e.Loc.File,
				StartLine: e.Loc.Range.Start.Line,
				StartCol:  e.Loc.Range.Start.Col,
				EndLine:   e.Loc.Range.End.Line,
				EndCol:    e.Loc.Range.End.Col,
			})
		}

		if err := store.ReplaceModule(ctx, module, exports); err != nil {
			return fmt.Errorf("loading %s: %w", path, err)
		}
		fmt.Fprintf(os.Stderr, "Loaded %s (%d exports)\n", dump.Module, len(exports))
	}
	return nil
}

func runExportsModules(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if _, err := os.Stat(cfg.ExportsDB); os.IsNotExist(err) {
		return fmt.Errorf("exports db not found: %s (run 'sightline exports load' first)", cfg.ExportsDB)
	}
	store, err := exportdb.NewStore(cfg.ExportsDB)
	if err != nil {
		return fmt.Errorf("opening exports db: %w", err)
	}
	defer store.Close()

	modules, err := store.Modules(cmd.Context())
	if err != nil {
		return err
	}

	if flagFormat == "json" {
		type cliModule struct {
			Unit          string `json:"unit,omitempty"`
			Name          string `json:"name"`
			InterfacePath string `json:"interface_path"`
		}
		out := make([]cliModule, 0, len(modules))
		for _, m := range modules {
			out = append(out, cliModule{Unit: m.Unit, Name: m.Name, InterfacePath: m.InterfacePath})
		}
		return outputJSON(out)
	}
	for _, m := range modules {
		fmt.Printf("%s:%s\t%s\n", m.Unit, m.Name, m.InterfacePath)
	}
	return nil
}

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const configFileName = ".sightline.yaml"

// Config is the on-disk CLI configuration.
type Config struct {
	// Syntax tags hover code fences (the language label after ```).
	Syntax string `yaml:"syntax"`
	// NewColons selects ": " type annotations instead of ":: ".
	NewColons bool `yaml:"new_colons"`
	// ExportsDB is the path of the SQLite export-table index, relative to
	// the config file's directory unless absolute.
	ExportsDB string `yaml:"exports_db"`
}

func defaultConfig() Config {
	return Config{
		Syntax:    "sightline",
		ExportsDB: filepath.Join(".sightline", "exports.db"),
	}
}

// loadConfig reads the config from the --config flag path, or from the
// nearest .sightline.yaml found walking up from cwd. Missing config is not
// an error: defaults apply.
func loadConfig() (Config, error) {
	cfg := defaultConfig()

	path := flagConfig
	if path == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return cfg, fmt.Errorf("getting cwd: %w", err)
		}
		path = findConfig(cwd)
		if path == "" {
			return cfg, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if cfg.ExportsDB != "" && !filepath.IsAbs(cfg.ExportsDB) {
		cfg.ExportsDB = filepath.Join(filepath.Dir(path), cfg.ExportsDB)
	}
	return cfg, nil
}

// findConfig walks up from startDir looking for a config file. Returns ""
// when none exists up to the filesystem root.
func findConfig(startDir string) string {
	dir := startDir
	for {
		candidate := filepath.Join(dir, configFileName)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// Package config loads the run configuration from a YAML file and applies
// defaults so the tool works against a bare data directory.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/saldo-fin/saldo/internal/domain"
)

// Backend names the persistence implementation for the canonical store.
const (
	BackendCSV    = "csv"
	BackendSQLite = "sqlite"
)

// Config is the full run configuration.
type Config struct {
	// MetadataDir holds the accounts/presets/categories tables.
	MetadataDir string `yaml:"metadata_dir"`
	// RawDir holds one subdirectory of exports per account ID.
	RawDir string `yaml:"raw_dir"`
	// StorePath is the canonical store file (CSV or SQLite database).
	StorePath string `yaml:"store_path"`
	// Backend selects the store implementation, csv or sqlite.
	Backend string `yaml:"backend"`
	// RulesPath optionally overrides the embedded category rules.
	RulesPath string `yaml:"rules_path"`
}

// Default returns the configuration rooted at dataDir.
func Default(dataDir string) Config {
	return Config{
		MetadataDir: filepath.Join(dataDir, "metadata"),
		RawDir:      filepath.Join(dataDir, "raw"),
		StorePath:   filepath.Join(dataDir, "store.csv"),
		Backend:     BackendCSV,
	}
}

// Load reads a YAML configuration file. Fields left empty in the file keep
// the defaults for dataDir.
func Load(path, dataDir string) (Config, error) {
	cfg := Default(dataDir)

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %v: %w", path, err, domain.ErrConfiguration)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config %s: %v: %w", path, err, domain.ErrConfiguration)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the configuration is internally consistent.
func (c Config) Validate() error {
	if c.MetadataDir == "" {
		return fmt.Errorf("metadata_dir must be set: %w", domain.ErrConfiguration)
	}
	if c.RawDir == "" {
		return fmt.Errorf("raw_dir must be set: %w", domain.ErrConfiguration)
	}
	if c.StorePath == "" {
		return fmt.Errorf("store_path must be set: %w", domain.ErrConfiguration)
	}
	switch c.Backend {
	case BackendCSV, BackendSQLite:
	default:
		return fmt.Errorf("unknown backend %q, expected %s or %s: %w",
			c.Backend, BackendCSV, BackendSQLite, domain.ErrConfiguration)
	}
	return nil
}

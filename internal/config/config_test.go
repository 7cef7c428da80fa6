package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saldo-fin/saldo/internal/domain"
)

func TestDefault(t *testing.T) {
	cfg := Default("/data")

	assert.Equal(t, filepath.Join("/data", "metadata"), cfg.MetadataDir)
	assert.Equal(t, filepath.Join("/data", "raw"), cfg.RawDir)
	assert.Equal(t, filepath.Join("/data", "store.csv"), cfg.StorePath)
	assert.Equal(t, BackendCSV, cfg.Backend)
	require.NoError(t, cfg.Validate())
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "saldo.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"store_path: /var/lib/saldo/store.db\nbackend: sqlite\nrules_path: rules.yaml\n"), 0644))

	cfg, err := Load(path, "/data")
	require.NoError(t, err)

	// Overridden fields.
	assert.Equal(t, "/var/lib/saldo/store.db", cfg.StorePath)
	assert.Equal(t, BackendSQLite, cfg.Backend)
	assert.Equal(t, "rules.yaml", cfg.RulesPath)

	// Defaults survive for the rest.
	assert.Equal(t, filepath.Join("/data", "metadata"), cfg.MetadataDir)
	assert.Equal(t, filepath.Join("/data", "raw"), cfg.RawDir)
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), "/data")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrConfiguration)
}

func TestLoad_BadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "saldo.yaml")
	require.NoError(t, os.WriteFile(path, []byte("backend: [unclosed"), 0644))

	_, err := Load(path, "/data")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrConfiguration)
}

func TestValidate_BadBackend(t *testing.T) {
	cfg := Default("/data")
	cfg.Backend = "postgres"

	err := cfg.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrConfiguration)
}

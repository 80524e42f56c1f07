package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadWithoutPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, StorageMemory, cfg.Storage.Driver)
	assert.Equal(t, GeneratorMock, cfg.Generator.Kind)
}

func TestDecodeOverridesDefaults(t *testing.T) {
	cfg, err := Decode(strings.NewReader(`
server:
  address: 127.0.0.1:9000
  base_path: /ops/
backend:
  url: http://claims.local:8000
  timeout: 10s
storage:
  driver: SQLite
  path: /var/lib/claims.db
generator:
  kind: http
charts:
  cache_ttl: 1m
seed:
  year: 2024
`))
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Address)
	assert.Equal(t, "/ops", cfg.Server.BasePath)
	assert.Equal(t, 10*time.Second, cfg.Backend.Timeout)
	assert.Equal(t, StorageSQLite, cfg.Storage.Driver)
	assert.Equal(t, GeneratorHTTP, cfg.Generator.Kind)
	assert.Equal(t, time.Minute, cfg.Charts.CacheTTL)
	assert.Equal(t, "westeros", cfg.Charts.Theme, "unset keys keep defaults")
	assert.True(t, cfg.Seed.Enabled)
	assert.Equal(t, 2024, cfg.Seed.Year)
}

func TestDecodeRejectsUnknownKeys(t *testing.T) {
	_, err := Decode(strings.NewReader("storage:\n  engine: sqlite\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "engine")
}

func TestDecodeEmptyDocument(t *testing.T) {
	cfg, err := Decode(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Server.Address)
}

func TestValidateCollectsErrors(t *testing.T) {
	cfg := Default()
	cfg.Storage.Driver = "postgres"
	cfg.Generator.Kind = GeneratorGenAI
	cfg.Backend.URL = "claims.local"
	cfg.Seed.Year = 1800

	err := cfg.Validate()
	require.ErrorIs(t, err, ErrInvalid)
	for _, want := range []string{"storage.driver", "generator.api_key", "backend.url", "seed.year"} {
		assert.Contains(t, err.Error(), want)
	}
}

func TestValidateHTTPGeneratorNeedsBackend(t *testing.T) {
	cfg := Default()
	cfg.Generator.Kind = GeneratorHTTP
	assert.ErrorIs(t, cfg.Validate(), ErrInvalid)
	cfg.Backend.URL = "https://claims.example.com"
	assert.NoError(t, cfg.Validate())
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "claims.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: debug\n"), 0o600))
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

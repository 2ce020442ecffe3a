package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteDefaultRoundTrips(t *testing.T) {
	dir := chdirTemp(t)

	require.NoError(t, WriteDefault(filepath.Join(dir, "config.yaml"), false))

	data, err := os.ReadFile(filepath.Join(dir, "config.yaml"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "WORLDCITIES_")
	assert.Contains(t, string(data), "cities_entry: cities15000.txt")

	cfg, err := Load()
	require.NoError(t, err)

	want, err := Defaults()
	require.NoError(t, err)
	assert.Equal(t, want, cfg)
}

func TestWriteDefaultRefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: debug\n"), 0o644))

	err := WriteDefault(path, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "log:\n  level: debug\n", string(data))
}

func TestWriteDefaultForce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("stale"), 0o644))

	require.NoError(t, WriteDefault(path, true))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "stale")
	assert.Contains(t, string(data), "postgres_table: world_cities")
}

func TestWriteDefaultCreatesParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "config.yaml")
	require.NoError(t, WriteDefault(path, false))
	assert.FileExists(t, path)
}

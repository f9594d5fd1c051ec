package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadTrellisConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "trellis.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
version: "1.0"
project: boards
database:
  url: postgres://localhost:5432/trellis
store:
  position_step: 500
`), 0644))

	cfg, err := LoadTrellisConfig(path)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "boards", cfg.Project)
	assert.Equal(t, "postgres://localhost:5432/trellis", cfg.Database.URL)
	assert.Equal(t, int64(500), cfg.Store.PositionStep)

	// Unset fields fall back to defaults.
	assert.Equal(t, 25, cfg.Database.MaxConnections)
	assert.Equal(t, int64(1000), cfg.Store.PositionBase)
	assert.Equal(t, 100, cfg.Store.DefaultLimit)
	assert.Equal(t, 1000, cfg.Store.MaxLimit)
}

func TestLoadTrellisConfigMissing(t *testing.T) {
	cwd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { os.Chdir(cwd) })

	cfg, err := LoadTrellisConfig("")
	require.NoError(t, err)
	assert.Nil(t, cfg)
}

func TestLoadTrellisConfigInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trellis.yaml")
	require.NoError(t, os.WriteFile(path, []byte("{not yaml"), 0644))

	_, err := LoadTrellisConfig(path)
	assert.Error(t, err)
}

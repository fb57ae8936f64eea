package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadExplicitMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	require.Nil(t, cfg)
}

func TestLoadAbsentDefaultFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, "info", cfg.LogLevel)
	require.False(t, cfg.NonInteractive)
	require.NotEmpty(t, cfg.CacheDir)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
cache_dir: /tmp/petridish-cache
log_level: debug
non_interactive: true
abbreviations:
  work: https://git.example.com/templates/
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "/tmp/petridish-cache", cfg.CacheDir)
	require.Equal(t, "debug", cfg.LogLevel)
	require.True(t, cfg.NonInteractive)
	require.Equal(t, "https://git.example.com/templates/", cfg.Abbreviations["work"])
}

func TestLoadEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log_level: info\n"), 0o644))
	t.Setenv("PETRIDISH_LOG_LEVEL", "trace")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "trace", cfg.LogLevel)
}

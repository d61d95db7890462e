package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alibirb/gogrind/internal/config"
)

func TestLoadRuntimeConfigDefaultsWithNoFile(t *testing.T) {
	cfg, err := config.LoadRuntimeConfig("")
	require.NoError(t, err)
	assert.Equal(t, config.DefaultRuntimeConfig(), cfg)
}

func TestLoadRuntimeConfigReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runtime.yaml")
	content := "http_addr: \":9999\"\nlog_level: debug\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := config.LoadRuntimeConfig(path)
	require.NoError(t, err)
	assert.Equal(t, ":9999", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, config.DefaultRuntimeConfig().LogFormat, cfg.LogFormat, "unset fields keep their default")
}

func TestLoadRuntimeConfigEnvOverride(t *testing.T) {
	t.Setenv("GOGRIND_HTTP_ADDR", ":7070")
	cfg, err := config.LoadRuntimeConfig("")
	require.NoError(t, err)
	assert.Equal(t, ":7070", cfg.HTTPAddr)
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 7000, cfg.Server.Port)
	assert.Equal(t, ":7000", cfg.Server.Address())
	assert.Equal(t, "recipes.json", cfg.Store.Path)
	assert.False(t, cfg.Store.Strict)
	assert.Equal(t, "timestamp", cfg.Store.IDStrategy)
	assert.Equal(t, ".", cfg.Static.Dir)
	assert.Equal(t, "index.html", cfg.Static.Index)
	assert.Equal(t, "style.css", cfg.Static.Stylesheet)
	assert.Equal(t, "*", cfg.Security.CORSOrigin())
	assert.False(t, cfg.Security.RateLimitEnabled)
	assert.Equal(t, time.Minute, cfg.Security.RateLimitWindow)
	assert.False(t, cfg.Metrics.Enabled)
	assert.Equal(t, "/metrics", cfg.Metrics.Path)
	assert.Empty(t, cfg.Server.BodyLimit)
	assert.Equal(t, "development", cfg.App.Environment)
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "8081")
	t.Setenv("STORE_PATH", "/tmp/other.json")
	t.Setenv("STORE_STRICT", "true")
	t.Setenv("STORE_ID_STRATEGY", "uuid")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("RATE_LIMIT_WINDOW", "30s")
	t.Setenv("ENABLE_METRICS", "true")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8081, cfg.Server.Port)
	assert.Equal(t, "/tmp/other.json", cfg.Store.Path)
	assert.True(t, cfg.Store.Strict)
	assert.Equal(t, "uuid", cfg.Store.IDStrategy)
	assert.Equal(t, "debug", cfg.Logger.Level)
	assert.Equal(t, 30*time.Second, cfg.Security.RateLimitWindow)
	assert.True(t, cfg.Metrics.Enabled)
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "recipebox.yaml")
	content := `
server:
  port: 9000
  host: 127.0.0.1
store:
  path: data/recipes.json
security:
  cors_allowed_origins: "https://a.example, https://b.example"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Address())
	assert.Equal(t, "data/recipes.json", cfg.Store.Path)
	assert.Equal(t, "https://a.example", cfg.Security.CORSOrigin())
	assert.Equal(t, "info", cfg.Logger.Level)
}

func TestLoadMissingConfigFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	for _, tc := range []struct {
		env   string
		value string
	}{
		{"SERVER_PORT", "70000"},
		{"STORE_ID_STRATEGY", "sequential"},
		{"LOG_LEVEL", "loud"},
		{"LOG_OUTPUT", "file"},
		{"METRICS_PATH", "metrics"},
	} {
		t.Run(tc.env, func(t *testing.T) {
			t.Setenv(tc.env, tc.value)

			_, err := Load("")
			assert.ErrorContains(t, err, "invalid configuration")
		})
	}
}

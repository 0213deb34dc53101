package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, data map[string]any) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cfg.json")
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func Test_parseJson(t *testing.T) {
	t.Run("loads all fields", func(t *testing.T) {
		path := writeTempJSON(t, map[string]any{
			"endpoint_addr_http":   "www.example:9000",
			"database_dsn":         "postgres://db",
			"secret_key":           "my_secret_key",
			"sweep_interval":       "30s",
			"inactivity_threshold": "720h",
			"auth_rate_limit":      5,
			"log_level":            "debug",
		})

		cfg := &Config{}
		parseJson(cfg, []string{"-config", path})

		assert.Equal(t, "www.example:9000", cfg.EndpointAddrHTTP)
		assert.Equal(t, "postgres://db", cfg.DatabaseDSN)
		assert.Equal(t, "my_secret_key", cfg.SecretKey)
		assert.Equal(t, 30*time.Second, cfg.SweepInterval)
		assert.Equal(t, 30*24*time.Hour, cfg.InactivityThreshold)
		assert.Equal(t, 5, cfg.AuthRateLimit)
		assert.Equal(t, "debug", cfg.LogLevel)
	})

	t.Run("absent fields keep current values", func(t *testing.T) {
		path := writeTempJSON(t, map[string]any{"log_level": "warn"})

		cfg := &Config{}
		cfg.LoadDefaults()
		parseJson(cfg, []string{"-c", path})

		assert.Equal(t, "warn", cfg.LogLevel)
		assert.Equal(t, ":8080", cfg.EndpointAddrHTTP)
		assert.Equal(t, time.Minute, cfg.SweepInterval)
	})

	t.Run("no config flag leaves config untouched", func(t *testing.T) {
		cfg := &Config{EndpointAddrHTTP: "defaults:1234", SecretKey: "key"}
		parseJson(cfg, []string{"-a", ":1"})

		assert.Equal(t, "defaults:1234", cfg.EndpointAddrHTTP)
		assert.Equal(t, "key", cfg.SecretKey)
	})

	t.Run("invalid JSON panics", func(t *testing.T) {
		bad := filepath.Join(t.TempDir(), "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte(`{ this is not valid json`), 0o600))

		require.Panics(t, func() { parseJson(&Config{}, []string{"-c", bad}) })
	})

	t.Run("missing file panics", func(t *testing.T) {
		require.Panics(t, func() { parseJson(&Config{}, []string{"-c", "/nonexistent/cfg.json"}) })
	})
}

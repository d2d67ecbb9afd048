package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gustavclausen/github-api-fetcher/pkg/client"
	"github.com/gustavclausen/github-api-fetcher/pkg/logging"
)

// isolate points HOME at an empty directory and clears the variables Load reads.
func isolate(t *testing.T) string {
	t.Helper()

	home := t.TempDir()
	t.Setenv("HOME", home)
	for _, env := range []string{EnvToken, EnvEndpoint, EnvLogLevel, EnvRedis, EnvCacheTTL} {
		t.Setenv(env, "")
	}
	return home
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, client.DefaultEndpoint, cfg.Endpoint)
	assert.Equal(t, client.DefaultUserAgent, cfg.UserAgent)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Zero(t, cfg.CacheTTL)
	assert.Empty(t, cfg.Source)
}

func TestLoad_File(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, `
endpoint: https://github.example.com/api/graphql
user_agent: my-app/1.0
timeout: 5s
log:
  level: debug
  pretty: true
redis:
  addr: localhost:6379
  db: 2
cache_ttl: 10m
metrics_addr: ":9090"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://github.example.com/api/graphql", cfg.Endpoint)
	assert.Equal(t, "my-app/1.0", cfg.UserAgent)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.True(t, cfg.Log.Pretty)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, 2, cfg.Redis.DB)
	assert.Equal(t, 10*time.Minute, cfg.CacheTTL)
	assert.Equal(t, ":9090", cfg.MetricsAddr)
	assert.Equal(t, path, cfg.Source)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "token: from-file\nlog:\n  level: warn\n")

	t.Setenv(EnvToken, "from-env")
	t.Setenv(EnvLogLevel, "ERROR")
	t.Setenv(EnvEndpoint, "http://localhost:8080/graphql")
	t.Setenv(EnvRedis, "redis:6379")
	t.Setenv(EnvCacheTTL, "90s")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.Token)
	assert.Equal(t, "error", cfg.Log.Level)
	assert.Equal(t, "http://localhost:8080/graphql", cfg.Endpoint)
	assert.Equal(t, "redis:6379", cfg.Redis.Addr)
	assert.Equal(t, 90*time.Second, cfg.CacheTTL)
}

func TestLoad_SearchesHome(t *testing.T) {
	home := isolate(t)
	path := filepath.Join(home, ".config", "github-fetcher", "config.yaml")
	writeFile(t, path, "user_agent: from-home\n")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "from-home", cfg.UserAgent)
	assert.Equal(t, path, cfg.Source)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		env     map[string]string
	}{
		{name: "malformed yaml", content: "log: [unclosed"},
		{name: "bad endpoint", content: "endpoint: not a url"},
		{name: "empty user agent", content: `user_agent: ""`},
		{name: "negative timeout", content: "timeout: -1s"},
		{name: "unknown log level", content: "log:\n  level: verbose"},
		{name: "redis db out of range", content: "redis:\n  addr: localhost:6379\n  db: 16"},
		{name: "cache without redis", content: "cache_ttl: 1m"},
		{name: "bad metrics addr", content: "metrics_addr: nope"},
		{name: "bad cache ttl env", env: map[string]string{EnvCacheTTL: "soon"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			path := filepath.Join(t.TempDir(), "config.yaml")
			writeFile(t, path, tt.content)

			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	isolate(t)

	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestClientConfig(t *testing.T) {
	cfg := Default()
	cfg.Token = "secret"
	cfg.CacheTTL = time.Minute

	// Without a Redis client the cache stays off.
	cc := cfg.ClientConfig(nil)
	assert.Equal(t, "secret", cc.Token)
	assert.Equal(t, client.DefaultEndpoint, cc.Endpoint)
	assert.Equal(t, int64(client.DefaultMaxResponseBytes), cc.MaxResponseBytes)
	assert.Zero(t, cc.CacheTTL)

	cfg.Redis.Addr = "localhost:6379"
	rdb := cfg.RedisClient()
	require.NotNil(t, rdb)
	defer rdb.Close()

	cc = cfg.ClientConfig(rdb)
	assert.Same(t, rdb, cc.Redis)
	assert.Equal(t, time.Minute, cc.CacheTTL)
}

func TestRedisClient_Unconfigured(t *testing.T) {
	cfg := Default()
	assert.Nil(t, cfg.RedisClient())
}

func TestLoggingConfig(t *testing.T) {
	cfg := Default()
	cfg.Log = LogConfig{Level: "debug", Pretty: true}

	lc := cfg.LoggingConfig()
	assert.Equal(t, logging.LevelDebug, lc.Level)
	assert.True(t, lc.Pretty)
	assert.NotNil(t, lc.Output)
}

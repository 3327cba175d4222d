package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "porter2", cfg.Scoring.Stemmer)
	assert.Equal(t, 5*time.Minute, cfg.Redis.CacheTTL)
	assert.False(t, cfg.Analytics.Enabled)
}

func TestLoad_YAMLOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scorer.yaml")
	body := `
server:
  port: 9000
scoring:
  stemmer: none
  workers: 3
redis:
  cacheTTL: 30s
kafka:
  brokers: ["k1:9092", "k2:9092"]
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "none", cfg.Scoring.Stemmer)
	assert.Equal(t, 3, cfg.Scoring.Workers)
	assert.Equal(t, 10000, cfg.Scoring.MaxDocuments, "unset fields keep defaults")
	assert.Equal(t, 30*time.Second, cfg.Redis.CacheTTL)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("TS_SERVER_PORT", "7070")
	t.Setenv("TS_CACHE_ENABLED", "false")
	t.Setenv("TS_KAFKA_BROKERS", "a:1,b:2")
	t.Setenv("TS_LOGGING_LEVEL", "debug")
	t.Setenv("TS_SERVER_CORS_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("TS_SERVER_REQUEST_TIMEOUT", "12s")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.Server.Port)
	assert.False(t, cfg.Cache.Enabled)
	assert.Equal(t, []string{"a:1", "b:2"}, cfg.Kafka.Brokers)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.CORS.AllowOrigins)
	assert.Equal(t, 12*time.Second, cfg.Server.RequestTimeout)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "reading config file")

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [\n"), 0o600))
	_, err = Load(path)
	assert.ErrorContains(t, err, "parsing config file")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"bad port", func(c *Config) { c.Server.Port = 0 }, "server.port"},
		{"no documents", func(c *Config) { c.Scoring.MaxDocuments = 0 }, "maxDocuments"},
		{"negative workers", func(c *Config) { c.Scoring.Workers = -2 }, "workers"},
		{"unknown stemmer", func(c *Config) { c.Scoring.Stemmer = "lovins" }, "stemmer"},
		{"rate limit without burst", func(c *Config) {
			c.Server.RateLimit.Enabled = true
			c.Server.RateLimit.Burst = 0
		}, "rateLimit"},
		{"request timeout not below write timeout", func(c *Config) {
			c.Server.RequestTimeout = c.Server.WriteTimeout
		}, "requestTimeout"},
		{"batch larger than buffer", func(c *Config) {
			c.Analytics.BufferSize = 10
			c.Analytics.BatchSize = 11
		}, "batchSize"},
		{"analytics without brokers", func(c *Config) {
			c.Analytics.Enabled = true
			c.Kafka.Brokers = nil
		}, "kafka.brokers"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.ErrorContains(t, cfg.Validate(), tt.want)
		})
	}
	assert.NoError(t, Default().Validate())

	defaults := Default()
	assert.Less(t, defaults.Server.RequestTimeout, defaults.Server.WriteTimeout)
}

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0:8080", cfg.Server.Addr())
	assert.Equal(t, SourceYAML, cfg.Content.Source)
	assert.Equal(t, "./content", cfg.Content.Dir)
	assert.False(t, cfg.Database.Enabled())
	assert.False(t, cfg.Redis.Enabled())
	assert.Equal(t, 10*time.Minute, cfg.Redis.CacheTTL)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("CONTENT_WATCH", "true")
	t.Setenv("CONTENT_REFRESH_INTERVAL", "30s")
	t.Setenv("REDIS_ADDRESS", "localhost:6379")
	t.Setenv("CACHE_TTL", "1m")
	t.Setenv("ADMIN_API_KEY", "sk_test_admin")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.True(t, cfg.Content.Watch)
	assert.Equal(t, 30*time.Second, cfg.Content.RefreshInterval)
	assert.True(t, cfg.Redis.Enabled())
	assert.Equal(t, time.Minute, cfg.Redis.CacheTTL)
	assert.Equal(t, "sk_test_admin", cfg.Admin.APIKey)
}

func TestLoadIgnoresMalformedValues(t *testing.T) {
	t.Setenv("SERVER_PORT", "not-a-number")
	t.Setenv("CONTENT_WATCH", "maybe")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.False(t, cfg.Content.Watch)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Server:  ServerConfig{Host: "0.0.0.0", Port: 8080},
			Content: ContentConfig{Dir: "./content", Source: SourceYAML},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"bad port", func(c *Config) { c.Server.Port = 70000 }, "invalid server port"},
		{"unknown source", func(c *Config) { c.Content.Source = "s3" }, "unknown content source"},
		{"postgres without dsn", func(c *Config) { c.Content.Source = SourcePostgres }, "database DSN is required"},
		{"postgres with watch", func(c *Config) {
			c.Content.Source = SourcePostgres
			c.Database.DSN = "postgres://localhost/roadmaps"
			c.Content.Watch = true
		}, "content watch requires the yaml source"},
		{"negative refresh", func(c *Config) { c.Content.RefreshInterval = -time.Second }, "must not be negative"},
		{"redis without ttl", func(c *Config) { c.Redis.Address = "localhost:6379" }, "cache TTL must be positive"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

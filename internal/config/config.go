package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Content sources
const (
	SourceYAML     = "yaml"
	SourcePostgres = "postgres"
)

// Config holds all configuration for the roadmaps service
type Config struct {
	Server   ServerConfig
	Content  ContentConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Admin    AdminConfig
	Build    BuildConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host string
	Port int
}

// Addr returns host:port for the listener
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// ContentConfig describes where roadmap content comes from
type ContentConfig struct {
	Dir             string
	Source          string // yaml | postgres
	Watch           bool
	RefreshInterval time.Duration // 0 disables periodic refresh
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	DSN           string
	MigrationsDir string // empty uses the migrations bundled with the binary
	MaxConns      int
	MinConns      int
}

// Enabled reports whether a database is configured
func (d DatabaseConfig) Enabled() bool {
	return d.DSN != ""
}

// RedisConfig holds Redis configuration for the page cache
type RedisConfig struct {
	Address  string
	Password string
	DB       int
	CacheTTL time.Duration
}

// Enabled reports whether the page cache should be used
func (r RedisConfig) Enabled() bool {
	return r.Address != ""
}

// AdminConfig holds admin endpoint configuration
type AdminConfig struct {
	APIKey string
}

// BuildConfig holds static export configuration
type BuildConfig struct {
	OutputDir string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: getEnvAsInt("SERVER_PORT", 8080),
		},
		Content: ContentConfig{
			Dir:             getEnv("CONTENT_DIR", "./content"),
			Source:          getEnv("CONTENT_SOURCE", SourceYAML),
			Watch:           getEnvAsBool("CONTENT_WATCH", false),
			RefreshInterval: getEnvAsDuration("CONTENT_REFRESH_INTERVAL", 0),
		},
		Database: DatabaseConfig{
			DSN:           getEnv("DATABASE_DSN", ""),
			MigrationsDir: getEnv("DATABASE_MIGRATIONS_DIR", ""),
			MaxConns:      getEnvAsInt("DATABASE_MAX_CONNS", 10),
			MinConns:      getEnvAsInt("DATABASE_MIN_CONNS", 1),
		},
		Redis: RedisConfig{
			Address:  getEnv("REDIS_ADDRESS", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			CacheTTL: getEnvAsDuration("CACHE_TTL", 10*time.Minute),
		},
		Admin: AdminConfig{
			APIKey: getEnv("ADMIN_API_KEY", ""),
		},
		Build: BuildConfig{
			OutputDir: getEnv("BUILD_OUTPUT_DIR", "./public"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	switch c.Content.Source {
	case SourceYAML:
		if c.Content.Dir == "" {
			return fmt.Errorf("content dir is required for yaml source")
		}
	case SourcePostgres:
		if c.Database.DSN == "" {
			return fmt.Errorf("database DSN is required for postgres source")
		}
		if c.Content.Watch {
			return fmt.Errorf("content watch requires the yaml source")
		}
	default:
		return fmt.Errorf("unknown content source: %q", c.Content.Source)
	}

	if c.Content.RefreshInterval < 0 {
		return fmt.Errorf("content refresh interval must not be negative")
	}

	if c.Redis.Enabled() && c.Redis.CacheTTL <= 0 {
		return fmt.Errorf("cache TTL must be positive")
	}

	return nil
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

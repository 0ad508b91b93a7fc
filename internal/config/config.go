package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	CORS      CORSConfig
	Auth      AuthConfig
	Geocoding GeocodingConfig
	Storage   StorageConfig
	Archive   ArchiveConfig
	Metrics   MetricsConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port     string
	Env      string
	LogLevel string
}

// DatabaseConfig holds PostgreSQL connection configuration.
type DatabaseConfig struct {
	Host        string
	Port        string
	Name        string
	User        string
	Password    string
	SSLMode     string
	PoolMin     int
	PoolMax     int
	AutoMigrate bool
}

// CORSConfig holds CORS configuration.
type CORSConfig struct {
	Origins []string
}

// AuthConfig holds the manager token verification settings.
type AuthConfig struct {
	JWTSecret string
	Issuer    string
}

// GeocodingConfig holds the geocoding collaborator settings.
// An empty APIKey disables geocoding.
type GeocodingConfig struct {
	APIKey  string
	Timeout time.Duration
}

// StorageConfig holds the listing photo store settings.
type StorageConfig struct {
	UploadsDir string
}

// ArchiveConfig holds the archival sweep settings.
type ArchiveConfig struct {
	InactiveDays int
	DryRun       bool
}

// MetricsConfig toggles the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	return LoadWithFlags(nil)
}

// LoadWithFlags reads configuration from environment variables, letting any
// flags in fs that were set on the command line take precedence.
func LoadWithFlags(fs *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	// Set defaults for development
	v.SetDefault("PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_NAME", "estatehub")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_POOL_MIN", 2)
	v.SetDefault("DB_POOL_MAX", 10)
	v.SetDefault("DB_AUTO_MIGRATE", false)
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000,http://localhost:3001")
	v.SetDefault("AUTH_JWT_ISSUER", "")
	v.SetDefault("GEOCODING_TIMEOUT", "5s")
	v.SetDefault("UPLOADS_DIR", "./uploads")
	v.SetDefault("ARCHIVE_INACTIVE_DAYS", 180)
	v.SetDefault("ARCHIVE_DRY_RUN", false)
	v.SetDefault("METRICS_ENABLED", true)

	// Bind environment variables
	v.AutomaticEnv()

	if fs != nil {
		if err := bindFlags(v, fs); err != nil {
			return nil, err
		}
	}

	// Build configuration
	cfg := &Config{
		Server: ServerConfig{
			Port:     v.GetString("PORT"),
			Env:      v.GetString("ENV"),
			LogLevel: v.GetString("LOG_LEVEL"),
		},
		Database: DatabaseConfig{
			Host:        v.GetString("DB_HOST"),
			Port:        v.GetString("DB_PORT"),
			Name:        v.GetString("DB_NAME"),
			User:        v.GetString("DB_USER"),
			Password:    v.GetString("DB_PASSWORD"),
			SSLMode:     v.GetString("DB_SSLMODE"),
			PoolMin:     v.GetInt("DB_POOL_MIN"),
			PoolMax:     v.GetInt("DB_POOL_MAX"),
			AutoMigrate: v.GetBool("DB_AUTO_MIGRATE"),
		},
		CORS: CORSConfig{
			Origins: parseOrigins(v.GetString("CORS_ORIGINS")),
		},
		Auth: AuthConfig{
			JWTSecret: v.GetString("AUTH_JWT_SECRET"),
			Issuer:    v.GetString("AUTH_JWT_ISSUER"),
		},
		Geocoding: GeocodingConfig{
			APIKey:  v.GetString("GEOCODING_API_KEY"),
			Timeout: v.GetDuration("GEOCODING_TIMEOUT"),
		},
		Storage: StorageConfig{
			UploadsDir: v.GetString("UPLOADS_DIR"),
		},
		Archive: ArchiveConfig{
			InactiveDays: v.GetInt("ARCHIVE_INACTIVE_DAYS"),
			DryRun:       v.GetBool("ARCHIVE_DRY_RUN"),
		},
		Metrics: MetricsConfig{
			Enabled: v.GetBool("METRICS_ENABLED"),
		},
	}

	// Validate required fields
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// flagKeys maps command line flags to configuration keys.
var flagKeys = map[string]string{
	"days":    "ARCHIVE_INACTIVE_DAYS",
	"dry-run": "ARCHIVE_DRY_RUN",
}

func bindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	for name, key := range flagKeys {
		flag := fs.Lookup(name)
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("failed to bind flag --%s: %w", name, err)
		}
	}
	return nil
}

// Validate checks that required configuration is present and valid.
func (c *Config) Validate() error {
	// Validate server config
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}
	switch strings.ToLower(c.Server.LogLevel) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("LOG_LEVEL must be one of debug, info, warn, error")
	}

	// Validate database config
	if c.Database.Host == "" {
		return fmt.Errorf("DB_HOST is required")
	}
	if c.Database.Port == "" {
		return fmt.Errorf("DB_PORT is required")
	}
	if c.Database.Name == "" {
		return fmt.Errorf("DB_NAME is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("DB_USER is required")
	}
	if c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.Database.PoolMin < 0 {
		return fmt.Errorf("DB_POOL_MIN must be non-negative")
	}
	if c.Database.PoolMax < 1 {
		return fmt.Errorf("DB_POOL_MAX must be at least 1")
	}
	if c.Database.PoolMin > c.Database.PoolMax {
		return fmt.Errorf("DB_POOL_MIN must be less than or equal to DB_POOL_MAX")
	}

	// Validate CORS config
	if len(c.CORS.Origins) == 0 {
		return fmt.Errorf("CORS_ORIGINS is required")
	}

	// Manager tokens cannot be verified without a secret outside development
	if c.Auth.JWTSecret == "" && c.Server.Env == "production" {
		return fmt.Errorf("AUTH_JWT_SECRET is required in production")
	}

	if c.Geocoding.Timeout <= 0 {
		return fmt.Errorf("GEOCODING_TIMEOUT must be positive")
	}
	if c.Storage.UploadsDir == "" {
		return fmt.Errorf("UPLOADS_DIR is required")
	}
	if c.Archive.InactiveDays < 1 {
		return fmt.Errorf("ARCHIVE_INACTIVE_DAYS must be at least 1")
	}

	return nil
}

// parseOrigins splits a comma-separated string of origins into a slice.
func parseOrigins(origins string) []string {
	if origins == "" {
		return []string{}
	}

	parts := strings.Split(origins, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

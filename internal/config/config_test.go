package config

import (
	"os"
	"testing"
	"time"

	"github.com/spf13/pflag"
)

func TestLoad_WithDefaults(t *testing.T) {
	clearConfigEnvVars(t)

	// Set only required env var (password has no default)
	t.Setenv("DB_PASSWORD", "testpass")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Server.Port != "8080" {
		t.Errorf("Expected port 8080, got %s", cfg.Server.Port)
	}
	if cfg.Server.Env != "development" {
		t.Errorf("Expected env development, got %s", cfg.Server.Env)
	}
	if cfg.Database.Host != "localhost" {
		t.Errorf("Expected host localhost, got %s", cfg.Database.Host)
	}
	if cfg.Database.Name != "estatehub" {
		t.Errorf("Expected db name estatehub, got %s", cfg.Database.Name)
	}
	if cfg.Database.PoolMin != 2 || cfg.Database.PoolMax != 10 {
		t.Errorf("Expected pool 2..10, got %d..%d", cfg.Database.PoolMin, cfg.Database.PoolMax)
	}
	if cfg.Database.AutoMigrate {
		t.Error("Expected auto migrate to default to false")
	}
	if cfg.Database.SSLMode != "disable" {
		t.Errorf("Expected sslmode disable, got %s", cfg.Database.SSLMode)
	}
	if len(cfg.CORS.Origins) != 2 {
		t.Errorf("Expected 2 CORS origins, got %d", len(cfg.CORS.Origins))
	}
	if cfg.Geocoding.APIKey != "" {
		t.Errorf("Expected geocoding to be disabled by default, got key %q", cfg.Geocoding.APIKey)
	}
	if cfg.Geocoding.Timeout != 5*time.Second {
		t.Errorf("Expected geocoding timeout 5s, got %s", cfg.Geocoding.Timeout)
	}
	if cfg.Storage.UploadsDir != "./uploads" {
		t.Errorf("Expected uploads dir ./uploads, got %s", cfg.Storage.UploadsDir)
	}
	if cfg.Archive.InactiveDays != 180 {
		t.Errorf("Expected 180 inactive days, got %d", cfg.Archive.InactiveDays)
	}
	if !cfg.Metrics.Enabled {
		t.Error("Expected metrics to be enabled by default")
	}
}

func TestLoad_WithEnvironmentVariables(t *testing.T) {
	clearConfigEnvVars(t)

	t.Setenv("PORT", "9090")
	t.Setenv("ENV", "production")
	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_PORT", "5433")
	t.Setenv("DB_NAME", "testdb")
	t.Setenv("DB_USER", "testuser")
	t.Setenv("DB_PASSWORD", "testpass")
	t.Setenv("DB_POOL_MIN", "5")
	t.Setenv("DB_POOL_MAX", "20")
	t.Setenv("DB_AUTO_MIGRATE", "true")
	t.Setenv("CORS_ORIGINS", "http://example.com,https://app.example.com")
	t.Setenv("AUTH_JWT_SECRET", "s3cret")
	t.Setenv("AUTH_JWT_ISSUER", "https://id.example.com")
	t.Setenv("GEOCODING_API_KEY", "AIzaTestKey")
	t.Setenv("GEOCODING_TIMEOUT", "750ms")
	t.Setenv("UPLOADS_DIR", "/var/lib/estatehub/uploads")
	t.Setenv("ARCHIVE_INACTIVE_DAYS", "90")
	t.Setenv("METRICS_ENABLED", "false")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Server.Port != "9090" || cfg.Server.Env != "production" || cfg.Server.LogLevel != "warn" {
		t.Errorf("Unexpected server config: %+v", cfg.Server)
	}
	if cfg.Database.Host != "db.internal" || cfg.Database.Port != "5433" || cfg.Database.Name != "testdb" {
		t.Errorf("Unexpected database config: %+v", cfg.Database)
	}
	if cfg.Database.PoolMin != 5 || cfg.Database.PoolMax != 20 || !cfg.Database.AutoMigrate {
		t.Errorf("Unexpected pool config: %+v", cfg.Database)
	}
	if cfg.CORS.Origins[0] != "http://example.com" {
		t.Errorf("Expected first origin http://example.com, got %s", cfg.CORS.Origins[0])
	}
	if cfg.Auth.JWTSecret != "s3cret" || cfg.Auth.Issuer != "https://id.example.com" {
		t.Errorf("Unexpected auth config: %+v", cfg.Auth)
	}
	if cfg.Geocoding.APIKey != "AIzaTestKey" || cfg.Geocoding.Timeout != 750*time.Millisecond {
		t.Errorf("Unexpected geocoding config: %+v", cfg.Geocoding)
	}
	if cfg.Storage.UploadsDir != "/var/lib/estatehub/uploads" {
		t.Errorf("Unexpected uploads dir: %s", cfg.Storage.UploadsDir)
	}
	if cfg.Archive.InactiveDays != 90 {
		t.Errorf("Expected 90 inactive days, got %d", cfg.Archive.InactiveDays)
	}
	if cfg.Metrics.Enabled {
		t.Error("Expected metrics to be disabled")
	}
}

func TestLoad_MissingPassword(t *testing.T) {
	clearConfigEnvVars(t)

	_, err := Load()
	if err == nil {
		t.Error("Expected error when DB_PASSWORD is missing")
	}
}

func TestLoad_ProductionRequiresJWTSecret(t *testing.T) {
	clearConfigEnvVars(t)
	t.Setenv("DB_PASSWORD", "testpass")
	t.Setenv("ENV", "production")

	_, err := Load()
	if err == nil {
		t.Error("Expected error when AUTH_JWT_SECRET is missing in production")
	}
}

func TestLoadWithFlags_FlagsOverrideEnvironment(t *testing.T) {
	clearConfigEnvVars(t)
	t.Setenv("DB_PASSWORD", "testpass")
	t.Setenv("ARCHIVE_INACTIVE_DAYS", "90")

	fs := pflag.NewFlagSet("archiver", pflag.ContinueOnError)
	fs.Int("days", 180, "")
	fs.Bool("dry-run", false, "")
	if err := fs.Parse([]string{"--days=30", "--dry-run"}); err != nil {
		t.Fatalf("Parse() failed: %v", err)
	}

	cfg, err := LoadWithFlags(fs)
	if err != nil {
		t.Fatalf("LoadWithFlags() failed: %v", err)
	}

	if cfg.Archive.InactiveDays != 30 {
		t.Errorf("Expected flag value 30, got %d", cfg.Archive.InactiveDays)
	}
	if !cfg.Archive.DryRun {
		t.Error("Expected dry run from flag")
	}
}

func TestLoadWithFlags_UnsetFlagsKeepEnvironment(t *testing.T) {
	clearConfigEnvVars(t)
	t.Setenv("DB_PASSWORD", "testpass")
	t.Setenv("ARCHIVE_INACTIVE_DAYS", "90")

	fs := pflag.NewFlagSet("archiver", pflag.ContinueOnError)
	fs.Int("days", 180, "")
	if err := fs.Parse(nil); err != nil {
		t.Fatalf("Parse() failed: %v", err)
	}

	cfg, err := LoadWithFlags(fs)
	if err != nil {
		t.Fatalf("LoadWithFlags() failed: %v", err)
	}

	if cfg.Archive.InactiveDays != 90 {
		t.Errorf("Expected env value 90, got %d", cfg.Archive.InactiveDays)
	}
}

// validConfig returns a configuration that passes Validate.
func validConfig() *Config {
	return &Config{
		Server: ServerConfig{Port: "8080", Env: "development"},
		Database: DatabaseConfig{
			Host: "localhost", Port: "5432", Name: "estatehub",
			User: "postgres", Password: "postgres", PoolMin: 2, PoolMax: 10,
		},
		CORS:      CORSConfig{Origins: []string{"http://localhost:3000"}},
		Geocoding: GeocodingConfig{Timeout: time.Second},
		Storage:   StorageConfig{UploadsDir: "./uploads"},
		Archive:   ArchiveConfig{InactiveDays: 180},
	}
}

func TestValidate_InvalidPoolSizes(t *testing.T) {
	tests := []struct {
		name    string
		poolMin int
		poolMax int
		wantErr bool
	}{
		{name: "negative pool min", poolMin: -1, poolMax: 10, wantErr: true},
		{name: "zero pool max", poolMin: 0, poolMax: 0, wantErr: true},
		{name: "pool min greater than max", poolMin: 15, poolMax: 10, wantErr: true},
		{name: "valid pool sizes", poolMin: 2, poolMax: 10, wantErr: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			cfg.Database.PoolMin = tt.poolMin
			cfg.Database.PoolMax = tt.poolMax

			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidate_MissingRequiredFields(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"missing port", func(c *Config) { c.Server.Port = "" }},
		{"unknown log level", func(c *Config) { c.Server.LogLevel = "verbose" }},
		{"missing db host", func(c *Config) { c.Database.Host = "" }},
		{"missing db password", func(c *Config) { c.Database.Password = "" }},
		{"missing CORS origins", func(c *Config) { c.CORS.Origins = []string{} }},
		{"production without secret", func(c *Config) { c.Server.Env = "production" }},
		{"zero geocoding timeout", func(c *Config) { c.Geocoding.Timeout = 0 }},
		{"missing uploads dir", func(c *Config) { c.Storage.UploadsDir = "" }},
		{"zero inactive days", func(c *Config) { c.Archive.InactiveDays = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			if err := cfg.Validate(); err == nil {
				t.Error("Expected validation error but got none")
			}
		})
	}
}

func TestParseOrigins(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		expect []string
	}{
		{name: "single origin", input: "http://localhost:3000", expect: []string{"http://localhost:3000"}},
		{
			name:   "origins with spaces",
			input:  " http://localhost:3000 , http://localhost:3001 ",
			expect: []string{"http://localhost:3000", "http://localhost:3001"},
		},
		{name: "empty string", input: "", expect: []string{}},
		{name: "only commas", input: ",,,", expect: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := parseOrigins(tt.input)
			if len(result) != len(tt.expect) {
				t.Errorf("Expected %d origins, got %d", len(tt.expect), len(result))
				return
			}
			for i, origin := range result {
				if origin != tt.expect[i] {
					t.Errorf("Expected origin %s at index %d, got %s", tt.expect[i], i, origin)
				}
			}
		})
	}
}

// clearConfigEnvVars unsets every configuration variable for the duration of the test.
func clearConfigEnvVars(t *testing.T) {
	t.Helper()
	keys := []string{
		"PORT", "ENV", "LOG_LEVEL",
		"DB_HOST", "DB_PORT", "DB_NAME", "DB_USER", "DB_PASSWORD",
		"DB_POOL_MIN", "DB_POOL_MAX", "DB_AUTO_MIGRATE", "CORS_ORIGINS",
		"AUTH_JWT_SECRET", "AUTH_JWT_ISSUER", "GEOCODING_API_KEY", "GEOCODING_TIMEOUT",
		"UPLOADS_DIR", "ARCHIVE_INACTIVE_DAYS", "ARCHIVE_DRY_RUN", "METRICS_ENABLED",
	}
	for _, key := range keys {
		// t.Setenv registers the restore; Unsetenv then removes the variable
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

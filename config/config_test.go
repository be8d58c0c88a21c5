package config

import (
	"os"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

var configEnvVars = []string{
	"NUTRISCAN_SERVER_PORT",
	"NUTRISCAN_SERVER_ENVIRONMENT",
	"NUTRISCAN_SERVER_ALLOWED_ORIGINS",
	"NUTRISCAN_OPENFOODFACTS_BASE_URL",
	"NUTRISCAN_OPENFOODFACTS_TIMEOUT",
	"NUTRISCAN_REASONING_API_KEY",
	"NUTRISCAN_REASONING_MODEL",
	"NUTRISCAN_REASONING_TIMEOUT",
	"NUTRISCAN_CACHE_TYPE",
	"NUTRISCAN_CACHE_SIZE",
	"NUTRISCAN_CACHE_TTL",
	"NUTRISCAN_RATELIMIT_PER_IP",
	"NUTRISCAN_STORAGE_TYPE",
	"NUTRISCAN_STORAGE_LOCAL_DIR",
	"NUTRISCAN_STORAGE_MINIO_ENDPOINT",
	"NUTRISCAN_SESSION_SECRET",
	"NUTRISCAN_LOG_LEVEL",
}

func TestLoad(t *testing.T) {
	cleanupEnv := func() {
		for _, key := range configEnvVars {
			os.Unsetenv(key)
		}
	}

	t.Run("loads with defaults when no env vars set", func(t *testing.T) {
		cleanupEnv()
		os.Setenv("NUTRISCAN_REASONING_API_KEY", "test-key")
		defer cleanupEnv()

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v, want nil", err)
		}

		if cfg.Server.Port != "8080" {
			t.Errorf("Server.Port = %s, want 8080", cfg.Server.Port)
		}
		if cfg.Server.Environment != "development" {
			t.Errorf("Server.Environment = %s, want development", cfg.Server.Environment)
		}
		if cfg.OpenFoodFacts.BaseURL != "https://world.openfoodfacts.org" {
			t.Errorf("OpenFoodFacts.BaseURL = %s, want https://world.openfoodfacts.org", cfg.OpenFoodFacts.BaseURL)
		}
		if cfg.OpenFoodFacts.Timeout != 30*time.Second {
			t.Errorf("OpenFoodFacts.Timeout = %v, want 30s", cfg.OpenFoodFacts.Timeout)
		}
		if cfg.Reasoning.Model != "gemini-2.5-flash" {
			t.Errorf("Reasoning.Model = %s, want gemini-2.5-flash", cfg.Reasoning.Model)
		}
		if cfg.Reasoning.Timeout != 60*time.Second {
			t.Errorf("Reasoning.Timeout = %v, want 60s", cfg.Reasoning.Timeout)
		}
		if cfg.Cache.Type != "memory" {
			t.Errorf("Cache.Type = %s, want memory", cfg.Cache.Type)
		}
		if cfg.Cache.TTL != 24*time.Hour {
			t.Errorf("Cache.TTL = %v, want 24h", cfg.Cache.TTL)
		}
		if cfg.RateLimit.PerIP != 30 {
			t.Errorf("RateLimit.PerIP = %d, want 30", cfg.RateLimit.PerIP)
		}
		if cfg.Storage.Type != "none" {
			t.Errorf("Storage.Type = %s, want none", cfg.Storage.Type)
		}
		if cfg.Session.Name != "nutriscan_profile" {
			t.Errorf("Session.Name = %s, want nutriscan_profile", cfg.Session.Name)
		}
	})

	t.Run("loads custom values from environment variables", func(t *testing.T) {
		cleanupEnv()
		os.Setenv("NUTRISCAN_SERVER_PORT", "9090")
		os.Setenv("NUTRISCAN_SERVER_ENVIRONMENT", "production")
		os.Setenv("NUTRISCAN_REASONING_API_KEY", "custom-api-key")
		os.Setenv("NUTRISCAN_REASONING_MODEL", "gemini-2.5-pro")
		os.Setenv("NUTRISCAN_OPENFOODFACTS_BASE_URL", "https://custom.api.com")
		os.Setenv("NUTRISCAN_CACHE_TYPE", "none")
		os.Setenv("NUTRISCAN_CACHE_TTL", "1h")
		os.Setenv("NUTRISCAN_RATELIMIT_PER_IP", "200")
		os.Setenv("NUTRISCAN_STORAGE_TYPE", "local")
		os.Setenv("NUTRISCAN_STORAGE_LOCAL_DIR", "/tmp/uploads")
		os.Setenv("NUTRISCAN_SESSION_SECRET", "super-secret")
		defer cleanupEnv()

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v, want nil", err)
		}

		if cfg.Server.Port != "9090" {
			t.Errorf("Server.Port = %s, want 9090", cfg.Server.Port)
		}
		if !cfg.IsProduction() {
			t.Errorf("IsProduction() = false, want true")
		}
		if cfg.Reasoning.APIKey != "custom-api-key" {
			t.Errorf("Reasoning.APIKey = %s, want custom-api-key", cfg.Reasoning.APIKey)
		}
		if cfg.Reasoning.Model != "gemini-2.5-pro" {
			t.Errorf("Reasoning.Model = %s, want gemini-2.5-pro", cfg.Reasoning.Model)
		}
		if cfg.OpenFoodFacts.BaseURL != "https://custom.api.com" {
			t.Errorf("OpenFoodFacts.BaseURL = %s, want https://custom.api.com", cfg.OpenFoodFacts.BaseURL)
		}
		if cfg.Cache.Type != "none" {
			t.Errorf("Cache.Type = %s, want none", cfg.Cache.Type)
		}
		if cfg.Cache.TTL != time.Hour {
			t.Errorf("Cache.TTL = %v, want 1h", cfg.Cache.TTL)
		}
		if cfg.RateLimit.PerIP != 200 {
			t.Errorf("RateLimit.PerIP = %d, want 200", cfg.RateLimit.PerIP)
		}
		if cfg.Storage.LocalDir != "/tmp/uploads" {
			t.Errorf("Storage.LocalDir = %s, want /tmp/uploads", cfg.Storage.LocalDir)
		}
		if cfg.Session.Secret != "super-secret" {
			t.Errorf("Session.Secret = %s, want super-secret", cfg.Session.Secret)
		}
	})

	t.Run("fails validation when API key is missing", func(t *testing.T) {
		cleanupEnv()
		defer cleanupEnv()

		_, err := Load()
		if err == nil {
			t.Fatal("Load() error = nil, want error for missing API key")
		}
		if err.Error() != "invalid configuration: reasoning API key is required (set NUTRISCAN_REASONING_API_KEY)" {
			t.Errorf("Load() error = %v, want 'reasoning API key is required'", err)
		}
	})

	t.Run("fails validation for invalid cache type", func(t *testing.T) {
		cleanupEnv()
		os.Setenv("NUTRISCAN_REASONING_API_KEY", "test-key")
		os.Setenv("NUTRISCAN_CACHE_TYPE", "redis")
		defer cleanupEnv()

		if _, err := Load(); err == nil {
			t.Error("Load() error = nil, want error for invalid cache type")
		}
	})

	t.Run("fails validation when minio endpoint missing", func(t *testing.T) {
		cleanupEnv()
		os.Setenv("NUTRISCAN_REASONING_API_KEY", "test-key")
		os.Setenv("NUTRISCAN_STORAGE_TYPE", "minio")
		defer cleanupEnv()

		if _, err := Load(); err == nil {
			t.Error("Load() error = nil, want error for missing minio settings")
		}
	})
}

func TestLoadEnvFile(t *testing.T) {
	t.Run("returns nil when .env file doesn't exist", func(t *testing.T) {
		t.Chdir(t.TempDir())

		if err := loadEnvFile(); err != nil {
			t.Errorf("loadEnvFile() error = %v, want nil when file doesn't exist", err)
		}
	})

	t.Run("loads variables and skips comments", func(t *testing.T) {
		t.Chdir(t.TempDir())

		envContent := `
# Comment line
TEST_VAR_1=value1
   # indented comment

TEST_VAR_2=value2
# TEST_COMMENTED=should_not_load
`
		if err := os.WriteFile(".env", []byte(envContent), 0644); err != nil {
			t.Fatalf("Failed to create test .env file: %v", err)
		}

		os.Unsetenv("TEST_VAR_1")
		os.Unsetenv("TEST_VAR_2")
		os.Unsetenv("TEST_COMMENTED")
		defer func() {
			os.Unsetenv("TEST_VAR_1")
			os.Unsetenv("TEST_VAR_2")
		}()

		if err := loadEnvFile(); err != nil {
			t.Fatalf("loadEnvFile() error = %v, want nil", err)
		}

		if os.Getenv("TEST_VAR_1") != "value1" {
			t.Errorf("TEST_VAR_1 = %s, want value1", os.Getenv("TEST_VAR_1"))
		}
		if os.Getenv("TEST_VAR_2") != "value2" {
			t.Errorf("TEST_VAR_2 = %s, want value2", os.Getenv("TEST_VAR_2"))
		}
		if os.Getenv("TEST_COMMENTED") != "" {
			t.Errorf("TEST_COMMENTED should not be loaded from comment")
		}
	})

	t.Run("doesn't override existing environment variables", func(t *testing.T) {
		t.Chdir(t.TempDir())
		t.Setenv("TEST_OVERRIDE", "existing-value")

		if err := os.WriteFile(".env", []byte("TEST_OVERRIDE=new-value"), 0644); err != nil {
			t.Fatalf("Failed to create test .env file: %v", err)
		}

		if err := loadEnvFile(); err != nil {
			t.Fatalf("loadEnvFile() error = %v, want nil", err)
		}

		if os.Getenv("TEST_OVERRIDE") != "existing-value" {
			t.Errorf("TEST_OVERRIDE = %s, want existing-value (should not override)", os.Getenv("TEST_OVERRIDE"))
		}
	})
}

func validConfig() *Config {
	return &Config{
		Server:    ServerConfig{Environment: "development"},
		Reasoning: ReasoningConfig{Provider: "gemini", APIKey: "test-key"},
		Cache:     CacheConfig{Type: "memory", Size: 16},
		Storage:   StorageConfig{Type: "none"},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid defaults", func(c *Config) {}, false},
		{"empty API key", func(c *Config) { c.Reasoning.APIKey = "" }, true},
		{"unknown provider", func(c *Config) { c.Reasoning.Provider = "openai" }, true},
		{"invalid cache type", func(c *Config) { c.Cache.Type = "invalid-type" }, true},
		{"memory cache without size", func(c *Config) { c.Cache.Size = 0 }, true},
		{"cache disabled ignores size", func(c *Config) { c.Cache = CacheConfig{Type: "none"} }, false},
		{"local storage without dir", func(c *Config) { c.Storage = StorageConfig{Type: "local"} }, true},
		{"local storage with dir", func(c *Config) { c.Storage = StorageConfig{Type: "local", LocalDir: "uploads"} }, false},
		{"minio without credentials", func(c *Config) {
			c.Storage = StorageConfig{Type: "minio", Minio: MinioConfig{Endpoint: "localhost:9000", Bucket: "b"}}
		}, true},
		{"minio complete", func(c *Config) {
			c.Storage = StorageConfig{Type: "minio", Minio: MinioConfig{Endpoint: "localhost:9000", AccessKey: "a", SecretKey: "s", Bucket: "b"}}
		}, false},
		{"unknown storage type", func(c *Config) { c.Storage.Type = "s3" }, true},
		{"production without session secret", func(c *Config) { c.Server.Environment = "production" }, true},
		{"production with session secret", func(c *Config) {
			c.Server.Environment = "production"
			c.Session.Secret = "secret"
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := validate(cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestNewLogger(t *testing.T) {
	tests := []struct {
		level string
		want  zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"WARN", zerolog.WarnLevel},
		{"", zerolog.InfoLevel},
		{"bogus", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			logger := NewLogger("production", tt.level)
			if logger.GetLevel() != tt.want {
				t.Errorf("GetLevel() = %v, want %v", logger.GetLevel(), tt.want)
			}
		})
	}
}

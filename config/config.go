package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server        ServerConfig        `mapstructure:"server"`
	OpenFoodFacts OpenFoodFactsConfig `mapstructure:"openfoodfacts"`
	Reasoning     ReasoningConfig     `mapstructure:"reasoning"`
	Cache         CacheConfig         `mapstructure:"cache"`
	RateLimit     RateLimitConfig     `mapstructure:"ratelimit"`
	Storage       StorageConfig       `mapstructure:"storage"`
	Session       SessionConfig       `mapstructure:"session"`
	Log           LogConfig           `mapstructure:"log"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port            string        `mapstructure:"port"`
	Environment     string        `mapstructure:"environment"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins"`
	MaxUploadBytes  int64         `mapstructure:"max_upload_bytes"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// OpenFoodFactsConfig holds product database API configuration
type OpenFoodFactsConfig struct {
	BaseURL           string        `mapstructure:"base_url"`
	UserAgent         string        `mapstructure:"user_agent"`
	Timeout           time.Duration `mapstructure:"timeout"`
	RequestsPerMinute int           `mapstructure:"requests_per_minute"`
}

// ReasoningConfig holds the language model settings
type ReasoningConfig struct {
	Provider          string        `mapstructure:"provider"` // "gemini"
	APIKey            string        `mapstructure:"api_key"`
	Model             string        `mapstructure:"model"`
	MaxOutputTokens   int           `mapstructure:"max_output_tokens"`
	Temperature       float64       `mapstructure:"temperature"`
	Timeout           time.Duration `mapstructure:"timeout"`
	RequestsPerMinute int           `mapstructure:"requests_per_minute"`
}

// CacheConfig holds cache-related configuration
type CacheConfig struct {
	Type string        `mapstructure:"type"` // "memory" or "none"
	Size int           `mapstructure:"size"`
	TTL  time.Duration `mapstructure:"ttl"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	PerIP int `mapstructure:"per_ip"` // requests per minute per client IP
}

// StorageConfig holds upload archive configuration
type StorageConfig struct {
	Type     string      `mapstructure:"type"` // "none", "local" or "minio"
	LocalDir string      `mapstructure:"local_dir"`
	Minio    MinioConfig `mapstructure:"minio"`
}

// MinioConfig holds object storage connection settings
type MinioConfig struct {
	Endpoint  string `mapstructure:"endpoint"`
	Region    string `mapstructure:"region"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Bucket    string `mapstructure:"bucket"`
	UseSSL    bool   `mapstructure:"use_ssl"`
}

// SessionConfig holds the profile cookie session settings
type SessionConfig struct {
	Secret string `mapstructure:"secret"`
	Name   string `mapstructure:"name"`
	MaxAge int    `mapstructure:"max_age"` // seconds
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// IsProduction reports whether the server runs in production mode
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Server.Environment, "production")
}

// Load loads configuration from a .env file, environment variables and config files
func Load() (*Config, error) {
	if err := loadEnvFile(); err != nil {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/nutriscan/")

	// NUTRISCAN_REASONING_API_KEY -> reasoning.api_key
	v.SetEnvPrefix("NUTRISCAN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Config file is optional
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// loadEnvFile loads ./.env when present. Variables already set in the
// environment win over the file.
func loadEnvFile() error {
	err := godotenv.Load()
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// setDefaults sets default configuration values.
// Every key needs a default so AutomaticEnv values reach Unmarshal.
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("server.max_upload_bytes", 10<<20)
	v.SetDefault("server.shutdown_timeout", "10s")

	// Open Food Facts defaults
	v.SetDefault("openfoodfacts.base_url", "https://world.openfoodfacts.org")
	v.SetDefault("openfoodfacts.user_agent", "NutriScan/1.0")
	v.SetDefault("openfoodfacts.timeout", "30s")
	v.SetDefault("openfoodfacts.requests_per_minute", 100)

	// Reasoning defaults
	v.SetDefault("reasoning.provider", "gemini")
	v.SetDefault("reasoning.api_key", "")
	v.SetDefault("reasoning.model", "gemini-2.5-flash")
	v.SetDefault("reasoning.max_output_tokens", 1024)
	v.SetDefault("reasoning.temperature", 0.2)
	v.SetDefault("reasoning.timeout", "60s")
	v.SetDefault("reasoning.requests_per_minute", 15)

	// Cache defaults
	v.SetDefault("cache.type", "memory")
	v.SetDefault("cache.size", 1024)
	v.SetDefault("cache.ttl", "24h")

	// Rate limit defaults
	v.SetDefault("ratelimit.per_ip", 30)

	// Storage defaults
	v.SetDefault("storage.type", "none")
	v.SetDefault("storage.local_dir", "uploads")
	v.SetDefault("storage.minio.endpoint", "")
	v.SetDefault("storage.minio.region", "us-east-1")
	v.SetDefault("storage.minio.access_key", "")
	v.SetDefault("storage.minio.secret_key", "")
	v.SetDefault("storage.minio.bucket", "nutriscan-uploads")
	v.SetDefault("storage.minio.use_ssl", false)

	// Session defaults
	v.SetDefault("session.secret", "")
	v.SetDefault("session.name", "nutriscan_profile")
	v.SetDefault("session.max_age", 30*24*60*60)

	// Log defaults
	v.SetDefault("log.level", "info")
}

// validate validates the configuration
func validate(config *Config) error {
	if config.Reasoning.Provider != "gemini" {
		return fmt.Errorf("reasoning provider must be 'gemini', got: %s", config.Reasoning.Provider)
	}

	if config.Reasoning.APIKey == "" {
		return fmt.Errorf("reasoning API key is required (set NUTRISCAN_REASONING_API_KEY)")
	}

	if config.Cache.Type != "memory" && config.Cache.Type != "none" {
		return fmt.Errorf("cache type must be 'memory' or 'none', got: %s", config.Cache.Type)
	}

	if config.Cache.Type == "memory" && config.Cache.Size <= 0 {
		return fmt.Errorf("cache size must be positive, got: %d", config.Cache.Size)
	}

	switch config.Storage.Type {
	case "none":
	case "local":
		if config.Storage.LocalDir == "" {
			return fmt.Errorf("storage local_dir is required when storage type is 'local'")
		}
	case "minio":
		m := config.Storage.Minio
		if m.Endpoint == "" || m.AccessKey == "" || m.SecretKey == "" || m.Bucket == "" {
			return fmt.Errorf("minio endpoint, access_key, secret_key and bucket are required when storage type is 'minio'")
		}
	default:
		return fmt.Errorf("storage type must be 'none', 'local' or 'minio', got: %s", config.Storage.Type)
	}

	if config.IsProduction() && config.Session.Secret == "" {
		return fmt.Errorf("session secret is required in production (set NUTRISCAN_SESSION_SECRET)")
	}

	return nil
}

// Package config provides application configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const defaultSecretKey = "dev-secret-key-change-in-production"

// Config holds application configuration values loaded from file or environment variables.
type Config struct {
	Port           string `mapstructure:"PORT"`
	Env            string `mapstructure:"APP_ENV"`
	DatabaseURL    string `mapstructure:"DATABASE_URL"`
	SecretKey      string `mapstructure:"SECRET_KEY"`
	RedisURL       string `mapstructure:"REDIS_URL"`
	AllowedOrigins string `mapstructure:"ALLOWED_ORIGINS"`

	DBMaxOpenConns           int `mapstructure:"DB_MAX_OPEN_CONNS"`
	DBMaxIdleConns           int `mapstructure:"DB_MAX_IDLE_CONNS"`
	DBConnMaxLifetimeMinutes int `mapstructure:"DB_CONN_MAX_LIFETIME_MINUTES"`

	// Media host (S3 compatible). Uploads fall back to UploadDir when the bucket is unset.
	MediaCloudName     string `mapstructure:"MEDIA_CLOUD_NAME"`
	MediaAPIKey        string `mapstructure:"MEDIA_API_KEY"`
	MediaAPISecret     string `mapstructure:"MEDIA_API_SECRET"`
	MediaEndpoint      string `mapstructure:"MEDIA_ENDPOINT"`
	MediaRegion        string `mapstructure:"MEDIA_REGION"`
	MediaPublicBaseURL string `mapstructure:"MEDIA_PUBLIC_BASE_URL"`
	MediaTimeoutSecs   int    `mapstructure:"MEDIA_TIMEOUT_SECONDS"`
	UploadDir          string `mapstructure:"UPLOAD_DIR"`
	MaxUploadMB        int    `mapstructure:"MAX_UPLOAD_MB"`
	StaticDir          string `mapstructure:"STATIC_DIR"`

	OpenAIAPIKey    string `mapstructure:"OPENAI_API_KEY"`
	OpenAIModel     string `mapstructure:"OPENAI_MODEL"`
	OpenAIBaseURL   string `mapstructure:"OPENAI_BASE_URL"`
	ChatMaxTokens   int    `mapstructure:"CHAT_MAX_TOKENS"`
	ChatTimeoutSecs int    `mapstructure:"CHAT_TIMEOUT_SECONDS"`

	BcryptCost      int `mapstructure:"BCRYPT_COST"`
	SessionTTLHours int `mapstructure:"SESSION_TTL_HOURS"`

	TracingEnabled     bool    `mapstructure:"TRACING_ENABLED"`
	TracingExporter    string  `mapstructure:"TRACING_EXPORTER"`
	OTLPEndpoint       string  `mapstructure:"OTLP_ENDPOINT"`
	TracingSampleRatio float64 `mapstructure:"TRACING_SAMPLE_RATIO"`
}

// LoadConfig loads application configuration from file and environment variables.
func LoadConfig() (*Config, error) {
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")
	viper.SetConfigName("config")
	viper.SetConfigType("yml")
	viper.AutomaticEnv()

	// The base config file is optional.
	_ = viper.ReadInConfig()

	env := viper.GetString("APP_ENV")
	if env != "" && env != "development" && env != "test" {
		viper.SetConfigName("config." + env)
		if err := viper.MergeInConfig(); err == nil {
			log.Printf("Loaded profile-specific configuration: config.%s.yml", env)
		}
	}

	setDefaults()

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}

	config.normalize()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

func setDefaults() {
	viper.SetDefault("PORT", "5000")
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("DATABASE_URL", "sqlite://cookfeed.db")
	viper.SetDefault("SECRET_KEY", defaultSecretKey)
	viper.SetDefault("REDIS_URL", "")
	viper.SetDefault("ALLOWED_ORIGINS", "http://localhost:5000,http://127.0.0.1:5000")
	viper.SetDefault("DB_MAX_OPEN_CONNS", 25)
	viper.SetDefault("DB_MAX_IDLE_CONNS", 5)
	viper.SetDefault("DB_CONN_MAX_LIFETIME_MINUTES", 5)
	viper.SetDefault("MEDIA_CLOUD_NAME", "")
	viper.SetDefault("MEDIA_API_KEY", "")
	viper.SetDefault("MEDIA_API_SECRET", "")
	viper.SetDefault("MEDIA_ENDPOINT", "")
	viper.SetDefault("MEDIA_REGION", "us-east-1")
	viper.SetDefault("MEDIA_PUBLIC_BASE_URL", "")
	viper.SetDefault("MEDIA_TIMEOUT_SECONDS", 15)
	viper.SetDefault("UPLOAD_DIR", "static/uploads")
	viper.SetDefault("MAX_UPLOAD_MB", 16)
	viper.SetDefault("STATIC_DIR", "static")
	viper.SetDefault("OPENAI_API_KEY", "")
	viper.SetDefault("OPENAI_MODEL", "gpt-4o-mini")
	viper.SetDefault("OPENAI_BASE_URL", "")
	viper.SetDefault("CHAT_MAX_TOKENS", 500)
	viper.SetDefault("CHAT_TIMEOUT_SECONDS", 30)
	viper.SetDefault("BCRYPT_COST", 10)
	viper.SetDefault("SESSION_TTL_HOURS", 168)
	viper.SetDefault("TRACING_ENABLED", false)
	viper.SetDefault("TRACING_EXPORTER", "stdout")
	viper.SetDefault("OTLP_ENDPOINT", "localhost:4318")
	viper.SetDefault("TRACING_SAMPLE_RATIO", 1.0)
}

func (c *Config) normalize() {
	c.Env = strings.ToLower(strings.TrimSpace(c.Env))
	c.DatabaseURL = strings.TrimSpace(c.DatabaseURL)
	c.TracingExporter = strings.ToLower(strings.TrimSpace(c.TracingExporter))
	c.OpenAIAPIKey = strings.TrimSpace(c.OpenAIAPIKey)
}

// Validate ensures that required configuration values are present and meet security standards.
func (c *Config) Validate() error {
	if c.Port == "" {
		return errors.New("PORT is required")
	}
	if c.SecretKey == "" {
		return errors.New("SECRET_KEY is required")
	}
	if c.DatabaseURL == "" {
		return errors.New("DATABASE_URL is required")
	}
	if _, _, err := c.DatabaseDriver(); err != nil {
		return err
	}
	if c.MaxUploadMB <= 0 {
		return errors.New("MAX_UPLOAD_MB must be positive")
	}
	// CORS is mounted with credentials, which cannot be combined with a wildcard origin.
	for _, origin := range strings.Split(c.AllowedOrigins, ",") {
		if strings.TrimSpace(origin) == "*" {
			return errors.New("ALLOWED_ORIGINS must list explicit origins; '*' is not allowed with credentialed CORS")
		}
	}
	if c.ChatMaxTokens <= 0 {
		return errors.New("CHAT_MAX_TOKENS must be positive")
	}
	if c.TracingSampleRatio < 0 || c.TracingSampleRatio > 1 {
		return errors.New("TRACING_SAMPLE_RATIO must be between 0 and 1")
	}
	if c.MediaCloudName != "" && (c.MediaAPIKey == "" || c.MediaAPISecret == "") {
		return errors.New("MEDIA_API_KEY and MEDIA_API_SECRET are required when MEDIA_CLOUD_NAME is set")
	}

	if c.IsProduction() {
		if c.SecretKey == defaultSecretKey {
			return errors.New("SECRET_KEY must be changed from the default value in production")
		}
		if len(c.SecretKey) < 32 {
			return errors.New("SECRET_KEY must be at least 32 characters in production")
		}
		if c.OpenAIAPIKey == "" {
			log.Println("WARNING: OPENAI_API_KEY is not set. The chat assistant will report itself unavailable.")
		}
	} else if len(c.SecretKey) < 32 {
		log.Println("WARNING: SECRET_KEY is shorter than 32 characters. Consider using a stronger secret for production.")
	}

	return nil
}

// IsProduction reports whether the app runs with production settings.
func (c *Config) IsProduction() bool {
	return c.Env == "production" || c.Env == "prod"
}

// DatabaseDriver splits DATABASE_URL into a driver name and a driver specific DSN.
// postgres:// and postgresql:// URLs are passed through unchanged.
func (c *Config) DatabaseDriver() (driver, dsn string, err error) {
	switch {
	case strings.HasPrefix(c.DatabaseURL, "postgres://"), strings.HasPrefix(c.DatabaseURL, "postgresql://"):
		return "postgres", c.DatabaseURL, nil
	case strings.HasPrefix(c.DatabaseURL, "sqlite://"):
		path := strings.TrimPrefix(c.DatabaseURL, "sqlite://")
		if path == "" {
			return "", "", errors.New("DATABASE_URL sqlite:// requires a file path")
		}
		return "sqlite", path, nil
	default:
		return "", "", fmt.Errorf("DATABASE_URL has unsupported scheme: %q", c.DatabaseURL)
	}
}

// MediaConfigured reports whether uploads go to the remote media host.
func (c *Config) MediaConfigured() bool {
	return c.MediaCloudName != ""
}

// ChatConfigured reports whether a completion API key is present.
func (c *Config) ChatConfigured() bool {
	return c.OpenAIAPIKey != ""
}

func (c *Config) ChatTimeout() time.Duration {
	return time.Duration(c.ChatTimeoutSecs) * time.Second
}

func (c *Config) MediaTimeout() time.Duration {
	return time.Duration(c.MediaTimeoutSecs) * time.Second
}

func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLHours) * time.Hour
}

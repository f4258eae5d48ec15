// Package config loads application settings from .env, config.yml and the environment.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const defaultSessionSecret = "secret_key_change_me"

// Config holds application configuration values.
type Config struct {
	Env      string `mapstructure:"APP_ENV"`
	Port     string `mapstructure:"PORT"`
	SiteName string `mapstructure:"SITE_NAME"`
	SiteURL  string `mapstructure:"SITE_URL"`

	DBDriver    string `mapstructure:"DB_DRIVER"`
	DatabaseURL string `mapstructure:"DATABASE_URL"`

	SessionSecret string `mapstructure:"SESSION_SECRET"`

	RedisURL      string        `mapstructure:"REDIS_URL"`
	CacheSize     int           `mapstructure:"CACHE_SIZE"`
	IndexCacheTTL time.Duration `mapstructure:"INDEX_CACHE_TTL"`
	PostPerPage   int           `mapstructure:"POST_PER_PAGE"`

	MediaBackend   string `mapstructure:"MEDIA_BACKEND"`
	MediaRoot      string `mapstructure:"MEDIA_ROOT"`
	MaxUploadMB    int64  `mapstructure:"MAX_UPLOAD_MB"`
	S3Endpoint     string `mapstructure:"S3_ENDPOINT"`
	S3Region       string `mapstructure:"S3_REGION"`
	S3Bucket       string `mapstructure:"S3_BUCKET"`
	S3AccessKeyID  string `mapstructure:"S3_ACCESS_KEY_ID"`
	S3SecretKey    string `mapstructure:"S3_SECRET_ACCESS_KEY"`
	S3UsePathStyle bool   `mapstructure:"S3_USE_PATH_STYLE"`
	S3PublicURL    string `mapstructure:"S3_PUBLIC_URL"`

	LogLevel  string `mapstructure:"LOG_LEVEL"`
	LogPretty bool   `mapstructure:"LOG_PRETTY"`
}

var keys = []string{
	"APP_ENV", "PORT", "SITE_NAME", "SITE_URL",
	"DB_DRIVER", "DATABASE_URL",
	"SESSION_SECRET",
	"REDIS_URL", "CACHE_SIZE", "INDEX_CACHE_TTL", "POST_PER_PAGE",
	"MEDIA_BACKEND", "MEDIA_ROOT", "MAX_UPLOAD_MB",
	"S3_ENDPOINT", "S3_REGION", "S3_BUCKET", "S3_ACCESS_KEY_ID", "S3_SECRET_ACCESS_KEY",
	"S3_USE_PATH_STYLE", "S3_PUBLIC_URL",
	"LOG_LEVEL", "LOG_PRETTY",
}

// Load reads .env (if present), an optional config.yml and the environment.
// Environment variables win over the file.
func Load() (*Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	v := viper.New()
	v.AddConfigPath(".")
	v.SetConfigName("config")
	v.SetConfigType("yml")
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	v.AutomaticEnv()
	// Unmarshal only sees env values for keys viper already knows about.
	for _, k := range keys {
		_ = v.BindEnv(k)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("PORT", "8080")
	v.SetDefault("SITE_NAME", "Yatube")
	v.SetDefault("SITE_URL", "http://localhost:8080")
	v.SetDefault("DB_DRIVER", "postgres")
	v.SetDefault("DATABASE_URL", "host=localhost user=postgres password=postgres dbname=yatube port=5432 sslmode=disable")
	v.SetDefault("SESSION_SECRET", defaultSessionSecret)
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("CACHE_SIZE", 500)
	v.SetDefault("INDEX_CACHE_TTL", "20s")
	v.SetDefault("POST_PER_PAGE", 10)
	v.SetDefault("MEDIA_BACKEND", "local")
	v.SetDefault("MEDIA_ROOT", "./media")
	v.SetDefault("MAX_UPLOAD_MB", 5)
	v.SetDefault("S3_REGION", "us-east-1")
	v.SetDefault("S3_USE_PATH_STYLE", false)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_PRETTY", false)
}

// IsProduction reports whether the app runs with a production profile.
func (c *Config) IsProduction() bool {
	return c.Env == "production" || c.Env == "prod"
}

// Validate checks required values and production-only rules.
func (c *Config) Validate() error {
	if c.Port == "" {
		return errors.New("PORT is required")
	}
	if c.PostPerPage <= 0 {
		return errors.New("POST_PER_PAGE must be positive")
	}
	if c.IndexCacheTTL < 0 {
		return errors.New("INDEX_CACHE_TTL must not be negative")
	}
	if c.CacheSize <= 0 {
		return errors.New("CACHE_SIZE must be positive")
	}

	switch strings.ToLower(c.DBDriver) {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}

	switch strings.ToLower(c.MediaBackend) {
	case "local":
		if c.MediaRoot == "" {
			return errors.New("MEDIA_ROOT is required for the local media backend")
		}
	case "s3":
		if c.S3Bucket == "" {
			return errors.New("S3_BUCKET is required for the s3 media backend")
		}
	default:
		return fmt.Errorf("unsupported MEDIA_BACKEND %q", c.MediaBackend)
	}

	if c.SessionSecret == "" {
		return errors.New("SESSION_SECRET is required")
	}
	if c.IsProduction() {
		if c.SessionSecret == defaultSessionSecret {
			return errors.New("SESSION_SECRET must be changed from the default value in production")
		}
		if len(c.SessionSecret) < 32 {
			return errors.New("SESSION_SECRET must be at least 32 characters in production")
		}
	}
	return nil
}

// MaxUploadBytes is the upload limit for post images.
func (c *Config) MaxUploadBytes() int64 {
	return c.MaxUploadMB << 20
}

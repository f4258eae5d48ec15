package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 10, cfg.PostPerPage)
	assert.Equal(t, 20*time.Second, cfg.IndexCacheTTL)
	assert.Equal(t, "local", cfg.MediaBackend)
	assert.Equal(t, int64(5<<20), cfg.MaxUploadBytes())
}

func TestLoadFromEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("POST_PER_PAGE", "3")
	t.Setenv("INDEX_CACHE_TTL", "1m")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DATABASE_URL", "file:yatube.db")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.PostPerPage)
	assert.Equal(t, time.Minute, cfg.IndexCacheTTL)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, "file:yatube.db", cfg.DatabaseURL)
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Env:           "development",
			Port:          "8080",
			DBDriver:      "postgres",
			SessionSecret: defaultSessionSecret,
			CacheSize:     10,
			PostPerPage:   10,
			MediaBackend:  "local",
			MediaRoot:     "./media",
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid development", func(*Config) {}, ""},
		{"missing port", func(c *Config) { c.Port = "" }, "PORT is required"},
		{"zero page size", func(c *Config) { c.PostPerPage = 0 }, "POST_PER_PAGE"},
		{"unknown driver", func(c *Config) { c.DBDriver = "mysql" }, "unsupported DB_DRIVER"},
		{"s3 without bucket", func(c *Config) { c.MediaBackend = "s3" }, "S3_BUCKET"},
		{"default secret in production", func(c *Config) { c.Env = "production" }, "changed from the default"},
		{"short secret in production", func(c *Config) {
			c.Env = "production"
			c.SessionSecret = "short"
		}, "at least 32"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
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

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate runs the test in an empty directory with no NUTRIDIARY_ variables set
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	for _, kv := range os.Environ() {
		name, _, _ := strings.Cut(kv, "=")
		if strings.HasPrefix(name, "NUTRIDIARY_") {
			t.Setenv(name, "")
			os.Unsetenv(name)
		}
	}
	return dir
}

func TestLoad(t *testing.T) {
	t.Run("loads with defaults when no env vars set", func(t *testing.T) {
		isolate(t)

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "8080", cfg.Server.Port)
		assert.Equal(t, "development", cfg.Server.Environment)
		assert.False(t, cfg.Server.IsProduction())
		assert.Equal(t, "memory", cfg.Catalog.Type)
		assert.Empty(t, cfg.Catalog.SeedFile)
		assert.Equal(t, "memory", cfg.Diary.Type)
		assert.Equal(t, "openfoodfacts", cfg.External.Provider)
		assert.Equal(t, "https://api.nal.usda.gov/fdc", cfg.External.USDABaseURL)
		assert.Equal(t, 24*time.Hour, cfg.External.CacheTTL)
		assert.Equal(t, 10*time.Second, cfg.External.Timeout)
		assert.Equal(t, 10, cfg.Search.ExternalThreshold)
		assert.Equal(t, 20, cfg.Search.DefaultLimit)
		assert.Equal(t, 100, cfg.Search.MaxLimit)
		assert.True(t, cfg.Autofill.Enabled)
		assert.Equal(t, "vegetables", cfg.Autofill.FallbackCategory)
		assert.InDelta(t, 50, cfg.Units.DefaultPieceGrams, 0.001)
		assert.InDelta(t, 100, cfg.Units.PortionGrams, 0.001)
		assert.Equal(t, "none", cfg.Classifier.Type)
		assert.Equal(t, 100, cfg.RateLimit.PerIP)
	})

	t.Run("loads custom values from environment variables", func(t *testing.T) {
		isolate(t)
		t.Setenv("NUTRIDIARY_SERVER_PORT", "9090")
		t.Setenv("NUTRIDIARY_SERVER_ENVIRONMENT", "production")
		t.Setenv("NUTRIDIARY_DIARY_TYPE", "postgres")
		t.Setenv("NUTRIDIARY_DIARY_DSN", "postgres://localhost/nutridiary")
		t.Setenv("NUTRIDIARY_EXTERNAL_PROVIDER", "usda")
		t.Setenv("NUTRIDIARY_EXTERNAL_USDA_API_KEY", "secret")
		t.Setenv("NUTRIDIARY_EXTERNAL_CACHE_TTL", "1h")
		t.Setenv("NUTRIDIARY_SEARCH_EXTERNAL_THRESHOLD", "3")
		t.Setenv("NUTRIDIARY_AUTOFILL_ENABLED", "false")
		t.Setenv("NUTRIDIARY_RATELIMIT_PER_IP", "5")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "9090", cfg.Server.Port)
		assert.True(t, cfg.Server.IsProduction())
		assert.Equal(t, "postgres", cfg.Diary.Type)
		assert.Equal(t, "postgres://localhost/nutridiary", cfg.Diary.DSN)
		assert.Equal(t, "usda", cfg.External.Provider)
		assert.Equal(t, "secret", cfg.External.USDAAPIKey)
		assert.Equal(t, time.Hour, cfg.External.CacheTTL)
		assert.Equal(t, 3, cfg.Search.ExternalThreshold)
		assert.False(t, cfg.Autofill.Enabled)
		assert.Equal(t, 5, cfg.RateLimit.PerIP)
	})

	t.Run("reads values from .env file", func(t *testing.T) {
		dir := isolate(t)
		content := "NUTRIDIARY_SERVER_PORT=7070\nNUTRIDIARY_AUTOFILL_FALLBACK_CATEGORY=fruits\n"
		require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(content), 0o600))
		t.Cleanup(func() {
			os.Unsetenv("NUTRIDIARY_SERVER_PORT")
			os.Unsetenv("NUTRIDIARY_AUTOFILL_FALLBACK_CATEGORY")
		})

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "7070", cfg.Server.Port)
		assert.Equal(t, "fruits", cfg.Autofill.FallbackCategory)
	})

	t.Run("fails validation for usda provider without key", func(t *testing.T) {
		isolate(t)
		t.Setenv("NUTRIDIARY_EXTERNAL_PROVIDER", "usda")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "USDA API key")
	})
}

func TestLoadEnvFile(t *testing.T) {
	t.Run("missing file is not an error", func(t *testing.T) {
		isolate(t)
		assert.NoError(t, loadEnvFile())
	})

	t.Run("does not override existing variables", func(t *testing.T) {
		dir := isolate(t)
		require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("NUTRIDIARY_SERVER_PORT=1111\n"), 0o600))
		t.Setenv("NUTRIDIARY_SERVER_PORT", "2222")

		require.NoError(t, loadEnvFile())
		assert.Equal(t, "2222", os.Getenv("NUTRIDIARY_SERVER_PORT"))
	})
}

func validConfig() *Config {
	return &Config{
		Catalog:    CatalogConfig{Type: "memory"},
		Diary:      DiaryConfig{Type: "memory"},
		External:   ExternalConfig{Provider: "none"},
		Search:     SearchConfig{DefaultLimit: 20, MaxLimit: 100},
		Classifier: ClassifierConfig{Type: "none"},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid minimal config", mutate: func(*Config) {}},
		{
			name:    "unknown catalog type",
			mutate:  func(c *Config) { c.Catalog.Type = "redis" },
			wantErr: "catalog type",
		},
		{
			name:    "sqlite catalog without path",
			mutate:  func(c *Config) { c.Catalog.Type = "sqlite" },
			wantErr: "sqlite path",
		},
		{
			name:   "csv seed file",
			mutate: func(c *Config) { c.Catalog.SeedFile = "data/catalog.CSV" },
		},
		{
			name:    "seed file with unknown extension",
			mutate:  func(c *Config) { c.Catalog.SeedFile = "data/catalog.xml" },
			wantErr: "seed file",
		},
		{
			name:    "postgres diary without dsn",
			mutate:  func(c *Config) { c.Diary.Type = "postgres" },
			wantErr: "diary DSN",
		},
		{
			name: "postgres diary with dsn",
			mutate: func(c *Config) {
				c.Diary.Type = "postgres"
				c.Diary.DSN = "postgres://localhost/db"
			},
		},
		{
			name:    "unknown diary type",
			mutate:  func(c *Config) { c.Diary.Type = "mongo" },
			wantErr: "diary type",
		},
		{
			name:    "chain provider without usda key",
			mutate:  func(c *Config) { c.External.Provider = "chain" },
			wantErr: "USDA API key",
		},
		{
			name:    "unknown provider",
			mutate:  func(c *Config) { c.External.Provider = "edamam" },
			wantErr: "external provider",
		},
		{
			name:    "unknown classifier",
			mutate:  func(c *Config) { c.Classifier.Type = "vision" },
			wantErr: "classifier type",
		},
		{
			name:    "default limit above max",
			mutate:  func(c *Config) { c.Search.DefaultLimit = 500 },
			wantErr: "default_limit",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := validate(cfg)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

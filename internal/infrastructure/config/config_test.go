package config

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadFrom(t *testing.T, env map[string]string) (*Config, error) {
	t.Helper()
	return load(context.Background(), envconfig.MapLookuper(env))
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := loadFrom(t, map[string]string{})
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, 12, cfg.HashCost)
	assert.Equal(t, DriverPostgres, cfg.StoreDriver)
	assert.Equal(t, "auth", cfg.Session.CookieName)
	assert.Equal(t, "localhost", cfg.Session.Domain)
	assert.Equal(t, 24*time.Hour, cfg.Session.MaxAge)
	assert.False(t, cfg.Session.Secure)
	assert.True(t, cfg.Session.Revocation)
	assert.Equal(t, "securecookie", cfg.Session.Format)
	assert.Equal(t, http.SameSiteLaxMode, cfg.Session.SameSiteMode())
}

func TestLoad_DemoSecretOutsideProduction(t *testing.T) {
	cfg, err := loadFrom(t, map[string]string{})
	require.NoError(t, err)

	assert.True(t, cfg.DemoSecret)
	assert.Len(t, cfg.SecretKey, minSecretLen)
	require.NotEmpty(t, cfg.Warnings())
	assert.Contains(t, cfg.Warnings()[0], "SECRET_KEY")
}

func TestLoad_ProductionRequiresSecret(t *testing.T) {
	_, err := loadFrom(t, map[string]string{"ENV": "production"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SECRET_KEY is required")
}

func TestLoad_ProductionRejectsShortSecret(t *testing.T) {
	_, err := loadFrom(t, map[string]string{"ENV": "production", "SECRET_KEY": "short"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least 32 bytes")
}

func TestLoad_ProductionWarnsOnInsecureCookie(t *testing.T) {
	cfg, err := loadFrom(t, map[string]string{
		"ENV":        "production",
		"SECRET_KEY": strings.Repeat("k", 32),
	})
	require.NoError(t, err)
	assert.False(t, cfg.DemoSecret)

	warnings := strings.Join(cfg.Warnings(), "\n")
	assert.Contains(t, warnings, "SESSION_SECURE")
}

func TestLoad_Overrides(t *testing.T) {
	cfg, err := loadFrom(t, map[string]string{
		"SECRET_KEY":           "my-secret",
		"HASH_COST":            "4",
		"STORE_DRIVER":         "memory",
		"SESSION_MAX_AGE":      "1h",
		"SESSION_SAMESITE":     "Strict",
		"SESSION_FORMAT":       "jwt",
		"SESSION_REVOCATION":   "false",
		"CORS_ALLOWED_ORIGINS": "https://a.example,https://b.example",
	})
	require.NoError(t, err)

	assert.Equal(t, "my-secret", cfg.SecretKey)
	assert.Equal(t, 4, cfg.HashCost)
	assert.Equal(t, DriverMemory, cfg.StoreDriver)
	assert.Equal(t, time.Hour, cfg.Session.MaxAge)
	assert.Equal(t, http.SameSiteStrictMode, cfg.Session.SameSiteMode())
	assert.Equal(t, "jwt", cfg.Session.Format)
	assert.False(t, cfg.Session.Revocation)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
}

func TestLoad_RejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"cost too low", map[string]string{"HASH_COST": "3"}, "HASH_COST"},
		{"cost too high", map[string]string{"HASH_COST": "32"}, "HASH_COST"},
		{"unknown driver", map[string]string{"STORE_DRIVER": "sqlite"}, "STORE_DRIVER"},
		{"unknown format", map[string]string{"SESSION_FORMAT": "paseto"}, "SESSION_FORMAT"},
		{"unknown samesite", map[string]string{"SESSION_SAMESITE": "sometimes"}, "SESSION_SAMESITE"},
		{"negative workers", map[string]string{"HASH_WORKERS": "-1"}, "HASH_WORKERS"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := loadFrom(t, tt.env)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

package config_test

import (
	"os"
	"testing"
	"time"

	"github.com/confide-dev/confide/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Helper to clear environment variables that might interfere.
func resetConfigEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"HTTP_PORT", "PUBLIC_BASE_URL", "MONGO_URI", "MONGO_DB_NAME",
		"LOG_LEVEL", "SESSION_SECRET", "SESSION_TTL_HOURS",
		"REDIS_ADDR", "REDIS_PASSWORD",
		"GOOGLE_CLIENT_ID", "GOOGLE_CLIENT_SECRET",
		"FACEBOOK_CLIENT_ID", "FACEBOOK_CLIENT_SECRET",
	} {
		os.Unsetenv(key)
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	resetConfigEnv(t)

	cfg, err := config.LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "3000", cfg.HTTPPort)
	assert.Equal(t, "http://localhost:3000", cfg.PublicBaseURL)
	assert.Equal(t, "mongodb://localhost:27017/userDB", cfg.MongoURI)
	assert.Equal(t, "userDB", cfg.MongoDBName)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 72*time.Hour, cfg.SessionTTL())
	assert.Empty(t, cfg.RedisAddr)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	resetConfigEnv(t)

	t.Setenv("HTTP_PORT", "8080")
	t.Setenv("PUBLIC_BASE_URL", "https://secrets.example.com")
	t.Setenv("SESSION_TTL_HOURS", "12")
	t.Setenv("GOOGLE_CLIENT_ID", "g-id")
	t.Setenv("GOOGLE_CLIENT_SECRET", "g-secret")

	cfg, err := config.LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Equal(t, "https://secrets.example.com", cfg.PublicBaseURL)
	assert.Equal(t, 12*time.Hour, cfg.SessionTTL())
	assert.Equal(t, "g-id", cfg.GoogleClientID)
	assert.Equal(t, "g-secret", cfg.GoogleClientSecret)
}

func TestLoadConfig_ProviderCredentialsFromEnv(t *testing.T) {
	resetConfigEnv(t)

	// These keys have no meaningful default, only env values; they must
	// still survive Unmarshal.
	t.Setenv("GOOGLE_CLIENT_ID", "google-id")
	t.Setenv("GOOGLE_CLIENT_SECRET", "google-secret")
	t.Setenv("FACEBOOK_CLIENT_ID", "fb-id")
	t.Setenv("FACEBOOK_CLIENT_SECRET", "fb-secret")
	t.Setenv("REDIS_PASSWORD", "redis-pass")

	cfg, err := config.LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "google-id", cfg.GoogleClientID)
	assert.Equal(t, "google-secret", cfg.GoogleClientSecret)
	assert.Equal(t, "fb-id", cfg.FacebookClientID)
	assert.Equal(t, "fb-secret", cfg.FacebookClientSecret)
	assert.Equal(t, "redis-pass", cfg.RedisPassword)
}

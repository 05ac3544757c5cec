package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("API_URL", "http://backend:5000/")
	t.Setenv("PORT", "")
	t.Setenv("COMPARE_TIMEOUT", "")
	t.Setenv("MAX_SESSIONS", "")

	cfg := Load()

	assert.Equal(t, "http://backend:5000", cfg.APIURL)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, 120*time.Second, cfg.CompareTimeout)
	assert.Equal(t, int64(20<<20), cfg.MaxUploadBytes)
	assert.Equal(t, 200, cfg.MaxSessions)
	require.NoError(t, cfg.Validate())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("API_URL", "http://10.0.0.2:41655")
	t.Setenv("PORT", "9090")
	t.Setenv("COMPARE_MIN_INTERVAL_MS", "250")
	t.Setenv("SESSION_TTL", "5")
	t.Setenv("MAX_SESSIONS", "3")
	t.Setenv("DB_PATH", "")

	cfg := Load()

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, 250*time.Millisecond, cfg.CompareMinInterval)
	assert.Equal(t, 5*time.Minute, cfg.SessionTTL)
	assert.Equal(t, 3, cfg.MaxSessions)
	assert.Empty(t, cfg.DatabasePath, "an explicitly empty DB_PATH disables history")
}

func TestValidate_MissingAPIURL(t *testing.T) {
	cfg := &Config{}
	assert.ErrorIs(t, cfg.Validate(), ErrMissingAPIURL)
}

func TestGetEnvAsInt_Invalid(t *testing.T) {
	t.Setenv("SOME_INT", "12abc")
	assert.Equal(t, 7, getEnvAsInt("SOME_INT", 7))
}

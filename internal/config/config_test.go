package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "development", cfg.Env)
	assert.False(t, cfg.IsProduction())
	assert.Equal(t, "sportsync", cfg.MongoDB)
	assert.Equal(t, 30, cfg.JWTTTLDays)
	assert.Equal(t, "sportsync-api", cfg.JWTIssuer)
	assert.Equal(t, 15, cfg.RateWindowMin)
	assert.Equal(t, 100, cfg.RateGlobalMax)
	assert.Equal(t, 50, cfg.RateAPIMax)
	assert.Equal(t, 5, cfg.RateLoginMax)
	assert.Equal(t, 3, cfg.RateRegisterMax)
	assert.Equal(t, 20, cfg.RateMatchMax)
	assert.Equal(t, "sportsync.events", cfg.RabbitExchange)
	assert.Empty(t, cfg.Google.ClientID)
}

func TestLoadRequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRejectsBadTTL(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("JWT_TTL_DAYS", "zero")

	_, err := Load()
	assert.Error(t, err)
}

func TestIsProduction(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("APP_ENV", "production")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.IsProduction())
}

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("RATE_LIMIT_ORDER", "30s")
	t.Setenv("PORT", "9090")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 30*time.Second, cfg.RateLimitOrder)
	assert.Equal(t, time.Hour, cfg.SignedURLTTL)
	assert.Equal(t, "@every 1m", cfg.MaterialSchedule)
}

func TestLoadRejectsBadDuration(t *testing.T) {
	t.Setenv("ORDER_CACHE_TTL", "sebentar")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ORDER_CACHE_TTL")
}

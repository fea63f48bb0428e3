package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "dev", cfg.AppEnv)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, 0.7, cfg.AutoMatchThreshold)
	assert.Equal(t, 0.1, cfg.ManualReviewMargin)
	assert.Equal(t, 0.3, cfg.SkillMatchThreshold)
	assert.False(t, cfg.TwoTowerEnabled)
	assert.Equal(t, 256, cfg.TwoTowerDimension)
	assert.Equal(t, "hash", cfg.TwoTowerEmbedder)
	assert.Equal(t, 5000, cfg.JobDetailStatementTimeoutMS)
	assert.Equal(t, 1, cfg.RateLimitRetryPerSec)
	assert.Equal(t, 3, cfg.RateLimitRetryBurst)
	assert.True(t, cfg.IsDev())
}

func TestLoadRejectsOutOfRangeThreshold(t *testing.T) {
	t.Setenv("AUTO_MATCH_THRESHOLD", "1.2")
	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRejectsZeroGlobalRate(t *testing.T) {
	t.Setenv("SR_RATE_LIMIT_GLOBAL_PER_SEC", "0")
	_, err := Load()
	assert.Error(t, err)
}

func TestDerivedRateLimits(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	// Health defaults to 5x global; match defaults to global.
	assert.Equal(t, cfg.RateLimitGlobalPerSec*5, cfg.HealthRatePerSec())
	assert.Equal(t, cfg.RateLimitGlobalBurst*5, cfg.HealthRateBurst())
	assert.Equal(t, cfg.RateLimitGlobalPerSec, cfg.MatchRatePerSec())
	assert.Equal(t, cfg.RateLimitGlobalBurst, cfg.MatchRateBurst())
}

func TestDerivedRateLimitsHonorOverrides(t *testing.T) {
	t.Setenv("SR_RATE_LIMIT_MATCH_PER_SEC", "7")
	t.Setenv("SR_RATE_LIMIT_HEALTH_BURST", "99")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.MatchRatePerSec())
	assert.Equal(t, 99, cfg.HealthRateBurst())
}

func TestEnvModes(t *testing.T) {
	t.Setenv("APP_ENV", "Prod")
	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.IsProd())
	assert.False(t, cfg.IsDev())
	assert.False(t, cfg.IsTest())
}

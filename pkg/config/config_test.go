package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/eqindex")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, 100, cfg.Index.TopCompanies)
	assert.InDelta(t, 1000.0, cfg.Index.BaseValue, 1e-9)
	assert.Equal(t, 10, cfg.Index.LookbackDays)
	assert.False(t, cfg.Index.RequireHistory)
	assert.Equal(t, time.Hour, cfg.Index.CacheTTL)
	assert.Equal(t, 30, cfg.Scheduler.BackfillDays)
}

func TestLoad_RequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	_, err := Load()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")
}

func TestLoad_RejectsInvalidEnv(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/eqindex")
	t.Setenv("ENV", "sandbox")

	_, err := Load()

	require.Error(t, err)
}

func TestLoad_RejectsNonPositiveTopCompanies(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/eqindex")
	t.Setenv("INDEX_TOP_COMPANIES", "0")

	_, err := Load()

	require.Error(t, err)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/eqindex")
	t.Setenv("INDEX_TOP_COMPANIES", "50")
	t.Setenv("INDEX_BASE_VALUE", "500")
	t.Setenv("INDEX_REQUIRE_HISTORY", "true")
	t.Setenv("PROVIDER_RPS", "2.5")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 50, cfg.Index.TopCompanies)
	assert.InDelta(t, 500.0, cfg.Index.BaseValue, 1e-9)
	assert.True(t, cfg.Index.RequireHistory)
	assert.InDelta(t, 2.5, cfg.Providers.RequestsPerSecond, 1e-9)
}

func TestLoad_MalformedNumbersFallBack(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/eqindex")
	t.Setenv("INDEX_TOP_COMPANIES", "lots")
	t.Setenv("INDEX_CACHE_TTL", "soon")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 100, cfg.Index.TopCompanies)
	assert.Equal(t, time.Hour, cfg.Index.CacheTTL)
}

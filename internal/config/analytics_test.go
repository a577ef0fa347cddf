package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestAnalyticsConfigDefaultsWhenFileMissing(t *testing.T) {
	holder, err := newAnalyticsConfigHolder(zap.NewNop(), DefaultAnalyticsConfig(), t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, DefaultAnalyticsConfig(), holder.Get())
}

func TestAnalyticsConfigReadsFile(t *testing.T) {
	dir := t.TempDir()
	content := "analytics:\n  topN: 8\n  defaultScope: Quarter\n  defaultCurrency: eur\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "analytics.yml"), []byte(content), 0o600))

	holder, err := newAnalyticsConfigHolder(zap.NewNop(), DefaultAnalyticsConfig(), dir)
	require.NoError(t, err)

	assert.Equal(t, AnalyticsConfig{TopN: 8, DefaultScope: "quarter", DefaultCurrency: "EUR"}, holder.Get())
}

func TestAnalyticsConfigRejectsInvalidFile(t *testing.T) {
	dir := t.TempDir()
	content := "analytics:\n  topN: 0\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "analytics.yml"), []byte(content), 0o600))

	_, err := newAnalyticsConfigHolder(zap.NewNop(), DefaultAnalyticsConfig(), dir)
	assert.Error(t, err)
}

func TestValidateAnalyticsConfig(t *testing.T) {
	assert.NoError(t, validateAnalyticsConfig(DefaultAnalyticsConfig()))
	assert.Error(t, validateAnalyticsConfig(AnalyticsConfig{TopN: 5, DefaultScope: "week", DefaultCurrency: "USD"}))
	assert.Error(t, validateAnalyticsConfig(AnalyticsConfig{TopN: 5, DefaultScope: "year", DefaultCurrency: "DOLLAR"}))
}

func TestLoadReadsCacheSettings(t *testing.T) {
	t.Setenv("CACHE_DRIVER", "Redis")
	t.Setenv("ANALYTICS_CACHE_TTL_SECONDS", "120")
	t.Setenv("REDIS_DB", "not-a-number")
	t.Setenv("DEFAULT_CURRENCY", " idr ")

	cfg := Load()

	if cfg.Cache.Driver != CacheDriverRedis {
		t.Fatalf("expected redis driver, got %q", cfg.Cache.Driver)
	}
	if cfg.Cache.TTLSeconds != 120 {
		t.Fatalf("expected ttl 120, got %d", cfg.Cache.TTLSeconds)
	}
	if cfg.Cache.RedisDB != 0 {
		t.Fatalf("expected invalid redis db to fall back to 0, got %d", cfg.Cache.RedisDB)
	}
	if cfg.DefaultCurrency != "IDR" {
		t.Fatalf("expected IDR, got %q", cfg.DefaultCurrency)
	}
}

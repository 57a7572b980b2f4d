package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "yahoo", cfg.Provider.Name)
	assert.Equal(t, 15*time.Second, cfg.Provider.Timeout)
	assert.Equal(t, "sqlite", cfg.Cache.Driver)
	assert.Equal(t, time.Hour, cfg.Cache.TTL)
	assert.Equal(t, time.Duration(0), cfg.Cache.Retention)
	assert.Equal(t, 50.0, cfg.Scoring.MissingDefault)
	assert.Equal(t, "^GSPC", cfg.Risk.Benchmark)
	assert.Equal(t, 252, cfg.Risk.TradingDays)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "1y", cfg.Schedule.RefreshPeriod)
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
provider:
  name: rest
  base_url: https://data.example.com
  timeout: 5s
cache:
  driver: memory
  ttl: 30m
  retention: 720h
scoring:
  profile: extended
  missing_default: 0
schedule:
  watchlist: [" aapl", "msft "]
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "rest", cfg.Provider.Name)
	assert.Equal(t, 5*time.Second, cfg.Provider.Timeout)
	assert.Equal(t, 30*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, 720*time.Hour, cfg.Cache.Retention)
	assert.Equal(t, "extended", cfg.Scoring.Profile)
	assert.Equal(t, 0.0, cfg.Scoring.MissingDefault, "explicit zero is kept")
	assert.Equal(t, []string{"AAPL", "MSFT"}, cfg.Schedule.Watchlist)
}

func TestLoadExplicitZeros(t *testing.T) {
	path := writeConfig(t, `
provider:
  rate_limit: 0
risk:
  risk_free_rate: 0
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 0.0, cfg.Provider.RateLimit, "zero disables throttling")
	assert.Equal(t, 0.0, cfg.Risk.RiskFreeRate)
	assert.Equal(t, 50.0, cfg.Scoring.MissingDefault)

	cfg, err = Load(writeConfig(t, "provider:\n  name: yahoo\n"))
	require.NoError(t, err)
	assert.Equal(t, 5.0, cfg.Provider.RateLimit)
	assert.Equal(t, 0.02, cfg.Risk.RiskFreeRate)
}

func TestEnvOverrides(t *testing.T) {
	path := writeConfig(t, "cache:\n  driver: memory\n")
	t.Setenv("CACHE_DRIVER", "postgres")
	t.Setenv("POSTGRES_DSN", "postgres://localhost/marketlens")
	t.Setenv("CACHE_TTL", "2h")
	t.Setenv("WATCHLIST", "tsla, nvda,,")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "postgres", cfg.Cache.Driver)
	assert.Equal(t, 2*time.Hour, cfg.Cache.TTL)
	assert.Equal(t, []string{"TSLA", "NVDA"}, cfg.Schedule.Watchlist)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestEnvBadDuration(t *testing.T) {
	t.Setenv("CACHE_TTL", "soon")
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"unknown driver", "cache:\n  driver: redis\n"},
		{"postgres without dsn", "cache:\n  driver: postgres\n"},
		{"rest without base url", "provider:\n  name: rest\n"},
		{"missing default out of range", "scoring:\n  missing_default: 150\n"},
		{"unknown profile", "scoring:\n  profile: deluxe\n"},
		{"unknown period", "schedule:\n  refresh_period: 7y\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(writeConfig(t, tt.body))
			require.NoError(t, err)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestParseError(t *testing.T) {
	_, err := Load(writeConfig(t, "provider: [unterminated"))
	assert.Error(t, err)
}

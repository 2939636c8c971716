package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, 3, cfg.Retrieval.Limit)
	assert.Equal(t, 0.75, cfg.Retrieval.ShortThreshold)
	assert.Equal(t, 0.80, cfg.Retrieval.MediumThreshold)
	assert.Equal(t, 0.85, cfg.Retrieval.LongThreshold)
	assert.Equal(t, 0.70, cfg.Retrieval.FloorThreshold)
	assert.Equal(t, 0.3, cfg.Retrieval.Temperature)
	assert.Equal(t, 2*time.Hour, cfg.Session.StaleAfter)
	assert.Equal(t, time.Hour, cfg.Session.SweepInterval)
	assert.True(t, cfg.Explorer.RestrictDomains)

	assert.Equal(t, "warn", cfg.Database.LogLevel)
	assert.Equal(t, time.Second, cfg.Database.SlowThreshold)
	assert.Equal(t, 10, cfg.Database.MaxIdleConns)
	assert.Equal(t, 100, cfg.Database.MaxOpenConns)
	assert.Equal(t, time.Hour, cfg.Database.ConnMaxLifetime)

	assert.False(t, cfg.App.OtelEnabled)
	assert.Equal(t, "localhost:4318", cfg.App.OtelEndpoint)
	assert.Equal(t, "rag-api-explorer-be", cfg.App.ServiceName)
}

func TestDatabaseAndTracingOverrides(t *testing.T) {
	t.Setenv("DB_LOG_LEVEL", "info")
	t.Setenv("DB_MAX_OPEN_CONNS", "25")
	t.Setenv("DB_CONN_MAX_LIFETIME", "15m")
	t.Setenv("OTEL_ENABLED", "true")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "collector:4317")

	cfg := Load()

	assert.Equal(t, "info", cfg.Database.LogLevel)
	assert.Equal(t, 25, cfg.Database.MaxOpenConns)
	assert.Equal(t, 15*time.Minute, cfg.Database.ConnMaxLifetime)
	assert.True(t, cfg.App.OtelEnabled)
	assert.Equal(t, "collector:4317", cfg.App.OtelEndpoint)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("RETRIEVAL_FLOOR_THRESHOLD", "0.65")
	t.Setenv("SESSION_STALE_AFTER", "30m")
	t.Setenv("EXPLORER_RESTRICT_DOMAINS", "false")
	t.Setenv("EXPLORER_ALLOWED_DOMAINS", "api.example.com, ,internal.test")
	t.Setenv("GO_ENV", "production")

	cfg := Load()

	assert.Equal(t, 0.65, cfg.Retrieval.FloorThreshold)
	assert.Equal(t, 30*time.Minute, cfg.Session.StaleAfter)
	assert.False(t, cfg.Explorer.RestrictDomains)
	assert.Equal(t, []string{"api.example.com", "internal.test"}, cfg.Explorer.AllowedDomains)
	assert.True(t, cfg.IsProduction())
}

func TestMalformedValuesFallBack(t *testing.T) {
	t.Setenv("RETRIEVAL_LIMIT", "three")
	t.Setenv("SESSION_SWEEP_INTERVAL", "hourly")

	cfg := Load()

	assert.Equal(t, 3, cfg.Retrieval.Limit)
	assert.Equal(t, time.Hour, cfg.Session.SweepInterval)
}

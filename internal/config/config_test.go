package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"DB_HOST", "DB_PORT", "DB_USER", "DB_PASSWORD", "DB_NAME",
		"MQ_URL", "REDIS_ADDR", "REDIS_PASSWORD", "JWT_SECRET", "SERVER_PORT",
		"OTEL_EXPORTER_OTLP_ENDPOINT", "ANALYTICS_TIMEZONE", "LOG_LEVEL",
	} {
		t.Setenv(key, "")
	}
}

func writeConfig(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
	}
	return dir
}

func TestLoadFrom(t *testing.T) {
	clearEnv(t)
	dir := writeConfig(t, map[string]string{
		"base.yaml": `
db:
  host: localhost
  port: 5432
jwt:
  secret: ${JWT_SECRET}
cache:
  ttl: 10m
  failure_threshold: 3
analytics:
  timezone: Europe/Berlin
worker:
  max_retries: 4
  snapshot_interval: 15m
`,
		"secrets.env": `JWT_SECRET=from-secrets`,
	})
	t.Setenv("DB_HOST", "pg")

	cfg, err := LoadFrom("local", dir)
	require.NoError(t, err)

	assert.Equal(t, "pg", cfg.DB.Host)
	assert.Equal(t, "from-secrets", cfg.JWT.Secret)
	assert.Equal(t, 10*time.Minute, cfg.CacheTTL())
	assert.Equal(t, 3, cfg.BreakerConfig().FailureThreshold)
	assert.Equal(t, 2, cfg.BreakerConfig().SuccessThreshold)
	assert.Equal(t, 30*time.Second, cfg.BreakerConfig().Timeout)
	assert.Equal(t, int64(4), cfg.Worker.MaxRetries)
	assert.Equal(t, 15*time.Minute, cfg.SnapshotInterval())
	assert.Equal(t, time.Hour, cfg.DedupTTL())
	assert.Equal(t, ":8080", cfg.ListenAddr())

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "Europe/Berlin", loc.String())
}

func TestLoadFromEnvOverrides(t *testing.T) {
	clearEnv(t)
	dir := writeConfig(t, map[string]string{
		"base.yaml": "jwt:\n  secret: base\n",
	})
	t.Setenv("JWT_SECRET", "env")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("ANALYTICS_TIMEZONE", "Asia/Tokyo")
	t.Setenv("LOG_LEVEL", "warn")

	cfg, err := LoadFrom("local", dir)
	require.NoError(t, err)
	assert.Equal(t, "env", cfg.JWT.Secret)
	assert.Equal(t, ":9090", cfg.ListenAddr())
	assert.Equal(t, "Asia/Tokyo", cfg.Analytics.Timezone)
	assert.Equal(t, "warn", cfg.Logger.Level)
}

func TestLoadFromRejectsInvalidConfig(t *testing.T) {
	clearEnv(t)

	dir := writeConfig(t, map[string]string{"base.yaml": "db:\n  host: x\n"})
	_, err := LoadFrom("local", dir)
	assert.ErrorContains(t, err, "jwt.secret")

	dir = writeConfig(t, map[string]string{
		"base.yaml": "jwt:\n  secret: s\nanalytics:\n  timezone: Mars/Olympus\n",
	})
	_, err = LoadFrom("local", dir)
	assert.ErrorContains(t, err, "analytics.timezone")
}

func TestLocationDefaultsToUTC(t *testing.T) {
	loc, err := (&Config{}).Location()
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)
}

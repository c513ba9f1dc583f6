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
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	cfg, err := Load(New(), "")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 3, cfg.Quota.Capacity)
	assert.Equal(t, 7, cfg.Pagination.Window.MaxVisibleSlots)
	assert.Equal(t, 10, cfg.Pagination.DefaultPageSize)
	assert.Equal(t, 30*time.Minute, cfg.Composer.SessionTTL)
	assert.Equal(t, 256, cfg.Sink.Dispatcher.Buffer)
	assert.Equal(t, SourceFixture, cfg.Source.Kind)
	assert.Empty(t, cfg.Sink.Enabled)
}

func TestLoad_FileAndEnv(t *testing.T) {
	path := writeConfig(t, `
server:
  addr: ":9090"
postgres:
  host: db.internal
  dbname: console
source:
  kind: postgres
sink:
  enabled: [postgres, redis]
  dispatcher:
    workers: 4
quota:
  timezone: Africa/Lagos
pagination:
  max_visible_slots: 9
  radius: 1
composer:
  session_ttl: 5m
`)
	t.Setenv("TIPS_QUOTA_CAPACITY", "5")
	t.Setenv("TIPS_POSTGRES_PASSWORD", "secret")

	cfg, err := Load(New(), path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, "db.internal", cfg.Postgres.Host)
	assert.Equal(t, "secret", cfg.Postgres.Password)
	assert.Equal(t, 5432, cfg.Postgres.Port)
	assert.Equal(t, 5, cfg.Quota.Capacity)
	assert.Equal(t, 9, cfg.Pagination.Window.MaxVisibleSlots)
	assert.Equal(t, 1, cfg.Pagination.Window.Radius)
	assert.Equal(t, 4, cfg.Sink.Dispatcher.Workers)
	assert.Equal(t, 5*time.Minute, cfg.Composer.SessionTTL)
	assert.True(t, cfg.SinkEnabled(SinkRedis))

	loc, err := cfg.Quota.Location()
	require.NoError(t, err)
	assert.Equal(t, "Africa/Lagos", loc.String())
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(New(), filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	path := writeConfig(t, `
source:
  kind: ftp
sink:
  enabled: [kafka]
quota:
  capacity: 0
  timezone: Mars/Olympus
pagination:
  max_visible_slots: 3
`)
	_, err := Load(New(), path)
	require.Error(t, err)

	msg := err.Error()
	assert.Contains(t, msg, "source.kind")
	assert.Contains(t, msg, `unknown sink "kafka"`)
	assert.Contains(t, msg, "quota.capacity")
	assert.Contains(t, msg, "quota timezone")
	assert.Contains(t, msg, "max visible slots")
}

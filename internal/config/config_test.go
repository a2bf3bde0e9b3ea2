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
	path := writeConfig(t, `
http:
  admin_token: secret
database:
  user: catalog
  dbname: catalog
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, 12, cfg.Catalog.PublicPageSize)
	assert.Equal(t, 25, cfg.Catalog.AdminPageSize)
	assert.Equal(t, 3, cfg.Catalog.RelatedLimit)
	assert.Equal(t, 5*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, 10*time.Minute, cfg.Audit.Interval)
	assert.Equal(t, "catalog_events", cfg.RabbitMQ.QueueName)
	assert.False(t, cfg.RabbitMQ.Enabled)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t,
		"host=localhost port=5432 user=catalog password= dbname=catalog sslmode=disable",
		cfg.Database.DSN(),
	)
}

func TestLoad_ExpandsEnv(t *testing.T) {
	t.Setenv("CATALOG_TEST_TOKEN", "from-env")
	t.Setenv("CATALOG_TEST_DB_PASSWORD", "pw")

	path := writeConfig(t, `
http:
  admin_token: ${CATALOG_TEST_TOKEN}
database:
  password: ${CATALOG_TEST_DB_PASSWORD}
cache:
  enabled: true
  ttl: 90s
audit:
  interval: 1m
log_level: debug
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.HTTP.AdminToken)
	assert.Equal(t, "pw", cfg.Database.Password)
	assert.True(t, cfg.Cache.Enabled)
	assert.Equal(t, 90*time.Second, cfg.Cache.TTL)
	assert.Equal(t, time.Minute, cfg.Audit.Interval)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoad_RequiresAdminToken(t *testing.T) {
	path := writeConfig(t, "log_level: info\n")

	_, err := Load(path)
	assert.ErrorContains(t, err, "admin_token")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 3306, cfg.Database.Port)
	assert.True(t, cfg.Database.ParseTime)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, 10, cfg.SMTP.MaxSendRate)
	assert.Equal(t, 10, cfg.Worker.Concurrency)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("MYSQL_HOST", "db.internal")
	t.Setenv("WORKER_CONCURRENCY", "25")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, 25, cfg.Worker.Concurrency)
}

func TestLoadBadIntFallsBack(t *testing.T) {
	t.Setenv("SERVER_PORT", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
}

func TestGetConfigCaches(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	assert.Same(t, cfg, GetConfig())
}

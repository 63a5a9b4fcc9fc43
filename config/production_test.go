// Package config provides configuration management for production deployments
package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("JWT_SECRET_KEY", "test-secret-key-for-jwt-signing-32-chars")
}

func TestLoadProductionConfigPoolDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := LoadProductionConfig()
	require.NoError(t, err)

	assert.Equal(t, 25, cfg.Database.MaxOpenConns)
	assert.Equal(t, 5, cfg.Database.MaxIdleConns)
	assert.Equal(t, 30*time.Minute, cfg.Database.ConnMaxLifetime)
	assert.Equal(t, 15*time.Minute, cfg.Database.ConnMaxIdleTime)
}

func TestLoadProductionConfigPoolOverrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("DB_CONN_MAX_IDLE_TIME", "90s")
	t.Setenv("DB_CONN_MAX_LIFETIME", "1h")

	cfg, err := LoadProductionConfig()
	require.NoError(t, err)

	assert.Equal(t, 90*time.Second, cfg.Database.ConnMaxIdleTime)
	assert.Equal(t, time.Hour, cfg.Database.ConnMaxLifetime)
}

func TestValidateProductionConfigRejectsSharedPorts(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := LoadProductionConfig()
	require.NoError(t, err)

	cfg.Realtime.Port = cfg.Server.Port
	assert.Error(t, ValidateProductionConfig(cfg))
}

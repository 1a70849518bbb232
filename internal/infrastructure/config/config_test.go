package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "warehouse-backend", cfg.App.Name)
	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, 25, cfg.Database.MaxOpenConns)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, 5, cfg.Movement.MaxRetries)
	assert.Equal(t, 20*time.Millisecond, cfg.Movement.RetryBackoff)
	assert.Equal(t, 8, cfg.Movement.BatchConcurrency)
	assert.Equal(t, 24*time.Hour, cfg.Movement.IdempotencyTTL)
	assert.Equal(t, 5*time.Minute, cfg.Audit.SweepInterval)
	assert.False(t, cfg.Telemetry.Enabled)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("WMS_DATABASE_HOST", "db.internal")
	t.Setenv("WMS_DATABASE_PORT", "6543")
	t.Setenv("WMS_LOG_LEVEL", "debug")
	t.Setenv("WMS_MOVEMENT_MAX_RETRIES", "9")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, 6543, cfg.Database.Port)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 9, cfg.Movement.MaxRetries)
}

func TestLoad_Validation(t *testing.T) {
	t.Run("rejects unknown driver", func(t *testing.T) {
		t.Setenv("WMS_DATABASE_DRIVER", "oracle")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database.driver")
	})

	t.Run("production requires a password", func(t *testing.T) {
		t.Setenv("WMS_APP_ENV", "production")
		t.Setenv("WMS_DATABASE_SSLMODE", "require")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "password")
	})

	t.Run("production rejects sslmode disable", func(t *testing.T) {
		t.Setenv("WMS_APP_ENV", "production")
		t.Setenv("WMS_DATABASE_PASSWORD", "secret")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "sslmode")
	})
}

func TestDatabaseConfig_DSN(t *testing.T) {
	t.Run("postgres escapes credentials", func(t *testing.T) {
		cfg := DatabaseConfig{
			Driver:   "postgres",
			Host:     "localhost",
			Port:     5432,
			User:     "wms",
			Password: "p@ss/word",
			DBName:   "warehouse",
			SSLMode:  "disable",
		}

		dsn := cfg.DSN()
		assert.Contains(t, dsn, "postgres://")
		assert.Contains(t, dsn, "p%40ss%2Fword")
		assert.Contains(t, dsn, "sslmode=disable")
	})

	t.Run("sqlite uses the file path", func(t *testing.T) {
		cfg := DatabaseConfig{Driver: "sqlite", Path: "warehouse.db"}
		assert.Equal(t, "warehouse.db", cfg.DSN())
	})
}

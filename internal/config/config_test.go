package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setValidEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DB_HOST", "localhost")
	t.Setenv("DB_PORT", "5432")
	t.Setenv("DB_USER", "cofoundly")
	t.Setenv("DB_NAME", "cofoundly")
	t.Setenv("JWT_ACCESS_SECRET", "0123456789abcdef0123456789abcdef")
}

func TestLoadValid(t *testing.T) {
	setValidEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "localhost", cfg.Database.Host)
	// Safety defaults
	assert.Equal(t, time.Minute, cfg.Safety.WatchdogInterval)
	assert.Equal(t, 15*time.Minute, cfg.Safety.GracePeriod)
	assert.Equal(t, 30*time.Minute, cfg.Safety.ReminderLead)
	assert.Equal(t, 30*time.Second, cfg.Safety.ReminderPollInterval)
}

func TestLoadSafetyOverrides(t *testing.T) {
	setValidEnv(t)
	t.Setenv("WATCHDOG_INTERVAL", "10s")
	t.Setenv("GRACE_PERIOD", "5m")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 10*time.Second, cfg.Safety.WatchdogInterval)
	assert.Equal(t, 5*time.Minute, cfg.Safety.GracePeriod)
}

func TestValidateRejectsShortSecret(t *testing.T) {
	setValidEnv(t)
	t.Setenv("JWT_ACCESS_SECRET", "too-short")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least 32 characters")
}

func TestValidateRequiresDatabaseHost(t *testing.T) {
	setValidEnv(t)
	t.Setenv("DB_HOST", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database host")
}

func TestGetDSN(t *testing.T) {
	cfg := DatabaseConfig{
		Host: "db", Port: 5432, User: "u", Password: "p", DBName: "app", SSLMode: "disable",
	}
	assert.Equal(t,
		"host=db port=5432 user=u password=p dbname=app sslmode=disable",
		cfg.GetDSN())
}

package config

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestGetEnvBool(t *testing.T) {
	assert.False(t, GetEnvBool("GAMEDAY_TEST_BOOL", false))
	assert.True(t, GetEnvBool("GAMEDAY_TEST_BOOL", true))

	t.Setenv("GAMEDAY_TEST_BOOL", "true")
	assert.True(t, GetEnvBool("GAMEDAY_TEST_BOOL", false))

	t.Setenv("GAMEDAY_TEST_BOOL", "0")
	assert.False(t, GetEnvBool("GAMEDAY_TEST_BOOL", true))

	t.Setenv("GAMEDAY_TEST_BOOL", "not-a-bool")
	assert.True(t, GetEnvBool("GAMEDAY_TEST_BOOL", true))
}

func TestGetEnvDuration(t *testing.T) {
	assert.Equal(t, time.Hour, GetEnvDuration("GAMEDAY_TEST_DUR", time.Hour))

	// Unit-suffixed values parse as durations.
	t.Setenv("GAMEDAY_TEST_DUR", "90s")
	assert.Equal(t, 90*time.Second, GetEnvDuration("GAMEDAY_TEST_DUR", time.Hour))

	// Bare numbers are minutes.
	t.Setenv("GAMEDAY_TEST_DUR", "15")
	assert.Equal(t, 15*time.Minute, GetEnvDuration("GAMEDAY_TEST_DUR", time.Hour))

	t.Setenv("GAMEDAY_TEST_DUR", "garbage")
	assert.Equal(t, time.Hour, GetEnvDuration("GAMEDAY_TEST_DUR", time.Hour))
}

func TestGetEnvLogLevel(t *testing.T) {
	assert.Equal(t, zerolog.InfoLevel, GetEnvLogLevel("GAMEDAY_TEST_LEVEL", zerolog.InfoLevel))

	t.Setenv("GAMEDAY_TEST_LEVEL", "warn")
	assert.Equal(t, zerolog.WarnLevel, GetEnvLogLevel("GAMEDAY_TEST_LEVEL", zerolog.InfoLevel))

	t.Setenv("GAMEDAY_TEST_LEVEL", "nonsense")
	assert.Equal(t, zerolog.InfoLevel, GetEnvLogLevel("GAMEDAY_TEST_LEVEL", zerolog.InfoLevel))
}

func TestDefaultConfigReadsEnv(t *testing.T) {
	t.Setenv("GAMEDAY_SESSION_TTL", "45m")
	t.Setenv("GAMEDAY_SESSION_ROTATION", "2m")
	t.Setenv("GAMEDAY_LOG_LEVEL", "error")
	t.Setenv("GAMEDAY_ADMIN_USER", "operator")

	cfg := DefaultConfig()
	assert.Equal(t, 45*time.Minute, cfg.SessionTTL)
	assert.Equal(t, 2*time.Minute, cfg.SessionRotation)
	assert.Equal(t, zerolog.ErrorLevel, cfg.LogLevel)
	assert.Equal(t, "operator", cfg.AdminUser)
	assert.False(t, cfg.DBReadOnly)
}

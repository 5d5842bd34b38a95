package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGetDuration(t *testing.T) {
	t.Setenv("TEST_TTL_GO", "10m")
	t.Setenv("TEST_TTL_SECS", "45")
	t.Setenv("TEST_TTL_BAD", "soon")

	assert.Equal(t, 10*time.Minute, getDuration("TEST_TTL_GO", time.Second))
	assert.Equal(t, 45*time.Second, getDuration("TEST_TTL_SECS", time.Second))
	assert.Equal(t, time.Second, getDuration("TEST_TTL_BAD", time.Second))
	assert.Equal(t, time.Hour, getDuration("TEST_TTL_UNSET", time.Hour))
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("APP_TIMEZONE", "Not/AZone")

	cfg := Load()
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, time.UTC, cfg.Location)
	assert.Equal(t, 600*time.Second, cfg.ReportCacheTTL)
}

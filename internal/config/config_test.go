package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("PAGE_SIZE", "")
	t.Setenv("JWT_ACCESS_EXPIRY", "")
	t.Setenv("APP_ENV", "")

	cfg := Load()

	assert.Equal(t, "localhost", cfg.DBHost)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 10, cfg.PageSize)
	assert.Equal(t, 15*time.Minute, cfg.JWTAccessExpiry)
	assert.Equal(t, "@daily", cfg.MaintenanceSchedule)
	assert.Empty(t, cfg.JWTSecret)
	assert.Equal(t, "development", cfg.AppEnv)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("PAGE_SIZE", "25")
	t.Setenv("JWT_ACCESS_EXPIRY", "1h")
	t.Setenv("LOG_RETENTION_DAYS", "bogus")
	t.Setenv("TIMEZONE", "Europe/Berlin")

	cfg := Load()

	assert.Equal(t, "s3cret", cfg.JWTSecret)
	assert.Equal(t, 25, cfg.PageSize)
	assert.Equal(t, time.Hour, cfg.JWTAccessExpiry)
	assert.Equal(t, 30, cfg.LogRetentionDays)
	assert.Equal(t, "Europe/Berlin", cfg.Location().String())
}

func TestLocation_FallsBackToUTC(t *testing.T) {
	cfg := &Config{Timezone: "Nowhere/Special"}
	assert.Equal(t, time.UTC, cfg.Location())
}

func TestDSN(t *testing.T) {
	cfg := &Config{DBHost: "db", DBUser: "u", DBPassword: "p", DBName: "n", DBPort: "5432", DBSSLMode: "disable"}
	assert.Equal(t, "host=db user=u password=p dbname=n port=5432 sslmode=disable TimeZone=UTC", cfg.DSN())
}

package cmd

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	loggerKit "github.com/superj80820/link-shortener/kit/logger"
)

func TestLoadConfig(t *testing.T) {
	t.Setenv("ENV", "production")
	t.Setenv("BASE_URL", "https://sho.rt")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("RATE_LIMIT_PER_HOUR", "5")
	t.Setenv("CLEANUP_INTERVAL_HOURS", "6")
	t.Setenv("RESERVED_CODES", "login, signup")
	t.Setenv("DELETE_EXPIRED_LINKS", "true")
	t.Setenv("LOG_NO_STDOUT", "true")
	t.Setenv("DB_MAX_OPEN_CONNS", "20")
	t.Setenv("DB_CONN_MAX_LIFETIME", "5m")
	t.Setenv("CACHE_TTL", "2h")

	c := loadConfig()
	assert.Equal(t, loggerKit.InfoLevel, c.logLevel())
	assert.Equal(t, "https://sho.rt", c.link.BaseURL)
	assert.Equal(t, "sqlite", c.dbDriver)
	assert.Equal(t, 5, c.rateLimitPerHour)
	assert.Equal(t, 1000, c.apiKeyRateLimit)
	assert.Equal(t, 6*time.Hour, c.cleanupInterval)
	assert.Equal(t, []string{"login", "signup"}, c.link.ReservedCodes)
	assert.True(t, c.link.DeleteExpiredLinks)
	assert.Equal(t, 7, c.link.CodeLength)
	assert.Equal(t, 365, c.link.MaxExpiryDays)
	assert.Equal(t, ":8000", c.httpAddr)
	assert.Len(t, c.loggerOptions(), 1)
	assert.Equal(t, 20, c.dbMaxOpenConns)
	assert.Equal(t, 0, c.dbMaxIdleConns)
	assert.Equal(t, 5*time.Minute, c.dbConnMaxLifetime)
	assert.Equal(t, "UTC", c.dbTimeZone)
	assert.Equal(t, 2*time.Hour, c.link.CacheTTL)
}

func TestVersionCommand(t *testing.T) {
	t.Setenv("APP_VERSION", "1.2.3")

	out := new(bytes.Buffer)
	rootCmd.SetOut(out)
	rootCmd.SetArgs([]string{"version"})
	assert.Nil(t, rootCmd.Execute())
	assert.Equal(t, "linkshortener 1.2.3\n", out.String())
}

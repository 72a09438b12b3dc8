package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNew_Defaults(t *testing.T) {
	t.Setenv("LEDGER_TIMEOUT", "")
	t.Setenv("RESERVATION_ENFORCE_STOCK", "")

	cfg := New()

	assert.Equal(t, 15*time.Second, cfg.Ledger.Timeout, "пустое значение должно заменяться значением по умолчанию")
	assert.False(t, cfg.Reservation.EnforceStock)
	assert.Equal(t, 5*time.Minute, cfg.Cache.CatalogTTL)
}

func TestNew_FromEnv(t *testing.T) {
	t.Setenv("LEDGER_BASE_URL", "https://1c.example.local/hs/api")
	t.Setenv("LEDGER_API_KEY", "secret")
	t.Setenv("LEDGER_TIMEOUT", "3s")
	t.Setenv("RESERVATION_ENFORCE_STOCK", "true")
	t.Setenv("REDIS_DB", "2")

	cfg := New()

	assert.Equal(t, "https://1c.example.local/hs/api", cfg.Ledger.BaseURL)
	assert.Equal(t, "secret", cfg.Ledger.APIKey)
	assert.Equal(t, 3*time.Second, cfg.Ledger.Timeout)
	assert.True(t, cfg.Reservation.EnforceStock)
	assert.Equal(t, 2, cfg.Redis.DB)
}

func TestGetEnvHelpers_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("X_INT", "abc")
	t.Setenv("X_BOOL", "maybe")
	t.Setenv("X_DUR", "forever")

	assert.Equal(t, 7, getEnvInt("X_INT", 7))
	assert.True(t, getEnvBool("X_BOOL", true))
	assert.Equal(t, time.Minute, getEnvDuration("X_DUR", time.Minute))
}

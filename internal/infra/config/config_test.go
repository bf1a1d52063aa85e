package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "")
	t.Setenv("RETRY_BACKOFF", "")
	t.Setenv("SESSION_TTL", "")
	t.Setenv("STORAGE_DRIVER", "")
	t.Setenv("BOOKING_TIMEZONE", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, StorageMemory, cfg.StorageDriver)
	assert.Equal(t, time.UTC, cfg.BookingLocation)
	assert.Equal(t, []time.Duration{time.Second, 5 * time.Second, 30 * time.Second}, cfg.RetryBackoff)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
	assert.True(t, cfg.Dev())
}

func TestLoadRequiresDriverURL(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "postgres")
	t.Setenv("POSTGRES_URL", "")

	_, err := Load()
	assert.ErrorContains(t, err, "POSTGRES_URL")
}

func TestLoadParsesBrokersAndZone(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("BOOKING_TIMEZONE", "Europe/Berlin")
	t.Setenv("REDIS_DB", "2")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "Europe/Berlin", cfg.BookingLocation.String())
	assert.Equal(t, 2, cfg.RedisDB)
}

func TestLoadRejectsBadBackoff(t *testing.T) {
	t.Setenv("RETRY_BACKOFF", "1s,soon")

	_, err := Load()
	assert.ErrorContains(t, err, "RETRY_BACKOFF")
}

func TestLoadAdminPair(t *testing.T) {
	t.Setenv("ADMIN_EMAIL", "root@example.com")
	t.Setenv("ADMIN_PASSWORD", "")

	_, err := Load()
	assert.Error(t, err)
}

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

	assert.Equal(t, ":8080", cfg.Port)
	assert.Equal(t, "development", cfg.AppEnv)
	assert.Equal(t, StoragePostgres, cfg.StorageDriver)
	assert.False(t, cfg.KafkaConfig.Enabled())
	assert.Equal(t, 5*time.Second, cfg.Partners.Timeout)
	assert.Equal(t, 10*time.Second, cfg.Saga.StepTimeout)
	assert.Equal(t, time.Duration(0), cfg.Reconcile.Interval)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("TRAVEL_SERVICE_PORT", ":9090")
	t.Setenv("TRAVEL_KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092,")
	t.Setenv("TRAVEL_FLIGHT_API_URL", "http://flights.local/api/")
	t.Setenv("TRAVEL_PARTNER_TIMEOUT", "2s")
	t.Setenv("TRAVEL_RECONCILE_INTERVAL", "1m")
	t.Setenv("TRAVEL_STORAGE_DRIVER", "MEMORY")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Port)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.KafkaConfig.Brokers)
	assert.Equal(t, "http://flights.local/api", cfg.Partners.FlightURL)
	assert.Equal(t, 2*time.Second, cfg.Partners.Timeout)
	assert.Equal(t, time.Minute, cfg.Reconcile.Interval)
	assert.Equal(t, StorageMemory, cfg.StorageDriver)
}

func TestLoad_RequiresPartnersOutsideDevelopment(t *testing.T) {
	t.Setenv("TRAVEL_APP_ENV", "production")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_RejectsStepTimeoutShorterThanPartnerTimeout(t *testing.T) {
	t.Setenv("TRAVEL_PARTNER_TIMEOUT", "30s")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_RejectsUnknownStorage(t *testing.T) {
	t.Setenv("TRAVEL_STORAGE_DRIVER", "mongo")

	_, err := Load()
	assert.Error(t, err)
}

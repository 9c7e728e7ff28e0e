package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DriverSQLite, cfg.DB.Driver)
	assert.Equal(t, 8000, cfg.Server.RealtimePort)
	assert.Equal(t, 3*time.Second, cfg.Scheduler.MinInterval)
	assert.Equal(t, 5*time.Second, cfg.Scheduler.MaxInterval)
	assert.Equal(t, 0.7, cfg.Risk.AlertThreshold)
	assert.Equal(t, 6*time.Hour, cfg.Analytics.Window)
	assert.True(t, cfg.Analytics.ClampDetectionRate)
	assert.Equal(t, "transactions", cfg.Kafka.TransactionTopic)
	assert.Equal(t, "fraud-alerts", cfg.Kafka.AlertTopic)
	assert.Equal(t, StreamNone, cfg.Stream.Backend)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("DB_PATH", "/tmp/override.db")
	t.Setenv("SERVER_REALTIME_PORT", "9100")
	t.Setenv("SCHEDULER_MIN_INTERVAL", "100ms")
	t.Setenv("SCHEDULER_MAX_INTERVAL", "200ms")
	t.Setenv("ANALYTICS_CLAMP_DETECTION_RATE", "false")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/tmp/override.db", cfg.DB.Path)
	assert.Equal(t, 9100, cfg.Server.RealtimePort)
	assert.Equal(t, 100*time.Millisecond, cfg.Scheduler.MinInterval)
	assert.Equal(t, 200*time.Millisecond, cfg.Scheduler.MaxInterval)
	assert.False(t, cfg.Analytics.ClampDetectionRate)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
}

func TestLoad_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "guardchain.yaml")
	content := "analytics:\n  window: 24h\nrisk:\n  factor_mode: random\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Setenv("CONFIG_FILE", path)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 24*time.Hour, cfg.Analytics.Window)
	assert.Equal(t, "random", cfg.Risk.FactorMode)
}

func TestLoad_InvalidInterval(t *testing.T) {
	t.Setenv("SCHEDULER_MIN_INTERVAL", "5s")
	t.Setenv("SCHEDULER_MAX_INTERVAL", "1s")

	_, err := Load()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid scheduler interval")
}

func TestValidate_PostgresRequiresURL(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	cfg.DB.Driver = DriverPostgres
	cfg.DB.PostgresURL = ""
	assert.Error(t, cfg.Validate())

	cfg.DB.PostgresURL = "postgres://localhost/guardchain"
	assert.NoError(t, cfg.Validate())
}

func TestValidate_UnknownBackend(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	cfg.Stream.Backend = "nats"
	assert.Error(t, cfg.Validate())
}

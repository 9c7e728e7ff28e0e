package redis

import (
	"context"
	"testing"
	"time"

	"guardchain-realtime/config"
	"guardchain-realtime/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		Redis: config.RedisConfig{
			Host:        "127.0.0.1", // IPv4 вместо localhost
			Port:        "6379",
			SnapshotTTL: time.Minute,
		},
	}
}

func setupTestRedis(t *testing.T) *Client {
	t.Helper()

	client, err := NewClient(context.Background(), testConfig())
	if err != nil {
		t.Skipf("Skipping test: Redis not available: %v", err)
	}

	ctx := context.Background()
	client.rdb.FlushDB(ctx)
	t.Cleanup(func() {
		client.rdb.FlushDB(context.Background())
		_ = client.Close()
	})
	return client
}

func TestNewClient_DefaultTTL(t *testing.T) {
	cfg := testConfig()
	cfg.Redis.SnapshotTTL = 0

	client, err := NewClient(context.Background(), cfg)
	if err != nil {
		t.Skipf("Skipping test: Redis not available: %v", err)
	}
	defer client.Close()

	assert.Equal(t, defaultSnapshotTTL, client.snapshotTTL)
}

func TestNewClient_Unreachable(t *testing.T) {
	cfg := testConfig()
	cfg.Redis.Port = "1" // порт, на котором Redis заведомо не слушает

	_, err := NewClient(context.Background(), cfg)
	assert.Error(t, err)
}

func TestClient_RiskStats(t *testing.T) {
	client := setupTestRedis(t)
	ctx := context.Background()

	stats, err := client.GetRiskStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.RiskDistribution{}, stats)

	require.NoError(t, client.IncrementRiskStats(ctx, models.RiskBucketHigh))
	require.NoError(t, client.IncrementRiskStats(ctx, models.RiskBucketHigh))
	require.NoError(t, client.IncrementRiskStats(ctx, models.RiskBucketLow))

	stats, err = client.GetRiskStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.RiskDistribution{Low: 1, Medium: 0, High: 2}, stats)
}

func TestClient_Snapshot(t *testing.T) {
	client := setupTestRedis(t)
	ctx := context.Background()

	missing, err := client.GetSnapshot(ctx)
	require.NoError(t, err)
	assert.Nil(t, missing)

	snapshot := &models.AnalyticsSnapshot{
		TotalTransactions: 6,
		RiskDistribution:  models.RiskDistribution{Low: 1, Medium: 2, High: 3},
		DetectionRate:     0.77,
	}
	require.NoError(t, client.SaveSnapshot(ctx, snapshot))

	got, err := client.GetSnapshot(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, int64(6), got.TotalTransactions)
	assert.Equal(t, snapshot.RiskDistribution, got.RiskDistribution)

	ttl := client.rdb.TTL(ctx, latestSnapshotKey).Val()
	assert.True(t, ttl > 0 && ttl <= time.Minute)
}

func TestClient_ClearRealtimeData(t *testing.T) {
	client := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, client.IncrementRiskStats(ctx, models.RiskBucketMedium))
	require.NoError(t, client.SaveSnapshot(ctx, &models.AnalyticsSnapshot{}))
	client.rdb.Set(ctx, "unrelated", "keep", 0)

	require.NoError(t, client.ClearRealtimeData(ctx))

	stats, err := client.GetRiskStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.RiskDistribution{}, stats)

	snapshot, err := client.GetSnapshot(ctx)
	require.NoError(t, err)
	assert.Nil(t, snapshot)

	assert.Equal(t, "keep", client.rdb.Get(ctx, "unrelated").Val())
}

package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"guardchain-realtime/internal/models"

	redisv9 "github.com/redis/go-redis/v9"
)

const (
	snapshotKeyPrefix = "analytics:"
	latestSnapshotKey = snapshotKeyPrefix + "snapshot:latest"
)

// SaveSnapshot сохраняет последний снимок аналитики с TTL
func (c *Client) SaveSnapshot(ctx context.Context, snapshot *models.AnalyticsSnapshot) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	if err := c.rdb.Set(ctx, latestSnapshotKey, data, c.snapshotTTL).Err(); err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}

// GetSnapshot возвращает последний сохраненный снимок; nil, если его нет или TTL истек
func (c *Client) GetSnapshot(ctx context.Context) (*models.AnalyticsSnapshot, error) {
	data, err := c.rdb.Get(ctx, latestSnapshotKey).Bytes()
	if err == redisv9.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get snapshot: %w", err)
	}

	var snapshot models.AnalyticsSnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}
	return &snapshot, nil
}

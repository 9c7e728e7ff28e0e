package redis

import (
	"context"
	"fmt"
)

// realtimeKeyPatterns - ключи, которые живут только в пределах одного запуска сервиса
var realtimeKeyPatterns = []string{riskStatsPrefix + "*", snapshotKeyPrefix + "*"}

// ClearRealtimeData удаляет счетчики риска и закэшированный снимок аналитики.
// Вызывается при старте, чтобы счетчики отражали только текущий запуск.
func (c *Client) ClearRealtimeData(ctx context.Context) error {
	var keys []string
	for _, pattern := range realtimeKeyPatterns {
		found, err := c.scanKeys(ctx, pattern)
		if err != nil {
			return fmt.Errorf("failed to scan %s: %w", pattern, err)
		}
		keys = append(keys, found...)
	}

	if len(keys) == 0 {
		return nil
	}
	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to delete %d realtime keys: %w", len(keys), err)
	}
	return nil
}

func (c *Client) scanKeys(ctx context.Context, pattern string) ([]string, error) {
	var keys []string
	iter := c.rdb.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	return keys, iter.Err()
}

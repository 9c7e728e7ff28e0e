package redis

import (
	"context"
	"fmt"

	"guardchain-realtime/internal/models"

	redisv9 "github.com/redis/go-redis/v9"
)

var riskBuckets = []models.RiskBucket{models.RiskBucketLow, models.RiskBucketMedium, models.RiskBucketHigh}

const riskStatsPrefix = "risk_stats:"

func riskStatsKey(bucket models.RiskBucket) string {
	return riskStatsPrefix + string(bucket)
}

// IncrementRiskStats увеличивает счетчик транзакций в корзине риска
func (c *Client) IncrementRiskStats(ctx context.Context, bucket models.RiskBucket) error {
	if err := c.rdb.Incr(ctx, riskStatsKey(bucket)).Err(); err != nil {
		return fmt.Errorf("failed to increment risk stats %s: %w", bucket, err)
	}
	return nil
}

// GetRiskStats возвращает счетчики по всем корзинам; отсутствующий ключ дает 0
func (c *Client) GetRiskStats(ctx context.Context) (models.RiskDistribution, error) {
	pipe := c.rdb.Pipeline()
	cmds := make([]*redisv9.StringCmd, len(riskBuckets))
	for i, bucket := range riskBuckets {
		cmds[i] = pipe.Get(ctx, riskStatsKey(bucket))
	}
	if _, err := pipe.Exec(ctx); err != nil && err != redisv9.Nil {
		return models.RiskDistribution{}, fmt.Errorf("failed to get risk stats: %w", err)
	}

	counts := make([]int64, len(cmds))
	for i, cmd := range cmds {
		n, err := cmd.Int64()
		if err == redisv9.Nil {
			continue
		}
		if err != nil {
			return models.RiskDistribution{}, fmt.Errorf("failed to parse risk stats %s: %w", riskBuckets[i], err)
		}
		counts[i] = n
	}

	return models.RiskDistribution{Low: counts[0], Medium: counts[1], High: counts[2]}, nil
}

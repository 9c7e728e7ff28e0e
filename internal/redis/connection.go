package redis

import (
	"context"
	"fmt"
	"net"
	"time"

	"guardchain-realtime/config"

	redisv9 "github.com/redis/go-redis/v9"
)

const (
	defaultSnapshotTTL = 10 * time.Minute
	pingTimeout        = 3 * time.Second
)

// Client хранит счетчики риска и последний снимок аналитики
type Client struct {
	rdb         *redisv9.Client
	snapshotTTL time.Duration
}

// NewClient подключается к Redis и проверяет соединение за pingTimeout
func NewClient(ctx context.Context, cfg *config.Config) (*Client, error) {
	rdb := redisv9.NewClient(&redisv9.Options{
		Addr:     net.JoinHostPort(cfg.Redis.Host, cfg.Redis.Port),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	ttl := cfg.Redis.SnapshotTTL
	if ttl <= 0 {
		ttl = defaultSnapshotTTL
	}
	return &Client{rdb: rdb, snapshotTTL: ttl}, nil
}

// Close закрывает соединение с Redis
func (c *Client) Close() error {
	return c.rdb.Close()
}

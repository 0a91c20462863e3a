// Package redis wraps the go-redis client with project configuration and
// health reporting. The registry uses it for rate-limit counters only; it
// is never a read cache for registry data.
package redis

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"votesmart/internal/platform/config"
)

// Client wraps the underlying redis client.
type Client struct {
	rdb    *redis.Client
	logger *slog.Logger
}

// New connects to redis using the supplied configuration. Returns nil when
// no URL is configured; callers treat a nil client as "feature disabled".
func New(ctx context.Context, cfg config.Redis, logger *slog.Logger) (*Client, error) {
	if cfg.URL == "" {
		return nil, nil
	}

	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	if cfg.PoolSize > 0 {
		opts.PoolSize = cfg.PoolSize
	}
	if cfg.MinIdleConns > 0 {
		opts.MinIdleConns = cfg.MinIdleConns
	}
	if cfg.DialTimeout > 0 {
		opts.DialTimeout = cfg.DialTimeout
	}
	if cfg.ReadTimeout > 0 {
		opts.ReadTimeout = cfg.ReadTimeout
	}
	if cfg.WriteTimeout > 0 {
		opts.WriteTimeout = cfg.WriteTimeout
	}

	rdb := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	logger.InfoContext(ctx, "connected to redis", "pool_size", opts.PoolSize)
	return &Client{rdb: rdb, logger: logger}, nil
}

// Redis exposes the raw client for commands not covered by helpers.
func (c *Client) Redis() *redis.Client {
	return c.rdb
}

// Health reports whether redis answers a ping.
func (c *Client) Health(ctx context.Context) error {
	if c == nil {
		return nil
	}
	return c.rdb.Ping(ctx).Err()
}

// Close releases the connection pool.
func (c *Client) Close() error {
	if c == nil {
		return nil
	}
	return c.rdb.Close()
}

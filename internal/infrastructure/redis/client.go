package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Config holds Redis connection settings.
type Config struct {
	URL         string
	DialTimeout time.Duration // defaults to 5s
	PoolSize    int           // 0 keeps the go-redis default
}

// NewClient parses cfg.URL, applies the overrides and pings the server
// before returning.
func NewClient(ctx context.Context, cfg Config) (*redis.Client, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	opts.DialTimeout = cfg.DialTimeout
	if opts.DialTimeout <= 0 {
		opts.DialTimeout = 5 * time.Second
	}
	if cfg.PoolSize > 0 {
		opts.PoolSize = cfg.PoolSize
	}

	client := redis.NewClient(opts)
	if err := Ping(client)(ctx); err != nil {
		client.Close()
		return nil, err
	}

	return client, nil
}

// Ping returns a readiness check for client bounded by its dial timeout.
func Ping(client *redis.Client) func(context.Context) error {
	return func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, client.Options().DialTimeout)
		defer cancel()

		if err := client.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("failed to ping redis: %w", err)
		}
		return nil
	}
}

// Package redis owns the go-redis connection used by the prime record sink.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"primelab/internal/platform/config"
	"primelab/pkg/platform/sentinel"
)

const defaultHealthTimeout = 2 * time.Second

// Client is a lazily connecting go-redis pool. Construction never dials;
// callers decide what an unhealthy server means via Health.
type Client struct {
	*redis.Client
	healthTimeout time.Duration
}

// Options turns the redis section of the config into go-redis options.
// Zero values keep the go-redis defaults.
func Options(cfg config.RedisConfig) (*redis.Options, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
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
	return opts, nil
}

// New returns nil when no URL is configured.
func New(cfg config.RedisConfig) (*Client, error) {
	if cfg.URL == "" {
		return nil, nil
	}
	opts, err := Options(cfg)
	if err != nil {
		return nil, err
	}
	timeout := defaultHealthTimeout
	if cfg.DialTimeout > 0 {
		timeout = cfg.DialTimeout
	}
	return &Client{Client: redis.NewClient(opts), healthTimeout: timeout}, nil
}

// Health pings the server within the dial timeout. Failures wrap
// sentinel.ErrUnavailable.
func (c *Client) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.healthTimeout)
	defer cancel()
	if err := c.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis %s: %w: %w", c.Options().Addr, sentinel.ErrUnavailable, err)
	}
	return nil
}

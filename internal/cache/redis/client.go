// Package redis holds the scanner's Redis plumbing: the Pub/Sub bus that
// carries per-subscriber scan results to notifier processes, and the cycle
// lock that keeps scanner replicas from running overlapping cycles. Nothing
// in here caches; every key is either a transient lock or a fire-and-forget
// message.
package redis

import (
	"context"
	"crypto/tls"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// keyPrefix namespaces every key this application writes.
const keyPrefix = "arbscan:"

// ClientConfig holds the connection parameters the scanner wires from its
// [redis] config section.
type ClientConfig struct {
	Addr       string
	Password   string
	DB         int
	PoolSize   int
	TLSEnabled bool
}

// Client wraps the go-redis driver for the bus and lock constructors.
type Client struct {
	rdb *redis.Client
}

// New connects to Redis and verifies the connection with a ping before
// returning. A Redis that cannot be reached at startup fails the wire step
// rather than the first scan cycle.
func New(ctx context.Context, cfg ClientConfig) (*Client, error) {
	opts := &redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	}
	if cfg.TLSEnabled {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}

	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis: ping %s: %w", cfg.Addr, err)
	}

	return &Client{rdb: rdb}, nil
}

// Close closes the connection pool.
func (c *Client) Close() error {
	return c.rdb.Close()
}

// Underlying exposes the raw driver to the bus and lock in this package.
func (c *Client) Underlying() *redis.Client {
	return c.rdb
}

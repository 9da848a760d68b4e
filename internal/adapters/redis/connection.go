// Package redis provides the optional caches this engine layers over
// Postgres: the recipient resolver cache (SPEC_FULL.md §4.12) and the
// per-key rate limiter's token buckets (spec.md §4.6, §9).
package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/agentledger/ledger/pkg/mlog"
)

// Connection is a hub which deals with the redis connection, mirroring
// the Postgres Connection's lazy-connect shape.
type Connection struct {
	Address   string
	Password  string
	DB        int
	Logger    mlog.Logger
	client    *redis.Client
	connected bool
}

// Connect opens the client and verifies it with a PING.
func (c *Connection) Connect(ctx context.Context) error {
	c.client = redis.NewClient(&redis.Options{
		Addr:     c.Address,
		Password: c.Password,
		DB:       c.DB,
	})

	if err := c.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis: ping: %w", err)
	}

	c.connected = true

	if c.Logger != nil {
		c.Logger.Info("redis: connected")
	}

	return nil
}

// Client returns the redis client, connecting lazily on first use.
func (c *Connection) Client(ctx context.Context) (*redis.Client, error) {
	if !c.connected {
		if err := c.Connect(ctx); err != nil {
			return nil, err
		}
	}

	return c.client, nil
}

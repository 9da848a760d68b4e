package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/agentledger/ledger/internal/domain/recipient"
)

// DefaultRecipientCacheTTL bounds how long a resolved recipient is
// trusted before the next resolve re-reads storage (SPEC_FULL.md §4.12):
// long enough to absorb repeat-payer bursts, short enough that a wallet
// freeze or handle change is picked up promptly.
const DefaultRecipientCacheTTL = 30 * time.Second

// RecipientCache implements recipient.Cache over a redis key namespace.
type RecipientCache struct {
	conn *Connection
	ttl  time.Duration
}

// NewRecipientCache returns a recipient.Cache backed by conn with ttl
// (DefaultRecipientCacheTTL if zero).
func NewRecipientCache(conn *Connection, ttl time.Duration) *RecipientCache {
	if ttl <= 0 {
		ttl = DefaultRecipientCacheTTL
	}

	return &RecipientCache{conn: conn, ttl: ttl}
}

func (c *RecipientCache) Get(ctx context.Context, key string) (recipient.Resolved, bool) {
	client, err := c.conn.Client(ctx)
	if err != nil {
		return recipient.Resolved{}, false
	}

	raw, err := client.Get(ctx, c.namespaced(key)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) && c.conn.Logger != nil {
			c.conn.Logger.Warn("recipient cache get failed", err)
		}

		return recipient.Resolved{}, false
	}

	var resolved recipient.Resolved
	if err := json.Unmarshal(raw, &resolved); err != nil {
		return recipient.Resolved{}, false
	}

	return resolved, true
}

func (c *RecipientCache) Set(ctx context.Context, key string, value recipient.Resolved) {
	client, err := c.conn.Client(ctx)
	if err != nil {
		return
	}

	raw, err := json.Marshal(value)
	if err != nil {
		return
	}

	if err := client.Set(ctx, c.namespaced(key), raw, c.ttl).Err(); err != nil && c.conn.Logger != nil {
		c.conn.Logger.Warn("recipient cache set failed", err)
	}
}

func (c *RecipientCache) namespaced(key string) string {
	return "recipient:" + key
}

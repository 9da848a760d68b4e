// Package rabbitmq implements command.AuditPublisher: a fire-and-forget
// publisher of completed-operation records to the audit pipeline, out of
// this engine's own scope per spec.md §1 but wired as a domain dependency
// per SPEC_FULL.md's domain stack.
package rabbitmq

import (
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/agentledger/ledger/pkg/mlog"
)

// Connection is a hub which deals with the rabbitmq connection and
// channel, reconnecting lazily the same way the Postgres/redis
// Connection types do.
type Connection struct {
	URL    string
	Logger mlog.Logger

	mu      sync.Mutex
	conn    *amqp.Connection
	channel *amqp.Channel
}

// Channel returns the open channel, connecting lazily on first use.
func (c *Connection) Channel() (*amqp.Channel, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.channel != nil && !c.channel.IsClosed() {
		return c.channel, nil
	}

	conn, err := amqp.Dial(c.URL)
	if err != nil {
		return nil, fmt.Errorf("rabbitmq: dial: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("rabbitmq: open channel: %w", err)
	}

	c.conn = conn
	c.channel = channel

	if c.Logger != nil {
		c.Logger.Info("rabbitmq: connected")
	}

	return c.channel, nil
}

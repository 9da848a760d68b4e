package rabbitmq

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// AuditExchange is the topic exchange every audit event is published to.
// Routing key is the event type (e.g. "transfer.posted", "hold.captured").
const AuditExchange = "ledger.audit"

// AuditPublisher implements command.AuditPublisher over a rabbitmq topic
// exchange. Publish failures are logged, never returned — per
// command.AuditPublisher's contract, audit delivery must never fail or
// delay the operation it describes.
type AuditPublisher struct {
	conn *Connection
}

// NewAuditPublisher returns a command.AuditPublisher backed by conn.
func NewAuditPublisher(conn *Connection) *AuditPublisher {
	return &AuditPublisher{conn: conn}
}

func (p *AuditPublisher) Publish(ctx context.Context, eventType string, payload map[string]any) {
	channel, err := p.conn.Channel()
	if err != nil {
		p.logError(eventType, err)
		return
	}

	body, err := json.Marshal(payload)
	if err != nil {
		p.logError(eventType, err)
		return
	}

	publishCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	err = channel.PublishWithContext(publishCtx,
		AuditExchange,
		eventType,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
	if err != nil {
		p.logError(eventType, err)
	}
}

func (p *AuditPublisher) logError(eventType string, err error) {
	if p.conn.Logger != nil {
		p.conn.Logger.Errorf("audit publish failed for %s: %s", eventType, err.Error())
	}
}

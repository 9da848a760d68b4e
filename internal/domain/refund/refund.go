// Package refund holds the Refund entity: the record of reversing part
// or all of a capture back to the original payer (spec.md §3, §4.4).
package refund

import (
	"context"

	"github.com/agentledger/ledger/pkg/money"
)

// Refund is one reversal of value from a capture's recipient back to the
// wallet that originated the hold being captured.
type Refund struct {
	ID              string
	CaptureID       string
	Amount          money.Amount
	Currency        string
	JournalEntryID  string
	IdempotencyKey  string
	CreatedByAPIKey string
}

// Repository is the storage port for refunds.
type Repository interface {
	Create(ctx context.Context, r *Refund) (*Refund, error)
	FindByIdempotencyKey(ctx context.Context, idempotencyKey, createdByAPIKey string) (*Refund, error)
}

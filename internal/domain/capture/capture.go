// Package capture holds the Capture entity: the record of pulling value
// out of a hold toward a recipient (spec.md §3, §4.3).
package capture

import (
	"context"

	"github.com/agentledger/ledger/pkg/money"

	cn "github.com/agentledger/ledger/pkg/constant"
)

// Capture is one settlement of part or all of a hold to a recipient wallet.
type Capture struct {
	ID              string
	HoldID          string
	ToWalletID      string
	Amount          money.Amount
	Currency        string
	JournalEntryID  string
	IdempotencyKey  string
	CreatedByAPIKey string
	RefundedAmount  money.Amount
}

// Refundable returns the amount still available to refund.
func (c *Capture) Refundable() money.Amount {
	return c.Amount.Sub(c.RefundedAmount)
}

// CanRefund validates a proposed refund amount against this capture's
// remaining refundable balance (spec.md §4.4).
func (c *Capture) CanRefund(amt money.Amount) error {
	if !amt.IsPositive() || amt.GreaterThan(c.Refundable()) {
		return cn.ErrAmountExceedsRefundable
	}

	return nil
}

// Repository is the storage port for captures.
type Repository interface {
	Create(ctx context.Context, c *Capture) (*Capture, error)
	Find(ctx context.Context, id string) (*Capture, error)
	FindByIdempotencyKey(ctx context.Context, idempotencyKey, createdByAPIKey string) (*Capture, error)

	// Lock takes a row-level exclusive lock on the capture and returns
	// its current state, for the refund transaction.
	Lock(ctx context.Context, id string) (*Capture, error)

	ApplyRefund(ctx context.Context, id string, amt money.Amount) (*Capture, error)
}

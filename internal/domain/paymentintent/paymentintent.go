// Package paymentintent holds the PaymentIntent entity: a
// merchant-initiated request to be paid, consumed at most once by a
// payer (spec.md §3, §4.5).
package paymentintent

import (
	"context"
	"time"

	"github.com/agentledger/ledger/pkg/money"

	cn "github.com/agentledger/ledger/pkg/constant"
)

// Status is a payment intent's lifecycle state. Transitions are
// monotonic: once Paid or Expired the status never reverts (spec.md §4.5).
type Status string

const (
	StatusRequiresPayment Status = "requires_payment"
	StatusPaid            Status = "paid"
	StatusExpired         Status = "expired"
	StatusCancelled       Status = "cancelled"
)

// Bounds on how far in the future an intent may expire (spec.md §4.5).
const (
	MinExpiresIn = 60 * time.Second
	MaxExpiresIn = 24 * time.Hour
)

// PaymentIntent is a merchant-issued payable.
type PaymentIntent struct {
	ID              string
	MerchantWalletID string
	Amount          money.Amount
	Currency        string
	Status          Status
	ExpiresAt       time.Time
	PayerWalletID   *string
	JournalEntryID  *string
	IdempotencyKey  string
	CreatedByAPIKey string
	Metadata        map[string]any
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// IsExpired reports whether now is past the intent's expiry.
func (p *PaymentIntent) IsExpired(now time.Time) bool {
	return now.After(p.ExpiresAt)
}

// CanPay validates that the intent is presently payable, independent of
// who is paying it or for how much — currency/self-payment/limit checks
// happen one layer up where the payer is known (spec.md §4.5).
func (p *PaymentIntent) CanPay(now time.Time) error {
	if p.Status == StatusPaid || p.Status == StatusCancelled {
		return cn.ErrPaymentIntentNotPayable
	}

	if p.Status == StatusExpired || p.IsExpired(now) {
		return cn.ErrPaymentIntentExpired
	}

	return nil
}

// Repository is the storage port for payment intents.
type Repository interface {
	Create(ctx context.Context, p *PaymentIntent) (*PaymentIntent, error)
	Find(ctx context.Context, id string) (*PaymentIntent, error)
	FindByIdempotencyKey(ctx context.Context, idempotencyKey, createdByAPIKey string) (*PaymentIntent, error)

	// Lock takes a row-level exclusive lock on the intent and returns
	// its current state, for the pay transaction.
	Lock(ctx context.Context, id string) (*PaymentIntent, error)

	MarkPaid(ctx context.Context, id, payerWalletID, journalEntryID string) (*PaymentIntent, error)
}

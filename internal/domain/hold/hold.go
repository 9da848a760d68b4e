// Package hold holds the Hold entity: a time-bounded reservation of
// funds against a wallet, partially or fully captured or released
// (spec.md §3, §4.3).
package hold

import (
	"context"
	"time"

	"github.com/agentledger/ledger/pkg/money"
)

// Status is a hold's lifecycle state.
type Status string

const (
	StatusActive   Status = "active"
	StatusCaptured Status = "captured"
	StatusReleased Status = "released"
	StatusExpired  Status = "expired"
)

// Bounds on how far in the future a hold may expire (spec.md §4.3).
const (
	MinExpiresIn = 60 * time.Second
	MaxExpiresIn = 7 * 24 * time.Hour
)

// Hold is a reservation of funds pending later capture or release.
type Hold struct {
	ID              string
	WalletID        string
	Amount          money.Amount
	RemainingAmount money.Amount
	Currency        string
	Status          Status
	ExpiresAt       time.Time
	CreatedByAPIKey string
	IdempotencyKey  string
	JournalEntryID  string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// IsExpired reports whether now is past the hold's expiry, independent of
// the persisted status (the lazy side of spec.md §4.3's expiry handling:
// an active hold whose expiry has passed is no longer capturable even
// before a sweep or touch flips its stored status).
func (h *Hold) IsExpired(now time.Time) bool {
	return now.After(h.ExpiresAt)
}

// CanCapture reports whether amt can currently be captured from h.
func (h *Hold) CanCapture(amt money.Amount, now time.Time) error {
	if h.Status != StatusActive {
		return errNotCapturable
	}

	if h.IsExpired(now) {
		return errExpired
	}

	if !amt.IsPositive() || amt.GreaterThan(h.RemainingAmount) {
		return errExceedsHold
	}

	return nil
}

// CanRelease reports whether amt can currently be released from h. Unlike
// capture, release is explicitly allowed on an expired-but-still-active
// hold (spec.md §4.3: "it is how funds come back").
func (h *Hold) CanRelease(amt money.Amount) error {
	if h.Status != StatusActive {
		return errNotReleasable
	}

	if !amt.IsPositive() || amt.GreaterThan(h.RemainingAmount) {
		return errExceedsHold
	}

	return nil
}

// Repository is the storage port for holds.
type Repository interface {
	Create(ctx context.Context, h *Hold) (*Hold, error)
	Find(ctx context.Context, id string) (*Hold, error)
	FindByIdempotencyKey(ctx context.Context, idempotencyKey, createdByAPIKey string) (*Hold, error)

	// Lock takes a row-level exclusive lock on the hold and returns its
	// current state, for the capture/release/expiry-sweep transactions.
	Lock(ctx context.Context, id string) (*Hold, error)

	// ApplyDebit reduces h.RemainingAmount by amt and, if it reaches
	// zero, sets status to newStatusIfDrained. Must run inside the same
	// transaction as the entry it accompanies (spec.md §7's "Fatal
	// behavior": the posting and the dependent-object update are one
	// transaction).
	ApplyDebit(ctx context.Context, id string, amt money.Amount, newStatusIfDrained Status) (*Hold, error)

	// ListExpiredActive returns active holds whose expires_at is before
	// asOf, for the background sweep (spec.md §4.3, SPEC_FULL.md §4.11).
	ListExpiredActive(ctx context.Context, asOf time.Time, limit int) ([]*Hold, error)
}

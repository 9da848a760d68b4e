// Package ledgeraccount holds the LedgerAccount entity: the addressable
// endpoints of the double-entry system (spec.md §3). Every wallet owns
// exactly one `available` and one `held` ledger account for its lifetime.
package ledgeraccount

import (
	"context"

	"github.com/agentledger/ledger/pkg/money"
)

// Kind is which of a wallet's two accounts this row is.
type Kind string

const (
	KindAvailable Kind = "available"
	KindHeld      Kind = "held"
)

// LedgerAccount is one of a wallet's two balance-holding rows.
type LedgerAccount struct {
	ID       string
	WalletID string
	Kind     Kind
	Currency string
}

// Repository is the storage port for ledger accounts.
type Repository interface {
	// EnsureForWallet creates the wallet's available and held accounts if
	// they do not already exist, and returns both. Idempotent: safe to
	// call on every operation touching a wallet for the first time.
	EnsureForWallet(ctx context.Context, walletID, currency string) (available, held *LedgerAccount, error error)
	FindByWalletAndKind(ctx context.Context, walletID string, kind Kind) (*LedgerAccount, error)

	// Find looks up a single ledger account by id, used by the
	// transaction-listing feed to map a counterparty journal line back to
	// its owning wallet (spec.md §4.8).
	Find(ctx context.Context, id string) (*LedgerAccount, error)

	// LockAndBalance takes a row-level exclusive lock on each listed
	// account id, in ascending id order whatever order the ids are passed
	// in (spec.md §4.1's lock discipline), and
	// returns each account's posted balance read after the lock is held.
	// Must be called inside an active transaction (see TxRunner).
	LockAndBalance(ctx context.Context, accountIDs []string) (map[string]money.Amount, error)
}

// TxRunner runs fn inside a single database transaction, committing on a
// nil return and rolling back otherwise. Every mutating service method
// runs its whole body through exactly one TxRunner.Run call, per
// spec.md §5 ("all state mutation occurs in a single database transaction").
type TxRunner interface {
	Run(ctx context.Context, fn func(ctx context.Context) error) error
}

package wallet

import "context"

// Repository is the storage port for wallets. Find returns
// pkgerrors.EntityNotFoundError (or an error satisfying errors.Is against
// it) on a miss; FindByHandle returns (nil, nil) on a miss since an
// absent handle is an expected, non-exceptional outcome of resolution.
type Repository interface {
	Create(ctx context.Context, w *Wallet) (*Wallet, error)
	Find(ctx context.Context, id string) (*Wallet, error)
	FindByHandle(ctx context.Context, handle string) (*Wallet, error)
	Update(ctx context.Context, w *Wallet) (*Wallet, error)
	// UpdateStatus changes only the status column, used by freeze/close
	// admin operations so it never races a concurrent metadata update.
	UpdateStatus(ctx context.Context, id string, status Status) (*Wallet, error)

	// FindOrCreateSystemWallet returns the ledger's single system-type
	// wallet for currency, creating it on first use. The deposit flow is
	// the only caller (spec.md §4.9).
	FindOrCreateSystemWallet(ctx context.Context, currency string) (*Wallet, error)
}

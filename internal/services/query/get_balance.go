package query

import (
	"context"

	"github.com/agentledger/ledger/pkg/money"
)

// Balance is a wallet's available and held amounts, derived from posted
// journal lines (spec.md §2: "reads derive balances by summing posted
// journal lines").
type Balance struct {
	Currency  string
	Available money.Amount
	Held      money.Amount
}

// GetBalance reads the current available and held balances for a wallet.
// It runs outside any write transaction, so the row lock LockAndBalance
// takes is released the instant the read completes and never blocks a
// concurrent posting (spec.md §5).
func (uc *UseCase) GetBalance(ctx context.Context, walletID, currency string) (*Balance, error) {
	avail, held, err := uc.LedgerAccountRepo.EnsureForWallet(ctx, walletID, currency)
	if err != nil {
		return nil, err
	}

	balances, err := uc.LedgerAccountRepo.LockAndBalance(ctx, []string{avail.ID, held.ID})
	if err != nil {
		return nil, err
	}

	return &Balance{
		Currency:  currency,
		Available: balances[avail.ID],
		Held:      balances[held.ID],
	}, nil
}

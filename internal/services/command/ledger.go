package command

import (
	"context"
	"sort"

	"github.com/agentledger/ledger/internal/domain/journal"
	"github.com/agentledger/ledger/pkg/money"

	cn "github.com/agentledger/ledger/pkg/constant"
)

// lockAndBalance takes the exclusive row locks on accountIDs in ascending
// id order and returns each account's posted balance, implementing
// spec.md §4.1's lock discipline: "the only permitted lock order" and
// the requirement that balances be read after locking.
func lockAndBalance(ctx context.Context, repo interface {
	LockAndBalance(ctx context.Context, accountIDs []string) (map[string]money.Amount, error)
}, accountIDs []string) (map[string]money.Amount, error) {
	sorted := append([]string(nil), accountIDs...)
	sort.Strings(sorted)

	return repo.LockAndBalance(ctx, sorted)
}

// postBalanced validates and posts a balanced entry via uc.JournalRepo.
// It is the sole path every mutating operation uses to write a journal
// entry (spec.md §4.1 step 1-2).
func (uc *UseCase) postBalanced(ctx context.Context, entryType journal.EntryType, idempotencyKey, createdByAPIKey string, referenceID *string, metadata map[string]any, lines []journal.Line) (*journal.Entry, error) {
	entry, err := journal.NewEntry(entryType, idempotencyKey, createdByAPIKey, referenceID, metadata, lines)
	if err != nil {
		return nil, err
	}

	return uc.JournalRepo.Post(ctx, entry)
}

// probeIdempotency looks up a prior entry for (idempotencyKey, creator)
// scoped to the expected operation family, per spec.md §4.1: a hit
// against the expected type is a replay (found=true, err=nil); a hit
// against a different type is a conflict (ErrIdempotencyConflict).
func (uc *UseCase) probeIdempotency(ctx context.Context, idempotencyKey, createdByAPIKey string, expected journal.EntryType) (entry *journal.Entry, found bool, err error) {
	prior, err := uc.JournalRepo.FindByIdempotencyKey(ctx, idempotencyKey, createdByAPIKey)
	if err != nil {
		return nil, false, err
	}

	if prior == nil {
		return nil, false, nil
	}

	if prior.Type != expected {
		return nil, false, cn.ErrIdempotencyConflict
	}

	return prior, true, nil
}

// debitAvailable checks the non-negativity invariant of spec.md §4.1:
// after locking, an available-account debit must not push the balance
// below zero.
func debitAvailable(balances map[string]money.Amount, availableAccountID string, amount money.Amount) error {
	bal, ok := balances[availableAccountID]
	if !ok {
		return cn.ErrWalletNotFound
	}

	if bal.LessThan(amount) {
		return cn.ErrInsufficientFunds
	}

	return nil
}

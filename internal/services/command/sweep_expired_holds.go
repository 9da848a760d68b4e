package command

import (
	"context"
	"time"

	holddomain "github.com/agentledger/ledger/internal/domain/hold"
	"github.com/agentledger/ledger/internal/domain/journal"
)

// SystemSweepActorID is the fixed internal API-key id attributed to
// journal entries the expiration sweep posts on a hold's behalf
// (SPEC_FULL.md §4.11).
const SystemSweepActorID = "system-sweep"

// SweepExpiredHolds releases the full remaining amount of every active
// hold whose expires_at has passed, one hold per transaction, and marks
// it expired. Guarantees spec.md §8 invariant 3 ("funds are never lost
// to expiration") independent of any client ever touching the hold
// again (SPEC_FULL.md §4.11).
func (uc *UseCase) SweepExpiredHolds(ctx context.Context, batchSize int) (swept int, err error) {
	now := time.Now().UTC()

	expired, err := uc.HoldRepo.ListExpiredActive(ctx, now, batchSize)
	if err != nil {
		return 0, err
	}

	for _, candidate := range expired {
		sweepErr := uc.TxRunner.Run(ctx, func(ctx context.Context) error {
			return uc.sweepOne(ctx, candidate.ID)
		})
		if sweepErr != nil {
			if uc.Logger != nil {
				uc.Logger.Errorf("hold sweep failed for %s: %v", candidate.ID, sweepErr)
			}

			continue
		}

		swept++
	}

	return swept, nil
}

func (uc *UseCase) sweepOne(ctx context.Context, holdID string) error {
	locked, err := uc.HoldRepo.Lock(ctx, holdID)
	if err != nil {
		return err
	}

	if locked.Status != holddomain.StatusActive || !locked.IsExpired(time.Now().UTC()) {
		return nil
	}

	amount := locked.RemainingAmount

	avail, held, err := uc.LedgerAccountRepo.EnsureForWallet(ctx, locked.WalletID, locked.Currency)
	if err != nil {
		return err
	}

	balances, err := lockAndBalance(ctx, uc.LedgerAccountRepo, []string{avail.ID, held.ID})
	if err != nil {
		return err
	}

	if debitErr := debitAvailable(balances, held.ID, amount); debitErr != nil {
		return debitErr
	}

	lines := []journal.Line{
		{LedgerAccountID: held.ID, Direction: journal.DirectionDebit, Amount: amount, Currency: locked.Currency},
		{LedgerAccountID: avail.ID, Direction: journal.DirectionCredit, Amount: amount, Currency: locked.Currency},
	}

	idempotencyKey := "sweep:" + locked.ID

	if _, err := uc.postBalanced(ctx, journal.EntryTypeRelease, idempotencyKey, SystemSweepActorID, &locked.ID, nil, lines); err != nil {
		return err
	}

	if _, err := uc.HoldRepo.ApplyDebit(ctx, locked.ID, amount, holddomain.StatusExpired); err != nil {
		return err
	}

	uc.publishAudit(ctx, "hold.expired", map[string]any{"hold_id": locked.ID, "amount": amount.String()})

	return nil
}

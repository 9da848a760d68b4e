package command

import (
	"context"

	"github.com/agentledger/ledger/internal/domain/apikey"
	holddomain "github.com/agentledger/ledger/internal/domain/hold"
	"github.com/agentledger/ledger/internal/domain/journal"
	"github.com/agentledger/ledger/pkg/money"

	cn "github.com/agentledger/ledger/pkg/constant"
)

// ReleaseHoldInput is the validated request to return part or all of a
// hold's remaining amount to the caller's own available balance
// (spec.md §4.3).
type ReleaseHoldInput struct {
	HoldID         string
	Amount         string
	IdempotencyKey string
}

// ReleaseHold moves amt out of a hold's held balance back into the
// originating wallet's available balance. Unlike capture, release is
// permitted even on an expired hold (spec.md §4.3).
func (uc *UseCase) ReleaseHold(ctx context.Context, caller *apikey.APIKey, in ReleaseHoldInput) (h *holddomain.Hold, err error) {
	amount, parseErr := money.Parse(in.Amount)
	if parseErr != nil || !amount.IsPositive() {
		return nil, cn.ErrInvalidAmount
	}

	err = uc.TxRunner.Run(ctx, func(ctx context.Context) error {
		if prior, found, probeErr := uc.probeIdempotency(ctx, in.IdempotencyKey, caller.ID, journal.EntryTypeRelease); probeErr != nil {
			return probeErr
		} else if found {
			released, findErr := uc.HoldRepo.Find(ctx, in.HoldID)
			if findErr != nil {
				return findErr
			}

			h = released

			return nil
		}

		locked, lockErr := uc.HoldRepo.Lock(ctx, in.HoldID)
		if lockErr != nil {
			return lockErr
		}

		if locked.WalletID != caller.WalletID {
			return cn.ErrHoldNotFound
		}

		if canErr := locked.CanRelease(amount); canErr != nil {
			return canErr
		}

		avail, held, ensureErr := uc.LedgerAccountRepo.EnsureForWallet(ctx, locked.WalletID, locked.Currency)
		if ensureErr != nil {
			return ensureErr
		}

		balances, balErr := lockAndBalance(ctx, uc.LedgerAccountRepo, []string{avail.ID, held.ID})
		if balErr != nil {
			return balErr
		}

		if debitErr := debitAvailable(balances, held.ID, amount); debitErr != nil {
			return debitErr
		}

		lines := []journal.Line{
			{LedgerAccountID: held.ID, Direction: journal.DirectionDebit, Amount: amount, Currency: locked.Currency},
			{LedgerAccountID: avail.ID, Direction: journal.DirectionCredit, Amount: amount, Currency: locked.Currency},
		}

		if _, postErr := uc.postBalanced(ctx, journal.EntryTypeRelease, in.IdempotencyKey, caller.ID, &locked.ID, nil, lines); postErr != nil {
			return postErr
		}

		newStatus := holddomain.StatusActive
		if amount.Equal(locked.RemainingAmount) {
			newStatus = holddomain.StatusReleased
		}

		updated, applyErr := uc.HoldRepo.ApplyDebit(ctx, locked.ID, amount, newStatus)
		if applyErr != nil {
			return applyErr
		}

		h = updated

		uc.publishAudit(ctx, "hold.released", map[string]any{"hold_id": locked.ID, "amount": amount.String()})

		return nil
	})

	return h, err
}

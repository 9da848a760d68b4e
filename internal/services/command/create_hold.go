package command

import (
	"context"
	"time"

	"github.com/agentledger/ledger/internal/domain/apikey"
	holddomain "github.com/agentledger/ledger/internal/domain/hold"
	"github.com/agentledger/ledger/internal/domain/journal"
	"github.com/agentledger/ledger/pkg/money"

	cn "github.com/agentledger/ledger/pkg/constant"
)

// CreateHoldInput is the validated request to reserve funds against the
// caller's own wallet (spec.md §4.3).
type CreateHoldInput struct {
	Amount         string
	Currency       string
	ExpiresIn      time.Duration
	IdempotencyKey string
}

// CreateHold debits the caller's available balance and credits its held
// balance by amount, persisting a Hold row that tracks how much of it
// remains to be captured or released (spec.md §4.3).
func (uc *UseCase) CreateHold(ctx context.Context, caller *apikey.APIKey, in CreateHoldInput) (h *holddomain.Hold, err error) {
	amount, err := money.Parse(in.Amount)
	if err != nil || !amount.IsPositive() {
		return nil, cn.ErrInvalidAmount
	}

	if in.ExpiresIn < holddomain.MinExpiresIn || in.ExpiresIn > holddomain.MaxExpiresIn {
		return nil, cn.ErrInvalidExpiresIn
	}

	err = uc.TxRunner.Run(ctx, func(ctx context.Context) error {
		if prior, found, probeErr := uc.probeHoldIdempotency(ctx, in.IdempotencyKey, caller.ID); probeErr != nil {
			return probeErr
		} else if found {
			h = prior
			return nil
		}

		w, findErr := uc.WalletRepo.Find(ctx, caller.WalletID)
		if findErr != nil {
			return findErr
		}

		if !w.IsActive() {
			return statusError(w.Status)
		}

		if w.Currency != in.Currency {
			return cn.ErrCurrencyMismatch
		}

		avail, held, ensureErr := uc.LedgerAccountRepo.EnsureForWallet(ctx, w.ID, w.Currency)
		if ensureErr != nil {
			return ensureErr
		}

		balances, lockErr := lockAndBalance(ctx, uc.LedgerAccountRepo, []string{avail.ID, held.ID})
		if lockErr != nil {
			return lockErr
		}

		if limitErr := uc.enforceSpendLimits(ctx, caller, avail.ID, amount); limitErr != nil {
			return limitErr
		}

		if debitErr := debitAvailable(balances, avail.ID, amount); debitErr != nil {
			return debitErr
		}

		lines := []journal.Line{
			{LedgerAccountID: avail.ID, Direction: journal.DirectionDebit, Amount: amount, Currency: in.Currency},
			{LedgerAccountID: held.ID, Direction: journal.DirectionCredit, Amount: amount, Currency: in.Currency},
		}

		posted, postErr := uc.postBalanced(ctx, journal.EntryTypeHold, in.IdempotencyKey, caller.ID, nil, nil, lines)
		if postErr != nil {
			return postErr
		}

		created, createErr := uc.HoldRepo.Create(ctx, &holddomain.Hold{
			WalletID:        w.ID,
			Amount:          amount,
			RemainingAmount: amount,
			Currency:        in.Currency,
			Status:          holddomain.StatusActive,
			ExpiresAt:       time.Now().UTC().Add(in.ExpiresIn),
			CreatedByAPIKey: caller.ID,
			IdempotencyKey:  in.IdempotencyKey,
			JournalEntryID:  posted.ID,
		})
		if createErr != nil {
			return createErr
		}

		h = created

		uc.publishAudit(ctx, "hold.created", map[string]any{"hold_id": created.ID, "amount": amount.String()})

		return nil
	})

	return h, err
}

// probeHoldIdempotency mirrors probeIdempotency for the hold entity,
// since a hold's identity on replay is the Hold row itself, not just its
// originating journal entry (spec.md §3's "(idempotency_key, creator)
// unique" invariant on holds).
func (uc *UseCase) probeHoldIdempotency(ctx context.Context, idempotencyKey, createdByAPIKey string) (*holddomain.Hold, bool, error) {
	prior, err := uc.HoldRepo.FindByIdempotencyKey(ctx, idempotencyKey, createdByAPIKey)
	if err != nil {
		return nil, false, err
	}

	if prior == nil {
		return nil, false, nil
	}

	return prior, true, nil
}

package command

import (
	"context"
	"time"

	"github.com/agentledger/ledger/internal/domain/apikey"
	capturedomain "github.com/agentledger/ledger/internal/domain/capture"
	holddomain "github.com/agentledger/ledger/internal/domain/hold"
	"github.com/agentledger/ledger/internal/domain/journal"
	"github.com/agentledger/ledger/internal/domain/recipient"
	"github.com/agentledger/ledger/pkg/money"

	cn "github.com/agentledger/ledger/pkg/constant"
)

// CaptureHoldInput is the validated request to settle part or all of a
// hold to a recipient (spec.md §4.3).
type CaptureHoldInput struct {
	HoldID         string
	Amount         string
	To             recipient.Identifier
	IdempotencyKey string
}

// CaptureHold moves amt out of a hold's held balance into a resolved
// recipient's available balance, draining the hold when the capture
// takes its remaining amount to zero (spec.md §4.3).
func (uc *UseCase) CaptureHold(ctx context.Context, caller *apikey.APIKey, in CaptureHoldInput) (c *capturedomain.Capture, err error) {
	amount, parseErr := money.Parse(in.Amount)
	if parseErr != nil || !amount.IsPositive() {
		return nil, cn.ErrInvalidAmount
	}

	err = uc.TxRunner.Run(ctx, func(ctx context.Context) error {
		if prior, found, probeErr := uc.probeCaptureIdempotency(ctx, in.IdempotencyKey, caller.ID); probeErr != nil {
			return probeErr
		} else if found {
			c = prior
			return nil
		}

		h, lockErr := uc.HoldRepo.Lock(ctx, in.HoldID)
		if lockErr != nil {
			return lockErr
		}

		if h.WalletID != caller.WalletID {
			return cn.ErrHoldNotFound
		}

		if canErr := h.CanCapture(amount, time.Now().UTC()); canErr != nil {
			return canErr
		}

		dest, resolveErr := uc.Resolver.Resolve(ctx, in.To)
		if resolveErr != nil {
			return resolveErr
		}

		destWallet, findErr := uc.WalletRepo.Find(ctx, dest.WalletID)
		if findErr != nil {
			return findErr
		}

		if !destWallet.IsActive() {
			return statusError(destWallet.Status)
		}

		if destWallet.Currency != h.Currency {
			return cn.ErrCurrencyMismatch
		}

		callerAvail, heldAcct, ensureErr := uc.LedgerAccountRepo.EnsureForWallet(ctx, caller.WalletID, h.Currency)
		if ensureErr != nil {
			return ensureErr
		}

		destAvail, _, ensureErr := uc.LedgerAccountRepo.EnsureForWallet(ctx, destWallet.ID, destWallet.Currency)
		if ensureErr != nil {
			return ensureErr
		}

		balances, balErr := lockAndBalance(ctx, uc.LedgerAccountRepo, []string{heldAcct.ID, destAvail.ID})
		if balErr != nil {
			return balErr
		}

		if limitErr := uc.enforceLimits(ctx, caller, callerAvail.ID, amount, dest.WalletID, dest.Handle); limitErr != nil {
			return limitErr
		}

		if debitErr := debitAvailable(balances, heldAcct.ID, amount); debitErr != nil {
			return debitErr
		}

		lines := []journal.Line{
			{LedgerAccountID: heldAcct.ID, Direction: journal.DirectionDebit, Amount: amount, Currency: h.Currency},
			{LedgerAccountID: destAvail.ID, Direction: journal.DirectionCredit, Amount: amount, Currency: h.Currency},
		}

		posted, postErr := uc.postBalanced(ctx, journal.EntryTypeCapture, in.IdempotencyKey, caller.ID, &h.ID, nil, lines)
		if postErr != nil {
			return postErr
		}

		newStatus := holddomain.StatusActive
		if amount.Equal(h.RemainingAmount) {
			newStatus = holddomain.StatusCaptured
		}

		if _, applyErr := uc.HoldRepo.ApplyDebit(ctx, h.ID, amount, newStatus); applyErr != nil {
			return applyErr
		}

		created, createErr := uc.CaptureRepo.Create(ctx, &capturedomain.Capture{
			HoldID:          h.ID,
			ToWalletID:      destWallet.ID,
			Amount:          amount,
			Currency:        h.Currency,
			JournalEntryID:  posted.ID,
			IdempotencyKey:  in.IdempotencyKey,
			CreatedByAPIKey: caller.ID,
		})
		if createErr != nil {
			return createErr
		}

		c = created

		uc.publishAudit(ctx, "hold.captured", map[string]any{"hold_id": h.ID, "capture_id": created.ID, "amount": amount.String()})

		return nil
	})

	return c, err
}

func (uc *UseCase) probeCaptureIdempotency(ctx context.Context, idempotencyKey, createdByAPIKey string) (*capturedomain.Capture, bool, error) {
	prior, err := uc.CaptureRepo.FindByIdempotencyKey(ctx, idempotencyKey, createdByAPIKey)
	if err != nil {
		return nil, false, err
	}

	if prior == nil {
		return nil, false, nil
	}

	return prior, true, nil
}

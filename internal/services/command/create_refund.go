package command

import (
	"context"

	"github.com/agentledger/ledger/internal/domain/apikey"
	"github.com/agentledger/ledger/internal/domain/journal"
	refunddomain "github.com/agentledger/ledger/internal/domain/refund"
	"github.com/agentledger/ledger/pkg/money"

	cn "github.com/agentledger/ledger/pkg/constant"
)

// CreateRefundInput is the validated request to return part or all of a
// capture's value back to the wallet that originated the captured hold
// (spec.md §4.4).
type CreateRefundInput struct {
	CaptureID      string
	Amount         string
	IdempotencyKey string
}

// CreateRefund moves amt out of the capture's recipient wallet back to
// the wallet that owned the original hold, up to the capture's remaining
// refundable balance (spec.md §4.4).
func (uc *UseCase) CreateRefund(ctx context.Context, caller *apikey.APIKey, in CreateRefundInput) (r *refunddomain.Refund, err error) {
	amount, parseErr := money.Parse(in.Amount)
	if parseErr != nil || !amount.IsPositive() {
		return nil, cn.ErrInvalidAmount
	}

	err = uc.TxRunner.Run(ctx, func(ctx context.Context) error {
		if prior, found, probeErr := uc.probeRefundIdempotency(ctx, in.IdempotencyKey, caller.ID); probeErr != nil {
			return probeErr
		} else if found {
			r = prior
			return nil
		}

		c, lockErr := uc.CaptureRepo.Lock(ctx, in.CaptureID)
		if lockErr != nil {
			return lockErr
		}

		if c.ToWalletID != caller.WalletID {
			return cn.ErrCaptureNotFound
		}

		if canErr := c.CanRefund(amount); canErr != nil {
			return canErr
		}

		h, findErr := uc.HoldRepo.Find(ctx, c.HoldID)
		if findErr != nil {
			return findErr
		}

		payerAvail, _, ensureErr := uc.LedgerAccountRepo.EnsureForWallet(ctx, h.WalletID, h.Currency)
		if ensureErr != nil {
			return ensureErr
		}

		merchantAvail, _, ensureErr := uc.LedgerAccountRepo.EnsureForWallet(ctx, c.ToWalletID, c.Currency)
		if ensureErr != nil {
			return ensureErr
		}

		balances, balErr := lockAndBalance(ctx, uc.LedgerAccountRepo, []string{merchantAvail.ID, payerAvail.ID})
		if balErr != nil {
			return balErr
		}

		if debitErr := debitAvailable(balances, merchantAvail.ID, amount); debitErr != nil {
			return debitErr
		}

		lines := []journal.Line{
			{LedgerAccountID: merchantAvail.ID, Direction: journal.DirectionDebit, Amount: amount, Currency: c.Currency},
			{LedgerAccountID: payerAvail.ID, Direction: journal.DirectionCredit, Amount: amount, Currency: c.Currency},
		}

		posted, postErr := uc.postBalanced(ctx, journal.EntryTypeRefund, in.IdempotencyKey, caller.ID, &c.ID, nil, lines)
		if postErr != nil {
			return postErr
		}

		if _, applyErr := uc.CaptureRepo.ApplyRefund(ctx, c.ID, amount); applyErr != nil {
			return applyErr
		}

		created, createErr := uc.RefundRepo.Create(ctx, &refunddomain.Refund{
			CaptureID:       c.ID,
			Amount:          amount,
			Currency:        c.Currency,
			JournalEntryID:  posted.ID,
			IdempotencyKey:  in.IdempotencyKey,
			CreatedByAPIKey: caller.ID,
		})
		if createErr != nil {
			return createErr
		}

		r = created

		uc.publishAudit(ctx, "capture.refunded", map[string]any{"capture_id": c.ID, "refund_id": created.ID, "amount": amount.String()})

		return nil
	})

	return r, err
}

func (uc *UseCase) probeRefundIdempotency(ctx context.Context, idempotencyKey, createdByAPIKey string) (*refunddomain.Refund, bool, error) {
	prior, err := uc.RefundRepo.FindByIdempotencyKey(ctx, idempotencyKey, createdByAPIKey)
	if err != nil {
		return nil, false, err
	}

	if prior == nil {
		return nil, false, nil
	}

	return prior, true, nil
}

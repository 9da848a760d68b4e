package command

import (
	"context"
	"time"

	"github.com/agentledger/ledger/internal/domain/apikey"
	"github.com/agentledger/ledger/internal/domain/journal"
	pi "github.com/agentledger/ledger/internal/domain/paymentintent"

	cn "github.com/agentledger/ledger/pkg/constant"
)

// PayPaymentIntentInput is the validated request for the caller's wallet
// to settle an outstanding payment intent in full (spec.md §4.5).
type PayPaymentIntentInput struct {
	PaymentIntentID string
	IdempotencyKey  string
}

// PayPaymentIntent debits the caller's available balance and credits the
// merchant wallet's available balance by the intent's fixed amount,
// marking the intent Paid exactly once (spec.md §4.5: "consumed at most
// once").
func (uc *UseCase) PayPaymentIntent(ctx context.Context, caller *apikey.APIKey, in PayPaymentIntentInput) (intent *pi.PaymentIntent, err error) {
	err = uc.TxRunner.Run(ctx, func(ctx context.Context) error {
		if prior, found, probeErr := uc.probeIdempotency(ctx, in.IdempotencyKey, caller.ID, journal.EntryTypeTransfer); probeErr != nil {
			return probeErr
		} else if found {
			paid, findErr := uc.PaymentIntentRepo.Find(ctx, in.PaymentIntentID)
			if findErr != nil {
				return findErr
			}

			intent = paid

			return nil
		}

		locked, lockErr := uc.PaymentIntentRepo.Lock(ctx, in.PaymentIntentID)
		if lockErr != nil {
			return lockErr
		}

		if canErr := locked.CanPay(time.Now().UTC()); canErr != nil {
			return canErr
		}

		if locked.MerchantWalletID == caller.WalletID {
			return cn.ErrSelfPayment
		}

		payer, findErr := uc.WalletRepo.Find(ctx, caller.WalletID)
		if findErr != nil {
			return findErr
		}

		if !payer.IsActive() {
			return statusError(payer.Status)
		}

		if payer.Currency != locked.Currency {
			return cn.ErrCurrencyMismatch
		}

		merchant, findErr := uc.WalletRepo.Find(ctx, locked.MerchantWalletID)
		if findErr != nil {
			return findErr
		}

		if !merchant.IsActive() {
			return statusError(merchant.Status)
		}

		payerAvail, _, ensureErr := uc.LedgerAccountRepo.EnsureForWallet(ctx, payer.ID, payer.Currency)
		if ensureErr != nil {
			return ensureErr
		}

		merchantAvail, _, ensureErr := uc.LedgerAccountRepo.EnsureForWallet(ctx, merchant.ID, merchant.Currency)
		if ensureErr != nil {
			return ensureErr
		}

		balances, balErr := lockAndBalance(ctx, uc.LedgerAccountRepo, []string{payerAvail.ID, merchantAvail.ID})
		if balErr != nil {
			return balErr
		}

		if limitErr := uc.enforceLimits(ctx, caller, payerAvail.ID, locked.Amount, merchant.ID, nil); limitErr != nil {
			return limitErr
		}

		if debitErr := debitAvailable(balances, payerAvail.ID, locked.Amount); debitErr != nil {
			return debitErr
		}

		lines := []journal.Line{
			{LedgerAccountID: payerAvail.ID, Direction: journal.DirectionDebit, Amount: locked.Amount, Currency: locked.Currency},
			{LedgerAccountID: merchantAvail.ID, Direction: journal.DirectionCredit, Amount: locked.Amount, Currency: locked.Currency},
		}

		posted, postErr := uc.postBalanced(ctx, journal.EntryTypeTransfer, in.IdempotencyKey, caller.ID, &locked.ID, nil, lines)
		if postErr != nil {
			return postErr
		}

		updated, markErr := uc.PaymentIntentRepo.MarkPaid(ctx, locked.ID, payer.ID, posted.ID)
		if markErr != nil {
			return markErr
		}

		intent = updated

		uc.publishAudit(ctx, "payment_intent.paid", map[string]any{"payment_intent_id": updated.ID, "payer_wallet_id": payer.ID})

		return nil
	})

	return intent, err
}

package command

import (
	"context"
	"time"

	"github.com/agentledger/ledger/internal/domain/apikey"
	pi "github.com/agentledger/ledger/internal/domain/paymentintent"
	"github.com/agentledger/ledger/pkg/money"

	cn "github.com/agentledger/ledger/pkg/constant"
)

// CreatePaymentIntentInput is the validated request for a merchant wallet
// to request payment of a fixed amount (spec.md §4.5).
type CreatePaymentIntentInput struct {
	Amount         string
	Currency       string
	ExpiresIn      time.Duration
	Metadata       map[string]any
	IdempotencyKey string
}

// CreatePaymentIntent registers a payable on the caller's own wallet. It
// posts no journal entry — only PayPaymentIntent moves funds — but is
// still idempotent per (idempotency_key, creator) since it is a mutating
// endpoint (spec.md §4.5).
func (uc *UseCase) CreatePaymentIntent(ctx context.Context, caller *apikey.APIKey, in CreatePaymentIntentInput) (intent *pi.PaymentIntent, err error) {
	amount, parseErr := money.Parse(in.Amount)
	if parseErr != nil || !amount.IsPositive() {
		return nil, cn.ErrInvalidAmount
	}

	if in.ExpiresIn < pi.MinExpiresIn || in.ExpiresIn > pi.MaxExpiresIn {
		return nil, cn.ErrInvalidAmount
	}

	err = uc.TxRunner.Run(ctx, func(ctx context.Context) error {
		if prior, found, probeErr := uc.probePaymentIntentIdempotency(ctx, in.IdempotencyKey, caller.ID); probeErr != nil {
			return probeErr
		} else if found {
			intent = prior
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

		created, createErr := uc.PaymentIntentRepo.Create(ctx, &pi.PaymentIntent{
			MerchantWalletID: w.ID,
			Amount:           amount,
			Currency:         in.Currency,
			Status:           pi.StatusRequiresPayment,
			ExpiresAt:        time.Now().UTC().Add(in.ExpiresIn),
			IdempotencyKey:   in.IdempotencyKey,
			CreatedByAPIKey:  caller.ID,
			Metadata:         in.Metadata,
		})
		if createErr != nil {
			return createErr
		}

		intent = created

		uc.publishAudit(ctx, "payment_intent.created", map[string]any{"payment_intent_id": created.ID, "amount": amount.String()})

		return nil
	})

	return intent, err
}

func (uc *UseCase) probePaymentIntentIdempotency(ctx context.Context, idempotencyKey, createdByAPIKey string) (*pi.PaymentIntent, bool, error) {
	prior, err := uc.PaymentIntentRepo.FindByIdempotencyKey(ctx, idempotencyKey, createdByAPIKey)
	if err != nil {
		return nil, false, err
	}

	if prior == nil {
		return nil, false, nil
	}

	return prior, true, nil
}

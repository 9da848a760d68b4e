package command

import (
	"context"

	"github.com/agentledger/ledger/internal/domain/apikey"
	"github.com/agentledger/ledger/internal/domain/journal"
	"github.com/agentledger/ledger/internal/domain/recipient"
	"github.com/agentledger/ledger/internal/domain/wallet"
	"github.com/agentledger/ledger/pkg/money"

	cn "github.com/agentledger/ledger/pkg/constant"
)

// CreateTransferInput is the validated request to move funds between two
// wallets' available balances (spec.md §4.2).
type CreateTransferInput struct {
	Amount         string
	Currency       string
	To             recipient.Identifier
	IdempotencyKey string
}

// CreateTransfer moves funds from the caller's wallet to a resolved
// recipient in this sequence: idempotency probe, recipient resolution,
// wallet/currency checks, lock, limits, balance check, post, commit.
func (uc *UseCase) CreateTransfer(ctx context.Context, caller *apikey.APIKey, in CreateTransferInput) (entry *journal.Entry, err error) {
	amount, err := money.Parse(in.Amount)
	if err != nil || !amount.IsPositive() {
		return nil, cn.ErrInvalidAmount
	}

	err = uc.TxRunner.Run(ctx, func(ctx context.Context) error {
		if prior, found, probeErr := uc.probeIdempotency(ctx, in.IdempotencyKey, caller.ID, journal.EntryTypeTransfer); probeErr != nil {
			return probeErr
		} else if found {
			entry = prior
			return nil
		}

		dest, resolveErr := uc.Resolver.Resolve(ctx, in.To)
		if resolveErr != nil {
			return resolveErr
		}

		if dest.WalletID == caller.WalletID {
			return cn.ErrSelfTransfer
		}

		source, findErr := uc.WalletRepo.Find(ctx, caller.WalletID)
		if findErr != nil {
			return findErr
		}

		if !source.IsActive() {
			return statusError(source.Status)
		}

		if source.Currency != in.Currency {
			return cn.ErrCurrencyMismatch
		}

		destWallet, findErr := uc.WalletRepo.Find(ctx, dest.WalletID)
		if findErr != nil {
			return findErr
		}

		if destWallet.Currency != in.Currency {
			return cn.ErrCurrencyMismatch
		}

		if destWallet.Status == wallet.StatusFrozen || destWallet.Status == wallet.StatusClosed {
			return statusError(destWallet.Status)
		}

		sourceAvail, sourceHeld, ensureErr := uc.LedgerAccountRepo.EnsureForWallet(ctx, source.ID, source.Currency)
		if ensureErr != nil {
			return ensureErr
		}

		_ = sourceHeld

		destAvail, _, ensureErr := uc.LedgerAccountRepo.EnsureForWallet(ctx, destWallet.ID, destWallet.Currency)
		if ensureErr != nil {
			return ensureErr
		}

		balances, lockErr := lockAndBalance(ctx, uc.LedgerAccountRepo, []string{sourceAvail.ID, destAvail.ID})
		if lockErr != nil {
			return lockErr
		}

		if limitErr := uc.enforceLimits(ctx, caller, sourceAvail.ID, amount, dest.WalletID, dest.Handle); limitErr != nil {
			return limitErr
		}

		if debitErr := debitAvailable(balances, sourceAvail.ID, amount); debitErr != nil {
			return debitErr
		}

		lines := []journal.Line{
			{LedgerAccountID: sourceAvail.ID, Direction: journal.DirectionDebit, Amount: amount, Currency: in.Currency},
			{LedgerAccountID: destAvail.ID, Direction: journal.DirectionCredit, Amount: amount, Currency: in.Currency},
		}

		posted, postErr := uc.postBalanced(ctx, journal.EntryTypeTransfer, in.IdempotencyKey, caller.ID, nil, nil, lines)
		if postErr != nil {
			return postErr
		}

		entry = posted

		uc.publishAudit(ctx, "transfer.created", map[string]any{
			"entry_id": posted.ID,
			"from":     source.ID,
			"to":       destWallet.ID,
			"amount":   amount.String(),
		})

		return nil
	})

	return entry, err
}

func statusError(s wallet.Status) error {
	switch s {
	case wallet.StatusFrozen:
		return cn.ErrWalletFrozen
	case wallet.StatusClosed:
		return cn.ErrWalletClosed
	default:
		return cn.ErrWalletNotActive
	}
}

func (uc *UseCase) publishAudit(ctx context.Context, eventType string, payload map[string]any) {
	if uc.Audit == nil {
		return
	}

	uc.Audit.Publish(ctx, eventType, payload)
}

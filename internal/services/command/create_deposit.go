package command

import (
	"context"

	"github.com/agentledger/ledger/internal/domain/apikey"
	"github.com/agentledger/ledger/internal/domain/journal"
	"github.com/agentledger/ledger/internal/domain/recipient"
	"github.com/agentledger/ledger/pkg/money"

	cn "github.com/agentledger/ledger/pkg/constant"
)

// CreateDepositInput is the validated request to credit a wallet from the
// ledger's system source wallet (spec.md §4.9, admin-only).
type CreateDepositInput struct {
	To             recipient.Identifier
	Amount         string
	Currency       string
	ReferenceID    *string
	Metadata       map[string]any
	IdempotencyKey string
}

// CreateDeposit brings value into the ledger from outside by debiting the
// system source wallet and crediting a resolved recipient's available
// balance. Not subject to per-key spend limits since it is
// admin-originated (spec.md §4.9).
func (uc *UseCase) CreateDeposit(ctx context.Context, adminKey *apikey.APIKey, in CreateDepositInput) (entry *journal.Entry, err error) {
	amount, parseErr := money.Parse(in.Amount)
	if parseErr != nil || !amount.IsPositive() {
		return nil, cn.ErrInvalidAmount
	}

	err = uc.TxRunner.Run(ctx, func(ctx context.Context) error {
		if prior, found, probeErr := uc.probeIdempotency(ctx, in.IdempotencyKey, adminKey.ID, journal.EntryTypeDepositExternal); probeErr != nil {
			return probeErr
		} else if found {
			entry = prior
			return nil
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

		if destWallet.Currency != in.Currency {
			return cn.ErrCurrencyMismatch
		}

		systemWallet, sysErr := uc.WalletRepo.FindOrCreateSystemWallet(ctx, in.Currency)
		if sysErr != nil {
			return sysErr
		}

		destAvail, _, ensureErr := uc.LedgerAccountRepo.EnsureForWallet(ctx, destWallet.ID, destWallet.Currency)
		if ensureErr != nil {
			return ensureErr
		}

		systemAvail, _, ensureErr := uc.LedgerAccountRepo.EnsureForWallet(ctx, systemWallet.ID, systemWallet.Currency)
		if ensureErr != nil {
			return ensureErr
		}

		// System wallet's available balance is exempt from the
		// non-negativity invariant (spec.md §4.9): lock for ordering only,
		// do not run debitAvailable against it.
		if _, lockErr := lockAndBalance(ctx, uc.LedgerAccountRepo, []string{systemAvail.ID, destAvail.ID}); lockErr != nil {
			return lockErr
		}

		lines := []journal.Line{
			{LedgerAccountID: systemAvail.ID, Direction: journal.DirectionDebit, Amount: amount, Currency: in.Currency},
			{LedgerAccountID: destAvail.ID, Direction: journal.DirectionCredit, Amount: amount, Currency: in.Currency},
		}

		posted, postErr := uc.postBalanced(ctx, journal.EntryTypeDepositExternal, in.IdempotencyKey, adminKey.ID, in.ReferenceID, in.Metadata, lines)
		if postErr != nil {
			return postErr
		}

		entry = posted

		uc.publishAudit(ctx, "deposit.created", map[string]any{"entry_id": posted.ID, "to": destWallet.ID, "amount": amount.String()})

		return nil
	})

	return entry, err
}

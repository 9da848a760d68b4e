package command

import (
	"context"
	"time"

	"github.com/agentledger/ledger/internal/domain/apikey"
	"github.com/agentledger/ledger/pkg/money"

	cn "github.com/agentledger/ledger/pkg/constant"
)

// enforceLimits applies the per-transaction cap, daily cap, and
// counterparty allowlist from spec.md §4.6 to a single principal amount.
// Must be called after the account locks are held and inside the posting
// transaction, since the daily cap is computed from posted lines visible
// under the current isolation level (spec.md §4.6: "computed inside the
// same transaction that will post, after locks").
func (uc *UseCase) enforceLimits(ctx context.Context, key *apikey.APIKey, sourceAvailableAccountID string, amount money.Amount, counterpartyWalletID string, counterpartyHandle *string) error {
	if err := uc.enforceSpendLimits(ctx, key, sourceAvailableAccountID, amount); err != nil {
		return err
	}

	if !key.CounterpartyAllowed(counterpartyWalletID, counterpartyHandle) {
		return cn.ErrCounterpartyNotAllowed
	}

	return nil
}

// enforceSpendLimits applies only the per-transaction and daily caps, with
// no counterparty check, for operations that move funds within the
// caller's own wallet (hold creation, deposits) and therefore have no
// counterparty to allowlist.
func (uc *UseCase) enforceSpendLimits(ctx context.Context, key *apikey.APIKey, sourceAvailableAccountID string, amount money.Amount) error {
	if key.Limits.PerTxMax != nil && amount.GreaterThan(*key.Limits.PerTxMax) {
		return cn.ErrLimitExceeded
	}

	if key.Limits.DailyMax != nil {
		startOfDay := time.Now().UTC().Truncate(24 * time.Hour)

		spentToday, err := uc.JournalRepo.SumDebitsSince(ctx, sourceAvailableAccountID, startOfDay)
		if err != nil {
			return err
		}

		if spentToday.Add(amount).GreaterThan(*key.Limits.DailyMax) {
			return cn.ErrLimitExceeded
		}
	}

	return nil
}

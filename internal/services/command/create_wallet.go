package command

import (
	"context"

	"github.com/agentledger/ledger/internal/domain/wallet"
)

// CreateWallet provisions a new wallet and its two ledger accounts
// (available, held) in a single transaction (SPEC_FULL.md §4.10). Admin
// creates are plain creates, not idempotency-keyed (DESIGN.md's
// resolution of this Open Question).
func (uc *UseCase) CreateWallet(ctx context.Context, in wallet.CreateInput) (w *wallet.Wallet, err error) {
	err = uc.TxRunner.Run(ctx, func(ctx context.Context) error {
		created, createErr := uc.WalletRepo.Create(ctx, &wallet.Wallet{
			Type:     in.Type,
			Status:   wallet.StatusActive,
			Currency: in.Currency,
			Handle:   in.Handle,
			Metadata: in.Metadata,
		})
		if createErr != nil {
			return createErr
		}

		if _, _, ensureErr := uc.LedgerAccountRepo.EnsureForWallet(ctx, created.ID, created.Currency); ensureErr != nil {
			return ensureErr
		}

		w = created

		uc.publishAudit(ctx, "wallet.created", map[string]any{"wallet_id": created.ID, "type": string(created.Type)})

		return nil
	})

	return w, err
}

package command

import (
	"context"

	"github.com/agentledger/ledger/internal/domain/wallet"

	cn "github.com/agentledger/ledger/pkg/constant"
)

// SetWalletStatusInput is the validated request to change a wallet's
// status (SPEC_FULL.md §4.10).
type SetWalletStatusInput struct {
	WalletID string
	Status   wallet.Status
}

// SetWalletStatus transitions a wallet between active and frozen.
// Closing is terminal: a closed wallet can never have its status changed
// again by this operation (SPEC_FULL.md §4.10).
func (uc *UseCase) SetWalletStatus(ctx context.Context, in SetWalletStatusInput) (*wallet.Wallet, error) {
	current, err := uc.WalletRepo.Find(ctx, in.WalletID)
	if err != nil {
		return nil, err
	}

	if current.Status == wallet.StatusClosed {
		return nil, cn.ErrWalletClosed
	}

	updated, err := uc.WalletRepo.UpdateStatus(ctx, in.WalletID, in.Status)
	if err != nil {
		return nil, err
	}

	uc.publishAudit(ctx, "wallet.status_changed", map[string]any{"wallet_id": updated.ID, "status": string(updated.Status)})

	return updated, nil
}

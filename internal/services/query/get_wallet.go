package query

import (
	"context"

	"github.com/agentledger/ledger/internal/domain/wallet"
)

// GetWallet returns the caller's own wallet (spec.md §6 `GET /v1/wallets/me`).
func (uc *UseCase) GetWallet(ctx context.Context, walletID string) (*wallet.Wallet, error) {
	return uc.WalletRepo.Find(ctx, walletID)
}

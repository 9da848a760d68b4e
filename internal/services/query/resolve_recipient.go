package query

import (
	"context"
	"errors"
	"strings"

	"github.com/agentledger/ledger/internal/domain/recipient"
	"github.com/agentledger/ledger/internal/domain/wallet"

	cn "github.com/agentledger/ledger/pkg/constant"
)

// Resolve maps a typed identifier to a concrete, currently-addressable
// wallet (spec.md §4.7). It implements command.RecipientResolver so the
// command package can call it without importing query.
func (uc *UseCase) Resolve(ctx context.Context, id recipient.Identifier) (recipient.Resolved, error) {
	cacheKey := string(id.Kind) + ":" + id.Provider + ":" + id.Value

	if uc.RecipientCache != nil {
		if cached, hit := uc.RecipientCache.Get(ctx, cacheKey); hit {
			return cached, nil
		}
	}

	w, err := uc.resolveWallet(ctx, id)
	if err != nil {
		return recipient.Resolved{}, err
	}

	if w == nil {
		return recipient.Resolved{}, cn.ErrRecipientNotFound
	}

	if w.Status == wallet.StatusFrozen {
		return recipient.Resolved{}, cn.ErrWalletFrozen
	}

	if w.Status == wallet.StatusClosed {
		return recipient.Resolved{}, cn.ErrWalletClosed
	}

	resolved := recipient.Resolved{WalletID: w.ID, Handle: w.Handle}

	if uc.RecipientCache != nil {
		uc.RecipientCache.Set(ctx, cacheKey, resolved)
	}

	return resolved, nil
}

// resolveWallet dispatches on the identifier kind (spec.md §4.7). A
// returned (nil, nil) means "no such wallet", distinct from a genuine
// storage failure, which is propagated as a non-nil error.
func (uc *UseCase) resolveWallet(ctx context.Context, id recipient.Identifier) (*wallet.Wallet, error) {
	switch id.Kind {
	case recipient.KindWalletID:
		return findOrNil(uc.WalletRepo.Find(ctx, id.Value))

	case recipient.KindHandle:
		handle := id.Value
		if !strings.HasPrefix(handle, "@") {
			handle = "@" + handle
		}

		return uc.WalletRepo.FindByHandle(ctx, handle)

	case recipient.KindExternalID:
		identity, err := uc.ExternalIdentityRepo.Find(ctx, id.Provider, id.Value)
		if err != nil || identity == nil {
			return nil, err
		}

		return findOrNil(uc.WalletRepo.Find(ctx, identity.WalletID))

	default:
		return nil, cn.ErrRecipientNotFound
	}
}

// findOrNil translates a WalletRepo.Find miss (an error satisfying
// errors.Is against cn.ErrWalletNotFound) into (nil, nil); any other
// error is a genuine storage failure and is propagated.
func findOrNil(w *wallet.Wallet, err error) (*wallet.Wallet, error) {
	if err != nil {
		if errors.Is(err, cn.ErrWalletNotFound) {
			return nil, nil
		}

		return nil, err
	}

	return w, nil
}

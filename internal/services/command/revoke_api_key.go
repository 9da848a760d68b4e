package command

import (
	"context"

	"github.com/agentledger/ledger/internal/domain/apikey"
)

// RevokeAPIKey sets a key's status to revoked. Revoking an already-revoked
// key is a no-op success (SPEC_FULL.md §4.10).
func (uc *UseCase) RevokeAPIKey(ctx context.Context, id string) (*apikey.APIKey, error) {
	current, err := uc.APIKeyRepo.Find(ctx, id)
	if err != nil {
		return nil, err
	}

	if current.Status == apikey.StatusRevoked {
		return current, nil
	}

	revoked, err := uc.APIKeyRepo.Revoke(ctx, id)
	if err != nil {
		return nil, err
	}

	uc.publishAudit(ctx, "api_key.revoked", map[string]any{"api_key_id": revoked.ID})

	return revoked, nil
}

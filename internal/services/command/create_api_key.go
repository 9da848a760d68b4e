package command

import (
	"context"

	"github.com/agentledger/ledger/internal/domain/apikey"
)

// CreateAPIKeyInput is the validated request to mint a new credential
// bound to a wallet (SPEC_FULL.md §4.10).
type CreateAPIKeyInput struct {
	WalletID string
	Scopes   []string
	Limits   apikey.Limits
}

// CreateAPIKeyResult returns the plaintext key exactly once; it is never
// retrievable again (SPEC_FULL.md §4.10).
type CreateAPIKeyResult struct {
	Key       *apikey.APIKey
	Plaintext string
}

// CreateAPIKey generates a credential via uc.SecretHasher and persists
// only its hash.
func (uc *UseCase) CreateAPIKey(ctx context.Context, in CreateAPIKeyInput) (*CreateAPIKeyResult, error) {
	plaintext, hash, err := uc.SecretHasher.GenerateAndHash()
	if err != nil {
		return nil, err
	}

	created, err := uc.APIKeyRepo.Create(ctx, &apikey.APIKey{
		KeyHash:  hash,
		WalletID: in.WalletID,
		Scopes:   in.Scopes,
		Limits:   in.Limits,
		Status:   apikey.StatusActive,
	})
	if err != nil {
		return nil, err
	}

	uc.publishAudit(ctx, "api_key.created", map[string]any{"api_key_id": created.ID, "wallet_id": created.WalletID})

	return &CreateAPIKeyResult{Key: created, Plaintext: plaintext}, nil
}

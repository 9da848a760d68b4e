package apikey

import "context"

// Repository is the storage port for API keys.
type Repository interface {
	Create(ctx context.Context, k *APIKey) (*APIKey, error)
	Find(ctx context.Context, id string) (*APIKey, error)
	// FindActiveByHash looks up a key by its hashed credential. Only
	// active keys are expected to authenticate; a revoked key is
	// returned so the caller can distinguish ErrAPIKeyInvalid from
	// ErrAPIKeyRevoked.
	FindActiveByHash(ctx context.Context, keyHash string) (*APIKey, error)
	Revoke(ctx context.Context, id string) (*APIKey, error)
	TouchLastUsed(ctx context.Context, id string) error
}

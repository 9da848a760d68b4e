// Package externalidentity holds the (provider, external_user_id) →
// wallet_id mapping used by the recipient resolver's external_id kind
// (spec.md §3, §4.7).
package externalidentity

import "context"

// ExternalIdentity maps a third-party identity to the wallet that represents it.
type ExternalIdentity struct {
	ID             string
	Provider       string
	ExternalUserID string
	WalletID       string
}

// Repository is the storage port for external identities. Find returns
// (nil, nil) on a miss, the same convention as wallet.Repository.FindByHandle,
// since an unrecognized external identity is an expected resolver outcome
// (spec.md §4.7), not a storage exception.
type Repository interface {
	Create(ctx context.Context, e *ExternalIdentity) (*ExternalIdentity, error)
	Find(ctx context.Context, provider, externalUserID string) (*ExternalIdentity, error)
}

// Package apikey holds the APIKey entity: the credential a caller
// authenticates with, carrying its scopes and spend limits
// (spec.md §3, §4.6).
package apikey

import (
	"strings"
	"time"

	"github.com/agentledger/ledger/pkg/money"
)

// Status is an API key's lifecycle state.
type Status string

const (
	StatusActive  Status = "active"
	StatusRevoked Status = "revoked"
)

// Limits are the optional per-key spend controls from spec.md §4.6.
type Limits struct {
	PerTxMax              *money.Amount
	DailyMax              *money.Amount
	AllowedCounterparties []string
}

// APIKey is the credential presented as a bearer token on every request.
type APIKey struct {
	ID         string
	KeyHash    string
	WalletID   string
	Scopes     []string
	Limits     Limits
	Status     Status
	LastUsedAt *time.Time
	CreatedAt  time.Time
}

// IsActive reports whether the key may currently be used.
func (k *APIKey) IsActive() bool {
	return k.Status == StatusActive
}

// HasScope reports whether the key's scope set grants required, honoring
// the trailing-"*" wildcard rule of spec.md §9: "admin:*" matches
// "admin:x" and "admin:x:y", matched by splitting on the exact ":*"
// suffix rather than by general glob rules.
func (k *APIKey) HasScope(required string) bool {
	for _, s := range k.Scopes {
		if s == required {
			return true
		}

		prefix, isWildcard := strings.CutSuffix(s, ":*")
		if isWildcard && strings.HasPrefix(required, prefix+":") {
			return true
		}
	}

	return false
}

// CounterpartyAllowed reports whether destination is permitted under the
// key's allowlist. An unset allowlist permits everything (spec.md §4.6).
func (k *APIKey) CounterpartyAllowed(walletID string, handle *string) bool {
	if len(k.Limits.AllowedCounterparties) == 0 {
		return true
	}

	for _, allowed := range k.Limits.AllowedCounterparties {
		if allowed == walletID {
			return true
		}

		if handle != nil && allowed == *handle {
			return true
		}
	}

	return false
}

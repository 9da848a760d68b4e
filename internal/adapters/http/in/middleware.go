// Package in implements the HTTP transport: authentication, scope and
// rate-limit enforcement, request decoding, and the handlers and routes
// for every endpoint in spec.md §6.
package in

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/agentledger/ledger/internal/domain/apikey"
	"github.com/agentledger/ledger/internal/domain/ratelimit"
	netHTTP "github.com/agentledger/ledger/pkg/net/http"

	cn "github.com/agentledger/ledger/pkg/constant"
)

// APIKeyHasher digests a presented bearer token for comparison against
// the stored hash (spec.md §9).
type APIKeyHasher interface {
	Hash(plaintext string) string
}

// hashFunc adapts auth.Hash (a bare function, not a type) to APIKeyHasher.
type hashFunc func(string) string

func (f hashFunc) Hash(plaintext string) string { return f(plaintext) }

// NewAPIKeyHasher wraps a plain hashing function as an APIKeyHasher.
func NewAPIKeyHasher(hash func(string) string) APIKeyHasher {
	return hashFunc(hash)
}

// WithAuth identifies the caller's API key from its bearer token,
// rejecting an absent, unknown, or revoked credential (spec.md §9: "every
// mutating and read endpoint first identifies the API key").
func WithAuth(repo apikey.Repository, hasher APIKeyHasher) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := bearerToken(c.Get(fiber.HeaderAuthorization))
		if token == "" {
			return respondError(c, cn.ErrAPIKeyInvalid, "api_key")
		}

		key, err := repo.FindActiveByHash(c.UserContext(), hasher.Hash(token))
		if err != nil {
			return respondError(c, err, "api_key")
		}

		if key == nil {
			return respondError(c, cn.ErrAPIKeyInvalid, "api_key")
		}

		if !key.IsActive() {
			return respondError(c, cn.ErrAPIKeyRevoked, "api_key")
		}

		netHTTP.SetPrincipal(c, netHTTP.Principal{APIKeyID: key.ID, WalletID: key.WalletID, Scopes: key.Scopes})
		c.Locals(localAPIKey, key)

		_ = repo.TouchLastUsed(c.UserContext(), key.ID)

		return c.Next()
	}
}

func bearerToken(header string) string {
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}

	return strings.TrimSpace(strings.TrimPrefix(header, prefix))
}

const localAPIKey = "api_key"

// Caller returns the authenticated APIKey stashed by WithAuth.
func Caller(c *fiber.Ctx) *apikey.APIKey {
	key, _ := c.Locals(localAPIKey).(*apikey.APIKey)
	return key
}

// WithScope rejects the request unless the authenticated key carries
// required, honoring the trailing-"*" wildcard rule (spec.md §4.6, §9).
func WithScope(required string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := Caller(c)
		if key == nil || !key.HasScope(required) {
			return respondError(c, cn.ErrForbiddenScope, "api_key")
		}

		return c.Next()
	}
}

// RateLimitConfig is the token-bucket shape applied by WithRateLimit:
// refill rate in tokens per second, and capacity (spec.md §9: "capacity
// = rate, refill uniform").
type RateLimitConfig struct {
	RatePerSecond float64
	Capacity      int
}

// WithRateLimit draws one token from the caller key's single bucket
// (spec.md §4.6: "per-key token bucket" — one bucket per key, not one
// per endpoint, so a burst on one route counts against the same budget
// as every other route). Must run after WithAuth.
func WithRateLimit(limiter ratelimit.Limiter, cfg RateLimitConfig) fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := Caller(c)
		if key == nil {
			return c.Next()
		}

		allowed, retryAfter, err := limiter.Allow(c.UserContext(), key.ID, cfg.RatePerSecond, cfg.Capacity)
		if err != nil {
			return netHTTP.WithError(c, err)
		}

		if !allowed {
			retrySeconds := int(retryAfter.Seconds())
			if retrySeconds < 1 {
				retrySeconds = 1
			}

			return netHTTP.TooManyRequests(c, cn.ErrRateLimitExceeded.Error(), "Rate Limit Exceeded",
				"Too many requests. Retry after "+strconv.Itoa(retrySeconds)+" seconds.", retrySeconds)
		}

		return c.Next()
	}
}

// resolvedIdempotencyKey implements spec.md §6's header/body precedence:
// the body value is authoritative when both are present; the header
// value is used only to fill an absent body field.
func resolvedIdempotencyKey(c *fiber.Ctx, bodyValue string) string {
	if bodyValue != "" {
		return bodyValue
	}

	return netHTTP.IdempotencyKey(c)
}

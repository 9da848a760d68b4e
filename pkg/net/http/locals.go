package http

import "github.com/gofiber/fiber/v2"

const (
	localPrincipal     = "principal"
	localIdempotencyKey = "idempotency_key"
)

// Principal is the authenticated caller attached to the request by the
// auth middleware: the API key's owning wallet and granted scopes.
type Principal struct {
	APIKeyID string
	WalletID string
	Scopes   []string
}

// SetPrincipal stashes the authenticated caller on the request context.
func SetPrincipal(c *fiber.Ctx, p Principal) {
	c.Locals(localPrincipal, p)
}

// GetPrincipal returns the caller attached by the auth middleware. The
// second return is false if no principal was set (the route is unauthenticated).
func GetPrincipal(c *fiber.Ctx) (Principal, bool) {
	p, ok := c.Locals(localPrincipal).(Principal)
	return p, ok
}

// IdempotencyKey returns the Idempotency-Key header, if present.
func IdempotencyKey(c *fiber.Ctx) string {
	return c.Get(headerIdempotencyKey)
}

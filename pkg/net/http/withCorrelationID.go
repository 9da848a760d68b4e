package http

import (
	"github.com/gofiber/fiber/v2"
	gid "github.com/google/uuid"
)

// WithCorrelationID stamps every request/response pair with an
// X-Correlation-ID, generating one when the caller didn't send one.
func WithCorrelationID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		cid := c.Get(headerCorrelationID)
		if cid == "" {
			cid = gid.New().String()
		}

		c.Set(headerCorrelationID, cid)
		c.Request().Header.Set(headerCorrelationID, cid)

		return c.Next()
	}
}

// CorrelationID reads the correlation id stamped by WithCorrelationID.
func CorrelationID(c *fiber.Ctx) string {
	return c.Get(headerCorrelationID)
}

package http

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrincipalRoundTrip(t *testing.T) {
	app := fiber.New()
	app.Get("/x", func(c *fiber.Ctx) error {
		SetPrincipal(c, Principal{APIKeyID: "key_1", WalletID: "wal_1", Scopes: []string{"wallet:read"}})

		p, ok := GetPrincipal(c)
		assert.True(t, ok)
		assert.Equal(t, "wal_1", p.WalletID)

		return c.SendStatus(fiber.StatusOK)
	})

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/x", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestGetPrincipal_AbsentReturnsFalse(t *testing.T) {
	app := fiber.New()
	app.Get("/x", func(c *fiber.Ctx) error {
		_, ok := GetPrincipal(c)
		assert.False(t, ok)

		return c.SendStatus(fiber.StatusOK)
	})

	_, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/x", nil))
	require.NoError(t, err)
}

func TestIdempotencyKey(t *testing.T) {
	app := fiber.New()
	app.Post("/x", func(c *fiber.Ctx) error {
		assert.Equal(t, "key-abc", IdempotencyKey(c))
		return c.SendStatus(fiber.StatusOK)
	})

	req := httptest.NewRequest(fiber.MethodPost, "/x", nil)
	req.Header.Set(headerIdempotencyKey, "key-abc")

	_, err := app.Test(req)
	require.NoError(t, err)
}

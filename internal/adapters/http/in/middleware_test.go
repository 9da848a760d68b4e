package in

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentledger/ledger/internal/domain/apikey"
)

func TestBearerToken(t *testing.T) {
	assert.Equal(t, "abc", bearerToken("Bearer abc"))
	assert.Equal(t, "", bearerToken("abc"))
	assert.Equal(t, "", bearerToken(""))
	assert.Equal(t, "abc", bearerToken("Bearer   abc"))
}

func TestWithAuth_RejectsMissingToken(t *testing.T) {
	repo := &stubAPIKeyRepo{}
	app := fiber.New()
	app.Use(WithAuth(repo, NewAPIKeyHasher(identityHash)))
	app.Get("/x", func(c *fiber.Ctx) error { return c.SendString("ok") })

	req := httptest.NewRequest("GET", "/x", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestWithAuth_RejectsUnknownKey(t *testing.T) {
	repo := &stubAPIKeyRepo{}
	app := fiber.New()
	app.Use(WithAuth(repo, NewAPIKeyHasher(identityHash)))
	app.Get("/x", func(c *fiber.Ctx) error { return c.SendString("ok") })

	req := httptest.NewRequest("GET", "/x", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer nope")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestWithAuth_RejectsRevokedKey(t *testing.T) {
	repo := &stubAPIKeyRepo{key: &apikey.APIKey{ID: "k1", Status: apikey.StatusRevoked, Scopes: []string{"wallet:read"}}}
	app := fiber.New()
	app.Use(WithAuth(repo, NewAPIKeyHasher(identityHash)))
	app.Get("/x", func(c *fiber.Ctx) error { return c.SendString("ok") })

	req := httptest.NewRequest("GET", "/x", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer tok")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestWithAuth_AcceptsActiveKey(t *testing.T) {
	repo := &stubAPIKeyRepo{key: &apikey.APIKey{ID: "k1", Status: apikey.StatusActive, Scopes: []string{"wallet:read"}}}
	app := fiber.New()
	app.Use(WithAuth(repo, NewAPIKeyHasher(identityHash)))
	app.Get("/x", func(c *fiber.Ctx) error {
		assert.Equal(t, "k1", Caller(c).ID)
		return c.SendString("ok")
	})

	req := httptest.NewRequest("GET", "/x", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer tok")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.True(t, repo.touched)
}

func TestWithScope_AllowsWildcard(t *testing.T) {
	repo := &stubAPIKeyRepo{key: &apikey.APIKey{ID: "k1", Status: apikey.StatusActive, Scopes: []string{"admin:*"}}}
	app := fiber.New()
	app.Use(WithAuth(repo, NewAPIKeyHasher(identityHash)))
	app.Get("/x", WithScope("admin:wallets"), func(c *fiber.Ctx) error { return c.SendString("ok") })

	req := httptest.NewRequest("GET", "/x", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer tok")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestWithScope_RejectsMissingScope(t *testing.T) {
	repo := &stubAPIKeyRepo{key: &apikey.APIKey{ID: "k1", Status: apikey.StatusActive, Scopes: []string{"wallet:read"}}}
	app := fiber.New()
	app.Use(WithAuth(repo, NewAPIKeyHasher(identityHash)))
	app.Get("/x", WithScope("admin:wallets"), func(c *fiber.Ctx) error { return c.SendString("ok") })

	req := httptest.NewRequest("GET", "/x", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer tok")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestWithRateLimit_DeniesOverCapacity(t *testing.T) {
	repo := &stubAPIKeyRepo{key: &apikey.APIKey{ID: "k1", Status: apikey.StatusActive}}
	limiter := &stubLimiter{}
	app := fiber.New()
	app.Use(WithAuth(repo, NewAPIKeyHasher(identityHash)))
	app.Use(WithRateLimit(limiter, RateLimitConfig{RatePerSecond: 1, Capacity: 1}))
	app.Get("/x", func(c *fiber.Ctx) error { return c.SendString("ok") })

	req := httptest.NewRequest("GET", "/x", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer tok")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	req2 := httptest.NewRequest("GET", "/x", nil)
	req2.Header.Set(fiber.HeaderAuthorization, "Bearer tok")
	resp2, err := app.Test(req2)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusTooManyRequests, resp2.StatusCode)
	assert.NotEmpty(t, resp2.Header.Get(fiber.HeaderRetryAfter))
}

func TestWithRateLimit_SharesOneBucketAcrossRoutes(t *testing.T) {
	repo := &stubAPIKeyRepo{key: &apikey.APIKey{ID: "k1", Status: apikey.StatusActive}}
	limiter := &stubLimiter{}
	app := fiber.New()
	app.Use(WithAuth(repo, NewAPIKeyHasher(identityHash)))
	app.Use(WithRateLimit(limiter, RateLimitConfig{RatePerSecond: 1, Capacity: 1}))
	app.Get("/a", func(c *fiber.Ctx) error { return c.SendString("ok") })
	app.Get("/b", func(c *fiber.Ctx) error { return c.SendString("ok") })

	req := httptest.NewRequest("GET", "/a", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer tok")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	// A request against a different route still draws from the same
	// per-key bucket, so it is denied once that bucket is empty.
	req2 := httptest.NewRequest("GET", "/b", nil)
	req2.Header.Set(fiber.HeaderAuthorization, "Bearer tok")
	resp2, err := app.Test(req2)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusTooManyRequests, resp2.StatusCode)
}

func identityHash(s string) string { return s }

// stubAPIKeyRepo is a minimal apikey.Repository fake for middleware tests.
type stubAPIKeyRepo struct {
	key     *apikey.APIKey
	touched bool
}

func (s *stubAPIKeyRepo) Create(_ context.Context, _ *apikey.APIKey) (*apikey.APIKey, error) {
	panic("unused")
}

func (s *stubAPIKeyRepo) Find(_ context.Context, _ string) (*apikey.APIKey, error) {
	panic("unused")
}

func (s *stubAPIKeyRepo) FindActiveByHash(_ context.Context, _ string) (*apikey.APIKey, error) {
	return s.key, nil
}

func (s *stubAPIKeyRepo) Revoke(_ context.Context, _ string) (*apikey.APIKey, error) {
	panic("unused")
}

func (s *stubAPIKeyRepo) TouchLastUsed(_ context.Context, _ string) error {
	s.touched = true
	return nil
}

// stubLimiter draws down a single shared token budget regardless of key,
// enough to exercise WithRateLimit's allow/deny branches.
type stubLimiter struct {
	drawn int
}

func (s *stubLimiter) Allow(_ context.Context, _ string, _ float64, capacity int) (bool, time.Duration, error) {
	s.drawn++
	if s.drawn > capacity {
		return false, 30 * time.Second, nil
	}

	return true, 0, nil
}

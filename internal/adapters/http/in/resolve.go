package in

import (
	"github.com/gofiber/fiber/v2"

	"github.com/agentledger/ledger/internal/domain/recipient"
	"github.com/agentledger/ledger/internal/services/query"
	netHTTP "github.com/agentledger/ledger/pkg/net/http"
)

// ResolveHandler exposes the recipient resolver directly (spec.md §6:
// `GET /v1/resolve`), letting a caller check a handle or external id
// before attempting a transfer.
type ResolveHandler struct {
	Query *query.UseCase
}

// Resolve maps a typed identifier from query parameters to a wallet.
func (h *ResolveHandler) Resolve(c *fiber.Ctx) error {
	id := recipient.Identifier{
		Kind:     recipient.Kind(c.Query("type")),
		Value:    c.Query("value"),
		Provider: c.Query("provider"),
	}

	if err := netHTTP.ValidateStruct(&id); err != nil {
		return netHTTP.BadRequest(c, err)
	}

	resolved, err := h.Query.Resolve(c.UserContext(), id)
	if err != nil {
		return respondError(c, err, "recipient")
	}

	return netHTTP.OK(c, resolved)
}

package in

import (
	"github.com/gofiber/fiber/v2"

	"github.com/agentledger/ledger/internal/services/command"
	netHTTP "github.com/agentledger/ledger/pkg/net/http"
)

// RefundHandler serves spec.md §4.4: `POST /v1/refunds`.
type RefundHandler struct {
	Command *command.UseCase
}

// CreateRefundRequest is the wire shape of a refund request.
type CreateRefundRequest struct {
	CaptureID      string `json:"capture_id" validate:"required"`
	Amount         string `json:"amount" validate:"required"`
	IdempotencyKey string `json:"idempotency_key"`
}

// CreateRefund returns part or all of a prior capture's amount to the
// capture's source wallet.
func (h *RefundHandler) CreateRefund(payload any, c *fiber.Ctx) error {
	req := payload.(*CreateRefundRequest)
	caller := Caller(c)

	refunded, err := h.Command.CreateRefund(c.UserContext(), caller, command.CreateRefundInput{
		CaptureID:      req.CaptureID,
		Amount:         req.Amount,
		IdempotencyKey: resolvedIdempotencyKey(c, req.IdempotencyKey),
	})
	if err != nil {
		return respondError(c, err, "refund")
	}

	return netHTTP.OK(c, refunded)
}

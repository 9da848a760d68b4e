package in

import (
	"github.com/gofiber/fiber/v2"

	"github.com/agentledger/ledger/internal/domain/recipient"
	"github.com/agentledger/ledger/internal/services/command"
	netHTTP "github.com/agentledger/ledger/pkg/net/http"
)

// TransferHandler serves spec.md §4.2: `POST /v1/transfers`.
type TransferHandler struct {
	Command *command.UseCase
}

// CreateTransferRequest is the wire shape of a transfer request.
type CreateTransferRequest struct {
	Amount         string               `json:"amount" validate:"required"`
	Currency       string               `json:"currency" validate:"required,len=3"`
	To             recipient.Identifier `json:"to" validate:"required"`
	IdempotencyKey string               `json:"idempotency_key"`
}

// CreateTransfer moves funds from the caller's wallet to a resolved recipient.
func (h *TransferHandler) CreateTransfer(payload any, c *fiber.Ctx) error {
	req := payload.(*CreateTransferRequest)
	caller := Caller(c)

	entry, err := h.Command.CreateTransfer(c.UserContext(), caller, command.CreateTransferInput{
		Amount:         req.Amount,
		Currency:       req.Currency,
		To:             req.To,
		IdempotencyKey: resolvedIdempotencyKey(c, req.IdempotencyKey),
	})
	if err != nil {
		return respondError(c, err, "transfer")
	}

	return netHTTP.OK(c, entry)
}

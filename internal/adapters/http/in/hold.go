package in

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/agentledger/ledger/internal/domain/recipient"
	"github.com/agentledger/ledger/internal/services/command"
	netHTTP "github.com/agentledger/ledger/pkg/net/http"
)

// HoldHandler serves spec.md §4.3: create, capture, and release of holds.
type HoldHandler struct {
	Command *command.UseCase
}

// CreateHoldRequest is the wire shape of a hold-creation request.
type CreateHoldRequest struct {
	Amount         string `json:"amount" validate:"required"`
	Currency       string `json:"currency" validate:"required,len=3"`
	ExpiresIn      int64  `json:"expires_in_seconds" validate:"required,gt=0"`
	IdempotencyKey string `json:"idempotency_key"`
}

// CreateHold reserves amount against the caller's own wallet.
func (h *HoldHandler) CreateHold(payload any, c *fiber.Ctx) error {
	req := payload.(*CreateHoldRequest)
	caller := Caller(c)

	created, err := h.Command.CreateHold(c.UserContext(), caller, command.CreateHoldInput{
		Amount:         req.Amount,
		Currency:       req.Currency,
		ExpiresIn:      time.Duration(req.ExpiresIn) * time.Second,
		IdempotencyKey: resolvedIdempotencyKey(c, req.IdempotencyKey),
	})
	if err != nil {
		return respondError(c, err, "hold")
	}

	return netHTTP.OK(c, created)
}

// CaptureHoldRequest is the wire shape of a hold-capture request.
type CaptureHoldRequest struct {
	Amount         string               `json:"amount" validate:"required"`
	To             recipient.Identifier `json:"to" validate:"required"`
	IdempotencyKey string               `json:"idempotency_key"`
}

// CaptureHold settles part or all of the hold named by the path to a
// resolved recipient.
func (h *HoldHandler) CaptureHold(payload any, c *fiber.Ctx) error {
	req := payload.(*CaptureHoldRequest)
	caller := Caller(c)

	captured, err := h.Command.CaptureHold(c.UserContext(), caller, command.CaptureHoldInput{
		HoldID:         c.Params("hold_id"),
		Amount:         req.Amount,
		To:             req.To,
		IdempotencyKey: resolvedIdempotencyKey(c, req.IdempotencyKey),
	})
	if err != nil {
		return respondError(c, err, "hold")
	}

	return netHTTP.OK(c, captured)
}

// ReleaseHoldRequest is the wire shape of a hold-release request.
type ReleaseHoldRequest struct {
	Amount         string `json:"amount" validate:"required"`
	IdempotencyKey string `json:"idempotency_key"`
}

// ReleaseHold returns part or all of the hold named by the path back to
// the caller's own available balance.
func (h *HoldHandler) ReleaseHold(payload any, c *fiber.Ctx) error {
	req := payload.(*ReleaseHoldRequest)
	caller := Caller(c)

	released, err := h.Command.ReleaseHold(c.UserContext(), caller, command.ReleaseHoldInput{
		HoldID:         c.Params("hold_id"),
		Amount:         req.Amount,
		IdempotencyKey: resolvedIdempotencyKey(c, req.IdempotencyKey),
	})
	if err != nil {
		return respondError(c, err, "hold")
	}

	return netHTTP.OK(c, released)
}

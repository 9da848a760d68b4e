package in

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/agentledger/ledger/internal/services/command"
	netHTTP "github.com/agentledger/ledger/pkg/net/http"
)

// PaymentIntentHandler serves spec.md §4.5: creating and paying payment
// intents.
type PaymentIntentHandler struct {
	Command *command.UseCase
}

// CreatePaymentIntentRequest is the wire shape of a payment-intent-creation
// request.
type CreatePaymentIntentRequest struct {
	Amount         string         `json:"amount" validate:"required"`
	Currency       string         `json:"currency" validate:"required,len=3"`
	ExpiresIn      int64          `json:"expires_in_seconds" validate:"required,gt=0"`
	Metadata       map[string]any `json:"metadata"`
	IdempotencyKey string         `json:"idempotency_key"`
}

// CreatePaymentIntent opens a payment intent against the caller's wallet.
func (h *PaymentIntentHandler) CreatePaymentIntent(payload any, c *fiber.Ctx) error {
	req := payload.(*CreatePaymentIntentRequest)
	caller := Caller(c)

	intent, err := h.Command.CreatePaymentIntent(c.UserContext(), caller, command.CreatePaymentIntentInput{
		Amount:         req.Amount,
		Currency:       req.Currency,
		ExpiresIn:      time.Duration(req.ExpiresIn) * time.Second,
		Metadata:       req.Metadata,
		IdempotencyKey: resolvedIdempotencyKey(c, req.IdempotencyKey),
	})
	if err != nil {
		return respondError(c, err, "payment_intent")
	}

	return netHTTP.OK(c, intent)
}

// PayPaymentIntentRequest is the wire shape of a payment-intent-pay request.
type PayPaymentIntentRequest struct {
	IdempotencyKey string `json:"idempotency_key"`
}

// PayPaymentIntent settles the payment intent named by the path from the
// caller's wallet.
func (h *PaymentIntentHandler) PayPaymentIntent(payload any, c *fiber.Ctx) error {
	req := payload.(*PayPaymentIntentRequest)
	caller := Caller(c)

	paid, err := h.Command.PayPaymentIntent(c.UserContext(), caller, command.PayPaymentIntentInput{
		PaymentIntentID: c.Params("id"),
		IdempotencyKey:  resolvedIdempotencyKey(c, req.IdempotencyKey),
	})
	if err != nil {
		return respondError(c, err, "payment_intent")
	}

	return netHTTP.OK(c, paid)
}

package in

import (
	"github.com/gofiber/fiber/v2"

	"github.com/agentledger/ledger/internal/domain/apikey"
	"github.com/agentledger/ledger/internal/domain/recipient"
	"github.com/agentledger/ledger/internal/domain/wallet"
	"github.com/agentledger/ledger/internal/services/command"
	netHTTP "github.com/agentledger/ledger/pkg/net/http"
)

// AdminHandler serves SPEC_FULL.md §4.10's operator surface: wallet
// provisioning, freezing, API key issuance and revocation, and deposits.
// Every route this handler serves is additionally gated by an admin:*
// scope at the router level.
type AdminHandler struct {
	Command *command.UseCase
}

// CreateWallet provisions a new wallet. Not idempotency-keyed: an operator
// retry that double-creates a wallet is caught by the unique handle
// constraint, not by a replay cache.
func (h *AdminHandler) CreateWallet(payload any, c *fiber.Ctx) error {
	in := payload.(*wallet.CreateInput)

	created, err := h.Command.CreateWallet(c.UserContext(), *in)
	if err != nil {
		return respondError(c, err, "wallet")
	}

	return netHTTP.OK(c, created)
}

// FreezeWalletRequest is the wire shape of a wallet status change.
type FreezeWalletRequest struct {
	Status wallet.Status `json:"status" validate:"required,oneof=active frozen closed"`
}

// FreezeWallet transitions the wallet named by the path to the requested status.
func (h *AdminHandler) FreezeWallet(payload any, c *fiber.Ctx) error {
	req := payload.(*FreezeWalletRequest)

	updated, err := h.Command.SetWalletStatus(c.UserContext(), command.SetWalletStatusInput{
		WalletID: c.Params("wallet_id"),
		Status:   req.Status,
	})
	if err != nil {
		return respondError(c, err, "wallet")
	}

	return netHTTP.OK(c, updated)
}

// CreateAPIKeyRequest is the wire shape of an API key issuance request.
type CreateAPIKeyRequest struct {
	WalletID string        `json:"wallet_id" validate:"required"`
	Scopes   []string      `json:"scopes" validate:"required,min=1"`
	Limits   apikey.Limits `json:"limits"`
}

// CreateAPIKey mints a new credential bound to a wallet. The plaintext
// secret is returned exactly once, in this response.
func (h *AdminHandler) CreateAPIKey(payload any, c *fiber.Ctx) error {
	req := payload.(*CreateAPIKeyRequest)

	result, err := h.Command.CreateAPIKey(c.UserContext(), command.CreateAPIKeyInput{
		WalletID: req.WalletID,
		Scopes:   req.Scopes,
		Limits:   req.Limits,
	})
	if err != nil {
		return respondError(c, err, "api_key")
	}

	return netHTTP.OK(c, result)
}

// RevokeAPIKey revokes the credential named by the path. A revoked key
// can still be looked up (to distinguish "revoked" from "unknown" on its
// next authentication attempt) but can no longer authenticate.
func (h *AdminHandler) RevokeAPIKey(c *fiber.Ctx) error {
	revoked, err := h.Command.APIKeyRepo.Revoke(c.UserContext(), c.Params("api_key_id"))
	if err != nil {
		return respondError(c, err, "api_key")
	}

	return netHTTP.OK(c, revoked)
}

// CreateDepositRequest is the wire shape of a deposit request.
type CreateDepositRequest struct {
	To             recipient.Identifier `json:"to" validate:"required"`
	Amount         string               `json:"amount" validate:"required"`
	Currency       string               `json:"currency" validate:"required,len=3"`
	ReferenceID    *string              `json:"reference_id"`
	Metadata       map[string]any       `json:"metadata"`
	IdempotencyKey string               `json:"idempotency_key"`
}

// CreateDeposit brings external value into the ledger by crediting a
// resolved recipient's wallet from the ledger's system source wallet.
func (h *AdminHandler) CreateDeposit(payload any, c *fiber.Ctx) error {
	req := payload.(*CreateDepositRequest)
	caller := Caller(c)

	entry, err := h.Command.CreateDeposit(c.UserContext(), caller, command.CreateDepositInput{
		To:             req.To,
		Amount:         req.Amount,
		Currency:       req.Currency,
		ReferenceID:    req.ReferenceID,
		Metadata:       req.Metadata,
		IdempotencyKey: resolvedIdempotencyKey(c, req.IdempotencyKey),
	})
	if err != nil {
		return respondError(c, err, "deposit")
	}

	return netHTTP.OK(c, entry)
}

// Package constant holds the sentinel business errors the ledger engine
// and its adapters compare against with errors.Is, and the UPPER_SNAKE
// error codes they map to on the wire (spec.md §7).
package constant

import "errors"

var (
	ErrInvalidAmount             = errors.New("INVALID_AMOUNT")
	ErrInvalidExpiresIn          = errors.New("INVALID_EXPIRES_IN")
	ErrCurrencyMismatch          = errors.New("CURRENCY_MISMATCH")
	ErrInsufficientFunds         = errors.New("INSUFFICIENT_FUNDS")
	ErrLimitExceeded             = errors.New("LIMIT_EXCEEDED")
	ErrForbiddenScope            = errors.New("FORBIDDEN_SCOPE")
	ErrCounterpartyNotAllowed    = errors.New("COUNTERPARTY_NOT_ALLOWED")
	ErrRecipientNotFound         = errors.New("RECIPIENT_NOT_FOUND")
	ErrWalletNotActive           = errors.New("WALLET_NOT_ACTIVE")
	ErrWalletFrozen              = errors.New("WALLET_FROZEN")
	ErrWalletClosed              = errors.New("WALLET_CLOSED")
	ErrHoldNotFound              = errors.New("HOLD_NOT_FOUND")
	ErrHoldExpired               = errors.New("HOLD_EXPIRED")
	ErrHoldNotCapturable         = errors.New("HOLD_NOT_CAPTURABLE")
	ErrHoldNotReleasable         = errors.New("HOLD_NOT_RELEASABLE")
	ErrAmountExceedsHold         = errors.New("AMOUNT_EXCEEDS_HOLD")
	ErrAmountExceedsRefundable   = errors.New("AMOUNT_EXCEEDS_REFUNDABLE")
	ErrCaptureNotFound           = errors.New("CAPTURE_NOT_FOUND")
	ErrPaymentIntentNotFound     = errors.New("PAYMENT_INTENT_NOT_FOUND")
	ErrPaymentIntentExpired      = errors.New("PAYMENT_INTENT_EXPIRED")
	ErrPaymentIntentNotPayable   = errors.New("PAYMENT_INTENT_NOT_PAYABLE")
	ErrSelfTransfer              = errors.New("SELF_TRANSFER")
	ErrSelfPayment               = errors.New("SELF_PAYMENT")
	ErrIdempotencyConflict       = errors.New("IDEMPOTENCY_CONFLICT")
	ErrRateLimitExceeded         = errors.New("RATE_LIMIT_EXCEEDED")
	ErrWalletNotFound            = errors.New("WALLET_NOT_FOUND")
	ErrAPIKeyInvalid             = errors.New("API_KEY_INVALID")
	ErrAPIKeyRevoked             = errors.New("API_KEY_REVOKED")
	ErrHandleUnavailable         = errors.New("HANDLE_UNAVAILABLE")
	ErrValidation                = errors.New("VALIDATION_ERROR")
	ErrForbidden                 = errors.New("FORBIDDEN")
	ErrEntityNotFound            = errors.New("NOT_FOUND")
	ErrUnbalancedEntry           = errors.New("UNBALANCED_ENTRY")
)

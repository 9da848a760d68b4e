package constant

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSentinelErrorCodes(t *testing.T) {
	cases := map[error]string{
		ErrInvalidAmount:           "INVALID_AMOUNT",
		ErrCurrencyMismatch:        "CURRENCY_MISMATCH",
		ErrInsufficientFunds:       "INSUFFICIENT_FUNDS",
		ErrLimitExceeded:           "LIMIT_EXCEEDED",
		ErrForbiddenScope:          "FORBIDDEN_SCOPE",
		ErrCounterpartyNotAllowed:  "COUNTERPARTY_NOT_ALLOWED",
		ErrRecipientNotFound:       "RECIPIENT_NOT_FOUND",
		ErrWalletNotActive:         "WALLET_NOT_ACTIVE",
		ErrWalletFrozen:            "WALLET_FROZEN",
		ErrWalletClosed:            "WALLET_CLOSED",
		ErrHoldNotFound:            "HOLD_NOT_FOUND",
		ErrHoldExpired:             "HOLD_EXPIRED",
		ErrHoldNotCapturable:       "HOLD_NOT_CAPTURABLE",
		ErrHoldNotReleasable:       "HOLD_NOT_RELEASABLE",
		ErrAmountExceedsHold:       "AMOUNT_EXCEEDS_HOLD",
		ErrAmountExceedsRefundable: "AMOUNT_EXCEEDS_REFUNDABLE",
		ErrCaptureNotFound:         "CAPTURE_NOT_FOUND",
		ErrPaymentIntentNotFound:   "PAYMENT_INTENT_NOT_FOUND",
		ErrPaymentIntentExpired:    "PAYMENT_INTENT_EXPIRED",
		ErrPaymentIntentNotPayable: "PAYMENT_INTENT_NOT_PAYABLE",
		ErrSelfTransfer:            "SELF_TRANSFER",
		ErrSelfPayment:             "SELF_PAYMENT",
		ErrIdempotencyConflict:     "IDEMPOTENCY_CONFLICT",
		ErrRateLimitExceeded:       "RATE_LIMIT_EXCEEDED",
		ErrWalletNotFound:          "WALLET_NOT_FOUND",
		ErrAPIKeyInvalid:           "API_KEY_INVALID",
		ErrAPIKeyRevoked:           "API_KEY_REVOKED",
		ErrHandleUnavailable:       "HANDLE_UNAVAILABLE",
		ErrValidation:              "VALIDATION_ERROR",
		ErrForbidden:               "FORBIDDEN",
		ErrEntityNotFound:          "NOT_FOUND",
		ErrUnbalancedEntry:         "UNBALANCED_ENTRY",
	}

	for err, code := range cases {
		assert.EqualError(t, err, code)
	}
}

// Package pkgerrors defines the typed error taxonomy returned across
// service and adapter boundaries, and ValidateBusinessError, which maps
// the sentinel errors in pkg/constant to one of these typed errors so the
// HTTP layer can render the right status code and wire error_code.
package pkgerrors

import (
	"errors"
	"fmt"
	"strings"

	cn "github.com/agentledger/ledger/pkg/constant"
)

// EntityNotFoundError indicates a lookup found no matching row.
type EntityNotFoundError struct {
	EntityType string
	Title      string
	Message    string
	Code       string
	Err        error
}

func (e EntityNotFoundError) Error() string {
	if strings.TrimSpace(e.Message) != "" {
		return e.Message
	}

	if e.EntityType != "" {
		return fmt.Sprintf("%s not found", e.EntityType)
	}

	return "entity not found"
}

func (e EntityNotFoundError) Unwrap() error { return e.Err }

// ValidationError indicates a request failed semantic validation.
type ValidationError struct {
	EntityType string
	Title      string
	Message    string
	Code       string
	Err        error
}

func (e ValidationError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s - %s", e.Code, e.Message)
	}

	return e.Message
}

func (e ValidationError) Unwrap() error { return e.Err }

// EntityConflictError indicates a write would violate a uniqueness or
// state invariant (idempotency key reuse, duplicate handle, and so on).
type EntityConflictError struct {
	EntityType string
	Title      string
	Message    string
	Code       string
	Err        error
}

func (e EntityConflictError) Error() string {
	if e.Err != nil && e.Message == "" {
		return e.Err.Error()
	}

	return e.Message
}

func (e EntityConflictError) Unwrap() error { return e.Err }

// UnauthorizedError indicates the caller presented no valid credential.
type UnauthorizedError struct {
	EntityType string
	Title      string
	Message    string
	Code       string
	Err        error
}

func (e UnauthorizedError) Error() string { return e.Message }
func (e UnauthorizedError) Unwrap() error { return e.Err }

// ForbiddenError indicates the caller is authenticated but not permitted
// to perform the operation (scope mismatch, wallet ownership mismatch).
type ForbiddenError struct {
	EntityType string
	Title      string
	Message    string
	Code       string
	Err        error
}

func (e ForbiddenError) Error() string { return e.Message }
func (e ForbiddenError) Unwrap() error { return e.Err }

// RateLimitedError indicates the caller exceeded a configured rate limit.
type RateLimitedError struct {
	EntityType string
	Title      string
	Message    string
	Code       string
	RetryAfter int
	Err        error
}

func (e RateLimitedError) Error() string { return e.Message }
func (e RateLimitedError) Unwrap() error { return e.Err }

// InternalServerError indicates an unexpected failure the caller cannot
// act on (storage failure, unhandled programming error).
type InternalServerError struct {
	EntityType string
	Title      string
	Message    string
	Code       string
	Err        error
}

func (e InternalServerError) Error() string { return e.Message }
func (e InternalServerError) Unwrap() error { return e.Err }

// ValidateInternalError wraps an unexpected error as an InternalServerError.
func ValidateInternalError(err error, entityType string) error {
	return InternalServerError{
		EntityType: entityType,
		Code:       "INTERNAL_ERROR",
		Title:      "Internal Server Error",
		Message:    "The server encountered an unexpected error. Please try again later.",
		Err:        err,
	}
}

// ValidateBusinessError maps a sentinel error from pkg/constant (or a
// wrapped occurrence of one) into the typed error carrying the title,
// message, and wire error_code the HTTP layer renders.
//
//nolint:gocyclo
func ValidateBusinessError(err error, entityType string, args ...any) error {
	switch {
	case errors.Is(err, cn.ErrInvalidAmount):
		return ValidationError{
			EntityType: entityType,
			Code:       cn.ErrInvalidAmount.Error(),
			Title:      "Invalid Amount",
			Message:    "The amount must be a positive decimal string with at most 4 fractional digits.",
		}
	case errors.Is(err, cn.ErrCurrencyMismatch):
		return ValidationError{
			EntityType: entityType,
			Code:       cn.ErrCurrencyMismatch.Error(),
			Title:      "Currency Mismatch",
			Message:    "The operation's currency does not match the wallet's currency.",
		}
	case errors.Is(err, cn.ErrInvalidExpiresIn):
		return ValidationError{
			EntityType: entityType,
			Code:       cn.ErrInvalidExpiresIn.Error(),
			Title:      "Invalid Expiration",
			Message:    "expires_in must fall within the hold's configured minimum and maximum duration.",
		}
	case errors.Is(err, cn.ErrInsufficientFunds):
		return ValidationError{
			EntityType: entityType,
			Code:       cn.ErrInsufficientFunds.Error(),
			Title:      "Insufficient Funds",
			Message:    "The wallet's available balance is insufficient to cover this operation.",
		}
	case errors.Is(err, cn.ErrLimitExceeded):
		return ValidationError{
			EntityType: entityType,
			Code:       cn.ErrLimitExceeded.Error(),
			Title:      "Limit Exceeded",
			Message:    "This operation would exceed a configured spend limit for the wallet.",
		}
	case errors.Is(err, cn.ErrForbiddenScope):
		return ForbiddenError{
			EntityType: entityType,
			Code:       cn.ErrForbiddenScope.Error(),
			Title:      "Forbidden Scope",
			Message:    "The presented API key does not carry a scope permitting this operation.",
		}
	case errors.Is(err, cn.ErrCounterpartyNotAllowed):
		return ForbiddenError{
			EntityType: entityType,
			Code:       cn.ErrCounterpartyNotAllowed.Error(),
			Title:      "Counterparty Not Allowed",
			Message:    "The destination wallet is not on the caller wallet's counterparty allowlist.",
		}
	case errors.Is(err, cn.ErrRecipientNotFound):
		return EntityNotFoundError{
			EntityType: entityType,
			Code:       cn.ErrRecipientNotFound.Error(),
			Title:      "Recipient Not Found",
			Message:    "No wallet could be resolved for the given recipient handle.",
		}
	case errors.Is(err, cn.ErrWalletNotActive):
		return ForbiddenError{
			EntityType: entityType,
			Code:       cn.ErrWalletNotActive.Error(),
			Title:      "Wallet Not Active",
			Message:    "The wallet is not in an active state.",
		}
	case errors.Is(err, cn.ErrWalletFrozen):
		return ForbiddenError{
			EntityType: entityType,
			Code:       cn.ErrWalletFrozen.Error(),
			Title:      "Wallet Frozen",
			Message:    "The wallet is frozen and cannot originate or receive funds.",
		}
	case errors.Is(err, cn.ErrWalletClosed):
		return ForbiddenError{
			EntityType: entityType,
			Code:       cn.ErrWalletClosed.Error(),
			Title:      "Wallet Closed",
			Message:    "The wallet is closed.",
		}
	case errors.Is(err, cn.ErrWalletNotFound):
		return EntityNotFoundError{
			EntityType: entityType,
			Code:       cn.ErrWalletNotFound.Error(),
			Title:      "Wallet Not Found",
			Message:    "No wallet was found for the given identifier.",
		}
	case errors.Is(err, cn.ErrHoldNotFound):
		return EntityNotFoundError{
			EntityType: entityType,
			Code:       cn.ErrHoldNotFound.Error(),
			Title:      "Hold Not Found",
			Message:    "No hold was found for the given identifier.",
		}
	case errors.Is(err, cn.ErrHoldExpired):
		return ValidationError{
			EntityType: entityType,
			Code:       cn.ErrHoldExpired.Error(),
			Title:      "Hold Expired",
			Message:    "The hold has already expired and its funds were released.",
		}
	case errors.Is(err, cn.ErrHoldNotCapturable):
		return ValidationError{
			EntityType: entityType,
			Code:       cn.ErrHoldNotCapturable.Error(),
			Title:      "Hold Not Capturable",
			Message:    "The hold is not in a state that can be captured.",
		}
	case errors.Is(err, cn.ErrHoldNotReleasable):
		return ValidationError{
			EntityType: entityType,
			Code:       cn.ErrHoldNotReleasable.Error(),
			Title:      "Hold Not Releasable",
			Message:    "The hold is not in a state that can be released.",
		}
	case errors.Is(err, cn.ErrAmountExceedsHold):
		return ValidationError{
			EntityType: entityType,
			Code:       cn.ErrAmountExceedsHold.Error(),
			Title:      "Amount Exceeds Hold",
			Message:    "The requested capture amount exceeds the hold's remaining amount.",
		}
	case errors.Is(err, cn.ErrAmountExceedsRefundable):
		return ValidationError{
			EntityType: entityType,
			Code:       cn.ErrAmountExceedsRefundable.Error(),
			Title:      "Amount Exceeds Refundable",
			Message:    "The requested refund amount exceeds the capture's remaining refundable amount.",
		}
	case errors.Is(err, cn.ErrCaptureNotFound):
		return EntityNotFoundError{
			EntityType: entityType,
			Code:       cn.ErrCaptureNotFound.Error(),
			Title:      "Capture Not Found",
			Message:    "No capture was found for the given identifier.",
		}
	case errors.Is(err, cn.ErrPaymentIntentNotFound):
		return EntityNotFoundError{
			EntityType: entityType,
			Code:       cn.ErrPaymentIntentNotFound.Error(),
			Title:      "Payment Intent Not Found",
			Message:    "No payment intent was found for the given identifier.",
		}
	case errors.Is(err, cn.ErrPaymentIntentExpired):
		return ValidationError{
			EntityType: entityType,
			Code:       cn.ErrPaymentIntentExpired.Error(),
			Title:      "Payment Intent Expired",
			Message:    "The payment intent has expired and can no longer be paid.",
		}
	case errors.Is(err, cn.ErrPaymentIntentNotPayable):
		return ValidationError{
			EntityType: entityType,
			Code:       cn.ErrPaymentIntentNotPayable.Error(),
			Title:      "Payment Intent Not Payable",
			Message:    "The payment intent is not in a state that accepts payment.",
		}
	case errors.Is(err, cn.ErrSelfTransfer):
		return ValidationError{
			EntityType: entityType,
			Code:       cn.ErrSelfTransfer.Error(),
			Title:      "Self Transfer",
			Message:    "A wallet cannot transfer funds to itself.",
		}
	case errors.Is(err, cn.ErrSelfPayment):
		return ValidationError{
			EntityType: entityType,
			Code:       cn.ErrSelfPayment.Error(),
			Title:      "Self Payment",
			Message:    "A wallet cannot pay its own payment intent.",
		}
	case errors.Is(err, cn.ErrIdempotencyConflict):
		return EntityConflictError{
			EntityType: entityType,
			Code:       cn.ErrIdempotencyConflict.Error(),
			Title:      "Idempotency Conflict",
			Message:    "This idempotency key was already used with a different request body or operation.",
		}
	case errors.Is(err, cn.ErrRateLimitExceeded):
		return RateLimitedError{
			EntityType: entityType,
			Code:       cn.ErrRateLimitExceeded.Error(),
			Title:      "Rate Limit Exceeded",
			Message:    "Too many requests. Please retry after the indicated delay.",
		}
	case errors.Is(err, cn.ErrAPIKeyInvalid):
		return UnauthorizedError{
			EntityType: entityType,
			Code:       cn.ErrAPIKeyInvalid.Error(),
			Title:      "API Key Invalid",
			Message:    "The presented API key is invalid.",
		}
	case errors.Is(err, cn.ErrAPIKeyRevoked):
		return UnauthorizedError{
			EntityType: entityType,
			Code:       cn.ErrAPIKeyRevoked.Error(),
			Title:      "API Key Revoked",
			Message:    "The presented API key has been revoked.",
		}
	case errors.Is(err, cn.ErrHandleUnavailable):
		return EntityConflictError{
			EntityType: entityType,
			Code:       cn.ErrHandleUnavailable.Error(),
			Title:      "Handle Unavailable",
			Message:    "This recipient handle is already taken.",
		}
	case errors.Is(err, cn.ErrUnbalancedEntry):
		return ValidationError{
			EntityType: entityType,
			Code:       cn.ErrUnbalancedEntry.Error(),
			Title:      "Unbalanced Entry",
			Message:    "The journal entry's debit and credit lines do not sum to zero.",
		}
	case errors.Is(err, cn.ErrEntityNotFound):
		return EntityNotFoundError{
			EntityType: entityType,
			Code:       cn.ErrEntityNotFound.Error(),
			Title:      "Entity Not Found",
			Message:    "No entity was found for the given identifier.",
		}
	case errors.Is(err, cn.ErrForbidden):
		return ForbiddenError{
			EntityType: entityType,
			Code:       cn.ErrForbidden.Error(),
			Title:      "Forbidden",
			Message:    "The caller is not permitted to perform this operation.",
		}
	case errors.Is(err, cn.ErrValidation):
		return ValidationError{
			EntityType: entityType,
			Code:       cn.ErrValidation.Error(),
			Title:      "Validation Error",
			Message:    fmt.Sprint(args...),
		}
	default:
		return nil
	}
}

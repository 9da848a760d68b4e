package http

import (
	"github.com/agentledger/ledger/pkg/pkgerrors"
	"github.com/gofiber/fiber/v2"
)

// WithError renders err as the appropriate HTTP status and body, switching
// on the typed errors produced by pkgerrors.ValidateBusinessError.
func WithError(c *fiber.Ctx, err error) error {
	switch e := err.(type) {
	case pkgerrors.EntityNotFoundError:
		return NotFound(c, e.Code, e.Title, e.Message)
	case pkgerrors.EntityConflictError:
		return Conflict(c, e.Code, e.Title, e.Message)
	case pkgerrors.ValidationError:
		return BadRequest(c, ResponseError{Code: e.Code, Title: e.Title, Message: e.Message})
	case pkgerrors.UnauthorizedError:
		return Unauthorized(c, e.Code, e.Title, e.Message)
	case pkgerrors.ForbiddenError:
		return Forbidden(c, e.Code, e.Title, e.Message)
	case pkgerrors.RateLimitedError:
		return TooManyRequests(c, e.Code, e.Title, e.Message, e.RetryAfter)
	case ValidationFieldError:
		return BadRequest(c, e)
	case ResponseError:
		return BadRequest(c, e)
	case pkgerrors.InternalServerError:
		return InternalServerError(c, e.Code, e.Title, e.Message)
	default:
		ise := pkgerrors.ValidateInternalError(err, "").(pkgerrors.InternalServerError)
		return InternalServerError(c, ise.Code, ise.Title, ise.Message)
	}
}

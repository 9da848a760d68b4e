package http

import (
	"strings"
	"time"

	"github.com/agentledger/ledger/pkg/mlog"
	"github.com/gofiber/fiber/v2"
)

// RequestInfo captures the fields written to the access log for one request.
type RequestInfo struct {
	Method        string
	URI           string
	Status        int
	Date          time.Time
	Duration      time.Duration
	RemoteAddress string
	UserAgent     string
	CorrelationID string
}

// NewRequestInfo snapshots the request side of a RequestInfo before the
// handler chain runs.
func NewRequestInfo(c *fiber.Ctx) *RequestInfo {
	return &RequestInfo{
		Method:        c.Method(),
		URI:           c.OriginalURL(),
		UserAgent:     c.Get(headerUserAgent),
		CorrelationID: c.Get(headerCorrelationID),
		RemoteAddress: c.IP(),
		Date:          time.Now().UTC(),
	}
}

// CLFString renders a Common-Log-Format-ish line for local/dev logging.
func (r *RequestInfo) CLFString() string {
	return strings.Join([]string{
		r.RemoteAddress,
		r.Method,
		r.URI,
		itoaStatus(r.Status),
		r.Duration.String(),
	}, " ")
}

func itoaStatus(status int) string {
	if status == 0 {
		return "-"
	}

	return fiber.StatusMessage(status)
}

// WithHTTPLogging logs one structured line per request at Info level, with
// the request's correlation id attached as a field.
func WithHTTPLogging(logger mlog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Path() == "/health" || c.Path() == "/healthz" {
			return c.Next()
		}

		info := NewRequestInfo(c)
		scoped := logger.WithFields("correlation_id", info.CorrelationID)

		c.SetUserContext(mlog.ContextWithLogger(c.UserContext(), scoped))

		err := c.Next()

		info.Status = c.Response().StatusCode()
		info.Duration = time.Since(info.Date)

		scoped.Infof("%s %s %d %s", info.Method, info.URI, info.Status, info.Duration)

		return err
	}
}

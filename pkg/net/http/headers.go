package http

const (
	headerCorrelationID = "X-Correlation-ID"
	headerIdempotencyKey = "Idempotency-Key"
	headerUserAgent      = "User-Agent"
	headerAuthorization  = "Authorization"
)

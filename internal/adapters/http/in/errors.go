package in

import (
	"github.com/gofiber/fiber/v2"

	netHTTP "github.com/agentledger/ledger/pkg/net/http"
	"github.com/agentledger/ledger/pkg/pkgerrors"
)

// respondError renders a service-layer error, first giving
// pkgerrors.ValidateBusinessError a chance to classify a bare
// pkg/constant sentinel into its typed, correctly-statused form. Errors
// that are already one of the typed errors (or genuinely unexpected)
// fall through to WithError unchanged.
func respondError(c *fiber.Ctx, err error, entityType string) error {
	if mapped := pkgerrors.ValidateBusinessError(err, entityType); mapped != nil {
		return netHTTP.WithError(c, mapped)
	}

	return netHTTP.WithError(c, err)
}

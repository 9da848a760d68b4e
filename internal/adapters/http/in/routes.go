package in

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/agentledger/ledger/internal/domain/apikey"
	"github.com/agentledger/ledger/internal/domain/ratelimit"
	"github.com/agentledger/ledger/internal/domain/wallet"
	"github.com/agentledger/ledger/internal/services/command"
	"github.com/agentledger/ledger/internal/services/query"
	"github.com/agentledger/ledger/pkg/mlog"
	netHTTP "github.com/agentledger/ledger/pkg/net/http"
)

// Scopes required per endpoint (spec.md §6).
const (
	scopeWalletRead          = "wallet:read"
	scopeTransferCreate      = "transfer:create"
	scopeHoldCreate          = "hold:create"
	scopeHoldCapture         = "hold:capture"
	scopeHoldRelease         = "hold:release"
	scopeRefundCreate        = "refund:create"
	scopePaymentIntentCreate = "payment_intent:create"
	scopePaymentIntentPay    = "payment_intent:pay"
	scopeAdminWallets        = "admin:wallets"
	scopeAdminAPIKeys        = "admin:api_keys"
	scopeAdminDeposits       = "admin:deposits"
)

// NewRouter assembles the Fiber app: ambient middleware, authentication
// and authorization per endpoint, and every route named by spec.md §6.
func NewRouter(
	logger mlog.Logger,
	apiKeyRepo apikey.Repository,
	hasher APIKeyHasher,
	limiter ratelimit.Limiter,
	rlCfg RateLimitConfig,
	cmd *command.UseCase,
	qry *query.UseCase,
) *fiber.App {
	f := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if fe, ok := err.(*fiber.Error); ok {
				return c.Status(fe.Code).JSON(netHTTP.ResponseError{Message: fe.Message})
			}

			return respondError(c, err, "")
		},
	})

	f.Use(cors.New())
	f.Use(netHTTP.WithCorrelationID())
	f.Use(netHTTP.WithHTTPLogging(logger))
	f.Use(recover.New())

	f.Get("/health", func(c *fiber.Ctx) error { return netHTTP.OK(c, fiber.Map{"status": "ok"}) })
	f.Get("/version", func(c *fiber.Ctx) error { return netHTTP.OK(c, fiber.Map{"version": "v1"}) })

	auth := WithAuth(apiKeyRepo, hasher)
	rate := WithRateLimit(limiter, rlCfg)

	wh := &WalletHandler{Query: qry}
	rh := &ResolveHandler{Query: qry}
	th := &TransferHandler{Command: cmd}
	hh := &HoldHandler{Command: cmd}
	rfh := &RefundHandler{Command: cmd}
	pih := &PaymentIntentHandler{Command: cmd}
	ah := &AdminHandler{Command: cmd}

	v1 := f.Group("/v1", auth, rate)

	v1.Get("/wallets/me", WithScope(scopeWalletRead), wh.GetMe)
	v1.Get("/wallets/me/balance", WithScope(scopeWalletRead), wh.GetBalance)
	v1.Get("/wallets/me/transactions", WithScope(scopeWalletRead), wh.ListTransactions)
	v1.Get("/resolve", WithScope(scopeWalletRead), rh.Resolve)

	v1.Post("/transfers", WithScope(scopeTransferCreate),
		netHTTP.WithBody(new(CreateTransferRequest), th.CreateTransfer))

	v1.Post("/holds", WithScope(scopeHoldCreate),
		netHTTP.WithBody(new(CreateHoldRequest), hh.CreateHold))
	v1.Post("/holds/:hold_id/capture", WithScope(scopeHoldCapture),
		netHTTP.WithBody(new(CaptureHoldRequest), hh.CaptureHold))
	v1.Post("/holds/:hold_id/release", WithScope(scopeHoldRelease),
		netHTTP.WithBody(new(ReleaseHoldRequest), hh.ReleaseHold))

	v1.Post("/payment_intents", WithScope(scopePaymentIntentCreate),
		netHTTP.WithBody(new(CreatePaymentIntentRequest), pih.CreatePaymentIntent))
	v1.Post("/payment_intents/:id/pay", WithScope(scopePaymentIntentPay),
		netHTTP.WithBody(new(PayPaymentIntentRequest), pih.PayPaymentIntent))

	v1.Post("/refunds", WithScope(scopeRefundCreate),
		netHTTP.WithBody(new(CreateRefundRequest), rfh.CreateRefund))

	admin := f.Group("/admin", auth, rate)

	admin.Post("/wallets", WithScope(scopeAdminWallets),
		netHTTP.WithBody(new(wallet.CreateInput), ah.CreateWallet))
	admin.Post("/wallets/:wallet_id/freeze", WithScope(scopeAdminWallets),
		netHTTP.WithBody(new(FreezeWalletRequest), ah.FreezeWallet))

	admin.Post("/api_keys", WithScope(scopeAdminAPIKeys),
		netHTTP.WithBody(new(CreateAPIKeyRequest), ah.CreateAPIKey))
	admin.Post("/api_keys/:api_key_id/revoke", WithScope(scopeAdminAPIKeys), ah.RevokeAPIKey)

	admin.Post("/deposits", WithScope(scopeAdminDeposits),
		netHTTP.WithBody(new(CreateDepositRequest), ah.CreateDeposit))

	return f
}

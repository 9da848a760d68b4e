package bootstrap

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/agentledger/ledger/internal/adapters/auth"
	httpin "github.com/agentledger/ledger/internal/adapters/http/in"
	"github.com/agentledger/ledger/internal/adapters/postgres"
	rabbitadapter "github.com/agentledger/ledger/internal/adapters/rabbitmq"
	ratelimitadapter "github.com/agentledger/ledger/internal/adapters/ratelimit"
	redisadapter "github.com/agentledger/ledger/internal/adapters/redis"
	"github.com/agentledger/ledger/internal/domain/ratelimit"
	"github.com/agentledger/ledger/internal/domain/recipient"
	"github.com/agentledger/ledger/internal/services/command"
	"github.com/agentledger/ledger/internal/services/query"
	"github.com/agentledger/ledger/pkg/mlog"
	"github.com/agentledger/ledger/pkg/mzap"
)

// Service aggregates everything the running process needs: the wired
// use cases, the HTTP app, and the pieces the hold-expiration sweep
// loop and graceful shutdown need to reach back into.
type Service struct {
	Config  *Config
	Logger  mlog.Logger
	Command *command.UseCase
	Query   *query.UseCase
	App     *fiber.App
}

// NewService wires every adapter, use case, and the HTTP router from cfg.
func NewService(cfg *Config) (*Service, error) {
	logger := mzap.InitializeLogger(logLevel(cfg), logEncoding(cfg))

	pgConn := &postgres.Connection{
		DSN:            cfg.PostgresDSN,
		MigrationsPath: cfg.PostgresMigrationsPath,
		DBName:         cfg.PostgresDBName,
		Logger:         logger,
	}

	if err := pgConn.Connect(); err != nil {
		return nil, err
	}

	txRunner := &postgres.TxRunner{Conn: pgConn}

	walletRepo := postgres.NewWalletRepository(pgConn)
	ledgerAccountRepo := postgres.NewLedgerAccountRepository(pgConn)
	journalRepo := postgres.NewJournalRepository(pgConn)
	holdRepo := postgres.NewHoldRepository(pgConn)
	captureRepo := postgres.NewCaptureRepository(pgConn)
	refundRepo := postgres.NewRefundRepository(pgConn)
	paymentIntentRepo := postgres.NewPaymentIntentRepository(pgConn)
	apiKeyRepo := postgres.NewAPIKeyRepository(pgConn)
	externalIdentityRepo := postgres.NewExternalIdentityRepository(pgConn)

	var (
		recipientCache recipient.Cache
		redisConn      *redisadapter.Connection
	)

	if cfg.usesRedis() {
		redisConn = &redisadapter.Connection{
			Address:  cfg.RedisAddress,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Logger:   logger,
		}
		recipientCache = redisadapter.NewRecipientCache(redisConn, time.Duration(cfg.RecipientCacheTTLSeconds)*time.Second)
	}

	limiter := buildRateLimiter(cfg, redisConn)

	queryUC := &query.UseCase{
		WalletRepo:           walletRepo,
		LedgerAccountRepo:    ledgerAccountRepo,
		JournalRepo:          journalRepo,
		ExternalIdentityRepo: externalIdentityRepo,
		RecipientCache:       recipientCache,
		Logger:               logger,
	}

	hasher := auth.NewAPIKeyHasher()

	var audit command.AuditPublisher

	if cfg.RabbitMQURL != "" {
		rmqConn := &rabbitadapter.Connection{URL: cfg.RabbitMQURL, Logger: logger}
		audit = rabbitadapter.NewAuditPublisher(rmqConn)
	}

	cmdUC := &command.UseCase{
		WalletRepo:        walletRepo,
		LedgerAccountRepo: ledgerAccountRepo,
		JournalRepo:       journalRepo,
		HoldRepo:          holdRepo,
		CaptureRepo:       captureRepo,
		RefundRepo:        refundRepo,
		PaymentIntentRepo: paymentIntentRepo,
		APIKeyRepo:        apiKeyRepo,
		TxRunner:          txRunner,
		RateLimit:         limiter,
		Resolver:          queryUC,
		Audit:             audit,
		Logger:            logger,
		SecretHasher:      hasher,
	}

	app := httpin.NewRouter(logger, apiKeyRepo, httpin.NewAPIKeyHasher(auth.Hash), limiter,
		httpin.RateLimitConfig{RatePerSecond: cfg.RateLimitRate, Capacity: cfg.RateLimitCapacity}, cmdUC, queryUC)

	return &Service{
		Config:  cfg,
		Logger:  logger,
		Command: cmdUC,
		Query:   queryUC,
		App:     app,
	}, nil
}

// buildRateLimiter selects the memory or redis token-bucket backend per
// cfg.RateLimitBackend (SPEC_FULL.md §5's rate-limiter-backing Open
// Question resolution). redisConn is nil unless the redis backend or
// the recipient cache already required a connection.
func buildRateLimiter(cfg *Config, redisConn *redisadapter.Connection) ratelimit.Limiter {
	if cfg.RateLimitBackend == "redis" && redisConn != nil {
		return redisadapter.NewLimiter(redisConn)
	}

	return ratelimitadapter.NewLimiter()
}

// RunHoldSweep starts the periodic hold-expiration sweep and blocks
// until ctx is cancelled (SPEC_FULL.md §4.11).
func (s *Service) RunHoldSweep(ctx context.Context) {
	interval := time.Duration(s.Config.HoldSweepIntervalSeconds) * time.Second
	ticker := time.NewTicker(interval)

	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			swept, err := s.Command.SweepExpiredHolds(ctx, s.Config.HoldSweepBatchSize)
			if err != nil {
				s.Logger.Errorf("hold sweep: %v", err)
				continue
			}

			if swept > 0 {
				s.Logger.Infof("hold sweep: expired %d holds", swept)
			}
		}
	}
}

func logEncoding(cfg *Config) string {
	if cfg.LogJSON {
		return "json"
	}

	return "console"
}

// Package command implements every balance-affecting and state-mutating
// operation in the ledger engine: transfers, holds, captures, releases,
// refunds, payment intents, deposits, and the admin surface
// (spec.md §4, §6).
package command

import (
	"context"

	"github.com/agentledger/ledger/internal/domain/apikey"
	"github.com/agentledger/ledger/internal/domain/capture"
	"github.com/agentledger/ledger/internal/domain/hold"
	"github.com/agentledger/ledger/internal/domain/journal"
	"github.com/agentledger/ledger/internal/domain/ledgeraccount"
	"github.com/agentledger/ledger/internal/domain/paymentintent"
	"github.com/agentledger/ledger/internal/domain/ratelimit"
	"github.com/agentledger/ledger/internal/domain/recipient"
	"github.com/agentledger/ledger/internal/domain/refund"
	"github.com/agentledger/ledger/internal/domain/wallet"
	"github.com/agentledger/ledger/pkg/mlog"
)

// UseCase aggregates every repository port the command services need.
type UseCase struct {
	WalletRepo        wallet.Repository
	LedgerAccountRepo ledgeraccount.Repository
	JournalRepo       journal.Repository
	HoldRepo          hold.Repository
	CaptureRepo       capture.Repository
	RefundRepo        refund.Repository
	PaymentIntentRepo paymentintent.Repository
	APIKeyRepo        apikey.Repository

	TxRunner     ledgeraccount.TxRunner
	RateLimit    ratelimit.Limiter
	Resolver     RecipientResolver
	Audit        AuditPublisher
	Logger       mlog.Logger
	SecretHasher APIKeySecretHasher
}

// APIKeySecretHasher generates a new plaintext API key credential and its
// stored hash. The hashing mechanism (a sha256 digest by default, in
// internal/adapters/auth) is out of
// engine scope per spec.md §1; this narrow port lets a deployment swap
// it without touching command logic (SPEC_FULL.md §4.10).
type APIKeySecretHasher interface {
	GenerateAndHash() (plaintext string, hash string, err error)
}

// RecipientResolver resolves a typed identifier to a concrete wallet, per
// spec.md §4.7. Query owns the implementation; command depends only on
// this narrow port so the two packages don't import each other.
type RecipientResolver interface {
	Resolve(ctx context.Context, id recipient.Identifier) (recipient.Resolved, error)
}

// AuditPublisher fires-and-forgets a record of a completed operation to
// the audit pipeline (out of scope per spec.md §1, wired in
// SPEC_FULL.md's domain stack). A nil Audit is a silent no-op.
type AuditPublisher interface {
	Publish(ctx context.Context, eventType string, payload map[string]any)
}

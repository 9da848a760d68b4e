// Package query implements every read-only operation in the ledger
// engine: wallet lookup, balance derivation, transaction listing, and
// recipient resolution (spec.md §4.7, §4.8, §6).
package query

import (
	"github.com/agentledger/ledger/internal/domain/externalidentity"
	"github.com/agentledger/ledger/internal/domain/journal"
	"github.com/agentledger/ledger/internal/domain/ledgeraccount"
	"github.com/agentledger/ledger/internal/domain/recipient"
	"github.com/agentledger/ledger/internal/domain/wallet"
	"github.com/agentledger/ledger/pkg/mlog"
)

// UseCase aggregates every repository port the query services need.
type UseCase struct {
	WalletRepo           wallet.Repository
	LedgerAccountRepo    ledgeraccount.Repository
	JournalRepo          journal.Repository
	ExternalIdentityRepo externalidentity.Repository

	RecipientCache recipient.Cache
	Logger         mlog.Logger
}

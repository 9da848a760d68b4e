// Package journal holds the JournalEntry and JournalLine entities: the
// immutable, balanced postings that are the sole source of truth for
// every balance (spec.md §3, §4.1).
package journal

import (
	"context"
	"time"

	"github.com/agentledger/ledger/pkg/money"
)

// EntryType names the operation that produced an entry.
type EntryType string

const (
	EntryTypeDepositExternal EntryType = "deposit_external"
	EntryTypeTransfer        EntryType = "transfer"
	EntryTypeHold            EntryType = "hold"
	EntryTypeCapture         EntryType = "capture"
	EntryTypeRelease         EntryType = "release"
	EntryTypeRefund          EntryType = "refund"
	EntryTypeReversal        EntryType = "reversal"
	EntryTypeAdjustment      EntryType = "adjustment"
)

// Status is an entry's lifecycle state. The engine only ever writes
// entries directly into Posted; Reversed/Failed exist for completeness
// of the domain model (spec.md §3) but no operation in this spec
// transitions an entry into them.
type Status string

const (
	StatusPending  Status = "pending"
	StatusPosted   Status = "posted"
	StatusReversed Status = "reversed"
	StatusFailed   Status = "failed"
)

// Direction is which side of the double entry a line is on.
type Direction string

const (
	DirectionDebit  Direction = "debit"
	DirectionCredit Direction = "credit"
)

// Entry is one atomic, immutable posting.
type Entry struct {
	ID              string
	Type            EntryType
	Status          Status
	IdempotencyKey  string
	ReferenceID     *string
	CreatedByAPIKey string
	Metadata        map[string]any
	CreatedAt       time.Time
	Lines           []Line
}

// Line is one row of an Entry: a single debit or credit against a ledger account.
type Line struct {
	ID              string
	EntryID         string
	LedgerAccountID string
	Direction       Direction
	Amount          money.Amount
	Currency        string
}

// NewEntry validates and constructs a balanced entry, without touching
// storage. It is the sole gate any posting must pass through
// (spec.md §4.1 step 1): at least two lines, every line sharing currency,
// all amounts strictly positive, and debits summing to credits exactly.
func NewEntry(entryType EntryType, idempotencyKey, createdByAPIKey string, referenceID *string, metadata map[string]any, lines []Line) (*Entry, error) {
	if err := validateLines(lines); err != nil {
		return nil, err
	}

	return &Entry{
		Type:            entryType,
		Status:          StatusPosted,
		IdempotencyKey:  idempotencyKey,
		ReferenceID:     referenceID,
		CreatedByAPIKey: createdByAPIKey,
		Metadata:        metadata,
		Lines:           lines,
	}, nil
}

func validateLines(lines []Line) error {
	if len(lines) < 2 {
		return errInvalidEntryShape("an entry must have at least two lines")
	}

	currency := lines[0].Currency
	debits, credits := money.Zero, money.Zero

	for _, l := range lines {
		if l.Currency != currency {
			return errInvalidEntryShape("all lines of an entry must share one currency")
		}

		if !l.Amount.IsPositive() {
			return errInvalidEntryShape("every line amount must be strictly positive")
		}

		switch l.Direction {
		case DirectionDebit:
			debits = debits.Add(l.Amount)
		case DirectionCredit:
			credits = credits.Add(l.Amount)
		default:
			return errInvalidEntryShape("line direction must be debit or credit")
		}
	}

	if !debits.Equal(credits) {
		return errInvalidEntryShape("debits must equal credits exactly")
	}

	return nil
}

type invalidEntryShapeError struct{ msg string }

func (e invalidEntryShapeError) Error() string { return e.msg }

func errInvalidEntryShape(msg string) error { return invalidEntryShapeError{msg: msg} }

// AmountFor returns the direction and unsigned amount of the first line of
// this entry posted to ledgerAccountID, used to report a caller's side of a
// transaction listing item (spec.md §4.8); ok is false when no line of the
// entry touches that account.
func (e *Entry) AmountFor(ledgerAccountID string) (direction Direction, amount money.Amount, ok bool) {
	for _, l := range e.Lines {
		if l.LedgerAccountID == ledgerAccountID {
			return l.Direction, l.Amount, true
		}
	}

	return "", money.Zero, false
}

// CounterpartyLine returns the single line of this entry whose ledger
// account is not callerAccountID — the transaction-listing counterparty
// derivation from spec.md §4.8 and §9. Self-only entries (both lines on
// the caller's own wallet, e.g. a hold create/release) yield ok=false.
func (e *Entry) CounterpartyLine(callerAccountID string) (line Line, ok bool) {
	for _, l := range e.Lines {
		if l.LedgerAccountID != callerAccountID {
			return l, true
		}
	}

	return Line{}, false
}

// Repository is the storage port for journal entries and their idempotency probe.
type Repository interface {
	// Post inserts entry and its lines. Callers must have already taken
	// the account locks required by spec.md §4.1's lock discipline.
	Post(ctx context.Context, entry *Entry) (*Entry, error)

	// FindByIdempotencyKey looks up a prior entry for (idempotencyKey,
	// createdByAPIKey) regardless of entry type — callers compare
	// entry.Type themselves to detect cross-operation key reuse
	// (spec.md §4.1's idempotency probe).
	FindByIdempotencyKey(ctx context.Context, idempotencyKey, createdByAPIKey string) (*Entry, error)

	Find(ctx context.Context, id string) (*Entry, error)

	// ListForAccounts returns entries touching any of accountIDs,
	// reverse-chronological by (created_at, id), for the transaction
	// listing feed (spec.md §4.8).
	ListForAccounts(ctx context.Context, accountIDs []string, filter ListFilter) ([]*Entry, error)

	// SumDebitsSince sums posted debit lines on accountID with
	// created_at >= since, for the daily-cap check (spec.md §4.6).
	SumDebitsSince(ctx context.Context, accountID string, since time.Time) (money.Amount, error)
}

// ListFilter narrows a transaction listing query (spec.md §4.8).
type ListFilter struct {
	Type        *EntryType
	Status      *Status
	FromDate    *time.Time
	ToDate      *time.Time
	BeforeEntry *CursorPosition
	Limit       int
}

// CursorPosition is the (created_at, entry_id) keyset position encoded in
// a transaction-listing cursor.
type CursorPosition struct {
	CreatedAt time.Time
	EntryID   string
}

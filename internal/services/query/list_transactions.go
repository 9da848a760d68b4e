package query

import (
	"context"
	"time"

	"github.com/agentledger/ledger/internal/domain/journal"
	"github.com/agentledger/ledger/pkg/money"
	"github.com/agentledger/ledger/pkg/pagination"
)

// TransactionItem is one row of the caller's transaction feed: a single
// journal entry collapsed to the caller's side of it (spec.md §4.8).
type TransactionItem struct {
	EntryID              string
	Type                 journal.EntryType
	Status               journal.Status
	Direction            journal.Direction
	Amount               money.Amount
	Currency             string
	CounterpartyWalletID string
	CounterpartyHandle   *string
	ReferenceID          *string
	Metadata             map[string]any
	CreatedAt            time.Time
}

// ListTransactionsInput narrows and paginates a caller's feed (spec.md §4.8).
type ListTransactionsInput struct {
	Type     *journal.EntryType
	Status   *journal.Status
	FromDate *time.Time
	ToDate   *time.Time
	Cursor   string
	Limit    int
}

// ListTransactionsResult is one page of the feed plus the opaque cursor
// for the next one, empty when there is no further page.
type ListTransactionsResult struct {
	Items      []TransactionItem
	NextCursor string
}

// ListTransactions returns walletID's reverse-chronological transaction
// feed (spec.md §4.8): one item per journal entry touching either of the
// wallet's two ledger accounts, with the counterparty derived from
// whichever line of the entry isn't the caller's own.
func (uc *UseCase) ListTransactions(ctx context.Context, walletID, currency string, in ListTransactionsInput) (*ListTransactionsResult, error) {
	avail, held, err := uc.LedgerAccountRepo.EnsureForWallet(ctx, walletID, currency)
	if err != nil {
		return nil, err
	}

	cursor, err := pagination.Decode(in.Cursor)
	if err != nil {
		return nil, err
	}

	limit := pagination.ClampLimit(in.Limit)

	filter := journal.ListFilter{
		Type:     in.Type,
		Status:   in.Status,
		FromDate: in.FromDate,
		ToDate:   in.ToDate,
		Limit:    limit + 1,
	}

	if !cursor.IsZero() {
		filter.BeforeEntry = &journal.CursorPosition{CreatedAt: cursor.CreatedAt, EntryID: cursor.EntryID}
	}

	entries, err := uc.JournalRepo.ListForAccounts(ctx, []string{avail.ID, held.ID}, filter)
	if err != nil {
		return nil, err
	}

	page, next, err := pagination.Page(entries, limit, func(e *journal.Entry) pagination.Cursor {
		return pagination.Cursor{CreatedAt: e.CreatedAt, EntryID: e.ID}
	})
	if err != nil {
		return nil, err
	}

	items := make([]TransactionItem, 0, len(page))

	for _, e := range page {
		item, err := uc.toTransactionItem(ctx, e, avail.ID, held.ID, currency)
		if err != nil {
			return nil, err
		}

		items = append(items, item)
	}

	return &ListTransactionsResult{Items: items, NextCursor: next}, nil
}

func (uc *UseCase) toTransactionItem(ctx context.Context, e *journal.Entry, availID, heldID, currency string) (TransactionItem, error) {
	item := TransactionItem{
		EntryID:     e.ID,
		Type:        e.Type,
		Status:      e.Status,
		Currency:    currency,
		ReferenceID: e.ReferenceID,
		Metadata:    e.Metadata,
		CreatedAt:   e.CreatedAt,
	}

	callerAccountID := availID

	dir, amt, ok := e.AmountFor(availID)
	if !ok {
		dir, amt, ok = e.AmountFor(heldID)
		callerAccountID = heldID
	}

	if ok {
		item.Direction, item.Amount = dir, amt
	}

	line, ok := e.CounterpartyLine(callerAccountID)
	if !ok || line.LedgerAccountID == availID || line.LedgerAccountID == heldID {
		return item, nil
	}

	account, err := uc.LedgerAccountRepo.Find(ctx, line.LedgerAccountID)
	if err != nil {
		return TransactionItem{}, err
	}

	item.CounterpartyWalletID = account.WalletID

	if w, err := uc.WalletRepo.Find(ctx, account.WalletID); err == nil {
		item.CounterpartyHandle = w.Handle
	}

	return item, nil
}

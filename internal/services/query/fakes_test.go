package query

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/agentledger/ledger/internal/domain/externalidentity"
	"github.com/agentledger/ledger/internal/domain/journal"
	"github.com/agentledger/ledger/internal/domain/ledgeraccount"
	"github.com/agentledger/ledger/internal/domain/wallet"
	cn "github.com/agentledger/ledger/pkg/constant"
	"github.com/agentledger/ledger/pkg/money"
	"github.com/agentledger/ledger/pkg/pkgerrors"
)

func nextID(counter *int, prefix string) string {
	*counter++
	return fmt.Sprintf("%s-%d", prefix, *counter)
}

type fakeWalletRepo struct {
	mu      sync.Mutex
	counter int
	byID    map[string]*wallet.Wallet
}

func newFakeWalletRepo() *fakeWalletRepo {
	return &fakeWalletRepo{byID: map[string]*wallet.Wallet{}}
}

func (r *fakeWalletRepo) Create(ctx context.Context, w *wallet.Wallet) (*wallet.Wallet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cp := *w
	cp.ID = nextID(&r.counter, "wal")
	cp.CreatedAt, cp.UpdatedAt = time.Now(), time.Now()
	r.byID[cp.ID] = &cp

	out := cp
	return &out, nil
}

func (r *fakeWalletRepo) Find(ctx context.Context, id string) (*wallet.Wallet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	w, ok := r.byID[id]
	if !ok {
		return nil, pkgerrors.EntityNotFoundError{EntityType: "wallet", Err: cn.ErrWalletNotFound}
	}

	out := *w
	return &out, nil
}

func (r *fakeWalletRepo) FindByHandle(ctx context.Context, handle string) (*wallet.Wallet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, w := range r.byID {
		if w.Handle != nil && *w.Handle == handle {
			out := *w
			return &out, nil
		}
	}

	return nil, nil
}

func (r *fakeWalletRepo) Update(ctx context.Context, w *wallet.Wallet) (*wallet.Wallet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cp := *w
	r.byID[cp.ID] = &cp

	out := cp
	return &out, nil
}

func (r *fakeWalletRepo) UpdateStatus(ctx context.Context, id string, status wallet.Status) (*wallet.Wallet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	w, ok := r.byID[id]
	if !ok {
		return nil, pkgerrors.EntityNotFoundError{EntityType: "wallet", Err: cn.ErrWalletNotFound}
	}

	w.Status = status
	out := *w

	return &out, nil
}

func (r *fakeWalletRepo) FindOrCreateSystemWallet(ctx context.Context, currency string) (*wallet.Wallet, error) {
	return nil, fmt.Errorf("not used by query package tests")
}

type fakeLedgerAccountRepo struct {
	mu       sync.Mutex
	counter  int
	accounts map[string]*ledgeraccount.LedgerAccount
	byWallet map[string][2]*ledgeraccount.LedgerAccount
	balances map[string]money.Amount
}

func newFakeLedgerAccountRepo() *fakeLedgerAccountRepo {
	return &fakeLedgerAccountRepo{
		accounts: map[string]*ledgeraccount.LedgerAccount{},
		byWallet: map[string][2]*ledgeraccount.LedgerAccount{},
		balances: map[string]money.Amount{},
	}
}

func (r *fakeLedgerAccountRepo) EnsureForWallet(ctx context.Context, walletID, currency string) (*ledgeraccount.LedgerAccount, *ledgeraccount.LedgerAccount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if pair, ok := r.byWallet[walletID]; ok {
		return pair[0], pair[1], nil
	}

	avail := &ledgeraccount.LedgerAccount{ID: nextID(&r.counter, "acct"), WalletID: walletID, Kind: ledgeraccount.KindAvailable, Currency: currency}
	held := &ledgeraccount.LedgerAccount{ID: nextID(&r.counter, "acct"), WalletID: walletID, Kind: ledgeraccount.KindHeld, Currency: currency}

	r.accounts[avail.ID] = avail
	r.accounts[held.ID] = held
	r.byWallet[walletID] = [2]*ledgeraccount.LedgerAccount{avail, held}
	r.balances[avail.ID] = money.Zero
	r.balances[held.ID] = money.Zero

	return avail, held, nil
}

func (r *fakeLedgerAccountRepo) FindByWalletAndKind(ctx context.Context, walletID string, kind ledgeraccount.Kind) (*ledgeraccount.LedgerAccount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	pair, ok := r.byWallet[walletID]
	if !ok {
		return nil, fmt.Errorf("no accounts for wallet %s", walletID)
	}

	if kind == ledgeraccount.KindAvailable {
		return pair[0], nil
	}

	return pair[1], nil
}

func (r *fakeLedgerAccountRepo) Find(ctx context.Context, id string) (*ledgeraccount.LedgerAccount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.accounts[id]
	if !ok {
		return nil, pkgerrors.EntityNotFoundError{EntityType: "ledger_account", Err: cn.ErrEntityNotFound}
	}

	out := *a
	return &out, nil
}

func (r *fakeLedgerAccountRepo) LockAndBalance(ctx context.Context, accountIDs []string) (map[string]money.Amount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	sorted := append([]string(nil), accountIDs...)
	sort.Strings(sorted)

	out := map[string]money.Amount{}
	for _, id := range sorted {
		out[id] = r.balances[id]
	}

	return out, nil
}

func (r *fakeLedgerAccountRepo) credit(accountID string, amt money.Amount) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.balances[accountID] = r.balances[accountID].Add(amt)
}

func (r *fakeLedgerAccountRepo) debit(accountID string, amt money.Amount) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.balances[accountID] = r.balances[accountID].Sub(amt)
}

type fakeJournalRepo struct {
	mu      sync.Mutex
	counter int
	entries []*journal.Entry
	ledger  *fakeLedgerAccountRepo
}

func newFakeJournalRepo(ledger *fakeLedgerAccountRepo) *fakeJournalRepo {
	return &fakeJournalRepo{ledger: ledger}
}

func (r *fakeJournalRepo) Post(ctx context.Context, entry *journal.Entry) (*journal.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cp := *entry
	cp.ID = nextID(&r.counter, "ent")
	cp.CreatedAt = time.Now()
	r.entries = append(r.entries, &cp)

	for _, l := range cp.Lines {
		switch l.Direction {
		case journal.DirectionDebit:
			r.ledger.debit(l.LedgerAccountID, l.Amount)
		case journal.DirectionCredit:
			r.ledger.credit(l.LedgerAccountID, l.Amount)
		}
	}

	out := cp
	return &out, nil
}

func (r *fakeJournalRepo) FindByIdempotencyKey(ctx context.Context, idempotencyKey, createdByAPIKey string) (*journal.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, e := range r.entries {
		if e.IdempotencyKey == idempotencyKey && e.CreatedByAPIKey == createdByAPIKey {
			out := *e
			return &out, nil
		}
	}

	return nil, nil
}

func (r *fakeJournalRepo) Find(ctx context.Context, id string) (*journal.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, e := range r.entries {
		if e.ID == id {
			out := *e
			return &out, nil
		}
	}

	return nil, fmt.Errorf("entry not found: %s", id)
}

func (r *fakeJournalRepo) ListForAccounts(ctx context.Context, accountIDs []string, filter journal.ListFilter) ([]*journal.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	touches := func(e *journal.Entry) bool {
		for _, l := range e.Lines {
			for _, id := range accountIDs {
				if l.LedgerAccountID == id {
					return true
				}
			}
		}
		return false
	}

	var matched []*journal.Entry
	for _, e := range r.entries {
		if !touches(e) {
			continue
		}
		if filter.Type != nil && e.Type != *filter.Type {
			continue
		}
		if filter.Status != nil && e.Status != *filter.Status {
			continue
		}
		if filter.FromDate != nil && e.CreatedAt.Before(*filter.FromDate) {
			continue
		}
		if filter.ToDate != nil && e.CreatedAt.After(*filter.ToDate) {
			continue
		}
		matched = append(matched, e)
	}

	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID > matched[j].ID
	})

	if filter.BeforeEntry != nil {
		var after []*journal.Entry

		for _, e := range matched {
			strictlyOlder := e.CreatedAt.Before(filter.BeforeEntry.CreatedAt) ||
				(e.CreatedAt.Equal(filter.BeforeEntry.CreatedAt) && e.ID < filter.BeforeEntry.EntryID)
			if strictlyOlder {
				after = append(after, e)
			}
		}

		matched = after
	}

	if filter.Limit > 0 && len(matched) > filter.Limit {
		matched = matched[:filter.Limit]
	}

	out := make([]*journal.Entry, len(matched))
	for i, e := range matched {
		cp := *e
		out[i] = &cp
	}

	return out, nil
}

func (r *fakeJournalRepo) SumDebitsSince(ctx context.Context, accountID string, since time.Time) (money.Amount, error) {
	return money.Zero, nil
}

type fakeExternalIdentityRepo struct {
	mu      sync.Mutex
	counter int
	byKey   map[string]*externalidentity.ExternalIdentity
}

func newFakeExternalIdentityRepo() *fakeExternalIdentityRepo {
	return &fakeExternalIdentityRepo{byKey: map[string]*externalidentity.ExternalIdentity{}}
}

func (r *fakeExternalIdentityRepo) Create(ctx context.Context, e *externalidentity.ExternalIdentity) (*externalidentity.ExternalIdentity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cp := *e
	cp.ID = nextID(&r.counter, "extid")
	r.byKey[cp.Provider+"|"+cp.ExternalUserID] = &cp

	out := cp
	return &out, nil
}

func (r *fakeExternalIdentityRepo) Find(ctx context.Context, provider, externalUserID string) (*externalidentity.ExternalIdentity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.byKey[provider+"|"+externalUserID]
	if !ok {
		return nil, nil
	}

	out := *e
	return &out, nil
}

type testFixture struct {
	uc       *UseCase
	wallets  *fakeWalletRepo
	ledger   *fakeLedgerAccountRepo
	journal  *fakeJournalRepo
	identity *fakeExternalIdentityRepo
}

func newTestFixture() *testFixture {
	wallets := newFakeWalletRepo()
	ledger := newFakeLedgerAccountRepo()
	journalRepo := newFakeJournalRepo(ledger)
	identity := newFakeExternalIdentityRepo()

	uc := &UseCase{
		WalletRepo:           wallets,
		LedgerAccountRepo:    ledger,
		JournalRepo:          journalRepo,
		ExternalIdentityRepo: identity,
	}

	return &testFixture{uc: uc, wallets: wallets, ledger: ledger, journal: journalRepo, identity: identity}
}

func (f *testFixture) createWallet(ctx context.Context, currency string, handle *string) *wallet.Wallet {
	w, _ := f.wallets.Create(ctx, &wallet.Wallet{Type: wallet.TypeCustomer, Status: wallet.StatusActive, Currency: currency, Handle: handle})
	_, _, _ = f.ledger.EnsureForWallet(ctx, w.ID, currency)

	return w
}

func (f *testFixture) post(ctx context.Context, entryType journal.EntryType, idempotencyKey, createdBy string, lines []journal.Line) *journal.Entry {
	e, err := journal.NewEntry(entryType, idempotencyKey, createdBy, nil, nil, lines)
	if err != nil {
		panic(err)
	}

	posted, err := f.journal.Post(ctx, e)
	if err != nil {
		panic(err)
	}

	return posted
}

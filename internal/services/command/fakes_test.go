package command

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/agentledger/ledger/internal/domain/apikey"
	"github.com/agentledger/ledger/internal/domain/capture"
	"github.com/agentledger/ledger/internal/domain/hold"
	"github.com/agentledger/ledger/internal/domain/journal"
	"github.com/agentledger/ledger/internal/domain/ledgeraccount"
	"github.com/agentledger/ledger/internal/domain/paymentintent"
	"github.com/agentledger/ledger/internal/domain/recipient"
	"github.com/agentledger/ledger/internal/domain/refund"
	"github.com/agentledger/ledger/internal/domain/wallet"
	cn "github.com/agentledger/ledger/pkg/constant"
	"github.com/agentledger/ledger/pkg/money"
	"github.com/agentledger/ledger/pkg/pkgerrors"
)

// fakeTxRunner runs fn directly: the fakes below have no isolation to
// simulate, only the call sequencing under test.
type fakeTxRunner struct{}

func (fakeTxRunner) Run(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func nextID(counter *int, prefix string) string {
	*counter++
	return fmt.Sprintf("%s-%d", prefix, *counter)
}

type fakeWalletRepo struct {
	mu          sync.Mutex
	counter     int
	byID        map[string]*wallet.Wallet
	systemByCur map[string]*wallet.Wallet
}

func newFakeWalletRepo() *fakeWalletRepo {
	return &fakeWalletRepo{byID: map[string]*wallet.Wallet{}, systemByCur: map[string]*wallet.Wallet{}}
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
		return nil, fmt.Errorf("wallet not found: %s", id)
	}

	w.Status = status
	out := *w

	return &out, nil
}

func (r *fakeWalletRepo) FindOrCreateSystemWallet(ctx context.Context, currency string) (*wallet.Wallet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if w, ok := r.systemByCur[currency]; ok {
		out := *w
		return &out, nil
	}

	cp := wallet.Wallet{
		ID:       nextID(&r.counter, "sys"),
		Type:     wallet.TypeSystem,
		Status:   wallet.StatusActive,
		Currency: currency,
	}
	r.byID[cp.ID] = &cp
	r.systemByCur[currency] = &cp

	out := cp
	return &out, nil
}

type fakeLedgerAccountRepo struct {
	mu       sync.Mutex
	counter  int
	accounts map[string]*ledgeraccount.LedgerAccount
	byWallet map[string][2]*ledgeraccount.LedgerAccount // [available, held]
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

// applyLines is called by fakeJournalRepo.Post to keep balances consistent.
func (r *fakeLedgerAccountRepo) applyLines(lines []journal.Line) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, l := range lines {
		bal := r.balances[l.LedgerAccountID]

		switch l.Direction {
		case journal.DirectionDebit:
			bal = bal.Sub(l.Amount)
		case journal.DirectionCredit:
			bal = bal.Add(l.Amount)
		}

		r.balances[l.LedgerAccountID] = bal
	}
}

type fakeJournalRepo struct {
	mu      sync.Mutex
	counter int
	entries map[string]*journal.Entry
	ledger  *fakeLedgerAccountRepo
}

func newFakeJournalRepo(ledger *fakeLedgerAccountRepo) *fakeJournalRepo {
	return &fakeJournalRepo{entries: map[string]*journal.Entry{}, ledger: ledger}
}

func (r *fakeJournalRepo) Post(ctx context.Context, entry *journal.Entry) (*journal.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cp := *entry
	cp.ID = nextID(&r.counter, "entry")
	cp.CreatedAt = time.Now()
	r.entries[cp.ID] = &cp

	r.ledger.applyLines(cp.Lines)

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

	e, ok := r.entries[id]
	if !ok {
		return nil, fmt.Errorf("entry not found: %s", id)
	}

	out := *e
	return &out, nil
}

func (r *fakeJournalRepo) ListForAccounts(ctx context.Context, accountIDs []string, filter journal.ListFilter) ([]*journal.Entry, error) {
	return nil, nil
}

func (r *fakeJournalRepo) SumDebitsSince(ctx context.Context, accountID string, since time.Time) (money.Amount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	sum := money.Zero

	for _, e := range r.entries {
		if e.CreatedAt.Before(since) {
			continue
		}

		for _, l := range e.Lines {
			if l.LedgerAccountID == accountID && l.Direction == journal.DirectionDebit {
				sum = sum.Add(l.Amount)
			}
		}
	}

	return sum, nil
}

type fakeHoldRepo struct {
	mu      sync.Mutex
	counter int
	holds   map[string]*hold.Hold
}

func newFakeHoldRepo() *fakeHoldRepo { return &fakeHoldRepo{holds: map[string]*hold.Hold{}} }

func (r *fakeHoldRepo) Create(ctx context.Context, h *hold.Hold) (*hold.Hold, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cp := *h
	cp.ID = nextID(&r.counter, "hold")
	cp.CreatedAt, cp.UpdatedAt = time.Now(), time.Now()
	r.holds[cp.ID] = &cp

	out := cp
	return &out, nil
}

func (r *fakeHoldRepo) Find(ctx context.Context, id string) (*hold.Hold, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	h, ok := r.holds[id]
	if !ok {
		return nil, fmt.Errorf("hold not found: %s", id)
	}

	out := *h
	return &out, nil
}

func (r *fakeHoldRepo) FindByIdempotencyKey(ctx context.Context, idempotencyKey, createdByAPIKey string) (*hold.Hold, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, h := range r.holds {
		if h.IdempotencyKey == idempotencyKey && h.CreatedByAPIKey == createdByAPIKey {
			out := *h
			return &out, nil
		}
	}

	return nil, nil
}

func (r *fakeHoldRepo) Lock(ctx context.Context, id string) (*hold.Hold, error) {
	return r.Find(ctx, id)
}

func (r *fakeHoldRepo) ApplyDebit(ctx context.Context, id string, amt money.Amount, newStatusIfDrained hold.Status) (*hold.Hold, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	h, ok := r.holds[id]
	if !ok {
		return nil, fmt.Errorf("hold not found: %s", id)
	}

	h.RemainingAmount = h.RemainingAmount.Sub(amt)
	h.UpdatedAt = time.Now()

	if h.RemainingAmount.IsZero() {
		h.Status = newStatusIfDrained
	}

	out := *h
	return &out, nil
}

func (r *fakeHoldRepo) ListExpiredActive(ctx context.Context, asOf time.Time, limit int) ([]*hold.Hold, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*hold.Hold

	for _, h := range r.holds {
		if h.Status == hold.StatusActive && h.ExpiresAt.Before(asOf) {
			cp := *h
			out = append(out, &cp)
		}

		if len(out) >= limit && limit > 0 {
			break
		}
	}

	return out, nil
}

type fakeCaptureRepo struct {
	mu       sync.Mutex
	counter  int
	captures map[string]*capture.Capture
}

func newFakeCaptureRepo() *fakeCaptureRepo {
	return &fakeCaptureRepo{captures: map[string]*capture.Capture{}}
}

func (r *fakeCaptureRepo) Create(ctx context.Context, c *capture.Capture) (*capture.Capture, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cp := *c
	cp.ID = nextID(&r.counter, "cap")
	r.captures[cp.ID] = &cp

	out := cp
	return &out, nil
}

func (r *fakeCaptureRepo) Find(ctx context.Context, id string) (*capture.Capture, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.captures[id]
	if !ok {
		return nil, fmt.Errorf("capture not found: %s", id)
	}

	out := *c
	return &out, nil
}

func (r *fakeCaptureRepo) FindByIdempotencyKey(ctx context.Context, idempotencyKey, createdByAPIKey string) (*capture.Capture, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, c := range r.captures {
		if c.IdempotencyKey == idempotencyKey && c.CreatedByAPIKey == createdByAPIKey {
			out := *c
			return &out, nil
		}
	}

	return nil, nil
}

func (r *fakeCaptureRepo) Lock(ctx context.Context, id string) (*capture.Capture, error) {
	return r.Find(ctx, id)
}

func (r *fakeCaptureRepo) ApplyRefund(ctx context.Context, id string, amt money.Amount) (*capture.Capture, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.captures[id]
	if !ok {
		return nil, fmt.Errorf("capture not found: %s", id)
	}

	c.RefundedAmount = c.RefundedAmount.Add(amt)

	out := *c
	return &out, nil
}

type fakeRefundRepo struct {
	mu      sync.Mutex
	counter int
	refunds map[string]*refund.Refund
}

func newFakeRefundRepo() *fakeRefundRepo { return &fakeRefundRepo{refunds: map[string]*refund.Refund{}} }

func (r *fakeRefundRepo) Create(ctx context.Context, rf *refund.Refund) (*refund.Refund, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cp := *rf
	cp.ID = nextID(&r.counter, "rfd")
	r.refunds[cp.ID] = &cp

	out := cp
	return &out, nil
}

func (r *fakeRefundRepo) FindByIdempotencyKey(ctx context.Context, idempotencyKey, createdByAPIKey string) (*refund.Refund, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, rf := range r.refunds {
		if rf.IdempotencyKey == idempotencyKey && rf.CreatedByAPIKey == createdByAPIKey {
			out := *rf
			return &out, nil
		}
	}

	return nil, nil
}

type fakePaymentIntentRepo struct {
	mu      sync.Mutex
	counter int
	intents map[string]*paymentintent.PaymentIntent
}

func newFakePaymentIntentRepo() *fakePaymentIntentRepo {
	return &fakePaymentIntentRepo{intents: map[string]*paymentintent.PaymentIntent{}}
}

func (r *fakePaymentIntentRepo) Create(ctx context.Context, p *paymentintent.PaymentIntent) (*paymentintent.PaymentIntent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cp := *p
	cp.ID = nextID(&r.counter, "pi")
	cp.CreatedAt, cp.UpdatedAt = time.Now(), time.Now()
	r.intents[cp.ID] = &cp

	out := cp
	return &out, nil
}

func (r *fakePaymentIntentRepo) Find(ctx context.Context, id string) (*paymentintent.PaymentIntent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.intents[id]
	if !ok {
		return nil, fmt.Errorf("payment intent not found: %s", id)
	}

	out := *p
	return &out, nil
}

func (r *fakePaymentIntentRepo) FindByIdempotencyKey(ctx context.Context, idempotencyKey, createdByAPIKey string) (*paymentintent.PaymentIntent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, p := range r.intents {
		if p.IdempotencyKey == idempotencyKey && p.CreatedByAPIKey == createdByAPIKey {
			out := *p
			return &out, nil
		}
	}

	return nil, nil
}

func (r *fakePaymentIntentRepo) Lock(ctx context.Context, id string) (*paymentintent.PaymentIntent, error) {
	return r.Find(ctx, id)
}

func (r *fakePaymentIntentRepo) MarkPaid(ctx context.Context, id, payerWalletID, journalEntryID string) (*paymentintent.PaymentIntent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.intents[id]
	if !ok {
		return nil, fmt.Errorf("payment intent not found: %s", id)
	}

	p.Status = paymentintent.StatusPaid
	p.PayerWalletID = &payerWalletID
	p.JournalEntryID = &journalEntryID
	p.UpdatedAt = time.Now()

	out := *p
	return &out, nil
}

type fakeAPIKeyRepo struct {
	mu      sync.Mutex
	counter int
	keys    map[string]*apikey.APIKey
}

func newFakeAPIKeyRepo() *fakeAPIKeyRepo { return &fakeAPIKeyRepo{keys: map[string]*apikey.APIKey{}} }

func (r *fakeAPIKeyRepo) Create(ctx context.Context, k *apikey.APIKey) (*apikey.APIKey, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cp := *k
	cp.ID = nextID(&r.counter, "key")
	cp.CreatedAt = time.Now()
	r.keys[cp.ID] = &cp

	out := cp
	return &out, nil
}

func (r *fakeAPIKeyRepo) Find(ctx context.Context, id string) (*apikey.APIKey, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	k, ok := r.keys[id]
	if !ok {
		return nil, fmt.Errorf("api key not found: %s", id)
	}

	out := *k
	return &out, nil
}

func (r *fakeAPIKeyRepo) FindActiveByHash(ctx context.Context, keyHash string) (*apikey.APIKey, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, k := range r.keys {
		if k.KeyHash == keyHash {
			out := *k
			return &out, nil
		}
	}

	return nil, nil
}

func (r *fakeAPIKeyRepo) Revoke(ctx context.Context, id string) (*apikey.APIKey, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	k, ok := r.keys[id]
	if !ok {
		return nil, fmt.Errorf("api key not found: %s", id)
	}

	k.Status = apikey.StatusRevoked

	out := *k
	return &out, nil
}

func (r *fakeAPIKeyRepo) TouchLastUsed(ctx context.Context, id string) error {
	return nil
}

// fakeResolver resolves KindWalletID identifiers to themselves, the only
// kind exercised by the command-layer tests (query owns the real
// handle/external-id resolution logic).
type fakeResolver struct{}

func (fakeResolver) Resolve(ctx context.Context, id recipient.Identifier) (recipient.Resolved, error) {
	return recipient.Resolved{WalletID: id.Value}, nil
}

type fakeSecretHasher struct{ counter int }

func (h *fakeSecretHasher) GenerateAndHash() (string, string, error) {
	h.counter++
	plaintext := fmt.Sprintf("plaintext-%d", h.counter)
	return plaintext, "hash-" + plaintext, nil
}

type testFixture struct {
	uc       *UseCase
	wallets  *fakeWalletRepo
	ledger   *fakeLedgerAccountRepo
	journal  *fakeJournalRepo
	holds    *fakeHoldRepo
	captures *fakeCaptureRepo
	refunds  *fakeRefundRepo
	intents  *fakePaymentIntentRepo
	keys     *fakeAPIKeyRepo
}

func newFixture() *testFixture {
	wallets := newFakeWalletRepo()
	ledger := newFakeLedgerAccountRepo()
	journalRepo := newFakeJournalRepo(ledger)
	holds := newFakeHoldRepo()
	captures := newFakeCaptureRepo()
	refunds := newFakeRefundRepo()
	intents := newFakePaymentIntentRepo()
	keys := newFakeAPIKeyRepo()

	uc := &UseCase{
		WalletRepo:        wallets,
		LedgerAccountRepo: ledger,
		JournalRepo:       journalRepo,
		HoldRepo:          holds,
		CaptureRepo:       captures,
		RefundRepo:        refunds,
		PaymentIntentRepo: intents,
		APIKeyRepo:        keys,
		TxRunner:          fakeTxRunner{},
		Resolver:          fakeResolver{},
		SecretHasher:      &fakeSecretHasher{},
	}

	return &testFixture{
		uc: uc, wallets: wallets, ledger: ledger, journal: journalRepo,
		holds: holds, captures: captures, refunds: refunds, intents: intents, keys: keys,
	}
}

// seedWallet creates a wallet with an opening available balance funded via
// a deposit from the system wallet, and an API key bound to it.
func (f *testFixture) seedWallet(ctx context.Context, currency string, opening string, limits apikey.Limits) (*wallet.Wallet, *apikey.APIKey) {
	w, err := f.wallets.Create(ctx, &wallet.Wallet{Type: wallet.TypeCustomer, Status: wallet.StatusActive, Currency: currency})
	if err != nil {
		panic(err)
	}

	if _, _, err := f.ledger.EnsureForWallet(ctx, w.ID, currency); err != nil {
		panic(err)
	}

	k, err := f.keys.Create(ctx, &apikey.APIKey{WalletID: w.ID, Status: apikey.StatusActive, Limits: limits})
	if err != nil {
		panic(err)
	}

	if opening != "" {
		amt, err := money.Parse(opening)
		if err != nil {
			panic(err)
		}

		if !amt.IsZero() {
			_, err = f.uc.CreateDeposit(ctx, k, CreateDepositInput{
				To:             recipient.Identifier{Kind: recipient.KindWalletID, Value: w.ID},
				Amount:         opening,
				Currency:       currency,
				IdempotencyKey: "seed-" + w.ID,
			})
			if err != nil {
				panic(err)
			}
		}

		_ = amt
	}

	return w, k
}

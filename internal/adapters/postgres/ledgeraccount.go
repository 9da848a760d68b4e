package postgres

import (
	"context"
	"database/sql"
	"errors"
	"sort"

	"github.com/google/uuid"

	"github.com/agentledger/ledger/internal/domain/ledgeraccount"
	cn "github.com/agentledger/ledger/pkg/constant"
	"github.com/agentledger/ledger/pkg/money"
	"github.com/agentledger/ledger/pkg/pkgerrors"
)

// LedgerAccountRepository is the Postgres-backed ledgeraccount.Repository.
type LedgerAccountRepository struct {
	conn *Connection
}

// NewLedgerAccountRepository returns a ledgeraccount.Repository backed by conn.
func NewLedgerAccountRepository(conn *Connection) *LedgerAccountRepository {
	return &LedgerAccountRepository{conn: conn}
}

// EnsureForWallet creates walletID's available and held accounts on
// first use and returns both, matching spec.md §3's "every wallet owns
// exactly one available and one held ledger account for its lifetime".
func (r *LedgerAccountRepository) EnsureForWallet(ctx context.Context, walletID, currency string) (*ledgeraccount.LedgerAccount, *ledgeraccount.LedgerAccount, error) {
	db, err := r.conn.queryFrom(ctx)
	if err != nil {
		return nil, nil, err
	}

	for _, kind := range []ledgeraccount.Kind{ledgeraccount.KindAvailable, ledgeraccount.KindHeld} {
		id := "acct_" + uuid.NewString()

		if _, err := db.ExecContext(ctx,
			`INSERT INTO ledger_accounts (id, wallet_id, kind, currency) VALUES ($1, $2, $3, $4)
			 ON CONFLICT (wallet_id, kind) DO NOTHING`,
			id, walletID, kind, currency,
		); err != nil {
			return nil, nil, err
		}
	}

	avail, err := r.FindByWalletAndKind(ctx, walletID, ledgeraccount.KindAvailable)
	if err != nil {
		return nil, nil, err
	}

	held, err := r.FindByWalletAndKind(ctx, walletID, ledgeraccount.KindHeld)
	if err != nil {
		return nil, nil, err
	}

	return avail, held, nil
}

func (r *LedgerAccountRepository) FindByWalletAndKind(ctx context.Context, walletID string, kind ledgeraccount.Kind) (*ledgeraccount.LedgerAccount, error) {
	db, err := r.conn.queryFrom(ctx)
	if err != nil {
		return nil, err
	}

	row := db.QueryRowContext(ctx,
		`SELECT id, wallet_id, kind, currency FROM ledger_accounts WHERE wallet_id = $1 AND kind = $2`, walletID, kind)

	return scanLedgerAccount(row)
}

func (r *LedgerAccountRepository) Find(ctx context.Context, id string) (*ledgeraccount.LedgerAccount, error) {
	db, err := r.conn.queryFrom(ctx)
	if err != nil {
		return nil, err
	}

	row := db.QueryRowContext(ctx,
		`SELECT id, wallet_id, kind, currency FROM ledger_accounts WHERE id = $1`, id)

	return scanLedgerAccount(row)
}

func scanLedgerAccount(row *sql.Row) (*ledgeraccount.LedgerAccount, error) {
	var a ledgeraccount.LedgerAccount

	if err := row.Scan(&a.ID, &a.WalletID, &a.Kind, &a.Currency); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, pkgerrors.EntityNotFoundError{EntityType: "ledger_account", Err: cn.ErrEntityNotFound}
		}

		return nil, err
	}

	return &a, nil
}

// LockAndBalance takes SELECT ... FOR UPDATE on every account in
// accountIDs, in ascending id order (it sorts a copy of accountIDs
// itself), then derives each one's
// balance by summing its posted journal lines (spec.md §4.1, §5). It
// must run inside the transaction TxRunner.Run started.
func (r *LedgerAccountRepository) LockAndBalance(ctx context.Context, accountIDs []string) (map[string]money.Amount, error) {
	db, err := r.conn.queryFrom(ctx)
	if err != nil {
		return nil, err
	}

	sorted := append([]string(nil), accountIDs...)
	sort.Strings(sorted)

	for _, id := range sorted {
		if _, err := db.ExecContext(ctx, `SELECT id FROM ledger_accounts WHERE id = $1 FOR UPDATE`, id); err != nil {
			return nil, err
		}
	}

	balances := make(map[string]money.Amount, len(sorted))

	for _, id := range sorted {
		var debit, credit money.Amount

		row := db.QueryRowContext(ctx,
			`SELECT
				COALESCE(SUM(amount) FILTER (WHERE direction = 'debit'), 0),
				COALESCE(SUM(amount) FILTER (WHERE direction = 'credit'), 0)
			 FROM journal_lines WHERE ledger_account_id = $1`, id)

		if err := row.Scan(&debit, &credit); err != nil {
			return nil, err
		}

		balances[id] = credit.Sub(debit)
	}

	return balances, nil
}

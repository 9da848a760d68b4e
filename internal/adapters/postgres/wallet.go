package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/google/uuid"

	"github.com/agentledger/ledger/internal/domain/wallet"
	cn "github.com/agentledger/ledger/pkg/constant"
	"github.com/agentledger/ledger/pkg/pkgerrors"
)

// WalletRepository is the Postgres-backed wallet.Repository.
type WalletRepository struct {
	conn *Connection
}

// NewWalletRepository returns a wallet.Repository backed by conn.
func NewWalletRepository(conn *Connection) *WalletRepository {
	return &WalletRepository{conn: conn}
}

func (r *WalletRepository) Create(ctx context.Context, w *wallet.Wallet) (*wallet.Wallet, error) {
	db, err := r.conn.queryFrom(ctx)
	if err != nil {
		return nil, err
	}

	metadata, err := json.Marshal(w.Metadata)
	if err != nil {
		return nil, err
	}

	id := "wal_" + uuid.NewString()

	_, err = db.ExecContext(ctx,
		`INSERT INTO wallets (id, type, status, currency, handle, metadata) VALUES ($1, $2, $3, $4, $5, $6)`,
		id, w.Type, w.Status, w.Currency, w.Handle, metadata,
	)
	if err != nil {
		return nil, err
	}

	return r.Find(ctx, id)
}

func (r *WalletRepository) Find(ctx context.Context, id string) (*wallet.Wallet, error) {
	db, err := r.conn.queryFrom(ctx)
	if err != nil {
		return nil, err
	}

	row := db.QueryRowContext(ctx,
		`SELECT id, type, status, currency, handle, metadata, created_at, updated_at FROM wallets WHERE id = $1`, id)

	w, scanErr := scanWallet(row)
	if scanErr != nil {
		if errors.Is(scanErr, sql.ErrNoRows) {
			return nil, pkgerrors.EntityNotFoundError{EntityType: "wallet", Err: cn.ErrWalletNotFound}
		}

		return nil, scanErr
	}

	return w, nil
}

func (r *WalletRepository) FindByHandle(ctx context.Context, handle string) (*wallet.Wallet, error) {
	db, err := r.conn.queryFrom(ctx)
	if err != nil {
		return nil, err
	}

	row := db.QueryRowContext(ctx,
		`SELECT id, type, status, currency, handle, metadata, created_at, updated_at FROM wallets WHERE handle = $1`, handle)

	w, scanErr := scanWallet(row)
	if scanErr != nil {
		if errors.Is(scanErr, sql.ErrNoRows) {
			return nil, nil
		}

		return nil, scanErr
	}

	return w, nil
}

func (r *WalletRepository) Update(ctx context.Context, w *wallet.Wallet) (*wallet.Wallet, error) {
	db, err := r.conn.queryFrom(ctx)
	if err != nil {
		return nil, err
	}

	metadata, err := json.Marshal(w.Metadata)
	if err != nil {
		return nil, err
	}

	_, err = db.ExecContext(ctx,
		`UPDATE wallets SET handle = $1, metadata = $2, updated_at = now() WHERE id = $3`,
		w.Handle, metadata, w.ID,
	)
	if err != nil {
		return nil, err
	}

	return r.Find(ctx, w.ID)
}

func (r *WalletRepository) UpdateStatus(ctx context.Context, id string, status wallet.Status) (*wallet.Wallet, error) {
	db, err := r.conn.queryFrom(ctx)
	if err != nil {
		return nil, err
	}

	result, err := db.ExecContext(ctx, `UPDATE wallets SET status = $1, updated_at = now() WHERE id = $2`, status, id)
	if err != nil {
		return nil, err
	}

	if n, _ := result.RowsAffected(); n == 0 {
		return nil, pkgerrors.EntityNotFoundError{EntityType: "wallet", Err: cn.ErrWalletNotFound}
	}

	return r.Find(ctx, id)
}

// FindOrCreateSystemWallet returns the single system-type wallet for
// currency, creating it on first use (spec.md §4.9). The insert races
// safely under ON CONFLICT DO NOTHING plus a re-select, since the unique
// index is on handle, not currency — uniqueness here is enforced by the
// deterministic handle below.
func (r *WalletRepository) FindOrCreateSystemWallet(ctx context.Context, currency string) (*wallet.Wallet, error) {
	handle := "@system:" + currency

	if w, err := r.FindByHandle(ctx, handle); err != nil {
		return nil, err
	} else if w != nil {
		return w, nil
	}

	db, err := r.conn.queryFrom(ctx)
	if err != nil {
		return nil, err
	}

	id := "wal_" + uuid.NewString()

	_, err = db.ExecContext(ctx,
		`INSERT INTO wallets (id, type, status, currency, handle, metadata) VALUES ($1, $2, $3, $4, $5, '{}')
		 ON CONFLICT (handle) WHERE handle IS NOT NULL DO NOTHING`,
		id, wallet.TypeSystem, wallet.StatusActive, currency, handle,
	)
	if err != nil {
		return nil, err
	}

	return r.FindByHandle(ctx, handle)
}

func scanWallet(row *sql.Row) (*wallet.Wallet, error) {
	var w wallet.Wallet

	var metadata []byte

	if err := row.Scan(&w.ID, &w.Type, &w.Status, &w.Currency, &w.Handle, &metadata, &w.CreatedAt, &w.UpdatedAt); err != nil {
		return nil, err
	}

	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &w.Metadata); err != nil {
			return nil, err
		}
	}

	return &w, nil
}

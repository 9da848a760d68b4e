package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"github.com/google/uuid"

	"github.com/agentledger/ledger/internal/domain/apikey"
	cn "github.com/agentledger/ledger/pkg/constant"
	"github.com/agentledger/ledger/pkg/money"
	"github.com/agentledger/ledger/pkg/pkgerrors"
)

// nullableAmount returns a's Value to pass as a query argument, or nil if
// a is unset. money.Amount's driver.Valuer is defined on a value
// receiver, so a nil *money.Amount would panic if passed to ExecContext
// directly.
func nullableAmount(a *money.Amount) any {
	if a == nil {
		return nil
	}

	return *a
}

// APIKeyRepository is the Postgres-backed apikey.Repository.
type APIKeyRepository struct {
	conn *Connection
}

// NewAPIKeyRepository returns an apikey.Repository backed by conn.
func NewAPIKeyRepository(conn *Connection) *APIKeyRepository {
	return &APIKeyRepository{conn: conn}
}

func (r *APIKeyRepository) Create(ctx context.Context, k *apikey.APIKey) (*apikey.APIKey, error) {
	db, err := r.conn.queryFrom(ctx)
	if err != nil {
		return nil, err
	}

	id := "key_" + uuid.NewString()

	_, err = db.ExecContext(ctx,
		`INSERT INTO api_keys (id, key_hash, wallet_id, scopes, per_tx_max, daily_max, allowed_counterparties, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		id, k.KeyHash, k.WalletID, pq.Array(k.Scopes), nullableAmount(k.Limits.PerTxMax), nullableAmount(k.Limits.DailyMax),
		pq.Array(k.Limits.AllowedCounterparties), k.Status,
	)
	if err != nil {
		return nil, err
	}

	return r.Find(ctx, id)
}

func (r *APIKeyRepository) Find(ctx context.Context, id string) (*apikey.APIKey, error) {
	db, err := r.conn.queryFrom(ctx)
	if err != nil {
		return nil, err
	}

	row := db.QueryRowContext(ctx,
		`SELECT id, key_hash, wallet_id, scopes, per_tx_max, daily_max, allowed_counterparties, status, last_used_at, created_at
		 FROM api_keys WHERE id = $1`, id)

	k, err := scanAPIKey(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, pkgerrors.EntityNotFoundError{EntityType: "api_key", Err: cn.ErrAPIKeyInvalid}
		}

		return nil, err
	}

	return k, nil
}

// FindActiveByHash looks up a key by its hashed credential regardless of
// status, letting the auth middleware distinguish an unknown key from a
// revoked one (apikey.Repository's doc comment).
func (r *APIKeyRepository) FindActiveByHash(ctx context.Context, keyHash string) (*apikey.APIKey, error) {
	db, err := r.conn.queryFrom(ctx)
	if err != nil {
		return nil, err
	}

	row := db.QueryRowContext(ctx,
		`SELECT id, key_hash, wallet_id, scopes, per_tx_max, daily_max, allowed_counterparties, status, last_used_at, created_at
		 FROM api_keys WHERE key_hash = $1`, keyHash)

	k, err := scanAPIKey(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		return nil, err
	}

	return k, nil
}

func (r *APIKeyRepository) Revoke(ctx context.Context, id string) (*apikey.APIKey, error) {
	db, err := r.conn.queryFrom(ctx)
	if err != nil {
		return nil, err
	}

	_, err = db.ExecContext(ctx, `UPDATE api_keys SET status = $1 WHERE id = $2`, apikey.StatusRevoked, id)
	if err != nil {
		return nil, err
	}

	return r.Find(ctx, id)
}

func (r *APIKeyRepository) TouchLastUsed(ctx context.Context, id string) error {
	db, err := r.conn.queryFrom(ctx)
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `UPDATE api_keys SET last_used_at = now() WHERE id = $1`, id)

	return err
}

func scanAPIKey(row *sql.Row) (*apikey.APIKey, error) {
	var k apikey.APIKey

	var scopes, allowed []string

	var perTxMax, dailyMax sql.NullString

	if err := row.Scan(&k.ID, &k.KeyHash, &k.WalletID, pq.Array(&scopes), &perTxMax, &dailyMax,
		pq.Array(&allowed), &k.Status, &k.LastUsedAt, &k.CreatedAt); err != nil {
		return nil, err
	}

	k.Scopes = scopes
	k.Limits.AllowedCounterparties = allowed

	if perTxMax.Valid {
		amt, err := money.Parse(perTxMax.String)
		if err != nil {
			return nil, err
		}

		k.Limits.PerTxMax = &amt
	}

	if dailyMax.Valid {
		amt, err := money.Parse(dailyMax.String)
		if err != nil {
			return nil, err
		}

		k.Limits.DailyMax = &amt
	}

	return &k, nil
}

package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/agentledger/ledger/internal/domain/hold"
	cn "github.com/agentledger/ledger/pkg/constant"
	"github.com/agentledger/ledger/pkg/money"
	"github.com/agentledger/ledger/pkg/pkgerrors"
)

// HoldRepository is the Postgres-backed hold.Repository.
type HoldRepository struct {
	conn *Connection
}

// NewHoldRepository returns a hold.Repository backed by conn.
func NewHoldRepository(conn *Connection) *HoldRepository {
	return &HoldRepository{conn: conn}
}

func (r *HoldRepository) Create(ctx context.Context, h *hold.Hold) (*hold.Hold, error) {
	db, err := r.conn.queryFrom(ctx)
	if err != nil {
		return nil, err
	}

	id := "hold_" + uuid.NewString()

	_, err = db.ExecContext(ctx,
		`INSERT INTO holds (id, wallet_id, amount, remaining_amount, currency, status, expires_at,
			created_by_api_key, idempotency_key, journal_entry_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		id, h.WalletID, h.Amount, h.RemainingAmount, h.Currency, h.Status, h.ExpiresAt,
		h.CreatedByAPIKey, h.IdempotencyKey, h.JournalEntryID,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return r.FindByIdempotencyKey(ctx, h.IdempotencyKey, h.CreatedByAPIKey)
		}

		return nil, err
	}

	return r.Find(ctx, id)
}

func (r *HoldRepository) Find(ctx context.Context, id string) (*hold.Hold, error) {
	db, err := r.conn.queryFrom(ctx)
	if err != nil {
		return nil, err
	}

	row := db.QueryRowContext(ctx,
		`SELECT id, wallet_id, amount, remaining_amount, currency, status, expires_at,
			created_by_api_key, idempotency_key, journal_entry_id, created_at, updated_at
		 FROM holds WHERE id = $1`, id)

	h, err := scanHold(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, pkgerrors.EntityNotFoundError{EntityType: "hold", Err: cn.ErrHoldNotFound}
		}

		return nil, err
	}

	return h, nil
}

func (r *HoldRepository) FindByIdempotencyKey(ctx context.Context, idempotencyKey, createdByAPIKey string) (*hold.Hold, error) {
	db, err := r.conn.queryFrom(ctx)
	if err != nil {
		return nil, err
	}

	row := db.QueryRowContext(ctx,
		`SELECT id, wallet_id, amount, remaining_amount, currency, status, expires_at,
			created_by_api_key, idempotency_key, journal_entry_id, created_at, updated_at
		 FROM holds WHERE idempotency_key = $1 AND created_by_api_key = $2`, idempotencyKey, createdByAPIKey)

	h, err := scanHold(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		return nil, err
	}

	return h, nil
}

// Lock takes SELECT ... FOR UPDATE on the hold row before the caller
// mutates it, per spec.md §5's lock discipline.
func (r *HoldRepository) Lock(ctx context.Context, id string) (*hold.Hold, error) {
	db, err := r.conn.queryFrom(ctx)
	if err != nil {
		return nil, err
	}

	row := db.QueryRowContext(ctx,
		`SELECT id, wallet_id, amount, remaining_amount, currency, status, expires_at,
			created_by_api_key, idempotency_key, journal_entry_id, created_at, updated_at
		 FROM holds WHERE id = $1 FOR UPDATE`, id)

	h, err := scanHold(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, pkgerrors.EntityNotFoundError{EntityType: "hold", Err: cn.ErrHoldNotFound}
		}

		return nil, err
	}

	return h, nil
}

func (r *HoldRepository) ApplyDebit(ctx context.Context, id string, amt money.Amount, newStatusIfDrained hold.Status) (*hold.Hold, error) {
	db, err := r.conn.queryFrom(ctx)
	if err != nil {
		return nil, err
	}

	_, err = db.ExecContext(ctx,
		`UPDATE holds SET
			remaining_amount = remaining_amount - $1,
			status = CASE WHEN remaining_amount - $1 <= 0 THEN $2 ELSE status END,
			updated_at = now()
		 WHERE id = $3`,
		amt, newStatusIfDrained, id,
	)
	if err != nil {
		return nil, err
	}

	return r.Find(ctx, id)
}

func (r *HoldRepository) ListExpiredActive(ctx context.Context, asOf time.Time, limit int) ([]*hold.Hold, error) {
	db, err := r.conn.queryFrom(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx,
		`SELECT id, wallet_id, amount, remaining_amount, currency, status, expires_at,
			created_by_api_key, idempotency_key, journal_entry_id, created_at, updated_at
		 FROM holds WHERE status = $1 AND expires_at < $2 ORDER BY expires_at ASC LIMIT $3`,
		hold.StatusActive, asOf, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var holds []*hold.Hold

	for rows.Next() {
		var h hold.Hold
		if err := rows.Scan(&h.ID, &h.WalletID, &h.Amount, &h.RemainingAmount, &h.Currency, &h.Status, &h.ExpiresAt,
			&h.CreatedByAPIKey, &h.IdempotencyKey, &h.JournalEntryID, &h.CreatedAt, &h.UpdatedAt); err != nil {
			return nil, err
		}

		holds = append(holds, &h)
	}

	return holds, rows.Err()
}

func scanHold(row *sql.Row) (*hold.Hold, error) {
	var h hold.Hold

	if err := row.Scan(&h.ID, &h.WalletID, &h.Amount, &h.RemainingAmount, &h.Currency, &h.Status, &h.ExpiresAt,
		&h.CreatedByAPIKey, &h.IdempotencyKey, &h.JournalEntryID, &h.CreatedAt, &h.UpdatedAt); err != nil {
		return nil, err
	}

	return &h, nil
}

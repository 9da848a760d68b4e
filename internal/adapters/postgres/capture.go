package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/agentledger/ledger/internal/domain/capture"
	cn "github.com/agentledger/ledger/pkg/constant"
	"github.com/agentledger/ledger/pkg/money"
	"github.com/agentledger/ledger/pkg/pkgerrors"
)

// CaptureRepository is the Postgres-backed capture.Repository.
type CaptureRepository struct {
	conn *Connection
}

// NewCaptureRepository returns a capture.Repository backed by conn.
func NewCaptureRepository(conn *Connection) *CaptureRepository {
	return &CaptureRepository{conn: conn}
}

func (r *CaptureRepository) Create(ctx context.Context, c *capture.Capture) (*capture.Capture, error) {
	db, err := r.conn.queryFrom(ctx)
	if err != nil {
		return nil, err
	}

	id := "cap_" + uuid.NewString()

	_, err = db.ExecContext(ctx,
		`INSERT INTO captures (id, hold_id, to_wallet_id, amount, currency, journal_entry_id, idempotency_key, created_by_api_key, refunded_amount)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 0)`,
		id, c.HoldID, c.ToWalletID, c.Amount, c.Currency, c.JournalEntryID, c.IdempotencyKey, c.CreatedByAPIKey,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return r.FindByIdempotencyKey(ctx, c.IdempotencyKey, c.CreatedByAPIKey)
		}

		return nil, err
	}

	return r.Find(ctx, id)
}

func (r *CaptureRepository) Find(ctx context.Context, id string) (*capture.Capture, error) {
	db, err := r.conn.queryFrom(ctx)
	if err != nil {
		return nil, err
	}

	row := db.QueryRowContext(ctx,
		`SELECT id, hold_id, to_wallet_id, amount, currency, journal_entry_id, idempotency_key, created_by_api_key, refunded_amount
		 FROM captures WHERE id = $1`, id)

	c, err := scanCapture(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, pkgerrors.EntityNotFoundError{EntityType: "capture", Err: cn.ErrCaptureNotFound}
		}

		return nil, err
	}

	return c, nil
}

func (r *CaptureRepository) FindByIdempotencyKey(ctx context.Context, idempotencyKey, createdByAPIKey string) (*capture.Capture, error) {
	db, err := r.conn.queryFrom(ctx)
	if err != nil {
		return nil, err
	}

	row := db.QueryRowContext(ctx,
		`SELECT id, hold_id, to_wallet_id, amount, currency, journal_entry_id, idempotency_key, created_by_api_key, refunded_amount
		 FROM captures WHERE idempotency_key = $1 AND created_by_api_key = $2`, idempotencyKey, createdByAPIKey)

	c, err := scanCapture(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		return nil, err
	}

	return c, nil
}

// Lock takes SELECT ... FOR UPDATE on the capture row before a refund
// mutates it, per spec.md §5's lock discipline.
func (r *CaptureRepository) Lock(ctx context.Context, id string) (*capture.Capture, error) {
	db, err := r.conn.queryFrom(ctx)
	if err != nil {
		return nil, err
	}

	row := db.QueryRowContext(ctx,
		`SELECT id, hold_id, to_wallet_id, amount, currency, journal_entry_id, idempotency_key, created_by_api_key, refunded_amount
		 FROM captures WHERE id = $1 FOR UPDATE`, id)

	c, err := scanCapture(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, pkgerrors.EntityNotFoundError{EntityType: "capture", Err: cn.ErrCaptureNotFound}
		}

		return nil, err
	}

	return c, nil
}

func (r *CaptureRepository) ApplyRefund(ctx context.Context, id string, amt money.Amount) (*capture.Capture, error) {
	db, err := r.conn.queryFrom(ctx)
	if err != nil {
		return nil, err
	}

	_, err = db.ExecContext(ctx, `UPDATE captures SET refunded_amount = refunded_amount + $1 WHERE id = $2`, amt, id)
	if err != nil {
		return nil, err
	}

	return r.Find(ctx, id)
}

func scanCapture(row *sql.Row) (*capture.Capture, error) {
	var c capture.Capture

	if err := row.Scan(&c.ID, &c.HoldID, &c.ToWalletID, &c.Amount, &c.Currency, &c.JournalEntryID,
		&c.IdempotencyKey, &c.CreatedByAPIKey, &c.RefundedAmount); err != nil {
		return nil, err
	}

	return &c, nil
}

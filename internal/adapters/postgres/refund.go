package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/agentledger/ledger/internal/domain/refund"
)

// RefundRepository is the Postgres-backed refund.Repository.
type RefundRepository struct {
	conn *Connection
}

// NewRefundRepository returns a refund.Repository backed by conn.
func NewRefundRepository(conn *Connection) *RefundRepository {
	return &RefundRepository{conn: conn}
}

func (r *RefundRepository) Create(ctx context.Context, rf *refund.Refund) (*refund.Refund, error) {
	db, err := r.conn.queryFrom(ctx)
	if err != nil {
		return nil, err
	}

	id := "rfnd_" + uuid.NewString()

	_, err = db.ExecContext(ctx,
		`INSERT INTO refunds (id, capture_id, amount, currency, journal_entry_id, idempotency_key, created_by_api_key)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		id, rf.CaptureID, rf.Amount, rf.Currency, rf.JournalEntryID, rf.IdempotencyKey, rf.CreatedByAPIKey,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return r.FindByIdempotencyKey(ctx, rf.IdempotencyKey, rf.CreatedByAPIKey)
		}

		return nil, err
	}

	return r.findByID(ctx, id)
}

func (r *RefundRepository) FindByIdempotencyKey(ctx context.Context, idempotencyKey, createdByAPIKey string) (*refund.Refund, error) {
	db, err := r.conn.queryFrom(ctx)
	if err != nil {
		return nil, err
	}

	row := db.QueryRowContext(ctx,
		`SELECT id, capture_id, amount, currency, journal_entry_id, idempotency_key, created_by_api_key
		 FROM refunds WHERE idempotency_key = $1 AND created_by_api_key = $2`, idempotencyKey, createdByAPIKey)

	rf, err := scanRefund(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		return nil, err
	}

	return rf, nil
}

func (r *RefundRepository) findByID(ctx context.Context, id string) (*refund.Refund, error) {
	db, err := r.conn.queryFrom(ctx)
	if err != nil {
		return nil, err
	}

	row := db.QueryRowContext(ctx,
		`SELECT id, capture_id, amount, currency, journal_entry_id, idempotency_key, created_by_api_key
		 FROM refunds WHERE id = $1`, id)

	return scanRefund(row)
}

func scanRefund(row *sql.Row) (*refund.Refund, error) {
	var rf refund.Refund

	if err := row.Scan(&rf.ID, &rf.CaptureID, &rf.Amount, &rf.Currency, &rf.JournalEntryID, &rf.IdempotencyKey, &rf.CreatedByAPIKey); err != nil {
		return nil, err
	}

	return &rf, nil
}

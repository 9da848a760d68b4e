package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/google/uuid"

	"github.com/agentledger/ledger/internal/domain/paymentintent"
	cn "github.com/agentledger/ledger/pkg/constant"
	"github.com/agentledger/ledger/pkg/pkgerrors"
)

// PaymentIntentRepository is the Postgres-backed paymentintent.Repository.
type PaymentIntentRepository struct {
	conn *Connection
}

// NewPaymentIntentRepository returns a paymentintent.Repository backed by conn.
func NewPaymentIntentRepository(conn *Connection) *PaymentIntentRepository {
	return &PaymentIntentRepository{conn: conn}
}

func (r *PaymentIntentRepository) Create(ctx context.Context, p *paymentintent.PaymentIntent) (*paymentintent.PaymentIntent, error) {
	db, err := r.conn.queryFrom(ctx)
	if err != nil {
		return nil, err
	}

	metadata, err := json.Marshal(p.Metadata)
	if err != nil {
		return nil, err
	}

	id := "pi_" + uuid.NewString()

	_, err = db.ExecContext(ctx,
		`INSERT INTO payment_intents (id, merchant_wallet_id, amount, currency, status, expires_at, idempotency_key, created_by_api_key, metadata)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		id, p.MerchantWalletID, p.Amount, p.Currency, p.Status, p.ExpiresAt, p.IdempotencyKey, p.CreatedByAPIKey, metadata,
	)
	if err != nil {
		return nil, err
	}

	return r.Find(ctx, id)
}

func (r *PaymentIntentRepository) Find(ctx context.Context, id string) (*paymentintent.PaymentIntent, error) {
	db, err := r.conn.queryFrom(ctx)
	if err != nil {
		return nil, err
	}

	row := db.QueryRowContext(ctx,
		`SELECT id, merchant_wallet_id, amount, currency, status, expires_at, payer_wallet_id, journal_entry_id,
			idempotency_key, created_by_api_key, metadata, created_at, updated_at
		 FROM payment_intents WHERE id = $1`, id)

	p, err := scanPaymentIntent(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, pkgerrors.EntityNotFoundError{EntityType: "payment_intent", Err: cn.ErrPaymentIntentNotFound}
		}

		return nil, err
	}

	return p, nil
}

func (r *PaymentIntentRepository) FindByIdempotencyKey(ctx context.Context, idempotencyKey, createdByAPIKey string) (*paymentintent.PaymentIntent, error) {
	db, err := r.conn.queryFrom(ctx)
	if err != nil {
		return nil, err
	}

	row := db.QueryRowContext(ctx,
		`SELECT id, merchant_wallet_id, amount, currency, status, expires_at, payer_wallet_id, journal_entry_id,
			idempotency_key, created_by_api_key, metadata, created_at, updated_at
		 FROM payment_intents WHERE idempotency_key = $1 AND created_by_api_key = $2`, idempotencyKey, createdByAPIKey)

	p, err := scanPaymentIntent(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		return nil, err
	}

	return p, nil
}

// Lock takes SELECT ... FOR UPDATE on the intent row before the pay
// transaction mutates it, per spec.md §5's lock discipline.
func (r *PaymentIntentRepository) Lock(ctx context.Context, id string) (*paymentintent.PaymentIntent, error) {
	db, err := r.conn.queryFrom(ctx)
	if err != nil {
		return nil, err
	}

	row := db.QueryRowContext(ctx,
		`SELECT id, merchant_wallet_id, amount, currency, status, expires_at, payer_wallet_id, journal_entry_id,
			idempotency_key, created_by_api_key, metadata, created_at, updated_at
		 FROM payment_intents WHERE id = $1 FOR UPDATE`, id)

	p, err := scanPaymentIntent(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, pkgerrors.EntityNotFoundError{EntityType: "payment_intent", Err: cn.ErrPaymentIntentNotFound}
		}

		return nil, err
	}

	return p, nil
}

func (r *PaymentIntentRepository) MarkPaid(ctx context.Context, id, payerWalletID, journalEntryID string) (*paymentintent.PaymentIntent, error) {
	db, err := r.conn.queryFrom(ctx)
	if err != nil {
		return nil, err
	}

	_, err = db.ExecContext(ctx,
		`UPDATE payment_intents SET status = $1, payer_wallet_id = $2, journal_entry_id = $3, updated_at = now() WHERE id = $4`,
		paymentintent.StatusPaid, payerWalletID, journalEntryID, id,
	)
	if err != nil {
		return nil, err
	}

	return r.Find(ctx, id)
}

func scanPaymentIntent(row *sql.Row) (*paymentintent.PaymentIntent, error) {
	var p paymentintent.PaymentIntent

	var metadata []byte

	if err := row.Scan(&p.ID, &p.MerchantWalletID, &p.Amount, &p.Currency, &p.Status, &p.ExpiresAt, &p.PayerWalletID,
		&p.JournalEntryID, &p.IdempotencyKey, &p.CreatedByAPIKey, &metadata, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}

	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &p.Metadata); err != nil {
			return nil, err
		}
	}

	return &p, nil
}

package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/agentledger/ledger/internal/domain/externalidentity"
)

// ExternalIdentityRepository is the Postgres-backed externalidentity.Repository.
type ExternalIdentityRepository struct {
	conn *Connection
}

// NewExternalIdentityRepository returns an externalidentity.Repository backed by conn.
func NewExternalIdentityRepository(conn *Connection) *ExternalIdentityRepository {
	return &ExternalIdentityRepository{conn: conn}
}

func (r *ExternalIdentityRepository) Create(ctx context.Context, e *externalidentity.ExternalIdentity) (*externalidentity.ExternalIdentity, error) {
	db, err := r.conn.queryFrom(ctx)
	if err != nil {
		return nil, err
	}

	id := "extid_" + uuid.NewString()

	_, err = db.ExecContext(ctx,
		`INSERT INTO external_identities (id, provider, external_user_id, wallet_id) VALUES ($1, $2, $3, $4)`,
		id, e.Provider, e.ExternalUserID, e.WalletID,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, errExternalIdentityTaken
		}

		return nil, err
	}

	return r.Find(ctx, e.Provider, e.ExternalUserID)
}

func (r *ExternalIdentityRepository) Find(ctx context.Context, provider, externalUserID string) (*externalidentity.ExternalIdentity, error) {
	db, err := r.conn.queryFrom(ctx)
	if err != nil {
		return nil, err
	}

	var e externalidentity.ExternalIdentity

	row := db.QueryRowContext(ctx,
		`SELECT id, provider, external_user_id, wallet_id FROM external_identities WHERE provider = $1 AND external_user_id = $2`,
		provider, externalUserID,
	)

	if err := row.Scan(&e.ID, &e.Provider, &e.ExternalUserID, &e.WalletID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		return nil, err
	}

	return &e, nil
}

type externalIdentityTakenError struct{}

func (externalIdentityTakenError) Error() string { return "external identity already registered" }

var errExternalIdentityTaken = externalIdentityTakenError{}

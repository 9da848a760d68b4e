package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/agentledger/ledger/internal/domain/journal"
	cn "github.com/agentledger/ledger/pkg/constant"
	"github.com/agentledger/ledger/pkg/money"
	"github.com/agentledger/ledger/pkg/pagination"
	"github.com/agentledger/ledger/pkg/pkgerrors"
)

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// JournalRepository is the Postgres-backed journal.Repository.
type JournalRepository struct {
	conn *Connection
}

// NewJournalRepository returns a journal.Repository backed by conn.
func NewJournalRepository(conn *Connection) *JournalRepository {
	return &JournalRepository{conn: conn}
}

func (r *JournalRepository) Post(ctx context.Context, entry *journal.Entry) (*journal.Entry, error) {
	db, err := r.conn.queryFrom(ctx)
	if err != nil {
		return nil, err
	}

	metadata, err := json.Marshal(entry.Metadata)
	if err != nil {
		return nil, err
	}

	id := "je_" + uuid.NewString()

	_, err = db.ExecContext(ctx,
		`INSERT INTO journal_entries (id, type, status, idempotency_key, created_by_api_key, reference_id, metadata)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		id, entry.Type, entry.Status, entry.IdempotencyKey, entry.CreatedByAPIKey, entry.ReferenceID, metadata,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			// A racing request with the same (idempotency_key,
			// created_by_api_key) won the insert between our probe and
			// this statement. Replay it as the original rather than
			// surfacing the constraint violation.
			return r.FindByIdempotencyKey(ctx, entry.IdempotencyKey, entry.CreatedByAPIKey)
		}

		return nil, err
	}

	for _, line := range entry.Lines {
		lineID := "jl_" + uuid.NewString()

		if _, err := db.ExecContext(ctx,
			`INSERT INTO journal_lines (id, entry_id, ledger_account_id, direction, amount, currency)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			lineID, id, line.LedgerAccountID, line.Direction, line.Amount, line.Currency,
		); err != nil {
			return nil, err
		}
	}

	return r.Find(ctx, id)
}

func (r *JournalRepository) FindByIdempotencyKey(ctx context.Context, idempotencyKey, createdByAPIKey string) (*journal.Entry, error) {
	db, err := r.conn.queryFrom(ctx)
	if err != nil {
		return nil, err
	}

	var id string

	row := db.QueryRowContext(ctx,
		`SELECT id FROM journal_entries WHERE idempotency_key = $1 AND created_by_api_key = $2`,
		idempotencyKey, createdByAPIKey,
	)

	if err := row.Scan(&id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		return nil, err
	}

	return r.Find(ctx, id)
}

func (r *JournalRepository) Find(ctx context.Context, id string) (*journal.Entry, error) {
	db, err := r.conn.queryFrom(ctx)
	if err != nil {
		return nil, err
	}

	row := db.QueryRowContext(ctx,
		`SELECT id, type, status, idempotency_key, created_by_api_key, reference_id, metadata, created_at
		 FROM journal_entries WHERE id = $1`, id)

	entry, err := scanEntry(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, pkgerrors.EntityNotFoundError{EntityType: "journal_entry", Err: cn.ErrEntityNotFound}
		}

		return nil, err
	}

	lines, err := r.linesFor(ctx, db, id)
	if err != nil {
		return nil, err
	}

	entry.Lines = lines

	return entry, nil
}

func (r *JournalRepository) linesFor(ctx context.Context, db querier, entryID string) ([]journal.Line, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, entry_id, ledger_account_id, direction, amount, currency FROM journal_lines WHERE entry_id = $1`, entryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []journal.Line

	for rows.Next() {
		var l journal.Line
		if err := rows.Scan(&l.ID, &l.EntryID, &l.LedgerAccountID, &l.Direction, &l.Amount, &l.Currency); err != nil {
			return nil, err
		}

		lines = append(lines, l)
	}

	return lines, rows.Err()
}

func (r *JournalRepository) ListForAccounts(ctx context.Context, accountIDs []string, filter journal.ListFilter) ([]*journal.Entry, error) {
	db, err := r.conn.queryFrom(ctx)
	if err != nil {
		return nil, err
	}

	query := psql.Select("DISTINCT entry.id, entry.type, entry.status, entry.idempotency_key, entry.created_by_api_key, entry.reference_id, entry.metadata, entry.created_at").
		From("journal_entries entry").
		Join("journal_lines jl ON jl.entry_id = entry.id").
		Where(squirrel.Eq{"jl.ledger_account_id": accountIDs})

	if filter.Type != nil {
		query = query.Where(squirrel.Eq{"entry.type": *filter.Type})
	}

	if filter.Status != nil {
		query = query.Where(squirrel.Eq{"entry.status": *filter.Status})
	}

	if filter.FromDate != nil {
		query = query.Where(squirrel.GtOrEq{"entry.created_at": *filter.FromDate})
	}

	if filter.ToDate != nil {
		query = query.Where(squirrel.LtOrEq{"entry.created_at": *filter.ToDate})
	}

	cursor := pagination.Cursor{}
	if filter.BeforeEntry != nil {
		cursor = pagination.Cursor{CreatedAt: filter.BeforeEntry.CreatedAt, EntryID: filter.BeforeEntry.EntryID}
	}

	query = pagination.Apply(query, cursor, filter.Limit)

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*journal.Entry

	for rows.Next() {
		entry, err := scanEntryRows(rows)
		if err != nil {
			return nil, err
		}

		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, entry := range entries {
		lines, err := r.linesFor(ctx, db, entry.ID)
		if err != nil {
			return nil, err
		}

		entry.Lines = lines
	}

	return entries, nil
}

func (r *JournalRepository) SumDebitsSince(ctx context.Context, accountID string, since time.Time) (money.Amount, error) {
	db, err := r.conn.queryFrom(ctx)
	if err != nil {
		return money.Zero, err
	}

	var sum money.Amount

	row := db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(jl.amount), 0)
		 FROM journal_lines jl
		 JOIN journal_entries entry ON entry.id = jl.entry_id
		 WHERE jl.ledger_account_id = $1 AND jl.direction = 'debit'
		   AND entry.status = 'posted' AND entry.created_at >= $2`,
		accountID, since,
	)

	if err := row.Scan(&sum); err != nil {
		return money.Zero, err
	}

	return sum, nil
}

func scanEntry(row *sql.Row) (*journal.Entry, error) {
	var e journal.Entry

	var metadata []byte

	if err := row.Scan(&e.ID, &e.Type, &e.Status, &e.IdempotencyKey, &e.CreatedByAPIKey, &e.ReferenceID, &metadata, &e.CreatedAt); err != nil {
		return nil, err
	}

	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &e.Metadata); err != nil {
			return nil, err
		}
	}

	return &e, nil
}

func scanEntryRows(rows *sql.Rows) (*journal.Entry, error) {
	var e journal.Entry

	var metadata []byte

	if err := rows.Scan(&e.ID, &e.Type, &e.Status, &e.IdempotencyKey, &e.CreatedByAPIKey, &e.ReferenceID, &metadata, &e.CreatedAt); err != nil {
		return nil, err
	}

	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &e.Metadata); err != nil {
			return nil, err
		}
	}

	return &e, nil
}

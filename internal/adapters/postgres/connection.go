// Package postgres implements every storage port in internal/domain
// against a single Postgres database, using database/sql with the
// jackc/pgx/v5 stdlib driver, Masterminds/squirrel for query building,
// and golang-migrate for schema migrations (spec.md §6's "relational
// store with the tables implied by §3").
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/bxcodec/dbresolver/v2"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/agentledger/ledger/pkg/mlog"
)

// Connection is a hub for the ledger's single Postgres database. This
// engine has no read-replica traffic pattern to split, so dbresolver is
// configured with only a primary pool — kept rather than dropped because
// it is still the pool/health-check/load-balancer abstraction the rest of
// the repository code is written against.
type Connection struct {
	DSN            string
	MigrationsPath string
	DBName         string
	Logger         mlog.Logger

	db        *dbresolver.DB
	connected bool
}

// Connect opens the pool and runs pending migrations to completion.
func (c *Connection) Connect() error {
	primary, err := sql.Open("pgx", c.DSN)
	if err != nil {
		return fmt.Errorf("postgres: open: %w", err)
	}

	resolved := dbresolver.New(dbresolver.WithPrimaryDBs(primary), dbresolver.WithLoadBalancer(dbresolver.RoundRobinLB))

	if c.MigrationsPath != "" {
		if err := c.migrate(primary); err != nil {
			return err
		}
	}

	if err := resolved.Ping(); err != nil {
		return fmt.Errorf("postgres: ping: %w", err)
	}

	c.db = &resolved
	c.connected = true

	if c.Logger != nil {
		c.Logger.Info("postgres: connected")
	}

	return nil
}

func (c *Connection) migrate(db *sql.DB) error {
	driver, err := postgres.WithInstance(db, &postgres.Config{MultiStatementEnabled: true, DatabaseName: c.DBName, SchemaName: "public"})
	if err != nil {
		return fmt.Errorf("postgres: migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance("file://"+c.MigrationsPath, c.DBName, driver)
	if err != nil {
		return fmt.Errorf("postgres: migrate init: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("postgres: migrate up: %w", err)
	}

	return nil
}

// DB returns the connection pool, connecting lazily on first use.
func (c *Connection) DB(ctx context.Context) (dbresolver.DB, error) {
	if !c.connected {
		if err := c.Connect(); err != nil {
			return nil, err
		}
	}

	return *c.db, nil
}

type txKey struct{}

// querier is satisfied by both dbresolver.DB and *sql.Tx, letting every
// repository method run against either the pool or an active transaction
// without a type switch.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// queryFrom returns the active transaction stashed in ctx by TxRunner.Run,
// falling back to the plain pool outside any transaction (reads).
func (c *Connection) queryFrom(ctx context.Context) (querier, error) {
	if tx, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return tx, nil
	}

	return c.DB(ctx)
}

// TxRunner implements ledgeraccount.TxRunner: every mutating service
// method runs its whole body through exactly one Run call, per spec.md §5.
type TxRunner struct {
	Conn *Connection
}

// Run begins a transaction, stashes it in ctx, and commits on a nil
// return from fn or rolls back otherwise.
func (t *TxRunner) Run(ctx context.Context, fn func(ctx context.Context) error) error {
	db, err := t.Conn.DB(ctx)
	if err != nil {
		return err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("postgres: begin tx: %w", err)
	}

	txCtx := context.WithValue(ctx, txKey{}, tx)

	if err := fn(txCtx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			return fmt.Errorf("%w (rollback also failed: %v)", err, rbErr)
		}

		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("postgres: commit: %w", err)
	}

	return nil
}

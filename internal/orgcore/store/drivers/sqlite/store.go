// Package sqlite implements store.Store on modernc.org/sqlite.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/crowdspire/orgcore/internal/orgcore/store"

	sqlitedrv "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// querier is satisfied by both *sql.DB and *sql.Tx so each repository works
// unchanged inside and outside a transaction.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type Store struct {
	db        *sql.DB
	txTimeout time.Duration
}

// Option configures a Store.
type Option func(*Store)

// WithTxTimeout bounds every WithTx transaction to d. Zero disables the
// bound.
func WithTxTimeout(d time.Duration) Option {
	return func(s *Store) { s.txTimeout = d }
}

// DefaultTxTimeout bounds a transaction unless overridden. A transaction
// that exceeds it rolls back and surfaces a context error, which is safe to
// retry because nothing was committed.
const DefaultTxTimeout = 5 * time.Second

// NewStore opens (or creates) the database at dsn. Use ":memory:" in tests.
//
// The pool is pinned to a single connection: sqlite allows one writer at a
// time anyway, and a single connection both keeps the session pragmas in
// force and serializes competing transactions at BeginTx instead of
// surfacing SQLITE_BUSY to callers.
func NewStore(dsn string, opts ...Option) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	ctx := context.Background()
	for _, pragma := range []string{
		`PRAGMA foreign_keys = ON;`,
		`PRAGMA busy_timeout = 5000;`,
	} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return nil, err
		}
	}

	s := &Store{db: db, txTimeout: DefaultTxTimeout}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

// Tx starts a read/write transaction and returns a Tx-scoped Store.
func (s *Store) Tx(ctx context.Context) (store.Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return newTx(tx), nil
}

// WithTx executes fn within a transaction, committing on nil and rolling
// back on error or panic. The transaction is bounded by the store's
// per-transaction timeout.
func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context, tx store.Tx) error) error {
	if s.txTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.txTimeout)
		defer cancel()
	}

	tx, err := s.Tx(ctx)
	if err != nil {
		return err
	}

	// Safe to call after a successful commit; it becomes a no-op.
	defer func() {
		_ = tx.Rollback()
	}()

	if err := fn(ctx, tx); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Store) Users() store.Users                 { return &usersRepo{q: s.db} }
func (s *Store) Organizations() store.Organizations { return &organizationsRepo{q: s.db} }
func (s *Store) Memberships() store.Memberships     { return &membershipsRepo{q: s.db} }
func (s *Store) Invites() store.Invites             { return &invitesRepo{q: s.db} }
func (s *Store) Projects() store.Projects           { return &projectsRepo{q: s.db} }
func (s *Store) Tokens() store.Tokens               { return &tokensRepo{q: s.db} }

// mapNotFound converts the driver's empty-result error into the store
// sentinel.
func mapNotFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	return err
}

// mapConstraint converts sqlite constraint violations (UNIQUE in practice)
// into the store sentinel.
func mapConstraint(err error) error {
	var se *sqlitedrv.Error
	if errors.As(err, &se) && se.Code()&0xff == sqlite3.SQLITE_CONSTRAINT {
		return store.ErrAlreadyExists
	}
	return err
}

// mapNullString flattens a nullable text column to its empty-string form.
func mapNullString(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}

// mapStringNull stores empty strings as NULL.
func mapStringNull(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// affectedOrNotFound turns a zero-row mutation into ErrNotFound. Delete
// statements rely on this to detect rows that a competing transaction
// already removed.
func affectedOrNotFound(res sql.Result, err error) error {
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

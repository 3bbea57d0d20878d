package sqlite

import (
	"context"
	"database/sql"

	"github.com/crowdspire/orgcore/internal/orgcore/store"
)

type txStore struct {
	tx *sql.Tx
}

func newTx(tx *sql.Tx) *txStore {
	return &txStore{tx: tx}
}

func (t *txStore) Commit() error   { return t.tx.Commit() }
func (t *txStore) Rollback() error { return t.tx.Rollback() }

func (t *txStore) Close() error { return nil } // the outer DB handle stays open

func (t *txStore) Ping(ctx context.Context) error { return nil }

func (t *txStore) Tx(ctx context.Context) (store.Tx, error) {
	// Nested transactions are not supported.
	return nil, sql.ErrTxDone
}

func (t *txStore) WithTx(ctx context.Context, fn func(ctx context.Context, tx store.Tx) error) error {
	// Nested transactions are not supported.
	return sql.ErrTxDone
}

func (t *txStore) ApplyMigrations() error { return sql.ErrTxDone } // migrate before starting a tx

func (t *txStore) Users() store.Users                 { return &usersRepo{q: t.tx} }
func (t *txStore) Organizations() store.Organizations { return &organizationsRepo{q: t.tx} }
func (t *txStore) Memberships() store.Memberships     { return &membershipsRepo{q: t.tx} }
func (t *txStore) Invites() store.Invites             { return &invitesRepo{q: t.tx} }
func (t *txStore) Projects() store.Projects           { return &projectsRepo{q: t.tx} }
func (t *txStore) Tokens() store.Tokens               { return &tokensRepo{q: t.tx} }

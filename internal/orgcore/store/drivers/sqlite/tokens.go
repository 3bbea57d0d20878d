package sqlite

import (
	"context"

	"github.com/crowdspire/orgcore/internal/orgcore/domain"
	"github.com/crowdspire/orgcore/pkg/idx"
)

type tokensRepo struct {
	q querier
}

func (r *tokensRepo) CreateToken(ctx context.Context, t domain.Token) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO tokens (id, type, user_id, created_at) VALUES (?, ?, ?, ?)`,
		t.ID.String(), string(t.Type), t.UserID.String(), t.CreatedAt,
	)
	return mapConstraint(err)
}

func (r *tokensRepo) GetTokenByID(ctx context.Context, id idx.ID) (domain.Token, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT id, type, user_id, created_at FROM tokens WHERE id = ?`, id.String())

	var (
		t        domain.Token
		tid, uid string
		typ      string
	)
	if err := row.Scan(&tid, &typ, &uid, &t.CreatedAt); err != nil {
		return domain.Token{}, mapNotFound(err)
	}
	t.ID = idx.ID(tid)
	t.Type = domain.TokenType(typ)
	t.UserID = idx.ID(uid)
	return t, nil
}

func (r *tokensRepo) DeleteToken(ctx context.Context, id idx.ID) error {
	res, err := r.q.ExecContext(ctx,
		`DELETE FROM tokens WHERE id = ?`, id.String())
	return affectedOrNotFound(res, err)
}

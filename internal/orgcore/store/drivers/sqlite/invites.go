package sqlite

import (
	"context"
	"database/sql"

	"github.com/crowdspire/orgcore/internal/orgcore/domain"
	"github.com/crowdspire/orgcore/pkg/idx"
)

type invitesRepo struct {
	q querier
}

const inviteColumns = `id, organization_id, email, role, author_id, created_at`

func (r *invitesRepo) CreateInvite(ctx context.Context, inv domain.Invite) error {
	var author sql.NullString
	if !inv.AuthorID.IsZero() {
		author = sql.NullString{String: inv.AuthorID.String(), Valid: true}
	}
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO invites (id, organization_id, email, role, author_id, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		inv.ID.String(), inv.OrganizationID.String(), inv.Email, inv.Role.String(), author, inv.CreatedAt,
	)
	return mapConstraint(err)
}

func (r *invitesRepo) GetInviteByID(ctx context.Context, id idx.ID) (domain.Invite, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+inviteColumns+` FROM invites WHERE id = ?`, id.String())
	return scanInvite(row.Scan)
}

func (r *invitesRepo) GetPendingInvite(ctx context.Context, orgID idx.ID, email string) (domain.Invite, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+inviteColumns+` FROM invites WHERE organization_id = ? AND email = ?`,
		orgID.String(), email)
	return scanInvite(row.Scan)
}

func (r *invitesRepo) ListInvitesByOrganization(ctx context.Context, orgID idx.ID) ([]domain.Invite, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT `+inviteColumns+` FROM invites WHERE organization_id = ? ORDER BY id DESC`,
		orgID.String(),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectInvites(rows)
}

func (r *invitesRepo) ListInvitesByEmail(ctx context.Context, email string) ([]domain.Invite, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT `+inviteColumns+` FROM invites WHERE email = ? ORDER BY id DESC`, email)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectInvites(rows)
}

func (r *invitesRepo) DeleteInvite(ctx context.Context, id idx.ID) error {
	res, err := r.q.ExecContext(ctx,
		`DELETE FROM invites WHERE id = ?`, id.String())
	return affectedOrNotFound(res, err)
}

func (r *invitesRepo) DeleteInvitesByOrganization(ctx context.Context, orgID idx.ID) error {
	_, err := r.q.ExecContext(ctx,
		`DELETE FROM invites WHERE organization_id = ?`, orgID.String())
	return err
}

func scanInvite(scan scanFunc) (domain.Invite, error) {
	var (
		inv     domain.Invite
		id, oid string
		rol     string
		author  sql.NullString
	)
	if err := scan(&id, &oid, &inv.Email, &rol, &author, &inv.CreatedAt); err != nil {
		return domain.Invite{}, mapNotFound(err)
	}
	inv.ID = idx.ID(id)
	inv.OrganizationID = idx.ID(oid)
	inv.Role = domain.Role(rol)
	inv.AuthorID = idx.ID(mapNullString(author))
	return inv, nil
}

func collectInvites(rows *sql.Rows) ([]domain.Invite, error) {
	var out []domain.Invite
	for rows.Next() {
		inv, err := scanInvite(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, inv)
	}
	return out, rows.Err()
}

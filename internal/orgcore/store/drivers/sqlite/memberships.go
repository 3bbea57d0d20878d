package sqlite

import (
	"context"
	"database/sql"

	"github.com/crowdspire/orgcore/internal/orgcore/domain"
	"github.com/crowdspire/orgcore/pkg/idx"
)

type membershipsRepo struct {
	q querier
}

func (r *membershipsRepo) CreateMembership(ctx context.Context, m domain.Membership) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO memberships (id, user_id, organization_id, role, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		m.ID.String(), m.UserID.String(), m.OrganizationID.String(), m.Role.String(), m.CreatedAt,
	)
	return mapConstraint(err)
}

func (r *membershipsRepo) GetMembership(ctx context.Context, orgID, userID idx.ID) (domain.Membership, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT id, user_id, organization_id, role, created_at
		 FROM memberships WHERE organization_id = ? AND user_id = ?`,
		orgID.String(), userID.String(),
	)

	var (
		m                 domain.Membership
		id, uid, oid, rol string
	)
	if err := row.Scan(&id, &uid, &oid, &rol, &m.CreatedAt); err != nil {
		return domain.Membership{}, mapNotFound(err)
	}
	m.ID = idx.ID(id)
	m.UserID = idx.ID(uid)
	m.OrganizationID = idx.ID(oid)
	m.Role = domain.Role(rol)
	return m, nil
}

func (r *membershipsRepo) ListMembersByOrganization(ctx context.Context, orgID idx.ID) ([]domain.Member, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT m.id, m.user_id, m.organization_id, m.role, m.created_at,
		        u.email, u.name, u.avatar_url, u.created_at, u.updated_at
		 FROM memberships m
		 JOIN users u ON u.id = m.user_id
		 WHERE m.organization_id = ?
		 ORDER BY m.role ASC, u.name ASC`,
		orgID.String(),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Member
	for rows.Next() {
		var (
			mem               domain.Member
			id, uid, oid, rol string
			avatar            sql.NullString
		)
		err := rows.Scan(&id, &uid, &oid, &rol, &mem.Membership.CreatedAt,
			&mem.User.Email, &mem.User.Name, &avatar, &mem.User.CreatedAt, &mem.User.UpdatedAt)
		if err != nil {
			return nil, err
		}
		mem.Membership.ID = idx.ID(id)
		mem.Membership.UserID = idx.ID(uid)
		mem.Membership.OrganizationID = idx.ID(oid)
		mem.Membership.Role = domain.Role(rol)
		mem.User.ID = idx.ID(uid)
		mem.User.AvatarURL = mapNullString(avatar)
		out = append(out, mem)
	}
	return out, rows.Err()
}

func (r *membershipsRepo) UpdateMembershipRole(ctx context.Context, orgID, userID idx.ID, role domain.Role) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE memberships SET role = ? WHERE organization_id = ? AND user_id = ?`,
		role.String(), orgID.String(), userID.String(),
	)
	return affectedOrNotFound(res, err)
}

func (r *membershipsRepo) DeleteMembership(ctx context.Context, orgID, userID idx.ID) error {
	res, err := r.q.ExecContext(ctx,
		`DELETE FROM memberships WHERE organization_id = ? AND user_id = ?`,
		orgID.String(), userID.String(),
	)
	return affectedOrNotFound(res, err)
}

func (r *membershipsRepo) DeleteMembershipsByOrganization(ctx context.Context, orgID idx.ID) error {
	_, err := r.q.ExecContext(ctx,
		`DELETE FROM memberships WHERE organization_id = ?`, orgID.String())
	return err
}

package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/crowdspire/orgcore/internal/orgcore/domain"
	"github.com/crowdspire/orgcore/pkg/idx"
)

type organizationsRepo struct {
	q querier
}

const organizationColumns = `id, slug, name, domain, attach_by_domain, owner_id, created_at, updated_at`

func (r *organizationsRepo) CreateOrganization(ctx context.Context, o domain.Organization) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO organizations (id, slug, name, domain, attach_by_domain, owner_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		o.ID.String(), o.Slug, o.Name, mapStringNull(o.Domain), o.AttachByDomain,
		o.OwnerID.String(), o.CreatedAt, o.UpdatedAt,
	)
	return mapConstraint(err)
}

func (r *organizationsRepo) GetOrganizationByID(ctx context.Context, id idx.ID) (domain.Organization, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+organizationColumns+` FROM organizations WHERE id = ?`, id.String())
	return scanOrganization(row.Scan)
}

func (r *organizationsRepo) GetOrganizationBySlug(ctx context.Context, slug string) (domain.Organization, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+organizationColumns+` FROM organizations WHERE slug = ?`, slug)
	return scanOrganization(row.Scan)
}

func (r *organizationsRepo) ListOrganizationsForUser(ctx context.Context, userID idx.ID) ([]domain.Organization, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT o.id, o.slug, o.name, o.domain, o.attach_by_domain, o.owner_id, o.created_at, o.updated_at
		 FROM organizations o
		 JOIN memberships m ON m.organization_id = o.id
		 WHERE m.user_id = ?
		 ORDER BY o.id DESC`,
		userID.String(),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectOrganizations(rows)
}

func (r *organizationsRepo) ListOrganizationsByDomain(ctx context.Context, dom string) ([]domain.Organization, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT `+organizationColumns+` FROM organizations
		 WHERE lower(domain) = lower(?) AND attach_by_domain = 1
		 ORDER BY id DESC`,
		dom,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectOrganizations(rows)
}

func (r *organizationsRepo) UpdateOrganization(ctx context.Context, id idx.ID, name, dom string, attachByDomain bool) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE organizations SET name = ?, domain = ?, attach_by_domain = ?, updated_at = ? WHERE id = ?`,
		name, mapStringNull(dom), attachByDomain, time.Now().UTC(), id.String(),
	)
	return affectedOrNotFound(res, err)
}

func (r *organizationsRepo) UpdateOrganizationOwner(ctx context.Context, id, ownerID idx.ID) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE organizations SET owner_id = ?, updated_at = ? WHERE id = ?`,
		ownerID.String(), time.Now().UTC(), id.String(),
	)
	return affectedOrNotFound(res, err)
}

func (r *organizationsRepo) DeleteOrganization(ctx context.Context, id idx.ID) error {
	res, err := r.q.ExecContext(ctx,
		`DELETE FROM organizations WHERE id = ?`, id.String())
	return affectedOrNotFound(res, err)
}

type scanFunc func(dest ...any) error

func scanOrganization(scan scanFunc) (domain.Organization, error) {
	var (
		o              domain.Organization
		id, ownerID    string
		dom            sql.NullString
		attachByDomain bool
	)
	err := scan(&id, &o.Slug, &o.Name, &dom, &attachByDomain, &ownerID, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return domain.Organization{}, mapNotFound(err)
	}
	o.ID = idx.ID(id)
	o.OwnerID = idx.ID(ownerID)
	o.Domain = mapNullString(dom)
	o.AttachByDomain = attachByDomain
	return o, nil
}

func collectOrganizations(rows *sql.Rows) ([]domain.Organization, error) {
	var out []domain.Organization
	for rows.Next() {
		o, err := scanOrganization(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

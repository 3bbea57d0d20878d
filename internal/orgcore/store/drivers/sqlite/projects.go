package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/crowdspire/orgcore/internal/orgcore/domain"
	"github.com/crowdspire/orgcore/pkg/idx"
)

type projectsRepo struct {
	q querier
}

const projectColumns = `id, organization_id, owner_id, name, slug, description, avatar_url, created_at, updated_at`

func (r *projectsRepo) CreateProject(ctx context.Context, p domain.Project) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO projects (id, organization_id, owner_id, name, slug, description, avatar_url, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID.String(), p.OrganizationID.String(), p.OwnerID.String(), p.Name, p.Slug,
		mapStringNull(p.Description), mapStringNull(p.AvatarURL), p.CreatedAt, p.UpdatedAt,
	)
	return mapConstraint(err)
}

func (r *projectsRepo) GetProjectByID(ctx context.Context, id idx.ID) (domain.Project, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+projectColumns+` FROM projects WHERE id = ?`, id.String())
	return scanProject(row.Scan)
}

func (r *projectsRepo) GetProjectBySlug(ctx context.Context, orgID idx.ID, slug string) (domain.Project, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+projectColumns+` FROM projects WHERE organization_id = ? AND slug = ?`,
		orgID.String(), slug)
	return scanProject(row.Scan)
}

func (r *projectsRepo) ListProjectsByOrganization(ctx context.Context, orgID idx.ID) ([]domain.Project, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT `+projectColumns+` FROM projects WHERE organization_id = ? ORDER BY id DESC`,
		orgID.String(),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Project
	for rows.Next() {
		p, err := scanProject(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *projectsRepo) UpdateProject(ctx context.Context, id idx.ID, name, description string) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE projects SET name = ?, description = ?, updated_at = ? WHERE id = ?`,
		name, mapStringNull(description), time.Now().UTC(), id.String(),
	)
	return affectedOrNotFound(res, err)
}

func (r *projectsRepo) DeleteProject(ctx context.Context, id idx.ID) error {
	res, err := r.q.ExecContext(ctx,
		`DELETE FROM projects WHERE id = ?`, id.String())
	return affectedOrNotFound(res, err)
}

func (r *projectsRepo) DeleteProjectsByOrganization(ctx context.Context, orgID idx.ID) error {
	_, err := r.q.ExecContext(ctx,
		`DELETE FROM projects WHERE organization_id = ?`, orgID.String())
	return err
}

func scanProject(scan scanFunc) (domain.Project, error) {
	var (
		p             domain.Project
		id, oid, own  string
		descr, avatar sql.NullString
	)
	err := scan(&id, &oid, &own, &p.Name, &p.Slug, &descr, &avatar, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return domain.Project{}, mapNotFound(err)
	}
	p.ID = idx.ID(id)
	p.OrganizationID = idx.ID(oid)
	p.OwnerID = idx.ID(own)
	p.Description = mapNullString(descr)
	p.AvatarURL = mapNullString(avatar)
	return p, nil
}

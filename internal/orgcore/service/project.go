package service

import (
	"context"
	"errors"
	"time"

	"github.com/crowdspire/orgcore/internal/orgcore/ability"
	"github.com/crowdspire/orgcore/internal/orgcore/domain"
	"github.com/crowdspire/orgcore/internal/orgcore/store"
	"github.com/crowdspire/orgcore/pkg/idx"
	"github.com/crowdspire/orgcore/pkg/slugx"
)

// ProjectService manages the organization's projects. Update and Delete are
// evaluated against the project instance, so members pass only on projects
// they own while admins pass on all of them.
type ProjectService struct {
	Store store.Store
}

// Create adds a project owned by the caller.
func (s *ProjectService) Create(
	ctx context.Context,
	orgSlug string,
	userID idx.ID,
	name string,
	description string,
) (domain.Project, error) {
	org, membership, err := resolveMembership(ctx, s.Store, orgSlug, userID)
	if err != nil {
		return domain.Project{}, err
	}
	if ability.Resolve(userID, membership.Role).Cannot(ability.ActionCreate, ability.KindProject) {
		return domain.Project{}, ErrPermissionDenied
	}

	slug := slugx.Make(name)
	if slug == "" {
		return domain.Project{}, ErrNameRequired
	}

	now := time.Now().UTC()
	project := domain.Project{
		ID:             idx.New(),
		OrganizationID: org.ID,
		OwnerID:        userID,
		Name:           name,
		Slug:           slug,
		Description:    description,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.Store.Projects().CreateProject(ctx, project); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.Project{}, ErrProjectExists
		}
		return domain.Project{}, err
	}
	return project, nil
}

// List returns the organization's projects, newest first.
func (s *ProjectService) List(ctx context.Context, orgSlug string, userID idx.ID) ([]domain.Project, error) {
	org, membership, err := resolveMembership(ctx, s.Store, orgSlug, userID)
	if err != nil {
		return nil, err
	}
	if ability.Resolve(userID, membership.Role).Cannot(ability.ActionGet, ability.KindProject) {
		return nil, ErrPermissionDenied
	}
	return s.Store.Projects().ListProjectsByOrganization(ctx, org.ID)
}

// Get returns one project by its slug within the organization.
func (s *ProjectService) Get(ctx context.Context, orgSlug, projectSlug string, userID idx.ID) (domain.Project, error) {
	org, membership, err := resolveMembership(ctx, s.Store, orgSlug, userID)
	if err != nil {
		return domain.Project{}, err
	}
	if ability.Resolve(userID, membership.Role).Cannot(ability.ActionGet, ability.KindProject) {
		return domain.Project{}, ErrPermissionDenied
	}

	project, err := s.Store.Projects().GetProjectBySlug(ctx, org.ID, projectSlug)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Project{}, ErrProjectNotFound
		}
		return domain.Project{}, err
	}
	return project, nil
}

// Update rewrites a project's name and description. The permission check
// runs against the loaded instance: update:Project is granted to admins for
// any project and to members only for their own.
func (s *ProjectService) Update(
	ctx context.Context,
	orgSlug string,
	projectSlug string,
	userID idx.ID,
	name string,
	description string,
) error {
	org, membership, err := resolveMembership(ctx, s.Store, orgSlug, userID)
	if err != nil {
		return err
	}

	project, err := s.Store.Projects().GetProjectBySlug(ctx, org.ID, projectSlug)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrProjectNotFound
		}
		return err
	}

	set := ability.Resolve(userID, membership.Role)
	if set.CannotOn(ability.ActionUpdate, ability.KindProject, project) {
		return ErrPermissionDenied
	}
	if name == "" {
		return ErrNameRequired
	}

	return s.Store.Projects().UpdateProject(ctx, project.ID, name, description)
}

// Delete removes a project, under the same instance-scoped rule as Update.
func (s *ProjectService) Delete(ctx context.Context, orgSlug, projectSlug string, userID idx.ID) error {
	org, membership, err := resolveMembership(ctx, s.Store, orgSlug, userID)
	if err != nil {
		return err
	}

	project, err := s.Store.Projects().GetProjectBySlug(ctx, org.ID, projectSlug)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrProjectNotFound
		}
		return err
	}

	set := ability.Resolve(userID, membership.Role)
	if set.CannotOn(ability.ActionDelete, ability.KindProject, project) {
		return ErrPermissionDenied
	}

	err = s.Store.Projects().DeleteProject(ctx, project.ID)
	if errors.Is(err, store.ErrNotFound) {
		return ErrProjectNotFound
	}
	return err
}

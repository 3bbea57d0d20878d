package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/crowdspire/orgcore/internal/orgcore/ability"
	"github.com/crowdspire/orgcore/internal/orgcore/domain"
	"github.com/crowdspire/orgcore/internal/orgcore/store"
	"github.com/crowdspire/orgcore/pkg/idx"
	"github.com/crowdspire/orgcore/pkg/slogx"
	"github.com/crowdspire/orgcore/pkg/slugx"
)

type OrganizationService struct {
	Store store.Store
}

// Create provisions an organization and its implicit OWNER membership in one
// transaction; a half-created organization without an owner member is never
// observable.
func (s *OrganizationService) Create(
	ctx context.Context,
	ownerID idx.ID,
	name string,
	dom string,
	attachByDomain bool,
) (domain.Organization, error) {
	slug := slugx.Make(name)
	if slug == "" {
		return domain.Organization{}, ErrNameRequired
	}

	now := time.Now().UTC()
	org := domain.Organization{
		ID:             idx.New(),
		Slug:           slug,
		Name:           name,
		Domain:         dom,
		AttachByDomain: attachByDomain,
		OwnerID:        ownerID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	err := s.Store.WithTx(ctx, func(ctx context.Context, tx store.Tx) error {
		if _, err := tx.Users().GetUserByID(ctx, ownerID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrUserNotFound
			}
			return err
		}

		if err := tx.Organizations().CreateOrganization(ctx, org); err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				return ErrSlugTaken
			}
			return err
		}

		return tx.Memberships().CreateMembership(ctx, domain.Membership{
			ID:             idx.New(),
			UserID:         ownerID,
			OrganizationID: org.ID,
			Role:           domain.RoleOwner,
			CreatedAt:      now,
		})
	})
	if err != nil {
		return domain.Organization{}, err
	}

	slogx.FromContext(ctx).Info("organization created",
		slog.String("organization_id", org.ID.String()),
		slog.String("slug", org.Slug),
		slog.String("owner_id", ownerID.String()),
	)
	return org, nil
}

// Get returns the organization behind slug, provided the caller is a member
// whose role can read it.
func (s *OrganizationService) Get(ctx context.Context, slug string, userID idx.ID) (domain.Organization, error) {
	org, membership, err := resolveMembership(ctx, s.Store, slug, userID)
	if err != nil {
		return domain.Organization{}, err
	}
	if ability.Resolve(userID, membership.Role).Cannot(ability.ActionGet, ability.KindOrganization) {
		return domain.Organization{}, ErrPermissionDenied
	}
	return org, nil
}

// ListForUser returns every organization the user belongs to, newest first.
func (s *OrganizationService) ListForUser(ctx context.Context, userID idx.ID) ([]domain.Organization, error) {
	return s.Store.Organizations().ListOrganizationsForUser(ctx, userID)
}

// Update rewrites the organization's name, auto-attach domain and flag. The
// slug is stable for life; renaming does not re-slug. Gated on
// update:Organization against the org instance, so only the owner passes.
func (s *OrganizationService) Update(
	ctx context.Context,
	slug string,
	requesterID idx.ID,
	name string,
	dom string,
	attachByDomain bool,
) error {
	org, membership, err := resolveMembership(ctx, s.Store, slug, requesterID)
	if err != nil {
		return err
	}
	if name == "" {
		return ErrNameRequired
	}

	set := ability.Resolve(requesterID, membership.Role)
	if set.CannotOn(ability.ActionUpdate, ability.KindOrganization, org) {
		return ErrPermissionDenied
	}

	return s.Store.Organizations().UpdateOrganization(ctx, org.ID, name, dom, attachByDomain)
}

// Delete shuts the organization down. Requires delete:Organization on the
// org instance (owner-only by the rule table). The cascade removes projects,
// invites and memberships before the organization row, all in one
// transaction: either the whole tenant footprint disappears or none of it.
func (s *OrganizationService) Delete(ctx context.Context, slug string, requesterID idx.ID) error {
	org, membership, err := resolveMembership(ctx, s.Store, slug, requesterID)
	if err != nil {
		return err
	}

	set := ability.Resolve(requesterID, membership.Role)
	if set.CannotOn(ability.ActionDelete, ability.KindOrganization, org) {
		slogx.FromContext(ctx).Warn("organization deletion refused",
			slog.String("organization_id", org.ID.String()),
			slog.String("requester_id", requesterID.String()),
			slog.String("role", membership.Role.String()),
		)
		return ErrPermissionDenied
	}

	err = s.Store.WithTx(ctx, func(ctx context.Context, tx store.Tx) error {
		if err := tx.Projects().DeleteProjectsByOrganization(ctx, org.ID); err != nil {
			return err
		}
		if err := tx.Invites().DeleteInvitesByOrganization(ctx, org.ID); err != nil {
			return err
		}
		if err := tx.Memberships().DeleteMembershipsByOrganization(ctx, org.ID); err != nil {
			return err
		}
		if err := tx.Organizations().DeleteOrganization(ctx, org.ID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				// A concurrent deletion won; the tenant is gone either way.
				return ErrOrganizationNotFound
			}
			return err
		}
		return nil
	})
	if err != nil {
		return err
	}

	slogx.FromContext(ctx).Info("organization deleted",
		slog.String("organization_id", org.ID.String()),
		slog.String("slug", org.Slug),
	)
	return nil
}

// TransferOwnership hands the organization to another member. Requires
// transfer_ownership:Organization on the org instance. In one transaction
// the target becomes OWNER, the outgoing owner is demoted to ADMIN and the
// organization's owner_id is rewritten.
func (s *OrganizationService) TransferOwnership(
	ctx context.Context,
	slug string,
	requesterID idx.ID,
	targetUserID idx.ID,
) error {
	org, membership, err := resolveMembership(ctx, s.Store, slug, requesterID)
	if err != nil {
		return err
	}

	set := ability.Resolve(requesterID, membership.Role)
	if set.CannotOn(ability.ActionTransferOwnership, ability.KindOrganization, org) {
		return ErrPermissionDenied
	}
	if targetUserID == org.OwnerID {
		return ErrAlreadyOwner
	}

	err = s.Store.WithTx(ctx, func(ctx context.Context, tx store.Tx) error {
		// The new owner must already be a member; ownership is never an
		// invitation shortcut.
		if _, err := tx.Memberships().GetMembership(ctx, org.ID, targetUserID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrMemberNotFound
			}
			return err
		}

		if err := tx.Memberships().UpdateMembershipRole(ctx, org.ID, targetUserID, domain.RoleOwner); err != nil {
			return err
		}
		if err := tx.Memberships().UpdateMembershipRole(ctx, org.ID, org.OwnerID, domain.RoleAdmin); err != nil {
			return err
		}
		return tx.Organizations().UpdateOrganizationOwner(ctx, org.ID, targetUserID)
	})
	if err != nil {
		return err
	}

	slogx.FromContext(ctx).Info("organization ownership transferred",
		slog.String("organization_id", org.ID.String()),
		slog.String("previous_owner_id", org.OwnerID.String()),
		slog.String("new_owner_id", targetUserID.String()),
	)
	return nil
}

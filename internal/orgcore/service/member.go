package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/crowdspire/orgcore/internal/orgcore/ability"
	"github.com/crowdspire/orgcore/internal/orgcore/domain"
	"github.com/crowdspire/orgcore/internal/orgcore/store"
	"github.com/crowdspire/orgcore/pkg/idx"
	"github.com/crowdspire/orgcore/pkg/slogx"
)

// MemberService manages the members of an organization: listing, role
// changes and removal. Memberships themselves are only ever created through
// invite acceptance or organization creation.
type MemberService struct {
	Store store.Store
}

// List returns the organization's members with their user records.
func (s *MemberService) List(ctx context.Context, slug string, requesterID idx.ID) ([]domain.Member, error) {
	org, membership, err := resolveMembership(ctx, s.Store, slug, requesterID)
	if err != nil {
		return nil, err
	}
	if ability.Resolve(requesterID, membership.Role).Cannot(ability.ActionGet, ability.KindUser) {
		return nil, ErrPermissionDenied
	}
	return s.Store.Memberships().ListMembersByOrganization(ctx, org.ID)
}

// UpdateRole changes a member's role. The owner's membership is pinned to
// OWNER; it only changes through TransferOwnership.
func (s *MemberService) UpdateRole(
	ctx context.Context,
	slug string,
	requesterID idx.ID,
	targetUserID idx.ID,
	role domain.Role,
) error {
	org, membership, err := resolveMembership(ctx, s.Store, slug, requesterID)
	if err != nil {
		return err
	}
	if ability.Resolve(requesterID, membership.Role).Cannot(ability.ActionUpdate, ability.KindUser) {
		return ErrPermissionDenied
	}
	if !role.Valid() || role == domain.RoleOwner {
		return ErrInvalidRole
	}
	if targetUserID == org.OwnerID {
		return ErrCannotChangeOwnRole
	}

	err = s.Store.Memberships().UpdateMembershipRole(ctx, org.ID, targetUserID, role)
	if errors.Is(err, store.ErrNotFound) {
		return ErrMemberNotFound
	}
	return err
}

// Remove deletes a member from the organization. Their user account and
// memberships in other organizations are untouched.
func (s *MemberService) Remove(
	ctx context.Context,
	slug string,
	requesterID idx.ID,
	targetUserID idx.ID,
) error {
	org, membership, err := resolveMembership(ctx, s.Store, slug, requesterID)
	if err != nil {
		return err
	}
	if ability.Resolve(requesterID, membership.Role).Cannot(ability.ActionDelete, ability.KindUser) {
		return ErrPermissionDenied
	}
	if targetUserID == org.OwnerID {
		return ErrCannotRemoveOwner
	}

	err = s.Store.Memberships().DeleteMembership(ctx, org.ID, targetUserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrMemberNotFound
		}
		return err
	}

	slogx.FromContext(ctx).Info("member removed",
		slog.String("organization_id", org.ID.String()),
		slog.String("user_id", targetUserID.String()),
		slog.String("removed_by", requesterID.String()),
	)
	return nil
}

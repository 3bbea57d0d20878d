package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/crowdspire/orgcore/internal/orgcore/domain"
	"github.com/crowdspire/orgcore/internal/orgcore/notify"
	"github.com/crowdspire/orgcore/internal/orgcore/store"
	"github.com/crowdspire/orgcore/pkg/idx"
	"github.com/crowdspire/orgcore/pkg/slogx"
)

// InviteService drives the invite lifecycle. An invite is PENDING while its
// row exists and becomes terminal by row deletion: Accept deletes it and
// creates a membership in the same transaction, Revoke and Reject delete it
// without one. The capability to mint or revoke invites is checked by the
// caller against the ability engine; this service enforces only the
// invariants of the lifecycle itself.
type InviteService struct {
	Store      store.Store
	Dispatcher notify.Dispatcher
}

// Create mints a pending invite for email in the given organization. The
// duplicate-invite check, the already-a-member check and the insert run in
// one transaction so two concurrent calls cannot both observe "no existing
// invite" and insert twice; the unique (organization, email) constraint
// backstops the race regardless.
func (s *InviteService) Create(
	ctx context.Context,
	orgID idx.ID,
	email string,
	role domain.Role,
	authorID idx.ID,
) (domain.Invite, error) {
	log := slogx.FromContext(ctx)

	// 1. Validate input.
	if !strings.Contains(email, "@") {
		return domain.Invite{}, ErrEmailRequired
	}
	if !role.Valid() {
		log.Warn("invite requested with unknown role", slog.String("role", role.String()))
		return domain.Invite{}, ErrInvalidRole
	}

	invite := domain.Invite{
		ID:        idx.New(),
		Email:     email,
		Role:      role,
		AuthorID:  authorID,
		CreatedAt: time.Now().UTC(),
	}

	var org domain.Organization
	err := s.Store.WithTx(ctx, func(ctx context.Context, tx store.Tx) error {
		// 2. The organization must exist.
		var err error
		org, err = tx.Organizations().GetOrganizationByID(ctx, orgID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrOrganizationNotFound
			}
			return err
		}
		invite.OrganizationID = org.ID

		// 3. Addresses on the org's auto-attach domain never need invites.
		if org.AttachByDomain && org.Domain != "" && emailDomain(email) == strings.ToLower(org.Domain) {
			return ErrAutoJoinDomain
		}

		// 4. At most one pending invite per (organization, email).
		if _, err := tx.Invites().GetPendingInvite(ctx, org.ID, email); err == nil {
			return ErrInvitePending
		} else if !errors.Is(err, store.ErrNotFound) {
			return err
		}

		// 5. Reject emails that already belong to a member.
		if user, err := tx.Users().GetUserByEmail(ctx, email); err == nil {
			if _, err := tx.Memberships().GetMembership(ctx, org.ID, user.ID); err == nil {
				return ErrAlreadyMember
			} else if !errors.Is(err, store.ErrNotFound) {
				return err
			}
		} else if !errors.Is(err, store.ErrNotFound) {
			return err
		}

		// 6. Insert. A constraint hit here means a concurrent writer won
		// the race after our check in step 4.
		if err := tx.Invites().CreateInvite(ctx, invite); err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				return ErrInvitePending
			}
			return err
		}
		return nil
	})
	if err != nil {
		return domain.Invite{}, err
	}

	log.Info("invite created",
		slog.String("invite_id", invite.ID.String()),
		slog.String("organization_id", org.ID.String()),
		slog.String("role", invite.Role.String()),
	)

	// 7. Notify after commit. Delivery is fire-and-forget: the invite is
	// already durable, so a dispatch failure is logged and swallowed.
	if err := s.Dispatcher.InviteCreated(ctx, org, invite); err != nil {
		log.Warn("invite notification dispatch failed",
			slog.String("invite_id", invite.ID.String()),
			slog.Any("error", err),
		)
	}

	return invite, nil
}

// Accept consumes the invite: it creates the membership and deletes the
// invite row in one transaction, so either both happen or neither does.
// Concurrent accepts (or an accept racing a revoke) are serialized by the
// row itself: whichever transaction commits first deletes it, and the loser
// finds no row and fails ErrInviteNotFound with nothing written.
func (s *InviteService) Accept(ctx context.Context, inviteID, userID idx.ID) error {
	log := slogx.FromContext(ctx)

	return s.Store.WithTx(ctx, func(ctx context.Context, tx store.Tx) error {
		// 1. Load the invite. Absence covers "never existed", "already
		// accepted" and "revoked" alike; storage cannot tell them apart.
		invite, err := tx.Invites().GetInviteByID(ctx, inviteID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrInviteNotFound
			}
			return err
		}

		// 2. Load the accepting user. Defensive: the caller is
		// authenticated, so the record should exist.
		user, err := tx.Users().GetUserByID(ctx, userID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrUserNotFound
			}
			return err
		}

		// 3. The invite is addressed to an email, not a user id. The
		// comparison is byte-exact on purpose: no lower-casing, no
		// trimming. Normalizing would flip the accept/reject outcome for
		// real addresses that differ only in case.
		if invite.Email != user.Email {
			log.Warn("invite acceptance refused: email mismatch",
				slog.String("invite_id", invite.ID.String()),
				slog.String("user_id", user.ID.String()),
			)
			return ErrInviteEmailMismatch
		}

		// 4. Create the membership and consume the invite together.
		membership := domain.Membership{
			ID:             idx.New(),
			UserID:         user.ID,
			OrganizationID: invite.OrganizationID,
			Role:           invite.Role,
			CreatedAt:      time.Now().UTC(),
		}
		if err := tx.Memberships().CreateMembership(ctx, membership); err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				return ErrAlreadyMember
			}
			return err
		}
		if err := tx.Invites().DeleteInvite(ctx, invite.ID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrInviteNotFound
			}
			return err
		}

		log.Info("invite accepted",
			slog.String("invite_id", invite.ID.String()),
			slog.String("user_id", user.ID.String()),
			slog.String("organization_id", invite.OrganizationID.String()),
			slog.String("role", invite.Role.String()),
		)
		return nil
	})
}

// Reject lets the invited user decline. Like Accept it verifies the invite
// is addressed to the caller, then deletes the row without creating a
// membership.
func (s *InviteService) Reject(ctx context.Context, inviteID, userID idx.ID) error {
	return s.Store.WithTx(ctx, func(ctx context.Context, tx store.Tx) error {
		invite, err := tx.Invites().GetInviteByID(ctx, inviteID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrInviteNotFound
			}
			return err
		}

		user, err := tx.Users().GetUserByID(ctx, userID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrUserNotFound
			}
			return err
		}

		if invite.Email != user.Email {
			return ErrInviteEmailMismatch
		}

		if err := tx.Invites().DeleteInvite(ctx, invite.ID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrInviteNotFound
			}
			return err
		}
		return nil
	})
}

// Revoke withdraws a pending invite. An invite that was already consumed or
// revoked yields ErrInviteNotFound; callers that only want the invite gone
// may treat that as "nothing to do".
func (s *InviteService) Revoke(ctx context.Context, inviteID idx.ID) error {
	err := s.Store.Invites().DeleteInvite(ctx, inviteID)
	if errors.Is(err, store.ErrNotFound) {
		return ErrInviteNotFound
	}
	return err
}

// Get returns an invite by id, e.g. for the pre-acceptance preview page.
func (s *InviteService) Get(ctx context.Context, inviteID idx.ID) (domain.Invite, error) {
	invite, err := s.Store.Invites().GetInviteByID(ctx, inviteID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Invite{}, ErrInviteNotFound
		}
		return domain.Invite{}, err
	}
	return invite, nil
}

// ListPending returns the organization's outstanding invites, newest first.
func (s *InviteService) ListPending(ctx context.Context, orgID idx.ID) ([]domain.Invite, error) {
	return s.Store.Invites().ListInvitesByOrganization(ctx, orgID)
}

// ListPendingForEmail returns every outstanding invite addressed to email
// across all organizations, newest first. Matching is byte-exact, consistent
// with Accept.
func (s *InviteService) ListPendingForEmail(ctx context.Context, email string) ([]domain.Invite, error) {
	return s.Store.Invites().ListInvitesByEmail(ctx, email)
}

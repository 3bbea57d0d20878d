package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/crowdspire/orgcore/internal/orgcore/domain"
	"github.com/crowdspire/orgcore/internal/orgcore/store"
	"github.com/crowdspire/orgcore/pkg/idx"
	"github.com/crowdspire/orgcore/pkg/slogx"
)

type MembershipService struct {
	Store store.Store
}

// ResolveMembership loads the organization behind slug together with the
// caller's membership in it. It is the tenant-isolation boundary: every
// organization-scoped operation resolves afresh through here before touching
// tenant data, so role changes and removals take effect on the very next
// call. Results are never cached.
func (s *MembershipService) ResolveMembership(
	ctx context.Context,
	slug string,
	userID idx.ID,
) (domain.Organization, domain.Membership, error) {
	return resolveMembership(ctx, s.Store, slug, userID)
}

// resolveMembership is shared by every service that gates an operation on
// tenant membership. st may be a transaction-scoped store.
func resolveMembership(
	ctx context.Context,
	st store.Store,
	slug string,
	userID idx.ID,
) (domain.Organization, domain.Membership, error) {
	org, err := st.Organizations().GetOrganizationBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Organization{}, domain.Membership{}, ErrOrganizationNotFound
		}
		return domain.Organization{}, domain.Membership{}, err
	}

	membership, err := st.Memberships().GetMembership(ctx, org.ID, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			slogx.FromContext(ctx).Warn("membership resolution refused",
				slog.String("organization_slug", slug),
				slog.String("user_id", userID.String()),
			)
			return domain.Organization{}, domain.Membership{}, ErrNotAMember
		}
		return domain.Organization{}, domain.Membership{}, err
	}

	return org, membership, nil
}

// emailDomain returns the lower-cased domain part of an email address, or ""
// when there is none. Only used for the auto-attach feature; invite email
// comparison never goes through here.
func emailDomain(email string) string {
	at := strings.LastIndex(email, "@")
	if at < 0 || at == len(email)-1 {
		return ""
	}
	return strings.ToLower(email[at+1:])
}

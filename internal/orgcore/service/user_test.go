package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/crowdspire/orgcore/internal/orgcore/domain"
	"github.com/crowdspire/orgcore/pkg/idx"
)

func TestCreateUser(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := &UserService{Store: st}

	t.Run("stores the email exactly as given", func(t *testing.T) {
		user, err := svc.Create(ctx, "Alice", "Alice@Acme.com")
		require.NoError(t, err)
		require.Equal(t, "Alice@Acme.com", user.Email)
	})

	t.Run("duplicate email", func(t *testing.T) {
		_, err := svc.Create(ctx, "Other Alice", "Alice@Acme.com")
		require.ErrorIs(t, err, ErrEmailTaken)
	})

	t.Run("validation", func(t *testing.T) {
		_, err := svc.Create(ctx, "No Email", "nope")
		require.ErrorIs(t, err, ErrEmailRequired)
		_, err = svc.Create(ctx, "", "someone@x.com")
		require.ErrorIs(t, err, ErrNameRequired)
	})
}

func TestCreateUserAutoAttach(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	users := &UserService{Store: st}
	orgs := &OrganizationService{Store: st}

	founder, err := users.Create(ctx, "Founder", "founder@acme.com")
	require.NoError(t, err)

	attach, err := orgs.Create(ctx, founder.ID, "Acme Inc", "acme.com", true)
	require.NoError(t, err)
	noAttach, err := orgs.Create(ctx, founder.ID, "Acme Labs", "acme.com", false)
	require.NoError(t, err)

	t.Run("matching domain joins as MEMBER", func(t *testing.T) {
		hire, err := users.Create(ctx, "New Hire", "hire@acme.com")
		require.NoError(t, err)

		m, err := st.Memberships().GetMembership(ctx, attach.ID, hire.ID)
		require.NoError(t, err)
		require.Equal(t, domain.RoleMember, m.Role)

		// Orgs with the flag off are skipped even on a domain match.
		_, err = st.Memberships().GetMembership(ctx, noAttach.ID, hire.ID)
		require.Error(t, err)
	})

	t.Run("domain match is case-insensitive", func(t *testing.T) {
		hire, err := users.Create(ctx, "Loud Hire", "loud@ACME.COM")
		require.NoError(t, err)
		_, err = st.Memberships().GetMembership(ctx, attach.ID, hire.ID)
		require.NoError(t, err)
	})

	t.Run("other domains are not attached", func(t *testing.T) {
		outsider, err := users.Create(ctx, "Outsider", "someone@other.com")
		require.NoError(t, err)
		list, err := st.Organizations().ListOrganizationsForUser(ctx, outsider.ID)
		require.NoError(t, err)
		require.Empty(t, list)
	})
}

func TestGetUser(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := &UserService{Store: st}

	user, err := svc.Create(ctx, "Alice", "alice@acme.com")
	require.NoError(t, err)

	got, err := svc.Get(ctx, user.ID)
	require.NoError(t, err)
	require.Equal(t, user.Email, got.Email)

	_, err = svc.Get(ctx, idx.New())
	require.ErrorIs(t, err, ErrUserNotFound)
}

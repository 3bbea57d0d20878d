package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/crowdspire/orgcore/internal/orgcore/domain"
	"github.com/crowdspire/orgcore/pkg/idx"
)

func TestListMembers(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	alice := createUser(t, st, "Alice", "alice@acme.com")
	org := createOrg(t, st, alice, "Acme Inc")
	bob := createUser(t, st, "Bob", "bob@x.com")
	addMember(t, st, org, bob, domain.RoleMember)

	svc := &MemberService{Store: st}

	t.Run("members see the roster with user records attached", func(t *testing.T) {
		members, err := svc.List(ctx, org.Slug, bob.ID)
		require.NoError(t, err)
		require.Len(t, members, 2)
		for _, m := range members {
			require.NotEmpty(t, m.User.Email)
			require.Equal(t, org.ID, m.OrganizationID)
		}
	})

	t.Run("billing sees the organization but not the roster", func(t *testing.T) {
		beth := createUser(t, st, "Beth", "beth@x.com")
		addMember(t, st, org, beth, domain.RoleBilling)
		_, err := svc.List(ctx, org.Slug, beth.ID)
		require.ErrorIs(t, err, ErrPermissionDenied)
	})

	t.Run("non-members get nothing", func(t *testing.T) {
		eve := createUser(t, st, "Eve", "eve@other.com")
		_, err := svc.List(ctx, org.Slug, eve.ID)
		require.ErrorIs(t, err, ErrNotAMember)
	})
}

func TestUpdateMemberRole(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	alice := createUser(t, st, "Alice", "alice@acme.com")
	org := createOrg(t, st, alice, "Acme Inc")
	bob := createUser(t, st, "Bob", "bob@x.com")
	carol := createUser(t, st, "Carol", "carol@x.com")
	addMember(t, st, org, bob, domain.RoleMember)
	addMember(t, st, org, carol, domain.RoleAdmin)

	svc := &MemberService{Store: st}

	t.Run("admins may promote and demote", func(t *testing.T) {
		require.NoError(t, svc.UpdateRole(ctx, org.Slug, carol.ID, bob.ID, domain.RoleBilling))
		m, err := st.Memberships().GetMembership(ctx, org.ID, bob.ID)
		require.NoError(t, err)
		require.Equal(t, domain.RoleBilling, m.Role)
	})

	t.Run("plain members may not", func(t *testing.T) {
		dave := createUser(t, st, "Dave", "dave@x.com")
		addMember(t, st, org, dave, domain.RoleMember)
		require.ErrorIs(t, svc.UpdateRole(ctx, org.Slug, dave.ID, bob.ID, domain.RoleAdmin), ErrPermissionDenied)
	})

	t.Run("OWNER is not assignable", func(t *testing.T) {
		require.ErrorIs(t, svc.UpdateRole(ctx, org.Slug, alice.ID, bob.ID, domain.RoleOwner), ErrInvalidRole)
		require.ErrorIs(t, svc.UpdateRole(ctx, org.Slug, alice.ID, bob.ID, domain.Role("ROOT")), ErrInvalidRole)
	})

	t.Run("the owner's role is pinned", func(t *testing.T) {
		require.ErrorIs(t, svc.UpdateRole(ctx, org.Slug, carol.ID, alice.ID, domain.RoleMember), ErrCannotChangeOwnRole)
	})

	t.Run("target must be a member", func(t *testing.T) {
		require.ErrorIs(t, svc.UpdateRole(ctx, org.Slug, alice.ID, idx.New(), domain.RoleMember), ErrMemberNotFound)
	})
}

func TestRemoveMember(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	alice := createUser(t, st, "Alice", "alice@acme.com")
	acme := createOrg(t, st, alice, "Acme Inc")
	other := createOrg(t, st, alice, "Other Org")
	bob := createUser(t, st, "Bob", "bob@x.com")
	addMember(t, st, acme, bob, domain.RoleMember)
	addMember(t, st, other, bob, domain.RoleMember)

	svc := &MemberService{Store: st}

	t.Run("the owner cannot be removed", func(t *testing.T) {
		admin := createUser(t, st, "Adam", "adam@x.com")
		addMember(t, st, acme, admin, domain.RoleAdmin)
		require.ErrorIs(t, svc.Remove(ctx, acme.Slug, admin.ID, alice.ID), ErrCannotRemoveOwner)
	})

	t.Run("members cannot remove anyone", func(t *testing.T) {
		require.ErrorIs(t, svc.Remove(ctx, acme.Slug, bob.ID, alice.ID), ErrPermissionDenied)
	})

	t.Run("removal is scoped to one organization", func(t *testing.T) {
		require.NoError(t, svc.Remove(ctx, acme.Slug, alice.ID, bob.ID))

		// Bob is out of acme but keeps his account and his other membership.
		_, err := (&OrganizationService{Store: st}).Get(ctx, acme.Slug, bob.ID)
		require.ErrorIs(t, err, ErrNotAMember)
		_, err = st.Users().GetUserByID(ctx, bob.ID)
		require.NoError(t, err)
		_, err = st.Memberships().GetMembership(ctx, other.ID, bob.ID)
		require.NoError(t, err)

		require.ErrorIs(t, svc.Remove(ctx, acme.Slug, alice.ID, bob.ID), ErrMemberNotFound)
	})
}

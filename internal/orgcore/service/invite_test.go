package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/crowdspire/orgcore/internal/orgcore/domain"
	"github.com/crowdspire/orgcore/internal/orgcore/notify"
	"github.com/crowdspire/orgcore/internal/orgcore/store"
	"github.com/crowdspire/orgcore/pkg/idx"
)

func TestCreateInvite(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	owner := createUser(t, st, "Alice", "alice@acme.com")
	org := createOrg(t, st, owner, "Acme Inc")

	dispatcher := &recordingDispatcher{}
	svc := &InviteService{Store: st, Dispatcher: dispatcher}

	t.Run("mints a pending invite and notifies", func(t *testing.T) {
		invite, err := svc.Create(ctx, org.ID, "bob@x.com", domain.RoleMember, owner.ID)
		require.NoError(t, err)
		require.Equal(t, org.ID, invite.OrganizationID)
		require.Equal(t, "bob@x.com", invite.Email)
		require.Equal(t, domain.RoleMember, invite.Role)
		require.Equal(t, owner.ID, invite.AuthorID)
		require.Equal(t, 1, dispatcher.inviteCount())
	})

	t.Run("second invite for the same email conflicts", func(t *testing.T) {
		_, err := svc.Create(ctx, org.ID, "bob@x.com", domain.RoleAdmin, owner.ID)
		require.ErrorIs(t, err, ErrInvitePending)

		invites, err := svc.ListPending(ctx, org.ID)
		require.NoError(t, err)
		require.Len(t, invites, 1)
	})

	t.Run("existing members cannot be invited", func(t *testing.T) {
		_, err := svc.Create(ctx, org.ID, owner.Email, domain.RoleMember, owner.ID)
		require.ErrorIs(t, err, ErrAlreadyMember)
	})

	t.Run("unknown organization", func(t *testing.T) {
		_, err := svc.Create(ctx, idx.New(), "carol@x.com", domain.RoleMember, owner.ID)
		require.ErrorIs(t, err, ErrOrganizationNotFound)
	})

	t.Run("rejects invalid input", func(t *testing.T) {
		_, err := svc.Create(ctx, org.ID, "not-an-email", domain.RoleMember, owner.ID)
		require.ErrorIs(t, err, ErrEmailRequired)

		_, err = svc.Create(ctx, org.ID, "carol@x.com", domain.Role("SUPERVISOR"), owner.ID)
		require.ErrorIs(t, err, ErrInvalidRole)
	})
}

func TestCreateInviteAutoJoinDomain(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	owner := createUser(t, st, "Alice", "alice@acme.com")
	orgSvc := &OrganizationService{Store: st}
	org, err := orgSvc.Create(ctx, owner.ID, "Acme Corp", "acme.com", true)
	require.NoError(t, err)

	svc := &InviteService{Store: st, Dispatcher: notify.LogDispatcher{}}

	_, err = svc.Create(ctx, org.ID, "new-hire@acme.com", domain.RoleMember, owner.ID)
	require.ErrorIs(t, err, ErrAutoJoinDomain)

	// Other domains still need invites.
	_, err = svc.Create(ctx, org.ID, "contractor@other.com", domain.RoleMember, owner.ID)
	require.NoError(t, err)
}

func TestCreateInviteConcurrentDuplicate(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	owner := createUser(t, st, "Alice", "alice@acme.com")
	org := createOrg(t, st, owner, "Acme Inc")
	svc := &InviteService{Store: st, Dispatcher: notify.LogDispatcher{}}

	errs := make([]error, 2)
	var wg sync.WaitGroup
	for i := range errs {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = svc.Create(ctx, org.ID, "bob@x.com", domain.RoleMember, owner.ID)
		}()
	}
	wg.Wait()

	var ok, conflict int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, ErrInvitePending):
			conflict++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	require.Equal(t, 1, ok)
	require.Equal(t, 1, conflict)

	invites, err := svc.ListPending(ctx, org.ID)
	require.NoError(t, err)
	require.Len(t, invites, 1)
}

func TestAcceptInvite(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	owner := createUser(t, st, "Alice", "alice@acme.com")
	org := createOrg(t, st, owner, "Acme Inc")
	bob := createUser(t, st, "Bob", "a@x.com")

	svc := &InviteService{Store: st, Dispatcher: notify.LogDispatcher{}}
	invite, err := svc.Create(ctx, org.ID, "a@x.com", domain.RoleMember, owner.ID)
	require.NoError(t, err)

	require.NoError(t, svc.Accept(ctx, invite.ID, bob.ID))

	// The membership exists with the invited role and the invite is gone.
	membership, err := st.Memberships().GetMembership(ctx, org.ID, bob.ID)
	require.NoError(t, err)
	require.Equal(t, domain.RoleMember, membership.Role)

	_, err = st.Invites().GetInviteByID(ctx, invite.ID)
	require.ErrorIs(t, err, store.ErrNotFound)

	// Accepting the same invite again finds nothing.
	require.ErrorIs(t, svc.Accept(ctx, invite.ID, bob.ID), ErrInviteNotFound)
}

func TestAcceptInviteEmailMismatch(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	owner := createUser(t, st, "Alice", "alice@acme.com")
	org := createOrg(t, st, owner, "Acme Inc")
	svc := &InviteService{Store: st, Dispatcher: notify.LogDispatcher{}}

	invite, err := svc.Create(ctx, org.ID, "a@x.com", domain.RoleMember, owner.ID)
	require.NoError(t, err)

	assertUnchanged := func(t *testing.T, user domain.User) {
		t.Helper()
		_, err := st.Invites().GetInviteByID(ctx, invite.ID)
		require.NoError(t, err, "invite must survive a failed acceptance")
		_, err = st.Memberships().GetMembership(ctx, org.ID, user.ID)
		require.ErrorIs(t, err, store.ErrNotFound, "no membership may be created")
	}

	t.Run("different address", func(t *testing.T) {
		mallory := createUser(t, st, "Mallory", "b@x.com")
		require.ErrorIs(t, svc.Accept(ctx, invite.ID, mallory.ID), ErrInviteEmailMismatch)
		assertUnchanged(t, mallory)
	})

	t.Run("comparison is byte-exact, no case folding", func(t *testing.T) {
		shouty := createUser(t, st, "Shouty", "A@X.com")
		require.ErrorIs(t, svc.Accept(ctx, invite.ID, shouty.ID), ErrInviteEmailMismatch)
		assertUnchanged(t, shouty)
	})
}

// errInjected simulates a storage failure between the membership insert and
// the invite delete inside Accept.
var errInjected = errors.New("injected failure")

type failDeleteStore struct {
	store.Store
}

func (s *failDeleteStore) WithTx(ctx context.Context, fn func(ctx context.Context, tx store.Tx) error) error {
	return s.Store.WithTx(ctx, func(ctx context.Context, tx store.Tx) error {
		return fn(ctx, &failDeleteTx{baseTx: tx})
	})
}

// baseTx lets failDeleteTx embed store.Tx without the field name colliding
// with the interface's Tx method.
type baseTx = store.Tx

type failDeleteTx struct {
	baseTx
}

func (t *failDeleteTx) Invites() store.Invites {
	return &failDeleteInvites{Invites: t.baseTx.Invites()}
}

type failDeleteInvites struct {
	store.Invites
}

func (r *failDeleteInvites) DeleteInvite(context.Context, idx.ID) error {
	return errInjected
}

func TestAcceptInviteIsAtomic(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	owner := createUser(t, st, "Alice", "alice@acme.com")
	org := createOrg(t, st, owner, "Acme Inc")
	bob := createUser(t, st, "Bob", "a@x.com")

	mint := &InviteService{Store: st, Dispatcher: notify.LogDispatcher{}}
	invite, err := mint.Create(ctx, org.ID, "a@x.com", domain.RoleMember, owner.ID)
	require.NoError(t, err)

	// The membership insert succeeds, then the invite delete blows up: the
	// whole transaction must roll back.
	broken := &InviteService{Store: &failDeleteStore{Store: st}, Dispatcher: notify.LogDispatcher{}}
	require.ErrorIs(t, broken.Accept(ctx, invite.ID, bob.ID), errInjected)

	_, err = st.Memberships().GetMembership(ctx, org.ID, bob.ID)
	require.ErrorIs(t, err, store.ErrNotFound, "membership insert must not survive the rollback")
	_, err = st.Invites().GetInviteByID(ctx, invite.ID)
	require.NoError(t, err, "invite must still be pending")

	// The untouched store accepts the same invite cleanly afterwards.
	require.NoError(t, mint.Accept(ctx, invite.ID, bob.ID))
}

func TestAcceptInviteRace(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	owner := createUser(t, st, "Alice", "alice@acme.com")
	org := createOrg(t, st, owner, "Acme Inc")
	bob := createUser(t, st, "Bob", "a@x.com")

	svc := &InviteService{Store: st, Dispatcher: notify.LogDispatcher{}}
	invite, err := svc.Create(ctx, org.ID, "a@x.com", domain.RoleMember, owner.ID)
	require.NoError(t, err)

	errs := make([]error, 2)
	var wg sync.WaitGroup
	for i := range errs {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = svc.Accept(ctx, invite.ID, bob.ID)
		}()
	}
	wg.Wait()

	var ok, notFound int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, ErrInviteNotFound):
			notFound++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	require.Equal(t, 1, ok, "exactly one accept must win")
	require.Equal(t, 1, notFound, "the loser must observe a missing invite")

	members, err := st.Memberships().ListMembersByOrganization(ctx, org.ID)
	require.NoError(t, err)
	require.Len(t, members, 2, "owner plus exactly one new membership")
}

func TestRevokeInvite(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	owner := createUser(t, st, "Alice", "alice@acme.com")
	org := createOrg(t, st, owner, "Acme Inc")
	svc := &InviteService{Store: st, Dispatcher: notify.LogDispatcher{}}

	t.Run("revokes a pending invite", func(t *testing.T) {
		invite, err := svc.Create(ctx, org.ID, "bob@x.com", domain.RoleMember, owner.ID)
		require.NoError(t, err)

		require.NoError(t, svc.Revoke(ctx, invite.ID))
		_, err = svc.Get(ctx, invite.ID)
		require.ErrorIs(t, err, ErrInviteNotFound)

		// Revoking again is NotFound; callers may treat it as done.
		require.ErrorIs(t, svc.Revoke(ctx, invite.ID), ErrInviteNotFound)
	})

	t.Run("revoke after acceptance", func(t *testing.T) {
		carol := createUser(t, st, "Carol", "carol@x.com")
		invite, err := svc.Create(ctx, org.ID, carol.Email, domain.RoleMember, owner.ID)
		require.NoError(t, err)
		require.NoError(t, svc.Accept(ctx, invite.ID, carol.ID))

		require.ErrorIs(t, svc.Revoke(ctx, invite.ID), ErrInviteNotFound)

		// The membership produced by the acceptance is untouched.
		_, err = st.Memberships().GetMembership(ctx, org.ID, carol.ID)
		require.NoError(t, err)
	})
}

func TestRejectInvite(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	owner := createUser(t, st, "Alice", "alice@acme.com")
	org := createOrg(t, st, owner, "Acme Inc")
	bob := createUser(t, st, "Bob", "bob@x.com")
	svc := &InviteService{Store: st, Dispatcher: notify.LogDispatcher{}}

	invite, err := svc.Create(ctx, org.ID, bob.Email, domain.RoleMember, owner.ID)
	require.NoError(t, err)

	t.Run("only the addressee may decline", func(t *testing.T) {
		mallory := createUser(t, st, "Mallory", "mallory@x.com")
		require.ErrorIs(t, svc.Reject(ctx, invite.ID, mallory.ID), ErrInviteEmailMismatch)
	})

	t.Run("declining deletes without a membership", func(t *testing.T) {
		require.NoError(t, svc.Reject(ctx, invite.ID, bob.ID))

		_, err := svc.Get(ctx, invite.ID)
		require.ErrorIs(t, err, ErrInviteNotFound)
		_, err = st.Memberships().GetMembership(ctx, org.ID, bob.ID)
		require.ErrorIs(t, err, store.ErrNotFound)
	})
}

func TestListPendingForEmail(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	alice := createUser(t, st, "Alice", "alice@acme.com")
	carol := createUser(t, st, "Carol", "carol@corp.com")
	orgA := createOrg(t, st, alice, "Acme Inc")
	orgB := createOrg(t, st, carol, "Corp Ltd")

	svc := &InviteService{Store: st, Dispatcher: notify.LogDispatcher{}}
	_, err := svc.Create(ctx, orgA.ID, "bob@x.com", domain.RoleMember, alice.ID)
	require.NoError(t, err)
	_, err = svc.Create(ctx, orgB.ID, "bob@x.com", domain.RoleAdmin, carol.ID)
	require.NoError(t, err)

	invites, err := svc.ListPendingForEmail(ctx, "bob@x.com")
	require.NoError(t, err)
	require.Len(t, invites, 2)

	// Matching is byte-exact, consistent with acceptance.
	invites, err = svc.ListPendingForEmail(ctx, "BOB@x.com")
	require.NoError(t, err)
	require.Empty(t, invites)
}

package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/crowdspire/orgcore/internal/orgcore/domain"
	"github.com/crowdspire/orgcore/internal/orgcore/notify"
	"github.com/crowdspire/orgcore/internal/orgcore/store"
	"github.com/crowdspire/orgcore/internal/orgcore/store/drivers/sqlite"
)

func newTestStore(t *testing.T) store.Store {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	require.NoError(t, st.ApplyMigrations())
	return st
}

func createUser(t *testing.T, st store.Store, name, email string) domain.User {
	t.Helper()

	svc := &UserService{Store: st}
	user, err := svc.Create(context.Background(), name, email)
	require.NoError(t, err)
	return user
}

func createOrg(t *testing.T, st store.Store, owner domain.User, name string) domain.Organization {
	t.Helper()

	svc := &OrganizationService{Store: st}
	org, err := svc.Create(context.Background(), owner.ID, name, "", false)
	require.NoError(t, err)
	return org
}

// addMember joins user to org with role, going through the invite flow the
// way production does.
func addMember(t *testing.T, st store.Store, org domain.Organization, user domain.User, role domain.Role) {
	t.Helper()

	svc := &InviteService{Store: st, Dispatcher: notify.LogDispatcher{}}
	invite, err := svc.Create(context.Background(), org.ID, user.Email, role, org.OwnerID)
	require.NoError(t, err)
	require.NoError(t, svc.Accept(context.Background(), invite.ID, user.ID))
}

// recordingDispatcher captures dispatched events for assertions.
type recordingDispatcher struct {
	mu         sync.Mutex
	invites    []domain.Invite
	recoveries []domain.Token
}

func (d *recordingDispatcher) InviteCreated(_ context.Context, _ domain.Organization, inv domain.Invite) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.invites = append(d.invites, inv)
	return nil
}

func (d *recordingDispatcher) PasswordRecoveryRequested(_ context.Context, _ domain.User, token domain.Token) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.recoveries = append(d.recoveries, token)
	return nil
}

func (d *recordingDispatcher) inviteCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.invites)
}

func (d *recordingDispatcher) recoveryCodes() []domain.Token {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]domain.Token(nil), d.recoveries...)
}

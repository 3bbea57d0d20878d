package store

import (
	"context"
	"errors"

	"github.com/crowdspire/orgcore/internal/orgcore/domain"
	"github.com/crowdspire/orgcore/pkg/idx"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers implement it and
// expose sub-repositories per aggregate. Every multi-row mutation in the core
// (invite create, invite accept, organization cascade) goes through WithTx so
// the uniqueness checks and writes land in one transaction.
type Store interface {
	Users() Users
	Organizations() Organizations
	Memberships() Memberships
	Invites() Invites
	Projects() Projects
	Tokens() Tokens

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction: commit when fn returns nil,
	// rollback otherwise. Prefer this over Tx. The context handed to fn
	// carries the driver's per-transaction deadline and must be used for
	// every call on tx.
	WithTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error

	// Close releases the underlying database handle.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transaction-scoped store. Reads through a Tx observe the
// transaction's own uncommitted writes.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	// CreateUser inserts a new user; ErrAlreadyExists on a duplicate email.
	CreateUser(ctx context.Context, u domain.User) error

	// GetUserByID returns a user by id.
	GetUserByID(ctx context.Context, id idx.ID) (domain.User, error)

	// GetUserByEmail returns a user by exact email match.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)
}

type Organizations interface {
	// CreateOrganization inserts a new organization; ErrAlreadyExists on a
	// duplicate slug.
	CreateOrganization(ctx context.Context, o domain.Organization) error

	GetOrganizationByID(ctx context.Context, id idx.ID) (domain.Organization, error)

	// GetOrganizationBySlug resolves the public identifier used by callers.
	GetOrganizationBySlug(ctx context.Context, slug string) (domain.Organization, error)

	// ListOrganizationsForUser returns every organization the user belongs
	// to, newest first.
	ListOrganizationsForUser(ctx context.Context, userID idx.ID) ([]domain.Organization, error)

	// ListOrganizationsByDomain returns organizations configured to
	// auto-attach users whose email matches domain.
	ListOrganizationsByDomain(ctx context.Context, dom string) ([]domain.Organization, error)

	// UpdateOrganization rewrites name, domain and the auto-attach flag.
	UpdateOrganization(ctx context.Context, id idx.ID, name, dom string, attachByDomain bool) error

	// UpdateOrganizationOwner rewrites owner_id during ownership transfer.
	UpdateOrganizationOwner(ctx context.Context, id, ownerID idx.ID) error

	// DeleteOrganization removes the organization row only; dependent rows
	// are removed explicitly by the cascade in the service layer.
	DeleteOrganization(ctx context.Context, id idx.ID) error
}

type Memberships interface {
	// CreateMembership inserts a membership; ErrAlreadyExists when the user
	// already belongs to the organization.
	CreateMembership(ctx context.Context, m domain.Membership) error

	// GetMembership returns the membership for (organization, user). This
	// lookup is the tenant-isolation boundary.
	GetMembership(ctx context.Context, orgID, userID idx.ID) (domain.Membership, error)

	// ListMembersByOrganization returns memberships joined with their users,
	// ordered by role then name.
	ListMembersByOrganization(ctx context.Context, orgID idx.ID) ([]domain.Member, error)

	// UpdateMembershipRole rewrites the role for (organization, user).
	UpdateMembershipRole(ctx context.Context, orgID, userID idx.ID, role domain.Role) error

	// DeleteMembership removes one member; ErrNotFound when absent.
	DeleteMembership(ctx context.Context, orgID, userID idx.ID) error

	// DeleteMembershipsByOrganization removes all memberships in the
	// organization (cascade step).
	DeleteMembershipsByOrganization(ctx context.Context, orgID idx.ID) error
}

type Invites interface {
	// CreateInvite inserts an invite; ErrAlreadyExists when a pending invite
	// for (organization, email) is already present.
	CreateInvite(ctx context.Context, inv domain.Invite) error

	GetInviteByID(ctx context.Context, id idx.ID) (domain.Invite, error)

	// GetPendingInvite returns the invite for (organization, email).
	GetPendingInvite(ctx context.Context, orgID idx.ID, email string) (domain.Invite, error)

	// ListInvitesByOrganization returns pending invites, newest first.
	ListInvitesByOrganization(ctx context.Context, orgID idx.ID) ([]domain.Invite, error)

	// ListInvitesByEmail returns pending invites addressed to email across
	// all organizations, newest first.
	ListInvitesByEmail(ctx context.Context, email string) ([]domain.Invite, error)

	// DeleteInvite removes one invite and reports ErrNotFound when the row
	// is already gone. Inside a transaction this is the sole synchronization
	// point between competing accept/revoke calls: exactly one delete
	// observes the row.
	DeleteInvite(ctx context.Context, id idx.ID) error

	// DeleteInvitesByOrganization removes all invites in the organization
	// (cascade step).
	DeleteInvitesByOrganization(ctx context.Context, orgID idx.ID) error
}

type Projects interface {
	// CreateProject inserts a project; ErrAlreadyExists on a duplicate slug
	// within the organization.
	CreateProject(ctx context.Context, p domain.Project) error

	GetProjectByID(ctx context.Context, id idx.ID) (domain.Project, error)

	// GetProjectBySlug scopes the lookup to one organization.
	GetProjectBySlug(ctx context.Context, orgID idx.ID, slug string) (domain.Project, error)

	// ListProjectsByOrganization returns the org's projects, newest first.
	ListProjectsByOrganization(ctx context.Context, orgID idx.ID) ([]domain.Project, error)

	// UpdateProject rewrites name and description.
	UpdateProject(ctx context.Context, id idx.ID, name, description string) error

	// DeleteProject removes one project; ErrNotFound when absent.
	DeleteProject(ctx context.Context, id idx.ID) error

	// DeleteProjectsByOrganization removes all projects in the organization
	// (cascade step).
	DeleteProjectsByOrganization(ctx context.Context, orgID idx.ID) error
}

type Tokens interface {
	// CreateToken stores a single-purpose user token.
	CreateToken(ctx context.Context, t domain.Token) error

	GetTokenByID(ctx context.Context, id idx.ID) (domain.Token, error)

	// DeleteToken removes a consumed token; ErrNotFound when absent.
	DeleteToken(ctx context.Context, id idx.ID) error
}

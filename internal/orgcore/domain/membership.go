package domain

import (
	"time"

	"github.com/crowdspire/orgcore/pkg/idx"
)

// Membership binds a user to an organization with exactly one role.
// Unique on (UserID, OrganizationID), enforced by the store.
type Membership struct {
	ID             idx.ID
	UserID         idx.ID
	OrganizationID idx.ID
	Role           Role
	CreatedAt      time.Time
}

// Member is a membership joined with its user, as returned by listings.
type Member struct {
	Membership
	User User
}

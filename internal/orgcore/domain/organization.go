package domain

import (
	"time"

	"github.com/crowdspire/orgcore/pkg/idx"
)

// Organization is the tenant boundary. Every membership, invite and project
// is scoped to exactly one organization.
type Organization struct {
	ID             idx.ID
	Slug           string // Unique public identifier
	Name           string
	Domain         string // Email domain for auto-attach, empty when unset
	AttachByDomain bool   // New users with a matching email domain join automatically
	OwnerID        idx.ID // Always references a user holding RoleOwner here
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// OwnedBy returns the owning user id, satisfying ability.Subject so rules can
// scope organization management to the owner.
func (o Organization) OwnedBy() idx.ID { return o.OwnerID }

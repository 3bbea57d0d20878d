package domain

import (
	"time"

	"github.com/crowdspire/orgcore/pkg/idx"
)

// Project is an organization-owned resource with a per-user owner, the
// canonical target for ownership-scoped permission rules. Slug is unique
// within the organization.
type Project struct {
	ID             idx.ID
	OrganizationID idx.ID
	OwnerID        idx.ID
	Name           string
	Slug           string
	Description    string // Can be empty
	AvatarURL      string // Can be empty
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// OwnedBy returns the owning user id, satisfying ability.Subject so rules
// like "members may update only their own projects" can be evaluated.
func (p Project) OwnedBy() idx.ID { return p.OwnerID }

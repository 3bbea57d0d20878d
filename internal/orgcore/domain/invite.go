package domain

import (
	"time"

	"github.com/crowdspire/orgcore/pkg/idx"
)

// Invite is a pending offer of a role in an organization, addressed to an
// email rather than a user id so it can be minted before the invitee has an
// account. An invite has no status column: acceptance and revocation both
// delete the row, so "pending" simply means the row exists. Unique on
// (OrganizationID, Email).
type Invite struct {
	ID             idx.ID
	OrganizationID idx.ID
	Email          string
	Role           Role
	AuthorID       idx.ID // Can be zero when the author account was removed
	CreatedAt      time.Time
}

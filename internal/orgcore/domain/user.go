package domain

import (
	"time"

	"github.com/crowdspire/orgcore/pkg/idx"
)

// User is an authenticated identity. Credential handling lives with the
// identity provider; the core only ever sees the resolved record.
type User struct {
	ID        idx.ID
	Email     string
	Name      string
	AvatarURL string // Can be empty
	CreatedAt time.Time
	UpdatedAt time.Time
}

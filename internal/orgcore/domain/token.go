package domain

import (
	"time"

	"github.com/crowdspire/orgcore/pkg/idx"
)

// TokenType discriminates single-purpose user tokens.
type TokenType string

// TokenPasswordRecovery is issued by the recovery flow; the token id itself
// is the opaque code handed to the notification dispatcher.
const TokenPasswordRecovery TokenType = "PASSWORD_RECOVERY"

// Token is a single-purpose, user-scoped token record.
type Token struct {
	ID        idx.ID
	Type      TokenType
	UserID    idx.ID
	CreatedAt time.Time
}

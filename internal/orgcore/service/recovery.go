package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/crowdspire/orgcore/internal/orgcore/domain"
	"github.com/crowdspire/orgcore/internal/orgcore/notify"
	"github.com/crowdspire/orgcore/internal/orgcore/store"
	"github.com/crowdspire/orgcore/pkg/idx"
	"github.com/crowdspire/orgcore/pkg/slogx"
)

// RecoveryService issues and consumes password recovery codes. The actual
// password change belongs to the identity provider; this service only owns
// the token lifecycle.
type RecoveryService struct {
	Store      store.Store
	Dispatcher notify.Dispatcher

	// TTL bounds how long a code stays valid. Zero means DefaultRecoveryTTL.
	TTL time.Duration
}

// DefaultRecoveryTTL is how long a recovery code stays valid unless
// configured otherwise.
const DefaultRecoveryTTL = 30 * time.Minute

// Request issues a recovery code for the account behind email. Unknown
// emails succeed silently so the endpoint cannot be used to probe which
// addresses have accounts.
func (s *RecoveryService) Request(ctx context.Context, email string) error {
	log := slogx.FromContext(ctx)

	user, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Debug("recovery requested for unknown email")
			return nil
		}
		return err
	}

	token := domain.Token{
		ID:        idx.New(),
		Type:      domain.TokenPasswordRecovery,
		UserID:    user.ID,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.Store.Tokens().CreateToken(ctx, token); err != nil {
		return err
	}

	// Fire-and-forget: the token row is committed, a delivery failure must
	// not undo it.
	if err := s.Dispatcher.PasswordRecoveryRequested(ctx, user, token); err != nil {
		log.Warn("recovery notification dispatch failed",
			slog.String("user_id", user.ID.String()),
			slog.Any("error", err),
		)
	}
	return nil
}

// Consume validates and burns a recovery code: it must exist, belong to
// userID, be of the recovery type and still be inside the TTL. The code is
// deleted in the same transaction, so it is single-use even under
// concurrent redemption.
func (s *RecoveryService) Consume(ctx context.Context, code idx.ID, userID idx.ID) error {
	ttl := s.TTL
	if ttl <= 0 {
		ttl = DefaultRecoveryTTL
	}

	return s.Store.WithTx(ctx, func(ctx context.Context, tx store.Tx) error {
		token, err := tx.Tokens().GetTokenByID(ctx, code)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrRecoveryCodeInvalid
			}
			return err
		}

		// A wrong owner or type reads the same as a missing code; no
		// detail leaks about codes issued to other accounts.
		if token.UserID != userID || token.Type != domain.TokenPasswordRecovery {
			return ErrRecoveryCodeInvalid
		}
		if time.Since(token.CreatedAt) > ttl {
			return ErrRecoveryCodeInvalid
		}

		if err := tx.Tokens().DeleteToken(ctx, token.ID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrRecoveryCodeInvalid
			}
			return err
		}
		return nil
	})
}

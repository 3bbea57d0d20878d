package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/crowdspire/orgcore/internal/orgcore/domain"
	"github.com/crowdspire/orgcore/internal/orgcore/store"
	"github.com/crowdspire/orgcore/pkg/idx"
	"github.com/crowdspire/orgcore/pkg/slogx"
)

// UserService creates and reads user records. Credentials never pass
// through here; the identity provider owns authentication.
type UserService struct {
	Store store.Store
}

// Create registers a user and, in the same transaction, attaches them as
// MEMBER to every organization that auto-attaches the email's domain. The
// email is stored exactly as given.
func (s *UserService) Create(ctx context.Context, name, email string) (domain.User, error) {
	if !strings.Contains(email, "@") {
		return domain.User{}, ErrEmailRequired
	}
	if name == "" {
		return domain.User{}, ErrNameRequired
	}

	now := time.Now().UTC()
	user := domain.User{
		ID:        idx.New(),
		Email:     email,
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}

	var attached []domain.Organization
	err := s.Store.WithTx(ctx, func(ctx context.Context, tx store.Tx) error {
		if err := tx.Users().CreateUser(ctx, user); err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				return ErrEmailTaken
			}
			return err
		}

		dom := emailDomain(email)
		if dom == "" {
			return nil
		}
		orgs, err := tx.Organizations().ListOrganizationsByDomain(ctx, dom)
		if err != nil {
			return err
		}
		for _, org := range orgs {
			err := tx.Memberships().CreateMembership(ctx, domain.Membership{
				ID:             idx.New(),
				UserID:         user.ID,
				OrganizationID: org.ID,
				Role:           domain.RoleMember,
				CreatedAt:      now,
			})
			if err != nil {
				return err
			}
		}
		attached = orgs
		return nil
	})
	if err != nil {
		return domain.User{}, err
	}

	log := slogx.FromContext(ctx)
	log.Info("user created", slog.String("user_id", user.ID.String()))
	for _, org := range attached {
		log.Info("user auto-attached by domain",
			slog.String("user_id", user.ID.String()),
			slog.String("organization_id", org.ID.String()),
		)
	}
	return user, nil
}

// Get returns a user by id.
func (s *UserService) Get(ctx context.Context, id idx.ID) (domain.User, error) {
	user, err := s.Store.Users().GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, err
	}
	return user, nil
}

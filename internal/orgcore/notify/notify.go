// Package notify delivers post-commit domain events to the outside world
// (invite emails, password recovery codes). Delivery is fire-and-forget:
// services log a dispatch failure and move on, because the domain write has
// already committed and must not be rolled back by a messaging problem.
package notify

import (
	"context"
	"log/slog"

	"github.com/crowdspire/orgcore/internal/orgcore/domain"
	"github.com/crowdspire/orgcore/pkg/slogx"
)

// Dispatcher is implemented by delivery backends.
type Dispatcher interface {
	// InviteCreated announces a freshly minted invite.
	InviteCreated(ctx context.Context, org domain.Organization, inv domain.Invite) error

	// PasswordRecoveryRequested hands the recovery code to the delivery
	// channel. The token id is the code.
	PasswordRecoveryRequested(ctx context.Context, user domain.User, token domain.Token) error
}

// LogDispatcher writes events to the context logger. Default in development
// and in tests.
type LogDispatcher struct{}

func (LogDispatcher) InviteCreated(ctx context.Context, org domain.Organization, inv domain.Invite) error {
	slogx.FromContext(ctx).Info("invite created",
		slog.String("invite_id", inv.ID.String()),
		slog.String("organization_slug", org.Slug),
		slog.String("email", inv.Email),
		slog.String("role", inv.Role.String()),
	)
	return nil
}

func (LogDispatcher) PasswordRecoveryRequested(ctx context.Context, user domain.User, token domain.Token) error {
	slogx.FromContext(ctx).Info("password recovery requested",
		slog.String("user_id", user.ID.String()),
		slog.String("code", token.ID.String()),
	)
	return nil
}

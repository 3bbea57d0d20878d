// seed inserts development sample data for local testing: two users, an
// organization with its owner membership, a project and a pending invite.
// Idempotent: it exits early when the dev owner already exists.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/crowdspire/orgcore/internal/orgcore/app"
	"github.com/crowdspire/orgcore/internal/orgcore/domain"
	"github.com/crowdspire/orgcore/internal/orgcore/service"
)

const (
	ownerEmail   = "owner@acme.test"
	memberEmail  = "member@acme.test"
	invitedEmail = "invited@example.test"
)

func main() {
	cfg, err := app.LoadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	application, err := app.New(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "init:", err)
		os.Exit(1)
	}
	defer application.Close()

	if err := seed(context.Background(), application); err != nil {
		fmt.Fprintln(os.Stderr, "seed:", err)
		os.Exit(1)
	}
}

func seed(ctx context.Context, application *app.Application) error {
	owner, err := application.Users.Create(ctx, "Dev Owner", ownerEmail)
	if errors.Is(err, service.ErrEmailTaken) {
		fmt.Println("seed data already present; nothing to do")
		return nil
	}
	if err != nil {
		return err
	}

	org, err := application.Organizations.Create(ctx, owner.ID, "Acme Inc", "acme.test", false)
	if err != nil {
		return err
	}

	member, err := application.Users.Create(ctx, "Dev Member", memberEmail)
	if err != nil {
		return err
	}
	invite, err := application.Invites.Create(ctx, org.ID, memberEmail, domain.RoleMember, owner.ID)
	if err != nil {
		return err
	}
	if err := application.Invites.Accept(ctx, invite.ID, member.ID); err != nil {
		return err
	}

	if _, err := application.Projects.Create(ctx, org.Slug, member.ID, "Website", "Marketing site"); err != nil {
		return err
	}
	if _, err := application.Invites.Create(ctx, org.ID, invitedEmail, domain.RoleBilling, owner.ID); err != nil {
		return err
	}

	fmt.Printf("seeded organization %q with owner %s and member %s\n", org.Slug, ownerEmail, memberEmail)
	return nil
}

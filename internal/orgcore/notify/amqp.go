package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/crowdspire/orgcore/internal/orgcore/domain"
)

// Routing keys consumed by the mailer worker.
const (
	routingInviteCreated    = "orgcore.invite.created"
	routingPasswordRecovery = "orgcore.password.recovery"
)

// AMQPDispatcher publishes events as JSON messages on a topic exchange.
type AMQPDispatcher struct {
	conn     *amqp.Connection
	ch       *amqp.Channel
	exchange string
}

// NewAMQPDispatcher dials url and declares a durable topic exchange.
func NewAMQPDispatcher(url, exchange string) (*AMQPDispatcher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial amqp: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}
	return &AMQPDispatcher{conn: conn, ch: ch, exchange: exchange}, nil
}

type inviteCreatedEvent struct {
	InviteID         string    `json:"invite_id"`
	OrganizationSlug string    `json:"organization_slug"`
	OrganizationName string    `json:"organization_name"`
	Email            string    `json:"email"`
	Role             string    `json:"role"`
	CreatedAt        time.Time `json:"created_at"`
}

type passwordRecoveryEvent struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Code   string `json:"code"`
}

func (d *AMQPDispatcher) InviteCreated(ctx context.Context, org domain.Organization, inv domain.Invite) error {
	return d.publish(ctx, routingInviteCreated, inviteCreatedEvent{
		InviteID:         inv.ID.String(),
		OrganizationSlug: org.Slug,
		OrganizationName: org.Name,
		Email:            inv.Email,
		Role:             inv.Role.String(),
		CreatedAt:        inv.CreatedAt,
	})
}

func (d *AMQPDispatcher) PasswordRecoveryRequested(ctx context.Context, user domain.User, token domain.Token) error {
	return d.publish(ctx, routingPasswordRecovery, passwordRecoveryEvent{
		UserID: user.ID.String(),
		Email:  user.Email,
		Code:   token.ID.String(),
	})
}

func (d *AMQPDispatcher) publish(ctx context.Context, key string, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return d.ch.PublishWithContext(ctx, d.exchange, key, false, false, amqp.Publishing{
		ContentType: "application/json",
		Body:        body,
	})
}

func (d *AMQPDispatcher) Close() error {
	if d.ch != nil {
		_ = d.ch.Close()
	}
	if d.conn != nil {
		return d.conn.Close()
	}
	return nil
}

// Package notifier delivers safety messages to trusted contacts. Delivery
// is best-effort: the check-in monitor never retries or rolls back a state
// transition because a notification failed.
package notifier

import (
	"context"
	"encoding/json"
	"time"

	"github.com/cofoundly/cofoundly-backend/internal/domain"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Notifier sends a message to a single trusted contact.
type Notifier interface {
	Notify(ctx context.Context, contact *domain.TrustedContact, message string) error
}

// Channel is the redis pub/sub channel consumed by the push gateway.
const Channel = "notifications:safety"

// payload is the wire shape published for the push gateway.
type payload struct {
	ContactID   string    `json:"contact_id"`
	DisplayName string    `json:"display_name"`
	Phone       *string   `json:"phone,omitempty"`
	Email       *string   `json:"email,omitempty"`
	Message     string    `json:"message"`
	SentAt      time.Time `json:"sent_at"`
}

type redisNotifier struct {
	client *redis.Client
	log    *zap.Logger
}

// NewRedisNotifier publishes notifications to the safety channel. Every
// dispatch and every failure is logged so undelivered alerts remain
// auditable.
func NewRedisNotifier(client *redis.Client, log *zap.Logger) Notifier {
	return &redisNotifier{client: client, log: log}
}

func (n *redisNotifier) Notify(ctx context.Context, contact *domain.TrustedContact, message string) error {
	body, err := json.Marshal(payload{
		ContactID:   contact.ID,
		DisplayName: contact.DisplayName,
		Phone:       contact.Phone,
		Email:       contact.Email,
		Message:     message,
		SentAt:      time.Now().UTC(),
	})
	if err != nil {
		return err
	}

	if err := n.client.Publish(ctx, Channel, body).Err(); err != nil {
		n.log.Error("failed to publish notification",
			zap.String("contact_id", contact.ID),
			zap.Error(err))
		return err
	}

	n.log.Info("notification dispatched",
		zap.String("contact_id", contact.ID),
		zap.String("message", message))
	return nil
}

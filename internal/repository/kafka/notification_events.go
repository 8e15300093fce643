package kafka

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/coachpulse/coachpulse/internal/domain/notification"
	"github.com/coachpulse/coachpulse/internal/obs/retry"
)

var _ notification.Events = (*NotificationEvents)(nil)

// NotificationEvents publishes notification.created feed events consumed by
// the web application's realtime feed. Publishing is best-effort from the
// dispatcher's point of view but retried briefly here, since a dropped feed
// event is invisible to the user until the next page load.
type NotificationEvents struct {
	p      *Producer
	policy retry.Policy
}

func NewNotificationEvents(p *Producer, log *zap.Logger) *NotificationEvents {
	return &NotificationEvents{p: p, policy: retry.DefaultPublishPolicy(log)}
}

type createdEvent struct {
	ID         string                `json:"id"`
	UserID     string                `json:"user_id"`
	Type       string                `json:"type"`
	Title      string                `json:"title"`
	ActionLink string                `json:"action_link,omitempty"`
	Priority   notification.Priority `json:"priority"`
	SentAt     time.Time             `json:"sent_at"`
}

func (e *NotificationEvents) PublishCreated(ctx context.Context, n *notification.Notification) error {
	ev := createdEvent{
		ID:         n.ID,
		UserID:     n.UserID,
		Type:       n.Type,
		Title:      n.Title,
		ActionLink: n.ActionLink,
		Priority:   n.Priority,
		SentAt:     n.SentAt,
	}
	return retry.Do(ctx, func() error {
		return e.p.PublishJSON(ctx, []byte(n.UserID), ev)
	}, e.policy)
}

package notification

import (
	"context"
	"time"
)

type Repo interface {
	Create(ctx context.Context, n *Notification) error
	// CountForUserSince backs the per-student skip-gate: how many
	// notifications were already sent to this user at or after the given
	// instant (start of the current day, in practice).
	CountForUserSince(ctx context.Context, userID string, since time.Time) (int, error)
}

type EmailSender interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// Events is the feed-event fan-out consumed by the web application.
type Events interface {
	PublishCreated(ctx context.Context, n *Notification) error
}

type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

package repo

import (
	"context"
	"time"

	"github.com/coachpulse/coachpulse/internal/domain/notification"
	"github.com/coachpulse/coachpulse/internal/domain/reminder"
)

type ReminderStore struct{ R reminder.Repo }
type NotificationStore struct{ R notification.Repo }

func (a ReminderStore) ListActive(ctx context.Context) ([]*reminder.Reminder, error) {
	return a.R.ListActive(ctx)
}

func (a ReminderStore) ListAll(ctx context.Context) ([]*reminder.Reminder, error) {
	return a.R.ListAll(ctx)
}

func (a ReminderStore) UpdateDueAt(ctx context.Context, id string, due time.Time) error {
	return a.R.UpdateDueAt(ctx, id, due)
}

func (a NotificationStore) Create(ctx context.Context, n *notification.Notification) error {
	return a.R.Create(ctx, n)
}

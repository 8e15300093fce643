package repo

import (
	"context"
	"time"

	"github.com/coachpulse/coachpulse/internal/domain/activity"
	"github.com/coachpulse/coachpulse/internal/domain/notification"
	"github.com/coachpulse/coachpulse/internal/domain/student"
)

type StudentReader struct{ R student.Repo }
type ActivityCounts struct{ R activity.Repo }
type NotificationStore struct{ R notification.Repo }

func (a StudentReader) ListActive(ctx context.Context) ([]*student.Student, error) {
	return a.R.ListActive(ctx)
}

func (a ActivityCounts) CountSince(ctx context.Context, userID string, kind activity.Kind, since time.Time) (int, error) {
	return a.R.CountSince(ctx, userID, kind, since)
}

func (a NotificationStore) Create(ctx context.Context, n *notification.Notification) error {
	return a.R.Create(ctx, n)
}

func (a NotificationStore) CountForUserSince(ctx context.Context, userID string, since time.Time) (int, error) {
	return a.R.CountForUserSince(ctx, userID, since)
}

package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/coachpulse/coachpulse/internal/domain/notification"
)

var _ notification.Repo = (*NotificationRepo)(nil)

type NotificationRepo struct{ db *DB }

func NewNotificationRepo(db *DB) *NotificationRepo { return &NotificationRepo{db: db} }

const (
	qNotifInsert = `
INSERT INTO notifications (id, user_id, type, title, message, action_link, is_read, priority, sent_at)
VALUES ($1, $2, $3, $4, $5, $6, FALSE, $7, COALESCE($8, now()))
RETURNING sent_at;
`
	qNotifCountSince = `
SELECT count(*)
FROM notifications
WHERE user_id = $1 AND sent_at >= $2;
`
)

func (r *NotificationRepo) Create(ctx context.Context, n *notification.Notification) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	n.IsRead = false

	if err := r.db.Pool.QueryRow(ctx, qNotifInsert,
		n.ID,
		n.UserID,
		n.Type,
		n.Title,
		n.Message,
		n.ActionLink,
		string(n.Priority),
		nullTime(n.SentAt),
	).Scan(&n.SentAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrConflict
		}
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

func (r *NotificationRepo) CountForUserSince(ctx context.Context, userID string, since time.Time) (int, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	var n int
	if err := r.db.Pool.QueryRow(ctx, qNotifCountSince, userID, since).Scan(&n); err != nil {
		return 0, fmt.Errorf("count notifications: %w", err)
	}
	return n, nil
}

func nullTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/coachpulse/coachpulse/internal/domain/reminder"
)

var _ reminder.Repo = (*ReminderRepo)(nil)

type ReminderRepo struct {
	db  *DB
	log *zap.Logger
}

func NewReminderRepo(db *DB, log *zap.Logger) *ReminderRepo {
	return &ReminderRepo{db: db, log: log.With(zap.String("component", "postgres.reminders"))}
}

const (
	qRemindersSelect = `
SELECT id, title, COALESCE(description, ''),
       due_at, due_date, due_time,
       active, recurring, COALESCE(recurrence, ''),
       user_id, user_email, user_first_name, user_last_name
FROM reminders
`
	qRemindersActive = qRemindersSelect + `WHERE active = TRUE ORDER BY created_at;`
	qRemindersAll    = qRemindersSelect + `ORDER BY created_at;`

	// The canonical combined timestamp replaces whichever historical format
	// the row carried.
	qReminderBumpDue = `
UPDATE reminders
SET due_at = $2, due_date = NULL, due_time = NULL, updated_at = NOW()
WHERE id = $1;
`
)

func (r *ReminderRepo) ListActive(ctx context.Context) ([]*reminder.Reminder, error) {
	return r.list(ctx, qRemindersActive)
}

func (r *ReminderRepo) ListAll(ctx context.Context) ([]*reminder.Reminder, error) {
	return r.list(ctx, qRemindersAll)
}

func (r *ReminderRepo) list(ctx context.Context, q string) ([]*reminder.Reminder, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	rows, err := r.db.Pool.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("query reminders: %w", err)
	}
	defer rows.Close()

	var out []*reminder.Reminder
	for rows.Next() {
		rm, err := r.scanReminder(rows)
		if err != nil {
			return nil, err
		}
		if rm == nil {
			continue // unparseable due timestamp, already logged
		}
		out = append(out, rm)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return out, nil
}

func (r *ReminderRepo) UpdateDueAt(ctx context.Context, id string, due time.Time) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	tag, err := r.db.Pool.Exec(ctx, qReminderBumpDue, id, due.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("update reminder due: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// scanReminder normalizes the dual due-timestamp representation at the
// ingestion boundary. Rows whose due columns cannot be parsed are dropped
// with a warning rather than failing the whole fetch.
func (r *ReminderRepo) scanReminder(rows pgx.Rows) (*reminder.Reminder, error) {
	var (
		rm                     reminder.Reminder
		rec                    string
		combined, ldate, ltime *string
	)
	if err := rows.Scan(
		&rm.ID, &rm.Title, &rm.Description,
		&combined, &ldate, &ltime,
		&rm.Active, &rm.Recurring, &rec,
		&rm.UserID, &rm.UserEmail, &rm.UserFirstName, &rm.UserLastName,
	); err != nil {
		return nil, fmt.Errorf("scan reminder: %w", err)
	}
	rm.Recurrence = reminder.Pattern(rec)

	due, err := reminder.NormalizeDue(deref(combined), deref(ldate), deref(ltime))
	if err != nil {
		r.log.Warn("reminder with malformed due timestamp skipped",
			zap.String("reminder_id", rm.ID), zap.Error(err))
		return nil, nil
	}
	rm.DueAt = due
	return &rm, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

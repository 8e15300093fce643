package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/coachpulse/coachpulse/internal/domain/activity"
)

var _ activity.Repo = (*ActivityRepo)(nil)

// ActivityRepo reads the activity_events stream (reports, leads, coach calls)
// maintained by the web application.
type ActivityRepo struct{ db *DB }

func NewActivityRepo(db *DB) *ActivityRepo { return &ActivityRepo{db: db} }

const qActivityCountSince = `
SELECT count(*)
FROM activity_events
WHERE user_id = $1 AND kind = $2 AND occurred_at >= $3;
`

func (r *ActivityRepo) CountSince(ctx context.Context, userID string, kind activity.Kind, since time.Time) (int, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	var n int
	if err := r.db.Pool.QueryRow(ctx, qActivityCountSince, userID, string(kind), since).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s events: %w", kind, err)
	}
	return n, nil
}

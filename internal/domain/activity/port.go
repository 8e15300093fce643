package activity

import (
	"context"
	"time"
)

// Repo reads the activity event stream written by the web application.
type Repo interface {
	CountSince(ctx context.Context, userID string, kind Kind, since time.Time) (int, error)
}

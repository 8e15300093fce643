package reminder

import (
	"context"
	"time"
)

type Repo interface {
	ListActive(ctx context.Context) ([]*Reminder, error)
	ListAll(ctx context.Context) ([]*Reminder, error)
	UpdateDueAt(ctx context.Context, id string, due time.Time) error
}

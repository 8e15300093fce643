package student

import "context"

// Repo is read-only: students are created and managed by the web application.
type Repo interface {
	ListActive(ctx context.Context) ([]*Student, error)
}

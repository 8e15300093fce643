package postgres

import (
	"context"
	"fmt"

	"github.com/coachpulse/coachpulse/internal/domain/student"
)

var _ student.Repo = (*StudentRepo)(nil)

type StudentRepo struct{ db *DB }

func NewStudentRepo(db *DB) *StudentRepo { return &StudentRepo{db: db} }

const qStudentsActive = `
SELECT id, email, first_name, last_name
FROM students
WHERE active = TRUE
ORDER BY created_at;
`

func (r *StudentRepo) ListActive(ctx context.Context) ([]*student.Student, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	rows, err := r.db.Pool.Query(ctx, qStudentsActive)
	if err != nil {
		return nil, fmt.Errorf("query students: %w", err)
	}
	defer rows.Close()

	var out []*student.Student
	for rows.Next() {
		st := student.Student{Active: true}
		if err := rows.Scan(&st.ID, &st.Email, &st.FirstName, &st.LastName); err != nil {
			return nil, fmt.Errorf("scan student: %w", err)
		}
		out = append(out, &st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return out, nil
}

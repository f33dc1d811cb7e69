package extension

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository implements Repository using pgxpool.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new Repository backed by the given connection pool.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &PostgresRepository{pool: pool}
}

// Create inserts a new deadline extension record.
func (r *PostgresRepository) Create(ctx context.Context, e *DeadlineExtension) error {
	query := `
		INSERT INTO deadline_extensions (course_id, session_name, user_email, is_instructor, end_time)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`

	err := r.pool.QueryRow(ctx, query,
		e.CourseID, e.SessionName, e.UserEmail, e.IsInstructor, e.EndTime,
	).Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return fmt.Errorf("inserting deadline extension: %w", err)
	}
	return nil
}

// GetForParticipant retrieves a participant's extensions in a course.
func (r *PostgresRepository) GetForParticipant(ctx context.Context, courseID, email string, isInstructor bool) ([]DeadlineExtension, error) {
	query := `
		SELECT id, course_id, session_name, user_email, is_instructor, end_time, created_at, updated_at
		FROM deadline_extensions
		WHERE course_id = $1 AND user_email = $2 AND is_instructor = $3
		ORDER BY end_time ASC`

	rows, err := r.pool.Query(ctx, query, courseID, email, isInstructor)
	if err != nil {
		return nil, fmt.Errorf("listing deadline extensions: %w", err)
	}
	defer rows.Close()

	var extensions []DeadlineExtension
	for rows.Next() {
		var e DeadlineExtension
		err := rows.Scan(&e.ID, &e.CourseID, &e.SessionName, &e.UserEmail,
			&e.IsInstructor, &e.EndTime, &e.CreatedAt, &e.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("scanning deadline extension row: %w", err)
		}
		extensions = append(extensions, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating deadline extension rows: %w", err)
	}

	return extensions, nil
}

// DeleteForParticipant removes all extensions held by the participant in the
// course. Deleting for a participant with no extensions is a no-op.
func (r *PostgresRepository) DeleteForParticipant(ctx context.Context, courseID, email string, isInstructor bool) error {
	query := `
		DELETE FROM deadline_extensions
		WHERE course_id = $1 AND user_email = $2 AND is_instructor = $3`

	if _, err := r.pool.Exec(ctx, query, courseID, email, isInstructor); err != nil {
		return fmt.Errorf("deleting deadline extensions: %w", err)
	}
	return nil
}

package course

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
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

// Create inserts a new course record.
func (r *PostgresRepository) Create(ctx context.Context, c *Course) error {
	query := `
		INSERT INTO courses (id, name, institute, time_zone)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at`

	err := r.pool.QueryRow(ctx, query, c.ID, c.Name, c.Institute, c.TimeZone).
		Scan(&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("inserting course: %w", err)
	}
	return nil
}

// GetByID retrieves a single course.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*Course, error) {
	query := `
		SELECT id, name, institute, time_zone, created_at, updated_at
		FROM courses
		WHERE id = $1`

	var c Course
	err := r.pool.QueryRow(ctx, query, id).
		Scan(&c.ID, &c.Name, &c.Institute, &c.TimeZone, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("querying course: %w", err)
	}
	return &c, nil
}

// GetSection retrieves a section by course and name.
func (r *PostgresRepository) GetSection(ctx context.Context, courseID, name string) (*Section, error) {
	query := `
		SELECT id, course_id, name, created_at, updated_at
		FROM sections
		WHERE course_id = $1 AND name = $2`

	var s Section
	err := r.pool.QueryRow(ctx, query, courseID, name).
		Scan(&s.ID, &s.CourseID, &s.Name, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSectionNotFound
		}
		return nil, fmt.Errorf("querying section: %w", err)
	}
	return &s, nil
}

// EnsureTeam creates the section and team records if they do not exist yet.
// Returns ErrTeamInAnotherSection when the team name is already taken by a
// different section of the same course.
func (r *PostgresRepository) EnsureTeam(ctx context.Context, courseID, sectionName, teamName string) error {
	sectionQuery := `
		INSERT INTO sections (course_id, name)
		VALUES ($1, $2)
		ON CONFLICT (course_id, name) DO UPDATE SET updated_at = sections.updated_at
		RETURNING id`

	var sectionID string
	if err := r.pool.QueryRow(ctx, sectionQuery, courseID, sectionName).Scan(&sectionID); err != nil {
		return fmt.Errorf("ensuring section: %w", err)
	}

	collisionQuery := `
		SELECT COUNT(*)
		FROM teams t
		JOIN sections s ON s.id = t.section_id
		WHERE s.course_id = $1 AND t.name = $2 AND s.id <> $3`

	var collisions int
	if err := r.pool.QueryRow(ctx, collisionQuery, courseID, teamName, sectionID).Scan(&collisions); err != nil {
		return fmt.Errorf("checking team name collisions: %w", err)
	}
	if collisions > 0 {
		return ErrTeamInAnotherSection
	}

	teamQuery := `
		INSERT INTO teams (section_id, name)
		VALUES ($1, $2)
		ON CONFLICT (section_id, name) DO NOTHING`

	if _, err := r.pool.Exec(ctx, teamQuery, sectionID, teamName); err != nil {
		return fmt.Errorf("ensuring team: %w", err)
	}
	return nil
}

package participant

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrDuplicateInstructor is returned when an instructor with the same course
// and email already exists.
var ErrDuplicateInstructor = errors.New("instructor already exists")

// ErrDuplicateStudent is returned when a student with the same course and
// email already exists.
var ErrDuplicateStudent = errors.New("student already exists")

// PostgresRepository implements Repository using pgxpool.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new Repository backed by the given connection pool.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &PostgresRepository{pool: pool}
}

const instructorColumns = `
	id, course_id, name, email, google_id, display_name, role,
	is_displayed_to_students, privileges, regkey_prefix, regkey_hash,
	created_at, updated_at`

const studentColumns = `
	id, course_id, name, email, google_id, section_name, team_name,
	comments, regkey_prefix, regkey_hash, created_at, updated_at`

// CreateInstructor inserts a new instructor record.
func (r *PostgresRepository) CreateInstructor(ctx context.Context, i *Instructor) error {
	privileges, err := json.Marshal(i.Privileges)
	if err != nil {
		return fmt.Errorf("encoding privileges: %w", err)
	}

	query := `
		INSERT INTO instructors (course_id, name, email, google_id, display_name, role,
		                         is_displayed_to_students, privileges, regkey_prefix, regkey_hash)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at`

	err = r.pool.QueryRow(ctx, query,
		i.CourseID, i.Name, i.Email, i.GoogleID, i.DisplayName, i.Role,
		i.IsDisplayedToStudents, privileges, i.RegKeyPrefix, i.RegKeyHash,
	).Scan(&i.ID, &i.CreatedAt, &i.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateInstructor
		}
		return fmt.Errorf("inserting instructor: %w", err)
	}

	return nil
}

// GetInstructor retrieves a single instructor by its UUID.
func (r *PostgresRepository) GetInstructor(ctx context.Context, id uuid.UUID) (*Instructor, error) {
	query := fmt.Sprintf(`SELECT %s FROM instructors WHERE id = $1`, instructorColumns)
	return r.scanInstructor(ctx, query, id)
}

// GetInstructorByEmail retrieves an instructor by its natural key.
func (r *PostgresRepository) GetInstructorByEmail(ctx context.Context, courseID, email string) (*Instructor, error) {
	query := fmt.Sprintf(`SELECT %s FROM instructors WHERE course_id = $1 AND email = $2`, instructorColumns)
	return r.scanInstructor(ctx, query, courseID, email)
}

// GetInstructorByGoogleID retrieves an instructor by its linked account.
func (r *PostgresRepository) GetInstructorByGoogleID(ctx context.Context, courseID, googleID string) (*Instructor, error) {
	query := fmt.Sprintf(`SELECT %s FROM instructors WHERE course_id = $1 AND google_id = $2`, instructorColumns)
	return r.scanInstructor(ctx, query, courseID, googleID)
}

// GetInstructorsForCourse retrieves all instructors of a course, sorted by
// name.
func (r *PostgresRepository) GetInstructorsForCourse(ctx context.Context, courseID string) ([]Instructor, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM instructors
		WHERE course_id = $1
		ORDER BY LOWER(name) ASC`, instructorColumns)
	return r.scanInstructors(ctx, query, courseID)
}

// GetInstructorsDisplayedToStudents retrieves the instructors of a course
// that are visible in student-facing listings.
func (r *PostgresRepository) GetInstructorsDisplayedToStudents(ctx context.Context, courseID string) ([]Instructor, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM instructors
		WHERE course_id = $1 AND is_displayed_to_students
		ORDER BY LOWER(name) ASC`, instructorColumns)
	return r.scanInstructors(ctx, query, courseID)
}

// FindInstructorsByKeyPrefix retrieves the instructors whose registration
// key starts with the prefix.
func (r *PostgresRepository) FindInstructorsByKeyPrefix(ctx context.Context, prefix string) ([]Instructor, error) {
	query := fmt.Sprintf(`SELECT %s FROM instructors WHERE regkey_prefix = $1`, instructorColumns)
	return r.scanInstructors(ctx, query, prefix)
}

// UpdateInstructor persists all mutable instructor fields.
func (r *PostgresRepository) UpdateInstructor(ctx context.Context, i *Instructor) error {
	privileges, err := json.Marshal(i.Privileges)
	if err != nil {
		return fmt.Errorf("encoding privileges: %w", err)
	}

	query := `
		UPDATE instructors
		SET name = $1, email = $2, google_id = $3, display_name = $4, role = $5,
		    is_displayed_to_students = $6, privileges = $7,
		    regkey_prefix = $8, regkey_hash = $9, updated_at = NOW()
		WHERE id = $10
		RETURNING updated_at`

	err = r.pool.QueryRow(ctx, query,
		i.Name, i.Email, i.GoogleID, i.DisplayName, i.Role,
		i.IsDisplayedToStudents, privileges, i.RegKeyPrefix, i.RegKeyHash, i.ID,
	).Scan(&i.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrInstructorNotFound
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateInstructor
		}
		return fmt.Errorf("updating instructor: %w", err)
	}

	return nil
}

// DeleteInstructor removes an instructor by its natural key.
func (r *PostgresRepository) DeleteInstructor(ctx context.Context, courseID, email string) error {
	query := `DELETE FROM instructors WHERE course_id = $1 AND email = $2`

	if _, err := r.pool.Exec(ctx, query, courseID, email); err != nil {
		return fmt.Errorf("deleting instructor: %w", err)
	}
	return nil
}

// CreateStudent inserts a new student record.
func (r *PostgresRepository) CreateStudent(ctx context.Context, s *Student) error {
	query := `
		INSERT INTO students (course_id, name, email, google_id, section_name, team_name,
		                      comments, regkey_prefix, regkey_hash)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at`

	err := r.pool.QueryRow(ctx, query,
		s.CourseID, s.Name, s.Email, s.GoogleID, s.SectionName, s.TeamName,
		s.Comments, s.RegKeyPrefix, s.RegKeyHash,
	).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateStudent
		}
		return fmt.Errorf("inserting student: %w", err)
	}

	return nil
}

// GetStudent retrieves a single student by its UUID.
func (r *PostgresRepository) GetStudent(ctx context.Context, id uuid.UUID) (*Student, error) {
	query := fmt.Sprintf(`SELECT %s FROM students WHERE id = $1`, studentColumns)
	return r.scanStudent(ctx, query, id)
}

// GetStudentByEmail retrieves a student by its natural key.
func (r *PostgresRepository) GetStudentByEmail(ctx context.Context, courseID, email string) (*Student, error) {
	query := fmt.Sprintf(`SELECT %s FROM students WHERE course_id = $1 AND email = $2`, studentColumns)
	return r.scanStudent(ctx, query, courseID, email)
}

// GetStudentsForCourse retrieves all students of a course, sorted by name.
func (r *PostgresRepository) GetStudentsForCourse(ctx context.Context, courseID string) ([]Student, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM students
		WHERE course_id = $1
		ORDER BY LOWER(name) ASC`, studentColumns)
	return r.scanStudents(ctx, query, courseID)
}

// GetAllStudentsForEmail retrieves every student in the system using the
// email, across all courses.
func (r *PostgresRepository) GetAllStudentsForEmail(ctx context.Context, email string) ([]Student, error) {
	query := fmt.Sprintf(`SELECT %s FROM students WHERE email = $1`, studentColumns)
	return r.scanStudents(ctx, query, email)
}

// CountStudentsInTeam counts the members of a team within a course.
func (r *PostgresRepository) CountStudentsInTeam(ctx context.Context, courseID, teamName string) (int, error) {
	query := `SELECT COUNT(*) FROM students WHERE course_id = $1 AND team_name = $2`

	var count int
	if err := r.pool.QueryRow(ctx, query, courseID, teamName).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting team members: %w", err)
	}
	return count, nil
}

// FindStudentsByKeyPrefix retrieves the students whose registration key
// starts with the prefix.
func (r *PostgresRepository) FindStudentsByKeyPrefix(ctx context.Context, prefix string) ([]Student, error) {
	query := fmt.Sprintf(`SELECT %s FROM students WHERE regkey_prefix = $1`, studentColumns)
	return r.scanStudents(ctx, query, prefix)
}

// UpdateStudent persists all mutable student fields.
func (r *PostgresRepository) UpdateStudent(ctx context.Context, s *Student) error {
	query := `
		UPDATE students
		SET name = $1, email = $2, google_id = $3, section_name = $4, team_name = $5,
		    comments = $6, regkey_prefix = $7, regkey_hash = $8, updated_at = NOW()
		WHERE id = $9
		RETURNING updated_at`

	err := r.pool.QueryRow(ctx, query,
		s.Name, s.Email, s.GoogleID, s.SectionName, s.TeamName,
		s.Comments, s.RegKeyPrefix, s.RegKeyHash, s.ID,
	).Scan(&s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrStudentNotFound
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateStudent
		}
		return fmt.Errorf("updating student: %w", err)
	}

	return nil
}

// DeleteStudent removes a student by its natural key.
func (r *PostgresRepository) DeleteStudent(ctx context.Context, courseID, email string) error {
	query := `DELETE FROM students WHERE course_id = $1 AND email = $2`

	if _, err := r.pool.Exec(ctx, query, courseID, email); err != nil {
		return fmt.Errorf("deleting student: %w", err)
	}
	return nil
}

// CountUsersForGoogleID counts instructors and students linked to the
// account across all courses.
func (r *PostgresRepository) CountUsersForGoogleID(ctx context.Context, googleID string) (int, error) {
	query := `
		SELECT (SELECT COUNT(*) FROM instructors WHERE google_id = $1)
		     + (SELECT COUNT(*) FROM students WHERE google_id = $1)`

	var count int
	if err := r.pool.QueryRow(ctx, query, googleID).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting linked users: %w", err)
	}
	return count, nil
}

func (r *PostgresRepository) scanInstructor(ctx context.Context, query string, args ...any) (*Instructor, error) {
	i, err := scanInstructorRow(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInstructorNotFound
		}
		return nil, err
	}
	return i, nil
}

func (r *PostgresRepository) scanInstructors(ctx context.Context, query string, args ...any) ([]Instructor, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing instructors: %w", err)
	}
	defer rows.Close()

	var instructors []Instructor
	for rows.Next() {
		i, err := scanInstructorRow(rows)
		if err != nil {
			return nil, err
		}
		instructors = append(instructors, *i)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating instructor rows: %w", err)
	}

	return instructors, nil
}

func scanInstructorRow(row pgx.Row) (*Instructor, error) {
	var i Instructor
	var privileges []byte
	err := row.Scan(
		&i.ID, &i.CourseID, &i.Name, &i.Email, &i.GoogleID, &i.DisplayName, &i.Role,
		&i.IsDisplayedToStudents, &privileges, &i.RegKeyPrefix, &i.RegKeyHash,
		&i.CreatedAt, &i.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning instructor row: %w", err)
	}
	if err := json.Unmarshal(privileges, &i.Privileges); err != nil {
		return nil, fmt.Errorf("decoding privileges: %w", err)
	}
	return &i, nil
}

func (r *PostgresRepository) scanStudent(ctx context.Context, query string, args ...any) (*Student, error) {
	var s Student
	err := r.pool.QueryRow(ctx, query, args...).Scan(
		&s.ID, &s.CourseID, &s.Name, &s.Email, &s.GoogleID, &s.SectionName, &s.TeamName,
		&s.Comments, &s.RegKeyPrefix, &s.RegKeyHash, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrStudentNotFound
		}
		return nil, fmt.Errorf("scanning student row: %w", err)
	}
	return &s, nil
}

func (r *PostgresRepository) scanStudents(ctx context.Context, query string, args ...any) ([]Student, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing students: %w", err)
	}
	defer rows.Close()

	var students []Student
	for rows.Next() {
		var s Student
		err := rows.Scan(
			&s.ID, &s.CourseID, &s.Name, &s.Email, &s.GoogleID, &s.SectionName, &s.TeamName,
			&s.Comments, &s.RegKeyPrefix, &s.RegKeyHash, &s.CreatedAt, &s.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning student row: %w", err)
		}
		students = append(students, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating student rows: %w", err)
	}

	return students, nil
}

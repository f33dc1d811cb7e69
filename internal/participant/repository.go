package participant

import (
	"context"

	"github.com/google/uuid"
)

// Repository provides access to instructor and student records. Lookups
// return the package's not-found sentinels rather than raw storage errors
// when the target is absent.
type Repository interface {
	CreateInstructor(ctx context.Context, instructor *Instructor) error
	GetInstructor(ctx context.Context, id uuid.UUID) (*Instructor, error)
	GetInstructorByEmail(ctx context.Context, courseID, email string) (*Instructor, error)
	GetInstructorByGoogleID(ctx context.Context, courseID, googleID string) (*Instructor, error)
	GetInstructorsForCourse(ctx context.Context, courseID string) ([]Instructor, error)
	GetInstructorsDisplayedToStudents(ctx context.Context, courseID string) ([]Instructor, error)
	FindInstructorsByKeyPrefix(ctx context.Context, prefix string) ([]Instructor, error)
	UpdateInstructor(ctx context.Context, instructor *Instructor) error
	DeleteInstructor(ctx context.Context, courseID, email string) error

	CreateStudent(ctx context.Context, student *Student) error
	GetStudent(ctx context.Context, id uuid.UUID) (*Student, error)
	GetStudentByEmail(ctx context.Context, courseID, email string) (*Student, error)
	GetStudentsForCourse(ctx context.Context, courseID string) ([]Student, error)
	GetAllStudentsForEmail(ctx context.Context, email string) ([]Student, error)
	CountStudentsInTeam(ctx context.Context, courseID, teamName string) (int, error)
	FindStudentsByKeyPrefix(ctx context.Context, prefix string) ([]Student, error)
	UpdateStudent(ctx context.Context, student *Student) error
	DeleteStudent(ctx context.Context, courseID, email string) error

	CountUsersForGoogleID(ctx context.Context, googleID string) (int, error)
}

package course

import (
	"context"
	"errors"
)

// ErrCourseNotFound is returned when a course record is not found.
var ErrCourseNotFound = errors.New("course not found")

// ErrSectionNotFound is returned when a section record is not found.
var ErrSectionNotFound = errors.New("section not found")

// ErrTeamInAnotherSection is returned when a team name already exists under
// a different section of the same course.
var ErrTeamInAnotherSection = errors.New("team name used by another section")

// Repository provides access to courses, sections and teams.
type Repository interface {
	Create(ctx context.Context, course *Course) error
	GetByID(ctx context.Context, id string) (*Course, error)
	GetSection(ctx context.Context, courseID, name string) (*Section, error)
	EnsureTeam(ctx context.Context, courseID, sectionName, teamName string) error
}

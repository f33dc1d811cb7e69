package course

import (
	"time"

	"github.com/google/uuid"
)

// Course is the tenant root. Its ID is the external course identifier, not a
// surrogate key.
type Course struct {
	ID        string
	Name      string
	Institute string
	TimeZone  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Section groups teams within a course. A section name is unique within its
// course.
type Section struct {
	ID        uuid.UUID
	CourseID  string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Team groups students within a section. A team name must not appear in two
// different sections of the same course.
type Team struct {
	ID        uuid.UUID
	SectionID uuid.UUID
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

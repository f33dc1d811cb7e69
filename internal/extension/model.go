package extension

import (
	"time"

	"github.com/google/uuid"
)

// DeadlineExtension represents a row in the deadline_extensions table. An
// extension grants one participant extra time on one feedback session and is
// removed when that participant is deleted.
type DeadlineExtension struct {
	ID           uuid.UUID
	CourseID     string
	SessionName  string
	UserEmail    string
	IsInstructor bool
	EndTime      time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

package participant

import (
	"errors"
	"strings"
)

// ErrInstructorNotFound is returned when an instructor record is not found.
var ErrInstructorNotFound = errors.New("instructor not found")

// ErrStudentNotFound is returned when a student record is not found.
var ErrStudentNotFound = errors.New("student not found")

// ErrDuplicateStudentEmail is returned when a student email rename collides
// with an existing student.
var ErrDuplicateStudentEmail = errors.New("duplicate email")

// ErrInstructorUpdateFailed is returned when an instructor edit would violate
// a course invariant or the registration key could not be regenerated.
var ErrInstructorUpdateFailed = errors.New("instructor update failed")

// ErrStudentUpdateFailed is returned when the student registration key could
// not be regenerated.
var ErrStudentUpdateFailed = errors.New("student update failed")

// ErrInvalidRegistrationKey is returned when a raw registration key does not
// resolve to any participant.
var ErrInvalidRegistrationKey = errors.New("invalid registration key")

// InvalidParametersError reports the fields of a mutated entity that failed
// its own validity check.
type InvalidParametersError struct {
	Issues []string
}

func (e *InvalidParametersError) Error() string {
	return strings.Join(e.Issues, "; ")
}

// EnrollmentError carries the combined human-readable section and team
// conflict message produced by roster validation. The message is intended
// for direct display.
type EnrollmentError struct {
	Message string
}

func (e *EnrollmentError) Error() string {
	return e.Message
}

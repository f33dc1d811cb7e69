package participant

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// Instructor roles, in decreasing order of default privilege.
const (
	RoleCoowner  = "Co-owner"
	RoleManager  = "Manager"
	RoleObserver = "Observer"
	RoleTutor    = "Tutor"
	RoleCustom   = "Custom"
)

// Course-level instructor permission names.
const (
	CanModifyCourse     = "canmodifycourse"
	CanModifyInstructor = "canmodifyinstructor"
	CanModifySession    = "canmodifysession"
	CanModifyStudent    = "canmodifystudent"
	CanViewStudents     = "canviewstudentinsections"
	CanViewSessions     = "canviewsessioninsections"
	CanSubmitSessions   = "cansubmitsessioninsections"
)

// DefaultDisplayName is used when an instructor update carries no display name.
const DefaultDisplayName = "Instructor"

// Privileges is the set of course-level permissions an instructor holds.
type Privileges map[string]bool

// Can reports whether the permission is granted.
func (p Privileges) Can(permission string) bool {
	return p[permission]
}

// Grant adds the permission to the set.
func (p Privileges) Grant(permission string) {
	p[permission] = true
}

// Clone returns an independent copy of the privilege set.
func (p Privileges) Clone() Privileges {
	c := make(Privileges, len(p))
	for k, v := range p {
		c[k] = v
	}
	return c
}

// PrivilegesForRole returns the default privilege set for an instructor role.
// A custom role starts with view-only permissions.
func PrivilegesForRole(role string) Privileges {
	switch role {
	case RoleCoowner:
		return Privileges{
			CanModifyCourse:     true,
			CanModifyInstructor: true,
			CanModifySession:    true,
			CanModifyStudent:    true,
			CanViewStudents:     true,
			CanViewSessions:     true,
			CanSubmitSessions:   true,
		}
	case RoleManager:
		return Privileges{
			CanModifyInstructor: true,
			CanModifySession:    true,
			CanModifyStudent:    true,
			CanViewStudents:     true,
			CanViewSessions:     true,
			CanSubmitSessions:   true,
		}
	case RoleObserver:
		return Privileges{
			CanViewStudents: true,
			CanViewSessions: true,
		}
	case RoleTutor:
		return Privileges{
			CanModifyStudent:  true,
			CanViewStudents:   true,
			CanViewSessions:   true,
			CanSubmitSessions: true,
		}
	default:
		return Privileges{
			CanViewStudents: true,
			CanViewSessions: true,
		}
	}
}

// Instructor represents a row in the instructors table.
type Instructor struct {
	ID                    uuid.UUID
	CourseID              string `validate:"required,max=64"`
	Name                  string `validate:"required,max=100"`
	Email                 string `validate:"required,email,max=254"`
	GoogleID              *string
	DisplayName           string `validate:"required,max=100"`
	Role                  string `validate:"required,oneof=Co-owner Manager Observer Tutor Custom"`
	IsDisplayedToStudents bool
	Privileges            Privileges
	RegKeyPrefix          string
	RegKeyHash            string
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// IsRegistered reports whether the instructor has joined with an account.
func (i *Instructor) IsRegistered() bool {
	return i.GoogleID != nil && *i.GoogleID != ""
}

// Validate checks the instructor's own field constraints.
func (i *Instructor) Validate() error {
	return validateStruct(i)
}

// Student represents a row in the students table.
type Student struct {
	ID           uuid.UUID
	CourseID     string `validate:"required,max=64"`
	Name         string `validate:"required,max=100"`
	Email        string `validate:"required,email,max=254"`
	GoogleID     *string
	SectionName  string `validate:"max=60"`
	TeamName     string `validate:"max=60"`
	Comments     string `validate:"max=500"`
	RegKeyPrefix string
	RegKeyHash   string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsRegistered reports whether the student has joined with an account.
func (s *Student) IsRegistered() bool {
	return s.GoogleID != nil && *s.GoogleID != ""
}

// Validate checks the student's own field constraints.
func (s *Student) Validate() error {
	return validateStruct(s)
}

var validate = validator.New()

func validateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}

	issues := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		issues = append(issues, fieldIssue(fe))
	}
	return &InvalidParametersError{Issues: issues}
}

func fieldIssue(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email address"
	case "max":
		return field + " must be at most " + fe.Param() + " characters"
	case "oneof":
		return field + " must be one of: " + fe.Param()
	default:
		return field + " is invalid"
	}
}

// sanitizeName trims surrounding whitespace and collapses internal runs of
// whitespace to a single space.
func sanitizeName(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// sanitizeEmail trims surrounding whitespace.
func sanitizeEmail(s string) string {
	return strings.TrimSpace(s)
}

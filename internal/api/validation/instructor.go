package validation

import "github.com/rosterd/rosterd/internal/participant"

// UpdateInstructorRequest mirrors the fields needed for instructor update
// validation.
type UpdateInstructorRequest struct {
	Name  string
	Email string
	Role  string
}

// ValidateUpdateInstructorRequest validates the fields of an instructor
// update request.
func ValidateUpdateInstructorRequest(req UpdateInstructorRequest) []FieldError {
	var errs []FieldError

	errs = requireName(errs, "name", req.Name)
	errs = requireEmail(errs, "email", req.Email)

	switch req.Role {
	case participant.RoleCoowner, participant.RoleManager, participant.RoleObserver,
		participant.RoleTutor, participant.RoleCustom:
	default:
		errs = append(errs, FieldError{Field: "role", Message: "role must be a known instructor role"})
	}

	return errs
}

package validation

import "strings"

// UpdateStudentRequest mirrors the fields needed for student update
// validation.
type UpdateStudentRequest struct {
	Name    string
	Email   string
	Section string
	Team    string
}

// ValidateUpdateStudentRequest validates the fields of a student update
// request.
func ValidateUpdateStudentRequest(req UpdateStudentRequest) []FieldError {
	var errs []FieldError

	errs = requireName(errs, "name", req.Name)
	errs = requireEmail(errs, "email", req.Email)

	if len(strings.TrimSpace(req.Section)) > 60 {
		errs = append(errs, FieldError{Field: "section", Message: "section must be at most 60 characters"})
	}
	if len(strings.TrimSpace(req.Team)) > 60 {
		errs = append(errs, FieldError{Field: "team", Message: "team must be at most 60 characters"})
	}

	return errs
}

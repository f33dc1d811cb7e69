package validation

import (
	"net/mail"
	"strings"
)

// FieldError represents a validation error on a specific field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func requireEmail(errs []FieldError, field, value string) []FieldError {
	value = strings.TrimSpace(value)
	if value == "" {
		return append(errs, FieldError{Field: field, Message: field + " is required"})
	}
	if _, err := mail.ParseAddress(value); err != nil {
		return append(errs, FieldError{Field: field, Message: field + " must be a valid email address"})
	}
	return errs
}

func requireName(errs []FieldError, field, value string) []FieldError {
	value = strings.TrimSpace(value)
	if value == "" {
		return append(errs, FieldError{Field: field, Message: field + " is required"})
	}
	if len(value) > 100 {
		return append(errs, FieldError{Field: field, Message: field + " must be at most 100 characters"})
	}
	return errs
}

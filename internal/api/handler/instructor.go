package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rosterd/rosterd/internal/api/middleware"
	"github.com/rosterd/rosterd/internal/api/response"
	"github.com/rosterd/rosterd/internal/api/validation"
	"github.com/rosterd/rosterd/internal/participant"
)

type updateInstructorRequest struct {
	GoogleID              string `json:"googleId"`
	Name                  string `json:"name"`
	Email                 string `json:"email"`
	Role                  string `json:"role"`
	DisplayName           string `json:"displayName"`
	IsDisplayedToStudents bool   `json:"isDisplayedToStudents"`
}

type instructorResponse struct {
	ID                    string `json:"id"`
	CourseID              string `json:"courseId"`
	Name                  string `json:"name"`
	Email                 string `json:"email"`
	Role                  string `json:"role"`
	DisplayName           string `json:"displayName"`
	IsDisplayedToStudents bool   `json:"isDisplayedToStudents"`
	IsRegistered          bool   `json:"isRegistered"`
}

type regkeyResponse struct {
	Email  string `json:"email"`
	RegKey string `json:"regKey"`
}

// InstructorHandler handles instructor mutation endpoints.
type InstructorHandler struct {
	service *participant.Service
}

// NewInstructorHandler creates a new InstructorHandler.
func NewInstructorHandler(service *participant.Service) *InstructorHandler {
	return &InstructorHandler{service: service}
}

// Update handles PUT /courses/{courseId}/instructors.
func (h *InstructorHandler) Update(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	courseID := chi.URLParam(r, "courseId")

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req updateInstructorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_JSON", "Request body must be valid JSON", requestID)
		return
	}

	fieldErrors := validation.ValidateUpdateInstructorRequest(validation.UpdateInstructorRequest{
		Name:  req.Name,
		Email: req.Email,
		Role:  req.Role,
	})
	if len(fieldErrors) > 0 {
		response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed", fieldErrors, requestID)
		return
	}

	instructor, err := h.service.UpdateInstructorCascade(r.Context(), courseID, participant.InstructorUpdateRequest{
		GoogleID:              req.GoogleID,
		Name:                  req.Name,
		Email:                 req.Email,
		Role:                  req.Role,
		DisplayName:           req.DisplayName,
		IsDisplayedToStudents: req.IsDisplayedToStudents,
	})
	if err != nil {
		writeParticipantError(w, err, "Failed to update instructor", requestID)
		return
	}

	response.Success(w, http.StatusOK, toInstructorResponse(instructor), requestID)
}

// Delete handles DELETE /courses/{courseId}/instructors?email=.
func (h *InstructorHandler) Delete(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	courseID := chi.URLParam(r, "courseId")

	email := r.URL.Query().Get("email")
	if email == "" {
		response.Err(w, http.StatusBadRequest, "MISSING_PARAM", "email query parameter is required", requestID)
		return
	}

	if err := h.service.DeleteInstructorCascade(r.Context(), courseID, email); err != nil {
		slog.Error("failed to delete instructor", "error", err, "courseId", courseID)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to delete instructor", requestID)
		return
	}

	response.NoContent(w)
}

// RegenerateKey handles POST /courses/{courseId}/instructors/{email}/regkey.
func (h *InstructorHandler) RegenerateKey(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	courseID := chi.URLParam(r, "courseId")
	email := chi.URLParam(r, "email")

	instructor, rawKey, err := h.service.RegenerateInstructorKey(r.Context(), courseID, email)
	if err != nil {
		writeParticipantError(w, err, "Failed to regenerate registration key", requestID)
		return
	}

	response.Success(w, http.StatusOK, regkeyResponse{
		Email:  instructor.Email,
		RegKey: rawKey,
	}, requestID)
}

func toInstructorResponse(i *participant.Instructor) instructorResponse {
	return instructorResponse{
		ID:                    i.ID.String(),
		CourseID:              i.CourseID,
		Name:                  i.Name,
		Email:                 i.Email,
		Role:                  i.Role,
		DisplayName:           i.DisplayName,
		IsDisplayedToStudents: i.IsDisplayedToStudents,
		IsRegistered:          i.IsRegistered(),
	}
}

// writeParticipantError translates engine errors into envelope responses.
func writeParticipantError(w http.ResponseWriter, err error, fallback, requestID string) {
	var invalid *participant.InvalidParametersError
	var enroll *participant.EnrollmentError

	switch {
	case errors.Is(err, participant.ErrInstructorNotFound),
		errors.Is(err, participant.ErrStudentNotFound):
		response.Err(w, http.StatusNotFound, "NOT_FOUND", err.Error(), requestID)
	case errors.Is(err, participant.ErrDuplicateStudentEmail):
		response.Err(w, http.StatusConflict, "ALREADY_EXISTS", "Trying to update to an email that is already in use", requestID)
	case errors.Is(err, participant.ErrInstructorUpdateFailed),
		errors.Is(err, participant.ErrStudentUpdateFailed):
		response.Err(w, http.StatusConflict, "UPDATE_REJECTED", err.Error(), requestID)
	case errors.As(err, &invalid):
		response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Entity validation failed", invalid.Issues, requestID)
	case errors.As(err, &enroll):
		response.Err(w, http.StatusConflict, "ENROLL_ERROR", enroll.Message, requestID)
	default:
		slog.Error("participant operation failed", "error", err, "requestId", requestID)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", fallback, requestID)
	}
}

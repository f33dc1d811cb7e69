package handler

import (
	"errors"
	"net/http"

	"github.com/rosterd/rosterd/internal/api/middleware"
	"github.com/rosterd/rosterd/internal/api/response"
	"github.com/rosterd/rosterd/internal/participant"
)

type joinResponse struct {
	CourseID   string `json:"courseId"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	EntityType string `json:"entityType"`
}

// JoinHandler resolves raw registration keys to participants.
type JoinHandler struct {
	service *participant.Service
}

// NewJoinHandler creates a new JoinHandler.
func NewJoinHandler(service *participant.Service) *JoinHandler {
	return &JoinHandler{service: service}
}

// Resolve handles GET /join?key=&entitytype=. The key is looked up by its
// prefix and confirmed against the stored hash.
func (h *JoinHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	rawKey := r.URL.Query().Get("key")
	if rawKey == "" {
		response.Err(w, http.StatusBadRequest, "MISSING_PARAM", "key query parameter is required", requestID)
		return
	}

	switch r.URL.Query().Get("entitytype") {
	case "instructor":
		instructor, err := h.service.ResolveInstructorKey(r.Context(), rawKey)
		if err != nil {
			writeJoinError(w, err, requestID)
			return
		}
		response.Success(w, http.StatusOK, joinResponse{
			CourseID:   instructor.CourseID,
			Name:       instructor.Name,
			Email:      instructor.Email,
			EntityType: "instructor",
		}, requestID)
	case "student":
		student, err := h.service.ResolveStudentKey(r.Context(), rawKey)
		if err != nil {
			writeJoinError(w, err, requestID)
			return
		}
		response.Success(w, http.StatusOK, joinResponse{
			CourseID:   student.CourseID,
			Name:       student.Name,
			Email:      student.Email,
			EntityType: "student",
		}, requestID)
	default:
		response.Err(w, http.StatusBadRequest, "INVALID_PARAM", "entitytype must be \"instructor\" or \"student\"", requestID)
	}
}

func writeJoinError(w http.ResponseWriter, err error, requestID string) {
	if err == nil {
		return
	}
	if errors.Is(err, participant.ErrInvalidRegistrationKey) {
		response.Err(w, http.StatusNotFound, "NOT_FOUND", "No participant matches the given registration key", requestID)
		return
	}
	writeParticipantError(w, err, "Failed to resolve registration key", requestID)
}

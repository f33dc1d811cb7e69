package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rosterd/rosterd/internal/api/middleware"
	"github.com/rosterd/rosterd/internal/api/response"
	"github.com/rosterd/rosterd/internal/participant"
)

type enrollEntry struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Section  string `json:"section"`
	Team     string `json:"team"`
	Comments string `json:"comments"`
}

type validateEnrollRequest struct {
	Students []enrollEntry `json:"students"`
}

type validateEnrollResponse struct {
	Valid bool `json:"valid"`
}

// EnrollHandler handles the advisory batch enrollment validation endpoint.
type EnrollHandler struct {
	service *participant.Service
}

// NewEnrollHandler creates a new EnrollHandler.
func NewEnrollHandler(service *participant.Service) *EnrollHandler {
	return &EnrollHandler{service: service}
}

// Validate handles POST /courses/{courseId}/enroll/validate. It merges the
// incoming batch with the existing roster and reports section-size and
// team-name conflicts without writing anything.
func (h *EnrollHandler) Validate(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	courseID := chi.URLParam(r, "courseId")

	r.Body = http.MaxBytesReader(w, r.Body, 4<<20)
	var req validateEnrollRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_JSON", "Request body must be valid JSON", requestID)
		return
	}

	incoming := make([]participant.Student, 0, len(req.Students))
	for _, e := range req.Students {
		incoming = append(incoming, participant.Student{
			CourseID:    courseID,
			Name:        e.Name,
			Email:       e.Email,
			SectionName: e.Section,
			TeamName:    e.Team,
			Comments:    e.Comments,
		})
	}

	if err := h.service.ValidateSectionsAndTeams(r.Context(), incoming, courseID); err != nil {
		writeParticipantError(w, err, "Failed to validate enrollment", requestID)
		return
	}

	response.Success(w, http.StatusOK, validateEnrollResponse{Valid: true}, requestID)
}

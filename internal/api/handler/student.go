package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rosterd/rosterd/internal/api/middleware"
	"github.com/rosterd/rosterd/internal/api/response"
	"github.com/rosterd/rosterd/internal/api/validation"
	"github.com/rosterd/rosterd/internal/participant"
)

type updateStudentRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Section  string `json:"section"`
	Team     string `json:"team"`
	Comments string `json:"comments"`
}

type studentResponse struct {
	ID           string `json:"id"`
	CourseID     string `json:"courseId"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Section      string `json:"section"`
	Team         string `json:"team"`
	Comments     string `json:"comments"`
	IsRegistered bool   `json:"isRegistered"`
}

// StudentHandler handles student mutation endpoints.
type StudentHandler struct {
	service *participant.Service
}

// NewStudentHandler creates a new StudentHandler.
func NewStudentHandler(service *participant.Service) *StudentHandler {
	return &StudentHandler{service: service}
}

// Update handles PUT /courses/{courseId}/students/{email}. The request body
// carries the proposed state; a changed email is cascaded through responses,
// comments and the linked account. Sections and teams are validated against
// the existing roster before anything is written.
func (h *StudentHandler) Update(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	courseID := chi.URLParam(r, "courseId")
	currentEmail := chi.URLParam(r, "email")

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req updateStudentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_JSON", "Request body must be valid JSON", requestID)
		return
	}

	fieldErrors := validation.ValidateUpdateStudentRequest(validation.UpdateStudentRequest{
		Name:    req.Name,
		Email:   req.Email,
		Section: req.Section,
		Team:    req.Team,
	})
	if len(fieldErrors) > 0 {
		response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed", fieldErrors, requestID)
		return
	}

	// The proposal keeps the current email so the roster check compares
	// against the student's existing entry; the rename is applied by the
	// cascade itself.
	proposed := participant.Student{
		CourseID:    courseID,
		Name:        req.Name,
		Email:       currentEmail,
		SectionName: req.Section,
		TeamName:    req.Team,
		Comments:    req.Comments,
	}

	if err := h.service.ValidateSectionsAndTeams(r.Context(), []participant.Student{proposed}, courseID); err != nil {
		writeParticipantError(w, err, "Failed to update student", requestID)
		return
	}

	var newEmail *string
	if req.Email != currentEmail {
		newEmail = &req.Email
	}

	student, err := h.service.UpdateStudentCascade(r.Context(), &proposed, newEmail)
	if err != nil {
		writeParticipantError(w, err, "Failed to update student", requestID)
		return
	}

	response.Success(w, http.StatusOK, toStudentResponse(student), requestID)
}

// Delete handles DELETE /courses/{courseId}/students. With an email query
// parameter a single student is deleted; without one the whole course
// roster is deleted, polling the request deadline between students.
func (h *StudentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	courseID := chi.URLParam(r, "courseId")

	email := r.URL.Query().Get("email")

	var err error
	if email == "" {
		err = h.service.DeleteStudentsInCourseCascade(r.Context(), courseID)
	} else {
		err = h.service.DeleteStudentCascade(r.Context(), courseID, email)
	}
	if err != nil {
		writeParticipantError(w, err, "Failed to delete students", requestID)
		return
	}

	response.NoContent(w)
}

// RegenerateKey handles POST /courses/{courseId}/students/{email}/regkey.
func (h *StudentHandler) RegenerateKey(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	courseID := chi.URLParam(r, "courseId")
	email := chi.URLParam(r, "email")

	student, rawKey, err := h.service.RegenerateStudentKey(r.Context(), courseID, email)
	if err != nil {
		writeParticipantError(w, err, "Failed to regenerate registration key", requestID)
		return
	}

	response.Success(w, http.StatusOK, regkeyResponse{
		Email:  student.Email,
		RegKey: rawKey,
	}, requestID)
}

func toStudentResponse(s *participant.Student) studentResponse {
	return studentResponse{
		ID:           s.ID.String(),
		CourseID:     s.CourseID,
		Name:         s.Name,
		Email:        s.Email,
		Section:      s.SectionName,
		Team:         s.TeamName,
		Comments:     s.Comments,
		IsRegistered: s.IsRegistered(),
	}
}

package handler_test

import (
	"context"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/rosterd/rosterd/internal/api/handler"
	"github.com/rosterd/rosterd/internal/api/middleware"
	"github.com/rosterd/rosterd/internal/feedback"
	"github.com/rosterd/rosterd/internal/participant"
)

const testBcryptCost = 4 // low cost for fast tests

// memRepo is an in-memory participant.Repository backing handler tests.
type memRepo struct {
	instructors []participant.Instructor
	students    []participant.Student
}

func (r *memRepo) CreateInstructor(_ context.Context, instructor *participant.Instructor) error {
	if instructor.ID == uuid.Nil {
		instructor.ID = uuid.New()
	}
	r.instructors = append(r.instructors, *instructor)
	return nil
}

func (r *memRepo) GetInstructor(_ context.Context, id uuid.UUID) (*participant.Instructor, error) {
	for i := range r.instructors {
		if r.instructors[i].ID == id {
			copied := r.instructors[i]
			return &copied, nil
		}
	}
	return nil, participant.ErrInstructorNotFound
}

func (r *memRepo) GetInstructorByEmail(_ context.Context, courseID, email string) (*participant.Instructor, error) {
	for i := range r.instructors {
		if r.instructors[i].CourseID == courseID && r.instructors[i].Email == email {
			copied := r.instructors[i]
			return &copied, nil
		}
	}
	return nil, participant.ErrInstructorNotFound
}

func (r *memRepo) GetInstructorByGoogleID(_ context.Context, courseID, googleID string) (*participant.Instructor, error) {
	for i := range r.instructors {
		inst := r.instructors[i]
		if inst.CourseID == courseID && inst.GoogleID != nil && *inst.GoogleID == googleID {
			return &inst, nil
		}
	}
	return nil, participant.ErrInstructorNotFound
}

func (r *memRepo) GetInstructorsForCourse(_ context.Context, courseID string) ([]participant.Instructor, error) {
	var out []participant.Instructor
	for _, inst := range r.instructors {
		if inst.CourseID == courseID {
			out = append(out, inst)
		}
	}
	return out, nil
}

func (r *memRepo) GetInstructorsDisplayedToStudents(_ context.Context, courseID string) ([]participant.Instructor, error) {
	var out []participant.Instructor
	for _, inst := range r.instructors {
		if inst.CourseID == courseID && inst.IsDisplayedToStudents {
			out = append(out, inst)
		}
	}
	return out, nil
}

func (r *memRepo) FindInstructorsByKeyPrefix(_ context.Context, prefix string) ([]participant.Instructor, error) {
	var out []participant.Instructor
	for _, inst := range r.instructors {
		if inst.RegKeyPrefix == prefix {
			out = append(out, inst)
		}
	}
	return out, nil
}

func (r *memRepo) UpdateInstructor(_ context.Context, instructor *participant.Instructor) error {
	for i := range r.instructors {
		if r.instructors[i].ID == instructor.ID {
			r.instructors[i] = *instructor
			return nil
		}
	}
	return participant.ErrInstructorNotFound
}

func (r *memRepo) DeleteInstructor(_ context.Context, courseID, email string) error {
	for i := range r.instructors {
		if r.instructors[i].CourseID == courseID && r.instructors[i].Email == email {
			r.instructors = append(r.instructors[:i], r.instructors[i+1:]...)
			return nil
		}
	}
	return participant.ErrInstructorNotFound
}

func (r *memRepo) CreateStudent(_ context.Context, student *participant.Student) error {
	if student.ID == uuid.Nil {
		student.ID = uuid.New()
	}
	r.students = append(r.students, *student)
	return nil
}

func (r *memRepo) GetStudent(_ context.Context, id uuid.UUID) (*participant.Student, error) {
	for i := range r.students {
		if r.students[i].ID == id {
			copied := r.students[i]
			return &copied, nil
		}
	}
	return nil, participant.ErrStudentNotFound
}

func (r *memRepo) GetStudentByEmail(_ context.Context, courseID, email string) (*participant.Student, error) {
	for i := range r.students {
		if r.students[i].CourseID == courseID && r.students[i].Email == email {
			copied := r.students[i]
			return &copied, nil
		}
	}
	return nil, participant.ErrStudentNotFound
}

func (r *memRepo) GetStudentsForCourse(_ context.Context, courseID string) ([]participant.Student, error) {
	var out []participant.Student
	for _, s := range r.students {
		if s.CourseID == courseID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *memRepo) GetAllStudentsForEmail(_ context.Context, email string) ([]participant.Student, error) {
	var out []participant.Student
	for _, s := range r.students {
		if strings.EqualFold(s.Email, email) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *memRepo) CountStudentsInTeam(_ context.Context, courseID, teamName string) (int, error) {
	count := 0
	for _, s := range r.students {
		if s.CourseID == courseID && s.TeamName == teamName {
			count++
		}
	}
	return count, nil
}

func (r *memRepo) FindStudentsByKeyPrefix(_ context.Context, prefix string) ([]participant.Student, error) {
	var out []participant.Student
	for _, s := range r.students {
		if s.RegKeyPrefix == prefix {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *memRepo) UpdateStudent(_ context.Context, student *participant.Student) error {
	for i := range r.students {
		if r.students[i].ID == student.ID {
			r.students[i] = *student
			return nil
		}
	}
	return participant.ErrStudentNotFound
}

func (r *memRepo) DeleteStudent(_ context.Context, courseID, email string) error {
	for i := range r.students {
		if r.students[i].CourseID == courseID && r.students[i].Email == email {
			r.students = append(r.students[:i], r.students[i+1:]...)
			return nil
		}
	}
	return participant.ErrStudentNotFound
}

func (r *memRepo) CountUsersForGoogleID(_ context.Context, googleID string) (int, error) {
	count := 0
	for _, inst := range r.instructors {
		if inst.GoogleID != nil && *inst.GoogleID == googleID {
			count++
		}
	}
	for _, s := range r.students {
		if s.GoogleID != nil && *s.GoogleID == googleID {
			count++
		}
	}
	return count, nil
}

// noopFeedback satisfies the feedback and comment collaborator contracts
// without doing anything.
type noopFeedback struct{}

func (noopFeedback) ResponsesGivenBy(_ context.Context, _, _ string) ([]feedback.Response, error) {
	return nil, nil
}

func (noopFeedback) ResponsesReceivedBy(_ context.Context, _, _ string) ([]feedback.Response, error) {
	return nil, nil
}

func (noopFeedback) UpdateResponseGiver(_ context.Context, _ uuid.UUID, _ string) error { return nil }

func (noopFeedback) UpdateResponseRecipient(_ context.Context, _ uuid.UUID, _ string) error {
	return nil
}

func (noopFeedback) UpdateResponsesForEmailChange(_ context.Context, _, _, _ string) error {
	return nil
}

func (noopFeedback) UpdateResponsesForTeamChange(_ context.Context, _, _, _, _ string) error {
	return nil
}

func (noopFeedback) UpdateResponsesForSectionChange(_ context.Context, _, _, _ string) error {
	return nil
}

func (noopFeedback) DeleteResponsesForParticipant(_ context.Context, _, _ string) error { return nil }

func (noopFeedback) RerankRecipientResponses(_ context.Context, _ string) error { return nil }

func (noopFeedback) UpdateCommentEmails(_ context.Context, _, _, _ string) error { return nil }

type noopAccounts struct{}

func (noopAccounts) UpdateEmail(_ context.Context, _, _ string) error { return nil }

func (noopAccounts) DeleteCascade(_ context.Context, _ string) error { return nil }

type noopExtensions struct{}

func (noopExtensions) DeleteForParticipant(_ context.Context, _, _ string, _ bool) error {
	return nil
}

type noopCourses struct{}

func (noopCourses) EnsureTeam(_ context.Context, _, _, _ string) error { return nil }

// newTestRouter mounts the participant handlers on the routes they serve in
// production, over a service backed by the given in-memory repository.
func newTestRouter(repo *memRepo) *chi.Mux {
	svc := participant.NewService(repo, noopFeedback{}, noopFeedback{},
		noopAccounts{}, noopExtensions{}, noopCourses{}, testBcryptCost)

	instructorHandler := handler.NewInstructorHandler(svc)
	studentHandler := handler.NewStudentHandler(svc)
	enrollHandler := handler.NewEnrollHandler(svc)
	joinHandler := handler.NewJoinHandler(svc)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Route("/courses/{courseId}", func(r chi.Router) {
		r.Put("/instructors", instructorHandler.Update)
		r.Delete("/instructors", instructorHandler.Delete)
		r.Post("/instructors/{email}/regkey", instructorHandler.RegenerateKey)
		r.Put("/students/{email}", studentHandler.Update)
		r.Delete("/students", studentHandler.Delete)
		r.Post("/students/{email}/regkey", studentHandler.RegenerateKey)
		r.Post("/enroll/validate", enrollHandler.Validate)
	})
	r.Get("/join", joinHandler.Resolve)
	return r
}

func strptr(s string) *string { return &s }

func seedInstructor(repo *memRepo, courseID, email string, displayed bool) participant.Instructor {
	instructor := participant.Instructor{
		ID:                    uuid.New(),
		CourseID:              courseID,
		Name:                  "Ina Structor",
		Email:                 email,
		DisplayName:           "Instructor",
		Role:                  participant.RoleCoowner,
		IsDisplayedToStudents: displayed,
		Privileges:            participant.PrivilegesForRole(participant.RoleCoowner),
	}
	repo.instructors = append(repo.instructors, instructor)
	return instructor
}

func seedStudent(repo *memRepo, courseID, email, section, team string) participant.Student {
	student := participant.Student{
		ID:          uuid.New(),
		CourseID:    courseID,
		Name:        "Stu Dent",
		Email:       email,
		SectionName: section,
		TeamName:    team,
	}
	repo.students = append(repo.students, student)
	return student
}

package participant_test

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/rosterd/rosterd/internal/feedback"
	"github.com/rosterd/rosterd/internal/participant"
)

// fakeRepository is an in-memory participant.Repository for service tests.
type fakeRepository struct {
	instructors []*participant.Instructor
	students    []*participant.Student

	instructorUpdates int
	studentUpdates    int
}

func (r *fakeRepository) CreateInstructor(_ context.Context, instructor *participant.Instructor) error {
	if instructor.ID == uuid.Nil {
		instructor.ID = uuid.New()
	}
	copied := *instructor
	r.instructors = append(r.instructors, &copied)
	return nil
}

func (r *fakeRepository) GetInstructor(_ context.Context, id uuid.UUID) (*participant.Instructor, error) {
	for _, i := range r.instructors {
		if i.ID == id {
			copied := *i
			return &copied, nil
		}
	}
	return nil, participant.ErrInstructorNotFound
}

func (r *fakeRepository) GetInstructorByEmail(_ context.Context, courseID, email string) (*participant.Instructor, error) {
	for _, i := range r.instructors {
		if i.CourseID == courseID && i.Email == email {
			copied := *i
			return &copied, nil
		}
	}
	return nil, participant.ErrInstructorNotFound
}

func (r *fakeRepository) GetInstructorByGoogleID(_ context.Context, courseID, googleID string) (*participant.Instructor, error) {
	for _, i := range r.instructors {
		if i.CourseID == courseID && i.GoogleID != nil && *i.GoogleID == googleID {
			copied := *i
			return &copied, nil
		}
	}
	return nil, participant.ErrInstructorNotFound
}

func (r *fakeRepository) GetInstructorsForCourse(_ context.Context, courseID string) ([]participant.Instructor, error) {
	var out []participant.Instructor
	for _, i := range r.instructors {
		if i.CourseID == courseID {
			out = append(out, *i)
		}
	}
	return out, nil
}

func (r *fakeRepository) GetInstructorsDisplayedToStudents(_ context.Context, courseID string) ([]participant.Instructor, error) {
	var out []participant.Instructor
	for _, i := range r.instructors {
		if i.CourseID == courseID && i.IsDisplayedToStudents {
			out = append(out, *i)
		}
	}
	return out, nil
}

func (r *fakeRepository) FindInstructorsByKeyPrefix(_ context.Context, prefix string) ([]participant.Instructor, error) {
	var out []participant.Instructor
	for _, i := range r.instructors {
		if i.RegKeyPrefix == prefix {
			out = append(out, *i)
		}
	}
	return out, nil
}

func (r *fakeRepository) UpdateInstructor(_ context.Context, instructor *participant.Instructor) error {
	for idx, i := range r.instructors {
		if i.ID == instructor.ID {
			copied := *instructor
			r.instructors[idx] = &copied
			r.instructorUpdates++
			return nil
		}
	}
	return participant.ErrInstructorNotFound
}

func (r *fakeRepository) DeleteInstructor(_ context.Context, courseID, email string) error {
	for idx, i := range r.instructors {
		if i.CourseID == courseID && i.Email == email {
			r.instructors = append(r.instructors[:idx], r.instructors[idx+1:]...)
			return nil
		}
	}
	return participant.ErrInstructorNotFound
}

func (r *fakeRepository) CreateStudent(_ context.Context, student *participant.Student) error {
	if student.ID == uuid.Nil {
		student.ID = uuid.New()
	}
	copied := *student
	r.students = append(r.students, &copied)
	return nil
}

func (r *fakeRepository) GetStudent(_ context.Context, id uuid.UUID) (*participant.Student, error) {
	for _, s := range r.students {
		if s.ID == id {
			copied := *s
			return &copied, nil
		}
	}
	return nil, participant.ErrStudentNotFound
}

func (r *fakeRepository) GetStudentByEmail(_ context.Context, courseID, email string) (*participant.Student, error) {
	for _, s := range r.students {
		if s.CourseID == courseID && s.Email == email {
			copied := *s
			return &copied, nil
		}
	}
	return nil, participant.ErrStudentNotFound
}

func (r *fakeRepository) GetStudentsForCourse(_ context.Context, courseID string) ([]participant.Student, error) {
	var out []participant.Student
	for _, s := range r.students {
		if s.CourseID == courseID {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (r *fakeRepository) GetAllStudentsForEmail(_ context.Context, email string) ([]participant.Student, error) {
	var out []participant.Student
	for _, s := range r.students {
		if strings.EqualFold(s.Email, email) {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (r *fakeRepository) CountStudentsInTeam(_ context.Context, courseID, teamName string) (int, error) {
	count := 0
	for _, s := range r.students {
		if s.CourseID == courseID && s.TeamName == teamName {
			count++
		}
	}
	return count, nil
}

func (r *fakeRepository) FindStudentsByKeyPrefix(_ context.Context, prefix string) ([]participant.Student, error) {
	var out []participant.Student
	for _, s := range r.students {
		if s.RegKeyPrefix == prefix {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (r *fakeRepository) UpdateStudent(_ context.Context, student *participant.Student) error {
	for idx, s := range r.students {
		if s.ID == student.ID {
			copied := *student
			r.students[idx] = &copied
			r.studentUpdates++
			return nil
		}
	}
	return participant.ErrStudentNotFound
}

func (r *fakeRepository) DeleteStudent(_ context.Context, courseID, email string) error {
	for idx, s := range r.students {
		if s.CourseID == courseID && s.Email == email {
			r.students = append(r.students[:idx], r.students[idx+1:]...)
			return nil
		}
	}
	return participant.ErrStudentNotFound
}

func (r *fakeRepository) CountUsersForGoogleID(_ context.Context, googleID string) (int, error) {
	count := 0
	for _, i := range r.instructors {
		if i.GoogleID != nil && *i.GoogleID == googleID {
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

type emailRewrite struct {
	oldEmail string
	newEmail string
}

type teamChange struct {
	email   string
	oldTeam string
	newTeam string
}

// fakeFeedback records the cascade calls made against the feedback service.
// It serves as both the response editor and the comment editor.
type fakeFeedback struct {
	responses []feedback.Response

	giverRewrites       map[uuid.UUID]string
	recipientRewrites   map[uuid.UUID]string
	emailChanges        []emailRewrite
	teamChanges         []teamChange
	sectionChanges      []string
	deletedParticipants []string
	commentRewrites     []emailRewrite
	rerankCalls         int
}

func newFakeFeedback(responses ...feedback.Response) *fakeFeedback {
	return &fakeFeedback{
		responses:         responses,
		giverRewrites:     make(map[uuid.UUID]string),
		recipientRewrites: make(map[uuid.UUID]string),
	}
}

func (f *fakeFeedback) ResponsesGivenBy(_ context.Context, courseID, giverEmail string) ([]feedback.Response, error) {
	var out []feedback.Response
	for _, resp := range f.responses {
		if resp.CourseID == courseID && resp.Giver == giverEmail {
			out = append(out, resp)
		}
	}
	return out, nil
}

func (f *fakeFeedback) ResponsesReceivedBy(_ context.Context, courseID, recipientEmail string) ([]feedback.Response, error) {
	var out []feedback.Response
	for _, resp := range f.responses {
		if resp.CourseID == courseID && resp.Recipient == recipientEmail {
			out = append(out, resp)
		}
	}
	return out, nil
}

func (f *fakeFeedback) UpdateResponseGiver(_ context.Context, responseID uuid.UUID, email string) error {
	f.giverRewrites[responseID] = email
	return nil
}

func (f *fakeFeedback) UpdateResponseRecipient(_ context.Context, responseID uuid.UUID, email string) error {
	f.recipientRewrites[responseID] = email
	return nil
}

func (f *fakeFeedback) UpdateResponsesForEmailChange(_ context.Context, _, oldEmail, newEmail string) error {
	f.emailChanges = append(f.emailChanges, emailRewrite{oldEmail, newEmail})
	return nil
}

func (f *fakeFeedback) UpdateResponsesForTeamChange(_ context.Context, _, email, oldTeam, newTeam string) error {
	f.teamChanges = append(f.teamChanges, teamChange{email, oldTeam, newTeam})
	return nil
}

func (f *fakeFeedback) UpdateResponsesForSectionChange(_ context.Context, _, email, sectionName string) error {
	f.sectionChanges = append(f.sectionChanges, email+"/"+sectionName)
	return nil
}

func (f *fakeFeedback) DeleteResponsesForParticipant(_ context.Context, _, participantName string) error {
	f.deletedParticipants = append(f.deletedParticipants, participantName)
	return nil
}

func (f *fakeFeedback) RerankRecipientResponses(_ context.Context, _ string) error {
	f.rerankCalls++
	return nil
}

func (f *fakeFeedback) UpdateCommentEmails(_ context.Context, _, oldEmail, newEmail string) error {
	f.commentRewrites = append(f.commentRewrites, emailRewrite{oldEmail, newEmail})
	return nil
}

// fakeAccounts records account cascade calls.
type fakeAccounts struct {
	emailUpdates map[string]string
	deleted      []string
}

func newFakeAccounts() *fakeAccounts {
	return &fakeAccounts{emailUpdates: make(map[string]string)}
}

func (a *fakeAccounts) UpdateEmail(_ context.Context, googleID, newEmail string) error {
	a.emailUpdates[googleID] = newEmail
	return nil
}

func (a *fakeAccounts) DeleteCascade(_ context.Context, googleID string) error {
	a.deleted = append(a.deleted, googleID)
	return nil
}

// fakeExtensions records extension deletions as "courseID/email/role" strings.
type fakeExtensions struct {
	deleted []string
}

func (e *fakeExtensions) DeleteForParticipant(_ context.Context, courseID, email string, isInstructor bool) error {
	role := "student"
	if isInstructor {
		role = "instructor"
	}
	e.deleted = append(e.deleted, courseID+"/"+email+"/"+role)
	return nil
}

// fakeCourses records EnsureTeam calls as "courseID/section/team" strings.
type fakeCourses struct {
	ensured []string
}

func (c *fakeCourses) EnsureTeam(_ context.Context, courseID, sectionName, teamName string) error {
	c.ensured = append(c.ensured, courseID+"/"+sectionName+"/"+teamName)
	return nil
}

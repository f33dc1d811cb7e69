package participant

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/rosterd/rosterd/internal/feedback"
)

// FeedbackEditor is the slice of the feedback service the engine cascades
// into on identity changes.
type FeedbackEditor interface {
	ResponsesGivenBy(ctx context.Context, courseID, giverEmail string) ([]feedback.Response, error)
	ResponsesReceivedBy(ctx context.Context, courseID, recipientEmail string) ([]feedback.Response, error)
	UpdateResponseGiver(ctx context.Context, responseID uuid.UUID, email string) error
	UpdateResponseRecipient(ctx context.Context, responseID uuid.UUID, email string) error
	UpdateResponsesForEmailChange(ctx context.Context, courseID, oldEmail, newEmail string) error
	UpdateResponsesForTeamChange(ctx context.Context, courseID, email, oldTeam, newTeam string) error
	UpdateResponsesForSectionChange(ctx context.Context, courseID, email, sectionName string) error
	DeleteResponsesForParticipant(ctx context.Context, courseID, participant string) error
	RerankRecipientResponses(ctx context.Context, courseID string) error
}

// CommentEditor rewrites denormalized emails on response comments.
type CommentEditor interface {
	UpdateCommentEmails(ctx context.Context, courseID, oldEmail, newEmail string) error
}

// AccountManager is the slice of the account service the engine cascades
// into when a participant's email or googleId changes.
type AccountManager interface {
	UpdateEmail(ctx context.Context, googleID, newEmail string) error
	DeleteCascade(ctx context.Context, googleID string) error
}

// ExtensionStore removes a participant's deadline extensions on deletion.
type ExtensionStore interface {
	DeleteForParticipant(ctx context.Context, courseID, email string, isInstructor bool) error
}

// CourseRoster ensures section and team records exist before a student is
// attached to them.
type CourseRoster interface {
	EnsureTeam(ctx context.Context, courseID, sectionName, teamName string) error
}

// Service orchestrates participant mutations and the cascades they trigger.
// Each public operation expects to run inside a caller-managed transactional
// unit of work.
type Service struct {
	repo       Repository
	feedback   FeedbackEditor
	comments   CommentEditor
	accounts   AccountManager
	extensions ExtensionStore
	courses    CourseRoster
	bcryptCost int
	newKey     func() (string, error)
}

// Option configures a Service.
type Option func(*Service)

// WithKeyGenerator overrides the registration key source.
func WithKeyGenerator(gen func() (string, error)) Option {
	return func(s *Service) {
		s.newKey = gen
	}
}

// NewService creates a new participant Service.
func NewService(repo Repository, fb FeedbackEditor, comments CommentEditor,
	accounts AccountManager, extensions ExtensionStore, courses CourseRoster,
	bcryptCost int, opts ...Option) *Service {
	s := &Service{
		repo:       repo,
		feedback:   fb,
		comments:   comments,
		accounts:   accounts,
		extensions: extensions,
		courses:    courses,
		bcryptCost: bcryptCost,
		newKey:     generateRegistrationKey,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// InstructorUpdateRequest carries the proposed state of an instructor edit.
// The target is resolved by googleId when set, by email otherwise.
type InstructorUpdateRequest struct {
	GoogleID              string
	Name                  string
	Email                 string
	Role                  string
	DisplayName           string
	IsDisplayedToStudents bool
}

// CreateInstructor validates, keys and persists a new instructor. The raw
// registration key is returned once and not stored.
func (s *Service) CreateInstructor(ctx context.Context, instructor *Instructor) (string, error) {
	instructor.Name = sanitizeName(instructor.Name)
	instructor.Email = sanitizeEmail(instructor.Email)
	if instructor.DisplayName == "" {
		instructor.DisplayName = DefaultDisplayName
	}
	if instructor.Privileges == nil {
		instructor.Privileges = PrivilegesForRole(instructor.Role)
	}

	if err := instructor.Validate(); err != nil {
		return "", err
	}

	rawKey, err := s.issueRegistrationKey(&instructor.RegKeyPrefix, &instructor.RegKeyHash)
	if err != nil {
		return "", err
	}

	if err := s.repo.CreateInstructor(ctx, instructor); err != nil {
		return "", err
	}
	return rawKey, nil
}

// CreateStudent validates, keys and persists a new student, ensuring the
// student's section and team exist first.
func (s *Service) CreateStudent(ctx context.Context, student *Student) (string, error) {
	student.Name = sanitizeName(student.Name)
	student.Email = sanitizeEmail(student.Email)

	if err := student.Validate(); err != nil {
		return "", err
	}

	if student.TeamName != "" {
		if err := s.courses.EnsureTeam(ctx, student.CourseID, student.SectionName, student.TeamName); err != nil {
			return "", fmt.Errorf("ensuring section and team: %w", err)
		}
	}

	rawKey, err := s.issueRegistrationKey(&student.RegKeyPrefix, &student.RegKeyHash)
	if err != nil {
		return "", err
	}

	if err := s.repo.CreateStudent(ctx, student); err != nil {
		return "", err
	}
	return rawKey, nil
}

// UpdateInstructorCascade applies an instructor edit and, when the email
// changed, rewrites the denormalized email references on feedback responses
// and comments. The visibility invariant is checked against the proposed
// flag before anything is mutated.
func (s *Service) UpdateInstructorCascade(ctx context.Context, courseID string, req InstructorUpdateRequest) (*Instructor, error) {
	var instructor *Instructor
	var err error
	if req.GoogleID == "" {
		instructor, err = s.repo.GetInstructorByEmail(ctx, courseID, req.Email)
	} else {
		instructor, err = s.repo.GetInstructorByGoogleID(ctx, courseID, req.GoogleID)
	}
	if err != nil {
		return nil, err
	}

	if err := s.verifyAtLeastOneInstructorDisplayed(ctx, courseID,
		instructor.IsDisplayedToStudents, req.IsDisplayedToStudents); err != nil {
		return nil, err
	}

	originalEmail := instructor.Email

	displayName := req.DisplayName
	if displayName == "" {
		displayName = DefaultDisplayName
	}

	instructor.Name = sanitizeName(req.Name)
	instructor.Email = sanitizeEmail(req.Email)
	instructor.Role = req.Role
	instructor.Privileges = PrivilegesForRole(req.Role)
	instructor.DisplayName = sanitizeName(displayName)
	instructor.IsDisplayedToStudents = req.IsDisplayedToStudents

	if err := s.ensureModifyInstructorPrivilege(ctx, courseID, instructor); err != nil {
		return nil, err
	}

	if err := instructor.Validate(); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateInstructor(ctx, instructor); err != nil {
		return nil, err
	}

	newEmail := instructor.Email
	if originalEmail != newEmail {
		if err := s.cascadeInstructorEmailChange(ctx, courseID, originalEmail, newEmail); err != nil {
			return nil, err
		}
	}

	return instructor, nil
}

// cascadeInstructorEmailChange rewrites responses and comments referencing
// the old email. Only responses whose question addresses instructors (or the
// instructor's own self-responses) are eligible; the recipient-side
// condition is intentionally narrower than the giver-side one and must not
// be generalized.
func (s *Service) cascadeInstructorEmailChange(ctx context.Context, courseID, oldEmail, newEmail string) error {
	given, err := s.feedback.ResponsesGivenBy(ctx, courseID, oldEmail)
	if err != nil {
		return fmt.Errorf("loading given responses: %w", err)
	}
	for _, resp := range given {
		q := resp.Question
		if q == nil {
			continue
		}
		if q.GiverType == feedback.TypeInstructors || q.GiverType == feedback.TypeSelf {
			if err := s.feedback.UpdateResponseGiver(ctx, resp.ID, newEmail); err != nil {
				return fmt.Errorf("rewriting response giver: %w", err)
			}
		}
	}

	received, err := s.feedback.ResponsesReceivedBy(ctx, courseID, oldEmail)
	if err != nil {
		return fmt.Errorf("loading received responses: %w", err)
	}
	for _, resp := range received {
		q := resp.Question
		if q == nil {
			continue
		}
		if q.RecipientType == feedback.TypeInstructors ||
			(q.GiverType == feedback.TypeInstructors && q.RecipientType == feedback.TypeSelf) {
			if err := s.feedback.UpdateResponseRecipient(ctx, resp.ID, newEmail); err != nil {
				return fmt.Errorf("rewriting response recipient: %w", err)
			}
		}
	}

	if err := s.comments.UpdateCommentEmails(ctx, courseID, oldEmail, newEmail); err != nil {
		return fmt.Errorf("rewriting comment emails: %w", err)
	}
	return nil
}

// UpdateStudentCascade applies a student edit and cascades only for the
// dimensions that actually changed. A nil newEmail means the email is not
// being updated. The student is persisted before the cascades run.
func (s *Service) UpdateStudentCascade(ctx context.Context, student *Student, newEmail *string) (*Student, error) {
	courseID := student.CourseID
	original, err := s.repo.GetStudentByEmail(ctx, courseID, student.Email)
	if err != nil {
		return nil, err
	}

	originalEmail := original.Email
	originalTeam := original.TeamName
	originalSection := original.SectionName

	changedEmail := newEmail != nil && *newEmail != originalEmail
	changedTeam := originalTeam != "" && student.TeamName != "" && originalTeam != student.TeamName
	changedSection := originalSection != "" && student.SectionName != "" && originalSection != student.SectionName

	original.Name = sanitizeName(student.Name)
	original.TeamName = student.TeamName
	original.SectionName = student.SectionName
	original.Comments = student.Comments

	if changedEmail {
		others, err := s.repo.GetAllStudentsForEmail(ctx, *newEmail)
		if err != nil {
			return nil, fmt.Errorf("checking email availability: %w", err)
		}
		if len(others) > 0 {
			return nil, ErrDuplicateStudentEmail
		}
		original.Email = sanitizeEmail(*newEmail)
	}

	if err := original.Validate(); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateStudent(ctx, original); err != nil {
		return nil, err
	}

	if changedEmail {
		if err := s.feedback.UpdateResponsesForEmailChange(ctx, courseID, originalEmail, original.Email); err != nil {
			return nil, fmt.Errorf("rewriting response emails: %w", err)
		}
		if err := s.comments.UpdateCommentEmails(ctx, courseID, originalEmail, original.Email); err != nil {
			return nil, fmt.Errorf("rewriting comment emails: %w", err)
		}
		if original.IsRegistered() {
			if err := s.accounts.UpdateEmail(ctx, *original.GoogleID, original.Email); err != nil {
				return nil, fmt.Errorf("updating account email: %w", err)
			}
		}
	}

	if changedTeam {
		if err := s.feedback.UpdateResponsesForTeamChange(ctx, courseID, original.Email, originalTeam, original.TeamName); err != nil {
			return nil, fmt.Errorf("reconciling responses for team change: %w", err)
		}
	}

	if changedSection {
		if err := s.feedback.UpdateResponsesForSectionChange(ctx, courseID, original.Email, original.SectionName); err != nil {
			return nil, fmt.Errorf("relabeling responses for section change: %w", err)
		}
	}

	return original, nil
}

// DeleteInstructorCascade removes an instructor along with their feedback
// responses and deadline extensions. Dependents go first so a partial
// failure never leaves dangling references. Succeeds silently when the
// instructor does not exist.
func (s *Service) DeleteInstructorCascade(ctx context.Context, courseID, email string) error {
	instructor, err := s.repo.GetInstructorByEmail(ctx, courseID, email)
	if err != nil {
		if errors.Is(err, ErrInstructorNotFound) {
			return nil
		}
		return err
	}

	if err := s.feedback.DeleteResponsesForParticipant(ctx, courseID, email); err != nil {
		return fmt.Errorf("deleting instructor responses: %w", err)
	}
	if err := s.extensions.DeleteForParticipant(ctx, courseID, email, true); err != nil {
		return fmt.Errorf("deleting instructor deadline extensions: %w", err)
	}
	if err := s.repo.DeleteInstructor(ctx, courseID, instructor.Email); err != nil {
		return err
	}

	slog.Info("instructor deleted", "courseId", courseID, "email", email)
	return nil
}

// DeleteStudentCascade removes a student along with their feedback responses
// and deadline extensions. When the student is the last member of their
// team, responses addressed to the team as a unit are removed too.
// Rank-recipients responses are renumbered afterwards. Succeeds silently
// when the student does not exist.
func (s *Service) DeleteStudentCascade(ctx context.Context, courseID, email string) error {
	student, err := s.repo.GetStudentByEmail(ctx, courseID, email)
	if err != nil {
		if errors.Is(err, ErrStudentNotFound) {
			return nil
		}
		return err
	}

	if err := s.feedback.DeleteResponsesForParticipant(ctx, courseID, email); err != nil {
		return fmt.Errorf("deleting student responses: %w", err)
	}

	if student.TeamName != "" {
		count, err := s.repo.CountStudentsInTeam(ctx, courseID, student.TeamName)
		if err != nil {
			return fmt.Errorf("counting team members: %w", err)
		}
		if count == 1 {
			// Sole member: the team stops existing as an addressable entity.
			if err := s.feedback.DeleteResponsesForParticipant(ctx, courseID, student.TeamName); err != nil {
				return fmt.Errorf("deleting team responses: %w", err)
			}
		}
	}

	if err := s.extensions.DeleteForParticipant(ctx, courseID, email, false); err != nil {
		return fmt.Errorf("deleting student deadline extensions: %w", err)
	}
	if err := s.repo.DeleteStudent(ctx, courseID, student.Email); err != nil {
		return err
	}
	if err := s.feedback.RerankRecipientResponses(ctx, courseID); err != nil {
		return fmt.Errorf("renumbering rank responses: %w", err)
	}

	slog.Info("student deleted", "courseId", courseID, "email", email)
	return nil
}

// DeleteStudentsInCourseCascade deletes every student in the course. Each
// student's cascade is atomic; the batch is not. The context is polled
// between iterations so a long-running deletion aborts cleanly, leaving
// already-deleted students deleted.
func (s *Service) DeleteStudentsInCourseCascade(ctx context.Context, courseID string) error {
	students, err := s.repo.GetStudentsForCourse(ctx, courseID)
	if err != nil {
		return err
	}

	for _, student := range students {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("aborting course roster deletion: %w", err)
		}
		if err := s.DeleteStudentCascade(ctx, courseID, student.Email); err != nil {
			return err
		}
	}
	return nil
}

// ResetInstructorGoogleID unlinks the instructor from their account and
// deletes the account when no participant anywhere references it anymore.
func (s *Service) ResetInstructorGoogleID(ctx context.Context, email, courseID, googleID string) error {
	instructor, err := s.repo.GetInstructorByEmail(ctx, courseID, email)
	if err != nil {
		return err
	}

	instructor.GoogleID = nil
	if err := s.repo.UpdateInstructor(ctx, instructor); err != nil {
		return err
	}

	return s.deleteOrphanedAccount(ctx, googleID)
}

// ResetStudentGoogleID unlinks the student from their account and deletes
// the account when no participant anywhere references it anymore.
func (s *Service) ResetStudentGoogleID(ctx context.Context, email, courseID, googleID string) error {
	student, err := s.repo.GetStudentByEmail(ctx, courseID, email)
	if err != nil {
		return err
	}

	student.GoogleID = nil
	if err := s.repo.UpdateStudent(ctx, student); err != nil {
		return err
	}

	return s.deleteOrphanedAccount(ctx, googleID)
}

func (s *Service) deleteOrphanedAccount(ctx context.Context, googleID string) error {
	count, err := s.repo.CountUsersForGoogleID(ctx, googleID)
	if err != nil {
		return fmt.Errorf("counting account references: %w", err)
	}
	if count > 0 {
		return nil
	}
	if err := s.accounts.DeleteCascade(ctx, googleID); err != nil {
		return fmt.Errorf("deleting orphaned account: %w", err)
	}
	return nil
}

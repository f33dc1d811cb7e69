package feedback

import (
	"time"

	"github.com/google/uuid"
)

// ParticipantType identifies who gives or receives feedback for a question.
type ParticipantType string

// Giver and recipient types carried by feedback questions.
const (
	TypeSelf           ParticipantType = "SELF"
	TypeStudents       ParticipantType = "STUDENTS"
	TypeInstructors    ParticipantType = "INSTRUCTORS"
	TypeTeams          ParticipantType = "TEAMS"
	TypeOwnTeam        ParticipantType = "OWN_TEAM"
	TypeOwnTeamMembers ParticipantType = "OWN_TEAM_MEMBERS"
	TypeNone           ParticipantType = "NONE"
)

// IsTeamScoped reports whether responses addressed under this type reference
// a team rather than an individual, and therefore become invalid when the
// giver or recipient changes team.
func (t ParticipantType) IsTeamScoped() bool {
	switch t {
	case TypeTeams, TypeOwnTeam, TypeOwnTeamMembers:
		return true
	}
	return false
}

// Question kinds relevant to cascade handling.
const (
	QuestionText           = "TEXT"
	QuestionRankRecipients = "RANK_RECIPIENTS"
)

// Question represents a row in the feedback_questions table.
type Question struct {
	ID            uuid.UUID
	CourseID      string
	QuestionType  string
	GiverType     ParticipantType
	RecipientType ParticipantType
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Response represents a row in the feedback_responses table. Giver and
// Recipient are denormalized email addresses (or a team name for
// team-addressed questions), not foreign keys.
type Response struct {
	ID               uuid.UUID
	QuestionID       uuid.UUID
	CourseID         string
	Giver            string
	Recipient        string
	GiverSection     string
	RecipientSection string
	Answer           string
	RankAnswer       *int
	Question         *Question
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// ResponseComment represents a row in the feedback_response_comments table.
// Like responses, it carries denormalized giver and editor emails.
type ResponseComment struct {
	ID              uuid.UUID
	ResponseID      uuid.UUID
	CourseID        string
	GiverEmail      string
	LastEditorEmail string
	Text            string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

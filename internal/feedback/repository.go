package feedback

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrResponseNotFound is returned when a feedback response is not found.
var ErrResponseNotFound = errors.New("feedback response not found")

// Repository provides access to feedback questions, responses and comments.
type Repository interface {
	GetResponsesFromGiver(ctx context.Context, courseID, giver string) ([]Response, error)
	GetResponsesForRecipient(ctx context.Context, courseID, recipient string) ([]Response, error)
	GetResponsesForQuestion(ctx context.Context, questionID uuid.UUID) ([]Response, error)
	GetRankRecipientQuestions(ctx context.Context, courseID string) ([]Question, error)

	UpdateResponseGiver(ctx context.Context, responseID uuid.UUID, giver string) error
	UpdateResponseRecipient(ctx context.Context, responseID uuid.UUID, recipient string) error
	UpdateResponseRank(ctx context.Context, responseID uuid.UUID, rank int) error
	UpdateResponseEmails(ctx context.Context, courseID, oldEmail, newEmail string) error
	UpdateGiverSection(ctx context.Context, courseID, giver, sectionName string) error
	UpdateRecipientSection(ctx context.Context, courseID, recipient, sectionName string) error

	DeleteResponse(ctx context.Context, responseID uuid.UUID) error
	DeleteResponsesForParticipant(ctx context.Context, courseID, participant string) error

	UpdateCommentEmails(ctx context.Context, courseID, oldEmail, newEmail string) error
}

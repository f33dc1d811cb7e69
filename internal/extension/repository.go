package extension

import "context"

// Repository provides access to the deadline_extensions table.
type Repository interface {
	Create(ctx context.Context, ext *DeadlineExtension) error
	GetForParticipant(ctx context.Context, courseID, email string, isInstructor bool) ([]DeadlineExtension, error)
	DeleteForParticipant(ctx context.Context, courseID, email string, isInstructor bool) error
}

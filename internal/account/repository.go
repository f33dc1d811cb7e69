package account

import (
	"context"
	"errors"
)

// ErrAccountNotFound is returned when an account record is not found.
var ErrAccountNotFound = errors.New("account not found")

// Repository provides CRUD operations on the accounts table.
type Repository interface {
	Create(ctx context.Context, account *Account) error
	GetByGoogleID(ctx context.Context, googleID string) (*Account, error)
	UpdateEmail(ctx context.Context, googleID, email string) error
	DeleteCascade(ctx context.Context, googleID string) error
}

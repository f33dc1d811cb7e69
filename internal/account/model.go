package account

import (
	"time"

	"github.com/google/uuid"
)

// Account represents a row in the accounts table. An account is linked to
// participants through its google_id.
type Account struct {
	ID        uuid.UUID
	GoogleID  string
	Name      string
	Email     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

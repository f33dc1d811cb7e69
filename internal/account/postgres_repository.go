package account

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository implements Repository using pgxpool.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new Repository backed by the given connection pool.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &PostgresRepository{pool: pool}
}

// Create inserts a new account record.
func (r *PostgresRepository) Create(ctx context.Context, a *Account) error {
	query := `
		INSERT INTO accounts (google_id, name, email)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at`

	err := r.pool.QueryRow(ctx, query, a.GoogleID, a.Name, a.Email).
		Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("inserting account: %w", err)
	}
	return nil
}

// GetByGoogleID retrieves an account by its google id.
func (r *PostgresRepository) GetByGoogleID(ctx context.Context, googleID string) (*Account, error) {
	query := `
		SELECT id, google_id, name, email, created_at, updated_at
		FROM accounts
		WHERE google_id = $1`

	var a Account
	err := r.pool.QueryRow(ctx, query, googleID).
		Scan(&a.ID, &a.GoogleID, &a.Name, &a.Email, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("querying account: %w", err)
	}
	return &a, nil
}

// UpdateEmail rewrites the account's email address.
func (r *PostgresRepository) UpdateEmail(ctx context.Context, googleID, email string) error {
	query := `UPDATE accounts SET email = $1, updated_at = NOW() WHERE google_id = $2`

	result, err := r.pool.Exec(ctx, query, email, googleID)
	if err != nil {
		return fmt.Errorf("updating account email: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrAccountNotFound
	}
	return nil
}

// DeleteCascade removes the account and its read-notification marks.
// Deleting a missing account is a no-op.
func (r *PostgresRepository) DeleteCascade(ctx context.Context, googleID string) error {
	notifQuery := `DELETE FROM account_read_notifications WHERE google_id = $1`
	if _, err := r.pool.Exec(ctx, notifQuery, googleID); err != nil {
		return fmt.Errorf("deleting account notifications: %w", err)
	}

	query := `DELETE FROM accounts WHERE google_id = $1`
	if _, err := r.pool.Exec(ctx, query, googleID); err != nil {
		return fmt.Errorf("deleting account: %w", err)
	}
	return nil
}

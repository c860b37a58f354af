// user_repository.go implements UserRepository, providing database queries for
// admin account records: creation, credential lookup, email/password updates,
// and the organization-rename and organization-delete cascades.
package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/org-registry/org-registry/internal/db/models"
)

// UserRepository handles admin account database operations
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a new admin account. Email uniqueness is enforced by the
// users_email_key constraint; concurrent duplicate inserts surface as a
// unique-violation error which the service layer maps to a conflict.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	user.ID = uuid.New().String()
	user.CreatedAt = time.Now()
	user.UpdatedAt = time.Now()

	query := `
		INSERT INTO users (id, email, password_hash, organization_name, organization_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.ExecContext(ctx, query,
		user.ID,
		user.Email,
		user.PasswordHash,
		user.OrganizationName,
		user.OrganizationID,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// GetByEmail retrieves an admin account by email. Returns nil when no record
// exists.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `
		SELECT id, email, password_hash, organization_name, organization_id, created_at, updated_at
		FROM users
		WHERE email = $1
	`

	var user models.User
	err := r.db.GetContext(ctx, &user, query, email)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return &user, nil
}

// UpdateEmail changes an account's email address. Uniqueness of the new email
// is enforced by the users_email_key constraint.
func (r *UserRepository) UpdateEmail(ctx context.Context, userID, newEmail string) error {
	query := `
		UPDATE users
		SET email = $2, updated_at = NOW()
		WHERE id = $1
	`

	if _, err := r.db.ExecContext(ctx, query, userID, newEmail); err != nil {
		return fmt.Errorf("failed to update email: %w", err)
	}

	return nil
}

// UpdatePassword replaces an account's password hash.
func (r *UserRepository) UpdatePassword(ctx context.Context, userID, newHash string) error {
	query := `
		UPDATE users
		SET password_hash = $2, updated_at = NOW()
		WHERE id = $1
	`

	if _, err := r.db.ExecContext(ctx, query, userID, newHash); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	return nil
}

// ReassignOrganization cascades an organization rename to every account whose
// organization_name matches the old name. It is a bulk update rather than a
// single-row one: the data shape anticipates multiple admins per organization
// even though creation currently produces exactly one.
func (r *UserRepository) ReassignOrganization(ctx context.Context, oldOrgName, newOrgName string) (int64, error) {
	query := `
		UPDATE users
		SET organization_name = $2, updated_at = NOW()
		WHERE organization_name = $1
	`

	res, err := r.db.ExecContext(ctx, query, oldOrgName, newOrgName)
	if err != nil {
		return 0, fmt.Errorf("failed to reassign organization: %w", err)
	}

	return res.RowsAffected()
}

// DeleteByOrganization removes all accounts referencing the organization,
// invoked as part of organization deletion. Deleting zero rows is not an
// error; the whole delete flow is retry-safe.
func (r *UserRepository) DeleteByOrganization(ctx context.Context, orgName string) (int64, error) {
	query := `DELETE FROM users WHERE organization_name = $1`

	res, err := r.db.ExecContext(ctx, query, orgName)
	if err != nil {
		return 0, fmt.Errorf("failed to delete users for organization: %w", err)
	}

	return res.RowsAffected()
}

// Package repositories implements the data access layer (repository pattern)
// for the organization registry. Each repository type encapsulates all
// database queries for a domain entity. Services never issue SQL against the
// master tables directly; all master-registry access goes through this layer.
package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/org-registry/org-registry/internal/db/models"
)

// OrganizationRepository is the master registry of organizations. It is the
// single source of truth for the organization ↔ collection-name mapping.
type OrganizationRepository struct {
	db *sqlx.DB
}

// NewOrganizationRepository creates a new organization repository
func NewOrganizationRepository(db *sqlx.DB) *OrganizationRepository {
	return &OrganizationRepository{db: db}
}

// Create persists a new organization record. Name uniqueness is enforced by
// the organizations_name_key constraint; a concurrent duplicate insert
// surfaces as a unique-violation error from the driver, which the service
// layer maps to a conflict.
func (r *OrganizationRepository) Create(ctx context.Context, org *models.Organization) error {
	query := `
		INSERT INTO organizations (name, collection_name, admin_email)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRowContext(ctx, query, org.Name, org.CollectionName, org.AdminEmail).Scan(
		&org.ID,
		&org.CreatedAt,
		&org.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create organization: %w", err)
	}

	return nil
}

// GetByName retrieves an organization by its name. Returns nil when no record
// exists; the service layer maps that to a not-found outcome.
func (r *OrganizationRepository) GetByName(ctx context.Context, name string) (*models.Organization, error) {
	query := `
		SELECT id, name, collection_name, admin_email, created_at, updated_at
		FROM organizations
		WHERE name = $1
	`

	var org models.Organization
	err := r.db.GetContext(ctx, &org, query, name)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get organization: %w", err)
	}

	return &org, nil
}

// Rename updates the registry record for an organization to its new name and
// derived collection name. Must be invoked only after the physical collection
// rename has succeeded. Returns the number of rows updated so the caller can
// detect a vanished record.
func (r *OrganizationRepository) Rename(ctx context.Context, oldName, newName, newCollectionName string) (int64, error) {
	query := `
		UPDATE organizations
		SET name = $2, collection_name = $3, updated_at = NOW()
		WHERE name = $1
	`

	res, err := r.db.ExecContext(ctx, query, oldName, newName, newCollectionName)
	if err != nil {
		return 0, fmt.Errorf("failed to rename organization: %w", err)
	}

	return res.RowsAffected()
}

// Delete removes the registry record. Returns the number of rows deleted;
// zero means the organization was already absent.
func (r *OrganizationRepository) Delete(ctx context.Context, name string) (int64, error) {
	query := `DELETE FROM organizations WHERE name = $1`

	res, err := r.db.ExecContext(ctx, query, name)
	if err != nil {
		return 0, fmt.Errorf("failed to delete organization: %w", err)
	}

	return res.RowsAffected()
}

// UpdateAdminEmail updates the denormalized admin-email field when the
// admin's account email changes.
func (r *OrganizationRepository) UpdateAdminEmail(ctx context.Context, name, newEmail string) error {
	query := `
		UPDATE organizations
		SET admin_email = $2, updated_at = NOW()
		WHERE name = $1
	`

	if _, err := r.db.ExecContext(ctx, query, name, newEmail); err != nil {
		return fmt.Errorf("failed to update admin email: %w", err)
	}

	return nil
}

// collection_manager.go implements the collection lifecycle manager: it
// translates an organization name into a deterministic collection identifier
// and performs the underlying create/rename/drop against the data store.
package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// DeriveCollectionName maps an organization name to its collection identifier:
// "org_" + the lower-cased name with spaces replaced by underscores.
//
// This is the single derivation point for creation, rename targets, and drop
// targets. It is a pure function so it can be unit-tested in isolation from
// the store; creation-time and lookup-time derivation can never drift as long
// as every caller goes through it.
func DeriveCollectionName(orgName string) string {
	return "org_" + strings.ReplaceAll(strings.ToLower(orgName), " ", "_")
}

// CollectionManager creates, renames, and drops the physical collection
// backing a tenant. It never invents a collection name independently: every
// name is derived via DeriveCollectionName, the same rule the registry uses.
//
// Collections are plain tables holding JSONB documents. They are managed at
// runtime, outside the schema migration history, because their set changes
// with every organization created or deleted.
type CollectionManager struct {
	db *sqlx.DB
}

// NewCollectionManager creates a new collection manager
func NewCollectionManager(db *sqlx.DB) *CollectionManager {
	return &CollectionManager{db: db}
}

// Provision creates the physical collection for an organization and returns
// its derived name. A pre-existing collection is tolerated rather than
// reported: organization-name uniqueness is already guaranteed upstream by
// the registry, so an existing collection with the same derived name
// indicates a prior partial failure, not a new conflict. This makes create
// retries safe.
func (m *CollectionManager) Provision(ctx context.Context, orgName string) (string, error) {
	name := DeriveCollectionName(orgName)

	// Identifiers cannot be bound as query parameters; QuoteIdentifier makes
	// the interpolation safe for arbitrary organization names.
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			doc JSONB NOT NULL DEFAULT '{}',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`, pq.QuoteIdentifier(name))

	if _, err := m.db.ExecContext(ctx, query); err != nil {
		return "", fmt.Errorf("%w: failed to provision collection %s: %w", ErrStoreUnavailable, name, err)
	}

	return name, nil
}

// Rename atomically renames the physical collection from the old derived name
// to the new derived name. The store rejects the rename when the source is
// missing or the target already exists; that failure is fatal for the
// enclosing update operation and is never retried automatically.
func (m *CollectionManager) Rename(ctx context.Context, oldOrgName, newOrgName string) (string, error) {
	oldName := DeriveCollectionName(oldOrgName)
	newName := DeriveCollectionName(newOrgName)

	query := fmt.Sprintf(`ALTER TABLE %s RENAME TO %s`,
		pq.QuoteIdentifier(oldName), pq.QuoteIdentifier(newName))

	if _, err := m.db.ExecContext(ctx, query); err != nil {
		return "", fmt.Errorf("%w: %s -> %s: %w", ErrRenameFailed, oldName, newName, err)
	}

	return newName, nil
}

// Drop removes the physical collection. An already-absent collection is
// treated as success so the whole organization delete flow is safe to retry.
func (m *CollectionManager) Drop(ctx context.Context, orgName string) error {
	name := DeriveCollectionName(orgName)

	query := fmt.Sprintf(`DROP TABLE IF EXISTS %s`, pq.QuoteIdentifier(name))

	if _, err := m.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("%w: failed to drop collection %s: %w", ErrStoreUnavailable, name, err)
	}

	return nil
}

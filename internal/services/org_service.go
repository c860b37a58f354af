// org_service.go implements the tenant lifecycle manager. It keeps three
// pieces of state consistent under concurrent requests: the master registry of
// organizations, the per-organization data collections, and the admin account
// records linked to an organization by name.
package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/org-registry/org-registry/internal/db/models"
	"github.com/org-registry/org-registry/internal/db/repositories"
	"github.com/org-registry/org-registry/internal/telemetry"
)

// PasswordHasher is the opaque one-way hash/verify capability for passwords.
type PasswordHasher interface {
	Hash(raw string) (string, error)
	Verify(raw, hash string) bool
}

// OrgService orchestrates organization lifecycle operations across the
// registry, the collection manager, and the admin accounts. It holds no
// in-process locks: the database's unique constraints are the correctness
// mechanism under concurrency, and no operation blocks another organization's
// operations.
type OrgService struct {
	orgs        *repositories.OrganizationRepository
	users       *repositories.UserRepository
	collections *CollectionManager
	hasher      PasswordHasher
}

// NewOrgService creates a new organization lifecycle service
func NewOrgService(
	orgs *repositories.OrganizationRepository,
	users *repositories.UserRepository,
	collections *CollectionManager,
	hasher PasswordHasher,
) *OrgService {
	return &OrgService{
		orgs:        orgs,
		users:       users,
		collections: collections,
		hasher:      hasher,
	}
}

// UpdateParams carries the optional fields of an organization update. An
// empty field means "leave unchanged". The organization being updated is
// always the caller's own, resolved from the access token, never from the
// payload.
type UpdateParams struct {
	Name     string
	Email    string
	Password string
}

// Create registers a new organization: provisions its backing collection,
// creates the admin account, and persists the registry record.
//
// The GetByName/GetByEmail checks are fast-paths for a friendly error; the
// actual uniqueness guarantee under concurrent creates is the database
// constraint, whose violation is mapped to the same conflict error.
func (s *OrgService) Create(ctx context.Context, name, email, password string) (*models.Organization, error) {
	existing, err := s.orgs.GetByName(ctx, name)
	if err != nil {
		return nil, s.storeErr("create", err)
	}
	if existing != nil {
		telemetry.OrgLifecycleOpsTotal.WithLabelValues("create", "error").Inc()
		return nil, ErrOrgExists
	}

	existingUser, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, s.storeErr("create", err)
	}
	if existingUser != nil {
		telemetry.OrgLifecycleOpsTotal.WithLabelValues("create", "error").Inc()
		return nil, ErrEmailExists
	}

	collectionName, err := s.collections.Provision(ctx, name)
	if err != nil {
		telemetry.OrgLifecycleOpsTotal.WithLabelValues("create", "error").Inc()
		return nil, err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	org := &models.Organization{
		Name:           name,
		CollectionName: collectionName,
		AdminEmail:     email,
	}
	if err := s.orgs.Create(ctx, org); err != nil {
		telemetry.OrgLifecycleOpsTotal.WithLabelValues("create", "error").Inc()
		if isUniqueViolation(err, "organizations_name_key") {
			return nil, ErrOrgExists
		}
		return nil, s.storeErr("create", err)
	}

	user := &models.User{
		Email:            email,
		PasswordHash:     hash,
		OrganizationName: name,
		OrganizationID:   org.ID,
	}
	if err := s.users.Create(ctx, user); err != nil {
		telemetry.OrgLifecycleOpsTotal.WithLabelValues("create", "error").Inc()
		if isUniqueViolation(err, "users_email_key") {
			// A concurrent signup won the email. Compensate by removing the
			// registry record so the name is not held by an adminless org.
			// The provisioned collection stays: provision is idempotent, so a
			// retry with a different email reuses it.
			if _, delErr := s.orgs.Delete(ctx, name); delErr != nil {
				slog.Error("failed to compensate registry record after email conflict",
					"organization", name, "error", delErr)
			}
			return nil, ErrEmailExists
		}
		return nil, s.storeErr("create", err)
	}

	telemetry.OrgLifecycleOpsTotal.WithLabelValues("create", "success").Inc()
	slog.Info("organization created", "organization", name, "collection", collectionName)
	return org, nil
}

// Get retrieves an organization by name.
func (s *OrgService) Get(ctx context.Context, name string) (*models.Organization, error) {
	org, err := s.orgs.GetByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	if org == nil {
		return nil, ErrOrgNotFound
	}
	return org, nil
}

// Authenticate verifies an admin's email/password pair. Unknown email and
// wrong password return the identical error.
func (s *OrgService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	if user == nil || !s.hasher.Verify(password, user.PasswordHash) {
		telemetry.LoginAttemptsTotal.WithLabelValues("failure").Inc()
		return nil, ErrInvalidCredentials
	}

	telemetry.LoginAttemptsTotal.WithLabelValues("success").Inc()
	return user, nil
}

// Update mutates the acting admin's own organization: an optional rename, an
// optional admin email change, and an optional password change.
//
// A rename is a two-phase sequence with no cross-step transaction: the
// physical collection is renamed first, then the registry record. A physical
// failure aborts the update before any registry or account mutation. A
// registry failure after a successful physical rename leaves the two stores
// disagreeing, an accepted inconsistency window that is counted and logged
// for operator reconciliation rather than papered over.
func (s *OrgService) Update(ctx context.Context, actor *models.User, p UpdateParams) (*models.Organization, error) {
	currentName := actor.OrganizationName

	if p.Name != "" && p.Name != currentName {
		existing, err := s.orgs.GetByName(ctx, p.Name)
		if err != nil {
			return nil, s.storeErr("rename", err)
		}
		if existing != nil {
			telemetry.OrgLifecycleOpsTotal.WithLabelValues("rename", "error").Inc()
			return nil, ErrOrgExists
		}

		newCollection, err := s.collections.Rename(ctx, currentName, p.Name)
		if err != nil {
			telemetry.OrgLifecycleOpsTotal.WithLabelValues("rename", "error").Inc()
			return nil, err
		}

		n, err := s.orgs.Rename(ctx, currentName, p.Name, newCollection)
		if isUniqueViolation(err, "organizations_name_key") {
			// The target name was claimed between the fast-path check and
			// the registry rename. The physical rename succeeded for our
			// own distinct collection name, so this is a user-level
			// conflict, not a store divergence.
			telemetry.OrgLifecycleOpsTotal.WithLabelValues("rename", "error").Inc()
			return nil, ErrOrgExists
		}
		if err != nil || n == 0 {
			// The physical rename already happened; the registry now
			// disagrees with the store.
			telemetry.RenameDivergenceTotal.Inc()
			telemetry.OrgLifecycleOpsTotal.WithLabelValues("rename", "error").Inc()
			slog.Error("registry rename failed after physical collection rename",
				"old", currentName, "new", p.Name, "collection", newCollection, "error", err)
			if err != nil {
				return nil, s.storeErr("rename", err)
			}
			return nil, ErrOrgNotFound
		}

		if _, err := s.users.ReassignOrganization(ctx, currentName, p.Name); err != nil {
			return nil, s.storeErr("rename", err)
		}

		telemetry.OrgLifecycleOpsTotal.WithLabelValues("rename", "success").Inc()
		slog.Info("organization renamed", "old", currentName, "new", p.Name, "collection", newCollection)
		currentName = p.Name
	}

	if p.Email != "" && p.Email != actor.Email {
		existing, err := s.users.GetByEmail(ctx, p.Email)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
		}
		if existing != nil {
			return nil, ErrEmailExists
		}

		if err := s.users.UpdateEmail(ctx, actor.ID, p.Email); err != nil {
			if isUniqueViolation(err, "users_email_key") {
				return nil, ErrEmailExists
			}
			return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
		}
		if err := s.orgs.UpdateAdminEmail(ctx, currentName, p.Email); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
		}
	}

	if p.Password != "" {
		hash, err := s.hasher.Hash(p.Password)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		if err := s.users.UpdatePassword(ctx, actor.ID, hash); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
		}
	}

	return s.Get(ctx, currentName)
}

// Delete removes an organization: its collection, its registry record, and
// every admin account referencing it. Only the organization's own admin may
// delete it; a cross-organization attempt fails before anything is mutated.
//
// The collection drop is attempted first so a failed drop blocks the rest,
// and its idempotence makes retrying the whole delete safe. A second delete
// of an already-deleted name reports not-found without any store error.
func (s *OrgService) Delete(ctx context.Context, actor *models.User, name string) error {
	if actor.OrganizationName != name {
		return ErrForbidden
	}

	if err := s.collections.Drop(ctx, name); err != nil {
		telemetry.OrgLifecycleOpsTotal.WithLabelValues("delete", "error").Inc()
		return err
	}

	n, err := s.orgs.Delete(ctx, name)
	if err != nil {
		telemetry.OrgLifecycleOpsTotal.WithLabelValues("delete", "error").Inc()
		return s.storeErr("delete", err)
	}
	if n == 0 {
		return ErrOrgNotFound
	}

	if _, err := s.users.DeleteByOrganization(ctx, name); err != nil {
		telemetry.OrgLifecycleOpsTotal.WithLabelValues("delete", "error").Inc()
		return s.storeErr("delete", err)
	}

	telemetry.OrgLifecycleOpsTotal.WithLabelValues("delete", "success").Inc()
	slog.Info("organization deleted", "organization", name)
	return nil
}

// storeErr wraps an underlying store failure in the taxonomy and counts it.
func (s *OrgService) storeErr(op string, err error) error {
	telemetry.OrgLifecycleOpsTotal.WithLabelValues(op, "error").Inc()
	return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
}

// errors.go defines the typed failure taxonomy for organization lifecycle
// operations. Handlers map these to HTTP statuses with errors.Is; nothing in
// the service layer is silently swallowed except the explicitly idempotent
// cases (collection already exists on provision, already absent on drop).
package services

import (
	"errors"

	"github.com/lib/pq"
)

var (
	// ErrOrgExists indicates a uniqueness violation on the organization name.
	ErrOrgExists = errors.New("organization already exists")

	// ErrOrgNotFound indicates an organization lookup miss.
	ErrOrgNotFound = errors.New("organization not found")

	// ErrEmailExists indicates a uniqueness violation on the admin email.
	ErrEmailExists = errors.New("admin email already exists")

	// ErrInvalidCredentials is returned for both an unknown email and a wrong
	// password. The two cases are deliberately indistinguishable so that login
	// responses cannot be used to enumerate registered admin emails.
	ErrInvalidCredentials = errors.New("incorrect email or password")

	// ErrForbidden indicates an authenticated admin acting on an organization
	// that is not their own.
	ErrForbidden = errors.New("not authorized to act on this organization")

	// ErrRenameFailed indicates the underlying store rejected the physical
	// collection rename (source missing, target already exists). It aborts the
	// enclosing update before any registry or account mutation is attempted.
	ErrRenameFailed = errors.New("collection rename failed")

	// ErrStoreUnavailable indicates an underlying data-store operation failed.
	ErrStoreUnavailable = errors.New("data store unavailable")
)

// uniqueViolation is the PostgreSQL error code for a unique-constraint
// violation (class 23, integrity constraint violation).
const uniqueViolationCode = "23505"

// isUniqueViolation reports whether err is a unique-constraint violation on
// the named constraint. The constraint name disambiguates an organization-name
// conflict from an admin-email conflict when a single statement can hit
// either.
func isUniqueViolation(err error, constraint string) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	if pqErr.Code != uniqueViolationCode {
		return false
	}
	return constraint == "" || pqErr.Constraint == constraint
}

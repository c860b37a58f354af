package repositories

import (
	"context"
	"errors"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"

	"github.com/org-registry/org-registry/internal/db/models"
)

// ---------------------------------------------------------------------------
// Column definitions and row builders
// ---------------------------------------------------------------------------

var userCols = []string{"id", "email", "password_hash", "organization_name", "organization_id", "created_at", "updated_at"}

func sampleUserRow() *sqlmock.Rows {
	return sqlmock.NewRows(userCols).
		AddRow("user-1", "admin@acme.com", "$2a$12$hash", "Acme Corp", "org-1", time.Now(), time.Now())
}

func emptyUserRow() *sqlmock.Rows {
	return sqlmock.NewRows(userCols)
}

func newUserRepo(t *testing.T) (*UserRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewUserRepository(sqlx.NewDb(db, "sqlmock")), mock
}

// ---------------------------------------------------------------------------
// Create
// ---------------------------------------------------------------------------

func TestUserCreate_AssignsIDAndTimestamps(t *testing.T) {
	repo, mock := newUserRepo(t)
	mock.ExpectExec("INSERT INTO users").
		WillReturnResult(sqlmock.NewResult(0, 1))

	user := &models.User{
		Email:            "admin@acme.com",
		PasswordHash:     "$2a$12$hash",
		OrganizationName: "Acme Corp",
		OrganizationID:   "org-1",
	}
	if err := repo.Create(context.Background(), user); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.ID == "" {
		t.Error("ID not assigned")
	}
	if user.CreatedAt.IsZero() || user.UpdatedAt.IsZero() {
		t.Error("timestamps not assigned")
	}
}

func TestUserCreate_Error(t *testing.T) {
	repo, mock := newUserRepo(t)
	mock.ExpectExec("INSERT INTO users").
		WillReturnError(errors.New("duplicate key value"))

	if err := repo.Create(context.Background(), &models.User{Email: "admin@acme.com"}); err == nil {
		t.Fatal("expected error, got nil")
	}
}

// ---------------------------------------------------------------------------
// GetByEmail
// ---------------------------------------------------------------------------

func TestUserGetByEmail_Found(t *testing.T) {
	repo, mock := newUserRepo(t)
	mock.ExpectQuery("SELECT.*FROM users.*WHERE email").
		WithArgs("admin@acme.com").
		WillReturnRows(sampleUserRow())

	user, err := repo.GetByEmail(context.Background(), "admin@acme.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user == nil {
		t.Fatal("expected user, got nil")
	}
	if user.OrganizationName != "Acme Corp" {
		t.Errorf("OrganizationName = %s, want Acme Corp", user.OrganizationName)
	}
}

func TestUserGetByEmail_NotFound(t *testing.T) {
	repo, mock := newUserRepo(t)
	mock.ExpectQuery("SELECT.*FROM users.*WHERE email").
		WillReturnRows(emptyUserRow())

	user, err := repo.GetByEmail(context.Background(), "ghost@acme.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user != nil {
		t.Error("expected nil, got non-nil")
	}
}

// ---------------------------------------------------------------------------
// UpdateEmail / UpdatePassword
// ---------------------------------------------------------------------------

func TestUserUpdateEmail(t *testing.T) {
	repo, mock := newUserRepo(t)
	mock.ExpectExec("UPDATE users").
		WithArgs("user-1", "new@acme.com").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.UpdateEmail(context.Background(), "user-1", "new@acme.com"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestUserUpdatePassword(t *testing.T) {
	repo, mock := newUserRepo(t)
	mock.ExpectExec("UPDATE users").
		WithArgs("user-1", "$2a$12$newhash").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.UpdatePassword(context.Background(), "user-1", "$2a$12$newhash"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// ---------------------------------------------------------------------------
// ReassignOrganization / DeleteByOrganization
// ---------------------------------------------------------------------------

func TestUserReassignOrganization_BulkUpdate(t *testing.T) {
	repo, mock := newUserRepo(t)
	mock.ExpectExec("UPDATE users").
		WithArgs("Acme Corp", "Globex").
		WillReturnResult(sqlmock.NewResult(0, 3))

	n, err := repo.ReassignOrganization(context.Background(), "Acme Corp", "Globex")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 3 {
		t.Errorf("rows affected = %d, want 3", n)
	}
}

func TestUserDeleteByOrganization(t *testing.T) {
	repo, mock := newUserRepo(t)
	mock.ExpectExec("DELETE FROM users").
		WithArgs("Acme Corp").
		WillReturnResult(sqlmock.NewResult(0, 1))

	n, err := repo.DeleteByOrganization(context.Background(), "Acme Corp")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 1 {
		t.Errorf("rows affected = %d, want 1", n)
	}
}

func TestUserDeleteByOrganization_NoAccounts(t *testing.T) {
	repo, mock := newUserRepo(t)
	mock.ExpectExec("DELETE FROM users").
		WillReturnResult(sqlmock.NewResult(0, 0))

	n, err := repo.DeleteByOrganization(context.Background(), "Ghost Org")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 0 {
		t.Errorf("rows affected = %d, want 0", n)
	}
}

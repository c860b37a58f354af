package services

import (
	"context"
	"errors"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
)

// ---------------------------------------------------------------------------
// DeriveCollectionName
// ---------------------------------------------------------------------------

func TestDeriveCollectionName(t *testing.T) {
	tests := []struct {
		name    string
		orgName string
		want    string
	}{
		{"mixed case with space", "Acme Corp", "org_acme_corp"},
		{"already lowercase", "acme corp", "org_acme_corp"},
		{"single word", "Globex", "org_globex"},
		{"multiple spaces", "A B C", "org_a_b_c"},
		{"no transformation needed", "plain", "org_plain"},
		{"empty name", "", "org_"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DeriveCollectionName(tt.orgName); got != tt.want {
				t.Errorf("DeriveCollectionName(%q) = %q, want %q", tt.orgName, got, tt.want)
			}
		})
	}
}

// Names differing only in case or spacing collapse to the same collection.
// The registry's name uniqueness is what keeps such organizations from
// coexisting; the derivation itself is deliberately lossy.
func TestDeriveCollectionName_CaseInsensitiveCollision(t *testing.T) {
	if DeriveCollectionName("Acme Corp") != DeriveCollectionName("ACME corp") {
		t.Error("case variants should derive the same collection name")
	}
}

// ---------------------------------------------------------------------------
// CollectionManager
// ---------------------------------------------------------------------------

func newCollectionManager(t *testing.T) (*CollectionManager, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewCollectionManager(sqlx.NewDb(db, "sqlmock")), mock
}

func TestCollectionManager_Provision(t *testing.T) {
	m, mock := newCollectionManager(t)

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS "org_acme_corp"`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	name, err := m.Provision(context.Background(), "Acme Corp")
	if err != nil {
		t.Fatalf("Provision: %v", err)
	}
	if name != "org_acme_corp" {
		t.Errorf("Provision returned %q, want org_acme_corp", name)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestCollectionManager_ProvisionStoreError(t *testing.T) {
	m, mock := newCollectionManager(t)

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS").
		WillReturnError(errors.New("connection refused"))

	if _, err := m.Provision(context.Background(), "Acme Corp"); !errors.Is(err, ErrStoreUnavailable) {
		t.Errorf("Provision error = %v, want ErrStoreUnavailable", err)
	}
}

func TestCollectionManager_Rename(t *testing.T) {
	m, mock := newCollectionManager(t)

	mock.ExpectExec(`ALTER TABLE "org_acme_corp" RENAME TO "org_globex"`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	newName, err := m.Rename(context.Background(), "Acme Corp", "Globex")
	if err != nil {
		t.Fatalf("Rename: %v", err)
	}
	if newName != "org_globex" {
		t.Errorf("Rename returned %q, want org_globex", newName)
	}
}

func TestCollectionManager_RenameFailure(t *testing.T) {
	m, mock := newCollectionManager(t)

	mock.ExpectExec("ALTER TABLE").
		WillReturnError(errors.New(`relation "org_globex" already exists`))

	_, err := m.Rename(context.Background(), "Acme Corp", "Globex")
	if !errors.Is(err, ErrRenameFailed) {
		t.Errorf("Rename error = %v, want ErrRenameFailed", err)
	}
}

func TestCollectionManager_Drop(t *testing.T) {
	m, mock := newCollectionManager(t)

	mock.ExpectExec(`DROP TABLE IF EXISTS "org_acme_corp"`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := m.Drop(context.Background(), "Acme Corp"); err != nil {
		t.Fatalf("Drop: %v", err)
	}
}

func TestCollectionManager_DropStoreError(t *testing.T) {
	m, mock := newCollectionManager(t)

	mock.ExpectExec("DROP TABLE IF EXISTS").
		WillReturnError(errors.New("connection refused"))

	if err := m.Drop(context.Background(), "Acme Corp"); !errors.Is(err, ErrStoreUnavailable) {
		t.Errorf("Drop error = %v, want ErrStoreUnavailable", err)
	}
}

// QuoteIdentifier must neutralize names that would otherwise break out of the
// identifier position.
func TestCollectionManager_QuotesHostileNames(t *testing.T) {
	m, mock := newCollectionManager(t)

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS "org_x"";_drop_table_users;--"`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	name, err := m.Provision(context.Background(), `x"; DROP TABLE users;--`)
	if err != nil {
		t.Fatalf("Provision: %v", err)
	}
	if name != `org_x";_drop_table_users;--` {
		t.Errorf("derived name = %q", name)
	}
}

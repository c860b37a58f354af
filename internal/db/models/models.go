// Package models defines the database entities stored in the master registry.
package models

import "time"

// Organization is the master registry record for a tenant. The collection_name
// column is always the derivation of the current name; the two are updated
// together on rename.
type Organization struct {
	ID             string    `db:"id" json:"-"`
	Name           string    `db:"name" json:"organization_name"`
	CollectionName string    `db:"collection_name" json:"collection_name"`
	AdminEmail     string    `db:"admin_email" json:"admin_email"`
	CreatedAt      time.Time `db:"created_at" json:"-"`
	UpdatedAt      time.Time `db:"updated_at" json:"-"`
}

// User is an admin account. OrganizationName is the mutable back-reference the
// rename cascade maintains; OrganizationID is the stable identifier that
// survives renames.
type User struct {
	ID               string    `db:"id"`
	Email            string    `db:"email"`
	PasswordHash     string    `db:"password_hash"`
	OrganizationName string    `db:"organization_name"`
	OrganizationID   string    `db:"organization_id"`
	CreatedAt        time.Time `db:"created_at"`
	UpdatedAt        time.Time `db:"updated_at"`
}

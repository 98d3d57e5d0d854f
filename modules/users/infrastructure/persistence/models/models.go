package models

import (
	"database/sql"
	"time"
)

// User is a users row left-joined with its supplier's name.
type User struct {
	ID                int64
	Name              string
	EmailAddress      string
	Password          string
	Active            bool
	Locked            bool
	Role              string
	SupplierID        sql.NullInt64
	SupplierName      sql.NullString
	FailedLoginCount  int
	CreatedAt         time.Time
	UpdatedAt         time.Time
	PasswordChangedAt time.Time
}

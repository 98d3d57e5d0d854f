package user

import (
	"context"
	"errors"
	"strings"
	"time"
)

var (
	ErrUserNotFound   = errors.New("user not found")
	ErrDuplicateEmail = errors.New("email address already in use")
)

type Role string

const (
	RoleBuyer    Role = "buyer"
	RoleSupplier Role = "supplier"
	RoleAdmin    Role = "admin"
	RoleAdminCCS Role = "admin-ccs"
)

func NewRole(r string) (Role, error) {
	role := Role(r)
	if !role.IsValid() {
		return "", errors.New("invalid role")
	}
	return role, nil
}

func (r Role) IsValid() bool {
	switch r {
	case RoleBuyer, RoleSupplier, RoleAdmin, RoleAdminCCS:
		return true
	}
	return false
}

type User struct {
	ID                int64
	Name              string
	EmailAddress      string
	Password          string
	Active            bool
	Locked            bool
	Role              Role
	SupplierID        *int64
	SupplierName      string
	FailedLoginCount  int
	CreatedAt         time.Time
	UpdatedAt         time.Time
	PasswordChangedAt time.Time
}

// NormalizeEmail is the form e-mail addresses are stored and looked up in.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

type Repository interface {
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	// GetByEmailForUpdate locks the user row until the surrounding transaction ends.
	GetByEmailForUpdate(ctx context.Context, email string) (*User, error)
	Create(ctx context.Context, u *User) error
	Update(ctx context.Context, u *User) error
	// RecordLogin persists the outcome of an authentication attempt.
	RecordLogin(ctx context.Context, id int64, failedLoginCount int, locked bool) error
}

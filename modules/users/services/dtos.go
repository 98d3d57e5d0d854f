package services

import (
	"strings"

	"github.com/iota-uz/catalog-api/modules/users/domain/aggregates/user"
	"github.com/iota-uz/catalog-api/pkg/constants"
)

type CreateUserDTO struct {
	EmailAddress string `json:"emailAddress" validate:"required,email,max=255"`
	Password     string `json:"password" validate:"required,max=255"`
	Role         string `json:"role" validate:"required"`
	Name         string `json:"name" validate:"required,max=255"`
	SupplierID   *int64 `json:"supplierId,omitempty"`
	// HashPassword defaults to true; false stores Password as an existing bcrypt hash.
	HashPassword *bool `json:"hashpw,omitempty"`
}

func (d *CreateUserDTO) Ok() (user.Role, bool) {
	trimmed := *d
	trimmed.EmailAddress = strings.TrimSpace(d.EmailAddress)
	trimmed.Name = strings.TrimSpace(d.Name)
	if err := constants.Validate.Struct(&trimmed); err != nil {
		return "", false
	}
	role, err := user.NewRole(d.Role)
	if err != nil {
		return "", false
	}
	return role, true
}

func (d *CreateUserDTO) hashPassword() bool {
	return d.HashPassword == nil || *d.HashPassword
}

// UpdateUserDTO carries a partial update; nil fields are left untouched.
type UpdateUserDTO struct {
	Password     *string `json:"password,omitempty"`
	Active       *bool   `json:"active,omitempty"`
	Locked       *bool   `json:"locked,omitempty"`
	Name         *string `json:"name,omitempty" validate:"omitempty,max=255"`
	Role         *string `json:"role,omitempty"`
	SupplierID   *int64  `json:"supplierId,omitempty"`
	EmailAddress *string `json:"emailAddress,omitempty" validate:"omitempty,email,max=255"`
}

type AuthUserDTO struct {
	EmailAddress string `json:"emailAddress" validate:"required"`
	Password     string `json:"password" validate:"required"`
}

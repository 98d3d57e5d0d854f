package mappers

import (
	"github.com/iota-uz/catalog-api/modules/catalog/presentation/mappers"
	"github.com/iota-uz/catalog-api/modules/users/domain/aggregates/user"
)

type SupplierRefJSON struct {
	SupplierID int64  `json:"supplierId"`
	Name       string `json:"name"`
}

// UserJSON never carries the password hash.
type UserJSON struct {
	ID                int64            `json:"id"`
	EmailAddress      string           `json:"emailAddress"`
	Name              string           `json:"name"`
	Role              string           `json:"role"`
	Active            bool             `json:"active"`
	Locked            bool             `json:"locked"`
	CreatedAt         string           `json:"createdAt"`
	UpdatedAt         string           `json:"updatedAt"`
	PasswordChangedAt string           `json:"passwordChangedAt"`
	Supplier          *SupplierRefJSON `json:"supplier,omitempty"`
}

func UserToJSON(u *user.User) UserJSON {
	out := UserJSON{
		ID:                u.ID,
		EmailAddress:      u.EmailAddress,
		Name:              u.Name,
		Role:              string(u.Role),
		Active:            u.Active,
		Locked:            u.Locked,
		CreatedAt:         u.CreatedAt.UTC().Format(mappers.TimestampFormat),
		UpdatedAt:         u.UpdatedAt.UTC().Format(mappers.TimestampFormat),
		PasswordChangedAt: u.PasswordChangedAt.UTC().Format(mappers.TimestampFormat),
	}
	if u.Role == user.RoleSupplier && u.SupplierID != nil {
		out.Supplier = &SupplierRefJSON{SupplierID: *u.SupplierID, Name: u.SupplierName}
	}
	return out
}

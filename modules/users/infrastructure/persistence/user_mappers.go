package persistence

import (
	"database/sql"

	"github.com/iota-uz/catalog-api/modules/users/domain/aggregates/user"
	"github.com/iota-uz/catalog-api/modules/users/infrastructure/persistence/models"
)

func toDomainUser(m *models.User) *user.User {
	u := &user.User{
		ID:                m.ID,
		Name:              m.Name,
		EmailAddress:      m.EmailAddress,
		Password:          m.Password,
		Active:            m.Active,
		Locked:            m.Locked,
		Role:              user.Role(m.Role),
		FailedLoginCount:  m.FailedLoginCount,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
		PasswordChangedAt: m.PasswordChangedAt,
	}
	if m.SupplierID.Valid {
		id := m.SupplierID.Int64
		u.SupplierID = &id
		u.SupplierName = m.SupplierName.String
	}
	return u
}

func toDBUser(u *user.User) *models.User {
	m := &models.User{
		ID:                u.ID,
		Name:              u.Name,
		EmailAddress:      user.NormalizeEmail(u.EmailAddress),
		Password:          u.Password,
		Active:            u.Active,
		Locked:            u.Locked,
		Role:              string(u.Role),
		FailedLoginCount:  u.FailedLoginCount,
		CreatedAt:         u.CreatedAt,
		UpdatedAt:         u.UpdatedAt,
		PasswordChangedAt: u.PasswordChangedAt,
	}
	if u.SupplierID != nil {
		m.SupplierID = sql.NullInt64{Int64: *u.SupplierID, Valid: true}
	}
	return m
}

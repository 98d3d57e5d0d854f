package supplier

import (
	"context"
	"errors"
)

var ErrSupplierNotFound = errors.New("supplier not found")

type Contact struct {
	ContactName string `json:"contactName" yaml:"contactName"`
	Email       string `json:"email" yaml:"email"`
	PhoneNumber string `json:"phoneNumber,omitempty" yaml:"phoneNumber"`
	Website     string `json:"website,omitempty" yaml:"website"`
	Address1    string `json:"address1,omitempty" yaml:"address1"`
	City        string `json:"city,omitempty" yaml:"city"`
	Postcode    string `json:"postcode,omitempty" yaml:"postcode"`
}

type Supplier struct {
	ID          int64
	SupplierID  int64
	Name        string
	Description string
	DunsNumber  string
	Contacts    []Contact
}

type FindParams struct {
	// NamePrefix filters case-insensitively; "other" selects names not starting with a letter.
	NamePrefix string
	Limit      int
	Offset     int
}

type Repository interface {
	GetBySupplierID(ctx context.Context, supplierID int64) (*Supplier, error)
	List(ctx context.Context, params *FindParams) ([]*Supplier, error)
	Count(ctx context.Context, params *FindParams) (int64, error)
	Upsert(ctx context.Context, s *Supplier) error
}

package models

import "time"

type Framework struct {
	ID      int64
	Name    string
	Expired bool
}

type Supplier struct {
	ID                 int64
	SupplierID         int64
	Name               string
	Description        string
	DunsNumber         string
	ContactInformation []byte
}

// Service is a services row joined with its supplier and framework.
type Service struct {
	ID               int64
	ServiceID        string
	SupplierID       int64
	SupplierName     string
	FrameworkID      int64
	FrameworkName    string
	FrameworkExpired bool
	Status           string
	Data             []byte
	CreatedAt        time.Time
	UpdatedAt        time.Time
	UpdatedBy        string
	UpdatedReason    string
}

type ArchivedService struct {
	Service
}

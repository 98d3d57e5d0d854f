package service

import (
	"context"
	"errors"
	"time"
)

var (
	ErrServiceNotFound = errors.New("service not found")
)

// Fields the API derives from relations or bookkeeping. They are never stored in Data.
const (
	FieldID            = "id"
	FieldSupplierID    = "supplierId"
	FieldSupplierName  = "supplierName"
	FieldFrameworkID   = "frameworkId"
	FieldFrameworkName = "frameworkName"
	FieldStatus        = "status"
	FieldLinks         = "links"
	FieldCreatedAt     = "createdAt"
	FieldUpdatedAt     = "updatedAt"
)

// Updater identifies who changed a service and why.
type Updater struct {
	By     string
	Reason string
}

type Service struct {
	ID               int64
	ServiceID        string
	SupplierID       int64
	SupplierName     string
	FrameworkID      int64
	FrameworkName    string
	FrameworkExpired bool
	Status           Status
	Data             Document
	CreatedAt        time.Time
	UpdatedAt        time.Time
	UpdatedBy        string
	UpdatedReason    string
}

// New builds a freshly imported service. CreatedAt and UpdatedAt are identical.
func New(serviceID string, supplierID, frameworkID int64, status Status, data Document, by Updater, now time.Time) *Service {
	now = normalize(now)
	return &Service{
		ServiceID:     serviceID,
		SupplierID:    supplierID,
		FrameworkID:   frameworkID,
		Status:        status,
		Data:          data.Clone(),
		CreatedAt:     now,
		UpdatedAt:     now,
		UpdatedBy:     by.By,
		UpdatedReason: by.Reason,
	}
}

// ApplyUpdate merges patch into Data and stamps the change. Status is untouched.
func (s *Service) ApplyUpdate(patch Document, by Updater, now time.Time) {
	s.Data = s.Data.Merge(patch)
	s.stamp(by, now)
}

// TransitionTo overwrites the status and stamps the change, even when the status is unchanged.
func (s *Service) TransitionTo(status Status, by Updater, now time.Time) {
	s.Status = status
	s.stamp(by, now)
}

func (s *Service) stamp(by Updater, now time.Time) {
	now = normalize(now)
	if !now.After(s.UpdatedAt) {
		now = s.UpdatedAt.Add(time.Microsecond)
	}
	s.UpdatedAt = now
	s.UpdatedBy = by.By
	s.UpdatedReason = by.Reason
}

// Clone returns a deep copy.
func (s *Service) Clone() *Service {
	out := *s
	out.Data = s.Data.Clone()
	return &out
}

// Document returns Data overlaid with the relational fields, the shape clients and the search index see.
func (s *Service) Document() Document {
	doc := s.Data.Clone()
	if doc == nil {
		doc = Document{}
	}
	doc[FieldID] = s.ServiceID
	doc[FieldSupplierID] = s.SupplierID
	doc[FieldSupplierName] = s.SupplierName
	doc[FieldFrameworkName] = s.FrameworkName
	doc[FieldStatus] = string(s.Status)
	return doc
}

// Postgres stores microseconds.
func normalize(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}

type FindParams struct {
	Statuses       []Status
	SupplierID     *int64
	IncludeExpired bool
	Limit          int
	Offset         int
}

type Repository interface {
	GetByServiceID(ctx context.Context, serviceID string) (*Service, error)
	// GetByServiceIDForUpdate row-locks the live record until the surrounding transaction ends.
	GetByServiceIDForUpdate(ctx context.Context, serviceID string) (*Service, error)
	Exists(ctx context.Context, serviceID string) (bool, error)
	List(ctx context.Context, params *FindParams) ([]*Service, error)
	Count(ctx context.Context, params *FindParams) (int64, error)
	Create(ctx context.Context, s *Service) error
	Update(ctx context.Context, s *Service) error
}

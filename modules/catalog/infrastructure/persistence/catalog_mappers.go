package persistence

import (
	"encoding/json"

	"github.com/go-faster/errors"

	"github.com/iota-uz/catalog-api/modules/catalog/domain/aggregates/service"
	"github.com/iota-uz/catalog-api/modules/catalog/domain/entities/archivedservice"
	"github.com/iota-uz/catalog-api/modules/catalog/domain/entities/framework"
	"github.com/iota-uz/catalog-api/modules/catalog/domain/entities/supplier"
	"github.com/iota-uz/catalog-api/modules/catalog/infrastructure/persistence/models"
)

func toDBService(s *service.Service) (*models.Service, error) {
	data := s.Data
	if data == nil {
		data = service.Document{}
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, errors.Wrap(err, "marshal service data")
	}
	return &models.Service{
		ID:               s.ID,
		ServiceID:        s.ServiceID,
		SupplierID:       s.SupplierID,
		SupplierName:     s.SupplierName,
		FrameworkID:      s.FrameworkID,
		FrameworkName:    s.FrameworkName,
		FrameworkExpired: s.FrameworkExpired,
		Status:           string(s.Status),
		Data:             raw,
		CreatedAt:        s.CreatedAt,
		UpdatedAt:        s.UpdatedAt,
		UpdatedBy:        s.UpdatedBy,
		UpdatedReason:    s.UpdatedReason,
	}, nil
}

func toDomainService(m *models.Service) (*service.Service, error) {
	data := service.Document{}
	if len(m.Data) > 0 {
		doc, err := service.DecodeDocument(m.Data)
		if err != nil {
			return nil, errors.Wrapf(err, "decode data of service %s", m.ServiceID)
		}
		data = doc
	}
	return &service.Service{
		ID:               m.ID,
		ServiceID:        m.ServiceID,
		SupplierID:       m.SupplierID,
		SupplierName:     m.SupplierName,
		FrameworkID:      m.FrameworkID,
		FrameworkName:    m.FrameworkName,
		FrameworkExpired: m.FrameworkExpired,
		Status:           service.Status(m.Status),
		Data:             data,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
		UpdatedBy:        m.UpdatedBy,
		UpdatedReason:    m.UpdatedReason,
	}, nil
}

func toDBArchivedService(a *archivedservice.ArchivedService) (*models.ArchivedService, error) {
	row, err := toDBService(&a.Service)
	if err != nil {
		return nil, err
	}
	row.ID = a.ID
	return &models.ArchivedService{Service: *row}, nil
}

func toDomainArchivedService(m *models.ArchivedService) (*archivedservice.ArchivedService, error) {
	snapshot, err := toDomainService(&m.Service)
	if err != nil {
		return nil, err
	}
	// The surrogate id belongs to the archive row, not to the live service.
	snapshot.ID = 0
	return &archivedservice.ArchivedService{ID: m.ID, Service: *snapshot}, nil
}

func toDBSupplier(s *supplier.Supplier) (*models.Supplier, error) {
	contacts := s.Contacts
	if contacts == nil {
		contacts = []supplier.Contact{}
	}
	raw, err := json.Marshal(contacts)
	if err != nil {
		return nil, errors.Wrap(err, "marshal supplier contacts")
	}
	return &models.Supplier{
		ID:                 s.ID,
		SupplierID:         s.SupplierID,
		Name:               s.Name,
		Description:        s.Description,
		DunsNumber:         s.DunsNumber,
		ContactInformation: raw,
	}, nil
}

func toDomainSupplier(m *models.Supplier) (*supplier.Supplier, error) {
	var contacts []supplier.Contact
	if len(m.ContactInformation) > 0 {
		if err := json.Unmarshal(m.ContactInformation, &contacts); err != nil {
			return nil, errors.Wrapf(err, "decode contacts of supplier %d", m.SupplierID)
		}
	}
	return &supplier.Supplier{
		ID:          m.ID,
		SupplierID:  m.SupplierID,
		Name:        m.Name,
		Description: m.Description,
		DunsNumber:  m.DunsNumber,
		Contacts:    contacts,
	}, nil
}

func toDomainFramework(m *models.Framework) *framework.Framework {
	return &framework.Framework{
		ID:      m.ID,
		Name:    m.Name,
		Expired: m.Expired,
	}
}

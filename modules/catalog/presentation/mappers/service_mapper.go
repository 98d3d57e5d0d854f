package mappers

import (
	"time"

	"github.com/iota-uz/catalog-api/modules/catalog/domain/aggregates/service"
	"github.com/iota-uz/catalog-api/modules/catalog/domain/entities/archivedservice"
	"github.com/iota-uz/catalog-api/modules/catalog/domain/entities/supplier"
)

// TimestampFormat renders timestamps with microsecond precision in UTC.
const TimestampFormat = "2006-01-02T15:04:05.000000Z"

func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampFormat)
}

// ServiceToJSON is the wire shape of a service: its data overlaid with the relational fields.
func ServiceToJSON(s *service.Service, selfURL string) map[string]any {
	doc := s.Document()
	doc[service.FieldCreatedAt] = FormatTimestamp(s.CreatedAt)
	doc[service.FieldUpdatedAt] = FormatTimestamp(s.UpdatedAt)
	doc[service.FieldLinks] = map[string]string{"self": selfURL}
	return doc
}

func ServicesToJSON(items []*service.Service, selfURL func(serviceID string) string) []map[string]any {
	out := make([]map[string]any, 0, len(items))
	for _, s := range items {
		out = append(out, ServiceToJSON(s, selfURL(s.ServiceID)))
	}
	return out
}

// ArchivedServiceToJSON serializes the snapshot; links.self points at the archive record.
func ArchivedServiceToJSON(a *archivedservice.ArchivedService, selfURL string) map[string]any {
	return ServiceToJSON(&a.Service, selfURL)
}

func ArchivedServicesToJSON(items []*archivedservice.ArchivedService, selfURL func(id int64) string) []map[string]any {
	out := make([]map[string]any, 0, len(items))
	for _, a := range items {
		out = append(out, ArchivedServiceToJSON(a, selfURL(a.ID)))
	}
	return out
}

type SupplierJSON struct {
	ID                 int64              `json:"id"`
	Name               string             `json:"name"`
	Description        string             `json:"description,omitempty"`
	DunsNumber         string             `json:"dunsNumber,omitempty"`
	ContactInformation []supplier.Contact `json:"contactInformation"`
	Links              map[string]string  `json:"links"`
}

func SupplierToJSON(s *supplier.Supplier, selfURL string) SupplierJSON {
	contacts := s.Contacts
	if contacts == nil {
		contacts = []supplier.Contact{}
	}
	return SupplierJSON{
		ID:                 s.SupplierID,
		Name:               s.Name,
		Description:        s.Description,
		DunsNumber:         s.DunsNumber,
		ContactInformation: contacts,
		Links:              map[string]string{"self": selfURL},
	}
}

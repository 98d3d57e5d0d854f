package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/iota-uz/catalog-api/modules/catalog/domain/aggregates/service"
	"github.com/iota-uz/catalog-api/modules/catalog/domain/entities/archivedservice"
	"github.com/iota-uz/catalog-api/modules/catalog/domain/entities/framework"
	"github.com/iota-uz/catalog-api/modules/catalog/domain/entities/supplier"
	"github.com/iota-uz/catalog-api/pkg/composables"
	"github.com/iota-uz/catalog-api/pkg/serrors"
)

const (
	operationUpdate = "update"
	operationImport = "import"
	operationStatus = "status"
)

// importDroppedFields never reach services.data on import; the relational ones are promoted to columns.
var importDroppedFields = []string{
	service.FieldID,
	service.FieldSupplierID,
	service.FieldSupplierName,
	service.FieldFrameworkName,
	service.FieldFrameworkID,
	service.FieldStatus,
	service.FieldLinks,
	service.FieldCreatedAt,
	service.FieldUpdatedAt,
}

type ListServicesParams struct {
	Page       int
	Statuses   []string
	SupplierID *int64
}

type CatalogService struct {
	services   service.Repository
	archive    archivedservice.Repository
	suppliers  supplier.Repository
	frameworks framework.Repository
	gateway    *PersistenceGateway
	sync       *IndexSynchronizer
	pageSize   int
	now        func() time.Time
}

func NewCatalogService(
	services service.Repository,
	archive archivedservice.Repository,
	suppliers supplier.Repository,
	frameworks framework.Repository,
	index SearchIndex,
	pageSize int,
) *CatalogService {
	if pageSize <= 0 {
		pageSize = 100
	}
	return &CatalogService{
		services:   services,
		archive:    archive,
		suppliers:  suppliers,
		frameworks: frameworks,
		gateway:    NewPersistenceGateway(services, archive),
		sync:       NewIndexSynchronizer(index),
		pageSize:   pageSize,
		now:        time.Now,
	}
}

func (s *CatalogService) PageSize() int {
	return s.pageSize
}

// List returns live services on non-expired frameworks. Filtering by supplier includes expired
// frameworks and returns every match on a single unpaginated page.
func (s *CatalogService) List(ctx context.Context, params ListServicesParams) (*Page[*service.Service], error) {
	find := &service.FindParams{}
	for _, raw := range params.Statuses {
		st, err := service.ParseStatus(raw)
		if err != nil {
			return nil, serrors.Validation("INVALID_STATUS", err.Error())
		}
		find.Statuses = append(find.Statuses, st)
	}

	if params.SupplierID != nil {
		if _, err := s.suppliers.GetBySupplierID(ctx, *params.SupplierID); err != nil {
			if errors.Is(err, supplier.ErrSupplierNotFound) {
				return nil, serrors.NotFound("SUPPLIER_NOT_FOUND", fmt.Sprintf("supplier_id '%d' not found", *params.SupplierID))
			}
			return nil, serrors.Internal("CATALOG_INTERNAL", err)
		}
		find.SupplierID = params.SupplierID
		find.IncludeExpired = true
		items, err := s.services.List(ctx, find)
		if err != nil {
			return nil, serrors.Internal("CATALOG_INTERNAL", err)
		}
		return &Page[*service.Service]{Items: items, Number: 1, Total: int64(len(items))}, nil
	}

	page := params.Page
	if page < 1 {
		page = 1
	}
	offset, ok := offsetFor(page, s.pageSize)
	if !ok {
		return nil, pageNotFound(page)
	}
	total, err := s.services.Count(ctx, find)
	if err != nil {
		return nil, serrors.Internal("CATALOG_INTERNAL", err)
	}
	find.Limit = s.pageSize
	find.Offset = offset
	items, err := s.services.List(ctx, find)
	if err != nil {
		return nil, serrors.Internal("CATALOG_INTERNAL", err)
	}
	if page > 1 && len(items) == 0 {
		return nil, pageNotFound(page)
	}
	return &Page[*service.Service]{Items: items, Number: page, PageSize: s.pageSize, Total: total}, nil
}

// Get fetches a live service. Services on expired frameworks are reported as absent.
func (s *CatalogService) Get(ctx context.Context, serviceID string) (*service.Service, error) {
	if err := validateServiceID(serviceID); err != nil {
		return nil, err
	}
	svc, err := s.services.GetByServiceID(ctx, serviceID)
	if err != nil {
		return nil, s.notFoundOr(err, serviceID)
	}
	if svc.FrameworkExpired {
		return nil, serviceNotFound(serviceID)
	}
	return svc, nil
}

func (s *CatalogService) ListArchived(ctx context.Context, serviceID string, page int) (*Page[*archivedservice.ArchivedService], error) {
	if err := validateServiceID(serviceID); err != nil {
		return nil, err
	}
	if page < 1 {
		page = 1
	}
	offset, ok := offsetFor(page, s.pageSize)
	if !ok {
		return nil, pageNotFound(page)
	}
	find := &archivedservice.FindParams{ServiceID: serviceID}
	total, err := s.archive.Count(ctx, find)
	if err != nil {
		return nil, serrors.Internal("CATALOG_INTERNAL", err)
	}
	find.Limit = s.pageSize
	find.Offset = offset
	items, err := s.archive.List(ctx, find)
	if err != nil {
		return nil, serrors.Internal("CATALOG_INTERNAL", err)
	}
	if len(items) == 0 {
		return nil, serrors.NotFound("ARCHIVED_SERVICE_NOT_FOUND", fmt.Sprintf("no archived services found for '%s'", serviceID))
	}
	return &Page[*archivedservice.ArchivedService]{Items: items, Number: page, PageSize: s.pageSize, Total: total}, nil
}

func (s *CatalogService) GetArchived(ctx context.Context, id int64) (*archivedservice.ArchivedService, error) {
	a, err := s.archive.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, archivedservice.ErrArchivedServiceNotFound) {
			return nil, serrors.NotFound("ARCHIVED_SERVICE_NOT_FOUND", fmt.Sprintf("archived service %d not found", id))
		}
		return nil, serrors.Internal("CATALOG_INTERNAL", err)
	}
	return a, nil
}

// Update merges the payload into the live service's data, archiving the previous version.
func (s *CatalogService) Update(ctx context.Context, serviceID string, req *ServiceRequest) (svc *service.Service, err error) {
	defer func() { recordMutation(operationUpdate, err) }()

	if err := validateServiceID(serviceID); err != nil {
		return nil, err
	}
	if req == nil {
		req = &ServiceRequest{}
	}
	patch, err := decodeServicePayload(req.Services)
	if err != nil {
		return nil, err
	}
	if err := checkPayloadID(serviceID, patch); err != nil {
		return nil, err
	}
	updater, err := ParseUpdater(req.UpdateDetails)
	if err != nil {
		return nil, err
	}

	var prior service.Status
	var before service.Document
	err = s.gateway.InTx(ctx, func(txCtx context.Context) error {
		live, err := s.gateway.LoadForUpdate(txCtx, serviceID)
		if err != nil {
			return s.notFoundOr(err, serviceID)
		}
		cleaned, err := sanitizePatch(live, patch)
		if err != nil {
			return err
		}
		prior = live.Status
		before = live.Data.Clone()
		snapshot := archivedservice.FromService(live)
		live.ApplyUpdate(cleaned, updater, s.now())
		if err := s.gateway.CommitUpdate(txCtx, snapshot, live); err != nil {
			return err
		}
		svc = live
		return nil
	})
	if err != nil {
		s.logRejected(ctx, operationUpdate, serviceID, err)
		return nil, err
	}

	s.logCommitted(ctx, operationUpdate, svc, prior, logrus.Fields{"changed_fields": changedFields(ctx, before, svc.Data)})
	s.sync.Apply(ctx, decideContentIndexAction(svc.Status), svc)
	return svc, nil
}

// Import creates a service that does not exist yet.
func (s *CatalogService) Import(ctx context.Context, serviceID string, req *ServiceRequest) (svc *service.Service, err error) {
	defer func() { recordMutation(operationImport, err) }()

	if err := validateServiceID(serviceID); err != nil {
		return nil, err
	}
	if req == nil {
		req = &ServiceRequest{}
	}
	payload, err := decodeServicePayload(req.Services)
	if err != nil {
		return nil, err
	}
	if err := checkPayloadID(serviceID, payload); err != nil {
		return nil, err
	}
	updater, err := ParseUpdater(req.UpdateDetails)
	if err != nil {
		return nil, err
	}
	frameworkName, ok := payload.String(service.FieldFrameworkName)
	if !ok || frameworkName == "" {
		return nil, serrors.Validation("FRAMEWORK_REQUIRED", "'frameworkName' is required")
	}
	rawSupplierID, ok := payload[service.FieldSupplierID]
	if !ok {
		return nil, serrors.Validation("SUPPLIER_REQUIRED", "'supplierId' is required")
	}
	supplierID, ok := parseSupplierID(rawSupplierID)
	if !ok {
		return nil, serrors.Validation("INVALID_SUPPLIER_ID", fmt.Sprintf("Invalid supplierId: %s", scalarString(rawSupplierID)))
	}
	status := service.StatusPublished
	if rawStatus, ok := payload[service.FieldStatus]; ok {
		parsed, err := service.ParseStatus(scalarString(rawStatus))
		if err != nil {
			return nil, serrors.Validation("INVALID_STATUS", err.Error())
		}
		status = parsed
	}
	data := payload.Without(importDroppedFields...)

	err = s.gateway.InTx(ctx, func(txCtx context.Context) error {
		exists, err := s.services.Exists(txCtx, serviceID)
		if err != nil {
			return err
		}
		if exists {
			return serrors.Conflict(http.StatusBadRequest, "SERVICE_EXISTS", "Cannot update service by PUT", nil)
		}
		fw, err := s.frameworks.GetByName(txCtx, frameworkName)
		if err != nil {
			if errors.Is(err, framework.ErrFrameworkNotFound) {
				return serrors.Validation("UNKNOWN_FRAMEWORK", fmt.Sprintf("'%s' is not a known framework", frameworkName))
			}
			return err
		}
		if fw.Expired {
			return serrors.Validation("EXPIRED_FRAMEWORK", fmt.Sprintf("'%s' is an expired framework", frameworkName))
		}
		sp, err := s.suppliers.GetBySupplierID(txCtx, supplierID)
		if err != nil {
			if errors.Is(err, supplier.ErrSupplierNotFound) {
				return serrors.Validation("UNKNOWN_SUPPLIER", fmt.Sprintf("Key (supplierId)=(%d) is not present", supplierID))
			}
			return err
		}

		created := service.New(serviceID, sp.SupplierID, fw.ID, status, data, updater, s.now())
		created.SupplierName = sp.Name
		created.FrameworkName = fw.Name
		if err := s.gateway.CommitCreate(txCtx, created); err != nil {
			return err
		}
		svc = created
		return nil
	})
	if err != nil {
		s.logRejected(ctx, operationImport, serviceID, err)
		return nil, err
	}

	s.logCommitted(ctx, operationImport, svc, "", nil)
	s.sync.Apply(ctx, decideContentIndexAction(svc.Status), svc)
	return svc, nil
}

// UpdateStatus moves a service to status, archiving the previous version even when the status is unchanged.
// An unknown service is reported before an invalid status.
func (s *CatalogService) UpdateStatus(ctx context.Context, serviceID, status string, details *UpdateDetails) (svc *service.Service, err error) {
	defer func() { recordMutation(operationStatus, err) }()

	if err := validateServiceID(serviceID); err != nil {
		return nil, err
	}
	updater, err := ParseUpdater(details)
	if err != nil {
		return nil, err
	}

	var prior service.Status
	err = s.gateway.InTx(ctx, func(txCtx context.Context) error {
		live, err := s.gateway.LoadForUpdate(txCtx, serviceID)
		if err != nil {
			return s.notFoundOr(err, serviceID)
		}
		target, err := service.ParseStatus(status)
		if err != nil {
			return serrors.Validation("INVALID_STATUS", err.Error())
		}
		prior = live.Status
		snapshot := archivedservice.FromService(live)
		live.TransitionTo(target, updater, s.now())
		if err := s.gateway.CommitUpdate(txCtx, snapshot, live); err != nil {
			return err
		}
		svc = live
		return nil
	})
	if err != nil {
		s.logRejected(ctx, operationStatus, serviceID, err)
		return nil, err
	}

	s.logCommitted(ctx, operationStatus, svc, prior, nil)
	s.sync.Apply(ctx, DecideIndexAction(prior, svc.Status), svc)
	return svc, nil
}

func (s *CatalogService) notFoundOr(err error, serviceID string) error {
	if errors.Is(err, service.ErrServiceNotFound) {
		return serviceNotFound(serviceID)
	}
	return err
}

func pageNotFound(page int) error {
	return serrors.NotFound("PAGE_NOT_FOUND", fmt.Sprintf("page %d not found", page))
}

func serviceNotFound(serviceID string) error {
	return serrors.NotFound("SERVICE_NOT_FOUND", fmt.Sprintf("service '%s' not found", serviceID))
}

func (s *CatalogService) logCommitted(ctx context.Context, operation string, svc *service.Service, prior service.Status, extra logrus.Fields) {
	fields := logrus.Fields{
		"operation":  operation,
		"service_id": svc.ServiceID,
		"status":     string(svc.Status),
		"updated_by": svc.UpdatedBy,
	}
	if prior != "" {
		fields["prior_status"] = string(prior)
	}
	for k, v := range extra {
		fields[k] = v
	}
	composables.UseLogger(ctx).WithFields(fields).Info("catalog.service.committed")
}

func (s *CatalogService) logRejected(ctx context.Context, operation, serviceID string, err error) {
	fields := logrus.Fields{
		"operation":  operation,
		"service_id": serviceID,
	}
	level := logrus.WarnLevel
	if svcErr, ok := serrors.As(err); ok {
		fields["error_code"] = svcErr.Code
		fields["error_kind"] = string(svcErr.Kind)
		if svcErr.Kind == serrors.KindInternal {
			level = logrus.ErrorLevel
		}
	}
	composables.UseLogger(ctx).WithFields(fields).WithError(err).Log(level, "catalog.service.rejected")
}

package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/iota-uz/catalog-api/modules/catalog/domain/entities/supplier"
	"github.com/iota-uz/catalog-api/pkg/serrors"
)

type SupplierService struct {
	repo     supplier.Repository
	pageSize int
}

func NewSupplierService(repo supplier.Repository, pageSize int) *SupplierService {
	if pageSize <= 0 {
		pageSize = 100
	}
	return &SupplierService{repo: repo, pageSize: pageSize}
}

// List pages through suppliers ordered by name. prefix "other" selects names that do not start with a letter.
func (s *SupplierService) List(ctx context.Context, prefix string, page int) (*Page[*supplier.Supplier], error) {
	if page < 1 {
		page = 1
	}
	offset, ok := offsetFor(page, s.pageSize)
	if !ok {
		return nil, pageNotFound(page)
	}
	find := &supplier.FindParams{NamePrefix: prefix}
	total, err := s.repo.Count(ctx, find)
	if err != nil {
		return nil, serrors.Internal("CATALOG_INTERNAL", err)
	}
	find.Limit = s.pageSize
	find.Offset = offset
	items, err := s.repo.List(ctx, find)
	if err != nil {
		return nil, serrors.Internal("CATALOG_INTERNAL", err)
	}
	if page > 1 && len(items) == 0 {
		return nil, pageNotFound(page)
	}
	return &Page[*supplier.Supplier]{Items: items, Number: page, PageSize: s.pageSize, Total: total}, nil
}

func (s *SupplierService) Get(ctx context.Context, supplierID int64) (*supplier.Supplier, error) {
	sp, err := s.repo.GetBySupplierID(ctx, supplierID)
	if err != nil {
		if errors.Is(err, supplier.ErrSupplierNotFound) {
			return nil, serrors.NotFound("SUPPLIER_NOT_FOUND", fmt.Sprintf("supplier_id '%d' not found", supplierID))
		}
		return nil, serrors.Internal("CATALOG_INTERNAL", err)
	}
	return sp, nil
}

// Upsert stores reference data loaded by the seeding command.
func (s *SupplierService) Upsert(ctx context.Context, sp *supplier.Supplier) error {
	if sp.SupplierID <= 0 {
		return serrors.Validation("INVALID_SUPPLIER_ID", fmt.Sprintf("Invalid supplier id: %d", sp.SupplierID))
	}
	if err := s.repo.Upsert(ctx, sp); err != nil {
		return mapPgError(err)
	}
	return nil
}

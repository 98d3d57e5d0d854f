package services

import (
	"context"
	"time"

	"github.com/iota-uz/catalog-api/modules/catalog/domain/aggregates/service"
	"github.com/iota-uz/catalog-api/pkg/composables"
	"github.com/iota-uz/catalog-api/pkg/serrors"
)

type ReindexResult struct {
	Indexed int
	Failed  int
}

// Reindex pushes every published service on a live framework to the search index,
// one page at a time. Individual failures are counted and logged, not returned.
func (s *CatalogService) Reindex(ctx context.Context, batchSize int) (ReindexResult, error) {
	var result ReindexResult
	if s.sync == nil || s.sync.index == nil {
		return result, nil
	}
	if batchSize <= 0 {
		batchSize = s.pageSize
	}
	find := &service.FindParams{
		Statuses: []service.Status{service.StatusPublished},
		Limit:    batchSize,
	}
	logger := composables.UseLogger(ctx)
	for {
		items, err := s.services.List(ctx, find)
		if err != nil {
			return result, serrors.Internal("CATALOG_INTERNAL", err)
		}
		for _, svc := range items {
			start := time.Now()
			err := s.sync.index.Index(ctx, svc.ServiceID, svc.Document())
			recordIndexSync(IndexActionUpsert, err, time.Since(start))
			if err != nil {
				result.Failed++
				logger.WithError(err).WithField("service_id", svc.ServiceID).Warn("catalog.reindex.failed")
				continue
			}
			result.Indexed++
		}
		if len(items) < batchSize {
			return result, nil
		}
		if err := ctx.Err(); err != nil {
			return result, err
		}
		find.Offset += batchSize
	}
}

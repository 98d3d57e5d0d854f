package services

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/iota-uz/catalog-api/modules/catalog/domain/aggregates/service"
	"github.com/iota-uz/catalog-api/pkg/composables"
)

type IndexAction string

const (
	IndexActionNone   IndexAction = "none"
	IndexActionUpsert IndexAction = "upsert"
	IndexActionRemove IndexAction = "remove"
)

// SearchIndex is the slice of the search API client the catalog needs.
type SearchIndex interface {
	Index(ctx context.Context, serviceID string, doc service.Document) error
	Delete(ctx context.Context, serviceID string) error
}

// DecideIndexAction maps a status transition to the index call it requires.
func DecideIndexAction(prior, next service.Status) IndexAction {
	switch {
	case prior == service.StatusPublished && next != service.StatusPublished:
		return IndexActionRemove
	case prior != service.StatusPublished && next == service.StatusPublished:
		return IndexActionUpsert
	default:
		return IndexActionNone
	}
}

// decideContentIndexAction handles writes that change the document: published documents are re-indexed.
func decideContentIndexAction(next service.Status) IndexAction {
	if next == service.StatusPublished {
		return IndexActionUpsert
	}
	return IndexActionNone
}

type IndexSynchronizer struct {
	index SearchIndex
}

func NewIndexSynchronizer(index SearchIndex) *IndexSynchronizer {
	return &IndexSynchronizer{index: index}
}

// Apply performs action for svc. It must only be called after the write committed.
// The request context may already be cancelled, so the call is detached from it.
func (s *IndexSynchronizer) Apply(ctx context.Context, action IndexAction, svc *service.Service) {
	if s == nil || s.index == nil || action == IndexActionNone {
		return
	}
	callCtx := context.WithoutCancel(ctx)
	start := time.Now()

	var err error
	switch action {
	case IndexActionUpsert:
		err = s.index.Index(callCtx, svc.ServiceID, svc.Document())
	case IndexActionRemove:
		err = s.index.Delete(callCtx, svc.ServiceID)
	}
	recordIndexSync(action, err, time.Since(start))

	logger := composables.UseLogger(ctx).WithFields(logrus.Fields{
		"service_id": svc.ServiceID,
		"action":     string(action),
		"status":     string(svc.Status),
	})
	if err != nil {
		logger.WithError(err).Warn("catalog.index_sync.failed")
		return
	}
	logger.Debug("catalog.index_sync.done")
}

package testhelpers

import (
	"context"
	"sync"

	"github.com/iota-uz/catalog-api/modules/catalog/domain/aggregates/service"
)

type IndexCall struct {
	Action    string
	ServiceID string
	Document  service.Document
}

// RecordingIndexer records search index calls and can be told to fail them.
type RecordingIndexer struct {
	mu    sync.Mutex
	calls []IndexCall
	Err   error
}

func (r *RecordingIndexer) Index(ctx context.Context, serviceID string, doc service.Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, IndexCall{Action: "upsert", ServiceID: serviceID, Document: doc.Clone()})
	return r.Err
}

func (r *RecordingIndexer) Delete(ctx context.Context, serviceID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, IndexCall{Action: "remove", ServiceID: serviceID})
	return r.Err
}

func (r *RecordingIndexer) Calls() []IndexCall {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]IndexCall(nil), r.calls...)
}

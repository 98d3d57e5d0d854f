package testhelpers

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"testing"
	"unicode"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/iota-uz/catalog-api/modules/catalog/domain/aggregates/service"
	"github.com/iota-uz/catalog-api/modules/catalog/domain/entities/archivedservice"
	"github.com/iota-uz/catalog-api/modules/catalog/domain/entities/framework"
	"github.com/iota-uz/catalog-api/modules/catalog/domain/entities/supplier"
	"github.com/iota-uz/catalog-api/pkg/composables"
)

// Store is an in-memory catalog database. Begin snapshots it and Rollback restores the snapshot.
type Store struct {
	mu sync.Mutex

	services   map[string]*service.Service
	archive    []*archivedservice.ArchivedService
	suppliers  map[int64]*supplier.Supplier
	frameworks map[string]*framework.Framework

	nextServiceID   int64
	nextArchiveID   int64
	nextSupplierID  int64
	nextFrameworkID int64

	// Injected failures, consumed by the next matching call.
	CreateErr    error
	UpdateErr    error
	ArchiveErr   error
	CommitErr    error
	Commits      int
	Rollbacks    int
	LockedLoads  int
	activeBackup *snapshot
}

type snapshot struct {
	services        map[string]*service.Service
	archive         []*archivedservice.ArchivedService
	nextServiceID   int64
	nextArchiveID   int64
	nextSupplierID  int64
	suppliers       map[int64]*supplier.Supplier
	frameworks      map[string]*framework.Framework
	nextFrameworkID int64
}

func NewStore() *Store {
	return &Store{
		services:   map[string]*service.Service{},
		suppliers:  map[int64]*supplier.Supplier{},
		frameworks: map[string]*framework.Framework{},
	}
}

// Context returns a context carrying a fake pool backed by s.
func (s *Store) Context(t *testing.T) context.Context {
	t.Helper()
	return composables.WithPool(context.Background(), s.Pool())
}

func (s *Store) Pool() *FakePool {
	return &FakePool{store: s}
}

func (s *Store) AddFramework(name string, expired bool) *framework.Framework {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextFrameworkID++
	f := &framework.Framework{ID: s.nextFrameworkID, Name: name, Expired: expired}
	s.frameworks[name] = f
	return f
}

func (s *Store) AddSupplier(supplierID int64, name string) *supplier.Supplier {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSupplierID++
	sp := &supplier.Supplier{ID: s.nextSupplierID, SupplierID: supplierID, Name: name}
	s.suppliers[supplierID] = sp
	return sp
}

// AddService inserts a live service directly, resolving supplier and framework names.
func (s *Store) AddService(svc *service.Service) *service.Service {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextServiceID++
	stored := svc.Clone()
	stored.ID = s.nextServiceID
	s.resolve(stored)
	s.services[stored.ServiceID] = stored
	return stored.Clone()
}

// Service returns the committed state of serviceID, or nil.
func (s *Store) Service(serviceID string) *service.Service {
	s.mu.Lock()
	defer s.mu.Unlock()
	if svc, ok := s.services[serviceID]; ok {
		return svc.Clone()
	}
	return nil
}

// Archive returns all archived snapshots in insertion order.
func (s *Store) Archive() []*archivedservice.ArchivedService {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*archivedservice.ArchivedService, 0, len(s.archive))
	for _, a := range s.archive {
		cp := *a
		cp.Service = *a.Service.Clone()
		out = append(out, &cp)
	}
	return out
}

func (s *Store) resolve(svc *service.Service) {
	if sp, ok := s.suppliers[svc.SupplierID]; ok {
		svc.SupplierName = sp.Name
	}
	for _, f := range s.frameworks {
		if f.ID == svc.FrameworkID {
			svc.FrameworkName = f.Name
			svc.FrameworkExpired = f.Expired
		}
	}
}

func (s *Store) begin() {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := &snapshot{
		services:        map[string]*service.Service{},
		archive:         append([]*archivedservice.ArchivedService(nil), s.archive...),
		suppliers:       map[int64]*supplier.Supplier{},
		frameworks:      map[string]*framework.Framework{},
		nextServiceID:   s.nextServiceID,
		nextArchiveID:   s.nextArchiveID,
		nextSupplierID:  s.nextSupplierID,
		nextFrameworkID: s.nextFrameworkID,
	}
	for k, v := range s.services {
		snap.services[k] = v.Clone()
	}
	for k, v := range s.suppliers {
		cp := *v
		snap.suppliers[k] = &cp
	}
	for k, v := range s.frameworks {
		cp := *v
		snap.frameworks[k] = &cp
	}
	s.activeBackup = snap
}

func (s *Store) commit() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.CommitErr != nil {
		err := s.CommitErr
		s.CommitErr = nil
		s.restoreLocked()
		return err
	}
	s.Commits++
	s.activeBackup = nil
	return nil
}

func (s *Store) rollback() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Rollbacks++
	s.restoreLocked()
}

func (s *Store) restoreLocked() {
	if s.activeBackup == nil {
		return
	}
	b := s.activeBackup
	s.services = b.services
	s.archive = b.archive
	s.suppliers = b.suppliers
	s.frameworks = b.frameworks
	s.nextServiceID = b.nextServiceID
	s.nextArchiveID = b.nextArchiveID
	s.nextSupplierID = b.nextSupplierID
	s.nextFrameworkID = b.nextFrameworkID
	s.activeBackup = nil
}

func take(err *error) error {
	out := *err
	*err = nil
	return out
}

// FakePool hands out FakeTx values bound to a Store.
type FakePool struct {
	store *Store
}

func (p *FakePool) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, errors.New("not implemented")
}

func (p *FakePool) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }

func (p *FakePool) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	return pgconn.NewCommandTag("SELECT 1"), nil
}

func (p *FakePool) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, errors.New("not implemented")
}

func (p *FakePool) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row { return nil }

func (p *FakePool) Begin(ctx context.Context) (pgx.Tx, error) {
	p.store.begin()
	return &FakeTx{store: p.store}, nil
}

type FakeTx struct {
	pgx.Tx
	store *Store
	done  bool
}

func (t *FakeTx) Commit(ctx context.Context) error {
	if t.done {
		return pgx.ErrTxClosed
	}
	t.done = true
	return t.store.commit()
}

func (t *FakeTx) Rollback(ctx context.Context) error {
	if t.done {
		return pgx.ErrTxClosed
	}
	t.done = true
	t.store.rollback()
	return nil
}

// ServiceRepository implements service.Repository on a Store.
type ServiceRepository struct{ store *Store }

func NewServiceRepository(store *Store) *ServiceRepository {
	return &ServiceRepository{store: store}
}

func (r *ServiceRepository) GetByServiceID(ctx context.Context, serviceID string) (*service.Service, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	svc, ok := r.store.services[serviceID]
	if !ok {
		return nil, service.ErrServiceNotFound
	}
	out := svc.Clone()
	r.store.resolve(out)
	return out, nil
}

func (r *ServiceRepository) GetByServiceIDForUpdate(ctx context.Context, serviceID string) (*service.Service, error) {
	r.store.mu.Lock()
	r.store.LockedLoads++
	r.store.mu.Unlock()
	return r.GetByServiceID(ctx, serviceID)
}

func (r *ServiceRepository) Exists(ctx context.Context, serviceID string) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	_, ok := r.store.services[serviceID]
	return ok, nil
}

func (r *ServiceRepository) filter(params *service.FindParams) []*service.Service {
	if params == nil {
		params = &service.FindParams{}
	}
	var out []*service.Service
	for _, svc := range r.store.services {
		cp := svc.Clone()
		r.store.resolve(cp)
		if !params.IncludeExpired && cp.FrameworkExpired {
			continue
		}
		if params.SupplierID != nil && cp.SupplierID != *params.SupplierID {
			continue
		}
		if len(params.Statuses) > 0 {
			match := false
			for _, st := range params.Statuses {
				if st == cp.Status {
					match = true
				}
			}
			if !match {
				continue
			}
		}
		out = append(out, cp)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.FrameworkID != b.FrameworkID {
			return a.FrameworkID < b.FrameworkID
		}
		al, _ := a.Data.String("lot")
		bl, _ := b.Data.String("lot")
		if al != bl {
			return al < bl
		}
		an, _ := a.Data.String("serviceName")
		bn, _ := b.Data.String("serviceName")
		if an != bn {
			return an < bn
		}
		return a.ID < b.ID
	})
	return out
}

func (r *ServiceRepository) List(ctx context.Context, params *service.FindParams) ([]*service.Service, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	out := r.filter(params)
	if params != nil {
		out = window(out, params.Limit, params.Offset)
	}
	return out, nil
}

func (r *ServiceRepository) Count(ctx context.Context, params *service.FindParams) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return int64(len(r.filter(params))), nil
}

func (r *ServiceRepository) Create(ctx context.Context, svc *service.Service) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if err := take(&r.store.CreateErr); err != nil {
		return err
	}
	if _, ok := r.store.services[svc.ServiceID]; ok {
		return &pgconn.PgError{Code: "23505", ConstraintName: "services_service_id_key",
			Detail: "Key (service_id)=(" + svc.ServiceID + ") already exists."}
	}
	if _, ok := r.store.suppliers[svc.SupplierID]; !ok {
		return &pgconn.PgError{Code: "23503", ConstraintName: "services_supplier_id_fkey",
			Detail: "Key (supplier_id) is not present in table \"suppliers\"."}
	}
	r.store.nextServiceID++
	svc.ID = r.store.nextServiceID
	r.store.services[svc.ServiceID] = svc.Clone()
	return nil
}

func (r *ServiceRepository) Update(ctx context.Context, svc *service.Service) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if err := take(&r.store.UpdateErr); err != nil {
		return err
	}
	existing, ok := r.store.services[svc.ServiceID]
	if !ok {
		return service.ErrServiceNotFound
	}
	updated := svc.Clone()
	updated.ID = existing.ID
	r.store.services[svc.ServiceID] = updated
	return nil
}

// ArchivedServiceRepository implements archivedservice.Repository on a Store.
type ArchivedServiceRepository struct{ store *Store }

func NewArchivedServiceRepository(store *Store) *ArchivedServiceRepository {
	return &ArchivedServiceRepository{store: store}
}

func (r *ArchivedServiceRepository) GetByID(ctx context.Context, id int64) (*archivedservice.ArchivedService, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, a := range r.store.archive {
		if a.ID == id {
			cp := *a
			cp.Service = *a.Service.Clone()
			r.store.resolve(&cp.Service)
			return &cp, nil
		}
	}
	return nil, archivedservice.ErrArchivedServiceNotFound
}

func (r *ArchivedServiceRepository) matching(serviceID string) []*archivedservice.ArchivedService {
	var out []*archivedservice.ArchivedService
	for _, a := range r.store.archive {
		if a.Service.ServiceID == serviceID {
			cp := *a
			cp.Service = *a.Service.Clone()
			r.store.resolve(&cp.Service)
			out = append(out, &cp)
		}
	}
	return out
}

func (r *ArchivedServiceRepository) List(ctx context.Context, params *archivedservice.FindParams) ([]*archivedservice.ArchivedService, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if params == nil {
		params = &archivedservice.FindParams{}
	}
	return window(r.matching(params.ServiceID), params.Limit, params.Offset), nil
}

func (r *ArchivedServiceRepository) Count(ctx context.Context, params *archivedservice.FindParams) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if params == nil {
		params = &archivedservice.FindParams{}
	}
	return int64(len(r.matching(params.ServiceID))), nil
}

func (r *ArchivedServiceRepository) Create(ctx context.Context, a *archivedservice.ArchivedService) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if err := take(&r.store.ArchiveErr); err != nil {
		return err
	}
	r.store.nextArchiveID++
	a.ID = r.store.nextArchiveID
	cp := *a
	cp.Service = *a.Service.Clone()
	cp.Service.ID = 0
	r.store.archive = append(r.store.archive, &cp)
	return nil
}

// SupplierRepository implements supplier.Repository on a Store.
type SupplierRepository struct{ store *Store }

func NewSupplierRepository(store *Store) *SupplierRepository {
	return &SupplierRepository{store: store}
}

func (r *SupplierRepository) GetBySupplierID(ctx context.Context, supplierID int64) (*supplier.Supplier, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	sp, ok := r.store.suppliers[supplierID]
	if !ok {
		return nil, supplier.ErrSupplierNotFound
	}
	cp := *sp
	return &cp, nil
}

func (r *SupplierRepository) filter(params *supplier.FindParams) []*supplier.Supplier {
	prefix := ""
	if params != nil {
		prefix = strings.ToLower(strings.TrimSpace(params.NamePrefix))
	}
	var out []*supplier.Supplier
	for _, sp := range r.store.suppliers {
		name := strings.ToLower(sp.Name)
		switch {
		case prefix == "":
		case prefix == "other":
			if name != "" && unicode.IsLetter(rune(name[0])) {
				continue
			}
		default:
			if !strings.HasPrefix(name, prefix) {
				continue
			}
		}
		cp := *sp
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].SupplierID < out[j].SupplierID
	})
	return out
}

func (r *SupplierRepository) List(ctx context.Context, params *supplier.FindParams) ([]*supplier.Supplier, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	out := r.filter(params)
	if params != nil {
		out = window(out, params.Limit, params.Offset)
	}
	return out, nil
}

func (r *SupplierRepository) Count(ctx context.Context, params *supplier.FindParams) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return int64(len(r.filter(params))), nil
}

func (r *SupplierRepository) Upsert(ctx context.Context, sp *supplier.Supplier) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if existing, ok := r.store.suppliers[sp.SupplierID]; ok {
		sp.ID = existing.ID
	} else {
		r.store.nextSupplierID++
		sp.ID = r.store.nextSupplierID
	}
	cp := *sp
	r.store.suppliers[sp.SupplierID] = &cp
	return nil
}

// FrameworkRepository implements framework.Repository on a Store.
type FrameworkRepository struct{ store *Store }

func NewFrameworkRepository(store *Store) *FrameworkRepository {
	return &FrameworkRepository{store: store}
}

func (r *FrameworkRepository) GetByName(ctx context.Context, name string) (*framework.Framework, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	f, ok := r.store.frameworks[name]
	if !ok {
		return nil, framework.ErrFrameworkNotFound
	}
	cp := *f
	return &cp, nil
}

func (r *FrameworkRepository) List(ctx context.Context) ([]*framework.Framework, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	out := make([]*framework.Framework, 0, len(r.store.frameworks))
	for _, f := range r.store.frameworks {
		cp := *f
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *FrameworkRepository) Upsert(ctx context.Context, f *framework.Framework) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if existing, ok := r.store.frameworks[f.Name]; ok {
		f.ID = existing.ID
	} else {
		r.store.nextFrameworkID++
		f.ID = r.store.nextFrameworkID
	}
	cp := *f
	r.store.frameworks[f.Name] = &cp
	return nil
}

func window[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

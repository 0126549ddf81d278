// Package memory is an in-process implementation of the repository ports. Row
// locks are real mutexes held until the unit of work ends, so it serializes
// stock updates per product exactly like SELECT ... FOR UPDATE does.
package memory

import (
	"context"
	"sort"
	"sync"

	"saas-commerce/internal/model"
	"saas-commerce/internal/repository"

	"github.com/google/uuid"
)

type Store struct {
	mu        sync.RWMutex
	products  map[uuid.UUID]model.Product
	sales     map[uuid.UUID]model.Sale
	purchases map[uuid.UUID]model.Purchase
	profiles  map[uuid.UUID]model.TenantProfile
	customers map[uuid.UUID]model.Customer
	fiscal    map[uuid.UUID]model.FiscalSequence

	locksMu sync.Mutex
	locks   map[uuid.UUID]*sync.Mutex

	fiscalSeries string
}

var _ repository.Store = (*Store)(nil)

func New(fiscalSeries string) *Store {
	if fiscalSeries == "" {
		fiscalSeries = "001"
	}
	return &Store{
		products:     make(map[uuid.UUID]model.Product),
		sales:        make(map[uuid.UUID]model.Sale),
		purchases:    make(map[uuid.UUID]model.Purchase),
		profiles:     make(map[uuid.UUID]model.TenantProfile),
		customers:    make(map[uuid.UUID]model.Customer),
		fiscal:       make(map[uuid.UUID]model.FiscalSequence),
		locks:        make(map[uuid.UUID]*sync.Mutex),
		fiscalSeries: fiscalSeries,
	}
}

// PutProfile and PutCustomer stand in for the account service.
func (s *Store) PutProfile(profile model.TenantProfile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[profile.TenantID] = profile
}

func (s *Store) PutCustomer(customer model.Customer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.customers[customer.ID] = customer
}

func (s *Store) rowLock(id uuid.UUID) *sync.Mutex {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()
	l, ok := s.locks[id]
	if !ok {
		l = &sync.Mutex{}
		s.locks[id] = l
	}
	return l
}

// Do stages every write of fn and applies them together once fn succeeds.
func (s *Store) Do(ctx context.Context, fn func(tx repository.Tx) error) error {
	tx := newTx(s)
	defer tx.release()

	if err := ctx.Err(); err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		return err
	}
	tx.commit()
	return nil
}

// Non-transactional access reads committed state and writes immediately.
func (s *Store) Products() repository.ProductRepository   { return &productRepo{s: s} }
func (s *Store) Sales() repository.SaleRepository         { return &saleRepo{s: s} }
func (s *Store) Purchases() repository.PurchaseRepository { return &purchaseRepo{s: s} }
func (s *Store) Fiscal() repository.FiscalRepository      { return &fiscalRepo{s: s} }
func (s *Store) Tenants() repository.TenantRepository     { return &tenantRepo{s: s} }
func (s *Store) Customers() repository.CustomerRepository { return &customerRepo{s: s} }
func (s *Store) Dashboard() repository.DashboardRepository {
	return &dashboardRepo{s: s}
}

// tx holds row locks and staged writes of one unit of work.
type tx struct {
	s         *Store
	held      map[uuid.UUID]*sync.Mutex
	order     []uuid.UUID
	products  map[uuid.UUID]model.Product
	sales     map[uuid.UUID]model.Sale
	purchases map[uuid.UUID]model.Purchase
	fiscal    map[uuid.UUID]model.FiscalSequence
}

func newTx(s *Store) *tx {
	return &tx{
		s:         s,
		held:      make(map[uuid.UUID]*sync.Mutex),
		products:  make(map[uuid.UUID]model.Product),
		sales:     make(map[uuid.UUID]model.Sale),
		purchases: make(map[uuid.UUID]model.Purchase),
		fiscal:    make(map[uuid.UUID]model.FiscalSequence),
	}
}

func (t *tx) Products() repository.ProductRepository   { return &productRepo{s: t.s, tx: t} }
func (t *tx) Sales() repository.SaleRepository         { return &saleRepo{s: t.s, tx: t} }
func (t *tx) Purchases() repository.PurchaseRepository { return &purchaseRepo{s: t.s, tx: t} }
func (t *tx) Fiscal() repository.FiscalRepository      { return &fiscalRepo{s: t.s, tx: t} }

// lock acquires the row locks of ids in sorted order; locks already held by this
// unit of work are skipped.
func (t *tx) lock(ids ...uuid.UUID) {
	sorted := append([]uuid.UUID(nil), ids...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].String() < sorted[j].String() })
	for _, id := range sorted {
		if _, ok := t.held[id]; ok {
			continue
		}
		l := t.s.rowLock(id)
		l.Lock()
		t.held[id] = l
		t.order = append(t.order, id)
	}
}

func (t *tx) release() {
	for i := len(t.order) - 1; i >= 0; i-- {
		t.held[t.order[i]].Unlock()
	}
	t.held = nil
	t.order = nil
}

func (t *tx) commit() {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	for id, p := range t.products {
		t.s.products[id] = p
	}
	for id, sale := range t.sales {
		t.s.sales[id] = sale
	}
	for id, p := range t.purchases {
		t.s.purchases[id] = p
	}
	for id, seq := range t.fiscal {
		t.s.fiscal[id] = seq
	}
}

package service

import (
	"bytes"
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"saas-commerce/internal/artifact"
	"saas-commerce/internal/ledger"
	"saas-commerce/internal/model"
	"saas-commerce/internal/repository"
	"saas-commerce/internal/repository/memory"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

var fixedNow = time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)

type fixture struct {
	store     *memory.Store
	artifacts *artifact.FileStore
	events    *RecordingPublisher
	sales     SaleService
	purchases PurchaseService
	docs      DocumentService
	dashboard DashboardService
	tenant    uuid.UUID
	owner     Actor
	seller    Actor
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	return newFixtureWithStore(t, memory.New("001"), nil, opts...)
}

// newFixtureWithStore lets tests put a wrapper around the memory store.
func newFixtureWithStore(t *testing.T, mem *memory.Store, wrap func(repository.Store) repository.Store, opts ...Option) *fixture {
	t.Helper()
	tenant := uuid.New()
	mem.PutProfile(model.TenantProfile{
		TenantID:  tenant,
		Name:      "Tienda Central",
		TaxID:     "1020304050",
		Currency:  "BOB",
		TaxRate:   decimal.RequireFromString("13"),
		LegalNote: "Legal note",
	})

	var store repository.Store = mem
	if wrap != nil {
		store = wrap(mem)
	}

	artifacts, err := artifact.NewFileStore(t.TempDir(), 1<<16)
	require.NoError(t, err)

	events := &RecordingPublisher{}
	all := append([]Option{
		WithLogger(zaptest.NewLogger(t)),
		WithEvents(events),
		WithArtifacts(artifacts),
		WithClock(func() time.Time { return fixedNow }),
		WithRetryInterval(time.Millisecond),
	}, opts...)

	l := ledger.New()
	return &fixture{
		store:     mem,
		artifacts: artifacts,
		events:    events,
		sales:     NewSaleService(store, l, all...),
		purchases: NewPurchaseService(store, l, all...),
		docs:      NewDocumentService(store, all...),
		dashboard: NewDashboardService(store.Dashboard(), all...),
		tenant:    tenant,
		owner:     Actor{TenantID: tenant, UserID: "owner-1", Role: model.RoleOwner},
		seller:    Actor{TenantID: tenant, UserID: "seller-1", Role: model.RoleSeller},
	}
}

func (f *fixture) product(t *testing.T, name, price string, stock, minimum int) model.Product {
	t.Helper()
	p := model.Product{
		TenantID:     f.tenant,
		SKU:          "SKU-" + name,
		Name:         name,
		Price:        decimal.RequireFromString(price),
		StockCurrent: stock,
		StockMinimum: minimum,
		Status:       model.ProductActive,
	}
	require.NoError(t, f.store.Products().Create(context.Background(), &p))
	return p
}

func (f *fixture) stock(t *testing.T, id uuid.UUID) int {
	t.Helper()
	p, err := f.store.Products().FindByID(context.Background(), f.tenant, id)
	require.NoError(t, err)
	return p.StockCurrent
}

func (f *fixture) reload(t *testing.T, id uuid.UUID) *model.Sale {
	t.Helper()
	sale, err := f.sales.GetSale(context.Background(), f.tenant, id)
	require.NoError(t, err)
	require.True(t, sale.LinesTotal().Equal(sale.Total), "line subtotals must add up to the total")
	return sale
}

func (f *fixture) checkout(t *testing.T, channel model.SaleChannel, method model.PaymentMethod, proof *string, lines ...CheckoutLine) *model.Sale {
	t.Helper()
	sale, err := f.sales.Checkout(context.Background(), f.seller, CheckoutCommand{
		Channel:       channel,
		PaymentMethod: method,
		ProofArtifact: proof,
		Lines:         lines,
	})
	require.NoError(t, err)
	return sale
}

func line(p model.Product, qty int) CheckoutLine {
	return CheckoutLine{ProductID: p.ID, Quantity: qty}
}

func ref(s string) *string { return &s }

var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}

// upload stores a small PNG for the fixture tenant; note makes the content unique.
func (f *fixture) upload(t *testing.T, note string) *string {
	t.Helper()
	content := append(append([]byte{}, pngHeader...), note...)
	r, err := f.artifacts.Put(context.Background(), f.tenant, bytes.NewReader(content))
	require.NoError(t, err)
	return &r
}

// flakyStore fails the first n units of work with a storage conflict.
type flakyStore struct {
	repository.Store
	failures int32
	attempts int32
}

func (f *flakyStore) Do(ctx context.Context, fn func(tx repository.Tx) error) error {
	if atomic.AddInt32(&f.attempts, 1) <= f.failures {
		return fmt.Errorf("commit: %w", repository.ErrConflict)
	}
	return f.Store.Do(ctx, fn)
}

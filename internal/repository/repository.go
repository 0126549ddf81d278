package repository

import (
	"context"
	"errors"
	"time"

	"saas-commerce/internal/model"

	"github.com/google/uuid"
)

// ErrConflict marks a storage-level write conflict (serialization failure,
// deadlock, lock timeout). It is the only error the services retry.
var ErrConflict = errors.New("storage write conflict")

type ProductRepository interface {
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*model.Product, error)
	// FindByIDs returns the products among ids that exist for the tenant.
	// Missing ids are simply absent from the result.
	FindByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]model.Product, error)
	// LockForUpdate row-locks the products (in id order) until the surrounding
	// unit of work ends. Missing ids are reported as model.ErrNotFound.
	LockForUpdate(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]model.Product, error)
	UpdateStock(ctx context.Context, tenantID, id uuid.UUID, newStock int, updatedBy string) error
	Create(ctx context.Context, product *model.Product) error
}

type SaleFilter struct {
	Channel model.SaleChannel
	Status  model.SaleStatus
	From    *time.Time
	To      *time.Time
	Limit   int
}

type SaleRepository interface {
	Create(ctx context.Context, sale *model.Sale) error
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*model.Sale, error)
	// LockForUpdate loads the sale with its lines and row-locks the sale header.
	LockForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*model.Sale, error)
	// UpdateState persists the status axes of an existing sale; lines and totals are never rewritten.
	UpdateState(ctx context.Context, sale *model.Sale) error
	FindAll(ctx context.Context, tenantID uuid.UUID, filter SaleFilter) ([]model.Sale, error)
}

type PurchaseFilter struct {
	SupplierID *uuid.UUID
	From       *time.Time
	To         *time.Time
	Limit      int
}

type PurchaseRepository interface {
	Create(ctx context.Context, purchase *model.Purchase) error
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*model.Purchase, error)
	FindAll(ctx context.Context, tenantID uuid.UUID, filter PurchaseFilter) ([]model.Purchase, error)
}

// FiscalRepository hands out invoice numbers. Numbers allocated inside a unit of
// work that rolls back are released with it.
type FiscalRepository interface {
	NextNumber(ctx context.Context, tenantID uuid.UUID) (string, error)
}

type TenantRepository interface {
	FindProfile(ctx context.Context, tenantID uuid.UUID) (*model.TenantProfile, error)
}

type CustomerRepository interface {
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*model.Customer, error)
}

// StockMovementData is one day of chart data.
type StockMovementData struct {
	Date     string `json:"date"`
	Inbound  int    `json:"inbound"`
	Outbound int    `json:"outbound"`
}

// DashboardStats is the tenant overview.
type DashboardStats struct {
	TotalProducts  int64  `json:"total_products"`
	LowStockCount  int64  `json:"low_stock_count"`
	TotalValuation string `json:"total_valuation"`
	PaidSalesTotal string `json:"paid_sales_total"`
}

type DashboardRepository interface {
	GetStockMovement(ctx context.Context, tenantID uuid.UUID, startDate, endDate time.Time) ([]StockMovementData, error)
	GetDashboardStats(ctx context.Context, tenantID uuid.UUID) (*DashboardStats, error)
}

// Tx exposes the repositories bound to one atomic unit.
type Tx interface {
	Products() ProductRepository
	Sales() SaleRepository
	Purchases() PurchaseRepository
	Fiscal() FiscalRepository
}

// UnitOfWork runs fn inside one transaction: everything fn writes through tx is
// committed together, or nothing is when fn returns an error.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(tx Tx) error) error
}

// Store is the full storage port used by the services.
type Store interface {
	UnitOfWork
	Tx
	Tenants() TenantRepository
	Customers() CustomerRepository
	Dashboard() DashboardRepository
}

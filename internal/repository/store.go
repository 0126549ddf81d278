package repository

import (
	"context"
	"errors"
	"fmt"

	"saas-commerce/internal/model"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// Postgres SQLSTATEs that signal a retryable write conflict.
var conflictCodes = map[string]bool{
	"40001": true, // serialization_failure
	"40P01": true, // deadlock_detected
	"55P03": true, // lock_not_available
}

type gormStore struct {
	db           *gorm.DB
	fiscalSeries string
}

// NewGormStore builds the Postgres-backed store. fiscalSeries is the series used
// for tenants that have no fiscal sequence yet.
func NewGormStore(db *gorm.DB, fiscalSeries string) Store {
	return &gormStore{db: db, fiscalSeries: fiscalSeries}
}

// Do runs fn inside a gorm transaction. Every repository handed to fn shares it.
func (s *gormStore) Do(ctx context.Context, fn func(tx Tx) error) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTx{db: tx, fiscalSeries: s.fiscalSeries})
	})
	return translateError(err)
}

func (s *gormStore) Products() ProductRepository    { return NewProductRepo(s.db) }
func (s *gormStore) Sales() SaleRepository          { return NewSaleRepo(s.db) }
func (s *gormStore) Purchases() PurchaseRepository  { return NewPurchaseRepo(s.db) }
func (s *gormStore) Fiscal() FiscalRepository       { return NewFiscalRepo(s.db, s.fiscalSeries) }
func (s *gormStore) Tenants() TenantRepository      { return NewTenantRepo(s.db) }
func (s *gormStore) Customers() CustomerRepository  { return NewCustomerRepo(s.db) }
func (s *gormStore) Dashboard() DashboardRepository { return NewDashboardRepo(s.db) }

type gormTx struct {
	db           *gorm.DB
	fiscalSeries string
}

func (t *gormTx) Products() ProductRepository   { return NewProductRepo(t.db) }
func (t *gormTx) Sales() SaleRepository         { return NewSaleRepo(t.db) }
func (t *gormTx) Purchases() PurchaseRepository { return NewPurchaseRepo(t.db) }
func (t *gormTx) Fiscal() FiscalRepository      { return NewFiscalRepo(t.db, t.fiscalSeries) }

func translateError(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && conflictCodes[pgErr.Code] {
		return fmt.Errorf("%w: %s (%s)", ErrConflict, pgErr.Message, pgErr.Code)
	}
	return err
}

// Models lists the tables owned by the engine, in migration order.
func Models() []interface{} {
	return []interface{}{
		&model.Product{},
		&model.TenantProfile{},
		&model.Customer{},
		&model.FiscalSequence{},
		&model.Sale{},
		&model.SaleLine{},
		&model.Purchase{},
		&model.PurchaseLine{},
	}
}

package repository

import (
	"context"
	"errors"

	"saas-commerce/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type saleRepo struct {
	db *gorm.DB
}

func NewSaleRepo(db *gorm.DB) SaleRepository {
	return &saleRepo{db}
}

func orderedLines(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}

// Create inserts the sale header and its lines in one statement batch.
func (r *saleRepo) Create(ctx context.Context, sale *model.Sale) error {
	return r.db.WithContext(ctx).Create(sale).Error
}

func (r *saleRepo) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*model.Sale, error) {
	var sale model.Sale
	err := r.db.WithContext(ctx).
		Preload("Lines", orderedLines).
		First(&sale, "tenant_id = ? AND id = ?", tenantID, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, model.NotFoundError("sale", id)
	}
	if err != nil {
		return nil, err
	}
	return &sale, nil
}

func (r *saleRepo) LockForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*model.Sale, error) {
	var sale model.Sale
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&sale, "tenant_id = ? AND id = ?", tenantID, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, model.NotFoundError("sale", id)
	}
	if err != nil {
		return nil, err
	}

	if err := orderedLines(r.db.WithContext(ctx)).
		Where("sale_id = ?", sale.ID).
		Find(&sale.Lines).Error; err != nil {
		return nil, err
	}
	return &sale, nil
}

func (r *saleRepo) UpdateState(ctx context.Context, sale *model.Sale) error {
	res := r.db.WithContext(ctx).Model(&model.Sale{}).
		Where("tenant_id = ? AND id = ?", sale.TenantID, sale.ID).
		Updates(map[string]interface{}{
			"status":             string(sale.Status),
			"fulfillment_status": string(sale.FulfillmentStatus),
			"fiscal_status":      string(sale.FiscalStatus),
			"fiscal_number":      sale.FiscalNumber,
			"proof_artifact":     sale.ProofArtifact,
			"stock_applied":      sale.StockApplied,
			"paid_at":            sale.PaidAt,
			"delivered_at":       sale.DeliveredAt,
			"cancelled_at":       sale.CancelledAt,
			"invoiced_at":        sale.InvoicedAt,
			"updated_by":         sale.UpdatedBy,
			"updated_at":         sale.UpdatedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return model.NotFoundError("sale", sale.ID)
	}
	return nil
}

func (r *saleRepo) FindAll(ctx context.Context, tenantID uuid.UUID, filter SaleFilter) ([]model.Sale, error) {
	query := r.db.WithContext(ctx).
		Preload("Lines", orderedLines).
		Where("tenant_id = ?", tenantID)

	if filter.Channel != "" {
		query = query.Where("channel = ?", string(filter.Channel))
	}
	if filter.Status != "" {
		query = query.Where("status = ?", string(filter.Status))
	}
	if filter.From != nil {
		query = query.Where("created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("created_at < ?", *filter.To)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	var sales []model.Sale
	err := query.Order("created_at DESC").Find(&sales).Error
	return sales, err
}

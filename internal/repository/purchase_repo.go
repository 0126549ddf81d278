package repository

import (
	"context"
	"errors"

	"saas-commerce/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type purchaseRepo struct {
	db *gorm.DB
}

func NewPurchaseRepo(db *gorm.DB) PurchaseRepository {
	return &purchaseRepo{db}
}

func (r *purchaseRepo) Create(ctx context.Context, purchase *model.Purchase) error {
	return r.db.WithContext(ctx).Create(purchase).Error
}

func (r *purchaseRepo) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*model.Purchase, error) {
	var purchase model.Purchase
	err := r.db.WithContext(ctx).
		Preload("Lines", orderedLines).
		First(&purchase, "tenant_id = ? AND id = ?", tenantID, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, model.NotFoundError("purchase", id)
	}
	if err != nil {
		return nil, err
	}
	return &purchase, nil
}

func (r *purchaseRepo) FindAll(ctx context.Context, tenantID uuid.UUID, filter PurchaseFilter) ([]model.Purchase, error) {
	query := r.db.WithContext(ctx).
		Preload("Lines", orderedLines).
		Where("tenant_id = ?", tenantID)

	if filter.SupplierID != nil {
		query = query.Where("supplier_id = ?", *filter.SupplierID)
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

	var purchases []model.Purchase
	err := query.Order("created_at DESC").Find(&purchases).Error
	return purchases, err
}

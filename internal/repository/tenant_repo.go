package repository

import (
	"context"
	"errors"

	"saas-commerce/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type tenantRepo struct {
	db *gorm.DB
}

func NewTenantRepo(db *gorm.DB) TenantRepository {
	return &tenantRepo{db}
}

func (r *tenantRepo) FindProfile(ctx context.Context, tenantID uuid.UUID) (*model.TenantProfile, error) {
	var profile model.TenantProfile
	err := r.db.WithContext(ctx).First(&profile, "tenant_id = ?", tenantID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, model.NotFoundError("tenant", tenantID)
	}
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

type customerRepo struct {
	db *gorm.DB
}

func NewCustomerRepo(db *gorm.DB) CustomerRepository {
	return &customerRepo{db}
}

func (r *customerRepo) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*model.Customer, error) {
	var customer model.Customer
	err := r.db.WithContext(ctx).First(&customer, "tenant_id = ? AND id = ?", tenantID, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, model.NotFoundError("customer", id)
	}
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

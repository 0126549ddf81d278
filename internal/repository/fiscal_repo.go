package repository

import (
	"context"
	"errors"

	"saas-commerce/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type fiscalRepo struct {
	db            *gorm.DB
	defaultSeries string
}

func NewFiscalRepo(db *gorm.DB, defaultSeries string) FiscalRepository {
	return &fiscalRepo{db: db, defaultSeries: defaultSeries}
}

// NextNumber locks the tenant's sequence row, returns its current number and
// advances it. The first call for a tenant creates the row.
func (r *fiscalRepo) NextNumber(ctx context.Context, tenantID uuid.UUID) (string, error) {
	db := r.db.WithContext(ctx)

	var seq model.FiscalSequence
	err := db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&seq, "tenant_id = ?", tenantID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		seed := model.FiscalSequence{TenantID: tenantID, Series: r.defaultSeries, NextNumber: 1}
		if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&seed).Error; err != nil {
			return "", err
		}
		err = db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&seq, "tenant_id = ?", tenantID).Error
	}
	if err != nil {
		return "", err
	}

	number := seq.NextNumber
	if err := db.Model(&model.FiscalSequence{}).
		Where("tenant_id = ?", tenantID).
		Update("next_number", number+1).Error; err != nil {
		return "", err
	}
	return model.FormatFiscalNumber(seq.Series, number), nil
}

package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ProductStatus string

const (
	ProductActive   ProductStatus = "ACTIVE"
	ProductInactive ProductStatus = "INACTIVE"
)

// Product is owned by the catalog service. The transaction engine only reads the
// price and moves StockCurrent through the inventory ledger.
type Product struct {
	BaseModel
	TenantID     uuid.UUID       `gorm:"type:uuid;not null;index" json:"tenant_id"`
	SKU          string          `gorm:"type:varchar(50);not null" json:"sku"`
	Name         string          `gorm:"type:varchar(255);not null" json:"name"`
	Price        decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"price"`
	StockCurrent int             `gorm:"not null;default:0;check:stock_current >= 0" json:"stock_current"`
	StockMinimum int             `gorm:"not null;default:0" json:"stock_minimum"`
	Status       ProductStatus   `gorm:"type:varchar(10);not null;default:'ACTIVE'" json:"status"`
}

func (p *Product) IsActive() bool {
	return p.Status == ProductActive
}

// IsLowStock reports whether the current stock reached the configured minimum.
func (p *Product) IsLowStock() bool {
	return p.StockCurrent <= p.StockMinimum
}

package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type PurchaseStatus string

// PurchaseRegistered is terminal: purchases settle the moment they are recorded.
const PurchaseRegistered PurchaseStatus = "REGISTERED"

type Purchase struct {
	BaseModel
	TenantID      uuid.UUID       `gorm:"type:uuid;not null;index" json:"tenant_id"`
	SupplierID    *uuid.UUID      `gorm:"type:uuid" json:"supplier_id,omitempty"` // nil = own stock
	PaymentMethod PaymentMethod   `gorm:"type:varchar(10);not null" json:"payment_method"`
	Status        PurchaseStatus  `gorm:"type:varchar(12);not null" json:"status"`
	Total         decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total"`
	InvoiceNumber *string         `gorm:"type:varchar(40)" json:"invoice_number,omitempty"`
	Observation   *string         `gorm:"type:text" json:"observation,omitempty"`
	ProofArtifact *string         `gorm:"type:varchar(255)" json:"proof_artifact,omitempty"`

	Lines []PurchaseLine `gorm:"foreignKey:PurchaseID" json:"lines"`
}

type PurchaseLine struct {
	ID         uuid.UUID       `gorm:"type:uuid;primary_key;" json:"id"`
	PurchaseID uuid.UUID       `gorm:"type:uuid;not null;index" json:"purchase_id"`
	Position   int             `gorm:"not null" json:"position"`
	ProductID  uuid.UUID       `gorm:"type:uuid;not null;index" json:"product_id"`
	Quantity   int             `gorm:"not null" json:"quantity"`
	UnitCost   decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"unit_cost"`
	Subtotal   decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"subtotal"`
	LotNumber  *string         `gorm:"type:varchar(50)" json:"lot_number,omitempty"`
	ExpiresAt  *time.Time      `gorm:"type:date" json:"expires_at,omitempty"`
}

func (l *PurchaseLine) BeforeCreate(tx *gorm.DB) (err error) {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return
}

type PurchaseItem struct {
	ProductID uuid.UUID
	Quantity  int
	UnitCost  decimal.Decimal
	LotNumber *string
	ExpiresAt *time.Time
}

type NewPurchaseParams struct {
	TenantID      uuid.UUID
	SupplierID    *uuid.UUID
	PaymentMethod PaymentMethod
	InvoiceNumber *string
	Observation   *string
	ProofArtifact *string
	Items         []PurchaseItem
	Actor         string
	Now           time.Time
}

// NewPurchase computes subtotals and total. Stock is applied by the caller.
func NewPurchase(p NewPurchaseParams) (*Purchase, error) {
	if p.TenantID == uuid.Nil {
		return nil, ValidationError("tenant is required")
	}
	if !p.PaymentMethod.Valid() {
		return nil, ValidationError("unknown payment method %q", p.PaymentMethod)
	}
	if len(p.Items) == 0 {
		return nil, ValidationError("purchase must have at least one line")
	}

	purchase := &Purchase{
		TenantID:      p.TenantID,
		SupplierID:    p.SupplierID,
		PaymentMethod: p.PaymentMethod,
		Status:        PurchaseRegistered,
		InvoiceNumber: p.InvoiceNumber,
		Observation:   p.Observation,
		ProofArtifact: p.ProofArtifact,
		Lines:         make([]PurchaseLine, 0, len(p.Items)),
	}
	purchase.ID = uuid.New()
	purchase.CreatedBy = p.Actor
	purchase.UpdatedBy = p.Actor
	purchase.CreatedAt = p.Now
	purchase.UpdatedAt = p.Now

	total := decimal.Zero
	for i, item := range p.Items {
		if item.ProductID == uuid.Nil {
			return nil, ValidationError("line %d: product is required", i+1)
		}
		if item.Quantity <= 0 || item.Quantity > MaxLineQuantity {
			return nil, ValidationError("line %d: quantity must be between 1 and %d", i+1, MaxLineQuantity)
		}
		if item.UnitCost.IsNegative() {
			return nil, ValidationError("line %d: unit cost cannot be negative", i+1)
		}
		cost := item.UnitCost.Round(2)
		subtotal := cost.Mul(decimal.NewFromInt(int64(item.Quantity))).Round(2)
		purchase.Lines = append(purchase.Lines, PurchaseLine{
			ID:         uuid.New(),
			PurchaseID: purchase.ID,
			Position:   i + 1,
			ProductID:  item.ProductID,
			Quantity:   item.Quantity,
			UnitCost:   cost,
			Subtotal:   subtotal,
			LotNumber:  item.LotNumber,
			ExpiresAt:  item.ExpiresAt,
		})
		total = total.Add(subtotal)
	}
	purchase.Total = total
	return purchase, nil
}

// StockDeltas returns the positive replenishment for every line.
func (p *Purchase) StockDeltas() []StockDelta {
	deltas := make([]StockDelta, 0, len(p.Lines))
	for _, l := range p.Lines {
		deltas = append(deltas, StockDelta{ProductID: l.ProductID, Delta: l.Quantity})
	}
	return deltas
}

func (p *Purchase) HasProof() bool {
	return p.ProofArtifact != nil && *p.ProofArtifact != ""
}

package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type SaleChannel string

const (
	ChannelPhysical SaleChannel = "PHYSICAL"
	ChannelOnline   SaleChannel = "ONLINE"
)

type PaymentMethod string

const (
	PaymentCash     PaymentMethod = "CASH"
	PaymentQR       PaymentMethod = "QR"
	PaymentTransfer PaymentMethod = "TRANSFER"
)

type SaleStatus string

const (
	SaleRegistered SaleStatus = "REGISTERED"
	SalePaid       SaleStatus = "PAID"
	SaleCancelled  SaleStatus = "CANCELLED"
)

type FulfillmentStatus string

const (
	FulfillmentPending   FulfillmentStatus = "PENDING"
	FulfillmentDelivered FulfillmentStatus = "DELIVERED"
)

type FiscalStatus string

const (
	FiscalNone   FiscalStatus = "NONE"
	FiscalIssued FiscalStatus = "ISSUED"
)

// MaxLineQuantity bounds the quantity of a single sale or purchase line.
const MaxLineQuantity = 1000000

// StockDelta is a signed stock adjustment for one product.
type StockDelta struct {
	ProductID uuid.UUID
	Delta     int
}

// Sale is one checkout. Lines, prices and totals are fixed at creation; afterwards
// only the three status axes move, each through its own transition method.
type Sale struct {
	BaseModel
	TenantID          uuid.UUID         `gorm:"type:uuid;not null;index" json:"tenant_id"`
	Channel           SaleChannel       `gorm:"type:varchar(10);not null" json:"channel"`
	PaymentMethod     PaymentMethod     `gorm:"type:varchar(10);not null" json:"payment_method"`
	Status            SaleStatus        `gorm:"type:varchar(12);not null;index" json:"status"`
	FulfillmentStatus FulfillmentStatus `gorm:"type:varchar(12);not null" json:"fulfillment_status"`
	FiscalStatus      FiscalStatus      `gorm:"type:varchar(8);not null" json:"fiscal_status"`
	Total             decimal.Decimal   `gorm:"type:decimal(12,2);not null" json:"total"`
	TaxRate           decimal.Decimal   `gorm:"type:decimal(5,2);not null;default:0" json:"tax_rate"`
	TaxAmount         decimal.Decimal   `gorm:"type:decimal(12,2);not null;default:0" json:"tax_amount"`
	CustomerID        *uuid.UUID        `gorm:"type:uuid" json:"customer_id,omitempty"`
	ProofArtifact     *string           `gorm:"type:varchar(255)" json:"proof_artifact,omitempty"`
	FiscalNumber      *string           `gorm:"type:varchar(40)" json:"fiscal_number,omitempty"`

	// StockApplied is true while the sale holds a ledger decrement that a
	// cancellation has to give back.
	StockApplied bool `gorm:"not null;default:false" json:"stock_applied"`

	PaidAt      *time.Time `json:"paid_at,omitempty"`
	DeliveredAt *time.Time `json:"delivered_at,omitempty"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`
	InvoicedAt  *time.Time `json:"invoiced_at,omitempty"`

	Lines []SaleLine `gorm:"foreignKey:SaleID" json:"lines"`
}

type SaleLine struct {
	ID          uuid.UUID       `gorm:"type:uuid;primary_key;" json:"id"`
	SaleID      uuid.UUID       `gorm:"type:uuid;not null;index" json:"sale_id"`
	Position    int             `gorm:"not null" json:"position"`
	ProductID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"product_id"`
	ProductName string          `gorm:"type:varchar(255);not null" json:"product_name"`
	Quantity    int             `gorm:"not null" json:"quantity"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"unit_price"`
	Discount    decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"discount"`
	Subtotal    decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"subtotal"`
}

func (l *SaleLine) BeforeCreate(tx *gorm.DB) (err error) {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return
}

// SaleItem is one resolved checkout line: the catalog product at the instant of
// sale plus the requested quantity and discount.
type SaleItem struct {
	Product  Product
	Quantity int
	Discount decimal.Decimal
}

// NewSaleParams groups everything NewSale needs.
type NewSaleParams struct {
	TenantID      uuid.UUID
	Channel       SaleChannel
	PaymentMethod PaymentMethod
	CustomerID    *uuid.UUID
	ProofArtifact *string
	Items         []SaleItem
	TaxRate       decimal.Decimal
	Actor         string
	Now           time.Time
}

// NewSale prices the items and builds the sale in its initial state.
// Physical sales start PAID and DELIVERED with StockApplied set; the caller must
// apply the matching ledger decrement in the same atomic unit as the insert.
func NewSale(p NewSaleParams) (*Sale, error) {
	if p.TenantID == uuid.Nil {
		return nil, ValidationError("tenant is required")
	}
	if p.Channel != ChannelPhysical && p.Channel != ChannelOnline {
		return nil, ValidationError("unknown channel %q", p.Channel)
	}
	if !p.PaymentMethod.Valid() {
		return nil, ValidationError("unknown payment method %q", p.PaymentMethod)
	}
	if len(p.Items) == 0 {
		return nil, ValidationError("sale must have at least one line")
	}

	sale := &Sale{
		TenantID:          p.TenantID,
		Channel:           p.Channel,
		PaymentMethod:     p.PaymentMethod,
		Status:            SaleRegistered,
		FulfillmentStatus: FulfillmentPending,
		FiscalStatus:      FiscalNone,
		TaxRate:           p.TaxRate,
		CustomerID:        p.CustomerID,
		ProofArtifact:     p.ProofArtifact,
		Lines:             make([]SaleLine, 0, len(p.Items)),
	}
	sale.ID = uuid.New()
	sale.CreatedBy = p.Actor
	sale.UpdatedBy = p.Actor
	sale.CreatedAt = p.Now
	sale.UpdatedAt = p.Now

	total := decimal.Zero
	for i, item := range p.Items {
		if item.Product.TenantID != p.TenantID {
			return nil, NotFoundError("product", item.Product.ID)
		}
		if !item.Product.IsActive() {
			return nil, ValidationError("product '%s' is inactive", item.Product.Name)
		}
		if item.Quantity <= 0 || item.Quantity > MaxLineQuantity {
			return nil, ValidationError("line %d: quantity must be between 1 and %d", i+1, MaxLineQuantity)
		}
		if item.Discount.IsNegative() {
			return nil, ValidationError("line %d: discount cannot be negative", i+1)
		}
		gross := item.Product.Price.Mul(decimal.NewFromInt(int64(item.Quantity))).Round(2)
		discount := item.Discount.Round(2)
		if discount.GreaterThan(gross) {
			return nil, ValidationError("line %d: discount exceeds line amount", i+1)
		}
		subtotal := gross.Sub(discount)
		sale.Lines = append(sale.Lines, SaleLine{
			ID:          uuid.New(),
			SaleID:      sale.ID,
			Position:    i + 1,
			ProductID:   item.Product.ID,
			ProductName: item.Product.Name,
			Quantity:    item.Quantity,
			UnitPrice:   item.Product.Price.Round(2),
			Discount:    discount,
			Subtotal:    subtotal,
		})
		total = total.Add(subtotal)
	}
	sale.Total = total
	sale.TaxAmount = IncludedTax(total, p.TaxRate)

	if p.Channel == ChannelPhysical {
		now := p.Now
		sale.Status = SalePaid
		sale.FulfillmentStatus = FulfillmentDelivered
		sale.StockApplied = true
		sale.PaidAt = &now
		sale.DeliveredAt = &now
	}
	return sale, nil
}

// IncludedTax returns the tax portion already contained in a tax-inclusive total.
func IncludedTax(total, ratePercent decimal.Decimal) decimal.Decimal {
	if !ratePercent.IsPositive() {
		return decimal.Zero
	}
	factor := decimal.NewFromInt(1).Add(ratePercent.Div(decimal.NewFromInt(100)))
	net := total.Div(factor).Round(2)
	return total.Sub(net)
}

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCash, PaymentQR, PaymentTransfer:
		return true
	}
	return false
}

// LinesTotal sums the persisted line subtotals.
func (s *Sale) LinesTotal() decimal.Decimal {
	total := decimal.Zero
	for _, l := range s.Lines {
		total = total.Add(l.Subtotal)
	}
	return total
}

// StockDeltas returns one delta per line, multiplied by sign (-1 to consume, +1 to restore).
func (s *Sale) StockDeltas(sign int) []StockDelta {
	deltas := make([]StockDelta, 0, len(s.Lines))
	for _, l := range s.Lines {
		deltas = append(deltas, StockDelta{ProductID: l.ProductID, Delta: sign * l.Quantity})
	}
	return deltas
}

func (s *Sale) stateError(action string) error {
	return &StateError{Entity: "sale", From: string(s.Status), Action: action}
}

func (s *Sale) touch(actor string, now time.Time) {
	s.UpdatedBy = actor
	s.UpdatedAt = now
}

// CheckApprove validates REGISTERED -> PAID without changing anything.
func (s *Sale) CheckApprove() error {
	if s.Channel != ChannelOnline || s.Status != SaleRegistered {
		return s.stateError("approve")
	}
	return nil
}

// Approve moves an online sale to PAID. The ledger decrement must already be applied.
func (s *Sale) Approve(actor string, now time.Time) error {
	if err := s.CheckApprove(); err != nil {
		return err
	}
	s.Status = SalePaid
	s.StockApplied = true
	s.PaidAt = &now
	s.touch(actor, now)
	return nil
}

// Reject cancels a REGISTERED online sale. Its stock was never taken.
func (s *Sale) Reject(actor string, now time.Time) error {
	if s.Channel != ChannelOnline || s.Status != SaleRegistered {
		return s.stateError("reject")
	}
	s.Status = SaleCancelled
	s.CancelledAt = &now
	s.touch(actor, now)
	return nil
}

// CheckCancel validates a cancellation without changing anything.
func (s *Sale) CheckCancel() error {
	if s.Status == SaleCancelled {
		return s.stateError("cancel")
	}
	return nil
}

// Cancel moves the sale to CANCELLED and reports whether the caller has to restore
// stock. It reports true at most once per sale.
func (s *Sale) Cancel(actor string, now time.Time) (restore bool, err error) {
	if err := s.CheckCancel(); err != nil {
		return false, err
	}
	restore = s.StockApplied
	s.Status = SaleCancelled
	s.StockApplied = false
	s.CancelledAt = &now
	s.touch(actor, now)
	return restore, nil
}

// Deliver marks a PAID sale as handed over.
func (s *Sale) Deliver(actor string, now time.Time) error {
	if s.Status != SalePaid || s.FulfillmentStatus != FulfillmentPending {
		return &StateError{Entity: "sale", From: string(s.Status) + "/" + string(s.FulfillmentStatus), Action: "deliver"}
	}
	s.FulfillmentStatus = FulfillmentDelivered
	s.DeliveredAt = &now
	s.touch(actor, now)
	return nil
}

// CheckInvoice validates NONE -> ISSUED. An already issued sale passes; callers
// return the existing number instead of allocating a new one.
func (s *Sale) CheckInvoice() error {
	if s.Status != SalePaid {
		return s.stateError("invoice")
	}
	return nil
}

// StampInvoice records the fiscal number on a PAID sale.
func (s *Sale) StampInvoice(number, actor string, now time.Time) error {
	if err := s.CheckInvoice(); err != nil {
		return err
	}
	if s.FiscalStatus == FiscalIssued {
		return &StateError{Entity: "sale", From: string(s.FiscalStatus), Action: "invoice"}
	}
	s.FiscalStatus = FiscalIssued
	s.FiscalNumber = &number
	s.InvoicedAt = &now
	s.touch(actor, now)
	return nil
}

// AttachProof stores the payment evidence of an online sale awaiting approval.
func (s *Sale) AttachProof(ref, actor string, now time.Time) error {
	if s.Channel != ChannelOnline || s.Status != SaleRegistered {
		return s.stateError("attach proof to")
	}
	s.ProofArtifact = &ref
	s.touch(actor, now)
	return nil
}

// HasProof reports whether a proof artifact reference is present.
func (s *Sale) HasProof() bool {
	return s.ProofArtifact != nil && *s.ProofArtifact != ""
}

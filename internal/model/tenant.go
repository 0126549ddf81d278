package model

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Role codes carried in the access token issued by the account service.
const (
	RoleOwner  = "OWNER"
	RoleSeller = "SELLER"
)

// OperatorRoles may run sale and purchase transactions.
var OperatorRoles = []string{RoleOwner, RoleSeller}

// CanOperate reports whether role may run lifecycle operations for its tenant.
func CanOperate(role string) bool {
	for _, r := range OperatorRoles {
		if r == role {
			return true
		}
	}
	return false
}

// TenantProfile is the display data printed on documents. It is maintained by the
// account service and read on every render, so logo or address edits show up on
// the next download.
type TenantProfile struct {
	TenantID  uuid.UUID       `gorm:"type:uuid;primaryKey" json:"tenant_id"`
	Name      string          `gorm:"type:varchar(255);not null" json:"name"`
	TaxID     string          `gorm:"type:varchar(30)" json:"tax_id"`
	Address   string          `gorm:"type:varchar(255)" json:"address"`
	Phone     string          `gorm:"type:varchar(30)" json:"phone"`
	Currency  string          `gorm:"type:varchar(8);not null;default:'BOB'" json:"currency"`
	TaxRate   decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0" json:"tax_rate"` // percent, e.g. 13.00
	LegalNote string          `gorm:"type:text" json:"legal_note"`
}

func (TenantProfile) TableName() string {
	return "tenant_profiles"
}

// Customer is a read-only snapshot of the tenant's customer record.
type Customer struct {
	BaseModel
	TenantID uuid.UUID `gorm:"type:uuid;not null;index" json:"tenant_id"`
	Name     string    `gorm:"type:varchar(255);not null" json:"name"`
	TaxID    string    `gorm:"type:varchar(30)" json:"tax_id"`
	Email    string    `gorm:"type:varchar(255)" json:"email"`
}

// FiscalSequence is the per-tenant invoice counter.
type FiscalSequence struct {
	TenantID   uuid.UUID `gorm:"type:uuid;primaryKey"`
	Series     string    `gorm:"type:varchar(10);not null"`
	NextNumber int64     `gorm:"not null;default:1"`
}

// FormatFiscalNumber renders a sequence value as SERIES-00000042.
func FormatFiscalNumber(series string, number int64) string {
	return fmt.Sprintf("%s-%08d", series, number)
}

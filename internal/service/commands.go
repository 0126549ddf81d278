package service

import (
	"fmt"
	"strings"
	"time"

	"saas-commerce/internal/model"
	"saas-commerce/pkg/validator"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Actor identifies who performs an operation inside a tenant.
type Actor struct {
	TenantID uuid.UUID
	UserID   string
	Role     string
}

type CheckoutLine struct {
	ProductID uuid.UUID       `json:"product_id" validate:"uuid_required"`
	Quantity  int             `json:"quantity" validate:"gt=0,lte=1000000"`
	Discount  decimal.Decimal `json:"discount" validate:"decimal_gte0"`
}

type CheckoutCommand struct {
	Channel       model.SaleChannel   `json:"channel" validate:"required,oneof=PHYSICAL ONLINE"`
	PaymentMethod model.PaymentMethod `json:"payment_method" validate:"required,oneof=CASH QR TRANSFER"`
	CustomerID    *uuid.UUID          `json:"customer_id"`
	ProofArtifact *string             `json:"proof_artifact" validate:"omitempty,max=80"`
	Lines         []CheckoutLine      `json:"lines" validate:"required,min=1,dive"`
}

type PurchaseLineCommand struct {
	ProductID uuid.UUID       `json:"product_id" validate:"uuid_required"`
	Quantity  int             `json:"quantity" validate:"gt=0,lte=1000000"`
	UnitCost  decimal.Decimal `json:"unit_cost" validate:"decimal_gte0"`
	LotNumber *string         `json:"lot_number" validate:"omitempty,max=50"`
	ExpiresAt *time.Time      `json:"expires_at"`
}

type PurchaseCommand struct {
	SupplierID    *uuid.UUID            `json:"supplier_id"`
	PaymentMethod model.PaymentMethod   `json:"payment_method" validate:"required,oneof=CASH QR TRANSFER"`
	InvoiceNumber *string               `json:"invoice_number" validate:"omitempty,max=40"`
	Observation   *string               `json:"observation" validate:"omitempty,max=500"`
	ProofArtifact *string               `json:"proof_artifact" validate:"omitempty,max=80"`
	Lines         []PurchaseLineCommand `json:"lines" validate:"required,min=1,dive"`
}

// validateCommand reports the first failed rule as model.ErrValidation.
func validateCommand(cmd interface{}) error {
	errs := validator.ValidateStruct(cmd)
	if len(errs) == 0 {
		return nil
	}
	first := errs[0]
	field := first.FailedField
	if i := strings.Index(field, "."); i >= 0 {
		field = field[i+1:]
	}
	return model.ValidationError("field '%s' failed on tag '%s'", field, first.Tag)
}

func requireActor(actor Actor) error {
	if actor.TenantID == uuid.Nil {
		return model.ValidationError("tenant is required")
	}
	if !model.CanOperate(actor.Role) {
		return fmt.Errorf("%w: role %q cannot operate sales", model.ErrForbidden, actor.Role)
	}
	return nil
}

package validator

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type line struct {
	ProductID uuid.UUID       `validate:"uuid_required"`
	Quantity  int             `validate:"gt=0"`
	Discount  decimal.Decimal `validate:"decimal_gte0"`
}

type order struct {
	Method string `validate:"required,oneof=CASH QR TRANSFER"`
	Lines  []line `validate:"required,min=1,dive"`
}

func TestValidateStruct(t *testing.T) {
	valid := order{
		Method: "QR",
		Lines:  []line{{ProductID: uuid.New(), Quantity: 1, Discount: decimal.Zero}},
	}
	assert.Empty(t, ValidateStruct(valid))

	t.Run("nil uuid", func(t *testing.T) {
		o := valid
		o.Lines = []line{{Quantity: 1}}
		errs := ValidateStruct(o)
		require.Len(t, errs, 1)
		assert.Equal(t, "uuid_required", errs[0].Tag)
		assert.Equal(t, "order.Lines[0].ProductID", errs[0].FailedField)
	})

	t.Run("negative discount", func(t *testing.T) {
		o := valid
		o.Lines = []line{{ProductID: uuid.New(), Quantity: 1, Discount: decimal.RequireFromString("-0.01")}}
		errs := ValidateStruct(o)
		require.Len(t, errs, 1)
		assert.Equal(t, "decimal_gte0", errs[0].Tag)
	})

	t.Run("unknown method and empty lines", func(t *testing.T) {
		errs := ValidateStruct(order{Method: "CARD"})
		require.Len(t, errs, 2)
		assert.Equal(t, "oneof", errs[0].Tag)
		assert.Equal(t, "required", errs[1].Tag)
	})
}

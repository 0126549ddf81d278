package service

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"saas-commerce/internal/model"
	"saas-commerce/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPurchase_ReplenishesStock(t *testing.T) {
	f := newFixture(t)
	a := f.product(t, "A", "2.00", 1, 0)
	b := f.product(t, "B", "2.00", 0, 0)
	lot := "L-1"
	expires := time.Date(2027, 6, 30, 0, 0, 0, 0, time.UTC)
	supplier := uuid.New()

	purchase, err := f.purchases.Create(context.Background(), f.owner, PurchaseCommand{
		SupplierID:    &supplier,
		PaymentMethod: model.PaymentTransfer,
		ProofArtifact: f.upload(t, "wire"),
		Lines: []PurchaseLineCommand{
			{ProductID: a.ID, Quantity: 10, UnitCost: decimal.RequireFromString("1.10"), LotNumber: &lot, ExpiresAt: &expires},
			{ProductID: b.ID, Quantity: 5, UnitCost: decimal.RequireFromString("0.99")},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, model.PurchaseRegistered, purchase.Status)
	assert.Equal(t, "15.95", purchase.Total.StringFixed(2))
	assert.Equal(t, 11, f.stock(t, a.ID))
	assert.Equal(t, 5, f.stock(t, b.ID))
	assert.Equal(t, []model.EventType{model.EventPurchaseCreated}, f.events.Types())

	got, err := f.purchases.GetPurchase(context.Background(), f.tenant, purchase.ID)
	require.NoError(t, err)
	require.Len(t, got.Lines, 2)
	assert.Equal(t, "L-1", *got.Lines[0].LotNumber)

	list, err := f.purchases.ListPurchases(context.Background(), f.tenant, repository.PurchaseFilter{SupplierID: &supplier})
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestPurchase_QRWithoutProofLeavesStock(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "Rice", "2.00", 3, 0)

	_, err := f.purchases.Create(context.Background(), f.owner, PurchaseCommand{
		PaymentMethod: model.PaymentQR,
		Lines:         []PurchaseLineCommand{{ProductID: p.ID, Quantity: 10, UnitCost: decimal.NewFromInt(1)}},
	})

	assert.ErrorIs(t, err, model.ErrMissingPaymentProof)
	assert.Equal(t, 3, f.stock(t, p.ID))
	assert.Empty(t, f.events.Types())
}

func TestPurchase_UnknownProofLeavesStock(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "Corn", "2.00", 3, 0)

	_, err := f.purchases.Create(context.Background(), f.owner, PurchaseCommand{
		PaymentMethod: model.PaymentTransfer,
		ProofArtifact: ref("x"),
		Lines:         []PurchaseLineCommand{{ProductID: p.ID, Quantity: 10, UnitCost: decimal.NewFromInt(1)}},
	})
	assert.ErrorIs(t, err, model.ErrValidation)
	assert.Equal(t, 3, f.stock(t, p.ID))
	assert.Empty(t, f.events.Events())
}

func TestPurchase_UnknownProductAppliesNothing(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "Rice", "2.00", 3, 0)

	_, err := f.purchases.Create(context.Background(), f.owner, PurchaseCommand{
		PaymentMethod: model.PaymentCash,
		Lines: []PurchaseLineCommand{
			{ProductID: p.ID, Quantity: 10, UnitCost: decimal.NewFromInt(1)},
			{ProductID: uuid.New(), Quantity: 1, UnitCost: decimal.NewFromInt(1)},
		},
	})

	assert.ErrorIs(t, err, model.ErrNotFound)
	assert.Equal(t, 3, f.stock(t, p.ID))
	list, err := f.purchases.ListPurchases(context.Background(), f.tenant, repository.PurchaseFilter{})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestPurchase_Validation(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "Rice", "2.00", 3, 0)

	_, err := f.purchases.Create(context.Background(), f.owner, PurchaseCommand{
		PaymentMethod: model.PaymentCash,
		Lines:         []PurchaseLineCommand{{ProductID: p.ID, Quantity: 1, UnitCost: decimal.RequireFromString("-0.50")}},
	})
	assert.ErrorIs(t, err, model.ErrValidation)

	_, err = f.purchases.Create(context.Background(), f.owner, PurchaseCommand{PaymentMethod: model.PaymentCash})
	assert.ErrorIs(t, err, model.ErrValidation)

	_, err = f.purchases.Create(context.Background(), f.owner, PurchaseCommand{
		PaymentMethod: model.PaymentCash,
		Lines:         []PurchaseLineCommand{{ProductID: p.ID, Quantity: math.MaxInt, UnitCost: decimal.NewFromInt(1)}},
	})
	assert.ErrorIs(t, err, model.ErrValidation)
	assert.False(t, errors.Is(err, model.ErrInsufficientStock))
	assert.Equal(t, 3, f.stock(t, p.ID))
}

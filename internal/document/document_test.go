package document

import (
	"bytes"
	"testing"
	"time"

	"saas-commerce/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var tenant = model.TenantProfile{
	TenantID:  uuid.New(),
	Name:      "Tienda Central",
	TaxID:     "1020304050",
	Address:   "Av. Siempre Viva 742",
	Currency:  "BOB",
	TaxRate:   decimal.RequireFromString("13"),
	LegalNote: "This invoice contributes to the development of the country.",
}

func issuedSale(t *testing.T, channel model.SaleChannel) *model.Sale {
	t.Helper()
	created := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	product := model.Product{
		TenantID: tenant.TenantID,
		Name:     "Café molido 500g",
		Price:    decimal.RequireFromString("12.50"),
		Status:   model.ProductActive,
	}
	product.ID = uuid.New()

	sale, err := model.NewSale(model.NewSaleParams{
		TenantID:      tenant.TenantID,
		Channel:       channel,
		PaymentMethod: model.PaymentCash,
		Items:         []model.SaleItem{{Product: product, Quantity: 3, Discount: decimal.RequireFromString("1.50")}},
		TaxRate:       tenant.TaxRate,
		Actor:         "seller",
		Now:           created,
	})
	require.NoError(t, err)
	if channel == model.ChannelOnline {
		require.NoError(t, sale.Approve("owner", created))
	}
	require.NoError(t, sale.StampInvoice("001-00000042", "owner", created.Add(time.Minute)))
	return sale
}

func TestSelectLayout(t *testing.T) {
	tests := []struct {
		channel model.SaleChannel
		fiscal  model.FiscalStatus
		want    Layout
	}{
		{model.ChannelPhysical, model.FiscalNone, Layout{Format: FormatTicket}},
		{model.ChannelPhysical, model.FiscalIssued, Layout{Format: FormatTicket, Fiscal: true}},
		{model.ChannelOnline, model.FiscalNone, Layout{Format: FormatA4}},
		{model.ChannelOnline, model.FiscalIssued, Layout{Format: FormatA4, Fiscal: true}},
	}
	for _, tt := range tests {
		t.Run(string(tt.channel)+"/"+string(tt.fiscal), func(t *testing.T) {
			assert.Equal(t, tt.want, SelectLayout(tt.channel, tt.fiscal))
		})
	}
}

func TestBuildSalePage_Issued(t *testing.T) {
	sale := issuedSale(t, model.ChannelOnline)
	customer := &model.Customer{Name: "Ana Pérez", TaxID: "7788990"}

	page := BuildSalePage(sale, tenant, customer)

	assert.Equal(t, Layout{Format: FormatA4, Fiscal: true}, page.Layout)
	assert.Equal(t, "INVOICE", page.Title)
	assert.Equal(t, "001-00000042", page.Reference)
	require.NotNil(t, page.Fiscal)
	assert.Equal(t, "001-00000042", page.Fiscal.Number)
	assert.Equal(t, "2026-03-14 09:31", page.Fiscal.IssuedAt)
	assert.Contains(t, page.Party, "Customer: Ana Pérez")
	assert.Contains(t, page.Footer, tenant.LegalNote)

	require.Len(t, page.Rows, 1)
	assert.Equal(t, []string{"1", "Café molido 500g", "3", "12.50", "1.50", "36.00"}, page.Rows[0])
	assert.Equal(t, []Amount{
		{Label: "Net", Value: "31.86"},
		{Label: "Tax 13.00%", Value: "4.14"},
		{Label: "Total BOB", Value: "36.00", Bold: true},
	}, page.Totals)
}

func TestBuildSalePage_TicketWithoutInvoice(t *testing.T) {
	sale := issuedSale(t, model.ChannelPhysical)
	sale.FiscalStatus = model.FiscalNone
	sale.FiscalNumber = nil

	page := BuildSalePage(sale, tenant, nil)

	assert.Equal(t, Layout{Format: FormatTicket}, page.Layout)
	assert.Equal(t, "SALE RECEIPT", page.Title)
	assert.Nil(t, page.Fiscal)
	assert.NotContains(t, page.Footer, tenant.LegalNote)
	assert.Contains(t, page.Party, "Customer: walk-in")
	assert.Equal(t, []string{"Café molido 500g (-1.50)", "3", "36.00"}, page.Rows[0])
}

func TestBuildSalePage_PrintsPersistedTotal(t *testing.T) {
	sale := issuedSale(t, model.ChannelOnline)
	// Totals are printed as stored, never re-summed from lines.
	sale.Total = decimal.RequireFromString("35.99")

	page := BuildSalePage(sale, tenant, nil)
	assert.Equal(t, "35.99", page.Totals[len(page.Totals)-1].Value)
}

func TestRender_Deterministic(t *testing.T) {
	for _, channel := range []model.SaleChannel{model.ChannelPhysical, model.ChannelOnline} {
		t.Run(string(channel), func(t *testing.T) {
			sale := issuedSale(t, channel)

			first, err := Render(BuildSalePage(sale, tenant, nil))
			require.NoError(t, err)
			second, err := Render(BuildSalePage(sale, tenant, nil))
			require.NoError(t, err)

			assert.True(t, bytes.HasPrefix(first, []byte("%PDF-")))
			assert.True(t, bytes.Equal(first, second))
		})
	}
}

func TestBuildPurchasePage(t *testing.T) {
	productID := uuid.New()
	lot := "L-778"
	expires := time.Date(2027, 1, 31, 0, 0, 0, 0, time.UTC)
	purchase, err := model.NewPurchase(model.NewPurchaseParams{
		TenantID:      tenant.TenantID,
		PaymentMethod: model.PaymentCash,
		Items: []model.PurchaseItem{
			{ProductID: productID, Quantity: 10, UnitCost: decimal.RequireFromString("8.25"), LotNumber: &lot, ExpiresAt: &expires},
			{ProductID: uuid.New(), Quantity: 2, UnitCost: decimal.RequireFromString("1")},
		},
		Actor: "owner",
		Now:   time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	page := BuildPurchasePage(purchase, tenant, map[uuid.UUID]string{productID: "Azúcar 1kg"})

	assert.Equal(t, FormatA4, page.Layout.Format)
	assert.Contains(t, page.Party, "Supplier: own stock")
	assert.Equal(t, []string{"1", "Azúcar 1kg", "L-778", "2027-01-31", "10", "8.25", "82.50"}, page.Rows[0])
	assert.Equal(t, "-", page.Rows[1][2])
	assert.Equal(t, "Total BOB", page.Totals[0].Label)
	assert.Equal(t, "84.50", page.Totals[0].Value)

	out, err := Render(page)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
}

package document

import (
	"fmt"
	"strconv"
	"time"

	"saas-commerce/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02 15:04"

type Column struct {
	Header string
	Width  float64 // fraction of the content width
	Align  string  // fpdf alignment: L, C or R
}

type Amount struct {
	Label string
	Value string
	Bold  bool
}

type FiscalBox struct {
	Number   string
	IssuedAt string
	IssuerID string
}

// Page is the printable content of one document, independent of the PDF engine.
type Page struct {
	Layout    Layout
	Title     string
	Issuer    []string
	Reference string
	Date      time.Time
	Party     []string
	Columns   []Column
	Rows      [][]string
	Totals    []Amount
	Fiscal    *FiscalBox
	Footer    []string
}

// Filename is the suggested download name.
func (p Page) Filename() string {
	return p.Reference + ".pdf"
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func shortID(id uuid.UUID) string {
	return id.String()[:8]
}

func issuerLines(t model.TenantProfile) []string {
	lines := []string{t.Name}
	if t.TaxID != "" {
		lines = append(lines, "Tax ID: "+t.TaxID)
	}
	if t.Address != "" {
		lines = append(lines, t.Address)
	}
	if t.Phone != "" {
		lines = append(lines, "Phone: "+t.Phone)
	}
	return lines
}

func currency(t model.TenantProfile) string {
	if t.Currency == "" {
		return "BOB"
	}
	return t.Currency
}

// BuildSalePage lays out a sale. Amounts come from the persisted lines and
// totals; nothing is recomputed from the catalog.
func BuildSalePage(sale *model.Sale, tenant model.TenantProfile, customer *model.Customer) Page {
	layout := SelectLayout(sale.Channel, sale.FiscalStatus)
	if sale.FiscalNumber == nil {
		layout.Fiscal = false
	}
	page := Page{
		Layout:    layout,
		Title:     "SALE RECEIPT",
		Issuer:    issuerLines(tenant),
		Reference: "SALE-" + shortID(sale.ID),
		Date:      sale.CreatedAt,
	}
	if layout.Fiscal {
		page.Title = "INVOICE"
		page.Reference = *sale.FiscalNumber
	}

	if customer != nil {
		page.Party = append(page.Party, "Customer: "+customer.Name)
		if customer.TaxID != "" {
			page.Party = append(page.Party, "Customer tax ID: "+customer.TaxID)
		}
	} else {
		page.Party = append(page.Party, "Customer: walk-in")
	}
	page.Party = append(page.Party,
		"Payment: "+string(sale.PaymentMethod),
		"Status: "+string(sale.Status)+" / "+string(sale.FulfillmentStatus),
	)

	if layout.Format == FormatTicket {
		page.Columns = []Column{
			{Header: "Item", Width: 0.52, Align: "L"},
			{Header: "Qty", Width: 0.14, Align: "R"},
			{Header: "Amount", Width: 0.34, Align: "R"},
		}
		for _, l := range sale.Lines {
			desc := l.ProductName
			if l.Discount.IsPositive() {
				desc = fmt.Sprintf("%s (-%s)", desc, money(l.Discount))
			}
			page.Rows = append(page.Rows, []string{desc, strconv.Itoa(l.Quantity), money(l.Subtotal)})
		}
	} else {
		page.Columns = []Column{
			{Header: "#", Width: 0.06, Align: "C"},
			{Header: "Description", Width: 0.42, Align: "L"},
			{Header: "Qty", Width: 0.10, Align: "R"},
			{Header: "Unit price", Width: 0.14, Align: "R"},
			{Header: "Discount", Width: 0.13, Align: "R"},
			{Header: "Subtotal", Width: 0.15, Align: "R"},
		}
		for _, l := range sale.Lines {
			page.Rows = append(page.Rows, []string{
				strconv.Itoa(l.Position),
				l.ProductName,
				strconv.Itoa(l.Quantity),
				money(l.UnitPrice),
				money(l.Discount),
				money(l.Subtotal),
			})
		}
	}

	cur := currency(tenant)
	if sale.TaxRate.IsPositive() {
		page.Totals = append(page.Totals,
			Amount{Label: "Net", Value: money(sale.Total.Sub(sale.TaxAmount))},
			Amount{Label: fmt.Sprintf("Tax %s%%", money(sale.TaxRate)), Value: money(sale.TaxAmount)},
		)
	}
	page.Totals = append(page.Totals, Amount{Label: "Total " + cur, Value: money(sale.Total), Bold: true})

	if layout.Fiscal {
		box := &FiscalBox{Number: *sale.FiscalNumber, IssuerID: tenant.TaxID}
		if sale.InvoicedAt != nil {
			box.IssuedAt = sale.InvoicedAt.Format(dateLayout)
		}
		page.Fiscal = box
		if tenant.LegalNote != "" {
			page.Footer = append(page.Footer, tenant.LegalNote)
		}
	}
	if layout.Format == FormatTicket {
		page.Footer = append(page.Footer, "Thank you for your purchase")
	}
	return page
}

// BuildPurchasePage lays out an A4 purchase voucher. names maps product ids to
// display names; unknown ids print the short id.
func BuildPurchasePage(purchase *model.Purchase, tenant model.TenantProfile, names map[uuid.UUID]string) Page {
	page := Page{
		Layout:    Layout{Format: FormatA4},
		Title:     "PURCHASE VOUCHER",
		Issuer:    issuerLines(tenant),
		Reference: "PURCHASE-" + shortID(purchase.ID),
		Date:      purchase.CreatedAt,
		Columns: []Column{
			{Header: "#", Width: 0.05, Align: "C"},
			{Header: "Product", Width: 0.31, Align: "L"},
			{Header: "Lot", Width: 0.13, Align: "L"},
			{Header: "Expires", Width: 0.13, Align: "C"},
			{Header: "Qty", Width: 0.09, Align: "R"},
			{Header: "Unit cost", Width: 0.14, Align: "R"},
			{Header: "Subtotal", Width: 0.15, Align: "R"},
		},
	}

	if purchase.SupplierID != nil {
		page.Party = append(page.Party, "Supplier: "+purchase.SupplierID.String())
	} else {
		page.Party = append(page.Party, "Supplier: own stock")
	}
	if purchase.InvoiceNumber != nil && *purchase.InvoiceNumber != "" {
		page.Party = append(page.Party, "Supplier invoice: "+*purchase.InvoiceNumber)
	}
	page.Party = append(page.Party, "Payment: "+string(purchase.PaymentMethod))

	for _, l := range purchase.Lines {
		name, ok := names[l.ProductID]
		if !ok {
			name = shortID(l.ProductID)
		}
		lot, expires := "-", "-"
		if l.LotNumber != nil && *l.LotNumber != "" {
			lot = *l.LotNumber
		}
		if l.ExpiresAt != nil {
			expires = l.ExpiresAt.Format("2006-01-02")
		}
		page.Rows = append(page.Rows, []string{
			strconv.Itoa(l.Position),
			name,
			lot,
			expires,
			strconv.Itoa(l.Quantity),
			money(l.UnitCost),
			money(l.Subtotal),
		})
	}

	page.Totals = []Amount{{Label: "Total " + currency(tenant), Value: money(purchase.Total), Bold: true}}
	if purchase.Observation != nil && *purchase.Observation != "" {
		page.Footer = append(page.Footer, "Observation: "+*purchase.Observation)
	}
	return page
}

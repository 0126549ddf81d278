// Package document turns persisted sales and purchases into printable PDFs.
// Building a Page only reads stored values, so a document can be re-derived at
// any time and always shows the same amounts.
package document

import "saas-commerce/internal/model"

type Format string

const (
	FormatTicket Format = "TICKET_80MM"
	FormatA4     Format = "A4"
)

// Layout is one cell of the channel x fiscal matrix.
type Layout struct {
	Format Format `json:"format"`
	Fiscal bool   `json:"fiscal"`
}

// SelectLayout picks the narrow ticket for counter sales and A4 for online sales.
// An issued invoice adds the fiscal box and legal footer to either format.
func SelectLayout(channel model.SaleChannel, fiscal model.FiscalStatus) Layout {
	l := Layout{Format: FormatA4, Fiscal: fiscal == model.FiscalIssued}
	if channel == model.ChannelPhysical {
		l.Format = FormatTicket
	}
	return l
}

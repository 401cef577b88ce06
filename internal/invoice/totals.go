// Package invoice computes invoice amounts and renders invoices to HTML and PDF.
package invoice

import (
	"invoice-server/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const CurrencySymbol = "₹"

// TaxRate is the flat GST rate applied to every invoice.
var TaxRate = decimal.RequireFromString("0.18")

// MoneyPlaces is the scale of every stored amount.
const MoneyPlaces = 2

// MaxAmount is the largest value a NUMERIC(14,2) money column holds.
var MaxAmount = decimal.RequireFromString("999999999999.99")

// IsCents reports whether d is representable with MoneyPlaces decimals.
func IsCents(d decimal.Decimal) bool {
	return d.Equal(d.Round(MoneyPlaces))
}

type Totals struct {
	Items    []models.LineItem
	SubTotal decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
}

// ComputeTotals fills in each line total and the invoice amounts. Rates are
// rounded to cents first, the scale they are stored at, so each line keeps
// Total == Rate × Quantity. Every amount is rounded to two places, so
// Total == SubTotal + Tax exactly.
func ComputeTotals(items []models.LineItem) Totals {
	out := Totals{
		Items:    make([]models.LineItem, len(items)),
		SubTotal: decimal.Zero,
	}
	for i, item := range items {
		item.Rate = item.Rate.Round(MoneyPlaces)
		item.Total = item.Rate.Mul(decimal.NewFromInt(int64(item.Quantity))).Round(MoneyPlaces)
		out.Items[i] = item
		out.SubTotal = out.SubTotal.Add(item.Total)
	}
	out.SubTotal = out.SubTotal.Round(MoneyPlaces)
	out.Tax = out.SubTotal.Mul(TaxRate).Round(MoneyPlaces)
	out.Total = out.SubTotal.Add(out.Tax)
	return out
}

// Filename is the attachment name used when an invoice PDF is downloaded.
func Filename(id uuid.UUID) string {
	return "invoice-" + id.String()[:8] + ".pdf"
}

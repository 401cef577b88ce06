package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func init() {
	// Amounts go over the wire as JSON numbers, the way the web client reads them.
	decimal.MarshalJSONWithoutQuotes = true
}

type LineItem struct {
	Name     string          `json:"name" example:"Widget"`
	Quantity int             `json:"qty" example:"2"`
	Rate     decimal.Decimal `json:"rate" swaggertype:"number" example:"100"`
	Total    decimal.Decimal `json:"total" swaggertype:"number" example:"200"`
}

// InvoiceOwner is the denormalized view of the user printed on the invoice.
type InvoiceOwner struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type Invoice struct {
	ID        uuid.UUID       `json:"id"`
	UserID    uuid.UUID       `json:"user"`
	Items     []LineItem      `json:"items"`
	SubTotal  decimal.Decimal `json:"subTotal" swaggertype:"number" example:"200"`
	Tax       decimal.Decimal `json:"gst" swaggertype:"number" example:"36"`
	Total     decimal.Decimal `json:"total" swaggertype:"number" example:"236"`
	CreatedAt time.Time       `json:"createdAt"`
	Owner     *InvoiceOwner   `json:"owner,omitempty"`
}

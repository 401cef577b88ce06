package invoice

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"invoice-server/internal/models"

	"github.com/shopspring/decimal"
)

const DateLayout = "1/2/2006"

var funcs = template.FuncMap{
	"money": func(d decimal.Decimal) string {
		return CurrencySymbol + d.StringFixed(MoneyPlaces)
	},
	"amount": func(d decimal.Decimal) string {
		return CurrencySymbol + d.String()
	},
}

var invoiceTemplate = template.Must(template.New("invoice").Funcs(funcs).Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8"/>
<title>Invoice</title>
<style>
  body { font-family: system-ui, Arial, sans-serif; background:#f5f5f5; margin:0; padding:32px; }
  .card { background:#fff; border-radius:16px; padding:48px; max-width:900px; margin:0 auto; }
  .header { display:flex; justify-content:space-between; align-items:flex-start; margin-bottom:40px; }
  .brand { font-weight:600; font-size:18px; }
  .title { text-align:right; font-size:13px; font-weight:600; letter-spacing:.5px; }
  .banner { background:linear-gradient(90deg,#0a0a0a,#1f1f1f,#0a0a0a); color:#fff; padding:24px 32px; border-radius:16px; display:flex; justify-content:space-between; align-items:center; margin-bottom:40px; }
  .label { font-size:10px; letter-spacing:1px; color:#ccc; margin-bottom:6px; text-transform:uppercase; }
  .owner { font-size:20px; font-weight:600; }
  .meta { text-align:right; font-size:13px; }
  .email { background:#fff; color:#000; border-radius:8px; padding:6px 12px; font-size:11px; font-weight:600; margin-top:10px; }
  table { width:100%; border-collapse:separate; border-spacing:0 8px; font-size:14px; }
  thead tr { background:#365314; color:#fff; }
  thead th { padding:12px; text-align:left; font-weight:600; }
  tbody tr { background:#fafafa; }
  td { padding:8px 12px; }
  .c { text-align:center; }
  .name { font-style:italic; }
  .line-total { font-weight:600; }
  .summary { display:flex; justify-content:flex-end; margin:40px 0; }
  .box { border:1px solid #e5e5e5; border-radius:16px; padding:24px 28px; width:280px; font-size:14px; }
  .row { display:flex; justify-content:space-between; margin-bottom:8px; color:#555; }
  .grand { border-top:1px solid #ddd; padding-top:12px; font-size:18px; font-weight:700; display:flex; justify-content:space-between; }
  .grand .v { color:#2563eb; }
  .date { color:#666; font-size:11px; margin-bottom:20px; padding-top:16px; border-top:1px solid #e5e5e5; }
  .footer { background:#0a0a0a; color:#fff; font-size:11px; padding:16px 20px; border-radius:12px; text-align:center; line-height:1.5; }
</style>
</head>
<body>
<div class="card">
  <div class="header">
    <div class="brand">Invoice Server</div>
    <div class="title">INVOICE GENERATOR</div>
  </div>
  <div class="banner">
    <div>
      <div class="label">Name</div>
      <div class="owner">{{.OwnerName}}</div>
    </div>
    <div class="meta">
      <div>Date : {{.Date}}</div>
      <div class="email">{{.OwnerEmail}}</div>
    </div>
  </div>
  <table>
    <thead><tr><th>Product</th><th class="c">Qty</th><th class="c">Rate</th><th class="c">Total Amount</th></tr></thead>
    <tbody>
{{- range .Items}}
      <tr><td class="name">( {{.Name}} )</td><td class="c">{{.Quantity}}</td><td class="c">{{amount .Rate}}</td><td class="c line-total">{{amount .Total}}</td></tr>
{{- end}}
    </tbody>
  </table>
  <div class="summary">
    <div class="box">
      <div class="row"><span>Total Charges</span><span>{{money .SubTotal}}</span></div>
      <div class="row"><span>GST {{.TaxPercent}}%</span><span>{{money .Tax}}</span></div>
      <div class="grand"><span>Total Amount</span><b class="v">{{money .Total}}</b></div>
    </div>
  </div>
  <div class="date">Date: {{.Date}}</div>
  <div class="footer">We are pleased to provide any further information you may require and look forward to assisting with your next order. Rest assured, it will receive our prompt and dedicated attention.</div>
</div>
</body>
</html>
`))

type view struct {
	OwnerName  string
	OwnerEmail string
	Date       string
	Items      []models.LineItem
	SubTotal   decimal.Decimal
	Tax        decimal.Decimal
	Total      decimal.Decimal
	TaxPercent string
}

// RenderHTML produces the printable invoice document. Output depends only on
// the invoice, and the page loads no external resources.
func RenderHTML(inv *models.Invoice) (string, error) {
	v := view{
		OwnerName:  "User",
		Date:       inv.CreatedAt.UTC().Format(DateLayout),
		Items:      inv.Items,
		SubTotal:   inv.SubTotal,
		Tax:        inv.Tax,
		Total:      inv.Total,
		TaxPercent: TaxRate.Shift(2).String(),
	}
	if inv.CreatedAt.IsZero() {
		v.Date = time.Now().UTC().Format(DateLayout)
	}
	if inv.Owner != nil {
		if inv.Owner.Name != "" {
			v.OwnerName = inv.Owner.Name
		}
		v.OwnerEmail = inv.Owner.Email
	}

	var buf bytes.Buffer
	if err := invoiceTemplate.Execute(&buf, v); err != nil {
		return "", fmt.Errorf("render invoice html: %w", err)
	}
	return buf.String(), nil
}

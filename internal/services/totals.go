package services

import (
	"math"

	"github.com/diewo77/go-quotes/internal/models"
	"golang.org/x/text/currency"
)

// Totals are the computed amounts of a document.
type Totals struct {
	Subtotal float64
	TaxTotal float64
	Total    float64
}

// Calculator computes document totals from line items.
type Calculator struct{}

// NewCalculator creates a calculator.
func NewCalculator() *Calculator {
	return &Calculator{}
}

// ComputeTotals calculates subtotal, tax and total for a document.
// The document-level discount is an absolute amount taken off the
// subtotal; tax is reduced in the same proportion.
func (c *Calculator) ComputeTotals(doc *models.Document) Totals {
	var subtotal, tax float64
	for _, item := range doc.Items {
		subtotal += item.Subtotal()
		tax += item.TaxAmount()
	}
	if doc.Discount > 0 && doc.Discount < subtotal {
		ratio := (subtotal - doc.Discount) / subtotal
		tax *= ratio
		subtotal -= doc.Discount
	}
	scale := currencyScale(doc.Currency)
	t := Totals{
		Subtotal: round(subtotal, scale),
		TaxTotal: round(tax, scale),
	}
	t.Total = round(t.Subtotal+t.TaxTotal, scale)
	return t
}

// Apply recomputes line totals and the document amounts in place.
// Nothing has been paid on a freshly computed document, so the balance
// equals the total.
func (c *Calculator) Apply(doc *models.Document) {
	scale := currencyScale(doc.Currency)
	for i := range doc.Items {
		doc.Items[i].LineTotal = round(doc.Items[i].Subtotal(), scale)
	}
	t := c.ComputeTotals(doc)
	doc.Subtotal = t.Subtotal
	doc.TaxTotal = t.TaxTotal
	doc.Total = t.Total
	doc.Balance = t.Total
}

// currencyScale returns the number of decimals used for a currency code,
// two when the code is unknown.
func currencyScale(code string) int {
	unit, err := currency.ParseISO(code)
	if err != nil {
		return 2
	}
	scale, _ := currency.Standard.Rounding(unit)
	return scale
}

func round(v float64, scale int) float64 {
	p := math.Pow10(scale)
	return math.Round(v*p) / p
}

package services

import (
	"testing"

	"github.com/diewo77/go-quotes/internal/models"
)

func TestComputeTotals(t *testing.T) {
	calc := NewCalculator()

	tests := []struct {
		name string
		doc  models.Document
		want Totals
	}{
		{
			name: "empty",
			doc:  models.Document{Currency: "EUR"},
			want: Totals{},
		},
		{
			name: "single item with VAT",
			doc: models.Document{Currency: "EUR", Items: []models.LineItem{
				{Quantity: 10, UnitPrice: 50, TaxRate: 0.20},
			}},
			want: Totals{Subtotal: 500, TaxTotal: 100, Total: 600},
		},
		{
			name: "mixed rates",
			doc: models.Document{Currency: "EUR", Items: []models.LineItem{
				{Quantity: 5, UnitPrice: 100, TaxRate: 0.20},
				{Quantity: 1, UnitPrice: 50, TaxRate: 0.10},
			}},
			want: Totals{Subtotal: 550, TaxTotal: 105, Total: 655},
		},
		{
			name: "document discount scales tax",
			doc: models.Document{Currency: "EUR", Discount: 100, Items: []models.LineItem{
				{Quantity: 4, UnitPrice: 100, TaxRate: 0.20},
			}},
			want: Totals{Subtotal: 300, TaxTotal: 60, Total: 360},
		},
		{
			name: "rounded to cents",
			doc: models.Document{Currency: "EUR", Items: []models.LineItem{
				{Quantity: 3, UnitPrice: 0.333, TaxRate: 0.055},
			}},
			want: Totals{Subtotal: 1, TaxTotal: 0.05, Total: 1.05},
		},
		{
			name: "zero-decimal currency",
			doc: models.Document{Currency: "JPY", Items: []models.LineItem{
				{Quantity: 1, UnitPrice: 1000.4, TaxRate: 0.10},
			}},
			want: Totals{Subtotal: 1000, TaxTotal: 100, Total: 1100},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := calc.ComputeTotals(&tt.doc)
			if got != tt.want {
				t.Errorf("ComputeTotals() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestApplySetsBalance(t *testing.T) {
	doc := &models.Document{Currency: "EUR", Items: []models.LineItem{
		{Quantity: 2, UnitPrice: 10, TaxRate: 0.2},
	}}
	NewCalculator().Apply(doc)
	if doc.Total != 24 || doc.Balance != 24 || doc.Items[0].LineTotal != 20 {
		t.Errorf("unexpected amounts: total=%v balance=%v line=%v", doc.Total, doc.Balance, doc.Items[0].LineTotal)
	}
}

package models

import "time"

// LineItem is one ordered line of a document.
type LineItem struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	DocumentID uint `gorm:"index;not null" json:"document_id"`
	Position   int  `gorm:"default:0" json:"position"`

	ProductKey  string  `gorm:"size:100" json:"product_key,omitempty"`
	Description string  `gorm:"size:500;not null" json:"description"`
	Quantity    float64 `gorm:"not null;default:1" json:"quantity"`
	UnitPrice   float64 `gorm:"not null" json:"unit_price"`
	Discount    float64 `json:"discount"` // absolute amount, capped at the line amount
	TaxName     string  `gorm:"size:50" json:"tax_name,omitempty"`
	TaxRate     float64 `json:"tax_rate"` // e.g. 0.20 for 20%
	LineTotal   float64 `json:"line_total"`
}

// Subtotal is the line amount excluding tax, after the line discount.
func (item *LineItem) Subtotal() float64 {
	amount := item.Quantity * item.UnitPrice
	if item.Discount > 0 && item.Discount < amount {
		amount -= item.Discount
	}
	return amount
}

// TaxAmount is the tax due on the line.
func (item *LineItem) TaxAmount() float64 {
	if item.TaxRate <= 0 {
		return 0
	}
	return item.Subtotal() * item.TaxRate
}

// Copy returns the item detached from any document: identity and
// timestamps are cleared, values are kept.
func (item LineItem) Copy() LineItem {
	item.ID = 0
	item.DocumentID = 0
	item.CreatedAt = time.Time{}
	item.UpdatedAt = time.Time{}
	return item
}

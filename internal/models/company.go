package models

import (
	"time"

	"gorm.io/gorm"
)

// Company is the tenant. Every document, client and user belongs to one.
type Company struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	// Company information
	Name    string `gorm:"size:255;not null" json:"name"`
	Email   string `gorm:"size:255" json:"email,omitempty"`
	Phone   string `gorm:"size:50" json:"phone,omitempty"`
	Website string `gorm:"size:255" json:"website,omitempty"`

	// Address
	Address    string `gorm:"size:500" json:"address,omitempty"`
	City       string `gorm:"size:100" json:"city,omitempty"`
	PostalCode string `gorm:"size:20" json:"postal_code,omitempty"`
	Country    string `gorm:"size:100" json:"country,omitempty"`

	// Tax & Legal information
	SIRET     string `gorm:"size:14" json:"siret,omitempty"`
	VATNumber string `gorm:"size:20" json:"vat_number,omitempty"`

	// Document settings
	Locale            string `gorm:"size:10;not null;default:'fr'" json:"locale"`
	Currency          string `gorm:"size:3;not null;default:'EUR'" json:"currency"`
	QuotePrefix       string `gorm:"size:10;not null;default:'QUO'" json:"quote_prefix"`
	InvoicePrefix     string `gorm:"size:10;not null;default:'INV'" json:"invoice_prefix"`
	QuoteValidityDays int    `gorm:"not null;default:30" json:"quote_validity_days"`
	InvoiceDueDays    int    `gorm:"not null;default:30" json:"invoice_due_days"`
}

// Prefix returns the number prefix configured for a document type.
func (c *Company) Prefix(t DocumentType) string {
	if t == TypeInvoice {
		if c.InvoicePrefix != "" {
			return c.InvoicePrefix
		}
		return "INV"
	}
	if c.QuotePrefix != "" {
		return c.QuotePrefix
	}
	return "QUO"
}

// TermDays returns how many days a new document of type t stays open
// (validity for quotes, payment terms for invoices).
func (c *Company) TermDays(t DocumentType) int {
	if t == TypeInvoice {
		return c.InvoiceDueDays
	}
	return c.QuoteValidityDays
}

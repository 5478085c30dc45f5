package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// Client is the customer a document is addressed to.
type Client struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	CompanyID uint `gorm:"index;not null" json:"company_id"`
	UserID    uint `gorm:"index;not null" json:"user_id"`

	Name       string `gorm:"size:255;not null" json:"name"`
	Email      string `gorm:"size:255" json:"email,omitempty"`
	Address    string `gorm:"size:500" json:"address,omitempty"`
	City       string `gorm:"size:100" json:"city,omitempty"`
	PostalCode string `gorm:"size:20" json:"postal_code,omitempty"`
	Country    string `gorm:"size:100" json:"country,omitempty"`
	VATNumber  string `gorm:"size:20" json:"vat_number,omitempty"`

	Contacts []Contact `gorm:"foreignKey:ClientID" json:"contacts,omitempty"`
}

// GetCompanyID implements the TenantScoped interface.
func (c *Client) GetCompanyID() uint {
	return c.CompanyID
}

// FullAddress returns the formatted address for display on documents.
func (c *Client) FullAddress() string {
	var lines []string
	if c.Address != "" {
		lines = append(lines, c.Address)
	}
	cityLine := strings.TrimSpace(c.PostalCode + " " + c.City)
	if cityLine != "" {
		lines = append(lines, cityLine)
	}
	if c.Country != "" {
		lines = append(lines, c.Country)
	}
	return strings.Join(lines, "\n")
}

// Contact is a person at a client who receives documents.
type Contact struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	ClientID  uint   `gorm:"index;not null" json:"client_id"`
	FirstName string `gorm:"size:100" json:"first_name"`
	LastName  string `gorm:"size:100" json:"last_name"`
	Email     string `gorm:"size:255;not null" json:"email"`
	IsPrimary bool   `gorm:"default:false" json:"is_primary"`
}

// FullName joins first and last name, falling back to the email.
func (c *Contact) FullName() string {
	name := strings.TrimSpace(c.FirstName + " " + c.LastName)
	if name == "" {
		return c.Email
	}
	return name
}

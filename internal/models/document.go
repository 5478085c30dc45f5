package models

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// DocumentType distinguishes quotes from invoices. Both share one table.
type DocumentType string

const (
	TypeQuote   DocumentType = "quote"
	TypeInvoice DocumentType = "invoice"
)

// Valid reports whether t is a known document type.
func (t DocumentType) Valid() bool {
	return t == TypeQuote || t == TypeInvoice
}

// Counterpart returns the type a document converts into.
func (t DocumentType) Counterpart() DocumentType {
	if t == TypeQuote {
		return TypeInvoice
	}
	return TypeQuote
}

// Status is the lifecycle state of a document.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusSent      Status = "sent"
	StatusApproved  Status = "approved"
	StatusExpired   Status = "expired"
	StatusConverted Status = "converted"
	StatusDeleted   Status = "deleted"
)

// transitions is the forward-only partial order between statuses.
// Conversion branches off any live status that has not been converted yet.
// Deletion is handled separately: any live document may be deleted.
var transitions = map[Status][]Status{
	StatusDraft:    {StatusSent, StatusConverted},
	StatusSent:     {StatusApproved, StatusExpired, StatusConverted},
	StatusApproved: {StatusConverted},
	StatusExpired:  {StatusConverted},
}

// CanTransitionTo reports whether s may move to next.
func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

var (
	// ErrInvalidTransition is returned when a status change goes against the lifecycle order.
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrDocumentDeleted is returned for status changes on a soft-deleted document.
	ErrDocumentDeleted = errors.New("document is deleted")
)

// Document is a quote or an invoice.
// Implements the Ownable and TenantScoped interfaces used by the policies.
type Document struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	// Tenant and ownership
	CompanyID uint `gorm:"not null;index;uniqueIndex:idx_documents_number,priority:1" json:"company_id"`
	UserID    uint `gorm:"not null;index" json:"user_id"`

	ClientID uint    `gorm:"not null;index" json:"client_id"`
	Client   *Client `gorm:"foreignKey:ClientID" json:"client,omitempty"`

	Type   DocumentType `gorm:"size:20;not null;uniqueIndex:idx_documents_number,priority:2" json:"type"`
	Status Status       `gorm:"size:20;not null;default:'draft';index" json:"status"`
	Number string       `gorm:"size:50;not null;uniqueIndex:idx_documents_number,priority:3" json:"number"`

	PONumber     string `gorm:"size:100" json:"po_number,omitempty"`
	PublicNotes  string `gorm:"type:text" json:"public_notes,omitempty"`
	PrivateNotes string `gorm:"type:text" json:"private_notes,omitempty"`
	Terms        string `gorm:"type:text" json:"terms,omitempty"`
	Footer       string `gorm:"type:text" json:"footer,omitempty"`

	Currency string  `gorm:"size:3;not null;default:'EUR'" json:"currency"`
	Discount float64 `json:"discount"`
	Subtotal float64 `json:"subtotal"`
	TaxTotal float64 `json:"tax_total"`
	Total    float64 `json:"total"`
	Balance  float64 `json:"balance"`

	IssueDate  time.Time  `json:"issue_date"`
	DueDate    *time.Time `json:"due_date,omitempty"`
	SentAt     *time.Time `json:"sent_at,omitempty"`
	ApprovedAt *time.Time `json:"approved_at,omitempty"`
	ArchivedAt *time.Time `gorm:"index" json:"archived_at,omitempty"`

	// Conversion links between a quote and the invoice built from it.
	ConvertedFromID *uint `gorm:"index" json:"converted_from_id,omitempty"`
	ConvertedToID   *uint `gorm:"index" json:"converted_to_id,omitempty"`

	Items       []LineItem   `gorm:"foreignKey:DocumentID" json:"items,omitempty"`
	Invitations []Invitation `gorm:"foreignKey:DocumentID" json:"invitations,omitempty"`
}

// GetUserID implements the Ownable interface.
func (d *Document) GetUserID() uint {
	return d.UserID
}

// GetCompanyID implements the TenantScoped interface.
func (d *Document) GetCompanyID() uint {
	return d.CompanyID
}

// ResourceType is the authorization resource name ("quote" or "invoice").
func (d *Document) ResourceType() string {
	return string(d.Type)
}

// IsDeleted reports whether the document has been soft-deleted.
func (d *Document) IsDeleted() bool {
	return d.DeletedAt.Valid || d.Status == StatusDeleted
}

// IsArchived reports whether the document carries the archived flag.
func (d *Document) IsArchived() bool {
	return d.ArchivedAt != nil
}

// IsConvertible is true unless the document was already converted or is deleted.
func (d *Document) IsConvertible() bool {
	return d.Status != StatusConverted && !d.IsDeleted()
}

// IsApprovable is true only for sent, live documents.
func (d *Document) IsApprovable() bool {
	return d.Status == StatusSent && !d.IsDeleted()
}

// Transition moves the document to next, stamping the matching timestamp.
// Moving to the current status is a no-op.
func (d *Document) Transition(next Status, now time.Time) error {
	if d.IsDeleted() {
		return ErrDocumentDeleted
	}
	if d.Status == next {
		return nil
	}
	if !d.Status.CanTransitionTo(next) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, d.Status, next)
	}
	d.Status = next
	switch next {
	case StatusSent:
		d.SentAt = &now
	case StatusApproved:
		d.ApprovedAt = &now
	}
	return nil
}

// Archive sets the archived flag. Archiving twice keeps the first timestamp.
func (d *Document) Archive(now time.Time) {
	if d.ArchivedAt == nil {
		d.ArchivedAt = &now
	}
}

// SoftDelete marks the document deleted. It is idempotent.
func (d *Document) SoftDelete(now time.Time) {
	if d.IsDeleted() && d.DeletedAt.Valid {
		return
	}
	d.Status = StatusDeleted
	d.DeletedAt = gorm.DeletedAt{Time: now, Valid: true}
}

// PrimaryInvitation returns the first invitation, if any.
func (d *Document) PrimaryInvitation() *Invitation {
	if len(d.Invitations) == 0 {
		return nil
	}
	return &d.Invitations[0]
}

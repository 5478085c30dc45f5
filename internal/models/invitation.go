package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Invitation links a document to one recipient contact through an opaque key.
// The key is what public (unauthenticated) links carry.
type Invitation struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Key        string    `gorm:"size:64;not null;uniqueIndex" json:"key"`
	DocumentID uint      `gorm:"index;not null" json:"document_id"`
	Document   *Document `gorm:"foreignKey:DocumentID" json:"-"`
	ContactID  uint      `gorm:"index;not null" json:"contact_id"`
	Contact    *Contact  `gorm:"foreignKey:ContactID" json:"contact,omitempty"`

	SentAt   *time.Time `json:"sent_at,omitempty"`
	ViewedAt *time.Time `json:"viewed_at,omitempty"`
}

// NewInvitationKey returns a fresh random key.
func NewInvitationKey() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

package models

import (
	"fmt"
	"time"
)

// DocumentSequence is a tenant's number counter for one document type and year.
type DocumentSequence struct {
	ID        uint         `gorm:"primaryKey"`
	CompanyID uint         `gorm:"not null;uniqueIndex:idx_sequences_scope,priority:1"`
	Type      DocumentType `gorm:"size:20;not null;uniqueIndex:idx_sequences_scope,priority:2"`
	Year      int          `gorm:"not null;uniqueIndex:idx_sequences_scope,priority:3"`
	LastValue int64        `gorm:"not null;default:0"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// FormatNumber renders a document number.
// Format: PREFIX-YYYY-NNNN (e.g. QUO-2026-0001)
func FormatNumber(prefix string, year int, value int64) string {
	return fmt.Sprintf("%s-%d-%04d", prefix, year, value)
}

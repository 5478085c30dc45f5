package store

import (
	"context"
	"fmt"

	"github.com/diewo77/go-quotes/internal/models"
	"gorm.io/gorm"
)

// NextNumber allocates the next document number for a company, type and year.
func (s *Store) NextNumber(ctx context.Context, companyID uint, t models.DocumentType, prefix string, year int) (string, error) {
	var number string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		n, err := nextNumber(tx, companyID, t, prefix, year)
		number = n
		return err
	})
	return number, err
}

// nextNumber increments the sequence row in place so concurrent writers
// never read the same value.
func nextNumber(tx *gorm.DB, companyID uint, t models.DocumentType, prefix string, year int) (string, error) {
	seq := models.DocumentSequence{CompanyID: companyID, Type: t, Year: year}
	err := tx.Where(models.DocumentSequence{CompanyID: companyID, Type: t, Year: year}).
		FirstOrCreate(&seq).Error
	if err != nil {
		return "", fmt.Errorf("load sequence: %w", err)
	}
	err = tx.Model(&models.DocumentSequence{}).
		Where("id = ?", seq.ID).
		Update("last_value", gorm.Expr("last_value + ?", 1)).Error
	if err != nil {
		return "", fmt.Errorf("increment sequence: %w", err)
	}
	if err := tx.First(&seq, seq.ID).Error; err != nil {
		return "", fmt.Errorf("reload sequence: %w", err)
	}
	return models.FormatNumber(prefix, year, seq.LastValue), nil
}

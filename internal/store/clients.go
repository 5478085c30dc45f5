package store

import (
	"context"
	"fmt"

	"github.com/diewo77/go-quotes/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ListClients returns the company's clients ordered by name.
func (s *Store) ListClients(ctx context.Context, companyID uint) ([]models.Client, error) {
	var clients []models.Client
	err := s.db.WithContext(ctx).
		Preload("Contacts").
		Where("company_id = ?", companyID).
		Order("name").
		Find(&clients).Error
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	return clients, nil
}

// SaveClient creates or updates a client. Contacts keep their ids so
// existing invitations stay valid; contacts missing from the list are removed.
func (s *Store) SaveClient(ctx context.Context, client *models.Client) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(client).Error; err != nil {
			return fmt.Errorf("save client: %w", err)
		}
		keep := make([]uint, 0, len(client.Contacts))
		for i := range client.Contacts {
			c := &client.Contacts[i]
			c.ClientID = client.ID
			if c.ID != 0 {
				res := tx.Model(&models.Contact{}).
					Where("id = ? AND client_id = ?", c.ID, client.ID).
					Select("first_name", "last_name", "email", "is_primary").
					Updates(c)
				if res.Error != nil {
					return fmt.Errorf("update contact: %w", res.Error)
				}
				if res.RowsAffected == 1 {
					keep = append(keep, c.ID)
					continue
				}
				c.ID = 0
			}
			if err := tx.Create(c).Error; err != nil {
				return fmt.Errorf("create contact: %w", err)
			}
			keep = append(keep, c.ID)
		}
		q := tx.Where("client_id = ?", client.ID)
		if len(keep) > 0 {
			q = q.Where("id NOT IN ?", keep)
		}
		if err := q.Delete(&models.Contact{}).Error; err != nil {
			return fmt.Errorf("remove contacts: %w", err)
		}
		return nil
	})
}

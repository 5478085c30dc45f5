package store

import (
	"context"
	"fmt"

	"github.com/diewo77/go-quotes/internal/models"
)

// Company loads a tenant.
func (s *Store) Company(ctx context.Context, id uint) (*models.Company, error) {
	var company models.Company
	if err := s.db.WithContext(ctx).First(&company, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &company, nil
}

// User loads a user with its company.
func (s *Store) User(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Preload("Company").First(&user, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

// Client loads a client of the company together with its contacts.
func (s *Store) Client(ctx context.Context, companyID, id uint) (*models.Client, error) {
	var client models.Client
	err := s.db.WithContext(ctx).
		Preload("Contacts").
		Where("company_id = ?", companyID).
		First(&client, id).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &client, nil
}

// ResolveInvitation finds an invitation by its public key and loads the
// contact and the live document it points to.
func (s *Store) ResolveInvitation(ctx context.Context, key string) (*models.Invitation, error) {
	if key == "" {
		return nil, ErrNotFound
	}
	var inv models.Invitation
	err := s.db.WithContext(ctx).
		Preload("Contact").
		Preload("Document").
		Preload("Document.Items").
		Preload("Document.Client").
		Where(&models.Invitation{Key: key}).
		First(&inv).Error
	if err != nil {
		return nil, notFound(err)
	}
	if inv.Document == nil || inv.Contact == nil {
		return nil, ErrNotFound
	}
	return &inv, nil
}

// MarkViewed stamps the first time a public link was opened.
func (s *Store) MarkViewed(ctx context.Context, inv *models.Invitation) error {
	if inv.ViewedAt != nil {
		return nil
	}
	now := s.now()
	err := s.db.WithContext(ctx).Model(&models.Invitation{}).
		Where("id = ?", inv.ID).
		Update("viewed_at", now).Error
	if err != nil {
		return fmt.Errorf("mark invitation viewed: %w", err)
	}
	inv.ViewedAt = &now
	return nil
}

package store

import (
	"context"
	"fmt"

	"github.com/diewo77/go-quotes/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ListFilter narrows a document listing.
type ListFilter struct {
	Type            models.DocumentType
	Status          models.Status
	IncludeArchived bool
	Page            int
	Limit           int
}

func (f ListFilter) offset() int {
	if f.Page < 1 {
		return 0
	}
	return (f.Page - 1) * f.limit()
}

func (f ListFilter) limit() int {
	if f.Limit < 1 || f.Limit > 100 {
		return 20
	}
	return f.Limit
}

func withDetails(q *gorm.DB) *gorm.DB {
	return q.
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC, id ASC") }).
		Preload("Invitations", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("Invitations.Contact").
		Preload("Client")
}

// Create inserts a new document with its items and invitations. The
// document number is allocated from the company sequence in the same
// transaction.
func (s *Store) Create(ctx context.Context, doc *models.Document) error {
	if doc.Status == "" {
		doc.Status = models.StatusDraft
	}
	if doc.IssueDate.IsZero() {
		doc.IssueDate = s.now()
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if doc.Number == "" {
			var company models.Company
			if err := tx.First(&company, doc.CompanyID).Error; err != nil {
				return fmt.Errorf("load company %d: %w", doc.CompanyID, notFound(err))
			}
			number, err := nextNumber(tx, doc.CompanyID, doc.Type, company.Prefix(doc.Type), doc.IssueDate.Year())
			if err != nil {
				return err
			}
			doc.Number = number
		}
		if err := tx.Omit(clause.Associations).Create(doc).Error; err != nil {
			return fmt.Errorf("create document: %w", err)
		}
		return writeChildren(tx, doc)
	})
}

func writeChildren(tx *gorm.DB, doc *models.Document) error {
	for i := range doc.Items {
		doc.Items[i].DocumentID = doc.ID
		if doc.Items[i].Position == 0 {
			doc.Items[i].Position = i + 1
		}
	}
	if len(doc.Items) > 0 {
		if err := tx.Omit(clause.Associations).Create(&doc.Items).Error; err != nil {
			return fmt.Errorf("create items: %w", err)
		}
	}
	for i := range doc.Invitations {
		doc.Invitations[i].DocumentID = doc.ID
		if doc.Invitations[i].Key == "" {
			doc.Invitations[i].Key = models.NewInvitationKey()
		}
	}
	if len(doc.Invitations) > 0 {
		if err := tx.Omit(clause.Associations).Create(&doc.Invitations).Error; err != nil {
			return fmt.Errorf("create invitations: %w", err)
		}
	}
	return nil
}

// Update saves the document fields and replaces its line items.
func (s *Store) Update(ctx context.Context, doc *models.Document) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(doc).Error; err != nil {
			return fmt.Errorf("save document: %w", err)
		}
		if err := tx.Where("document_id = ?", doc.ID).Delete(&models.LineItem{}).Error; err != nil {
			return fmt.Errorf("clear items: %w", err)
		}
		for i := range doc.Items {
			doc.Items[i].ID = 0
			doc.Items[i].DocumentID = doc.ID
			doc.Items[i].Position = i + 1
		}
		if len(doc.Items) == 0 {
			return nil
		}
		return tx.Omit(clause.Associations).Create(&doc.Items).Error
	})
}

// Save persists the document's own columns. Associations are left alone.
// Last write wins.
func (s *Store) Save(ctx context.Context, doc *models.Document) error {
	if err := s.db.WithContext(ctx).Unscoped().Omit(clause.Associations).Save(doc).Error; err != nil {
		return fmt.Errorf("save document %d: %w", doc.ID, err)
	}
	return nil
}

// Delete soft-deletes the document. Deleting twice is a no-op.
func (s *Store) Delete(ctx context.Context, doc *models.Document) error {
	if doc.IsDeleted() && doc.DeletedAt.Valid {
		return nil
	}
	doc.SoftDelete(s.now())
	return s.Save(ctx, doc)
}

// Find loads one live document of the company.
func (s *Store) Find(ctx context.Context, companyID, id uint) (*models.Document, error) {
	var doc models.Document
	err := withDetails(s.db.WithContext(ctx)).
		Where("company_id = ?", companyID).
		First(&doc, id).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &doc, nil
}

// FindByIDs loads the company's documents with the given ids, in the order
// the ids were given. Unknown ids are dropped silently.
func (s *Store) FindByIDs(ctx context.Context, companyID uint, ids []uint, includeDeleted bool) ([]*models.Document, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	q := s.db.WithContext(ctx)
	if includeDeleted {
		q = q.Unscoped()
	}
	var docs []*models.Document
	err := withDetails(q).
		Where("company_id = ? AND id IN ?", companyID, ids).
		Find(&docs).Error
	if err != nil {
		return nil, fmt.Errorf("find documents: %w", err)
	}

	byID := make(map[uint]*models.Document, len(docs))
	for _, d := range docs {
		byID[d.ID] = d
	}
	ordered := make([]*models.Document, 0, len(docs))
	seen := make(map[uint]bool, len(ids))
	for _, id := range ids {
		if d, ok := byID[id]; ok && !seen[id] {
			ordered = append(ordered, d)
			seen[id] = true
		}
	}
	return ordered, nil
}

// List returns one page of the company's documents and the total count.
func (s *Store) List(ctx context.Context, companyID uint, f ListFilter) ([]models.Document, int64, error) {
	q := s.db.WithContext(ctx).Model(&models.Document{}).Where("company_id = ?", companyID)
	if f.Type != "" {
		q = q.Where("type = ?", f.Type)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if !f.IncludeArchived {
		q = q.Where("archived_at IS NULL")
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count documents: %w", err)
	}
	var docs []models.Document
	err := q.Preload("Client").
		Order("issue_date DESC, id DESC").
		Offset(f.offset()).
		Limit(f.limit()).
		Find(&docs).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list documents: %w", err)
	}
	return docs, total, nil
}

// Package services holds document construction and amount rules.
package services

import (
	"context"
	"fmt"
	"time"

	"github.com/diewo77/go-quotes/internal/actions"
	"github.com/diewo77/go-quotes/internal/models"
)

// DocumentWriter is the persistence the factory needs.
type DocumentWriter interface {
	Create(ctx context.Context, doc *models.Document) error
	Save(ctx context.Context, doc *models.Document) error
	Company(ctx context.Context, id uint) (*models.Company, error)
}

// Factory builds quotes and invoices from existing documents.
// The source document is never modified by CloneSameType or ConvertToOtherType.
type Factory struct {
	docs DocumentWriter
	calc *Calculator
	now  func() time.Time
}

// NewFactory creates a factory writing through docs.
func NewFactory(docs DocumentWriter, calc *Calculator) *Factory {
	return &Factory{docs: docs, calc: calc, now: time.Now}
}

// CloneSameType copies source into a new draft of the same type, keeping
// its amounts.
func (f *Factory) CloneSameType(ctx context.Context, source *models.Document, actingUserID uint) (*models.Document, error) {
	doc, err := f.build(ctx, source, source.Type, actingUserID)
	if err != nil {
		return nil, err
	}
	doc.Discount = source.Discount
	doc.Subtotal = source.Subtotal
	doc.TaxTotal = source.TaxTotal
	doc.Total = source.Total
	doc.Balance = source.Total

	if err := f.docs.Create(ctx, doc); err != nil {
		return nil, fmt.Errorf("create clone of %s: %w", source.Number, err)
	}
	return doc, nil
}

// ConvertToOtherType builds the counterpart document (quote to invoice,
// invoice to quote). Amounts are recomputed from the copied items.
// It fails with actions.ErrConversion when source is not convertible.
func (f *Factory) ConvertToOtherType(ctx context.Context, source *models.Document, actingUserID uint) (*models.Document, error) {
	if !source.IsConvertible() {
		return nil, fmt.Errorf("%w: %s is %s", actions.ErrConversion, source.Number, source.Status)
	}
	doc, err := f.build(ctx, source, source.Type.Counterpart(), actingUserID)
	if err != nil {
		return nil, err
	}
	doc.Discount = source.Discount
	doc.ConvertedFromID = &source.ID
	f.calc.Apply(doc)

	if err := f.docs.Create(ctx, doc); err != nil {
		return nil, fmt.Errorf("convert %s: %w", source.Number, err)
	}
	return doc, nil
}

// MarkConverted records on source that target was built from it.
func (f *Factory) MarkConverted(ctx context.Context, source, target *models.Document) error {
	if err := source.Transition(models.StatusConverted, f.now()); err != nil {
		return fmt.Errorf("%w: %w", actions.ErrConversion, err)
	}
	source.ConvertedToID = &target.ID
	return f.docs.Save(ctx, source)
}

func (f *Factory) build(ctx context.Context, source *models.Document, t models.DocumentType, actingUserID uint) (*models.Document, error) {
	company, err := f.docs.Company(ctx, source.CompanyID)
	if err != nil {
		return nil, fmt.Errorf("load company %d: %w", source.CompanyID, err)
	}

	now := f.now()
	doc := &models.Document{
		CompanyID:    source.CompanyID,
		UserID:       actingUserID,
		ClientID:     source.ClientID,
		Type:         t,
		Status:       models.StatusDraft,
		PONumber:     source.PONumber,
		PublicNotes:  source.PublicNotes,
		PrivateNotes: source.PrivateNotes,
		Terms:        source.Terms,
		Footer:       source.Footer,
		Currency:     source.Currency,
		IssueDate:    now,
	}
	if doc.Currency == "" {
		doc.Currency = company.Currency
	}
	if days := company.TermDays(t); days > 0 {
		due := now.AddDate(0, 0, days)
		doc.DueDate = &due
	}

	doc.Items = make([]models.LineItem, len(source.Items))
	for i, item := range source.Items {
		doc.Items[i] = item.Copy()
	}
	for _, inv := range source.Invitations {
		doc.Invitations = append(doc.Invitations, models.Invitation{ContactID: inv.ContactID})
	}
	return doc, nil
}

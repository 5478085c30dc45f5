package actions

import (
	"context"

	"github.com/diewo77/go-quotes/internal/models"
)

// Authorizer decides whether actor may exercise capability on doc.
type Authorizer interface {
	Can(ctx context.Context, actor models.Actor, capability Capability, doc *models.Document) bool
}

// Repository persists documents. FindByIDs is scoped to one company.
type Repository interface {
	Save(ctx context.Context, doc *models.Document) error
	Delete(ctx context.Context, doc *models.Document) error
	FindByIDs(ctx context.Context, companyID uint, ids []uint, includeDeleted bool) ([]*models.Document, error)
	Company(ctx context.Context, id uint) (*models.Company, error)
}

// Factory builds new documents from existing ones.
type Factory interface {
	CloneSameType(ctx context.Context, source *models.Document, actingUserID uint) (*models.Document, error)
	ConvertToOtherType(ctx context.Context, source *models.Document, actingUserID uint) (*models.Document, error)
	MarkConverted(ctx context.Context, source, target *models.Document) error
}

// Renderer produces a PDF for a document as seen by a contact and
// returns its file path.
type Renderer interface {
	RenderPDF(ctx context.Context, doc *models.Document, contact *models.Contact) (string, error)
}

// Queue hands long-running work to the background. Enqueue returns
// before the work is done.
type Queue interface {
	EnqueueZipAndEmail(ctx context.Context, docs []*models.Document, company *models.Company, address string) error
	EnqueueEmail(ctx context.Context, doc *models.Document) error
}

// InvitationResolver looks up a public invitation key.
type InvitationResolver interface {
	ResolveInvitation(ctx context.Context, key string) (*models.Invitation, error)
}

// Metrics counts successful actions.
type Metrics interface {
	Increment(ctx context.Context, name string, companyID uint)
}

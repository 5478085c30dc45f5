package actions

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/diewo77/go-quotes/internal/models"
)

// Deps are the collaborators of the engine. Metrics may be nil.
type Deps struct {
	Auth     Authorizer
	Repo     Repository
	Factory  Factory
	Renderer Renderer
	Queue    Queue
	Metrics  Metrics
}

// Dispatcher executes one action on one document.
type Dispatcher struct {
	deps Deps
	now  func() time.Time
}

// NewDispatcher creates a dispatcher.
func NewDispatcher(deps Deps) *Dispatcher {
	return &Dispatcher{deps: deps, now: time.Now}
}

// Perform parses token and runs it on doc for actor. Rule violations come
// back as a Rejected result; the error is reserved for infrastructure
// failures.
func (d *Dispatcher) Perform(ctx context.Context, actor models.Actor, doc *models.Document, token string) (Result, error) {
	if doc == nil {
		return Rejected(ErrNotFound, "Document not found", http.StatusNotFound), nil
	}
	kind, ok := Parse(token)
	if !ok || kind == KindConvert {
		return unknownAction(token), nil
	}
	return d.Dispatch(ctx, actor, doc, kind, ModeSingle)
}

// Dispatch runs an already parsed action.
func (d *Dispatcher) Dispatch(ctx context.Context, actor models.Actor, doc *models.Document, kind Kind, mode Mode) (Result, error) {
	if doc == nil {
		return Rejected(ErrNotFound, "Document not found", http.StatusNotFound), nil
	}
	if !d.deps.Auth.Can(ctx, actor, kind.Capability(), doc) {
		return insufficientPrivileges(), nil
	}

	res, err := d.run(ctx, actor, doc, kind, mode)
	if err != nil {
		return Result{}, fmt.Errorf("%s %s: %w", kind, doc.Number, err)
	}
	if !res.IsRejected() && d.deps.Metrics != nil {
		d.deps.Metrics.Increment(ctx, "document."+kind.String(), actor.CompanyID)
	}
	return res, nil
}

func (d *Dispatcher) run(ctx context.Context, actor models.Actor, doc *models.Document, kind Kind, mode Mode) (Result, error) {
	switch kind {
	case KindCloneToInvoice:
		if !doc.IsConvertible() {
			return Rejected(ErrConversion, "Unable to convert this document.", http.StatusBadRequest), nil
		}
		return d.cloneTo(ctx, actor, doc, models.TypeInvoice)

	case KindCloneToQuote:
		return d.cloneTo(ctx, actor, doc, models.TypeQuote)

	case KindApprove:
		if !doc.IsApprovable() {
			return Rejected(ErrPreconditionViolation,
				"Unable to approve this quote as it has expired.", http.StatusBadRequest), nil
		}
		if err := doc.Transition(models.StatusApproved, d.now()); err != nil {
			return Result{}, err
		}
		if err := d.deps.Repo.Save(ctx, doc); err != nil {
			return Result{}, err
		}
		return Item(doc), nil

	case KindMarkSent:
		if err := doc.Transition(models.StatusSent, d.now()); err != nil {
			return Rejected(ErrPreconditionViolation,
				fmt.Sprintf("Unable to mark %s as sent from status %s.", doc.Number, doc.Status),
				http.StatusBadRequest), nil
		}
		if err := d.deps.Repo.Save(ctx, doc); err != nil {
			return Result{}, err
		}
		if mode == ModeBulk {
			return None(), nil
		}
		return Item(doc), nil

	case KindArchive:
		if !doc.IsDeleted() {
			doc.Archive(d.now())
			if err := d.deps.Repo.Save(ctx, doc); err != nil {
				return Result{}, err
			}
		}
		return listResult(doc, mode), nil

	case KindDelete:
		if err := d.deps.Repo.Delete(ctx, doc); err != nil {
			return Result{}, err
		}
		return listResult(doc, mode), nil

	case KindDownload:
		return d.download(ctx, doc)

	case KindEmail:
		if doc.IsDeleted() {
			return Rejected(ErrPreconditionViolation,
				"Unable to email a deleted document.", http.StatusBadRequest), nil
		}
		if err := d.deps.Queue.EnqueueEmail(ctx, doc); err != nil {
			return Result{}, err
		}
		return Notification("email sent", http.StatusOK), nil

	case KindHistory:
		return Rejected(ErrNotImplemented, "not implemented", http.StatusNotImplemented), nil

	default:
		return unknownAction(kind.String()), nil
	}
}

// cloneTo copies doc into a document of type target, converting when the
// types differ.
func (d *Dispatcher) cloneTo(ctx context.Context, actor models.Actor, doc *models.Document, target models.DocumentType) (Result, error) {
	var (
		created *models.Document
		err     error
	)
	if doc.Type == target {
		created, err = d.deps.Factory.CloneSameType(ctx, doc, actor.UserID)
	} else {
		created, err = d.deps.Factory.ConvertToOtherType(ctx, doc, actor.UserID)
	}
	if errors.Is(err, ErrConversion) {
		return Rejected(ErrConversion, "Unable to convert this document.", http.StatusBadRequest), nil
	}
	if err != nil {
		return Result{}, err
	}
	return Item(created), nil
}

func (d *Dispatcher) download(ctx context.Context, doc *models.Document) (Result, error) {
	var contact *models.Contact
	if inv := doc.PrimaryInvitation(); inv != nil {
		contact = inv.Contact
	}
	return renderToStream(ctx, d.deps.Renderer, doc, contact)
}

func renderToStream(ctx context.Context, r Renderer, doc *models.Document, contact *models.Contact) (Result, error) {
	path, err := r.RenderPDF(ctx, doc, contact)
	if err != nil {
		return Result{}, fmt.Errorf("render pdf: %w", err)
	}
	body, err := os.ReadFile(path)
	if err != nil {
		return Result{}, fmt.Errorf("read pdf: %w", err)
	}
	return BinaryStream(body, filepath.Base(path)), nil
}

func listResult(doc *models.Document, mode Mode) Result {
	if mode == ModeBulk {
		return None()
	}
	return Collection([]*models.Document{doc})
}

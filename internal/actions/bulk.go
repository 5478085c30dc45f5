package actions

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/diewo77/go-quotes/internal/models"
)

// Coordinator applies one action to a batch of documents of the actor's
// company. Items the actor may not touch are skipped; they never abort
// the batch.
type Coordinator struct {
	dispatcher *Dispatcher
	deps       Deps
}

// NewCoordinator creates a coordinator running per-item work through dispatcher.
func NewCoordinator(dispatcher *Dispatcher) *Coordinator {
	return &Coordinator{dispatcher: dispatcher, deps: dispatcher.deps}
}

// Run resolves ids, soft-deleted included, and applies token to them.
func (c *Coordinator) Run(ctx context.Context, actor models.Actor, ids []uint, token string) (Result, error) {
	kind, ok := Parse(token)
	if !ok {
		return unknownAction(token), nil
	}

	docs, err := c.deps.Repo.FindByIDs(ctx, actor.CompanyID, ids, true)
	if err != nil {
		return Result{}, err
	}
	if len(docs) == 0 {
		return Notification("No documents found", http.StatusOK), nil
	}

	switch kind {
	case KindDownload:
		return c.download(ctx, actor, docs)
	case KindConvert:
		return c.convert(ctx, actor, ids, docs)
	default:
		return c.each(ctx, actor, ids, docs, kind)
	}
}

// download packages every visible convertible document into one archive
// that is mailed to the actor in the background.
func (c *Coordinator) download(ctx context.Context, actor models.Actor, docs []*models.Document) (Result, error) {
	var packaged []*models.Document
	var skipped []Skip
	visible := 0
	for _, doc := range docs {
		if !c.deps.Auth.Can(ctx, actor, CapabilityView, doc) {
			skipped = append(skipped, skip(doc, "insufficient privileges"))
			continue
		}
		visible++
		if !doc.IsConvertible() {
			skipped = append(skipped, skip(doc, "not convertible"))
			continue
		}
		packaged = append(packaged, doc)
	}
	if visible == 0 {
		res := insufficientPrivileges()
		res.Skipped = skipped
		return res, nil
	}
	if len(packaged) == 0 {
		res := Notification("No documents found", http.StatusOK)
		res.Skipped = skipped
		return res, nil
	}

	company, err := c.deps.Repo.Company(ctx, actor.CompanyID)
	if err != nil {
		return Result{}, fmt.Errorf("load company: %w", err)
	}
	if err := c.deps.Queue.EnqueueZipAndEmail(ctx, packaged, company, actor.Email); err != nil {
		return Result{}, err
	}
	c.count(ctx, actor, KindDownload)

	res := Notification("Email sent", http.StatusOK)
	res.Skipped = skipped
	return res, nil
}

// convert builds the counterpart of every convertible document the actor
// may edit and marks the source converted. The result lists the original
// documents, not the new ones.
func (c *Coordinator) convert(ctx context.Context, actor models.Actor, ids []uint, docs []*models.Document) (Result, error) {
	var skipped []Skip
	for _, doc := range docs {
		if !c.deps.Auth.Can(ctx, actor, CapabilityEdit, doc) {
			skipped = append(skipped, skip(doc, "insufficient privileges"))
			continue
		}
		if !doc.IsConvertible() {
			skipped = append(skipped, skip(doc, "not convertible"))
			continue
		}
		target, err := c.deps.Factory.ConvertToOtherType(ctx, doc, actor.UserID)
		if errors.Is(err, ErrConversion) {
			skipped = append(skipped, skip(doc, "not convertible"))
			continue
		}
		if err != nil {
			return Result{}, err
		}
		if err := c.deps.Factory.MarkConverted(ctx, doc, target); err != nil {
			return Result{}, err
		}
		c.count(ctx, actor, KindConvert)
	}
	return c.refreshed(ctx, actor, ids, skipped)
}

// each runs the dispatcher in bulk mode on every document the actor may edit.
func (c *Coordinator) each(ctx context.Context, actor models.Actor, ids []uint, docs []*models.Document, kind Kind) (Result, error) {
	var skipped []Skip
	for _, doc := range docs {
		if !c.deps.Auth.Can(ctx, actor, CapabilityEdit, doc) {
			skipped = append(skipped, skip(doc, "insufficient privileges"))
			continue
		}
		res, err := c.dispatcher.Dispatch(ctx, actor, doc, kind, ModeBulk)
		if err != nil {
			return Result{}, err
		}
		if res.IsRejected() {
			skipped = append(skipped, skip(doc, res.Message))
		}
	}
	return c.refreshed(ctx, actor, ids, skipped)
}

func (c *Coordinator) refreshed(ctx context.Context, actor models.Actor, ids []uint, skipped []Skip) (Result, error) {
	docs, err := c.deps.Repo.FindByIDs(ctx, actor.CompanyID, ids, true)
	if err != nil {
		return Result{}, err
	}
	res := Collection(docs)
	res.Skipped = skipped
	return res, nil
}

func (c *Coordinator) count(ctx context.Context, actor models.Actor, kind Kind) {
	if c.deps.Metrics != nil {
		c.deps.Metrics.Increment(ctx, "document."+kind.String(), actor.CompanyID)
	}
}

func skip(doc *models.Document, reason string) Skip {
	return Skip{ID: doc.ID, Number: doc.Number, Reason: reason}
}

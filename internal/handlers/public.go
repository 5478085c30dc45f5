package handlers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/diewo77/go-quotes/httpx"
	"github.com/diewo77/go-quotes/internal/actions"
	"github.com/diewo77/go-quotes/internal/models"
	"github.com/diewo77/go-quotes/internal/store"
)

// Invitations is the lookup behind the public download links.
type Invitations interface {
	ResolveInvitation(ctx context.Context, key string) (*models.Invitation, error)
	MarkViewed(ctx context.Context, inv *models.Invitation) error
}

// PublicHandler serves PDFs to invited contacts without a session.
type PublicHandler struct {
	invitations Invitations
	renderer    actions.Renderer
}

// NewPublicHandler creates the public download handler.
func NewPublicHandler(invitations Invitations, renderer actions.Renderer) *PublicHandler {
	return &PublicHandler{invitations: invitations, renderer: renderer}
}

// typedInvitations restricts a lookup to one document type and records
// the first view.
type typedInvitations struct {
	inner   Invitations
	docType models.DocumentType
}

func (t typedInvitations) ResolveInvitation(ctx context.Context, key string) (*models.Invitation, error) {
	inv, err := t.inner.ResolveInvitation(ctx, key)
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("invitation %q: %w", key, actions.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	if inv.Document.Type != t.docType {
		return nil, fmt.Errorf("invitation %q: %w", key, actions.ErrNotFound)
	}
	if err := t.inner.MarkViewed(ctx, inv); err != nil {
		log.Printf("public download: %v", err)
	}
	return inv, nil
}

// Download streams the PDF for GET /client/{type}/{key}/download.
func (h *PublicHandler) Download(w http.ResponseWriter, r *http.Request) {
	t := models.DocumentType(r.PathValue("type"))
	if !t.Valid() {
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
		return
	}
	downloader := actions.NewPublicDownloader(typedInvitations{inner: h.invitations, docType: t}, h.renderer)
	res, err := downloader.Download(r.Context(), r.PathValue("key"))
	if err != nil {
		writeInternal(w, r, err)
		return
	}
	writeResult(w, res)
}

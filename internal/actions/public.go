package actions

import (
	"context"
	"errors"
	"net/http"
)

// PublicDownloader serves a document PDF to the holder of an invitation key.
// No actor is involved; the key is the credential.
type PublicDownloader struct {
	invitations InvitationResolver
	renderer    Renderer
}

// NewPublicDownloader creates a downloader.
func NewPublicDownloader(invitations InvitationResolver, renderer Renderer) *PublicDownloader {
	return &PublicDownloader{invitations: invitations, renderer: renderer}
}

// Download renders the invitation's document for its contact. The
// resolver signals an unknown key with an error wrapping ErrNotFound.
func (p *PublicDownloader) Download(ctx context.Context, key string) (Result, error) {
	inv, err := p.invitations.ResolveInvitation(ctx, key)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Rejected(ErrNotFound, "Invitation not found", http.StatusNotFound), nil
		}
		return Result{}, err
	}
	return renderToStream(ctx, p.renderer, inv.Document, inv.Contact)
}

package jobs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/diewo77/go-quotes/i18n"
	"github.com/diewo77/go-quotes/internal/mail"
	"github.com/diewo77/go-quotes/internal/models"
)

func (q *Queue) sendDocument(ctx context.Context, companyID, id uint) error {
	doc, err := q.docs.Find(ctx, companyID, id)
	if err != nil {
		return fmt.Errorf("load document %d: %w", id, err)
	}
	company, err := q.docs.Company(ctx, companyID)
	if err != nil {
		return fmt.Errorf("load company %d: %w", companyID, err)
	}
	lang := company.Locale
	kind := i18n.T(lang, string(doc.Type))

	sent := 0
	for _, inv := range doc.Invitations {
		if inv.Contact == nil || inv.Contact.Email == "" {
			continue
		}
		path, err := q.renderer.RenderPDF(ctx, doc, inv.Contact)
		if err != nil {
			return fmt.Errorf("render pdf: %w", err)
		}
		body, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read pdf: %w", err)
		}
		msg := mail.Message{
			To:      []string{inv.Contact.Email},
			Subject: i18n.Tf(lang, "email_subject", kind, doc.Number),
			Body:    i18n.Tf(lang, "email_body", inv.Contact.FullName(), kind, doc.Number, company.Name),
			Attachments: []mail.Attachment{{
				Filename:    filepath.Base(path),
				ContentType: "application/pdf",
				Data:        body,
			}},
		}
		if err := q.mailer.Send(ctx, msg); err != nil {
			return fmt.Errorf("send to %s: %w", inv.Contact.Email, err)
		}
		sent++
	}
	if sent == 0 {
		return fmt.Errorf("document %s has no contact to email", doc.Number)
	}
	return nil
}

func contactFor(doc *models.Document) *models.Contact {
	if inv := doc.PrimaryInvitation(); inv != nil {
		return inv.Contact
	}
	return nil
}

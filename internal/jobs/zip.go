package jobs

import (
	"archive/zip"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/diewo77/go-quotes/i18n"
	"github.com/diewo77/go-quotes/internal/mail"
	"github.com/diewo77/go-quotes/internal/models"
	"github.com/google/uuid"
)

func (q *Queue) zipAndSend(ctx context.Context, docs []*models.Document, company *models.Company, address string) error {
	path, err := q.buildArchive(ctx, docs)
	if err != nil {
		return err
	}
	defer os.Remove(path)
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read archive: %w", err)
	}
	lang := i18n.Default
	if company != nil && company.Locale != "" {
		lang = company.Locale
	}
	return q.mailer.Send(ctx, mail.Message{
		To:      []string{address},
		Subject: i18n.T(lang, "zip_subject"),
		Body:    i18n.Tf(lang, "zip_body", len(docs)),
		Attachments: []mail.Attachment{{
			Filename:    "documents-" + time.Now().Format("20060102") + ".zip",
			ContentType: "application/zip",
			Data:        data,
		}},
	})
}

// buildArchive renders each document and packs the PDFs into a new zip file.
// The file is removed again if anything fails.
func (q *Queue) buildArchive(ctx context.Context, docs []*models.Document) (_ string, err error) {
	dir := q.archiveDir
	if dir == "" {
		dir = os.TempDir()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create archive dir: %w", err)
	}
	path := filepath.Join(dir, uuid.NewString()+".zip")
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create archive: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close archive: %w", cerr)
		}
		if err != nil {
			os.Remove(path)
		}
	}()

	zw := zip.NewWriter(f)
	seen := make(map[string]int, len(docs))
	for _, doc := range docs {
		pdfPath, err := q.renderer.RenderPDF(ctx, doc, contactFor(doc))
		if err != nil {
			return "", fmt.Errorf("render %s: %w", doc.Number, err)
		}
		body, err := os.ReadFile(pdfPath)
		if err != nil {
			return "", fmt.Errorf("read %s: %w", pdfPath, err)
		}
		name := filepath.Base(pdfPath)
		if n := seen[name]; n > 0 {
			name = fmt.Sprintf("%d-%s", n, name)
		}
		seen[filepath.Base(pdfPath)]++
		w, err := zw.Create(name)
		if err != nil {
			return "", err
		}
		if _, err := w.Write(body); err != nil {
			return "", err
		}
	}
	if err := zw.Close(); err != nil {
		return "", fmt.Errorf("close archive: %w", err)
	}
	return path, nil
}

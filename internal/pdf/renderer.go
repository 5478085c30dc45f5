// Package pdf renders quotes and invoices to PDF files with maroto.
package pdf

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"time"

	"github.com/diewo77/go-quotes/i18n"
	"github.com/diewo77/go-quotes/internal/models"
	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

// CompanyLoader supplies the issuing company shown in the header.
type CompanyLoader interface {
	Company(ctx context.Context, id uint) (*models.Company, error)
}

// Renderer writes one PDF per document and contact under Dir.
type Renderer struct {
	Dir       string
	companies CompanyLoader
}

// NewRenderer creates a renderer writing below dir.
func NewRenderer(dir string, companies CompanyLoader) *Renderer {
	return &Renderer{Dir: dir, companies: companies}
}

var unsafeName = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// Path returns where the PDF of doc addressed to contact is written. Each
// contact gets its own directory so the file name stays the document number.
func (r *Renderer) Path(doc *models.Document, contact *models.Contact) string {
	name := unsafeName.ReplaceAllString(doc.Number, "_")
	if name == "" {
		name = strconv.FormatUint(uint64(doc.ID), 10)
	}
	var contactID uint
	if contact != nil {
		contactID = contact.ID
	}
	return filepath.Join(r.Dir,
		strconv.FormatUint(uint64(doc.CompanyID), 10),
		strconv.FormatUint(uint64(contactID), 10),
		name+".pdf")
}

// RenderPDF renders doc addressed to contact and returns the file path.
// contact may be nil, in which case only the client is shown.
func (r *Renderer) RenderPDF(ctx context.Context, doc *models.Document, contact *models.Contact) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	var company *models.Company
	if r.companies != nil {
		c, err := r.companies.Company(ctx, doc.CompanyID)
		if err != nil {
			return "", fmt.Errorf("load company: %w", err)
		}
		company = c
	}
	lang := i18n.Default
	if company != nil && company.Locale != "" {
		lang = company.Locale
	}

	m := maroto.New(config.NewBuilder().
		WithLeftMargin(15).
		WithTopMargin(15).
		WithRightMargin(15).
		Build())
	m.AddRows(header(doc, company, lang)...)
	m.AddRows(recipient(doc, contact, lang)...)
	m.AddRows(items(doc, lang)...)
	m.AddRows(totals(doc, lang)...)
	m.AddRows(footer(doc, lang)...)

	out, err := m.Generate()
	if err != nil {
		return "", fmt.Errorf("generate pdf: %w", err)
	}
	path := r.Path(doc, contact)
	if err := writeFile(path, out.GetBytes()); err != nil {
		return "", fmt.Errorf("write pdf: %w", err)
	}
	return path, nil
}

// writeFile writes data to a temporary file next to path and renames it
// into place, so readers never see a partial PDF.
func writeFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".render-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return nil
}

var (
	bold  = props.Text{Style: fontstyle.Bold}
	title = props.Text{Size: 16, Style: fontstyle.Bold}
	right = props.Text{Align: align.Right}
	small = props.Text{Size: 8}
)

func date(lang string, t time.Time) string {
	if lang == "en" {
		return t.Format("2006-01-02")
	}
	return t.Format("02/01/2006")
}

func header(doc *models.Document, company *models.Company, lang string) []core.Row {
	rows := []core.Row{
		row.New(12).Add(
			text.NewCol(8, i18n.T(lang, string(doc.Type)), title),
			text.NewCol(4, doc.Number, props.Text{Size: 12, Style: fontstyle.Bold, Align: align.Right}),
		),
	}
	if company != nil {
		rows = append(rows, row.New(6).Add(text.NewCol(12, company.Name, bold)))
		if company.Address != "" {
			rows = append(rows, row.New(5).Add(text.NewCol(12, company.Address+", "+company.PostalCode+" "+company.City, small)))
		}
	}
	rows = append(rows, row.New(6).Add(
		text.NewCol(6, i18n.T(lang, "issue_date")+": "+date(lang, doc.IssueDate)),
		text.NewCol(6, dueLine(doc, lang), right),
	))
	if doc.PONumber != "" {
		rows = append(rows, row.New(6).Add(text.NewCol(12, i18n.T(lang, "po_number")+": "+doc.PONumber)))
	}
	return rows
}

func dueLine(doc *models.Document, lang string) string {
	if doc.DueDate == nil {
		return ""
	}
	label := "due_date"
	if doc.Type == models.TypeQuote {
		label = "valid_until"
	}
	return i18n.T(lang, label) + ": " + date(lang, *doc.DueDate)
}

func recipient(doc *models.Document, contact *models.Contact, lang string) []core.Row {
	rows := []core.Row{row.New(8).Add(text.NewCol(12, i18n.T(lang, "bill_to"), props.Text{Top: 3, Style: fontstyle.Bold}))}
	if doc.Client != nil {
		rows = append(rows, row.New(5).Add(text.NewCol(12, doc.Client.Name)))
		if addr := doc.Client.FullAddress(); addr != "" {
			rows = append(rows, row.New(5).Add(text.NewCol(12, addr, small)))
		}
	}
	if contact != nil {
		rows = append(rows, row.New(5).Add(text.NewCol(12, contact.FullName()+" <"+contact.Email+">", small)))
	}
	return rows
}

func items(doc *models.Document, lang string) []core.Row {
	rows := []core.Row{
		row.New(10).Add(
			text.NewCol(6, i18n.T(lang, "description"), props.Text{Top: 4, Style: fontstyle.Bold}),
			text.NewCol(1, i18n.T(lang, "quantity"), props.Text{Top: 4, Style: fontstyle.Bold, Align: align.Right}),
			text.NewCol(2, i18n.T(lang, "unit_price"), props.Text{Top: 4, Style: fontstyle.Bold, Align: align.Right}),
			text.NewCol(1, i18n.T(lang, "tax_rate"), props.Text{Top: 4, Style: fontstyle.Bold, Align: align.Right}),
			text.NewCol(2, i18n.T(lang, "line_total"), props.Text{Top: 4, Style: fontstyle.Bold, Align: align.Right}),
		),
	}
	for _, item := range doc.Items {
		rows = append(rows, row.New(6).Add(
			text.NewCol(6, item.Description),
			text.NewCol(1, strconv.FormatFloat(item.Quantity, 'f', -1, 64), right),
			text.NewCol(2, i18n.Money(lang, doc.Currency, item.UnitPrice), right),
			text.NewCol(1, strconv.FormatFloat(item.TaxRate*100, 'f', -1, 64)+"%", right),
			text.NewCol(2, i18n.Money(lang, doc.Currency, item.LineTotal), right),
		))
	}
	return rows
}

func totals(doc *models.Document, lang string) []core.Row {
	line := func(label string, amount float64, p props.Text) core.Row {
		return row.New(6).Add(
			text.NewCol(9, i18n.T(lang, label), props.Text{Align: align.Right, Style: p.Style}),
			text.NewCol(3, i18n.Money(lang, doc.Currency, amount), p),
		)
	}
	rows := []core.Row{row.New(4), line("subtotal", doc.Subtotal, right)}
	if doc.Discount > 0 {
		rows = append(rows, line("discount", -doc.Discount, right))
	}
	rows = append(rows,
		line("tax_total", doc.TaxTotal, right),
		line("total", doc.Total, props.Text{Align: align.Right, Style: fontstyle.Bold}),
	)
	return rows
}

func footer(doc *models.Document, lang string) []core.Row {
	var rows []core.Row
	if doc.PublicNotes != "" {
		rows = append(rows, row.New(10).Add(text.NewCol(12, i18n.T(lang, "notes")+": "+doc.PublicNotes, props.Text{Top: 4})))
	}
	if doc.Terms != "" {
		rows = append(rows, row.New(10).Add(text.NewCol(12, i18n.T(lang, "terms")+": "+doc.Terms, props.Text{Top: 4})))
	}
	if doc.Footer != "" {
		rows = append(rows, row.New(8).Add(text.NewCol(12, doc.Footer, props.Text{Top: 4, Size: 8, Align: align.Center})))
	}
	return rows
}

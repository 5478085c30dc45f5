// Package i18n holds the French and English labels used by PDFs, emails
// and API messages.
package i18n

import (
	"context"
	"fmt"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Default is the language used when nothing better matches.
const Default = "fr"

var (
	supported = []language.Tag{language.French, language.English}
	matcher   = language.NewMatcher(supported)
)

var dict = map[string]map[string]string{
	"fr": {
		"required":            "Requis",
		"must_be_positive":    "Doit être positif",
		"out_of_range":        "Hors limites",
		"quote":               "Devis",
		"invoice":             "Facture",
		"number":              "Numéro",
		"issue_date":          "Date d'émission",
		"due_date":            "Échéance",
		"valid_until":         "Valable jusqu'au",
		"po_number":           "Bon de commande",
		"bill_to":             "Destinataire",
		"description":         "Désignation",
		"quantity":            "Qté",
		"unit_price":          "Prix unitaire",
		"tax_rate":            "TVA",
		"line_total":          "Total HT",
		"subtotal":            "Sous-total",
		"discount":            "Remise",
		"tax_total":           "Total TVA",
		"total":               "Total TTC",
		"notes":               "Notes",
		"terms":               "Conditions",
		"email_subject":       "%s n° %s",
		"email_body":          "Bonjour %s,\n\nVeuillez trouver ci-joint %s n° %s.\n\nCordialement,\n%s",
		"zip_subject":         "Vos documents",
		"zip_body":            "Bonjour,\n\nVeuillez trouver ci-joint les %d documents demandés.\n",
		"email_sent":          "E-mail envoyé",
		"no_documents":        "Aucun document trouvé",
		"invalid_credentials": "Identifiants invalides",
		"invalid_currency":    "Devise inconnue",
		"invalid_date":        "Date invalide (AAAA-MM-JJ)",
		"not_found":           "Introuvable",
	},
	"en": {
		"required":            "Required",
		"must_be_positive":    "Must be positive",
		"out_of_range":        "Out of range",
		"quote":               "Quote",
		"invoice":             "Invoice",
		"number":              "Number",
		"issue_date":          "Issue date",
		"due_date":            "Due date",
		"valid_until":         "Valid until",
		"po_number":           "PO number",
		"bill_to":             "Bill to",
		"description":         "Description",
		"quantity":            "Qty",
		"unit_price":          "Unit price",
		"tax_rate":            "Tax",
		"line_total":          "Amount",
		"subtotal":            "Subtotal",
		"discount":            "Discount",
		"tax_total":           "Tax",
		"total":               "Total",
		"notes":               "Notes",
		"terms":               "Terms",
		"email_subject":       "%s %s",
		"email_body":          "Hello %s,\n\nPlease find attached %s %s.\n\nBest regards,\n%s",
		"zip_subject":         "Your documents",
		"zip_body":            "Hello,\n\nPlease find attached the %d requested documents.\n",
		"email_sent":          "Email sent",
		"no_documents":        "No documents found",
		"invalid_credentials": "Invalid credentials",
		"invalid_currency":    "Unknown currency",
		"invalid_date":        "Invalid date (YYYY-MM-DD)",
		"not_found":           "Not found",
	},
}

// DetectLanguage picks "en" or "fr" from an Accept-Language header.
func DetectLanguage(accept string) string {
	tags, _, err := language.ParseAcceptLanguage(accept)
	if err != nil || len(tags) == 0 {
		return Default
	}
	_, idx, conf := matcher.Match(tags...)
	if conf == language.No {
		return Default
	}
	base, _ := supported[idx].Base()
	return base.String()
}

// T translates code, falling back to French and then to the code itself.
func T(lang, code string) string {
	if m, ok := dict[lang]; ok {
		if s, ok := m[code]; ok {
			return s
		}
	}
	if s, ok := dict[Default][code]; ok {
		return s
	}
	return code
}

// Tf translates code and formats it with args.
func Tf(lang, code string, args ...any) string {
	return fmt.Sprintf(T(lang, code), args...)
}

// Money formats amount in the given ISO currency using the language's
// number conventions. Unknown currencies are printed with two decimals.
func Money(lang, iso string, amount float64) string {
	p := message.NewPrinter(tag(lang))
	unit, err := currency.ParseISO(iso)
	if err != nil {
		return p.Sprintf("%.2f %s", amount, iso)
	}
	scale, _ := currency.Standard.Rounding(unit)
	return p.Sprintf(fmt.Sprintf("%%.%df %%s", scale), amount, unit.String())
}

func tag(lang string) language.Tag {
	if lang == "en" {
		return language.English
	}
	return language.French
}

type ctxKey struct{}

// WithLang stores the request language in ctx.
func WithLang(ctx context.Context, lang string) context.Context {
	return context.WithValue(ctx, ctxKey{}, lang)
}

// LangFromContext returns the stored language or Default.
func LangFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKey{}).(string); ok && v != "" {
		return v
	}
	return Default
}

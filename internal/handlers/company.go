package handlers

import (
	"net/http"
	"strings"

	"github.com/diewo77/go-quotes/httpx"
	"github.com/diewo77/go-quotes/internal/models"
	"github.com/diewo77/go-quotes/validation"
	"gorm.io/gorm"
)

// CompanyHandler reads and changes the settings of the actor's company.
type CompanyHandler struct {
	db *gorm.DB
}

func NewCompanyHandler(db *gorm.DB) *CompanyHandler {
	return &CompanyHandler{db: db}
}

type companyInput struct {
	Name              string `json:"name"`
	Email             string `json:"email"`
	Phone             string `json:"phone"`
	Website           string `json:"website"`
	Address           string `json:"address"`
	City              string `json:"city"`
	PostalCode        string `json:"postal_code"`
	Country           string `json:"country"`
	SIRET             string `json:"siret"`
	VATNumber         string `json:"vat_number"`
	Locale            string `json:"locale"`
	Currency          string `json:"currency"`
	QuotePrefix       string `json:"quote_prefix"`
	InvoicePrefix     string `json:"invoice_prefix"`
	QuoteValidityDays int    `json:"quote_validity_days"`
	InvoiceDueDays    int    `json:"invoice_due_days"`
}

func (h *CompanyHandler) Show(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	var company models.Company
	if err := h.db.WithContext(r.Context()).First(&company, actor.CompanyID).Error; err != nil {
		writeInternal(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, company)
}

// Update saves the settings. Prefix and term changes apply to documents created afterwards.
func (h *CompanyHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	var in companyInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}

	v := validation.Violations{}
	validation.Required("name", in.Name, v)
	validation.Currency("currency", strings.ToUpper(in.Currency), v)
	if in.Locale != "" && in.Locale != "fr" && in.Locale != "en" {
		v["locale"] = "out_of_range"
	}
	validation.RangeFloat("quote_validity_days", float64(in.QuoteValidityDays), 0, 365, v)
	validation.RangeFloat("invoice_due_days", float64(in.InvoiceDueDays), 0, 365, v)
	if !v.Empty() {
		writeViolations(w, r, v)
		return
	}

	var company models.Company
	if err := h.db.WithContext(r.Context()).First(&company, actor.CompanyID).Error; err != nil {
		writeInternal(w, r, err)
		return
	}
	company.Name = strings.TrimSpace(in.Name)
	company.Email = in.Email
	company.Phone = in.Phone
	company.Website = in.Website
	company.Address = in.Address
	company.City = in.City
	company.PostalCode = in.PostalCode
	company.Country = in.Country
	company.SIRET = in.SIRET
	company.VATNumber = strings.ToUpper(in.VATNumber)
	if in.Locale != "" {
		company.Locale = in.Locale
	}
	if in.Currency != "" {
		company.Currency = strings.ToUpper(in.Currency)
	}
	if p := strings.TrimSpace(in.QuotePrefix); p != "" {
		company.QuotePrefix = strings.ToUpper(p)
	}
	if p := strings.TrimSpace(in.InvoicePrefix); p != "" {
		company.InvoicePrefix = strings.ToUpper(p)
	}
	company.QuoteValidityDays = in.QuoteValidityDays
	company.InvoiceDueDays = in.InvoiceDueDays

	if err := h.db.WithContext(r.Context()).Save(&company).Error; err != nil {
		writeInternal(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, company)
}

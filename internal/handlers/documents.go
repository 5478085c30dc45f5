package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/diewo77/go-quotes/httpx"
	"github.com/diewo77/go-quotes/internal/actions"
	"github.com/diewo77/go-quotes/internal/models"
	"github.com/diewo77/go-quotes/internal/services"
	"github.com/diewo77/go-quotes/internal/store"
	"github.com/diewo77/go-quotes/validation"
)

// DocumentStore is the persistence the document endpoints need.
type DocumentStore interface {
	Create(ctx context.Context, doc *models.Document) error
	Update(ctx context.Context, doc *models.Document) error
	Find(ctx context.Context, companyID, id uint) (*models.Document, error)
	FindByIDs(ctx context.Context, companyID uint, ids []uint, includeDeleted bool) ([]*models.Document, error)
	List(ctx context.Context, companyID uint, f store.ListFilter) ([]models.Document, int64, error)
	Company(ctx context.Context, id uint) (*models.Company, error)
	Client(ctx context.Context, companyID, id uint) (*models.Client, error)
}

// DocumentHandler serves the JSON API of one document type.
type DocumentHandler struct {
	docType     models.DocumentType
	store       DocumentStore
	calc        *services.Calculator
	auth        actions.Authorizer
	dispatcher  *actions.Dispatcher
	coordinator *actions.Coordinator
	now         func() time.Time
}

// NewDocumentHandler creates the handler serving documents of type t.
func NewDocumentHandler(t models.DocumentType, st DocumentStore, calc *services.Calculator, auth actions.Authorizer, d *actions.Dispatcher, c *actions.Coordinator) *DocumentHandler {
	return &DocumentHandler{
		docType:     t,
		store:       st,
		calc:        calc,
		auth:        auth,
		dispatcher:  d,
		coordinator: c,
		now:         time.Now,
	}
}

type itemInput struct {
	ProductKey  string  `json:"product_key"`
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	Discount    float64 `json:"discount"`
	TaxName     string  `json:"tax_name"`
	TaxRate     float64 `json:"tax_rate"`
}

type documentInput struct {
	ClientID     uint        `json:"client_id"`
	PONumber     string      `json:"po_number"`
	Currency     string      `json:"currency"`
	Discount     float64     `json:"discount"`
	PublicNotes  string      `json:"public_notes"`
	PrivateNotes string      `json:"private_notes"`
	Terms        string      `json:"terms"`
	Footer       string      `json:"footer"`
	IssueDate    string      `json:"issue_date"`
	DueDate      string      `json:"due_date"`
	Items        []itemInput `json:"items"`
}

func (in *documentInput) validate() (validation.Violations, time.Time, *time.Time) {
	v := validation.Violations{}
	if in.ClientID == 0 {
		v["client_id"] = "required"
	}
	validation.Currency("currency", strings.ToUpper(in.Currency), v)
	validation.NonNegativeFloat("discount", in.Discount, v)

	var issue time.Time
	if in.IssueDate != "" {
		t, err := time.Parse(time.DateOnly, in.IssueDate)
		if err != nil {
			v["issue_date"] = "invalid_date"
		}
		issue = t
	}
	var due *time.Time
	if in.DueDate != "" {
		t, err := time.Parse(time.DateOnly, in.DueDate)
		if err != nil {
			v["due_date"] = "invalid_date"
		} else {
			due = &t
		}
	}

	if len(in.Items) == 0 {
		v["items"] = "required"
	}
	for i, item := range in.Items {
		prefix := "items[" + itoa(i) + "]."
		validation.Required(prefix+"description", item.Description, v)
		validation.PositiveFloat(prefix+"quantity", item.Quantity, v)
		validation.NonNegativeFloat(prefix+"unit_price", item.UnitPrice, v)
		validation.NonNegativeFloat(prefix+"discount", item.Discount, v)
		validation.RangeFloat(prefix+"tax_rate", item.TaxRate, 0, 1, v)
	}
	return v, issue, due
}

func (in *documentInput) lineItems() []models.LineItem {
	items := make([]models.LineItem, len(in.Items))
	for i, it := range in.Items {
		items[i] = models.LineItem{
			ProductKey:  it.ProductKey,
			Description: strings.TrimSpace(it.Description),
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			Discount:    it.Discount,
			TaxName:     it.TaxName,
			TaxRate:     it.TaxRate,
		}
	}
	return items
}

func (in *documentInput) applyTo(doc *models.Document) {
	doc.ClientID = in.ClientID
	doc.PONumber = in.PONumber
	doc.Discount = in.Discount
	doc.PublicNotes = in.PublicNotes
	doc.PrivateNotes = in.PrivateNotes
	doc.Terms = in.Terms
	doc.Footer = in.Footer
	if in.Currency != "" {
		doc.Currency = strings.ToUpper(in.Currency)
	}
	doc.Items = in.lineItems()
}

// List returns one page of the company's documents of this type.
func (h *DocumentHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	f := store.ListFilter{
		Type:            h.docType,
		Status:          models.Status(q.Get("status")),
		IncludeArchived: q.Get("include_archived") == "1" || q.Get("include_archived") == "true",
		Page:            max(queryInt(r, "page"), 1),
		Limit:           queryInt(r, "limit"),
	}
	docs, total, err := h.store.List(r.Context(), actor.CompanyID, f)
	if err != nil {
		writeInternal(w, r, err)
		return
	}
	data := make([]*models.Document, len(docs))
	for i := range docs {
		data[i] = &docs[i]
	}
	limit := f.Limit
	if limit < 1 || limit > 100 {
		limit = 20
	}
	httpx.JSON(w, http.StatusOK, documentList{
		Data: data,
		Meta: &pageMeta{Page: f.Page, Limit: limit, Total: total},
	})
}

// Create stores a new draft with one invitation per client contact.
func (h *DocumentHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	var in documentInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	v, issue, due := in.validate()
	if !v.Empty() {
		writeViolations(w, r, v)
		return
	}

	ctx := r.Context()
	client, err := h.store.Client(ctx, actor.CompanyID, in.ClientID)
	if errors.Is(err, store.ErrNotFound) {
		writeViolations(w, r, validation.Violations{"client_id": "not_found"})
		return
	}
	if err != nil {
		writeInternal(w, r, err)
		return
	}
	company, err := h.store.Company(ctx, actor.CompanyID)
	if err != nil {
		writeInternal(w, r, err)
		return
	}

	doc := &models.Document{
		CompanyID: actor.CompanyID,
		UserID:    actor.UserID,
		Type:      h.docType,
		Status:    models.StatusDraft,
		Currency:  company.Currency,
		IssueDate: issue,
		DueDate:   due,
	}
	if doc.IssueDate.IsZero() {
		doc.IssueDate = h.now().UTC().Truncate(24 * time.Hour)
	}
	if doc.DueDate == nil {
		if days := company.TermDays(h.docType); days > 0 {
			d := doc.IssueDate.AddDate(0, 0, days)
			doc.DueDate = &d
		}
	}
	in.applyTo(doc)
	for _, c := range client.Contacts {
		doc.Invitations = append(doc.Invitations, models.Invitation{ContactID: c.ID})
	}
	h.calc.Apply(doc)

	if err := h.store.Create(ctx, doc); err != nil {
		writeInternal(w, r, err)
		return
	}
	created, err := h.store.Find(ctx, actor.CompanyID, doc.ID)
	if err != nil {
		writeInternal(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, created)
}

// load finds a live document of this type for the actor's company.
func (h *DocumentHandler) load(w http.ResponseWriter, r *http.Request, actor models.Actor) (*models.Document, bool) {
	id, ok := pathID(w, r)
	if !ok {
		return nil, false
	}
	doc, err := h.store.Find(r.Context(), actor.CompanyID, id)
	if errors.Is(err, store.ErrNotFound) || (err == nil && doc.Type != h.docType) {
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
		return nil, false
	}
	if err != nil {
		writeInternal(w, r, err)
		return nil, false
	}
	return doc, true
}

// Show returns one document.
func (h *DocumentHandler) Show(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	doc, ok := h.load(w, r, actor)
	if !ok {
		return
	}
	if !h.auth.Can(r.Context(), actor, actions.CapabilityView, doc) {
		httpx.JSONError(w, http.StatusForbidden, "forbidden", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, doc)
}

// Update replaces the editable fields and items. Converted documents are frozen.
func (h *DocumentHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	doc, ok := h.load(w, r, actor)
	if !ok {
		return
	}
	if !h.auth.Can(r.Context(), actor, actions.CapabilityEdit, doc) {
		httpx.JSONError(w, http.StatusForbidden, "forbidden", nil)
		return
	}
	if doc.IsDeleted() || doc.Status == models.StatusConverted {
		httpx.JSONError(w, http.StatusBadRequest, "update_not_allowed", map[string]string{"status": string(doc.Status)})
		return
	}

	var in documentInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	v, issue, due := in.validate()
	if !v.Empty() {
		writeViolations(w, r, v)
		return
	}
	if in.ClientID != doc.ClientID {
		if _, err := h.store.Client(r.Context(), actor.CompanyID, in.ClientID); err != nil {
			writeViolations(w, r, validation.Violations{"client_id": "not_found"})
			return
		}
	}

	in.applyTo(doc)
	if !issue.IsZero() {
		doc.IssueDate = issue
	}
	if due != nil {
		doc.DueDate = due
	}
	h.calc.Apply(doc)
	if err := h.store.Update(r.Context(), doc); err != nil {
		writeInternal(w, r, err)
		return
	}
	updated, err := h.store.Find(r.Context(), actor.CompanyID, doc.ID)
	if err != nil {
		writeInternal(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, updated)
}

// loadAny finds a document of this type including soft-deleted ones. A
// missing document comes back as nil so the dispatcher answers 404.
func (h *DocumentHandler) loadAny(w http.ResponseWriter, r *http.Request, actor models.Actor) (*models.Document, bool) {
	id, ok := pathID(w, r)
	if !ok {
		return nil, false
	}
	docs, err := h.store.FindByIDs(r.Context(), actor.CompanyID, []uint{id}, true)
	if err != nil {
		writeInternal(w, r, err)
		return nil, false
	}
	if len(docs) == 1 && docs[0].Type == h.docType {
		return docs[0], true
	}
	return nil, true
}

// Destroy soft-deletes the document and answers {}. Deleting twice is fine.
func (h *DocumentHandler) Destroy(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	doc, ok := h.loadAny(w, r, actor)
	if !ok {
		return
	}
	res, err := h.dispatcher.Dispatch(r.Context(), actor, doc, actions.KindDelete, actions.ModeSingle)
	if err != nil {
		writeInternal(w, r, err)
		return
	}
	if res.IsRejected() {
		writeResult(w, res)
		return
	}
	httpx.JSON(w, http.StatusOK, struct{}{})
}

// Action runs the {action} token on one document, soft-deleted ones included.
func (h *DocumentHandler) Action(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	doc, ok := h.loadAny(w, r, actor)
	if !ok {
		return
	}
	res, err := h.dispatcher.Perform(r.Context(), actor, doc, r.PathValue("action"))
	if err != nil {
		writeInternal(w, r, err)
		return
	}
	writeResult(w, res)
}

type bulkInput struct {
	IDs    []uint `json:"ids"`
	Action string `json:"action"`
}

// Bulk applies one action to many documents.
func (h *DocumentHandler) Bulk(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	var in bulkInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	res, err := h.coordinator.Run(r.Context(), actor, in.IDs, in.Action)
	if err != nil {
		writeInternal(w, r, err)
		return
	}
	writeResult(w, res)
}

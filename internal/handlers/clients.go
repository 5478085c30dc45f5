package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/diewo77/go-quotes/httpx"
	"github.com/diewo77/go-quotes/internal/models"
	"github.com/diewo77/go-quotes/internal/store"
	"github.com/diewo77/go-quotes/validation"
)

// ClientStore persists clients and their contacts.
type ClientStore interface {
	ListClients(ctx context.Context, companyID uint) ([]models.Client, error)
	Client(ctx context.Context, companyID, id uint) (*models.Client, error)
	SaveClient(ctx context.Context, client *models.Client) error
}

type ClientHandler struct {
	store ClientStore
}

func NewClientHandler(st ClientStore) *ClientHandler {
	return &ClientHandler{store: st}
}

type contactInput struct {
	ID        uint   `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	IsPrimary bool   `json:"is_primary"`
}

type clientInput struct {
	Name       string         `json:"name"`
	Email      string         `json:"email"`
	Address    string         `json:"address"`
	City       string         `json:"city"`
	PostalCode string         `json:"postal_code"`
	Country    string         `json:"country"`
	VATNumber  string         `json:"vat_number"`
	Contacts   []contactInput `json:"contacts"`
}

func (in *clientInput) validate() validation.Violations {
	v := validation.Violations{}
	validation.Required("name", in.Name, v)
	for i, c := range in.Contacts {
		validation.Required("contacts["+itoa(i)+"].email", c.Email, v)
	}
	return v
}

func (in *clientInput) applyTo(c *models.Client) {
	c.Name = strings.TrimSpace(in.Name)
	c.Email = strings.TrimSpace(in.Email)
	c.Address = in.Address
	c.City = in.City
	c.PostalCode = in.PostalCode
	c.Country = in.Country
	c.VATNumber = strings.ToUpper(in.VATNumber)
	c.Contacts = make([]models.Contact, len(in.Contacts))
	for i, ci := range in.Contacts {
		c.Contacts[i] = models.Contact{
			ID:        ci.ID,
			FirstName: ci.FirstName,
			LastName:  ci.LastName,
			Email:     strings.TrimSpace(ci.Email),
			IsPrimary: ci.IsPrimary,
		}
	}
}

func (h *ClientHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	clients, err := h.store.ListClients(r.Context(), actor.CompanyID)
	if err != nil {
		writeInternal(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"data": clients})
}

func (h *ClientHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	var in clientInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if v := in.validate(); !v.Empty() {
		writeViolations(w, r, v)
		return
	}
	client := &models.Client{CompanyID: actor.CompanyID, UserID: actor.UserID}
	in.applyTo(client)
	for i := range client.Contacts {
		client.Contacts[i].ID = 0
	}
	if err := h.store.SaveClient(r.Context(), client); err != nil {
		writeInternal(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, client)
}

func (h *ClientHandler) load(w http.ResponseWriter, r *http.Request, companyID uint) (*models.Client, bool) {
	id, ok := pathID(w, r)
	if !ok {
		return nil, false
	}
	client, err := h.store.Client(r.Context(), companyID, id)
	if errors.Is(err, store.ErrNotFound) {
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
		return nil, false
	}
	if err != nil {
		writeInternal(w, r, err)
		return nil, false
	}
	return client, true
}

func (h *ClientHandler) Show(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	if client, ok := h.load(w, r, actor.CompanyID); ok {
		httpx.JSON(w, http.StatusOK, client)
	}
}

func (h *ClientHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	client, ok := h.load(w, r, actor.CompanyID)
	if !ok {
		return
	}
	var in clientInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if v := in.validate(); !v.Empty() {
		writeViolations(w, r, v)
		return
	}
	in.applyTo(client)
	if err := h.store.SaveClient(r.Context(), client); err != nil {
		writeInternal(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, client)
}

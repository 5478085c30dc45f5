package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/diewo77/go-quotes/auth"
	"github.com/diewo77/go-quotes/httpx"
	"github.com/diewo77/go-quotes/i18n"
	"github.com/diewo77/go-quotes/internal/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// LoginRecorder counts successful logins.
type LoginRecorder interface {
	RecordLogin(ctx context.Context, companyID uint)
}

type AuthHandler struct {
	db      *gorm.DB
	metrics LoginRecorder
}

func NewAuthHandler(db *gorm.DB, metrics LoginRecorder) *AuthHandler {
	return &AuthHandler{db: db, metrics: metrics}
}

type loginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login checks the credentials, opens a session and records login.success.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var in loginInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	lang := i18n.LangFromContext(r.Context())
	email := strings.ToLower(strings.TrimSpace(in.Email))

	var user models.User
	err := h.db.WithContext(r.Context()).Where("LOWER(email) = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		httpx.JSONError(w, http.StatusUnauthorized, i18n.T(lang, "invalid_credentials"), nil)
		return
	}
	if err != nil {
		writeInternal(w, r, err)
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(in.Password)); err != nil {
		httpx.JSONError(w, http.StatusUnauthorized, i18n.T(lang, "invalid_credentials"), nil)
		return
	}

	auth.CreateSession(w, user.ID)
	if h.metrics != nil {
		h.metrics.RecordLogin(r.Context(), user.CompanyID)
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"id":         user.ID,
		"email":      user.Email,
		"company_id": user.CompanyID,
	})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	auth.ClearSession(w)
	w.WriteHeader(http.StatusNoContent)
}

package handlers

import (
	"errors"
	"net/http"

	"github.com/diewo77/go-quotes/httpx"
	"github.com/diewo77/go-quotes/internal/models"
	"gorm.io/gorm"
)

// AdminUserProfileHandler assigns profiles to the users of the admin's company.
type AdminUserProfileHandler struct {
	DB    *gorm.DB
	Cache ProfileCache
}

// NewAdminUserProfileHandler creates a new admin user profile handler.
func NewAdminUserProfileHandler(db *gorm.DB, cache ProfileCache) *AdminUserProfileHandler {
	return &AdminUserProfileHandler{DB: db, Cache: cache}
}

// List returns the company's users with their profile.
func (h *AdminUserProfileHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	var users []models.User
	err := h.DB.WithContext(r.Context()).
		Preload("Profile").
		Where("company_id = ?", actor.CompanyID).
		Order("email").
		Find(&users).Error
	if err != nil {
		writeInternal(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"users": users})
}

type assignInput struct {
	ProfileID *uint `json:"profile_id"`
}

// AssignProfile sets or clears (null) the profile of a user of the same company.
func (h *AdminUserProfileHandler) AssignProfile(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	userID, ok := pathID(w, r)
	if !ok {
		return
	}
	var in assignInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}

	var user models.User
	err := h.DB.WithContext(r.Context()).Where("company_id = ?", actor.CompanyID).First(&user, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		httpx.JSONError(w, http.StatusNotFound, "user_not_found", nil)
		return
	}
	if err != nil {
		writeInternal(w, r, err)
		return
	}
	if in.ProfileID != nil {
		var profile models.Profile
		if err := h.DB.WithContext(r.Context()).First(&profile, *in.ProfileID).Error; err != nil {
			httpx.JSONError(w, http.StatusNotFound, "profile_not_found", nil)
			return
		}
	}

	if err := h.DB.WithContext(r.Context()).Model(&user).Update("profile_id", in.ProfileID).Error; err != nil {
		writeInternal(w, r, err)
		return
	}
	if h.Cache != nil {
		h.Cache.InvalidateUser(user.Actor())
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"user_id":    user.ID,
		"profile_id": in.ProfileID,
	})
}

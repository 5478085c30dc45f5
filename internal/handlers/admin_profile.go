package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/diewo77/go-quotes/gate"
	"github.com/diewo77/go-quotes/httpx"
	"github.com/diewo77/go-quotes/internal/models"
	"gorm.io/gorm"
)

// ProfileCache is invalidated whenever profiles or assignments change.
type ProfileCache interface {
	InvalidateAll()
	InvalidateUser(actor models.Actor)
}

// AdminProfileHandler handles CRUD operations for profiles.
// It allows admins to create, edit, delete profiles and manage their permissions.
type AdminProfileHandler struct {
	DB    *gorm.DB
	Cache ProfileCache
}

// NewAdminProfileHandler creates a new admin profile handler.
func NewAdminProfileHandler(db *gorm.DB, cache ProfileCache) *AdminProfileHandler {
	return &AdminProfileHandler{DB: db, Cache: cache}
}

func (h *AdminProfileHandler) invalidate() {
	if h.Cache != nil {
		h.Cache.InvalidateAll()
	}
}

type profileInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// List returns all profiles with their permissions.
func (h *AdminProfileHandler) List(w http.ResponseWriter, r *http.Request) {
	var profiles []models.Profile
	if err := h.DB.WithContext(r.Context()).Preload("Permissions").Order("name").Find(&profiles).Error; err != nil {
		writeInternal(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"profiles": profiles})
}

// Create adds a profile without permissions.
func (h *AdminProfileHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in profileInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	profile := models.Profile{Name: strings.TrimSpace(in.Name), Description: strings.TrimSpace(in.Description)}
	if profile.Name == "" {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", map[string]string{"name": "required"})
		return
	}
	var count int64
	h.DB.WithContext(r.Context()).Model(&models.Profile{}).Where("name = ?", profile.Name).Count(&count)
	if count > 0 {
		httpx.JSONError(w, http.StatusConflict, "name_already_exists", nil)
		return
	}
	if err := h.DB.WithContext(r.Context()).Create(&profile).Error; err != nil {
		writeInternal(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, profile)
}

func (h *AdminProfileHandler) load(w http.ResponseWriter, r *http.Request, preload ...string) (*models.Profile, bool) {
	id, ok := pathID(w, r)
	if !ok {
		return nil, false
	}
	q := h.DB.WithContext(r.Context())
	for _, p := range preload {
		q = q.Preload(p)
	}
	var profile models.Profile
	err := q.First(&profile, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
		return nil, false
	}
	if err != nil {
		writeInternal(w, r, err)
		return nil, false
	}
	return &profile, true
}

// Update renames a profile or changes its description.
func (h *AdminProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	profile, ok := h.load(w, r)
	if !ok {
		return
	}
	var in profileInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if name := strings.TrimSpace(in.Name); name != "" {
		if profile.IsSystem && name != profile.Name {
			httpx.JSONError(w, http.StatusForbidden, "cannot_rename_system_profile", nil)
			return
		}
		profile.Name = name
	}
	profile.Description = strings.TrimSpace(in.Description)
	if err := h.DB.WithContext(r.Context()).Save(profile).Error; err != nil {
		writeInternal(w, r, err)
		return
	}
	h.invalidate()
	httpx.JSON(w, http.StatusOK, profile)
}

// Delete removes a profile that is neither a system profile nor assigned.
func (h *AdminProfileHandler) Delete(w http.ResponseWriter, r *http.Request) {
	profile, ok := h.load(w, r)
	if !ok {
		return
	}
	// Cannot delete system profiles (admin, viewer, accountant)
	if profile.IsSystem {
		httpx.JSONError(w, http.StatusForbidden, "cannot_delete_system_profile", nil)
		return
	}
	var users int64
	h.DB.WithContext(r.Context()).Model(&models.User{}).Where("profile_id = ?", profile.ID).Count(&users)
	if users > 0 {
		httpx.JSONError(w, http.StatusConflict, "profile_has_users", nil)
		return
	}
	if err := h.DB.WithContext(r.Context()).Delete(profile).Error; err != nil {
		writeInternal(w, r, err)
		return
	}
	h.invalidate()
	httpx.JSON(w, http.StatusOK, map[string]any{"deleted": profile.ID})
}

type permissionsInput struct {
	Permissions []string `json:"permissions"`
}

// SetPermissions replaces the profile's permissions with the given
// "resource:action" codes. Unknown codes are rejected.
func (h *AdminProfileHandler) SetPermissions(w http.ResponseWriter, r *http.Request) {
	profile, ok := h.load(w, r)
	if !ok {
		return
	}
	var in permissionsInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}

	perms := make([]models.Permission, 0, len(in.Permissions))
	var unknown []string
	for _, code := range in.Permissions {
		resource, action := gate.Permission(code).Parse()
		var perm models.Permission
		err := h.DB.WithContext(r.Context()).
			Where("resource_type = ? AND action = ?", resource, string(action)).
			First(&perm).Error
		if err != nil {
			unknown = append(unknown, code)
			continue
		}
		perms = append(perms, perm)
	}
	if len(unknown) > 0 {
		httpx.JSONError(w, http.StatusBadRequest, "unknown_permissions", unknown)
		return
	}

	if err := h.DB.WithContext(r.Context()).Model(profile).Association("Permissions").Replace(perms); err != nil {
		writeInternal(w, r, err)
		return
	}
	h.invalidate()
	profile.Permissions = perms
	httpx.JSON(w, http.StatusOK, profile)
}

// ListPermissions returns all available permissions.
func (h *AdminProfileHandler) ListPermissions(w http.ResponseWriter, r *http.Request) {
	var permissions []models.Permission
	if err := h.DB.WithContext(r.Context()).Order("resource_type, action").Find(&permissions).Error; err != nil {
		writeInternal(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, permissions)
}

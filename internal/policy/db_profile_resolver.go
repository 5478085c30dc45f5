package policy

import (
	"context"
	"errors"

	"github.com/diewo77/go-quotes/gate"
	"github.com/diewo77/go-quotes/internal/models"
	"gorm.io/gorm"
)

// DBProfileResolver fetches user profiles from the database.
type DBProfileResolver struct {
	DB *gorm.DB
}

// NewDBProfileResolver creates a new database-backed profile resolver.
func NewDBProfileResolver(db *gorm.DB) *DBProfileResolver {
	return &DBProfileResolver{DB: db}
}

// Resolve looks up the actor's profile, preloading permissions.
// Returns nil if the user has no profile or no longer exists.
func (r *DBProfileResolver) Resolve(ctx context.Context, actor models.Actor) (gate.Profile, error) {
	var user models.User
	err := r.DB.WithContext(ctx).Preload("Profile.Permissions").First(&user, actor.UserID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if user.Profile == nil {
		return nil, nil
	}
	return &dbProfileAdapter{profile: user.Profile}, nil
}

// dbProfileAdapter wraps a models.Profile to implement gate.Profile.
type dbProfileAdapter struct {
	profile *models.Profile
}

func (a *dbProfileAdapter) ID() uint     { return a.profile.ID }
func (a *dbProfileAdapter) Name() string { return a.profile.Name }

// HasPermission supports the wildcards understood by gate.Permission.Matches.
func (a *dbProfileAdapter) HasPermission(perm gate.Permission) bool {
	for _, code := range a.profile.Codes() {
		if gate.Permission(code).Matches(perm) {
			return true
		}
	}
	return false
}

func (a *dbProfileAdapter) Permissions() []gate.Permission {
	codes := a.profile.Codes()
	result := make([]gate.Permission, len(codes))
	for i, code := range codes {
		result[i] = gate.Permission(code)
	}
	return result
}

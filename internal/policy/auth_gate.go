package policy

import (
	"context"
	"net/http"
	"time"

	"github.com/diewo77/go-quotes/gate"
	"github.com/diewo77/go-quotes/httpx"
	"github.com/diewo77/go-quotes/internal/actions"
	"github.com/diewo77/go-quotes/internal/models"
	"gorm.io/gorm"
)

// AuthGate holds the configured HybridGate with caching.
// Use this as a central authorization point in your application.
type AuthGate struct {
	Gate          *gate.HybridGate[models.Actor]
	CacheResolver *gate.CachedResolver[models.Actor]
}

// NewAuthGate creates a fully configured authorization gate.
// Quotes and invoices get the tenant ownership policy; admins bypass
// ownership but never the tenant boundary.
func NewAuthGate(db *gorm.DB, cacheTTL time.Duration) *AuthGate {
	cachedResolver := gate.NewCachedResolver[models.Actor](NewDBProfileResolver(db), cacheTTL)
	ag := &AuthGate{
		Gate:          gate.NewHybridGate[models.Actor](cachedResolver),
		CacheResolver: cachedResolver,
	}

	documents := NewAdminBypassPolicy(NewOwnershipPolicy(), ag.IsAdmin)
	ag.RegisterPolicy(string(models.TypeQuote), documents)
	ag.RegisterPolicy(string(models.TypeInvoice), documents)
	return ag
}

// RegisterPolicy adds an ownership policy for a resource type.
func (ag *AuthGate) RegisterPolicy(resourceType string, p gate.Policy[models.Actor]) {
	ag.Gate.Register(resourceType, p)
}

// IsAdmin reports whether the actor's profile grants "*:*".
func (ag *AuthGate) IsAdmin(ctx context.Context, actor models.Actor) bool {
	profile, err := ag.CacheResolver.Resolve(ctx, actor)
	if err != nil || profile == nil {
		return false
	}
	return profile.HasPermission(gate.PermissionSuperAdmin)
}

// Authorize checks if the current request's actor can perform an action on a resource.
func (ag *AuthGate) Authorize(ctx context.Context, action gate.Action, resourceType string, resource any) error {
	actor, ok := ActorFromContext(ctx)
	if !ok {
		return gate.ErrUnauthorized
	}
	return ag.Gate.Authorize(ctx, actor, action, resourceType, resource)
}

// CanProfile checks only profile permissions (no ownership check).
func (ag *AuthGate) CanProfile(ctx context.Context, action gate.Action, resourceType string) bool {
	actor, ok := ActorFromContext(ctx)
	if !ok {
		return false
	}
	return ag.Gate.CanProfile(ctx, actor, action, resourceType)
}

// InvalidateUser clears the cache for a specific actor.
// Call this when a user's profile is changed.
func (ag *AuthGate) InvalidateUser(actor models.Actor) {
	ag.CacheResolver.Invalidate(actor)
}

// InvalidateAll clears the entire profile cache.
func (ag *AuthGate) InvalidateAll() {
	ag.CacheResolver.InvalidateAll()
}

// Documents returns the gate as the document engine's Authorizer.
func (ag *AuthGate) Documents() actions.Authorizer {
	return documentAuthorizer{gate: ag.Gate}
}

type documentAuthorizer struct {
	gate *gate.HybridGate[models.Actor]
}

func (a documentAuthorizer) Can(ctx context.Context, actor models.Actor, capability actions.Capability, doc *models.Document) bool {
	return a.gate.Can(ctx, actor, gate.Action(capability), doc.ResourceType(), doc)
}

// RequirePermission returns middleware that checks profile permission.
func (ag *AuthGate) RequirePermission(resourceType string, action gate.Action) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !ag.CanProfile(r.Context(), action, resourceType) {
				httpx.JSONError(w, http.StatusForbidden, "forbidden", map[string]string{
					"permission": string(gate.NewPermission(resourceType, action)),
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin returns middleware that only lets "*:*" profiles through.
func (ag *AuthGate) RequireAdmin() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := ActorFromContext(r.Context())
			if !ok || !ag.IsAdmin(r.Context(), actor) {
				httpx.JSONError(w, http.StatusForbidden, "forbidden", nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

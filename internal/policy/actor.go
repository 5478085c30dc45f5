package policy

import (
	"context"
	"net/http"

	"github.com/diewo77/go-quotes/auth"
	"github.com/diewo77/go-quotes/internal/models"
	"gorm.io/gorm"
)

type actorCtxKey struct{}

// WithActor stores the request principal in ctx.
func WithActor(ctx context.Context, actor models.Actor) context.Context {
	return context.WithValue(ctx, actorCtxKey{}, actor)
}

// ActorFromContext returns the request principal, if any.
func ActorFromContext(ctx context.Context) (models.Actor, bool) {
	actor, ok := ctx.Value(actorCtxKey{}).(models.Actor)
	return actor, ok && !actor.IsZero()
}

// ActorMiddleware turns the session user id into an Actor carrying the
// user's company. Requests without a session pass through untouched.
func ActorMiddleware(db *gorm.DB) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			uid, ok := auth.UserIDFromContext(r.Context())
			if !ok {
				next.ServeHTTP(w, r)
				return
			}
			var user models.User
			err := db.WithContext(r.Context()).
				Select("id", "company_id", "email").
				First(&user, uid).Error
			if err == nil {
				r = r.WithContext(WithActor(r.Context(), user.Actor()))
			}
			next.ServeHTTP(w, r)
		})
	}
}

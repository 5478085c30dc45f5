package main

import (
	"net/http"

	"github.com/diewo77/go-quotes/auth"
	"github.com/diewo77/go-quotes/gate"
	"github.com/diewo77/go-quotes/httpx"
	"github.com/diewo77/go-quotes/i18n"
	"github.com/diewo77/go-quotes/internal/handlers"
	"github.com/diewo77/go-quotes/internal/models"
	"github.com/diewo77/go-quotes/internal/policy"
	"gorm.io/gorm"
)

// App is the main application handler that sets up all routes.
type App struct {
	mux       *http.ServeMux
	db        *gorm.DB
	routerCfg *RouterConfig
	handler   http.Handler
}

// NewApp creates a new application with all routes configured.
func NewApp(db *gorm.DB, routerCfg *RouterConfig) *App {
	app := &App{
		mux:       http.NewServeMux(),
		db:        db,
		routerCfg: routerCfg,
	}
	app.setupRoutes()
	// Session first, then the actor built from it, then the language.
	app.handler = auth.Middleware(policy.ActorMiddleware(db)(withPreferences(app.mux)))
	return app
}

// ServeHTTP implements http.Handler.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.handler.ServeHTTP(w, r)
}

// setupRoutes configures all application routes.
func (a *App) setupRoutes() {
	// ─────────────────────────────────────────────────────────────────────────
	// Public routes (no auth required)
	// ─────────────────────────────────────────────────────────────────────────
	ah := a.routerCfg.AuthHandler

	a.mux.HandleFunc("GET /healthz", a.health)
	a.mux.HandleFunc("POST /api/v1/login", ah.Login)
	a.mux.HandleFunc("POST /api/v1/logout", ah.Logout)
	a.mux.HandleFunc("GET /client/{type}/{key}/download", a.routerCfg.PublicHandler.Download)

	// ─────────────────────────────────────────────────────────────────────────
	// Documents
	// ─────────────────────────────────────────────────────────────────────────
	a.documentRoutes("/api/v1/quotes", models.TypeQuote, a.routerCfg.QuoteHandler)
	a.documentRoutes("/api/v1/invoices", models.TypeInvoice, a.routerCfg.InvoiceHandler)

	// ─────────────────────────────────────────────────────────────────────────
	// Clients and company settings
	// ─────────────────────────────────────────────────────────────────────────
	ch := a.routerCfg.ClientHandler
	a.mux.Handle("GET /api/v1/clients",
		a.requireAuth(a.requirePermission("client", gate.ActionList)(http.HandlerFunc(ch.List))))
	a.mux.Handle("POST /api/v1/clients",
		a.requireAuth(a.requirePermission("client", gate.ActionCreate)(http.HandlerFunc(ch.Create))))
	a.mux.Handle("GET /api/v1/clients/{id}",
		a.requireAuth(a.requirePermission("client", gate.ActionView)(http.HandlerFunc(ch.Show))))
	a.mux.Handle("PUT /api/v1/clients/{id}",
		a.requireAuth(a.requirePermission("client", gate.ActionEdit)(http.HandlerFunc(ch.Update))))

	sh := a.routerCfg.CompanyHandler
	a.mux.Handle("GET /api/v1/company", a.requireAuth(http.HandlerFunc(sh.Show)))
	a.mux.Handle("PUT /api/v1/company", a.requireAuth(http.HandlerFunc(sh.Update)))

	// ─────────────────────────────────────────────────────────────────────────
	// Admin routes (require the "*:*" profile)
	// ─────────────────────────────────────────────────────────────────────────
	aph := a.routerCfg.AdminProfileHandler
	auph := a.routerCfg.AdminUserProfileHandler

	a.mux.Handle("GET /api/v1/admin/profiles", a.requireAdmin(http.HandlerFunc(aph.List)))
	a.mux.Handle("POST /api/v1/admin/profiles", a.requireAdmin(http.HandlerFunc(aph.Create)))
	a.mux.Handle("PUT /api/v1/admin/profiles/{id}", a.requireAdmin(http.HandlerFunc(aph.Update)))
	a.mux.Handle("DELETE /api/v1/admin/profiles/{id}", a.requireAdmin(http.HandlerFunc(aph.Delete)))
	a.mux.Handle("PUT /api/v1/admin/profiles/{id}/permissions", a.requireAdmin(http.HandlerFunc(aph.SetPermissions)))
	a.mux.Handle("GET /api/v1/admin/permissions", a.requireAdmin(http.HandlerFunc(aph.ListPermissions)))
	a.mux.Handle("GET /api/v1/admin/users", a.requireAdmin(http.HandlerFunc(auph.List)))
	a.mux.Handle("PUT /api/v1/admin/users/{id}/profile", a.requireAdmin(http.HandlerFunc(auph.AssignProfile)))
}

// documentRoutes mounts the CRUD, bulk and action endpoints of one
// document type under prefix. Actions are authorized per document by the
// dispatcher, so they only need a session.
func (a *App) documentRoutes(prefix string, t models.DocumentType, h *handlers.DocumentHandler) {
	resource := string(t)
	a.mux.Handle("GET "+prefix,
		a.requireAuth(a.requirePermission(resource, gate.ActionList)(http.HandlerFunc(h.List))))
	a.mux.Handle("POST "+prefix,
		a.requireAuth(a.requirePermission(resource, gate.ActionCreate)(http.HandlerFunc(h.Create))))
	a.mux.Handle("POST "+prefix+"/bulk", a.requireAuth(http.HandlerFunc(h.Bulk)))
	a.mux.Handle("GET "+prefix+"/{id}",
		a.requireAuth(a.requirePermission(resource, gate.ActionView)(http.HandlerFunc(h.Show))))
	a.mux.Handle("PUT "+prefix+"/{id}",
		a.requireAuth(a.requirePermission(resource, gate.ActionEdit)(http.HandlerFunc(h.Update))))
	a.mux.Handle("DELETE "+prefix+"/{id}",
		a.requireAuth(a.requirePermission(resource, gate.ActionDelete)(http.HandlerFunc(h.Destroy))))
	a.mux.Handle("GET "+prefix+"/{id}/{action}", a.requireAuth(http.HandlerFunc(h.Action)))
	a.mux.Handle("POST "+prefix+"/{id}/{action}", a.requireAuth(http.HandlerFunc(h.Action)))
}

// ─────────────────────────────────────────────────────────────────────────────
// Middleware
// ─────────────────────────────────────────────────────────────────────────────

// requireAuth wraps a handler to require a session whose user still exists.
func (a *App) requireAuth(next http.Handler) http.Handler {
	return auth.RequireAuth(next)
}

func (a *App) requireAdmin(next http.Handler) http.Handler {
	return a.requireAuth(a.routerCfg.AuthGate.RequireAdmin()(next))
}

// requirePermission wraps a handler to require specific resource permission.
func (a *App) requirePermission(resourceType string, action gate.Action) func(http.Handler) http.Handler {
	return a.routerCfg.AuthGate.RequirePermission(resourceType, action)
}

// withPreferences picks the response language from the lang query
// parameter, the lang cookie or Accept-Language, in that order.
func withPreferences(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lang := i18n.DetectLanguage(r.Header.Get("Accept-Language"))
		if c, err := r.Cookie("lang"); err == nil && supportedLang(c.Value) {
			lang = c.Value
		}
		if q := r.URL.Query().Get("lang"); supportedLang(q) {
			lang = q
			http.SetCookie(w, &http.Cookie{
				Name:     "lang",
				Value:    lang,
				Path:     "/",
				MaxAge:   86400 * 365,
				HttpOnly: true,
			})
		}
		next.ServeHTTP(w, r.WithContext(i18n.WithLang(r.Context(), lang)))
	})
}

func supportedLang(lang string) bool {
	return lang == "fr" || lang == "en"
}

func (a *App) health(w http.ResponseWriter, r *http.Request) {
	sqlDB, err := a.db.DB()
	if err == nil {
		err = sqlDB.PingContext(r.Context())
	}
	if err != nil {
		httpx.JSONError(w, http.StatusServiceUnavailable, "database_unavailable", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

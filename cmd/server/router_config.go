package main

import (
	"github.com/diewo77/go-quotes/internal/actions"
	"github.com/diewo77/go-quotes/internal/analytics"
	"github.com/diewo77/go-quotes/internal/config"
	"github.com/diewo77/go-quotes/internal/handlers"
	"github.com/diewo77/go-quotes/internal/jobs"
	"github.com/diewo77/go-quotes/internal/mail"
	"github.com/diewo77/go-quotes/internal/models"
	"github.com/diewo77/go-quotes/internal/pdf"
	"github.com/diewo77/go-quotes/internal/policy"
	"github.com/diewo77/go-quotes/internal/services"
	"github.com/diewo77/go-quotes/internal/store"
	"gorm.io/gorm"
)

// RouterConfig holds all handlers and the authorization gate.
type RouterConfig struct {
	AuthGate *policy.AuthGate
	Queue    *jobs.Queue

	AuthHandler             *handlers.AuthHandler
	QuoteHandler            *handlers.DocumentHandler
	InvoiceHandler          *handlers.DocumentHandler
	PublicHandler           *handlers.PublicHandler
	ClientHandler           *handlers.ClientHandler
	CompanyHandler          *handlers.CompanyHandler
	AdminProfileHandler     *handlers.AdminProfileHandler
	AdminUserProfileHandler *handlers.AdminUserProfileHandler
}

// NewRouterConfig wires the document engine and the HTTP handlers on top
// of db. The returned queue is not started.
func NewRouterConfig(db *gorm.DB, cfg *config.Config) *RouterConfig {
	authGate := policy.NewAuthGate(db, cfg.Auth.ProfileCacheTTL)
	st := store.New(db)
	calc := services.NewCalculator()
	renderer := pdf.NewRenderer(cfg.Storage.PDFDir, st)
	metrics := analytics.NewRecorder(db)

	queue := jobs.NewQueue(st, renderer, mail.New(cfg.Mail), jobs.Options{
		Workers:    cfg.Queue.Workers,
		Size:       cfg.Queue.Size,
		ArchiveDir: cfg.Storage.ArchiveDir,
	})

	dispatcher := actions.NewDispatcher(actions.Deps{
		Auth:     authGate.Documents(),
		Repo:     st,
		Factory:  services.NewFactory(st, calc),
		Renderer: renderer,
		Queue:    queue,
		Metrics:  metrics,
	})
	coordinator := actions.NewCoordinator(dispatcher)

	return &RouterConfig{
		AuthGate: authGate,
		Queue:    queue,

		AuthHandler:             handlers.NewAuthHandler(db, metrics),
		QuoteHandler:            handlers.NewDocumentHandler(models.TypeQuote, st, calc, authGate.Documents(), dispatcher, coordinator),
		InvoiceHandler:          handlers.NewDocumentHandler(models.TypeInvoice, st, calc, authGate.Documents(), dispatcher, coordinator),
		PublicHandler:           handlers.NewPublicHandler(st, renderer),
		ClientHandler:           handlers.NewClientHandler(st),
		CompanyHandler:          handlers.NewCompanyHandler(db),
		AdminProfileHandler:     handlers.NewAdminProfileHandler(db, authGate),
		AdminUserProfileHandler: handlers.NewAdminUserProfileHandler(db, authGate),
	}
}

package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/stocklane/stocklane/internal/catalog"
	"github.com/stocklane/stocklane/internal/partners"
	"github.com/stocklane/stocklane/internal/reports"
	"github.com/stocklane/stocklane/internal/shared"
	"github.com/stocklane/stocklane/internal/transactions"
	"github.com/stocklane/stocklane/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger              *slog.Logger
	Config              *Config
	SessionManager      *shared.SessionManager
	CatalogHandler      *catalog.Handler
	PartnersHandler     *partners.Handler
	TransactionsHandler *transactions.Handler
	ReportsHandler      *reports.Handler
	JobHandler          *jobs.Handler
}

// NewRouter constructs the chi.Router with application defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	params.CatalogHandler.MountRoutes(r)
	params.PartnersHandler.MountRoutes(r)
	params.TransactionsHandler.MountRoutes(r)
	params.ReportsHandler.MountRoutes(r)
	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}

	return r
}

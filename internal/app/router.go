package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/atelier-crm/atelier-crm/internal/auth"
	"github.com/atelier-crm/atelier-crm/internal/clients"
	"github.com/atelier-crm/atelier-crm/internal/company"
	"github.com/atelier-crm/atelier-crm/internal/dashboard"
	"github.com/atelier-crm/atelier-crm/internal/invoices"
	"github.com/atelier-crm/atelier-crm/internal/notifications"
	"github.com/atelier-crm/atelier-crm/internal/observability"
	"github.com/atelier-crm/atelier-crm/internal/projects"
	"github.com/atelier-crm/atelier-crm/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger               *slog.Logger
	Config               *Config
	AuthMiddleware       auth.Middleware
	AuthHandler          *auth.Handler
	ClientsHandler       *clients.Handler
	ProjectsHandler      *projects.Handler
	InvoicesHandler      *invoices.Handler
	NotificationsHandler *notifications.Handler
	DashboardHandler     *dashboard.Handler
	CompanyHandler       *company.Handler
	JobHandler           *jobs.Handler
	Metrics              *observability.Metrics
}

// NewRouter constructs the chi.Router with the API defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", params.AuthHandler.MountRoutes)

		r.Group(func(r chi.Router) {
			r.Use(params.AuthMiddleware.RequireUser)

			r.Route("/clients", params.ClientsHandler.MountRoutes)
			r.Route("/projects", params.ProjectsHandler.MountRoutes)
			r.Route("/invoices", params.InvoicesHandler.MountRoutes)
			r.Route("/notifications", params.NotificationsHandler.MountRoutes)
			r.Route("/dashboard", params.DashboardHandler.MountRoutes)
			r.Route("/company", params.CompanyHandler.MountRoutes)
		})

		r.Group(func(r chi.Router) {
			r.Use(params.AuthMiddleware.RequireStaff)

			r.Route("/batch", params.NotificationsHandler.MountSweepRoutes)
			r.Route("/jobs", params.JobHandler.MountRoutes)
		})
	})

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}

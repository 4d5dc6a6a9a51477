package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/lexvault/lexvault/internal/access"
	"github.com/lexvault/lexvault/internal/audit"
	"github.com/lexvault/lexvault/internal/auth"
	"github.com/lexvault/lexvault/internal/catalog"
	"github.com/lexvault/lexvault/internal/policy"
	"github.com/lexvault/lexvault/internal/roles"
	"github.com/lexvault/lexvault/internal/tenants"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	Access         access.Middleware
	AuthHandler    *auth.Handler
	CatalogHandler *catalog.Handler
	RolesHandler   *roles.Handler
	TenantsHandler *tenants.Handler
	PolicyHandler  *policy.Handler
	AuditHandler   *audit.Handler
}

// NewRouter constructs the chi.Router. Login and health are public;
// everything else sits behind the session middleware with per-group
// permission guards.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger: params.Logger,
		Config: params.Config,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/auth", params.AuthHandler.MountRoutes)

	r.Group(func(r chi.Router) {
		r.Use(params.Access.Authenticate)

		r.Route("/permissions", params.CatalogHandler.MountRoutes)
		r.Route("/policies", params.PolicyHandler.MountRoutes)

		r.Route("/roles", func(r chi.Router) {
			r.Use(params.Access.RequireAny(catalog.ManageRoles))
			params.RolesHandler.MountRoutes(r)
		})

		r.Route("/tenants", func(r chi.Router) {
			r.Use(params.Access.RequireAny(catalog.ManageTenant))
			params.TenantsHandler.MountRoutes(r)
		})

		r.Route("/audit", func(r chi.Router) {
			r.Use(params.Access.RequireAny(catalog.ViewAuditLog))
			params.AuditHandler.MountRoutes(r)
		})
	})

	return r
}

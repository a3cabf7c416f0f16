package app

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"

	"github.com/250793/Projeto-mobile-saude-mais-sub001/internal/auth"
	"github.com/250793/Projeto-mobile-saude-mais-sub001/internal/catalog"
	"github.com/250793/Projeto-mobile-saude-mais-sub001/internal/identity"
	"github.com/250793/Projeto-mobile-saude-mais-sub001/internal/observability"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	AuthHandler    *auth.Handler
	AuthMiddleware auth.Middleware
	CatalogHandler *catalog.Handler
	Metrics        *observability.Metrics
}

// NewRouter constructs the chi.Router with application defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
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

	authRate := 20
	if params.Config != nil && params.Config.AuthRatePerMin > 0 {
		authRate = params.Config.AuthRatePerMin
	}
	r.Route("/api/auth", func(r chi.Router) {
		// Tighter per-IP limit on credential endpoints.
		r.Use(httprate.Limit(authRate, time.Minute, httprate.WithKeyFuncs(httprate.KeyByIP)))
		params.AuthHandler.MountRoutes(r)
	})

	if params.CatalogHandler != nil {
		r.Route("/api/admin", func(r chi.Router) {
			r.Use(params.AuthMiddleware.Authenticate)
			r.Use(params.AuthMiddleware.RequireRole(identity.RoleManager))
			params.CatalogHandler.MountRoutes(r)
		})
	}

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}

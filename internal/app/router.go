package app

import (
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/podkrepi-bg/admin/internal/auth"
	"github.com/podkrepi-bg/admin/internal/crud"
	"github.com/podkrepi-bg/admin/internal/i18n"
	"github.com/podkrepi-bg/admin/internal/observability"
	"github.com/podkrepi-bg/admin/internal/profile"
	"github.com/podkrepi-bg/admin/internal/shared"
	"github.com/podkrepi-bg/admin/internal/view"
	"github.com/podkrepi-bg/admin/web"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	Templates      *view.Engine
	Catalog        *i18n.Catalog
	SessionManager *shared.SessionManager
	CSRFManager    *shared.CSRFManager
	AuthService    *auth.Service
	AuthHandler    *auth.Handler
	Resources      []*crud.Handler
	DiscardHandler *crud.DiscardHandler
	ProfileHandler *profile.Handler
	Metrics        *observability.Metrics
}

// HomePage lists the editors on the landing page.
type HomePage struct {
	Resources []string
}

// NewRouter constructs the chi.Router with admin defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		CSRFManager:    params.CSRFManager,
		Catalog:        params.Catalog,
		Metrics:        params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	r.Route("/auth", params.AuthHandler.MountRoutes)

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireLogin(params.AuthService, params.Logger))

		home := HomePage{}
		for _, h := range params.Resources {
			home.Resources = append(home.Resources, h.Resource().Name)
		}
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			data := view.Page(r, params.CSRFManager, "app.title", home)
			if err := params.Templates.Render(w, "pages/home.html", data); err != nil {
				params.Logger.Error("render home", slog.Any("error", err))
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			}
		})

		for _, h := range params.Resources {
			r.Route("/"+h.Resource().Name, h.MountRoutes)
		}
		if params.DiscardHandler != nil {
			r.Route("/forms", params.DiscardHandler.MountRoutes)
		}
		if params.ProfileHandler != nil {
			r.Route("/"+profile.Name, params.ProfileHandler.MountRoutes)
		}
	})

	staticFS, err := fs.Sub(web.Static, "static")
	if err != nil {
		params.Logger.Error("create static sub filesystem", slog.Any("error", err))
	} else {
		fileServer := http.StripPrefix("/static/", http.FileServer(http.FS(staticFS)))
		r.Handle("/static/*", staticCacheHandler(fileServer))
	}

	return r
}

// staticCacheHandler lets browsers keep static assets for an hour.
func staticCacheHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=3600")
		next.ServeHTTP(w, r)
	})
}

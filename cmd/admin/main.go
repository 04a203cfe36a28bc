package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/podkrepi-bg/admin/internal/api"
	"github.com/podkrepi-bg/admin/internal/app"
	"github.com/podkrepi-bg/admin/internal/auth"
	"github.com/podkrepi-bg/admin/internal/beneficiaries"
	"github.com/podkrepi-bg/admin/internal/bootcamp"
	"github.com/podkrepi-bg/admin/internal/campaigns"
	"github.com/podkrepi-bg/admin/internal/crud"
	"github.com/podkrepi-bg/admin/internal/expenses"
	"github.com/podkrepi-bg/admin/internal/forms"
	"github.com/podkrepi-bg/admin/internal/i18n"
	"github.com/podkrepi-bg/admin/internal/observability"
	"github.com/podkrepi-bg/admin/internal/platform/cache"
	"github.com/podkrepi-bg/admin/internal/profile"
	"github.com/podkrepi-bg/admin/internal/references"
	"github.com/podkrepi-bg/admin/internal/shared"
	"github.com/podkrepi-bg/admin/internal/transfers"
	"github.com/podkrepi-bg/admin/internal/view"
	"github.com/podkrepi-bg/admin/web"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	catalog, err := i18n.Load(web.Locales, cfg.DefaultLocale)
	if err != nil {
		logger.Error("load translations", slog.Any("error", err))
		os.Exit(1)
	}
	templates, err := view.NewEngine(catalog)
	if err != nil {
		logger.Error("parse templates", slog.Any("error", err))
		os.Exit(1)
	}

	sessionManager := shared.NewSessionManager(redisClient, "podkrepi_admin_session", cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)
	metrics := observability.NewMetrics()

	httpClient := &http.Client{Timeout: cfg.APITimeout}
	keycloak := auth.Config{
		URL:          cfg.KeycloakURL,
		Realm:        cfg.KeycloakRealm,
		ClientID:     cfg.KeycloakClientID,
		ClientSecret: cfg.KeycloakClientSecret,
	}
	authService := auth.NewService(keycloak, httpClient)
	authHandler := auth.NewHandler(logger, authService, templates, sessionManager, csrfManager)

	apiClient, err := api.NewClient(cfg.APIBaseURL, httpClient, cfg.APITimeout, auth.SessionTokens{}, logger)
	if err != nil {
		logger.Error("api client", slog.Any("error", err))
		os.Exit(1)
	}

	formStore := cache.NewFormStore(redisClient, cfg.FormStateTTL)
	views := cache.NewViews(redisClient, cfg.ViewCacheTTL, logger, metrics)
	pipeline := forms.NewPipeline(
		formStore,
		cache.NewGuard(redisClient, cfg.InFlightTTL),
		shared.SessionNotifier{},
		views,
		metrics,
		logger,
	)

	deps := crud.Deps{
		API:       apiClient,
		Views:     views,
		Store:     formStore,
		Pipeline:  pipeline,
		Fetcher:   references.NewFetcher(apiClient),
		Loads:     metrics,
		Templates: templates,
		CSRF:      csrfManager,
		Catalog:   catalog,
		Logger:    logger,
	}
	var resources []*crud.Handler
	for _, res := range []crud.Resource{
		campaigns.Resource(),
		transfers.Resource(),
		expenses.Resource(),
		beneficiaries.Resource(),
		bootcamp.Resource(),
	} {
		resources = append(resources, crud.NewHandler(res, deps))
	}

	router := app.NewRouter(app.RouterParams{
		Logger:         logger,
		Config:         cfg,
		Templates:      templates,
		Catalog:        catalog,
		SessionManager: sessionManager,
		CSRFManager:    csrfManager,
		AuthService:    authService,
		AuthHandler:    authHandler,
		Resources:      resources,
		DiscardHandler: crud.NewDiscardHandler(formStore, logger),
		ProfileHandler: profile.NewHandler(deps, keycloak.PasswordURL()),
		Metrics:        metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr), slog.String("api", cfg.APIBaseURL))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}

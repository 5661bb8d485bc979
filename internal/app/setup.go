// Package app contains the application setup for the catalog service.
package app

import (
	"log/slog"
	"net/http"

	"github.com/abgdnv/catalog/internal/config"
	"github.com/abgdnv/catalog/internal/relation"
	"github.com/abgdnv/catalog/internal/service"
	"github.com/abgdnv/catalog/internal/store"
	"github.com/abgdnv/catalog/internal/transport/rest"
	"github.com/abgdnv/catalog/pkg/auth"
	"github.com/abgdnv/catalog/pkg/messaging"
	"github.com/abgdnv/catalog/pkg/server"
	"github.com/go-chi/chi/v5"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
)

type Dependencies struct {
	CatalogService service.CatalogService
	// Authenticate places the caller of a request into its context.
	Authenticate  func(http.Handler) http.Handler
	Metrics       http.Handler
	AllowedOrigin string
	Logger        *slog.Logger
}

func SetupDependencies(stores store.Stores, authenticate func(http.Handler) http.Handler, publisher messaging.Publisher, metrics http.Handler, cfg *config.Config, logger *slog.Logger) *Dependencies {
	synchronizer := relation.NewSynchronizer(stores.Collections, cfg.Sync.Concurrency, logger)
	cService := service.NewService(stores, synchronizer, auth.ContextResolver{}, publisher, logger)

	return &Dependencies{
		CatalogService: cService,
		Authenticate:   authenticate,
		Metrics:        metrics,
		AllowedOrigin:  cfg.CORS.AllowedOrigin,
		Logger:         logger,
	}
}

// SetupHttpHandler builds the router with the catalog routes and middleware.
// Used by E2E tests to run the application inside httptest.
func SetupHttpHandler(deps *Dependencies) http.Handler {
	mux := server.NewChiRouter(deps.Logger)
	if deps.Authenticate != nil {
		mux.Use(deps.Authenticate)
	}
	wireRoutes(mux, deps)
	return mux
}

func wireRoutes(mux *chi.Mux, deps *Dependencies) {
	if deps.Metrics != nil {
		mux.Method(http.MethodGet, "/metrics", deps.Metrics)
	}
	catalogHandler := rest.NewHandler(deps.CatalogService, auth.ContextResolver{}, deps.AllowedOrigin, deps.Logger)
	catalogHandler.RegisterRoutes(mux)
}

// SetupHttpServer creates and configures an HTTP server for the catalog service.
func SetupHttpServer(deps *Dependencies, cfg *config.Config) *http.Server {
	mux := SetupHttpHandler(deps)

	httpCfg := server.HTTPConfig{
		Port:           cfg.HTTPServer.Port,
		MaxHeaderBytes: cfg.HTTPServer.MaxHeaderBytes,
		ReadTimeout:    cfg.HTTPServer.Timeout.Read,
		WriteTimeout:   cfg.HTTPServer.Timeout.Write,
		IdleTimeout:    cfg.HTTPServer.Timeout.Idle,
		ReadHeader:     cfg.HTTPServer.Timeout.ReadHeader,
	}

	return server.NewHTTPServer(httpCfg, mux, "catalog.http")
}

// SetupGrpcServer initializes the ops gRPC server. It serves the health
// service and, if enabled, reflection.
func SetupGrpcServer(deps *Dependencies, healthServer *health.Server, reflectionEnabled bool) *grpc.Server {
	return server.NewGRPCServer(deps.Logger, reflectionEnabled, server.WithHealth(healthServer))
}

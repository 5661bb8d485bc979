package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/abgdnv/catalog/internal/config"
	"github.com/abgdnv/catalog/internal/store"
	"github.com/abgdnv/catalog/pkg/auth"
	"github.com/abgdnv/catalog/pkg/bootstrap"
	pkgconfig "github.com/abgdnv/catalog/pkg/config"
	"github.com/abgdnv/catalog/pkg/messaging"
	"github.com/abgdnv/catalog/pkg/nats"
	"github.com/abgdnv/catalog/pkg/resilience"
)

// OpenStores connects to the configured backend and returns its stores
// together with a function that releases the connection.
func OpenStores(ctx context.Context, cfg pkgconfig.DatabaseConfig, logger *slog.Logger) (store.Stores, func(), error) {
	switch cfg.Driver {
	case pkgconfig.DriverPostgres:
		if cfg.Migrate {
			if err := store.Migrate(cfg.URL); err != nil {
				return store.Stores{}, nil, err
			}
			logger.Info("database migrations applied")
		}
		dbPool, err := bootstrap.NewDbPool(ctx, cfg.URL, cfg.Timeout)
		if err != nil {
			return store.Stores{}, nil, err
		}
		logger.Info("Successfully connected to the database!", slog.String("driver", cfg.Driver))
		return store.NewPgStore(dbPool), dbPool.Close, nil

	case pkgconfig.DriverMongo:
		client, err := bootstrap.NewMongoClient(ctx, cfg.URL, cfg.Timeout)
		if err != nil {
			return store.Stores{}, nil, err
		}
		logger.Info("Successfully connected to the database!", slog.String("driver", cfg.Driver))
		closeFn := func() {
			if err := client.Disconnect(context.Background()); err != nil {
				logger.Error("failed to disconnect from mongo", slog.String("error", err.Error()))
			}
		}
		return store.NewMongoStore(client.Database(cfg.Name)), closeFn, nil

	case pkgconfig.DriverMemory:
		logger.Warn("using the in-memory store, data is lost on restart")
		return store.NewMemoryStore(), func() {}, nil

	default:
		return store.Stores{}, nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// NewPublisher connects to NATS JetStream when enabled and guards publishing
// with a circuit breaker. Without NATS, events are dropped.
func NewPublisher(ctx context.Context, cfg *config.Config, logger *slog.Logger) (messaging.Publisher, func(), error) {
	if !cfg.NATS.Enabled {
		logger.Info("NATS is disabled, product events are not published")
		return messaging.NoopPublisher{}, func() {}, nil
	}

	nc, err := nats.NewClient(cfg.NATS.Url, cfg.NATS.Timeout)
	if err != nil {
		return nil, nil, err
	}
	js, err := nats.NewJetStreamContext(nc)
	if err != nil {
		return nil, nil, err
	}
	if err := nats.EnsureStream(ctx, js, cfg.NATS.Stream, subjects(cfg.NATS.SubjectPrefix)...); err != nil {
		nc.Close()
		return nil, nil, err
	}
	logger.Info("Successfully connected to NATS", slog.String("stream", cfg.NATS.Stream))

	breaker := resilience.NewCircuitBreaker("nats-publisher", cfg.Resilience.CircuitBreaker)
	publisher := resilience.NewBreakerPublisher(nats.NewNatsPublisher(js, cfg.NATS.SubjectPrefix), breaker)
	closeFn := func() {
		if err := nc.Drain(); err != nil {
			logger.Error("failed to drain NATS connection", slog.String("error", err.Error()))
		}
	}
	return publisher, closeFn, nil
}

func subjects(prefix string) []string {
	all := []string{messaging.ProductUpdatedSubject, messaging.ProductDeletedSubject}
	if prefix == "" {
		return all
	}
	for i, s := range all {
		all[i] = prefix + "." + s
	}
	return all
}

// NewAuthMiddleware returns the middleware that identifies the caller
// according to the auth mode.
func NewAuthMiddleware(ctx context.Context, cfg pkgconfig.AuthConfig, logger *slog.Logger) (func(http.Handler) http.Handler, error) {
	switch cfg.Mode {
	case pkgconfig.AuthModeHeader:
		return auth.TrustHeader, nil
	case pkgconfig.AuthModeJWT:
		verifier, err := auth.NewJWTVerifier(ctx, cfg.IdP)
		if err != nil {
			return nil, err
		}
		return auth.Identify(verifier, logger), nil
	default:
		return nil, fmt.Errorf("unsupported auth mode %q", cfg.Mode)
	}
}

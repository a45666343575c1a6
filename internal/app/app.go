package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/masumislambadsha/zavisoft/internal/catalog"
	"github.com/masumislambadsha/zavisoft/internal/config"
	"github.com/masumislambadsha/zavisoft/internal/event"
	handler "github.com/masumislambadsha/zavisoft/internal/handler/http"
	"github.com/masumislambadsha/zavisoft/internal/service"
	"github.com/masumislambadsha/zavisoft/internal/store"
	"github.com/masumislambadsha/zavisoft/pkg/database"
	"github.com/masumislambadsha/zavisoft/pkg/health"
	"github.com/masumislambadsha/zavisoft/pkg/httpclient"
	pkgkafka "github.com/masumislambadsha/zavisoft/pkg/kafka"
	"github.com/masumislambadsha/zavisoft/pkg/middleware"
	"github.com/masumislambadsha/zavisoft/pkg/tracing"
)

const serviceName = "storefront"

// App wires together all dependencies and runs the storefront service.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	storage        *storage
	publisher      pkgkafka.Publisher
	httpServer     *http.Server
	tracerShutdown func(context.Context) error
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Initialize OpenTelemetry tracing.
	tracerShutdown, err := tracing.InitTracer(ctx, tracing.Config{
		ServiceName:    serviceName,
		ServiceVersion: "0.1.0",
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTELEndpoint,
		SampleRate:     cfg.OTELSampleRate,
		Enabled:        cfg.OTELEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}

	st, err := openStorage(ctx, cfg, logger, prometheus.DefaultRegisterer)
	if err != nil {
		_ = tracerShutdown(context.Background())
		return nil, err
	}

	// Configure slow query logging.
	database.SetSlowQueryLogging(cfg.SlowQueryThreshold(), logger)

	// Initialize Kafka producer.
	var publisher pkgkafka.Publisher = pkgkafka.NopPublisher{}
	if cfg.KafkaEnabled {
		publisher = pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers), logger)
		logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))
	} else {
		logger.Info("kafka disabled; storefront events are discarded")
	}

	// Catalog API client with throttling and a circuit breaker.
	httpCfg := httpclient.DefaultConfig()
	httpCfg.Timeout = cfg.CatalogTimeout
	httpCfg.RequestsPerSecond = cfg.CatalogRPS
	httpCfg.Burst = cfg.CatalogBurst

	cbCfg := httpclient.DefaultCircuitBreakerConfig("catalog")
	cbClient := httpclient.NewCircuitBreakerClient(httpclient.New(httpCfg), cbCfg, logger)
	catalogClient := catalog.NewClient(cfg.CatalogBaseURL, cbClient, logger)
	logger.Info("catalog client initialized",
		slog.String("base_url", cfg.CatalogBaseURL),
		slog.Float64("rps", cfg.CatalogRPS),
		slog.String("breaker", cbCfg.Name),
	)

	// Build the dependency graph.
	opener := store.NewOpener(st.kv, cfg.RecoveryPolicy(), logger)
	eventProducer := event.NewProducer(publisher, logger)
	svcs := handler.Services{
		Cart:     service.NewCartService(opener, catalogClient, eventProducer, logger, cfg.DeliveryFeeCents),
		Wishlist: service.NewWishlistService(opener, catalogClient, eventProducer, logger),
		Catalog:  service.NewCatalogService(catalogClient, opener, logger),
	}

	// Health checks.
	healthHandler := health.NewHandler()
	healthHandler.Register(st.backend, st.kv.Ping)
	healthHandler.RegisterOptional("catalog", catalogClient.Ping)
	if cfg.KafkaEnabled {
		healthHandler.RegisterOptional("kafka", func(ctx context.Context) error {
			return pkgkafka.PingBrokers(ctx, cfg.KafkaBrokers)
		})
	}

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowedOrigins = middleware.ParseOrigins(cfg.CORSAllowedOrigins)

	// HTTP router.
	router := handler.NewRouter(svcs, healthHandler, logger, handler.RouterOptions{
		ServiceName:   serviceName,
		CORS:          corsCfg,
		PprofCIDRs:    cfg.PprofAllowedCIDRs,
		CatalogMaxAge: cfg.CatalogCacheTTL,
	})

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      35 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return &App{
		cfg:            cfg,
		logger:         logger,
		storage:        st,
		publisher:      publisher,
		httpServer:     httpServer,
		tracerShutdown: tracerShutdown,
	}, nil
}

// Run starts the HTTP server and blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
			slog.String("storage", a.storage.backend),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		_ = a.Shutdown()
		return err
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	// Graceful HTTP server shutdown with a 10-second deadline.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
	}

	// Flush pending events before the storage goes away.
	if err := a.publisher.Close(); err != nil {
		a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
	}

	if err := a.storage.close(); err != nil {
		a.logger.Error("storage close error",
			slog.String("backend", a.storage.backend),
			slog.String("error", err.Error()),
		)
	}

	if err := a.tracerShutdown(shutdownCtx); err != nil {
		a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
	}

	a.logger.Info("application shutdown complete")
	return nil
}

package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/navisouza/delivery-api/internal/config"
	"github.com/navisouza/delivery-api/internal/event"
	handler "github.com/navisouza/delivery-api/internal/handler/http"
	"github.com/navisouza/delivery-api/internal/repository"
	"github.com/navisouza/delivery-api/internal/repository/postgres"
	redisrepo "github.com/navisouza/delivery-api/internal/repository/redis"
	"github.com/navisouza/delivery-api/internal/service"
	"github.com/navisouza/delivery-api/migrations"
	"github.com/navisouza/delivery-api/pkg/database"
	"github.com/navisouza/delivery-api/pkg/health"
	pkgkafka "github.com/navisouza/delivery-api/pkg/kafka"
	"github.com/navisouza/delivery-api/pkg/tracing"
)

// App wires together all dependencies and runs the order service.
type App struct {
	cfg        *config.ServerConfig
	logger     *slog.Logger
	service    *service.OrderService
	publisher  pkgkafka.Publisher
	health     *health.Handler
	httpServer *http.Server
	closers    []func()
	shutdownTr func(context.Context) error
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.ServerConfig, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	a := &App{cfg: cfg, logger: logger}

	shutdownTr, err := tracing.InitTracer(ctx, cfg.Tracing)
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}
	a.shutdownTr = shutdownTr

	database.SetSlowQueryLogging(cfg.SlowQuery, logger)

	healthHandler := health.NewHandler(handler.ServiceName)
	healthHandler.SetTimeout(cfg.HealthTimeout)
	a.health = healthHandler

	repo, err := a.openRepository(ctx, healthHandler)
	if err != nil {
		a.closeAll()
		return nil, err
	}

	// Kafka is optional; without brokers events are dropped.
	if len(cfg.KafkaBrokers) > 0 {
		producer := pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers), logger)
		a.publisher = producer
		healthHandler.Register("kafka", producer.Ping)
		logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))
	} else {
		a.publisher = pkgkafka.NoopPublisher{}
		logger.Info("no kafka brokers configured, order events disabled")
	}

	eventProducer := event.NewProducer(a.publisher, logger)
	a.service = service.NewOrderService(repo, eventProducer, logger)

	router := handler.NewRouter(a.service, healthHandler, logger, handler.RouterConfig{
		CORSOrigins:    cfg.CORSOrigins,
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
		TrustProxy:     cfg.TrustProxy,
	})

	a.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	return a, nil
}

// openRepository connects the configured storage driver and registers its
// readiness check.
func (a *App) openRepository(ctx context.Context, hh *health.Handler) (repository.OrderRepository, error) {
	switch a.cfg.StorageDriver {
	case config.StorageDriverRedis:
		client, err := database.NewRedisClient(ctx, a.cfg.Redis)
		if err != nil {
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		a.closers = append(a.closers, func() {
			if err := client.Close(); err != nil {
				a.logger.Error("redis close error", slog.String("error", err.Error()))
			}
		})
		hh.Register("redis", func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		})
		a.logger.Info("connected to Redis", slog.String("addr", a.cfg.Redis.Addr()))
		return redisrepo.NewOrderRepository(client), nil

	default:
		pool, err := database.NewPostgresPool(ctx, &a.cfg.Postgres, a.logger)
		if err != nil {
			return nil, fmt.Errorf("connect to postgres: %w", err)
		}
		a.closers = append(a.closers, pool.Close)
		a.logger.Info("connected to PostgreSQL",
			slog.String("host", a.cfg.Postgres.Host),
			slog.Int("port", a.cfg.Postgres.Port),
			slog.String("database", a.cfg.Postgres.DBName),
		)

		if err := database.RunMigrations(ctx, pool, migrations.FS, a.logger); err != nil {
			return nil, fmt.Errorf("run migrations: %w", err)
		}
		if err := database.RegisterPoolMetrics(prometheus.DefaultRegisterer, pool, handler.ServiceName); err != nil {
			a.logger.Warn("pool metrics not registered", slog.String("error", err.Error()))
		}
		hh.Register("postgres", pool.Ping)
		return postgres.NewOrderRepository(pool), nil
	}
}

// Run seeds the store, starts the HTTP server and blocks until the context
// is canceled.
func (a *App) Run(ctx context.Context) error {
	if n, err := a.service.Seed(ctx, a.cfg.SeedFile); err != nil {
		a.logger.Error("seed failed", slog.String("error", err.Error()))
	} else if n > 0 {
		a.logger.Info("store seeded", slog.Int("orders", n))
	}

	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		a.closeAll()
		return err
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
	}

	if err := a.publisher.Close(); err != nil {
		a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
	}

	a.closeAll()

	if err := a.shutdownTr(shutdownCtx); err != nil {
		a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
	}

	a.logger.Info("application shutdown complete")
	return nil
}

func (a *App) closeAll() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

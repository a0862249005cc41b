package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"moduscap-be/internal/api"
	"moduscap-be/internal/catalog"
	"moduscap-be/internal/config"
	"moduscap-be/internal/db"
	"moduscap-be/internal/events"
	"moduscap-be/internal/logger"
	"moduscap-be/internal/metrics"
	"moduscap-be/internal/middleware"
	"moduscap-be/internal/order"
	"moduscap-be/internal/payment"
	"moduscap-be/internal/pricing"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const redisPingTimeout = 3 * time.Second

var (
	initDBFunc      = db.NewDatabase
	startServerFunc = serve
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		logger.L().Fatal("server stopped", zap.Error(err))
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger.Init(cfg.AppEnv)
	defer logger.Sync()

	catalog.SetDefaultLocale(cfg.Locale.Default)

	database, err := initDBFunc(cfg)
	if err != nil {
		return err
	}
	defer database.Close()

	handler, cleanup := newServer(ctx, cfg, database)
	defer cleanup()

	srv := api.NewServer(handler, cfg.AppPort, cfg.HTTP)
	logger.L().Info("http server starting", zap.String("addr", srv.Addr()), zap.String("env", cfg.AppEnv))

	return startServerFunc(ctx, srv, cfg.HTTP.ShutdownTimeout)
}

// newServer wires repositories, services and the router. The returned func
// releases the Redis client and the event producer.
func newServer(ctx context.Context, cfg *config.Config, database *sql.DB) (http.Handler, func()) {
	log := logger.L()
	reg := metrics.NewRegistry()

	var closers []func() error

	catalogRepo := catalog.NewRepository(database)
	var (
		optionFinder pricing.OptionFinder = catalogRepo
		invalidator  catalog.Invalidator
	)
	if client := connectRedis(ctx, cfg.Redis); client != nil {
		cached := catalog.NewCachedOptionFinder(catalogRepo, client, cfg.Redis.OptionTTL, reg)
		optionFinder = cached
		invalidator = cached
		closers = append(closers, client.Close)
	}

	var publisher order.EventPublisher = events.NoopPublisher{}
	if cfg.Kafka.Enabled() {
		producer := events.NewProducer(cfg.Kafka)
		publisher = producer
		closers = append(closers, producer.Close)
		log.Info("kafka publisher enabled", zap.Strings("brokers", cfg.Kafka.Brokers), zap.String("topic", cfg.Kafka.OrderTopic))
	}

	bank, err := payment.NewBankDetails(cfg.Payment)
	if err != nil {
		log.Warn("payment info disabled", zap.Error(err))
	}

	catalogSvc := catalog.NewService(catalogRepo, invalidator)
	calculator := pricing.NewCalculator(optionFinder, reg)
	orderSvc := order.NewService(order.NewRepository(database), catalogSvc, calculator, publisher, reg)

	limiter := middleware.NewRateLimiter(cfg.InternalSecretKey, reg)
	go limiter.Cleanup(ctx)

	router := api.NewRouter(api.Deps{
		Catalog:    catalogSvc,
		Calculator: calculator,
		Orders:     orderSvc,
		Bank:       bank,
		Metrics:    reg,
		Locales:    cfg.Locale,
	},
		logger.RequestIDMiddleware,
		logger.LoggingMiddleware,
		chimw.Recoverer,
		limiter.Middleware,
	)

	cleanup := func() {
		for _, c := range closers {
			if err := c(); err != nil {
				log.Warn("close resource", zap.Error(err))
			}
		}
	}
	return router, cleanup
}

// connectRedis returns nil when Redis is not configured or unreachable; the
// option cache is then skipped.
func connectRedis(ctx context.Context, cfg config.RedisConfig) *redis.Client {
	if !cfg.Enabled() {
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, redisPingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.L().Warn("redis unreachable, option cache disabled", zap.String("addr", cfg.Addr), zap.Error(err))
		_ = client.Close()
		return nil
	}
	return client
}

// serve runs srv until ctx is cancelled, then shuts it down gracefully.
func serve(ctx context.Context, srv *api.Server, shutdownTimeout time.Duration) error {
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Run() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.L().Info("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return <-errCh
}

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"carcare/internal/api"
	"carcare/internal/catalog"
	"carcare/internal/config"
	"carcare/internal/database"
	"carcare/internal/domain"
	"carcare/internal/events"
	"carcare/internal/logging"
	"carcare/internal/metrics"
	"carcare/internal/pricing"
	"carcare/internal/repository"
	"carcare/internal/service"
	"carcare/internal/worker"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	cfg, logger, closer, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	if closer != nil {
		defer (func() { _ = closer.Close() })()
	}

	cat, err := loadCatalog(cfg.Catalog)
	if err != nil {
		logger.Error().Err(err).Str("catalog_path", cfg.Catalog.Path).Msg("load catalog")
		return err
	}

	db, err := database.Open(cfg.Database, logger)
	if err != nil {
		logger.Error().Err(err).Str("driver", cfg.Database.Driver).Msg("init database")
		return err
	}
	defer db.Close()

	redisClient := initRedis(cfg, logger)
	if redisClient != nil {
		defer (func() { _ = repository.Close(redisClient) })()
	}

	feed, publisher, kafka := initEvents(cfg, redisClient, logger)
	if kafka != nil {
		defer (func() { _ = kafka.Close() })()
	}

	guard := initGuard(redisClient, logger)
	resolver := pricing.NewResolver(db, cat,
		worker.FixedRetry(cfg.Booking.PriceFetchRetries, cfg.Booking.PriceFetchBackoff), logger)

	bookings := service.NewBookingService(db, db, guard, publisher, resolver, cat, cfg.Booking, logger)
	httpServer := api.NewHTTPServer(cfg.API, api.Deps{
		Bookings:  bookings,
		Users:     service.NewUserService(db, db, cfg.Booking.AdminEmail, logger),
		Prices:    service.NewPriceService(db, resolver, cat, logger),
		Catalog:   cat,
		Feed:      feed,
		Resync:    worker.FixedRetry(3, time.Second),
		Heartbeat: cfg.Booking.StreamHeartbeat,
	}, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Warm the price table; the resolver retries on first use if this fails.
	if err := resolver.Refresh(ctx); err != nil {
		logger.Warn().Err(err).Msg("initial price load failed")
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		database.NewBackupService(db, cfg.Backup, logger).Start(gctx)
		return nil
	})
	if cfg.Monitoring.PrometheusEnabled {
		metrics.Register()
		g.Go(func() error {
			return serveMetrics(gctx, cfg.Monitoring.PrometheusPort, logger)
		})
	}
	g.Go(func() error {
		logger.Info().Int("http_port", cfg.API.HTTP.Port).Msg("API server started")
		if err := httpServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info().Msg("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	err = g.Wait()
	logger.Info().Msg("API server stopped")
	return err
}

func loadConfigAndLogger() (*config.Config, *zerolog.Logger, io.Closer, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load config: %w", err)
	}

	base, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("init logger: %w", err)
	}
	return cfg, logging.Component(base, "api-main"), closer, nil
}

func loadCatalog(cfg config.CatalogConfig) (*catalog.Catalog, error) {
	if cfg.Path == "" {
		return catalog.Default(), nil
	}
	return catalog.Load(cfg.Path)
}

func initRedis(cfg *config.Config, logger *zerolog.Logger) *redis.Client {
	if cfg.Redis.Address == "" {
		logger.Info().Msg("redis not configured, using in-process locks and feed")
		return nil
	}

	client := repository.NewRedisClient(cfg.Redis)
	pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := repository.Ping(pingCtx, client); err != nil {
		// Keep the client: the failover guard switches back once it recovers.
		logger.Warn().Err(err).Msg("redis ping failed, starting on fallbacks")
	} else {
		logger.Info().Str("addr", cfg.Redis.Address).Msg("redis connected")
	}
	return client
}

func initGuard(client *redis.Client, logger *zerolog.Logger) domain.ActionGuard {
	local := repository.NewMemoryGuard()
	if client == nil {
		return local
	}
	return repository.NewFailoverGuard(repository.NewRedisGuard(client), local, logger)
}

// initEvents picks the change feed and assembles the publisher chain. With
// Redis every replica sees every change; without it the feed is in-process.
func initEvents(cfg *config.Config, client *redis.Client, logger *zerolog.Logger) (domain.ChangeFeed, domain.ChangePublisher, *events.KafkaPublisher) {
	var (
		feed  domain.ChangeFeed
		sinks []domain.ChangePublisher
	)
	if client != nil {
		hub := events.NewRedisHub(client, cfg.Booking.SubscriberBuffer, logger)
		feed, sinks = hub, append(sinks, hub)
	} else {
		hub := events.NewHub(cfg.Booking.SubscriberBuffer, logger)
		feed, sinks = hub, append(sinks, hub)
	}

	var kafka *events.KafkaPublisher
	if cfg.Kafka.Enabled {
		kafka = events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		sinks = append(sinks, kafka)
		logger.Info().Strs("brokers", cfg.Kafka.Brokers).Str("topic", cfg.Kafka.Topic).Msg("kafka change log enabled")
	}
	return feed, events.NewFanout(logger, sinks...), kafka
}

func serveMetrics(ctx context.Context, port int, logger *zerolog.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	logger.Info().Int("port", port).Msg("metrics server started")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error().Err(err).Msg("metrics server error")
		return err
	}
	return nil
}

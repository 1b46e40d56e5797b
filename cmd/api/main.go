package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"carrental/internal/api"
	"carrental/internal/config"
	"carrental/internal/database"
	"carrental/internal/domain"
	"carrental/internal/events"
	"carrental/internal/logging"
	"carrental/internal/metrics"
	"carrental/internal/repository"
	"carrental/internal/service"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	readinessInterval = 15 * time.Second
	sweepInterval     = 5 * time.Minute
	shutdownTimeout   = 10 * time.Second
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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := initDatabase(ctx, cfg, &logger)
	if err != nil {
		return err
	}
	defer db.Close()

	redisClient, limits := initRateLimits(ctx, cfg, &logger)
	if redisClient != nil {
		defer (func() { _ = repository.Close(redisClient) })()
	}

	eventBus := events.NewEventBus()
	subscribeBookingEvents(eventBus, &logger)

	inventory := service.NewCarInventory(db, &logger)
	deps := api.Deps{
		Bookings:  service.NewBookingService(db, inventory, eventBus, &logger),
		Query:     service.NewBookingQuery(db),
		Cars:      service.NewCarService(db, &logger),
		Users:     db,
		Health:    db,
		RateLimit: limits,
	}
	httpServer := api.NewHTTPServer(cfg.API, deps, &logger)

	var grpcServer *api.GRPCServer
	if cfg.API.GRPC.Enabled {
		grpcServer, err = api.NewGRPCServer(&cfg.API, db, &logger)
		if err != nil {
			logger.Error().Err(err).Msg("create grpc server")
			return err
		}
	}

	if cfg.Backup.Enabled {
		backupService := database.NewBackupService(db, cfg.Backup, &logger)
		go backupService.Start(ctx)
	}

	startMetrics(ctx, cfg, &logger)

	return startServers(ctx, grpcServer, httpServer, cfg, &logger)
}

func loadConfigAndLogger() (*config.Config, zerolog.Logger, io.Closer, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("load config: %w", err)
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("init logger: %w", err)
	}
	logger := baseLogger.With().Str("component", "api-main").Logger()

	return cfg, logger, closer, nil
}

func initDatabase(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (*database.DB, error) {
	db, err := database.NewDB(cfg.Database.Path, logger)
	if err != nil {
		logger.Error().Err(err).Str("db_path", cfg.Database.Path).Msg("init database")
		return nil, err
	}

	if cfg.Seed.Path == "" {
		return db, nil
	}
	seed, err := database.LoadSeedFile(cfg.Seed.Path)
	if err != nil {
		logger.Warn().Err(err).Str("seed_path", cfg.Seed.Path).Msg("seed file not loaded, starting empty")
		return db, nil
	}
	cars, err := db.Seed(ctx, seed)
	if err != nil {
		_ = db.Close()
		logger.Error().Err(err).Str("seed_path", cfg.Seed.Path).Msg("apply seed")
		return nil, err
	}
	logger.Info().Int("users", len(seed.Users)).Int("cars", cars).Msg("seed applied")
	return db, nil
}

// initRateLimits prefers Redis for per-user counters and falls back to process memory
// when Redis is not configured or goes away.
func initRateLimits(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (*redis.Client, domain.RateLimitRepository) {
	memory := repository.NewMemoryRateLimitRepository()
	go sweepLoop(ctx, memory.Sweep)

	if cfg.Redis.Address == "" {
		logger.Info().Msg("redis not configured, rate limits kept in memory")
		return nil, memory
	}

	redisClient := repository.NewRedisClient(cfg.Redis)
	if err := repository.Ping(ctx, redisClient); err != nil {
		logger.Warn().Err(err).Str("addr", cfg.Redis.Address).Msg("redis unavailable, using memory until it recovers")
	} else {
		logger.Info().Str("addr", cfg.Redis.Address).Msg("redis connected")
	}

	primary := repository.NewRedisRateLimitRepository(redisClient)
	return redisClient, repository.NewFailoverRateLimitRepository(primary, memory, logger)
}

// sweepLoop runs each sweep every sweepInterval until ctx is done.
func sweepLoop(ctx context.Context, sweeps ...func() int) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for _, sweep := range sweeps {
				sweep()
			}
		}
	}
}

func subscribeBookingEvents(bus *events.EventBus, logger *zerolog.Logger) {
	audit := logger.With().Str("component", "audit").Logger()

	bus.SubscribeAll(func(ev *events.Event) error {
		metrics.IncBookingEvent(ev.Type)

		var payload events.BookingEventPayload
		if err := json.Unmarshal(ev.Payload, &payload); err != nil {
			audit.Error().Err(err).Str("event", ev.Type).Msg("event bus: decode payload")
			return nil
		}
		audit.Info().
			Str("event", ev.Type).
			Int64("booking_id", payload.BookingID).
			Int64("car_id", payload.CarID).
			Int64("customer_id", payload.CustomerID).
			Str("status", payload.Status).
			Str("previous_status", payload.PreviousStatus).
			Float64("total_price", payload.TotalPrice).
			Time("at", ev.CreatedAt).
			Msg("booking event")
		return nil
	})
}

func startMetrics(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) {
	metrics.Register()
	if !cfg.Monitoring.PrometheusEnabled {
		return
	}
	go startMetricsServer(ctx, cfg.Monitoring.PrometheusPort, logger)
}

func startServers(
	ctx context.Context,
	grpcServer *api.GRPCServer,
	httpServer *api.HTTPServer,
	cfg *config.Config,
	logger *zerolog.Logger,
) error {
	errCh := make(chan error, 2)

	go sweepLoop(ctx, httpServer.SweepIdleClients)

	if grpcServer != nil {
		go sweepLoop(ctx, grpcServer.SweepIdleClients)
		go grpcServer.WatchReadiness(ctx, readinessInterval)
		go func() {
			if err := grpcServer.Serve(); err != nil {
				logger.Error().Err(err).Msg("grpc server stopped")
			}
		}()
	}

	go func() {
		if err := httpServer.Start(); err != nil {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	event := logger.Info().Int("http_port", cfg.API.HTTP.Port)
	if grpcServer != nil {
		event = event.Str("grpc_addr", grpcServer.Addr())
	}
	event.Msg("API server started")

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info().Msg("shutdown signal received")
	case runErr = <-errCh:
		logger.Error().Err(runErr).Msg("server failed, shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if grpcServer != nil {
		grpcServer.Shutdown(shutdownCtx)
	}
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("http shutdown")
	}

	logger.Info().Msg("API server stopped")
	return runErr
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("metrics server error")
	}
}

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"hebergement/internal/api"
	"hebergement/internal/arrivals"
	"hebergement/internal/availability"
	"hebergement/internal/cache"
	"hebergement/internal/config"
	"hebergement/internal/database"
	"hebergement/internal/events"
	"hebergement/internal/metrics"
	"hebergement/internal/models"
	"hebergement/internal/service"
)

func main() {
	output := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	logger := zerolog.New(output).With().Timestamp().Logger()

	cfg, err := config.Load(os.Getenv("HEBERGEMENT_CONFIG_PATH"))
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if level, err := zerolog.ParseLevel(cfg.App.LogLevel); err == nil {
		logger = logger.Level(level)
	}

	db, err := database.Open(cfg.Database, &logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("open db error")
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	bus := events.NewEventBus(&logger)
	if cfg.RabbitMQ.URL != "" {
		publisher, err := events.DialAMQP(cfg.RabbitMQ.URL, cfg.RabbitMQ.Queue, &logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("connect rabbitmq error")
		}
		defer publisher.Close()
		bus.Subscribe(events.All, publisher.Handler())
	}

	var (
		catalog     availability.Store = db
		invalidator service.Invalidator
		rdb         *redis.Client
	)
	if cfg.Redis.Address != "" && cfg.Redis.CacheTTLSeconds > 0 {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.Redis.Address, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		defer rdb.Close()
		cached := cache.NewCatalogCache(db, rdb, cfg.CacheTTL(), &logger)
		catalog, invalidator = cached, cached
	}

	booking := service.NewBookingService(db, catalog, bus, service.BookingOptions{
		DefaultStatus: models.ReservationStatus(cfg.Booking.DefaultStatus),
		MaxNights:     cfg.BookingMaxNights(),
		Timeout:       cfg.StoreTimeout(),
	}, &logger)
	rooms := service.NewRoomService(db, bus, invalidator, &logger)
	conventions := service.NewConventionService(db, bus, invalidator, &logger)

	go startHealthServer(ctx, cfg.Monitoring.HealthCheckPort, db, rdb, &logger)

	if cfg.Monitoring.PrometheusEnabled {
		metrics.Register()
		go startMetricsServer(ctx, cfg.Monitoring.PrometheusPort, &logger)
	}

	backups := database.NewBackupService(db, cfg.Backup, cfg.BackupInterval(), &logger)
	go backups.Start(ctx)

	if cfg.Arrivals.Enabled {
		scheduler, err := arrivals.NewScheduler(cfg.Arrivals, db, bus, &logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("arrivals scheduler error")
		}
		go scheduler.Start(ctx)
	}

	var limiter *api.IPRateLimiter
	if rpm := cfg.RequestsPerMinute(); rpm > 0 {
		limiter = api.NewIPRateLimiter(rpm, cfg.API.Burst, 10*time.Minute)
	}
	server := api.NewHTTPServer(cfg.API.Port, booking, rooms, conventions, limiter, &logger)

	logger.Info().Str("driver", db.Driver()).Msg("Booking engine started")
	if err := server.Start(ctx); err != nil {
		logger.Error().Err(err).Msg("api server error")
	}
}

func startHealthServer(ctx context.Context, port int, db *database.DB, rdb *redis.Client, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, _ *http.Request) {
		ctxPing, cancel := context.WithTimeout(ctx, time.Second)
		defer cancel()
		if err := db.PingContext(ctxPing); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		if rdb != nil {
			if err := rdb.Ping(ctxPing).Err(); err != nil {
				http.Error(w, "redis not ready", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})
	serve(ctx, port, mux, "health", logger)
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	serve(ctx, port, mux, "metrics", logger)
}

func serve(ctx context.Context, port int, h http.Handler, name string, logger *zerolog.Logger) {
	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: h, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Str("server", name).Msg("server error")
	}
}

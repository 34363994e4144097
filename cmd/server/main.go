package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"quicktable/internal/api"
	"quicktable/internal/booking"
	"quicktable/internal/cache"
	"quicktable/internal/config"
	"quicktable/internal/database"
	"quicktable/internal/events"
	"quicktable/internal/metrics"
	"quicktable/internal/notify"
	"quicktable/internal/reconcile"
	"quicktable/internal/schedule"
)

func main() {
	// Initialize logger
	output := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	logger := zerolog.New(output).With().Timestamp().Logger()

	// .env is optional; real deployments set env vars directly.
	_ = godotenv.Load()

	cfg, err := config.Load(os.Getenv("QUICKTABLE_CONFIG_PATH"))
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}

	db, err := database.NewDB(cfg.Database.Path, &logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("open db error")
	}
	defer db.Close()

	var rdb *redis.Client
	var readCache *cache.Cache
	if cfg.Redis.Address != "" && cfg.Redis.CacheTTLSeconds > 0 {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.Redis.Address, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		readCache = cache.New(rdb, time.Duration(cfg.Redis.CacheTTLSeconds)*time.Second)
		logger.Info().Str("addr", cfg.Redis.Address).Msg("redis cache enabled")
	}

	bus := events.NewEventBus()

	var notifier booking.Notifier = notify.Noop{}
	if cfg.Notifications.Enabled {
		notifier = notify.NewThrottled(
			notify.NewLogNotifier(logger),
			cfg.Notifications.PerSecond,
			cfg.Notifications.Burst,
		)
	}

	hours := schedule.NewService(db, logger)
	bookings := booking.NewService(db, hours, notifier, bus, logger)
	reconciler := reconcile.New(db, hours, notifier, bus, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Monitoring.HealthCheckPort == 0 {
		cfg.Monitoring.HealthCheckPort = 8090
	}
	go startHealthServer(ctx, cfg.Monitoring.HealthCheckPort, db, rdb, &logger)

	if cfg.Monitoring.PrometheusEnabled {
		if cfg.Monitoring.PrometheusPort == 0 {
			cfg.Monitoring.PrometheusPort = 9090
		}
		metrics.Register()
		go startMetricsServer(ctx, cfg.Monitoring.PrometheusPort, &logger)
	}

	if cfg.Backup.Enabled {
		go startBackupLoop(ctx, db, cfg, &logger)
	}

	server := api.NewHTTPServer(cfg.Server.Port, bookings, hours, reconciler, db, bus, readCache, logger)
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(ctxShutdown); err != nil {
			logger.Error().Err(err).Msg("server shutdown error")
		}
	}()

	logger.Info().Msg("quicktable started")
	if err := server.Start(); err != nil {
		logger.Fatal().Err(err).Msg("server error")
	}
}

func startBackupLoop(ctx context.Context, db *database.DB, cfg *config.Config, logger *zerolog.Logger) {
	if cfg.Backup.Path == "" {
		cfg.Backup.Path = "backups"
	}
	if cfg.Backup.IntervalHours <= 0 {
		cfg.Backup.IntervalHours = 24
	}
	if cfg.Backup.RetentionDays <= 0 {
		cfg.Backup.RetentionDays = 14
	}

	interval := time.Duration(cfg.Backup.IntervalHours) * time.Hour
	retention := time.Duration(cfg.Backup.RetentionDays) * 24 * time.Hour

	// First backup shortly after startup, then on the interval.
	select {
	case <-time.After(1 * time.Minute):
		runBackupTask(ctx, db, cfg, retention, logger)
	case <-ctx.Done():
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			runBackupTask(ctx, db, cfg, retention, logger)
		case <-ctx.Done():
			return
		}
	}
}

func runBackupTask(ctx context.Context, db *database.DB, cfg *config.Config, retention time.Duration, logger *zerolog.Logger) {
	timestamp := time.Now().Format("20060102_150405")
	dest := filepath.Join(cfg.Backup.Path, fmt.Sprintf("quicktable_%s.db", timestamp))

	if err := db.Backup(ctx, dest); err != nil {
		logger.Error().Err(err).Msg("backup failed")
	}

	deleted, err := db.CleanupBackups(cfg.Backup.Path, retention)
	if err != nil {
		logger.Error().Err(err).Msg("backup cleanup failed")
	} else if deleted > 0 {
		logger.Info().Int("deleted", deleted).Msg("cleaned up old backups")
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

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("health server error")
	}
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
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

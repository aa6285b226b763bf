package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/UnknownOlympus/cartographer/internal/api"
	"github.com/UnknownOlympus/cartographer/internal/api/handler"
	"github.com/UnknownOlympus/cartographer/internal/config"
	"github.com/UnknownOlympus/cartographer/internal/geocoding"
	"github.com/UnknownOlympus/cartographer/internal/metrics"
	"github.com/UnknownOlympus/cartographer/internal/queue"
	"github.com/UnknownOlympus/cartographer/internal/quota"
	"github.com/UnknownOlympus/cartographer/internal/repository"
	"github.com/UnknownOlympus/cartographer/internal/service"
	"github.com/lmittmann/tint"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

// Constants for different environment types.
const (
	envLocal = "local"
	envDev   = "development"
	envProd  = "production"
)

const shutdownTimeout = 10 * time.Second

// main is the entry point of the application.
func main() {
	// Create a context that will be canceled when an interrupt signal is received.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.MustLoad()
	logger := setupLogger(cfg.Env)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	appMetrics := metrics.NewMetrics(reg)

	connString := repository.ConnString(
		cfg.Database.Host, cfg.Database.Port, cfg.Database.User, cfg.Database.Password, cfg.Database.Name,
	)
	if err := repository.RunMigrations(connString); err != nil {
		log.Fatalf("Failed to apply migrations: %v", err)
	}

	dtb, err := repository.NewDatabase(ctx, connString)
	if err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}
	defer dtb.Close()

	repo := repository.NewRepository(dtb, logger)

	geoProvider, err := newRateLimitedProvider(ctx, cfg, logger, appMetrics)
	if err != nil {
		log.Fatalf("Failed to create geocoding provider: %v", err)
	}
	logger.InfoContext(ctx, "Geocoding provider initialized",
		"type", cfg.Geocoder.Provider, "limiter", cfg.Geocoder.Limiter, "interval", cfg.Geocoder.Interval)

	tracker := quota.NewTracker(repo, cfg.MonthlyLimit, cfg.Location)
	jobQueue := queue.NewQueue(repo, tracker, logger, appMetrics)
	worker := service.NewWorker(logger, repo, geoProvider, appMetrics, cfg.PollInterval)

	router := api.NewRouter(api.Dependencies{
		Logger:            logger,
		WorkerToken:       cfg.WorkerToken,
		HealthHandler:     handler.NewHealthHandler(dtb, logger),
		MetricsHandler:    promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		UploadHandler:     handler.NewUploadHandler(jobQueue, time.Now, logger),
		ProcessOneHandler: handler.NewProcessOneHandler(worker, logger),
		UsageHandler:      handler.NewUsageHandler(tracker, time.Now, logger),
		GeocodeHandler:    handler.NewGeocodeHandler(geoProvider, logger),
	})

	if cfg.WorkerToken == "" {
		logger.WarnContext(ctx, "WORKER_TOKEN is not set, the worker trigger will reject every request")
	}

	if cfg.PollInterval > 0 {
		go worker.Run(ctx)
	}

	logger.InfoContext(ctx, "Application started. Press Ctrl+C to stop.")

	if err = serve(ctx, logger, router, cfg.Port); err != nil {
		logger.ErrorContext(ctx, "HTTP server failed", "error", err)
	}

	logger.InfoContext(ctx, "Application stopped gracefully.")
}

// newRateLimitedProvider builds the configured provider behind the configured gate.
// Request duration is observed inside the gate.
func newRateLimitedProvider(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
	appMetrics *metrics.Metrics,
) (geocoding.Provider, error) {
	provider, err := geocoding.NewProvider(geocoding.ProviderConfig{
		Type:      geocoding.ProviderType(cfg.Geocoder.Provider),
		APIKey:    cfg.Geocoder.APIKey,
		BaseURL:   cfg.Geocoder.BaseURL,
		UserAgent: cfg.Geocoder.UserAgent,
		Language:  cfg.Geocoder.Language,
		Logger:    logger,
	})
	if err != nil {
		return nil, err
	}

	limiterConfig := geocoding.LimiterConfig{
		Kind:     geocoding.LimiterKind(cfg.Geocoder.Limiter),
		Interval: cfg.Geocoder.Interval,
	}
	if limiterConfig.Kind == geocoding.LimiterRedis {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
		}
		client := redis.NewClient(opts)
		if err = client.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		limiterConfig.Redis = client
	}

	limiter, err := geocoding.NewLimiter(limiterConfig)
	if err != nil {
		return nil, err
	}

	timed := geocoding.Timed(provider, appMetrics.RequestSeconds.WithLabelValues(cfg.Geocoder.Provider))

	return geocoding.RateLimited(timed, limiter), nil
}

// serve runs the HTTP server until ctx is cancelled, then shuts it down gracefully.
func serve(ctx context.Context, log *slog.Logger, h http.Handler, port int) error {
	readTimeout := 5
	writeTimeout := 30
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      h,
		ReadTimeout:  time.Duration(readTimeout) * time.Second,
		WriteTimeout: time.Duration(writeTimeout) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.InfoContext(ctx, "Starting HTTP server", "port", port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.InfoContext(ctx, "Shutdown signal received. Stopping application...")

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	return server.Shutdown(shutdownCtx)
}

// setupLogger initializes and returns a logger based on the environment provided.
func setupLogger(env string) *slog.Logger {
	var log *slog.Logger

	switch env {
	case envLocal:
		log = slog.New(
			tint.NewHandler(os.Stdout, &tint.Options{
				Level:      slog.LevelDebug,
				AddSource:  true,
				TimeFormat: time.Kitchen,
			}),
		)
	case envDev:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level:     slog.LevelInfo,
				AddSource: false,
			}),
		)
	case envProd:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level:       slog.LevelWarn,
				AddSource:   false,
				ReplaceAttr: dropTime,
			}),
		)
	default:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level:       slog.LevelError,
				AddSource:   false,
				ReplaceAttr: dropTime,
			}),
		)

		log.Error(
			"The env parameter was not specified or was invalid. Logging will be minimal, by default.",
			slog.String("available_envs", "local, development, production"))
	}

	return log
}

func dropTime(_ []string, a slog.Attr) slog.Attr {
	if a.Key == slog.TimeKey {
		return slog.Attr{}
	}
	return a
}

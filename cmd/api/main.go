package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/john-jeavons/kenya-ceramic-project/internal/config"
	"github.com/john-jeavons/kenya-ceramic-project/internal/database"
	idempostgres "github.com/john-jeavons/kenya-ceramic-project/internal/idempotency/postgres"
	"github.com/john-jeavons/kenya-ceramic-project/internal/notify"
	ordershttp "github.com/john-jeavons/kenya-ceramic-project/internal/orders/adapters/http"
	orderspostgres "github.com/john-jeavons/kenya-ceramic-project/internal/orders/adapters/postgres"
	"github.com/john-jeavons/kenya-ceramic-project/internal/orders/adapters/rediscache"
	ordersapp "github.com/john-jeavons/kenya-ceramic-project/internal/orders/app"
	ordersmetrics "github.com/john-jeavons/kenya-ceramic-project/internal/orders/metrics"
	ordersports "github.com/john-jeavons/kenya-ceramic-project/internal/orders/ports"
	paymentshttp "github.com/john-jeavons/kenya-ceramic-project/internal/payments/adapters/http"
	"github.com/john-jeavons/kenya-ceramic-project/internal/payments/adapters/intasend"
	paymentspostgres "github.com/john-jeavons/kenya-ceramic-project/internal/payments/adapters/postgres"
	paymentsapp "github.com/john-jeavons/kenya-ceramic-project/internal/payments/app"
	paymentsmetrics "github.com/john-jeavons/kenya-ceramic-project/internal/payments/metrics"
	paymentsports "github.com/john-jeavons/kenya-ceramic-project/internal/payments/ports"
	"github.com/john-jeavons/kenya-ceramic-project/internal/telemetry"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := telemetry.NewLogger(parseLogLevel(cfg.Telemetry.LogLevel))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tel, err := telemetry.Initialize(ctx, telemetry.Config{
		ServiceName:    cfg.Service.Name,
		ServiceVersion: cfg.Service.Version,
		Environment:    cfg.Service.Environment,
		OTLPEndpoint:   cfg.Telemetry.OTelEndpoint,
		EnableTracing:  cfg.Telemetry.EnableTracing && cfg.Telemetry.OTelEndpoint != "",
		EnableMetrics:  cfg.Telemetry.EnableMetrics && cfg.Telemetry.OTelEndpoint != "",
		SampleRate:     cfg.Telemetry.SampleRate,
	})
	if err != nil {
		logger.Error("failed to initialize telemetry", "error", err)
		os.Exit(1)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tel.Shutdown(shutdownCtx); err != nil {
			logger.Error("telemetry shutdown failed", "error", err)
		}
	}()

	meter := otel.Meter(cfg.Service.Name)

	dbMetrics, err := database.NewMetrics(meter)
	if err != nil {
		logger.Error("failed to create database metrics", "error", err)
		os.Exit(1)
	}
	orderMetrics, err := ordersmetrics.NewMetrics(meter)
	if err != nil {
		logger.Error("failed to create order metrics", "error", err)
		os.Exit(1)
	}
	paymentMetrics, err := paymentsmetrics.NewMetrics(meter)
	if err != nil {
		logger.Error("failed to create payment metrics", "error", err)
		os.Exit(1)
	}
	httpMetrics, err := ordershttp.NewMetrics(meter)
	if err != nil {
		logger.Error("failed to create http metrics", "error", err)
		os.Exit(1)
	}

	pool, err := database.NewPool(ctx, cfg.Database.URL)
	if err != nil {
		logger.Error("failed to create database pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if cfg.Database.AutoMigrate {
		logger.Info("running database migrations", "path", cfg.Database.MigrationsPath)
		if err := database.RunMigrations(cfg.Database.URL, cfg.Database.MigrationsPath); err != nil {
			logger.Error("failed to run migrations", "error", err)
			os.Exit(1)
		}
		logger.Info("migrations completed successfully")
	}

	orderRepo := orderspostgres.NewRepository(pool, dbMetrics)
	userRepo := orderspostgres.NewUserRepository(pool, dbMetrics)
	idemStore := idempostgres.NewStore(pool, dbMetrics)
	paymentRepo := paymentspostgres.NewRepository(pool, dbMetrics)

	var productRepo ordersports.ProductRepository = orderspostgres.NewProductRepository(pool, dbMetrics)
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
		productRepo = rediscache.NewProductRepository(productRepo, client, logger)
		logger.Info("product cache enabled", "addr", cfg.Redis.Addr)
	}

	gateway := intasend.NewClient(intasend.Config{
		BaseURL:   cfg.IntaSend.BaseURL,
		SecretKey: cfg.IntaSend.SecretKey,
		Timeout:   cfg.IntaSend.Timeout,
	})

	var notifier paymentsports.Notifier = notify.NewNoopNotifier()
	if cfg.Notify.AMQPURL != "" {
		publisher, err := notify.NewPublisher(cfg.Notify.AMQPURL, cfg.Notify.Exchange)
		if err != nil {
			logger.Error("failed to connect notification publisher", "error", err)
			os.Exit(1)
		}
		defer publisher.Close()

		notifyMetrics, err := notify.NewMetrics(meter)
		if err != nil {
			logger.Error("failed to create notify metrics", "error", err)
			os.Exit(1)
		}
		notifier = notify.NewObservableNotifier(publisher, notifyMetrics)
		logger.Info("notification publisher enabled", "exchange", cfg.Notify.Exchange)
	}

	orderService := ordersapp.NewService(orderRepo, productRepo, userRepo, idemStore, logger, orderMetrics)
	paymentService := paymentsapp.NewService(orderRepo, paymentRepo, gateway, notifier, logger, paymentMetrics, paymentsapp.Options{
		Currency:    "KES",
		RedirectURL: cfg.IntaSend.RedirectBaseURL,
	})

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if err := database.CheckHealth(r.Context(), pool); err != nil {
			respondJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not ready", "error": err.Error()})
			return
		}
		respondJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	})

	ordershttp.NewHandler(orderService).Register(mux)
	paymentshttp.NewHandler(paymentService).Register(mux)

	handler := withRecovery(withLogging(ordershttp.WithMetrics(mux, httpMetrics)))

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("http server starting", "port", cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownGrace)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	} else {
		logger.Info("http server stopped")
	}
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rw, r)
		slog.Info("http request", "method", r.Method, "path", r.URL.Path, "status", rw.status, "duration", time.Since(start))
	})
}

func withRecovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				slog.Error("panic recovered", "error", rec)
				respondJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
			}
		}()
		next.ServeHTTP(w, r)
	})
}

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (w *responseWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

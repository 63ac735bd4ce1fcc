package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/patasoft/petshop-platform/internal/api/router"
	"github.com/patasoft/petshop-platform/internal/appointments"
	"github.com/patasoft/petshop-platform/internal/auth"
	"github.com/patasoft/petshop-platform/internal/catalog"
	"github.com/patasoft/petshop-platform/internal/clients"
	appconfig "github.com/patasoft/petshop-platform/internal/config"
	"github.com/patasoft/petshop-platform/internal/kpis"
	"github.com/patasoft/petshop-platform/internal/notify"
	"github.com/patasoft/petshop-platform/internal/observability/metrics"
	"github.com/patasoft/petshop-platform/internal/packages"
	"github.com/patasoft/petshop-platform/internal/sales"
	"github.com/patasoft/petshop-platform/pkg/logging"
)

func main() {
	_ = godotenv.Load()

	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting petshop-platform API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	if cfg.DatabaseURL == "" {
		logger.Error("DATABASE_URL is required")
		os.Exit(1)
	}
	if cfg.JWTSecret == "" {
		logger.Error("JWT_SECRET is required")
		os.Exit(1)
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("connect database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()
	if err := pool.Ping(ctx); err != nil {
		logger.Error("ping database", "error", err)
		os.Exit(1)
	}

	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Warn("redis unavailable, calendar cache disabled", "error", err)
			rdb = nil
		}
	}

	var emails notify.EmailSender
	if sg := notify.NewSendGridSender(notify.SendGridConfig{
		APIKey:    cfg.SendGridAPIKey,
		FromEmail: cfg.SendGridFromEmail,
		FromName:  cfg.SendGridFromName,
	}, logger.Named("notify")); sg != nil {
		emails = sg
	} else {
		emails = notify.NewStubEmailSender(logger.Named("notify"))
	}

	httpMetrics := metrics.NewHTTPMetrics(prometheus.NewRegistry())

	authSvc := auth.NewService(auth.NewRepository(pool), emails, auth.ServiceConfig{
		JWTSecret:     cfg.JWTSecret,
		TokenTTL:      cfg.TokenTTL,
		ResetTokenTTL: cfg.ResetTokenTTL,
		ResetBaseURL:  cfg.ResetBaseURL,
		BCryptCost:    cfg.BCryptCost,
	}, logger.Named("auth"))

	calendarCache := appointments.NewCalendarCache(rdb, cfg.CalendarCacheTTL, logger.Named("cache"))

	r := router.New(&router.Config{
		Logger:              logger,
		AuthHandler:         auth.NewHandler(authSvc, logger.Named("auth")),
		ClientsHandler:      clients.NewHandler(clients.NewRepository(pool), logger.Named("clients")),
		CatalogHandler:      catalog.NewHandler(catalog.NewRepository(pool), logger.Named("catalog")),
		PackagesHandler:     packages.NewHandler(packages.NewRepository(pool), logger.Named("packages")),
		AppointmentsHandler: appointments.NewHandler(appointments.NewRepository(pool), calendarCache, logger.Named("appointments")),
		SalesHandler:        sales.NewHandler(sales.NewRepository(pool), logger.Named("sales")),
		KPIsHandler:         kpis.NewHandler(kpis.NewRepository(pool), logger.Named("kpis")),
		EmpresaResolver:     router.NewEmpresaResolver(pool),
		DefaultEmpresa:      cfg.DefaultEmpresa,
		JWTSecret:           cfg.JWTSecret,
		MetricsHandler:      httpMetrics.Handler(),
		MetricsMiddleware:   httpMetrics.Middleware,
		CORSAllowedOrigins:  cfg.CORSAllowedOrigins,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

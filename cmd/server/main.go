package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"time"

	"certifica/internal/certificate/handler"
	"certifica/internal/certificate/render"
	"certifica/internal/certificate/service"
	"certifica/internal/certificate/store"
	certsync "certifica/internal/certificate/sync"
	"certifica/internal/platform/config"
	"certifica/internal/platform/database"
	"certifica/internal/platform/health"
	"certifica/internal/platform/httpserver"
	"certifica/internal/platform/logger"
	"certifica/internal/platform/metrics"
	"certifica/internal/token"
	"certifica/internal/tracing"
	httptransport "certifica/internal/transport/http"
)

const operatorTokenTTL = 12 * time.Hour

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	log.Info("initializing certifica",
		"addr", cfg.Addr,
		"sync_enabled", cfg.SyncURL != "",
	)

	dbCfg := database.DefaultConfig()
	dbCfg.URL = cfg.DatabaseURL
	pool, err := database.New(dbCfg)
	if err != nil {
		log.Error("database initialization failed", "error", err)
		os.Exit(1)
	}

	healthHandler := health.New()

	var certStore store.Store
	if pool != nil {
		certStore = store.NewPostgres(pool.DB())
		healthHandler.RegisterCheck("database", func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return pool.Health(ctx)
		})
		defer pool.Close()
	} else {
		// No DATABASE_URL: issued certificates do not survive a restart.
		log.Warn("no database configured, using in-memory store")
		certStore = store.NewInMemoryStore()
	}

	appMetrics := metrics.New()

	opts := []service.Option{
		service.WithLogger(log),
		service.WithMetrics(appMetrics),
		service.WithTracer(tracing.NewOTel()),
	}
	if cfg.SyncURL != "" {
		opts = append(opts, service.WithSyncer(
			certsync.NewHTTPClient(cfg.SyncURL, cfg.SyncAPIKey, cfg.SyncTimeout),
		))
	}

	certService := service.NewService(
		certStore,
		render.NewHTML(),
		cfg.CodeSecret,
		cfg.VerifyBaseURL,
		opts...,
	)

	certHandler := handler.New(certService, log, appMetrics)
	tokenService := token.NewService(cfg.JWTSigningKey, operatorTokenTTL)

	router := httptransport.NewRouter(certHandler, healthHandler, httptransport.Config{
		TokenValidator: token.NewServiceAdapter(tokenService),
		AdminTokenHash: cfg.AdminTokenHash,
	}, log)

	srv := httpserver.New(cfg.Addr, router)

	log.Info("starting http server", "addr", cfg.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit

	log.Info("shutting down server gracefully")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}

	log.Info("server stopped")
}

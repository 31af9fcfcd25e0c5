package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/huangang/bizboard/internal/config"
	"github.com/huangang/bizboard/internal/models"
	"github.com/huangang/bizboard/internal/observability"
	"github.com/huangang/bizboard/internal/utils"
	"github.com/huangang/bizboard/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

func main() {
	// Load configuration
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}
	logger.Init(cfg.Server.LogLevel)

	// Initialize JWT secret
	utils.SetJWTSecret(cfg.JWT.Secret)

	shutdownTracing := observability.InitTracing(context.Background(), cfg.Observability)

	// Initialize database
	if err := models.InitDB(&cfg.Database); err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}

	// Auto migrate database
	if err := models.AutoMigrate(models.GetDB()); err != nil {
		logger.Fatalf("Failed to migrate database: %v", err)
	}

	svc, err := bootstrap(cfg, models.GetDB())
	if err != nil {
		logger.Fatalf("Failed to initialize services: %v", err)
	}
	if err := svc.start(); err != nil {
		logger.Fatalf("Failed to start background services: %v", err)
	}

	// Set Gin mode
	gin.SetMode(cfg.Server.Mode)
	r := gin.New()
	registerRoutes(r, svc)

	srv := &http.Server{
		Addr:              cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Infof("Server starting on %s (root domain %s)", srv.Addr, cfg.Tenancy.RootDomain)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	var metricsSrv *http.Server
	if addr := cfg.Observability.MetricsAddr; addr != "" {
		metricsSrv = &http.Server{
			Addr:              addr,
			Handler:           metricsRouter(svc),
			ReadHeaderTimeout: 10 * time.Second,
		}
		go func() {
			logger.Infof("Metrics listener on %s", addr)
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Errorf("Metrics listener stopped: %v", err)
			}
		}()
	}

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("Server forced to shutdown")
	}
	if metricsSrv != nil {
		_ = metricsSrv.Shutdown(ctx)
	}

	svc.shutdown()
	if err := shutdownTracing(ctx); err != nil {
		logger.Warn().Err(err).Msg("Failed to flush traces")
	}
	logger.Info().Msg("Server exited")
}

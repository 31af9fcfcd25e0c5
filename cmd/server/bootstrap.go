package main

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/huangang/bizboard/internal/config"
	"github.com/huangang/bizboard/internal/handlers"
	"github.com/huangang/bizboard/internal/middleware"
	"github.com/huangang/bizboard/internal/observability"
	"github.com/huangang/bizboard/internal/presets"
	"github.com/huangang/bizboard/internal/services"
	"github.com/huangang/bizboard/internal/store"
	"github.com/huangang/bizboard/internal/subdomain"
	"github.com/huangang/bizboard/internal/tenant"
	"github.com/huangang/bizboard/pkg/logger"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// appServices holds all initialized services and handlers needed by the application.
type appServices struct {
	cfg       *config.Config
	db        *gorm.DB
	metrics   *observability.Metrics
	rdb       *redis.Client
	resolver  *tenant.Resolver
	sessions  *middleware.JWTSessionVerifier
	taskQueue services.TaskQueue
	worker    *services.Worker
	janitor   *services.VersionJanitor
	limiter   *middleware.RateLimiter

	healthHandler   *handlers.HealthHandler
	siteHandler     *handlers.PublicSiteHandler
	tenantHandler   *handlers.TenantHandler
	configHandler   *handlers.ConfigHandler
	viewHandler     *handlers.ViewHandler
	pipelineHandler *handlers.PipelineHandler
}

// bootstrap wires the store, services and handlers. Nothing is started yet.
func bootstrap(cfg *config.Config, db *gorm.DB) (*appServices, error) {
	metrics := observability.NewMetrics("bizboard")
	if sqlDB, err := db.DB(); err == nil {
		if err := metrics.RegisterDB(sqlDB, cfg.Database.Driver); err != nil {
			logger.Warn().Err(err).Msg("Failed to register database metrics")
		}
	}

	base := store.NewGormStore(db)

	// profile lookups on every tenant request go through Redis when it is up
	var resolverStore store.Store = base
	rdb := openRedis(&cfg.Redis)
	if rdb != nil {
		resolverStore = store.NewCachedProfiles(base, rdb, cfg.Redis.CacheTTL)
	}

	// the operator label must never be claimable
	reserved := cfg.Tenancy.ReservedSubdomains
	if op := cfg.Tenancy.OperatorSubdomain; op != "" && !slices.Contains(reserved, op) {
		reserved = append(slices.Clone(reserved), op)
	}
	codec := subdomain.NewCodec(reserved)

	reg := presets.Default()
	configs := services.NewConfigStore(base, reg, cfg.Versions.Retention, metrics)
	tenants := services.NewTenantService(base, codec, reg, cfg.Tenancy.MinLabelLength, cfg.Tenancy.ClaimAttempts, metrics)
	resolver := tenant.NewResolver(resolverStore, cfg.Tenancy.RootDomain, cfg.Tenancy.OperatorSubdomain)

	taskQueue := services.NewTaskQueue(&cfg.Redis)
	janitor := services.NewVersionJanitor(base, taskQueue, cfg.Versions.Retention, metrics)
	if syncQueue, ok := taskQueue.(*services.SyncQueue); ok {
		syncQueue.SetProcessor(janitor.Process)
	}

	var worker *services.Worker
	if taskQueue.IsAsync() {
		worker = services.NewWorker(&cfg.Redis)
		if worker != nil {
			worker.SetProcessor(janitor.Process)
		}
	}

	timeout := cfg.Server.StoreTimeout
	return &appServices{
		cfg:       cfg,
		db:        db,
		metrics:   metrics,
		rdb:       rdb,
		resolver:  resolver,
		sessions:  middleware.NewJWTSessionVerifier(cfg.JWT.SessionCookie),
		taskQueue: taskQueue,
		worker:    worker,
		janitor:   janitor,
		limiter:   middleware.NewRateLimiter(cfg.Routing.PublicAPIRPS, cfg.Routing.PublicAPIBurst),

		healthHandler:   handlers.NewHealthHandler(db, taskQueue),
		siteHandler:     handlers.NewPublicSiteHandler(resolver, timeout),
		tenantHandler:   handlers.NewTenantHandler(tenants, timeout),
		configHandler:   handlers.NewConfigHandler(configs, timeout),
		viewHandler:     handlers.NewViewHandler(services.NewViewService(configs), timeout),
		pipelineHandler: handlers.NewPipelineHandler(services.NewPipelineService(configs), timeout),
	}, nil
}

// openRedis returns nil when Redis is disabled or unreachable.
func openRedis(cfg *config.RedisConfig) *redis.Client {
	if !cfg.Enabled {
		return nil
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Warn().Err(err).Str("addr", cfg.Addr).Msg("Redis unavailable, profile cache disabled")
		_ = rdb.Close()
		return nil
	}
	logger.Info().Str("addr", cfg.Addr).Msg("Profile cache enabled")
	return rdb
}

// start launches the background workers.
func (s *appServices) start() error {
	if s.worker != nil {
		if err := s.worker.Start(); err != nil {
			return fmt.Errorf("start worker: %w", err)
		}
	}
	if err := s.janitor.Start(s.cfg.Versions.SweepSchedule); err != nil {
		return fmt.Errorf("start version sweep: %w", err)
	}
	return nil
}

// shutdown gracefully stops all services.
func (s *appServices) shutdown() {
	s.janitor.Stop()
	logger.Info().Msg("All schedulers stopped")

	if s.worker != nil {
		s.worker.Stop()
	}
	if s.taskQueue != nil {
		s.taskQueue.Close()
	}
	s.limiter.Stop()
	if s.rdb != nil {
		_ = s.rdb.Close()
	}
}

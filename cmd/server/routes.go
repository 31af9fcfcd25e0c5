package main

import (
	"github.com/gin-gonic/gin"
	"github.com/huangang/bizboard/internal/handlers"
	"github.com/huangang/bizboard/internal/middleware"
	"github.com/huangang/bizboard/pkg/logger"
	"github.com/huangang/bizboard/pkg/response"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// surfaces maps each internal namespace to the name reported by its handler.
var surfaces = []struct {
	namespace string
	name      string
}{
	{middleware.NamespaceSites, "site"},
	{middleware.NamespacePortal, "portal"},
	{middleware.NamespaceBooking, "booking"},
	{middleware.NamespaceOrdering, "ordering"},
	{middleware.NamespaceSigning, "signing"},
	{middleware.NamespaceBoard, "board"},
}

// registerRoutes sets up all HTTP routes on the given Gin engine.
func registerRoutes(r *gin.Engine, svc *appServices) {
	r.RedirectTrailingSlash = false
	r.RedirectFixedPath = false

	serviceName := svc.cfg.Observability.ServiceName
	if serviceName == "" {
		serviceName = "bizboard"
	}

	edge := middleware.NewEdgeRouter(r, svc.resolver, svc.sessions, middleware.RouterConfig{
		PublicRoutes:     svc.cfg.Routing.PublicRoutes,
		TenantPublicAPIs: svc.cfg.Routing.TenantPublicAPIs,
		LoginPath:        svc.cfg.Routing.LoginPath,
	}, svc.metrics)

	// Middleware. Everything before the edge router sees each request once,
	// including the ones the edge answers itself (401, 302, 404); the edge
	// re-enters the engine for tenant rewrites and FirstPass skips that pass.
	r.Use(logger.GinRecovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.FirstPass(logger.GinLogger()))
	r.Use(middleware.FirstPass(otelgin.Middleware(serviceName)))
	r.Use(middleware.FirstPass(svc.metrics.GinMiddleware()))
	r.Use(middleware.FirstPass(middleware.CORS(svc.cfg.Tenancy.RootDomain)))
	r.Use(edge.Middleware())

	r.GET("/health", svc.healthHandler.CheckHealth)
	r.GET("/metrics", handlers.Metrics(svc.metrics, svc.db))
	r.GET("/", func(c *gin.Context) {
		response.Success(c, gin.H{"service": serviceName, "root_domain": svc.cfg.Tenancy.RootDomain})
	})
	r.NoRoute(func(c *gin.Context) {
		response.NotFound(c, "page not found")
	})

	// Tenant surfaces, only reachable through the edge router's rewrite
	for _, s := range surfaces {
		r.GET(s.namespace+"/:label/*path", svc.siteHandler.Surface(s.name))
	}

	api := r.Group("/api")
	{
		// Tenant public APIs (anonymous, rate limited per tenant and client)
		public := api.Group("/public", svc.limiter.Middleware())
		{
			public.GET("/site", svc.siteHandler.Site)
		}

		api.GET("/tenant/subdomain/check", svc.tenantHandler.Check)

		// Owner routes
		protected := api.Group("")
		protected.Use(middleware.AuthRequired(svc.sessions), middleware.AuditLog())
		{
			protected.POST("/tenant/claim", svc.tenantHandler.Claim)

			protected.GET("/config", svc.configHandler.GetActive)
			protected.GET("/config/versions", svc.configHandler.ListVersions)
			protected.POST("/config/versions/:id/restore", svc.configHandler.RestoreVersion)

			protected.PUT("/views/preference", svc.viewHandler.UpdatePreference)
			protected.GET("/views/options", svc.viewHandler.Options)

			protected.GET("/pipeline/stages", svc.pipelineHandler.List)
			protected.POST("/pipeline/stages", svc.pipelineHandler.AddStage)
			protected.PUT("/pipeline/stages/reorder", svc.pipelineHandler.Reorder)
			protected.PUT("/pipeline/stages/:stage_id", svc.pipelineHandler.UpdateStage)
			protected.DELETE("/pipeline/stages/:stage_id", svc.pipelineHandler.DeleteStage)
			protected.PUT("/pipeline/default-stage", svc.pipelineHandler.SetDefaultStage)
		}
	}
}

// metricsRouter serves /metrics alone, for a scrape listener that is not
// exposed through the public hosts.
func metricsRouter(svc *appServices) *gin.Engine {
	r := gin.New()
	r.Use(logger.GinRecovery())
	r.GET("/metrics", handlers.Metrics(svc.metrics, svc.db))
	return r
}

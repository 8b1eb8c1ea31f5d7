package api

import (
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/assetmgr/assetmgr/internal/app"
	"github.com/assetmgr/assetmgr/internal/handlers"
	"github.com/assetmgr/assetmgr/internal/integrity"
	"github.com/assetmgr/assetmgr/internal/middleware"
	"github.com/assetmgr/assetmgr/internal/monitoring"
	"github.com/assetmgr/assetmgr/internal/realtime"
)

// NewRouter builds the Gin engine, wires middleware and registers every route.
// jobs may be nil when no scheduler runs.
func NewRouter(db *gorm.DB, cfg *app.Config, svc *Services, jobs *monitoring.JobTracker) (*gin.Engine, error) {
	if db == nil {
		return nil, fmt.Errorf("database handle must be provided")
	}
	if cfg == nil {
		return nil, fmt.Errorf("config must be provided")
	}
	if svc == nil {
		return nil, fmt.Errorf("services must be provided")
	}

	r := gin.New()

	r.Use(middleware.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.Metrics())
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORSOrigins...))

	registerHealthRoutes(r, db, cfg, svc.Hierarchy, jobs)

	api := r.Group("/api")
	registerHierarchyRoutes(api, handlers.NewHierarchyHandler(svc.Hierarchy), middleware.RateLimit(cfg.Server.RebuildRateLimit, time.Minute))
	registerCatalogRoutes(api, handlers.NewCatalogHandler(svc.Catalog))
	registerDashboardRoutes(api, handlers.NewDashboardHandler(svc.Dashboard, cfg.Catalog.DefaultModule), handlers.NewAssetHandler(svc.Assets))
	registerAuditRoutes(api, handlers.NewAuditHandler(svc.Audit))
	registerIntegrityRoutes(api, handlers.NewIntegrityHandler(integrity.NewAuditor(db, svc.Hierarchy)))
	registerMonitoringRoutes(api, handlers.NewMonitoringHandler(jobs, svc.Hierarchy, cfg))

	hub := realtime.NewHub(cfg.Server.CORSOrigins...)
	hub.Attach(svc.Hierarchy, svc.Assets)
	registerRealtimeRoutes(api, handlers.NewRealtimeHandler(hub))

	if cfg.Monitoring.Prometheus.Enabled {
		endpoint := strings.TrimSpace(cfg.Monitoring.Prometheus.Endpoint)
		if endpoint == "" {
			endpoint = "/metrics"
		}
		r.GET(endpoint, gin.WrapH(promhttp.Handler()))
	}

	r.NoRoute(middleware.NotFoundHandler)

	return r, nil
}

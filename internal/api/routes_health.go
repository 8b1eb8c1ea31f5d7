package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/assetmgr/assetmgr/internal/app"
	"github.com/assetmgr/assetmgr/internal/monitoring"
	"github.com/assetmgr/assetmgr/internal/monitoring/checks"
	"github.com/assetmgr/assetmgr/internal/services"
)

func registerHealthRoutes(r *gin.Engine, db *gorm.DB, cfg *app.Config, hier *services.HierarchyService, jobs *monitoring.JobTracker) {
	if !cfg.Monitoring.Health.Enabled {
		r.GET("/health", disabledHealthHandler)
		r.GET("/health/live", disabledHealthHandler)
		r.GET("/health/ready", disabledHealthHandler)
		return
	}

	manager := newHealthManager(db, cfg.Monitoring.Health, hier, jobs)
	registerHealthEndpoints(r, manager)
	registerHealthEndpoints(r.Group("/api"), manager)
}

func newHealthManager(db *gorm.DB, cfg app.HealthConfig, hier *services.HierarchyService, jobs *monitoring.JobTracker) *monitoring.HealthManager {
	manager := monitoring.NewHealthManager(cfg.Timeout)
	manager.RegisterLiveness(monitoring.NewCheck("process", func(context.Context) monitoring.ProbeResult {
		return monitoring.ProbeResult{Status: monitoring.StatusUp}
	}))

	manager.RegisterReadiness(checks.Database(db, cfg.Timeout))
	manager.RegisterReadiness(checks.Hierarchy(func() checks.SnapshotState {
		snapshot := hier.Current()
		return checks.SnapshotState{
			BuiltAt: snapshot.BuiltAt,
			Nodes:   snapshot.Manager.Len(),
			Cycles:  len(snapshot.Report.Cycles),
		}
	}, cfg.SnapshotMaxAge))
	if jobs != nil {
		manager.RegisterReadiness(checks.Maintenance(jobs, cfg.JobMaxAge))
	}
	return manager
}

func registerHealthEndpoints(router gin.IRouter, manager *monitoring.HealthManager) {
	router.GET("/health", func(c *gin.Context) {
		report := monitoring.MergeReports(
			manager.EvaluateLiveness(c.Request.Context()),
			manager.EvaluateReadiness(c.Request.Context()),
		)
		writeHealthReport(c, report)
	})

	router.GET("/health/live", func(c *gin.Context) {
		writeHealthReport(c, manager.EvaluateLiveness(c.Request.Context()))
	})

	router.GET("/health/ready", func(c *gin.Context) {
		writeHealthReport(c, manager.EvaluateReadiness(c.Request.Context()))
	})
}

func disabledHealthHandler(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{
		"success": false,
		"status":  "disabled",
	})
}

// Only a down report answers 503; degraded still answers 200.
func writeHealthReport(c *gin.Context, report monitoring.HealthReport) {
	status := http.StatusOK
	if report.Status == monitoring.StatusDown {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, gin.H{
		"success":    report.Success,
		"status":     report.Status,
		"checks":     report.Checks,
		"checked_at": time.Now().UTC(),
	})
}

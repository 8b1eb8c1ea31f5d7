package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/assetmgr/assetmgr/internal/app"
	"github.com/assetmgr/assetmgr/internal/monitoring"
	"github.com/assetmgr/assetmgr/internal/services"
	"github.com/assetmgr/assetmgr/pkg/response"
)

// MonitoringHandler surfaces scheduled job state and snapshot freshness.
type MonitoringHandler struct {
	jobs      *monitoring.JobTracker
	hierarchy *services.HierarchyService
	cfg       *app.Config
}

// NewMonitoringHandler constructs a monitoring handler. Returns nil when monitoring is disabled.
func NewMonitoringHandler(jobs *monitoring.JobTracker, hierarchy *services.HierarchyService, cfg *app.Config) *MonitoringHandler {
	if cfg == nil || hierarchy == nil {
		return nil
	}
	if !cfg.Monitoring.Health.Enabled && !cfg.Monitoring.Prometheus.Enabled {
		return nil
	}
	return &MonitoringHandler{jobs: jobs, hierarchy: hierarchy, cfg: cfg}
}

// Summary returns job statistics, the snapshot age and where metrics are exposed.
func (h *MonitoringHandler) Summary(c *gin.Context) {
	snapshot := h.hierarchy.Current()
	endpoint := strings.TrimSpace(h.cfg.Monitoring.Prometheus.Endpoint)
	if endpoint == "" {
		endpoint = "/metrics"
	}

	var age float64
	if !snapshot.BuiltAt.IsZero() {
		age = time.Since(snapshot.BuiltAt).Seconds()
	}

	jobs := h.jobs.Snapshot()
	if jobs == nil {
		jobs = []monitoring.JobSummary{}
	}

	response.Success(c, http.StatusOK, gin.H{
		"jobs": jobs,
		"hierarchy": gin.H{
			"built_at":    snapshot.BuiltAt,
			"age_seconds": age,
			"nodes":       snapshot.Manager.Len(),
			"cycles":      len(snapshot.Report.Cycles),
		},
		"prometheus": gin.H{
			"enabled":  h.cfg.Monitoring.Prometheus.Enabled,
			"endpoint": endpoint,
		},
	})
}

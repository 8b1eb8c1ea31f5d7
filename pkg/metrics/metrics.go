package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HierarchyRebuilds counts snapshot rebuilds by result (success|failure).
	HierarchyRebuilds = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assetmgr_hierarchy_rebuilds_total",
			Help: "Total number of hierarchy snapshot rebuilds",
		},
		[]string{"result"},
	)

	// HierarchyNodes tracks the number of nodes in the current snapshot per module.
	HierarchyNodes = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "assetmgr_hierarchy_nodes",
			Help: "Number of folders and kinds in the current hierarchy snapshot",
		},
		[]string{"module"},
	)

	// HierarchyAnomalies counts records that were not linked as given, by reason
	// (dropped|duplicate|dangling|cross_module|cycle).
	HierarchyAnomalies = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assetmgr_hierarchy_anomalies_total",
			Help: "Records dropped or re-rooted while building the hierarchy",
		},
		[]string{"reason"},
	)

	// HierarchyBuildDuration measures fetch-and-build time for a snapshot.
	HierarchyBuildDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "assetmgr_hierarchy_build_seconds",
			Help:    "Time spent rebuilding the hierarchy snapshot",
			Buckets: prometheus.DefBuckets,
		},
	)

	// MaintenanceRuns counts scheduled job executions by job and result.
	MaintenanceRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assetmgr_maintenance_runs_total",
			Help: "Scheduled maintenance job executions",
		},
		[]string{"job", "result"},
	)

	// APILatency measures HTTP request latencies.
	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "assetmgr_api_latency_seconds",
			Help:    "API endpoint latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)

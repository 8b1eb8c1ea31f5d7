package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/assetmgr/assetmgr/internal/app"
	"github.com/assetmgr/assetmgr/internal/database/testutil"
	"github.com/assetmgr/assetmgr/internal/monitoring"
)

func testConfig() *app.Config {
	cfg := &app.Config{}
	cfg.Server.RebuildRateLimit = 10
	cfg.Catalog.DefaultModule = "IT"
	cfg.Monitoring.Prometheus.Enabled = true
	cfg.Monitoring.Prometheus.Endpoint = "/metrics"
	cfg.Monitoring.Health.Enabled = true
	return cfg
}

func TestRouter_PublicRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)

	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	svc, err := NewServices(db, "IT")
	if err != nil {
		t.Fatalf("services: %v", err)
	}
	if _, err := svc.Hierarchy.Rebuild(t.Context()); err != nil {
		t.Fatalf("rebuild: %v", err)
	}

	router, err := NewRouter(db, testConfig(), svc, monitoring.NewJobTracker())
	if err != nil {
		t.Fatalf("router: %v", err)
	}

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/health", nil)
	router.ServeHTTP(w, req)
	if w.Code != 200 {
		t.Fatalf("expected 200 for /health, got %d: %s", w.Code, w.Body.String())
	}

	w = httptest.NewRecorder()
	req, _ = http.NewRequest("GET", "/api/hierarchy/IT", nil)
	router.ServeHTTP(w, req)
	if w.Code != 200 {
		t.Fatalf("expected 200 for module tree, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	req, _ = http.NewRequest("GET", "/api/does-not-exist", nil)
	router.ServeHTTP(w, req)
	if w.Code != 404 {
		t.Fatalf("expected 404 for unknown route, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	req, _ = http.NewRequest("GET", "/metrics", nil)
	router.ServeHTTP(w, req)
	if w.Code != 200 {
		t.Fatalf("expected 200 for /metrics, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `assetmgr_api_latency_seconds_count{method="GET",path="/health",status="200"}`) {
		t.Fatalf("expected latency histogram for /health in metrics output")
	}
}

func TestRouter_PrometheusDisabled(t *testing.T) {
	gin.SetMode(gin.TestMode)

	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	svc, err := NewServices(db, "IT")
	if err != nil {
		t.Fatalf("services: %v", err)
	}
	cfg := testConfig()
	cfg.Monitoring.Prometheus.Enabled = false

	router, err := NewRouter(db, cfg, svc, nil)
	if err != nil {
		t.Fatalf("router: %v", err)
	}

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/metrics", nil)
	router.ServeHTTP(w, req)
	if w.Code != 404 {
		t.Fatalf("expected 404 for /metrics when disabled, got %d", w.Code)
	}
}

func TestNewRouterRequiresDependencies(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	svc, err := NewServices(db, "IT")
	if err != nil {
		t.Fatalf("services: %v", err)
	}

	if _, err := NewRouter(nil, testConfig(), svc, nil); err == nil {
		t.Fatalf("expected error without database")
	}
	if _, err := NewRouter(db, nil, svc, nil); err == nil {
		t.Fatalf("expected error without config")
	}
	if _, err := NewRouter(db, testConfig(), nil, nil); err == nil {
		t.Fatalf("expected error without services")
	}
	if _, err := NewServices(nil, "IT"); err == nil {
		t.Fatalf("expected error without database")
	}
}

package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/lithammer/dedent"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/assetmgr/assetmgr/internal/app"
	"github.com/assetmgr/assetmgr/internal/database"
)

func testConfig(t *testing.T) *app.Config {
	t.Helper()
	cfg := &app.Config{}
	cfg.Database.Driver = "sqlite"
	cfg.Database.Path = database.MemoryPath(t.Name())
	cfg.Server.RebuildRateLimit = 10
	cfg.Catalog.DefaultModule = "IT"
	cfg.Catalog.RefreshSchedule = "@every 5m"
	cfg.Maintenance.Enabled = true
	cfg.Maintenance.AuditRetentionDays = 30
	cfg.Maintenance.AuditSchedule = "@daily"
	cfg.Monitoring.Health.Enabled = true
	return cfg
}

func TestBootstrapRuntimeAppliesSeed(t *testing.T) {
	seedPath := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(seedPath, []byte(dedent.Dedent(`
		folders:
		  - id: F1
		    name: Networking
		kinds:
		  - name: Router
		    parent: Networking
	`)), 0o600))

	cfg := testConfig(t)
	cfg.Catalog.SeedFile = seedPath

	stack, err := bootstrapRuntime(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { stack.Shutdown(context.Background(), zap.NewNop()) })

	snapshot := stack.Services.Hierarchy.Current()
	require.Equal(t, 2, snapshot.Manager.Len())
	require.False(t, snapshot.BuiltAt.IsZero())

	names := make(map[string]bool)
	for _, job := range stack.Jobs.Snapshot() {
		names[job.Job] = true
		require.Zero(t, job.TotalRuns)
	}
	require.True(t, names["hierarchy_refresh"])
	require.True(t, names["audit_prune"])

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/hierarchy/IT", nil)
	stack.Router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "Router")
}

func TestBootstrapRuntimeMaintenanceDisabled(t *testing.T) {
	cfg := testConfig(t)
	cfg.Maintenance.Enabled = false

	stack, err := bootstrapRuntime(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { stack.Shutdown(context.Background(), zap.NewNop()) })

	require.Nil(t, stack.Refresher)
	require.Empty(t, stack.Jobs.Snapshot())
}

func TestBootstrapRuntimeRejectsMissingSeed(t *testing.T) {
	cfg := testConfig(t)
	cfg.Catalog.SeedFile = filepath.Join(t.TempDir(), "missing.yaml")

	_, err := bootstrapRuntime(context.Background(), cfg, zap.NewNop())
	require.ErrorContains(t, err, "apply seed file")
}

func TestLoadApplicationConfigMissingPath(t *testing.T) {
	_, err := loadApplicationConfig(filepath.Join(t.TempDir(), "nope"))
	require.ErrorContains(t, err, "does not exist")
}

func TestShutdownNilStack(t *testing.T) {
	var stack *runtimeStack
	stack.Shutdown(context.Background(), zap.NewNop())
}

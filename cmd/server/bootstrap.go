package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/assetmgr/assetmgr/internal/api"
	"github.com/assetmgr/assetmgr/internal/app"
	"github.com/assetmgr/assetmgr/internal/app/maintenance"
	"github.com/assetmgr/assetmgr/internal/database"
	"github.com/assetmgr/assetmgr/internal/monitoring"
	"github.com/assetmgr/assetmgr/internal/seed"
	"github.com/assetmgr/assetmgr/pkg/logger"
)

const seedActor = "system:seed"

// runtimeStack bundles long-lived services used by the HTTP server.
type runtimeStack struct {
	DB        *gorm.DB
	Services  *api.Services
	Jobs      *monitoring.JobTracker
	Refresher *maintenance.Refresher
	Router    *gin.Engine
}

// bootstrapRuntime opens the database, builds the first hierarchy snapshot,
// starts the refresh jobs and builds the HTTP router.
func bootstrapRuntime(ctx context.Context, cfg *app.Config, log *zap.Logger) (*runtimeStack, error) {
	stack := &runtimeStack{Jobs: monitoring.NewJobTracker()}
	var err error
	success := false

	defer func() {
		if !success {
			stack.Shutdown(context.Background(), log)
		}
	}()

	// enable gin debug mod
	if debug, _ := os.LookupEnv("GIN_DEBUG"); debug != "true" {
		gin.SetMode(gin.ReleaseMode)
	}

	stack.DB, err = initialiseDatabase(cfg)
	if err != nil {
		return nil, err
	}

	stack.Services, err = api.NewServices(stack.DB, cfg.Catalog.DefaultModule)
	if err != nil {
		return nil, fmt.Errorf("initialise services: %w", err)
	}

	if path := strings.TrimSpace(cfg.Catalog.SeedFile); path != "" {
		if err := applySeed(ctx, stack.Services, stack.DB, path, log); err != nil {
			return nil, err
		}
	}

	snapshot, err := stack.Services.Hierarchy.Rebuild(ctx)
	if err != nil {
		return nil, fmt.Errorf("build hierarchy: %w", err)
	}
	log.Info("hierarchy ready",
		zap.Int("nodes", snapshot.Manager.Len()),
		zap.Strings("modules", snapshot.Manager.Modules()),
	)

	if cfg.Maintenance.Enabled {
		stack.Refresher = maintenance.NewRefresher(stack.Services.Hierarchy, stack.Services.Audit,
			maintenance.WithTracker(stack.Jobs),
			maintenance.WithAuditRetentionDays(cfg.Maintenance.AuditRetentionDays),
			maintenance.WithRefreshSchedule(cfg.Catalog.RefreshSchedule),
			maintenance.WithAuditSchedule(cfg.Maintenance.AuditSchedule),
		)
		if err := stack.Refresher.Start(); err != nil {
			return nil, fmt.Errorf("start maintenance jobs: %w", err)
		}
	}

	stack.Router, err = api.NewRouter(stack.DB, cfg, stack.Services, stack.Jobs)
	if err != nil {
		return nil, fmt.Errorf("build api router: %w", err)
	}

	success = true
	return stack, nil
}

// Shutdown stops background jobs and releases resources.
func (s *runtimeStack) Shutdown(ctx context.Context, log *zap.Logger) {
	if s == nil {
		return
	}

	if s.Refresher != nil {
		stopCtx := s.Refresher.Stop()
		select {
		case <-stopCtx.Done():
		case <-ctx.Done():
			log.Warn("maintenance jobs still running at shutdown", zap.Error(ctx.Err()))
		}
		s.Refresher = nil
	}

	if s.DB != nil {
		closeDatabase(s.DB, log)
		s.DB = nil
	}
}

func applySeed(ctx context.Context, svc *api.Services, db *gorm.DB, path string, log *zap.Logger) error {
	loader, err := seed.NewLoader(db, svc.Catalog, svc.Assets, svc.Audit)
	if err != nil {
		return err
	}
	result, err := loader.ApplyFile(ctx, seedActor, path, false)
	if err != nil {
		return fmt.Errorf("apply seed file: %w", err)
	}
	if result.Skipped {
		log.Info("seed file unchanged", zap.String("path", path))
	}
	return nil
}

func initialiseDatabase(cfg *app.Config) (*gorm.DB, error) {
	dbCfg := cfg.Database.ConnectionConfig()
	db, err := database.Open(dbCfg)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := database.Prepare(db); err != nil {
		closeDatabase(db, logger.WithModule("database"))
		return nil, fmt.Errorf("prepare database: %w", err)
	}

	log := logger.WithModule("database")
	log.Info("database connected", zap.String("driver", dbCfg.Driver))

	return db, nil
}

func closeDatabase(db *gorm.DB, log *zap.Logger) {
	if db == nil {
		return
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Warn("failed to obtain underlying sql DB for closing", zap.Error(err))
		return
	}

	if err := sqlDB.Close(); err != nil {
		log.Warn("failed to close database", zap.Error(err))
	}
}

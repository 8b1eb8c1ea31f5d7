package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/assetmgr/assetmgr/internal/api"
	"github.com/assetmgr/assetmgr/internal/app"
	"github.com/assetmgr/assetmgr/internal/database"
	"github.com/assetmgr/assetmgr/pkg/logger"
)

// CLI is the top-level command structure for assetctl.
type CLI struct {
	Config  string `help:"Configuration directory." type:"path" env:"ASSETMGR_CONFIG_DIR"`
	Verbose bool   `help:"Enable debug logging." short:"v"`

	Seed   SeedCmd   `cmd:"" help:"Load folders, asset kinds and assets from a YAML file."`
	Tree   TreeCmd   `cmd:"" help:"Print the hierarchy of a module."`
	Rollup RollupCmd `cmd:"" help:"Print asset status counts for a module level."`
	Check  CheckCmd  `cmd:"" help:"Run catalog integrity checks."`
}

// runtime carries what every command needs.
type runtime struct {
	ctx context.Context
	cfg *app.Config
	db  *gorm.DB
	svc *api.Services
	out io.Writer
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	_ = godotenv.Load()

	var cli CLI
	kctx := kong.Parse(&cli,
		kong.Name("assetctl"),
		kong.Description("Asset catalog operator tool"),
		kong.UsageOnError(),
	)

	rt, err := openRuntime(ctx, &cli, os.Stdout)
	kctx.FatalIfErrorf(err)
	defer rt.Close()

	kctx.FatalIfErrorf(kctx.Run(rt))
}

func openRuntime(ctx context.Context, cli *CLI, out io.Writer) (*runtime, error) {
	var paths []string
	if cli.Config != "" {
		paths = append(paths, cli.Config)
	}
	cfg, err := app.LoadConfig(paths...)
	if err != nil {
		return nil, err
	}
	if _, err := app.ApplyRuntimeDefaults(cfg); err != nil {
		return nil, err
	}

	level := "warn"
	if cli.Verbose {
		level = "debug"
	}
	if err := logger.InitWithOptions(logger.Options{Level: level, Encoding: "console"}); err != nil {
		return nil, fmt.Errorf("configure logging: %w", err)
	}

	return newRuntime(ctx, cfg, out)
}

func newRuntime(ctx context.Context, cfg *app.Config, out io.Writer) (*runtime, error) {
	db, err := database.Open(cfg.Database.ConnectionConfig())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	rt := &runtime{ctx: ctx, cfg: cfg, db: db, out: out}

	if err := database.Prepare(db); err != nil {
		rt.Close()
		return nil, fmt.Errorf("prepare database: %w", err)
	}

	rt.svc, err = api.NewServices(db, cfg.Catalog.DefaultModule)
	if err != nil {
		rt.Close()
		return nil, err
	}
	return rt, nil
}

// Close releases the database handle.
func (r *runtime) Close() {
	if r == nil || r.db == nil {
		return
	}
	sqlDB, err := r.db.DB()
	if err != nil {
		return
	}
	if err := sqlDB.Close(); err != nil {
		logger.WithModule("assetctl").Warn("failed to close database", zap.Error(err))
	}
}

func (r *runtime) module(value string) string {
	if value != "" {
		return value
	}
	return r.cfg.Catalog.DefaultModule
}

package maintenance

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/assetmgr/assetmgr/internal/monitoring"
	"github.com/assetmgr/assetmgr/internal/services"
	"github.com/assetmgr/assetmgr/pkg/logger"
)

// Job names reported to the job tracker and maintenance metrics.
const (
	JobHierarchyRefresh = "hierarchy_refresh"
	JobAuditPrune       = "audit_prune"
)

const (
	defaultAuditRetentionDays = 90
	defaultRefreshSpec        = "@every 5m"
	defaultAuditSpec          = "@daily"
)

// Rebuilder rebuilds the hierarchy snapshot from the catalog.
type Rebuilder interface {
	Rebuild(ctx context.Context) (*services.Snapshot, error)
}

// Refresher periodically rebuilds the hierarchy snapshot so edits made
// directly in the database become visible, and prunes old audit entries.
type Refresher struct {
	hierarchy Rebuilder
	audit     *services.AuditService
	tracker   *monitoring.JobTracker
	cron      *cron.Cron
	now       func() time.Time
	log       *zap.Logger
	retention int

	refreshSchedule string
	auditSchedule   string
}

// Option customises the Refresher.
type Option func(*Refresher)

// WithCron injects a preconfigured cron instance, primarily for testing.
func WithCron(c *cron.Cron) Option {
	return func(r *Refresher) {
		if c != nil {
			r.cron = c
		}
	}
}

// WithNow overrides the clock used to time job runs.
func WithNow(now func() time.Time) Option {
	return func(r *Refresher) {
		if now != nil {
			r.now = now
		}
	}
}

// WithTracker records job outcomes into tracker.
func WithTracker(tracker *monitoring.JobTracker) Option {
	return func(r *Refresher) {
		if tracker != nil {
			r.tracker = tracker
		}
	}
}

// WithAuditRetentionDays adjusts how long audit logs are retained. Zero keeps
// the default; a negative value disables pruning.
func WithAuditRetentionDays(days int) Option {
	return func(r *Refresher) {
		if days != 0 {
			r.retention = days
		}
	}
}

// WithRefreshSchedule overrides the cron expression for snapshot rebuilds.
func WithRefreshSchedule(spec string) Option {
	return func(r *Refresher) {
		if spec != "" {
			r.refreshSchedule = spec
		}
	}
}

// WithAuditSchedule overrides the cron expression for audit pruning.
func WithAuditSchedule(spec string) Option {
	return func(r *Refresher) {
		if spec != "" {
			r.auditSchedule = spec
		}
	}
}

// NewRefresher constructs a Refresher. A nil dependency skips its job.
func NewRefresher(hierarchy Rebuilder, audit *services.AuditService, opts ...Option) *Refresher {
	r := &Refresher{
		hierarchy:       hierarchy,
		audit:           audit,
		now:             time.Now,
		retention:       defaultAuditRetentionDays,
		refreshSchedule: defaultRefreshSpec,
		auditSchedule:   defaultAuditSpec,
		log:             logger.WithModule("maintenance"),
	}

	for _, opt := range opts {
		opt(r)
	}

	if r.cron == nil {
		r.cron = cron.New(cron.WithLogger(cron.DiscardLogger))
	}
	if r.tracker == nil {
		r.tracker = monitoring.NewJobTracker()
	}
	return r
}

// Tracker exposes the job statistics for health checks.
func (r *Refresher) Tracker() *monitoring.JobTracker {
	return r.tracker
}

// Start registers the enabled jobs with the scheduler and launches it.
func (r *Refresher) Start() error {
	jobs := 0
	if r.hierarchy != nil {
		if _, err := r.cron.AddFunc(r.refreshSchedule, func() {
			_ = r.refresh(context.Background())
		}); err != nil {
			return fmt.Errorf("maintenance: schedule %s: %w", JobHierarchyRefresh, err)
		}
		r.tracker.Register(JobHierarchyRefresh)
		jobs++
	}

	if r.audit != nil && r.retention > 0 {
		if _, err := r.cron.AddFunc(r.auditSchedule, func() {
			_ = r.prune(context.Background())
		}); err != nil {
			return fmt.Errorf("maintenance: schedule %s: %w", JobAuditPrune, err)
		}
		r.tracker.Register(JobAuditPrune)
		jobs++
	}

	if jobs == 0 {
		return nil
	}
	r.cron.Start()
	r.log.Info("maintenance scheduler started",
		zap.String("refresh_schedule", r.refreshSchedule),
		zap.String("audit_schedule", r.auditSchedule),
		zap.Int("jobs", jobs),
	)
	return nil
}

// Stop halts the scheduler. The returned context is done once running jobs finish.
func (r *Refresher) Stop() context.Context {
	if r.cron == nil {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		return ctx
	}
	return r.cron.Stop()
}

// RunOnce executes every enabled job sequentially and returns their combined errors.
func (r *Refresher) RunOnce(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	var errs error
	if r.hierarchy != nil {
		errs = multierr.Append(errs, r.refresh(ctx))
	}
	if r.audit != nil && r.retention > 0 {
		errs = multierr.Append(errs, r.prune(ctx))
	}
	return errs
}

func (r *Refresher) refresh(ctx context.Context) error {
	return r.track(JobHierarchyRefresh, func() error {
		snapshot, err := r.hierarchy.Rebuild(ctx)
		if err != nil {
			return err
		}
		if snapshot != nil && len(snapshot.Report.Cycles) > 0 {
			r.log.Warn("refresh found parent cycles", zap.Strings("promoted", snapshot.Report.Cycles))
		}
		return nil
	})
}

func (r *Refresher) prune(ctx context.Context) error {
	return r.track(JobAuditPrune, func() error {
		removed, err := r.audit.CleanupOlderThan(ctx, r.retention)
		if err != nil {
			return err
		}
		if removed > 0 {
			r.log.Info("audit entries pruned", zap.Int64("removed", removed), zap.Int("retention_days", r.retention))
		}
		return nil
	})
}

func (r *Refresher) track(job string, fn func() error) error {
	start := r.now()
	err := fn()
	duration := r.now().Sub(start)

	if err != nil {
		r.log.Warn("maintenance job failed", zap.String("job", job), zap.Error(err))
		r.tracker.RecordRun(job, monitoring.ResultFailure, err.Error(), duration)
		return fmt.Errorf("%s: %w", job, err)
	}
	r.tracker.RecordRun(job, monitoring.ResultSuccess, "", duration)
	return nil
}

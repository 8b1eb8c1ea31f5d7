package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/assetmgr/assetmgr/internal/hierarchy"
	"github.com/assetmgr/assetmgr/pkg/logger"
	"github.com/assetmgr/assetmgr/pkg/metrics"
)

// Snapshot is an immutable hierarchy together with how it was built.
type Snapshot struct {
	Manager   *hierarchy.Manager        `json:"-"`
	Report    hierarchy.Report          `json:"report"`
	Normalize hierarchy.NormalizeReport `json:"normalize"`
	BuiltAt   time.Time                 `json:"built_at"`
}

// RecordSource supplies the flat records a snapshot is built from.
type RecordSource interface {
	Records(ctx context.Context) ([]hierarchy.Record, hierarchy.NormalizeReport, error)
}

// HierarchyService owns the current hierarchy snapshot. Rebuilds replace the
// snapshot wholesale; readers keep whichever snapshot they loaded.
type HierarchyService struct {
	source  RecordSource
	current atomic.Pointer[Snapshot]
	mu      sync.Mutex
	modules map[string]struct{}
	subs    []func(*Snapshot)
	now     func() time.Time
	log     *zap.Logger
}

// NewHierarchyService constructs the service with an empty snapshot.
func NewHierarchyService(source RecordSource) (*HierarchyService, error) {
	if source == nil {
		return nil, errors.New("hierarchy service: record source is required")
	}
	svc := &HierarchyService{
		source:  source,
		modules: map[string]struct{}{},
		now:     time.Now,
		log:     logger.WithModule("hierarchy"),
	}
	svc.current.Store(&Snapshot{Manager: hierarchy.Empty()})
	return svc, nil
}

// Current returns the active snapshot. It is never nil.
func (s *HierarchyService) Current() *Snapshot {
	return s.current.Load()
}

// Subscribe registers fn to be called with every snapshot a successful
// Rebuild installs. fn runs on the rebuilding goroutine and must not block.
func (s *HierarchyService) Subscribe(fn func(*Snapshot)) {
	if fn == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = append(s.subs, fn)
}

// Rebuild fetches the catalog, builds a new forest and swaps it in. On
// failure the previous snapshot stays active.
func (s *HierarchyService) Rebuild(ctx context.Context) (*Snapshot, error) {
	ctx = ensureContext(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	started := s.now()
	records, normalized, err := s.source.Records(ctx)
	if err != nil {
		metrics.HierarchyRebuilds.WithLabelValues("failure").Inc()
		return nil, fmt.Errorf("hierarchy service: load records: %w", err)
	}

	manager, report := hierarchy.Build(records)
	snapshot := &Snapshot{
		Manager:   manager,
		Report:    report,
		Normalize: normalized,
		BuiltAt:   s.now(),
	}
	s.current.Store(snapshot)

	s.observe(snapshot)
	metrics.HierarchyRebuilds.WithLabelValues("success").Inc()
	metrics.HierarchyBuildDuration.Observe(snapshot.BuiltAt.Sub(started).Seconds())
	for _, fn := range s.subs {
		fn(snapshot)
	}
	return snapshot, nil
}

func (s *HierarchyService) observe(snapshot *Snapshot) {
	report := snapshot.Report

	counts := map[string]float64{}
	snapshot.Manager.Walk(func(node *hierarchy.Node, _ int) bool {
		counts[node.Module]++
		return true
	})
	for module := range s.modules {
		if _, ok := counts[module]; !ok {
			metrics.HierarchyNodes.WithLabelValues(module).Set(0)
		}
	}
	for module, n := range counts {
		metrics.HierarchyNodes.WithLabelValues(module).Set(n)
		s.modules[module] = struct{}{}
	}

	anomalies := map[string]int{
		"dropped":      report.Dropped,
		"duplicate":    len(report.Duplicates),
		"dangling":     len(report.Dangling),
		"cross_module": len(report.CrossModule),
		"cycle":        len(report.Cycles),
	}
	for reason, n := range anomalies {
		if n > 0 {
			metrics.HierarchyAnomalies.WithLabelValues(reason).Add(float64(n))
		}
	}

	if len(report.Cycles) > 0 {
		s.log.Error("hierarchy contains parent cycles; closing edges were cut",
			zap.Strings("promoted", report.Cycles),
		)
	}
	if report.Dropped > 0 || len(report.Duplicates) > 0 {
		s.log.Warn("hierarchy records dropped",
			zap.Int("malformed", report.Dropped),
			zap.Strings("duplicates", report.Duplicates),
		)
	}
	if len(report.Dangling) > 0 || len(report.CrossModule) > 0 {
		s.log.Warn("hierarchy records re-rooted",
			zap.Strings("dangling", report.Dangling),
			zap.Strings("cross_module", report.CrossModule),
			zap.Strings("unresolved_parent_names", snapshot.Normalize.Unresolved),
		)
	}
	s.log.Info("hierarchy rebuilt",
		zap.Int("records", report.Total),
		zap.Int("nodes", report.Nodes),
	)
}

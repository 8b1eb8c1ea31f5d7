// Package integrity audits the catalog and asset tables for records the
// hierarchy could not place cleanly.
package integrity

import (
	"context"
	"fmt"
	"sort"
	"time"

	"gorm.io/gorm"

	"github.com/assetmgr/assetmgr/internal/dashboard"
	"github.com/assetmgr/assetmgr/internal/hierarchy"
	"github.com/assetmgr/assetmgr/internal/models"
	"github.com/assetmgr/assetmgr/internal/services"
)

// CheckStatus is the outcome of a single check.
type CheckStatus string

const (
	StatusPass CheckStatus = "pass"
	StatusWarn CheckStatus = "warn"
	StatusFail CheckStatus = "fail"
)

// Check contains the result of one verification.
type Check struct {
	ID          string      `json:"id"`
	Status      CheckStatus `json:"status"`
	Message     string      `json:"message"`
	Remediation string      `json:"remediation,omitempty"`
	Details     any         `json:"details,omitempty"`
}

// Result aggregates all checks with a per-status count.
type Result struct {
	CheckedAt time.Time      `json:"checked_at"`
	Checks    []Check        `json:"checks"`
	Summary   map[string]int `json:"summary"`
}

// Failed reports whether any check failed.
func (r Result) Failed() bool {
	return r.Summary[string(StatusFail)] > 0
}

// Auditor runs integrity checks against the current hierarchy snapshot.
type Auditor struct {
	db        *gorm.DB
	hierarchy *services.HierarchyService
	now       func() time.Time
}

// NewAuditor constructs an auditor. db may be nil, in which case asset
// checks degrade to warnings.
func NewAuditor(db *gorm.DB, hierarchy *services.HierarchyService) *Auditor {
	return &Auditor{db: db, hierarchy: hierarchy, now: time.Now}
}

// WithClock overrides the clock used in results.
func (a *Auditor) WithClock(clock func() time.Time) {
	if clock != nil {
		a.now = clock
	}
}

// Run executes every check against the active snapshot.
func (a *Auditor) Run(ctx context.Context) Result {
	if ctx == nil {
		ctx = context.Background()
	}

	var snapshot *services.Snapshot
	if a.hierarchy != nil {
		snapshot = a.hierarchy.Current()
	}

	checks := []Check{
		checkBuilt(snapshot),
		checkCycles(snapshot),
		checkLinks(snapshot),
		checkKindParents(snapshot),
		checkEmptyFolders(snapshot),
		a.checkAssetTypes(ctx, snapshot),
		a.checkAssetStatuses(ctx),
	}

	summary := map[string]int{
		string(StatusPass): 0,
		string(StatusWarn): 0,
		string(StatusFail): 0,
	}
	for _, check := range checks {
		summary[string(check.Status)]++
	}

	return Result{
		CheckedAt: a.now().UTC(),
		Checks:    checks,
		Summary:   summary,
	}
}

func checkBuilt(snapshot *services.Snapshot) Check {
	if snapshot == nil || snapshot.BuiltAt.IsZero() {
		return Check{
			ID:          "hierarchy_built",
			Status:      StatusFail,
			Message:     "Hierarchy has not been built.",
			Remediation: "Trigger POST /api/hierarchy/rebuild or check the refresh job.",
		}
	}
	return Check{
		ID:      "hierarchy_built",
		Status:  StatusPass,
		Message: fmt.Sprintf("Hierarchy built at %s with %d nodes.", snapshot.BuiltAt.UTC().Format(time.RFC3339), snapshot.Manager.Len()),
		Details: map[string]any{"nodes": snapshot.Manager.Len(), "modules": snapshot.Manager.Modules()},
	}
}

func checkCycles(snapshot *services.Snapshot) Check {
	if snapshot == nil || len(snapshot.Report.Cycles) == 0 {
		return Check{ID: "parent_cycles", Status: StatusPass, Message: "No parent cycles."}
	}
	return Check{
		ID:          "parent_cycles",
		Status:      StatusFail,
		Message:     fmt.Sprintf("%d parent cycles were cut while building the hierarchy.", len(snapshot.Report.Cycles)),
		Remediation: "Re-parent one folder in each cycle so the chain reaches a root.",
		Details:     map[string]any{"promoted": snapshot.Report.Cycles},
	}
}

func checkLinks(snapshot *services.Snapshot) Check {
	if snapshot == nil {
		return Check{ID: "parent_links", Status: StatusWarn, Message: "Hierarchy unavailable."}
	}
	report := snapshot.Report
	issues := report.Dropped + len(report.Duplicates) + len(report.Dangling) + len(report.CrossModule)
	if issues == 0 {
		return Check{ID: "parent_links", Status: StatusPass, Message: "Every record was linked as stored."}
	}
	return Check{
		ID:          "parent_links",
		Status:      StatusWarn,
		Message:     fmt.Sprintf("%d records were dropped or moved to the root.", issues),
		Remediation: "Fix the parent of each listed record or remove duplicates.",
		Details: map[string]any{
			"dropped":      report.Dropped,
			"duplicates":   report.Duplicates,
			"dangling":     report.Dangling,
			"cross_module": report.CrossModule,
		},
	}
}

func checkKindParents(snapshot *services.Snapshot) Check {
	if snapshot == nil || len(snapshot.Normalize.Unresolved) == 0 {
		return Check{ID: "kind_parents", Status: StatusPass, Message: "Every kind parent name resolves."}
	}
	return Check{
		ID:          "kind_parents",
		Status:      StatusWarn,
		Message:     fmt.Sprintf("%d kinds name a parent that does not exist.", len(snapshot.Normalize.Unresolved)),
		Remediation: "Create the missing folder or update the kind's parent.",
		Details:     map[string]any{"kinds": snapshot.Normalize.Unresolved},
	}
}

func checkEmptyFolders(snapshot *services.Snapshot) Check {
	var empty []string
	if snapshot != nil {
		snapshot.Manager.Walk(func(node *hierarchy.Node, _ int) bool {
			if node.Type == hierarchy.TypeFolder && len(snapshot.Manager.KindNames(node.ID)) == 0 {
				empty = append(empty, node.ID)
			}
			return true
		})
	}
	if len(empty) == 0 {
		return Check{ID: "empty_folders", Status: StatusPass, Message: "Every folder contains at least one kind."}
	}
	return Check{
		ID:      "empty_folders",
		Status:  StatusWarn,
		Message: fmt.Sprintf("%d folders contain no asset kinds and always count zero.", len(empty)),
		Details: map[string]any{"folders": empty},
	}
}

func (a *Auditor) checkAssetTypes(ctx context.Context, snapshot *services.Snapshot) Check {
	if a.db == nil || snapshot == nil {
		return Check{ID: "asset_types", Status: StatusWarn, Message: "Database unavailable; asset types not checked."}
	}

	var types []string
	if err := a.db.WithContext(ctx).
		Model(&models.Asset{}).
		Where("is_placeholder = ?", false).
		Distinct().
		Pluck("type", &types).Error; err != nil {
		return Check{ID: "asset_types", Status: StatusWarn, Message: fmt.Sprintf("Could not list asset types: %v", err)}
	}

	known := make(map[string]struct{})
	snapshot.Manager.Walk(func(node *hierarchy.Node, _ int) bool {
		if node.IsKind() {
			known[node.Name] = struct{}{}
		}
		return true
	})

	var unknown []string
	for _, t := range types {
		if _, ok := known[t]; !ok {
			unknown = append(unknown, t)
		}
	}
	sort.Strings(unknown)

	if len(unknown) == 0 {
		return Check{ID: "asset_types", Status: StatusPass, Message: "Every asset type is a catalog kind."}
	}
	return Check{
		ID:          "asset_types",
		Status:      StatusWarn,
		Message:     fmt.Sprintf("%d asset types have no catalog kind and are missing from rollups.", len(unknown)),
		Remediation: "Create the kinds or correct the asset types.",
		Details:     map[string]any{"types": unknown},
	}
}

func (a *Auditor) checkAssetStatuses(ctx context.Context) Check {
	if a.db == nil {
		return Check{ID: "asset_statuses", Status: StatusWarn, Message: "Database unavailable; asset statuses not checked."}
	}

	var count int64
	if err := a.db.WithContext(ctx).
		Model(&models.Asset{}).
		Where("is_placeholder = ?", false).
		Where("status NOT IN ?", []string{dashboard.StatusInUse, dashboard.StatusInStore, dashboard.StatusInRepair, ""}).
		Count(&count).Error; err != nil {
		return Check{ID: "asset_statuses", Status: StatusWarn, Message: fmt.Sprintf("Could not count asset statuses: %v", err)}
	}

	if count == 0 {
		return Check{ID: "asset_statuses", Status: StatusPass, Message: "Every asset status maps to a dashboard bucket."}
	}
	return Check{
		ID:      "asset_statuses",
		Status:  StatusWarn,
		Message: fmt.Sprintf("%d assets have a status counted as other.", count),
		Details: map[string]any{"count": count},
	}
}

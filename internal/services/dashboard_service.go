package services

import (
	"context"
	"errors"
	"strings"

	"github.com/assetmgr/assetmgr/internal/dashboard"
	apperrors "github.com/assetmgr/assetmgr/pkg/errors"
)

// DashboardService combines the current hierarchy snapshot with asset rows.
type DashboardService struct {
	hierarchy *HierarchyService
	assets    *AssetService
}

// NewDashboardService constructs a dashboard service.
func NewDashboardService(hierarchy *HierarchyService, assets *AssetService) (*DashboardService, error) {
	if hierarchy == nil {
		return nil, errors.New("dashboard service: hierarchy service is required")
	}
	if assets == nil {
		return nil, errors.New("dashboard service: asset service is required")
	}
	return &DashboardService{hierarchy: hierarchy, assets: assets}, nil
}

// View returns the dashboard cards of module below parentID, or the module
// roots when parentID is empty.
func (s *DashboardService) View(ctx context.Context, module, parentID string) (*dashboard.View, error) {
	module = strings.TrimSpace(module)
	if module == "" {
		return nil, apperrors.NewBadRequest("module is required")
	}
	parentID = strings.TrimSpace(parentID)

	snapshot := s.hierarchy.Current()
	assets, err := s.assets.RollupSource(ctx, module)
	if err != nil {
		return nil, err
	}

	view, ok := dashboard.Cards(snapshot.Manager, assets, module, parentID)
	if !ok {
		return nil, apperrors.NewNotFound("node", parentID)
	}
	return &view, nil
}

// Rollup returns the status counts of module below nodeID.
func (s *DashboardService) Rollup(ctx context.Context, module, nodeID string) (dashboard.Counts, error) {
	module = strings.TrimSpace(module)
	snapshot := s.hierarchy.Current()
	assets, err := s.assets.RollupSource(ctx, module)
	if err != nil {
		return dashboard.Counts{}, err
	}

	counts, ok := dashboard.Rollup(snapshot.Manager, assets, module, strings.TrimSpace(nodeID))
	if !ok {
		return dashboard.Counts{}, apperrors.NewNotFound("node", nodeID)
	}
	return counts, nil
}

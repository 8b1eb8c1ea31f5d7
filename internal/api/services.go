package api

import (
	"errors"

	"gorm.io/gorm"

	"github.com/assetmgr/assetmgr/internal/services"
)

// Services bundles the domain services shared by the router, the scheduler
// and the CLI.
type Services struct {
	Audit     *services.AuditService
	Catalog   *services.CatalogService
	Hierarchy *services.HierarchyService
	Assets    *services.AssetService
	Dashboard *services.DashboardService
}

// NewServices wires the domain services over db. Catalog mutations rebuild
// the hierarchy snapshot; the caller performs the initial build.
func NewServices(db *gorm.DB, defaultModule string) (*Services, error) {
	if db == nil {
		return nil, errors.New("database handle must be provided")
	}

	audit, err := services.NewAuditService(db)
	if err != nil {
		return nil, err
	}
	catalog, err := services.NewCatalogService(db, audit, services.WithDefaultModule(defaultModule))
	if err != nil {
		return nil, err
	}
	hier, err := services.NewHierarchyService(catalog)
	if err != nil {
		return nil, err
	}
	catalog.SetRebuilder(hier)

	assets, err := services.NewAssetService(db, audit, services.WithAssetDefaultModule(defaultModule))
	if err != nil {
		return nil, err
	}
	dash, err := services.NewDashboardService(hier, assets)
	if err != nil {
		return nil, err
	}

	return &Services{
		Audit:     audit,
		Catalog:   catalog,
		Hierarchy: hier,
		Assets:    assets,
		Dashboard: dash,
	}, nil
}

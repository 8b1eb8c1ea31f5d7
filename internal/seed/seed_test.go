package seed

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/lithammer/dedent"
	"github.com/stretchr/testify/require"

	"github.com/assetmgr/assetmgr/internal/database"
	"github.com/assetmgr/assetmgr/internal/database/testutil"
	"github.com/assetmgr/assetmgr/internal/services"
)

var catalogYAML = dedent.Dedent(`
	folders:
	  - id: F1
	    name: Hardware
	    module: IT
	    ordering: 1
	  - id: F2
	    name: Networking
	    parent: F1
	    module: IT
	kinds:
	  - name: Laptop
	    module: IT
	    parent: Hardware
	  - name: Router
	    module: IT
	    parent: Networking
	assets:
	  - id: L1
	    name: ThinkPad
	    type: Laptop
	    status: In Use
	    metadata:
	      ram: 16GB
	  - id: R1
	    name: Edge
	    type: Router
`)

type fixture struct {
	loader    *Loader
	catalog   *services.CatalogService
	assets    *services.AssetService
	audit     *services.AuditService
	hierarchy *services.HierarchyService
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	audit, err := services.NewAuditService(db)
	require.NoError(t, err)
	catalog, err := services.NewCatalogService(db, audit)
	require.NoError(t, err)
	hier, err := services.NewHierarchyService(catalog)
	require.NoError(t, err)
	catalog.SetRebuilder(hier)
	assets, err := services.NewAssetService(db, audit)
	require.NoError(t, err)
	loader, err := NewLoader(db, catalog, assets, audit)
	require.NoError(t, err)
	return fixture{loader: loader, catalog: catalog, assets: assets, audit: audit, hierarchy: hier}
}

func TestParse(t *testing.T) {
	file, err := Parse([]byte(catalogYAML))
	require.NoError(t, err)
	require.Len(t, file.Folders, 2)
	require.Equal(t, "F1", file.Folders[1].Parent)
	require.Equal(t, 1, *file.Folders[0].Ordering)
	require.Nil(t, file.Folders[1].Ordering)
	require.Equal(t, "16GB", file.Assets[0].Metadata["ram"])

	empty, err := Parse(nil)
	require.NoError(t, err)
	require.Empty(t, empty.Folders)

	_, err = Parse([]byte("folders:\n  - id: F1\n"))
	require.ErrorContains(t, err, "name is required")

	_, err = Parse([]byte("widgets: []\n"))
	require.Error(t, err)

	_, err = Parse([]byte("assets:\n  - name: Orphan\n"))
	require.ErrorContains(t, err, "type is required")
}

func TestApplyBuildsCatalog(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	result, err := fx.loader.Apply(ctx, "ops", []byte(catalogYAML), false)
	require.NoError(t, err)
	require.False(t, result.Skipped)
	require.Equal(t, 2, result.Folders)
	require.Equal(t, 2, result.Kinds)
	require.Equal(t, 2, result.Assets)
	require.Equal(t, Fingerprint([]byte(catalogYAML)), result.Fingerprint)

	snapshot := fx.hierarchy.Current()
	router, ok := snapshot.Manager.Find("Router")
	require.True(t, ok)
	require.Equal(t, "F2", router.ParentID)
	require.ElementsMatch(t, []string{"Laptop", "Router"}, snapshot.Manager.KindNames("F1"))

	asset, err := fx.assets.Get(ctx, "L1")
	require.NoError(t, err)
	require.Equal(t, "In Use", asset.Status)

	logs, total, err := fx.audit.List(ctx, services.AuditListOptions{Filters: services.AuditFilters{Action: services.AuditCatalogSeed}})
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	require.Equal(t, "ops", logs[0].Actor)
}

func TestApplySkipsSameFingerprint(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	_, err := fx.loader.Apply(ctx, "", []byte(catalogYAML), false)
	require.NoError(t, err)

	again, err := fx.loader.Apply(ctx, "", []byte(catalogYAML), false)
	require.NoError(t, err)
	require.True(t, again.Skipped)
	require.Zero(t, again.Folders)

	forced, err := fx.loader.Apply(ctx, "", []byte(catalogYAML), true)
	require.NoError(t, err)
	require.False(t, forced.Skipped)
	require.Equal(t, 2, forced.Folders)
	require.Zero(t, forced.Assets)
	require.Equal(t, 2, forced.ExistingAsset)

	stored, err := database.GetSetting(ctx, fx.loader.db, database.SeedFingerprintSetting)
	require.NoError(t, err)
	require.Equal(t, forced.Fingerprint, stored)
}

func TestApplyFile(t *testing.T) {
	fx := newFixture(t)
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(catalogYAML), 0o600))

	result, err := fx.loader.ApplyFile(context.Background(), "", path, false)
	require.NoError(t, err)
	require.Equal(t, 2, result.Kinds)

	_, err = fx.loader.ApplyFile(context.Background(), "", filepath.Join(t.TempDir(), "missing.yaml"), false)
	require.Error(t, err)
}

func TestApplyStopsOnInvalidRecord(t *testing.T) {
	fx := newFixture(t)

	bad := dedent.Dedent(`
		folders:
		  - id: F1
		    name: Loop
		    parent: F1
	`)
	_, err := fx.loader.Apply(context.Background(), "", []byte(bad), false)
	require.ErrorContains(t, err, "Loop")

	stored, err := database.GetSetting(context.Background(), fx.loader.db, database.SeedFingerprintSetting)
	require.NoError(t, err)
	require.Empty(t, stored)
}

func TestNewLoaderRequiresServices(t *testing.T) {
	_, err := NewLoader(nil, nil, nil, nil)
	require.Error(t, err)
}

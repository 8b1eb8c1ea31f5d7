package integrity

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/assetmgr/assetmgr/internal/database/testutil"
	"github.com/assetmgr/assetmgr/internal/models"
	"github.com/assetmgr/assetmgr/internal/services"
)

func newHierarchy(t *testing.T, db *gorm.DB) (*services.CatalogService, *services.HierarchyService) {
	t.Helper()
	catalog, err := services.NewCatalogService(db, nil)
	require.NoError(t, err)
	hier, err := services.NewHierarchyService(catalog)
	require.NoError(t, err)
	catalog.SetRebuilder(hier)
	return catalog, hier
}

func findCheck(t *testing.T, result Result, id string) Check {
	t.Helper()
	for _, check := range result.Checks {
		if check.ID == id {
			return check
		}
	}
	t.Fatalf("check %s not found", id)
	return Check{}
}

func strPtr(v string) *string { return &v }

func TestAuditorCleanCatalog(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	catalog, hier := newHierarchy(t, db)
	ctx := context.Background()

	_, err := catalog.SaveFolder(ctx, "", services.FolderInput{ID: "F1", Name: "Networking", Module: "IT"})
	require.NoError(t, err)
	_, err = catalog.SaveKind(ctx, "", services.KindInput{Name: "Router", Module: "IT", ParentName: strPtr("Networking")})
	require.NoError(t, err)
	require.NoError(t, db.Create(&models.Asset{BaseModel: models.BaseModel{ID: "R1"}, ItemName: "Edge", Type: "Router", Category: "IT", Status: "In Use"}).Error)

	auditor := NewAuditor(db, hier)
	fixed := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	auditor.WithClock(func() time.Time { return fixed })

	result := auditor.Run(ctx)
	require.Equal(t, fixed, result.CheckedAt)
	require.Len(t, result.Checks, 7)
	require.Equal(t, 7, result.Summary[string(StatusPass)], result.Checks)
	require.False(t, result.Failed())
}

func TestAuditorFlagsProblems(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	_, hier := newHierarchy(t, db)
	ctx := context.Background()

	require.NoError(t, db.Create(&models.Folder{BaseModel: models.BaseModel{ID: "A"}, Name: "Loop A", ParentID: strPtr("B"), Module: "IT"}).Error)
	require.NoError(t, db.Create(&models.Folder{BaseModel: models.BaseModel{ID: "B"}, Name: "Loop B", ParentID: strPtr("A"), Module: "IT"}).Error)
	require.NoError(t, db.Create(&models.AssetKind{Name: "Scanner", Module: "IT", ParentName: strPtr("Imaging")}).Error)
	require.NoError(t, db.Create(&models.Asset{BaseModel: models.BaseModel{ID: "X1"}, ItemName: "Thing", Type: "Widget", Category: "IT", Status: "Disposed"}).Error)
	require.NoError(t, db.Create(&models.Asset{BaseModel: models.BaseModel{ID: "X2"}, ItemName: "Spare", Type: "Gadget", Category: "IT", IsPlaceholder: true}).Error)

	_, err := hier.Rebuild(ctx)
	require.NoError(t, err)

	result := NewAuditor(db, hier).Run(ctx)
	require.True(t, result.Failed())

	require.Equal(t, StatusFail, findCheck(t, result, "parent_cycles").Status)
	require.Equal(t, StatusWarn, findCheck(t, result, "parent_links").Status)
	require.Equal(t, StatusWarn, findCheck(t, result, "kind_parents").Status)
	require.Equal(t, StatusWarn, findCheck(t, result, "empty_folders").Status)

	types := findCheck(t, result, "asset_types")
	require.Equal(t, StatusWarn, types.Status)
	require.Equal(t, []string{"Widget"}, types.Details.(map[string]any)["types"])

	statuses := findCheck(t, result, "asset_statuses")
	require.Equal(t, StatusWarn, statuses.Status)
	require.Equal(t, int64(1), statuses.Details.(map[string]any)["count"])
}

func TestAuditorWithoutDependencies(t *testing.T) {
	result := NewAuditor(nil, nil).Run(context.Background())
	require.Equal(t, StatusFail, findCheck(t, result, "hierarchy_built").Status)
	require.Equal(t, StatusWarn, findCheck(t, result, "asset_types").Status)
	require.Equal(t, StatusWarn, findCheck(t, result, "asset_statuses").Status)
}

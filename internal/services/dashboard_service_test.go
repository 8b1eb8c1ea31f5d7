package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/assetmgr/assetmgr/internal/dashboard"
	"github.com/assetmgr/assetmgr/internal/database/testutil"
	apperrors "github.com/assetmgr/assetmgr/pkg/errors"
)

func TestDashboardServiceEndToEnd(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	audit, err := NewAuditService(db)
	require.NoError(t, err)
	catalog, err := NewCatalogService(db, audit)
	require.NoError(t, err)
	hier, err := NewHierarchyService(catalog)
	require.NoError(t, err)
	catalog.SetRebuilder(hier)
	assets, err := NewAssetService(db, audit)
	require.NoError(t, err)
	dash, err := NewDashboardService(hier, assets)
	require.NoError(t, err)

	ctx := context.Background()
	_, err = catalog.SaveFolder(ctx, "", FolderInput{ID: "F1", Name: "Networking", Module: "IT"})
	require.NoError(t, err)
	_, err = catalog.SaveKind(ctx, "", KindInput{Name: "Router", Module: "IT", ParentName: strPtr("Networking")})
	require.NoError(t, err)

	node, ok := hier.Current().Manager.Find("Router")
	require.True(t, ok)
	require.Equal(t, "F1", node.ParentID)

	for _, in := range []AssetInput{
		{ID: "R1", ItemName: "Core", Type: "Router", Status: dashboard.StatusInUse},
		{ID: "R2", ItemName: "Edge", Type: "Router", Status: dashboard.StatusInRepair},
		{ID: "R3", ItemName: "Spare", Type: "Router", IsPlaceholder: true},
	} {
		_, err := assets.Create(ctx, "", in)
		require.NoError(t, err)
	}

	view, err := dash.View(ctx, "IT", "")
	require.NoError(t, err)
	require.Len(t, view.Cards, 1)
	require.Equal(t, "F1", view.Cards[0].ID)
	require.Equal(t, dashboard.Counts{Total: 2, InUse: 1, InRepair: 1}, view.Cards[0].Counts)

	view, err = dash.View(ctx, "IT", "F1")
	require.NoError(t, err)
	require.Len(t, view.Cards, 1)
	require.True(t, view.Cards[0].Leaf)

	counts, err := dash.Rollup(ctx, "IT", "F1")
	require.NoError(t, err)
	require.Equal(t, 2, counts.Total)

	_, err = dash.View(ctx, "IT", "missing")
	require.True(t, apperrors.IsNotFound(err))
	_, err = dash.Rollup(ctx, "IT", "missing")
	require.True(t, apperrors.IsNotFound(err))
	_, err = dash.View(ctx, " ", "")
	require.Error(t, err)

	require.NoError(t, catalog.DeleteFolder(ctx, "", "F1"))
	view, err = dash.View(ctx, "IT", "")
	require.NoError(t, err)
	require.Len(t, view.Cards, 1)
	require.Equal(t, "Router", view.Cards[0].ID)
}

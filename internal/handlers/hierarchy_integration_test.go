package handlers_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/assetmgr/assetmgr/internal/app"
	"github.com/assetmgr/assetmgr/internal/handlers/testutil"
	"github.com/assetmgr/assetmgr/internal/integrity"
	"github.com/assetmgr/assetmgr/internal/models"
)

type snapshotPayload struct {
	Nodes   int      `json:"nodes"`
	Modules []string `json:"modules"`
	Report  struct {
		Total    int      `json:"total"`
		Dangling []string `json:"dangling"`
		Cycles   []string `json:"cycles"`
	} `json:"report"`
	Normalize struct {
		Unresolved []string `json:"unresolved"`
	} `json:"normalize"`
}

func TestHierarchyRebuildPicksUpDirectEdits(t *testing.T) {
	env := testutil.NewEnv(t)
	seedCatalog(t, env)

	a, b := "B", "A"
	require.NoError(t, env.DB.Create(&models.Folder{BaseModel: models.BaseModel{ID: "A"}, Name: "Loop A", ParentID: &a, Module: "IT"}).Error)
	require.NoError(t, env.DB.Create(&models.Folder{BaseModel: models.BaseModel{ID: "B"}, Name: "Loop B", ParentID: &b, Module: "IT"}).Error)
	missing := "Imaging"
	require.NoError(t, env.DB.Create(&models.AssetKind{Name: "Scanner", Module: "IT", ParentName: &missing}).Error)

	var before snapshotPayload
	testutil.MustSucceed(t, env.Request(http.MethodGet, "/api/hierarchy", nil, ""), http.StatusOK, &before)
	require.Equal(t, 6, before.Nodes)

	var after snapshotPayload
	testutil.MustSucceed(t, env.Request(http.MethodPost, "/api/hierarchy/rebuild", nil, ""), http.StatusOK, &after)
	require.Equal(t, 9, after.Nodes)
	require.Equal(t, []string{"General", "IT"}, after.Modules)
	require.Equal(t, []string{"A"}, after.Report.Cycles)
	require.Equal(t, []string{"Scanner"}, after.Report.Dangling)
	require.Equal(t, []string{"Scanner"}, after.Normalize.Unresolved)
}

func TestHierarchyNotFoundAndInvalid(t *testing.T) {
	env := testutil.NewEnv(t)

	w := env.Request(http.MethodGet, "/api/hierarchy/nodes/missing", nil, "")
	require.Equal(t, http.StatusNotFound, w.Code)
	resp := testutil.DecodeResponse(t, w)
	require.Equal(t, "NOT_FOUND", resp.Error.Code)

	w = env.Request(http.MethodGet, "/api/hierarchy/nodes/missing/descendants", nil, "")
	require.Equal(t, http.StatusNotFound, w.Code)

	var tree struct {
		Nodes []any `json:"nodes"`
	}
	testutil.MustSucceed(t, env.Request(http.MethodGet, "/api/hierarchy/Unknown", nil, ""), http.StatusOK, &tree)
	require.NotNil(t, tree.Nodes)
	require.Empty(t, tree.Nodes)

	w = env.Request(http.MethodGet, "/api/hierarchy/-bad", nil, "")
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHierarchyRebuildRateLimited(t *testing.T) {
	env := testutil.NewEnv(t, func(cfg *app.Config) { cfg.Server.RebuildRateLimit = 1 })

	require.Equal(t, http.StatusOK, env.Request(http.MethodPost, "/api/hierarchy/rebuild", nil, "").Code)
	require.Equal(t, http.StatusTooManyRequests, env.Request(http.MethodPost, "/api/hierarchy/rebuild", nil, "").Code)
}

func TestIntegrityEndpoint(t *testing.T) {
	env := testutil.NewEnv(t)
	seedCatalog(t, env)

	var result integrity.Result
	testutil.MustSucceed(t, env.Request(http.MethodGet, "/api/integrity", nil, ""), http.StatusOK, &result)
	require.Len(t, result.Checks, 7)
	require.False(t, result.Failed())
}

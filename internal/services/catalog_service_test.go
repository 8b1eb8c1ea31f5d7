package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/assetmgr/assetmgr/internal/database/testutil"
	"github.com/assetmgr/assetmgr/internal/models"
	apperrors "github.com/assetmgr/assetmgr/pkg/errors"
)

type countingRebuilder struct {
	calls int
}

func (r *countingRebuilder) Rebuild(context.Context) (*Snapshot, error) {
	r.calls++
	return nil, nil
}

func newCatalogFixture(t *testing.T, opts ...CatalogOption) (*CatalogService, *AuditService, *gorm.DB) {
	t.Helper()
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	audit, err := NewAuditService(db)
	require.NoError(t, err)
	svc, err := NewCatalogService(db, audit, opts...)
	require.NoError(t, err)
	return svc, audit, db
}

func strPtr(v string) *string { return &v }

func TestCatalogServiceSaveFolderDefaults(t *testing.T) {
	fixed := time.UnixMilli(1700000000123)
	svc, audit, _ := newCatalogFixture(t, WithCatalogClock(func() time.Time { return fixed }))
	rebuilder := &countingRebuilder{}
	svc.SetRebuilder(rebuilder)

	ctx := context.Background()
	folder, err := svc.SaveFolder(ctx, "alice", FolderInput{Name: " Networking "})
	require.NoError(t, err)
	require.Equal(t, "F1700000000123", folder.ID)
	require.Equal(t, "Networking", folder.Name)
	require.Equal(t, DefaultModule, folder.Module)
	require.Equal(t, defaultFolderIcon, folder.Icon)
	require.Nil(t, folder.ParentID)
	require.Equal(t, 1, rebuilder.calls)

	logs, total, err := audit.List(ctx, AuditListOptions{Filters: AuditFilters{Action: AuditFolderSave}})
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	require.Equal(t, "alice", logs[0].Actor)
	require.Equal(t, "folder:F1700000000123", logs[0].Resource)
}

func TestCatalogServiceSaveFolderUpserts(t *testing.T) {
	svc, _, _ := newCatalogFixture(t)
	ctx := context.Background()

	_, err := svc.SaveFolder(ctx, "", FolderInput{ID: "F1", Name: "Hardware", Module: "IT"})
	require.NoError(t, err)
	_, err = svc.SaveFolder(ctx, "", FolderInput{ID: "F2", Name: "Networking", Module: "IT"})
	require.NoError(t, err)

	order := 3
	updated, err := svc.SaveFolder(ctx, "", FolderInput{ID: "F2", Name: "Network", ParentID: strPtr("F1"), Module: "IT", Icon: "🛜", Ordering: &order})
	require.NoError(t, err)
	require.Equal(t, "Network", updated.Name)
	require.Equal(t, "F1", *updated.ParentID)
	require.Equal(t, 3, updated.Ordering)
	require.Equal(t, "🛜", updated.Icon)

	folders, err := svc.ListFolders(ctx)
	require.NoError(t, err)
	require.Len(t, folders, 2)
	require.Equal(t, "F1", folders[0].ID)
}

func TestCatalogServiceSaveFolderRejectsInvalid(t *testing.T) {
	svc, _, _ := newCatalogFixture(t)
	ctx := context.Background()

	_, err := svc.SaveFolder(ctx, "", FolderInput{Name: "  "})
	require.Error(t, err)

	_, err = svc.SaveFolder(ctx, "", FolderInput{ID: "F1", Name: "Loop", ParentID: strPtr("F1")})
	require.Error(t, err)

	_, err = svc.SaveFolder(ctx, "", FolderInput{ID: "A", Name: "A"})
	require.NoError(t, err)
	_, err = svc.SaveFolder(ctx, "", FolderInput{ID: "B", Name: "B", ParentID: strPtr("A")})
	require.NoError(t, err)
	_, err = svc.SaveFolder(ctx, "", FolderInput{ID: "A", Name: "A", ParentID: strPtr("B")})
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, apperrors.ErrBadRequest.Code, appErr.Code)
}

func TestCatalogServiceSaveFolderAllowsUnknownParent(t *testing.T) {
	svc, _, _ := newCatalogFixture(t)

	folder, err := svc.SaveFolder(context.Background(), "", FolderInput{ID: "F9", Name: "Orphan", ParentID: strPtr("MISSING")})
	require.NoError(t, err)
	require.Equal(t, "MISSING", *folder.ParentID)
}

func TestCatalogServiceDeleteFolderReparentsChildren(t *testing.T) {
	svc, _, db := newCatalogFixture(t)
	ctx := context.Background()

	_, err := svc.SaveFolder(ctx, "", FolderInput{ID: "ROOT", Name: "Hardware", Module: "IT"})
	require.NoError(t, err)
	_, err = svc.SaveFolder(ctx, "", FolderInput{ID: "MID", Name: "Networking", ParentID: strPtr("ROOT"), Module: "IT"})
	require.NoError(t, err)
	_, err = svc.SaveFolder(ctx, "", FolderInput{ID: "LEAF", Name: "Wireless", ParentID: strPtr("MID"), Module: "IT"})
	require.NoError(t, err)
	_, err = svc.SaveKind(ctx, "", KindInput{Name: "Router", Module: "IT", ParentName: strPtr("Networking")})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteFolder(ctx, "bob", "MID"))

	var leaf models.Folder
	require.NoError(t, db.First(&leaf, "id = ?", "LEAF").Error)
	require.Equal(t, "ROOT", *leaf.ParentID)

	kind, err := svc.GetKind(ctx, "Router")
	require.NoError(t, err)
	require.Equal(t, "Hardware", *kind.ParentName)

	_, err = svc.GetFolder(ctx, "MID")
	require.True(t, apperrors.IsNotFound(err))

	require.True(t, apperrors.IsNotFound(svc.DeleteFolder(ctx, "bob", "MID")))
}

func TestCatalogServiceDeleteRootFolderClearsKindParent(t *testing.T) {
	svc, _, _ := newCatalogFixture(t)
	ctx := context.Background()

	_, err := svc.SaveFolder(ctx, "", FolderInput{ID: "ROOT", Name: "Hardware", Module: "IT"})
	require.NoError(t, err)
	_, err = svc.SaveKind(ctx, "", KindInput{Name: "Laptop", Module: "IT", ParentName: strPtr("Hardware")})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteFolder(ctx, "", "ROOT"))

	kind, err := svc.GetKind(ctx, "Laptop")
	require.NoError(t, err)
	require.Nil(t, kind.ParentName)
}

func TestCatalogServiceDeleteFolderKeepsKindsOfSameNamedFolder(t *testing.T) {
	svc, _, _ := newCatalogFixture(t)
	ctx := context.Background()

	for _, in := range []FolderInput{
		{ID: "R1", Name: "Office A", Module: "IT"},
		{ID: "R2", Name: "Office B", Module: "IT"},
		{ID: "F1", Name: "Laptops", ParentID: strPtr("R1"), Module: "IT"},
		{ID: "F2", Name: "Laptops", ParentID: strPtr("R2"), Module: "IT"},
	} {
		_, err := svc.SaveFolder(ctx, "", in)
		require.NoError(t, err)
	}
	_, err := svc.SaveKind(ctx, "", KindInput{Name: "Dell", Module: "IT", ParentName: strPtr("Laptops")})
	require.NoError(t, err)

	require.Equal(t, "F1", kindParentID(t, svc, "Dell"))

	require.NoError(t, svc.DeleteFolder(ctx, "", "F2"))
	kind, err := svc.GetKind(ctx, "Dell")
	require.NoError(t, err)
	require.Equal(t, "Laptops", *kind.ParentName)
	require.Equal(t, "F1", kindParentID(t, svc, "Dell"))

	require.NoError(t, svc.DeleteFolder(ctx, "", "F1"))
	kind, err = svc.GetKind(ctx, "Dell")
	require.NoError(t, err)
	require.Equal(t, "Office A", *kind.ParentName)
	require.Equal(t, "R1", kindParentID(t, svc, "Dell"))
}

func kindParentID(t *testing.T, svc *CatalogService, name string) string {
	t.Helper()
	records, _, err := svc.Records(context.Background())
	require.NoError(t, err)
	for _, rec := range records {
		if rec.ID == name {
			return rec.ParentID
		}
	}
	t.Fatalf("kind %s not in records", name)
	return ""
}

func TestCatalogServiceSaveKindRejectsParentCycles(t *testing.T) {
	svc, _, _ := newCatalogFixture(t)
	ctx := context.Background()

	_, err := svc.SaveKind(ctx, "", KindInput{Name: "K1", Module: "IT", ParentName: strPtr("K2")})
	require.NoError(t, err)
	_, err = svc.SaveKind(ctx, "", KindInput{Name: "K2", Module: "IT", ParentName: strPtr("K3")})
	require.NoError(t, err)

	_, err = svc.SaveKind(ctx, "", KindInput{Name: "K3", Module: "IT", ParentName: strPtr("K1")})
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, apperrors.ErrBadRequest.Code, appErr.Code)
	_, err = svc.GetKind(ctx, "K3")
	require.True(t, apperrors.IsNotFound(err))

	_, err = svc.SaveFolder(ctx, "", FolderInput{ID: "F1", Name: "K1", Module: "IT"})
	require.NoError(t, err)
	_, err = svc.SaveKind(ctx, "", KindInput{Name: "K3", Module: "IT", ParentName: strPtr("K1")})
	require.NoError(t, err)
}

func TestCatalogServiceSaveKindUpsertsByName(t *testing.T) {
	svc, _, _ := newCatalogFixture(t)
	ctx := context.Background()

	kind, err := svc.SaveKind(ctx, "", KindInput{Name: "Laptop"})
	require.NoError(t, err)
	require.Equal(t, DefaultModule, kind.Module)
	require.Equal(t, defaultKindIcon, kind.Icon)
	require.Nil(t, kind.ParentName)

	kind, err = svc.SaveKind(ctx, "", KindInput{Name: "Laptop", Module: "General", ParentName: strPtr("Hardware")})
	require.NoError(t, err)
	require.Equal(t, "General", kind.Module)
	require.Equal(t, "Hardware", *kind.ParentName)

	kinds, err := svc.ListKinds(ctx)
	require.NoError(t, err)
	require.Len(t, kinds, 1)

	_, err = svc.SaveKind(ctx, "", KindInput{Name: "Loop", ParentName: strPtr("Loop")})
	require.Error(t, err)
	_, err = svc.SaveKind(ctx, "", KindInput{})
	require.Error(t, err)
}

func TestCatalogServiceDeleteKind(t *testing.T) {
	svc, _, db := newCatalogFixture(t)
	ctx := context.Background()

	_, err := svc.SaveKind(ctx, "", KindInput{Name: "Laptop", ParentName: strPtr("Hardware")})
	require.NoError(t, err)
	_, err = svc.SaveKind(ctx, "", KindInput{Name: "Gaming Laptop", ParentName: strPtr("Laptop")})
	require.NoError(t, err)
	_, err = svc.SaveKind(ctx, "", KindInput{Name: "Mouse"})
	require.NoError(t, err)

	require.NoError(t, db.Create(&models.Asset{BaseModel: models.BaseModel{ID: "A1"}, ItemName: "MX", Type: "Mouse", Category: "IT"}).Error)

	err = svc.DeleteKind(ctx, "", "Mouse")
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, apperrors.ErrConflict.Code, appErr.Code)

	require.NoError(t, svc.DeleteKind(ctx, "", "Laptop"))
	child, err := svc.GetKind(ctx, "Gaming Laptop")
	require.NoError(t, err)
	require.Equal(t, "Hardware", *child.ParentName)

	require.True(t, apperrors.IsNotFound(svc.DeleteKind(ctx, "", "Laptop")))
}

func TestCatalogServiceRecordsNormalizesKinds(t *testing.T) {
	svc, _, _ := newCatalogFixture(t)
	ctx := context.Background()

	_, err := svc.SaveFolder(ctx, "", FolderInput{ID: "F1", Name: "Networking", Module: "IT"})
	require.NoError(t, err)
	_, err = svc.SaveKind(ctx, "", KindInput{Name: "Router", Module: "IT", ParentName: strPtr("Networking")})
	require.NoError(t, err)
	_, err = svc.SaveKind(ctx, "", KindInput{Name: "Scanner", Module: "IT", ParentName: strPtr("Imaging")})
	require.NoError(t, err)

	records, report, err := svc.Records(ctx)
	require.NoError(t, err)
	require.Len(t, records, 3)
	require.Equal(t, "F1", records[1].ParentID)
	require.Equal(t, 1, report.ResolvedByName)
	require.Equal(t, []string{"Scanner"}, report.Unresolved)
}

func TestNewCatalogServiceRequiresDB(t *testing.T) {
	_, err := NewCatalogService(nil, nil)
	require.Error(t, err)
}

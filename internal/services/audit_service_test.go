package services

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/assetmgr/assetmgr/internal/auditctx"
	"github.com/assetmgr/assetmgr/internal/database/testutil"
	"github.com/assetmgr/assetmgr/internal/models"
)

func TestAuditServiceLogAndList(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	svc, err := NewAuditService(db)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, svc.Log(ctx, AuditEntry{
		Actor:    "alice",
		Action:   AuditFolderSave,
		Resource: "folder:F1",
		Details:  "Saved folder Networking",
		Metadata: map[string]any{"module": "IT"},
	}))
	require.NoError(t, svc.Log(ctx, AuditEntry{
		Action:   AuditAssetCreate,
		AssetID:  "MUM-0125-ABCDEF-K",
		Severity: "WARNING",
	}))

	logs, total, err := svc.List(ctx, AuditListOptions{Page: 1, PageSize: 10})
	require.NoError(t, err)
	require.Equal(t, int64(2), total)
	require.Len(t, logs, 2)

	logs, total, err = svc.List(ctx, AuditListOptions{Filters: AuditFilters{Actor: "alice"}})
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	require.Equal(t, models.SeverityInfo, logs[0].Severity)

	var metadata map[string]any
	require.NoError(t, json.Unmarshal(logs[0].Metadata, &metadata))
	require.Equal(t, "IT", metadata["module"])

	logs, _, err = svc.List(ctx, AuditListOptions{Filters: AuditFilters{AssetID: "MUM-0125-ABCDEF-K"}})
	require.NoError(t, err)
	require.Len(t, logs, 1)
	require.Equal(t, "system", logs[0].Actor)
	require.Equal(t, models.SeverityWarning, logs[0].Severity)
}

func TestAuditServiceLogValidation(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	svc, err := NewAuditService(db)
	require.NoError(t, err)

	require.Error(t, svc.Log(context.Background(), AuditEntry{}))
	require.Error(t, svc.Log(context.Background(), AuditEntry{Action: "x", Severity: "loud"}))

	_, err = NewAuditService(nil)
	require.Error(t, err)
}

func TestAuditServiceCleanupOlderThan(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	svc, err := NewAuditService(db)
	require.NoError(t, err)

	oldLog := models.AuditLog{
		Action:    "old.action",
		Metadata:  datatypes.JSON("{}"),
		CreatedAt: time.Now().AddDate(0, 0, -10),
	}
	require.NoError(t, db.Create(&oldLog).Error)
	require.NoError(t, svc.Log(context.Background(), AuditEntry{Action: "new.action"}))

	ctx := context.Background()
	rows, err := svc.CleanupOlderThan(ctx, 5)
	require.NoError(t, err)
	require.Equal(t, int64(1), rows)

	_, err = svc.CleanupOlderThan(ctx, 0)
	require.Error(t, err)
}

func TestAuditServiceLogRecordsRequestOrigin(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	svc, err := NewAuditService(db)
	require.NoError(t, err)

	ctx := auditctx.WithActor(context.Background(), auditctx.Actor{Name: "dana", IPAddress: "10.1.2.3", UserAgent: "curl/8"})
	require.NoError(t, svc.Log(ctx, AuditEntry{Action: AuditFolderSave, Metadata: map[string]any{"module": "IT"}}))

	logs, _, err := svc.List(context.Background(), AuditListOptions{})
	require.NoError(t, err)
	require.Len(t, logs, 1)
	require.Equal(t, "dana", logs[0].Actor)

	var meta map[string]any
	require.NoError(t, json.Unmarshal(logs[0].Metadata, &meta))
	require.Equal(t, map[string]any{"module": "IT", "ip_address": "10.1.2.3", "user_agent": "curl/8"}, meta)
}

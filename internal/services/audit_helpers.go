package services

import (
	"context"

	"go.uber.org/zap"

	"github.com/assetmgr/assetmgr/pkg/logger"
)

// Audit actions recorded for catalog mutations.
const (
	AuditFolderSave   = "folder.save"
	AuditFolderDelete = "folder.delete"
	AuditKindSave     = "kind.save"
	AuditKindDelete   = "kind.delete"
	AuditAssetCreate  = "asset.create"
	AuditCatalogSeed  = "catalog.seed"
)

// recordAudit logs the supplied entry while tolerating audit failures.
func recordAudit(audit *AuditService, ctx context.Context, entry AuditEntry) {
	if audit == nil {
		return
	}
	if err := audit.Log(ctx, entry); err != nil {
		logger.WithModule("audit").Warn("failed to record audit entry",
			zap.String("action", entry.Action),
			zap.Error(err),
		)
	}
}

package database

import (
	"gorm.io/gorm"

	"github.com/assetmgr/assetmgr/internal/models"
)

// AutoMigrate creates or updates the database schema for all models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Folder{},
		&models.AssetKind{},
		&models.Asset{},
		&models.AuditLog{},
		&models.Setting{},
	)
}

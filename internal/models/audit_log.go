package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Audit severities.
const (
	SeverityInfo     = "info"
	SeverityWarning  = "warning"
	SeverityCritical = "critical"
)

type AuditLog struct {
	ID        string         `gorm:"primaryKey;size:64" json:"id"`
	Actor     string         `gorm:"size:128;index" json:"actor"`
	Action    string         `gorm:"not null;index" json:"action"`
	Resource  string         `gorm:"index" json:"resource"`
	AssetID   string         `gorm:"size:64;index" json:"asset_id,omitempty"`
	Severity  string         `gorm:"size:16;not null;default:info" json:"severity"`
	Details   string         `json:"details"`
	Metadata  datatypes.JSON `json:"metadata"`
	CreatedAt time.Time      `gorm:"index" json:"created_at"`
}

func (a *AuditLog) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.Severity == "" {
		a.Severity = SeverityInfo
	}
	return nil
}

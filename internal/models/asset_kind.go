package models

import "time"

// AssetKind is a category that assets reference through their Type. Kinds are
// keyed by name and point at their parent folder or kind by name.
type AssetKind struct {
	Name       string    `gorm:"primaryKey;size:128" json:"name"`
	Module     string    `gorm:"size:64;index" json:"module"`
	Icon       string    `json:"icon"`
	ParentName *string   `gorm:"size:128;index" json:"parent_name"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

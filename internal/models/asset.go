package models

import "gorm.io/datatypes"

// Asset is a single inventory item. Type holds the name of its asset kind and
// Category the module it is filed under.
type Asset struct {
	BaseModel

	ItemName      string         `gorm:"not null" json:"item_name"`
	Type          string         `gorm:"size:128;index" json:"type"`
	Category      string         `gorm:"size:64;index" json:"category"`
	Status        string         `gorm:"size:32;index" json:"status"`
	SerialNumber  string         `gorm:"size:128;index" json:"serial_number"`
	Location      string         `json:"location"`
	AssignedTo    string         `json:"assigned_to"`
	IsPlaceholder bool           `gorm:"default:false" json:"is_placeholder"`
	Metadata      datatypes.JSON `json:"metadata"`
}

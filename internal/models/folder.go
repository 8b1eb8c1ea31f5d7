package models

// Folder groups asset kinds and other folders within a module. Folders never
// hold assets directly.
type Folder struct {
	BaseModel

	Name     string  `gorm:"not null" json:"name"`
	ParentID *string `gorm:"size:64;index" json:"parent_id"`
	Module   string  `gorm:"size:64;index" json:"module"`
	Icon     string  `json:"icon"`
	Ordering int     `gorm:"default:0" json:"ordering"`
}

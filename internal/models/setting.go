package models

import "time"

// Setting is a catalog-wide key/value pair, such as the fingerprint of the
// last seed file applied.
type Setting struct {
	Key       string    `gorm:"primaryKey;size:128" json:"key"`
	Value     string    `gorm:"not null" json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

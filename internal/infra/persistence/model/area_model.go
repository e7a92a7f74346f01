package model

import (
	"encoding/json"
	"time"
)

// AreaModel is the GORM-specific struct for the boundary dataset table.
// Geometry and Properties hold raw GeoJSON fragments in jsonb columns.
type AreaModel struct {
	ID         string          `gorm:"type:varchar(64);primary_key"`
	Name       string          `gorm:"type:varchar(255)"`
	Geometry   json.RawMessage `gorm:"type:jsonb;not null"`
	Properties json.RawMessage `gorm:"type:jsonb"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// TableName explicitly sets the default table name for GORM.
func (AreaModel) TableName() string {
	return "candidate_areas"
}

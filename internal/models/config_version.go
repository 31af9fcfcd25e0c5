package models

import (
	"time"

	"gorm.io/datatypes"
)

// ConfigVersion is an immutable snapshot of a dashboard config taken before
// a mutation. Versions are only reachable through their parent config.
type ConfigVersion struct {
	ID        uint                        `gorm:"primaryKey" json:"id"`
	ConfigID  uint                        `gorm:"index;not null" json:"config_id"`
	Tabs      datatypes.JSONType[[]Tab]   `json:"tabs"`
	Colors    datatypes.JSONType[Palette] `json:"colors"`
	CreatedAt time.Time                   `gorm:"index" json:"created_at"`
}

func (ConfigVersion) TableName() string { return "config_versions" }

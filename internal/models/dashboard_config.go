package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// DashboardConfig is the per-tenant dashboard document. Exactly one row per
// user is active; mutations go through services.ConfigStore.Mutate.
type DashboardConfig struct {
	ID           uint                               `gorm:"primaryKey" json:"id"`
	UserID       uint                               `gorm:"not null;index;uniqueIndex:idx_dashboard_configs_active,where:is_active = true" json:"user_id"`
	IsActive     bool                               `gorm:"default:true" json:"is_active"`
	BusinessName string                             `gorm:"size:200" json:"business_name"`
	BusinessType string                             `gorm:"size:50" json:"business_type"`
	Tabs         datatypes.JSONType[[]Tab]          `json:"tabs"`
	Colors       datatypes.JSONType[Palette]        `json:"colors"`
	NavStyle     string                             `gorm:"size:30;default:sidebar" json:"nav_style"`
	Integrations datatypes.JSONType[map[string]any] `json:"integrations"`
	CreatedAt    time.Time                          `json:"created_at"`
	UpdatedAt    time.Time                          `json:"updated_at"`
}

func (DashboardConfig) TableName() string { return "dashboard_configs" }

// Palette maps color roles (primary, accent, ...) to CSS colors.
type Palette map[string]string

type Tab struct {
	ID         string      `json:"id"`
	Label      string      `json:"label"`
	Icon       string      `json:"icon,omitempty"`
	Components []Component `json:"components"`
}

// Component is one addressable unit inside a tab. ID is the component kind
// from the catalog, so it doubles as the lookup key for defaults.
type Component struct {
	ID       string         `json:"id"`
	Title    string         `json:"title,omitempty"`
	View     *string        `json:"view,omitempty"`
	Pipeline *Pipeline      `json:"pipeline,omitempty"`
	Settings map[string]any `json:"settings,omitempty"`
}

type Pipeline struct {
	Stages         []Stage `json:"stages"`
	DefaultStageID string  `json:"default_stage_id"`
}

type Stage struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
	Order int    `json:"order"`
}

// CloneTabs deep-copies a tab tree so a transform can work on it without
// touching the loaded document.
func CloneTabs(tabs []Tab) ([]Tab, error) {
	if tabs == nil {
		return nil, nil
	}
	raw, err := json.Marshal(tabs)
	if err != nil {
		return nil, err
	}
	var out []Tab
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ClonePalette copies a palette map.
func ClonePalette(p Palette) Palette {
	if p == nil {
		return nil
	}
	out := make(Palette, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// StageIndex returns the position of the stage with id, or -1.
func (p *Pipeline) StageIndex(id string) int {
	for i := range p.Stages {
		if p.Stages[i].ID == id {
			return i
		}
	}
	return -1
}

// Reindex rewrites every stage's Order to its array position.
func (p *Pipeline) Reindex() {
	for i := range p.Stages {
		p.Stages[i].Order = i
	}
}

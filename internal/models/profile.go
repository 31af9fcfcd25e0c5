package models

import "time"

// Plan tiers a profile can be on.
const (
	PlanFree     = "free"
	PlanPro      = "pro"
	PlanBusiness = "business"
)

// Profile is the tenant identity record. ID is the owning user's id; the
// subdomain is globally unique and never changes once assigned.
type Profile struct {
	ID           uint      `gorm:"primaryKey;autoIncrement:false" json:"id"`
	Email        string    `gorm:"size:255" json:"email"`
	BusinessName string    `gorm:"size:200" json:"business_name"`
	Subdomain    string    `gorm:"uniqueIndex;size:63;not null" json:"subdomain"`
	Plan         string    `gorm:"size:20;default:free" json:"plan"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (Profile) TableName() string { return "profiles" }

// Package storetest provides throwaway databases and fixtures for tests that
// need a real store.
package storetest

import (
	"context"
	"testing"

	"github.com/huangang/bizboard/internal/config"
	"github.com/huangang/bizboard/internal/models"
	"github.com/huangang/bizboard/internal/store"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

// DB opens a fresh in-memory SQLite database with the schema migrated.
func DB(tb testing.TB) *gorm.DB {
	tb.Helper()

	db, err := models.Open(&config.DatabaseConfig{Driver: "sqlite", DSN: ":memory:"}, gormLogger.Silent)
	if err != nil {
		tb.Fatalf("failed to open test db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		tb.Fatalf("failed to get sql.DB: %v", err)
	}
	// every connection to :memory: is a separate database
	sqlDB.SetMaxOpenConns(1)
	tb.Cleanup(func() { _ = sqlDB.Close() })

	if err := models.AutoMigrate(db); err != nil {
		tb.Fatalf("failed to migrate test db: %v", err)
	}
	return db
}

// Store returns a GormStore over a fresh database.
func Store(tb testing.TB) *store.GormStore {
	tb.Helper()
	return store.NewGormStore(DB(tb))
}

// Tenant creates a profile and its active config and returns both.
func Tenant(tb testing.TB, s store.Store, userID uint, label string, tabs []models.Tab) (*models.Profile, *models.DashboardConfig) {
	tb.Helper()
	ctx := context.Background()

	profile := &models.Profile{
		ID:           userID,
		Email:        label + "@example.com",
		BusinessName: label,
		Subdomain:    label,
		Plan:         models.PlanFree,
	}
	if err := s.CreateProfile(ctx, profile); err != nil {
		tb.Fatalf("CreateProfile(%q) error = %v", label, err)
	}

	cfg := &models.DashboardConfig{
		UserID:       userID,
		IsActive:     true,
		BusinessName: label,
		BusinessType: "generic",
		Tabs:         datatypes.NewJSONType(tabs),
		Colors:       datatypes.NewJSONType(models.Palette{"primary": "#000000"}),
		NavStyle:     "sidebar",
		Integrations: datatypes.NewJSONType(map[string]any{}),
	}
	if err := s.CreateConfig(ctx, cfg); err != nil {
		tb.Fatalf("CreateConfig(%q) error = %v", label, err)
	}
	return profile, cfg
}

// Tabs is a small document with a leads component that has a pipeline and a
// clients component that does not.
func Tabs() []models.Tab {
	return []models.Tab{
		{
			ID:    "sales",
			Label: "Sales",
			Components: []models.Component{
				{
					ID: "leads",
					Pipeline: &models.Pipeline{
						Stages: []models.Stage{
							{ID: "new", Name: "New", Color: "#3b82f6", Order: 0},
							{ID: "contacted", Name: "Contacted", Color: "#8b5cf6", Order: 1},
							{ID: "won", Name: "Won", Color: "#10b981", Order: 2},
						},
						DefaultStageID: "new",
					},
				},
				{ID: "clients"},
			},
		},
		{
			ID:    "ops",
			Label: "Operations",
			Components: []models.Component{
				{ID: "tasks"},
				{ID: "clients"},
			},
		},
	}
}

// Package store is the data-store contract the tenancy core consumes, with a
// GORM implementation and an optional Redis cache in front of profile lookups.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/huangang/bizboard/internal/models"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
)

// ConfigPatch lists the document fields a mutation rewrites. Nil fields are
// left as stored.
type ConfigPatch struct {
	Tabs   []models.Tab
	Colors models.Palette
}

// Snapshot is the pre-mutation state captured into a version row.
type Snapshot struct {
	Tabs   []models.Tab
	Colors models.Palette
}

// Store is safe for concurrent use. Every lookup returns ErrNotFound rather
// than a nil record.
type Store interface {
	GetProfileBySubdomain(ctx context.Context, label string) (*models.Profile, error)
	GetProfileByUserID(ctx context.Context, userID uint) (*models.Profile, error)
	SubdomainExists(ctx context.Context, label string) (bool, error)
	CreateProfile(ctx context.Context, profile *models.Profile) error

	GetActiveConfig(ctx context.Context, userID uint) (*models.DashboardConfig, error)
	GetConfigByID(ctx context.Context, id uint) (*models.DashboardConfig, error)
	CreateConfig(ctx context.Context, cfg *models.DashboardConfig) error
	UpdateConfig(ctx context.Context, id uint, patch ConfigPatch) (*models.DashboardConfig, error)

	InsertVersion(ctx context.Context, configID uint, snap Snapshot) (*models.ConfigVersion, error)
	// PruneVersions keeps the newest keep versions of configID and reports
	// how many were deleted.
	PruneVersions(ctx context.Context, configID uint, keep int) (int64, error)
	// ListVersions returns versions newest first.
	ListVersions(ctx context.Context, configID uint) ([]models.ConfigVersion, error)
	GetVersion(ctx context.Context, id uint) (*models.ConfigVersion, error)
	ListConfigIDsOverRetention(ctx context.Context, keep int) ([]uint, error)

	// AcquireLock claims (job, slot) for holder until ttl elapses. It reports
	// false when another holder already owns an unexpired claim.
	AcquireLock(ctx context.Context, job, slot, holder string, ttl time.Duration) (bool, error)
}

package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/huangang/bizboard/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// translate maps gorm sentinel errors onto the store contract.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	}
	return err
}

func (s *GormStore) GetProfileBySubdomain(ctx context.Context, label string) (*models.Profile, error) {
	var profile models.Profile
	if err := s.db.WithContext(ctx).Where("subdomain = ?", label).First(&profile).Error; err != nil {
		return nil, translate(err)
	}
	return &profile, nil
}

func (s *GormStore) GetProfileByUserID(ctx context.Context, userID uint) (*models.Profile, error) {
	var profile models.Profile
	if err := s.db.WithContext(ctx).First(&profile, userID).Error; err != nil {
		return nil, translate(err)
	}
	return &profile, nil
}

func (s *GormStore) SubdomainExists(ctx context.Context, label string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Profile{}).
		Where("subdomain = ?", label).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *GormStore) CreateProfile(ctx context.Context, profile *models.Profile) error {
	return translate(s.db.WithContext(ctx).Create(profile).Error)
}

func (s *GormStore) GetActiveConfig(ctx context.Context, userID uint) (*models.DashboardConfig, error) {
	var cfg models.DashboardConfig
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND is_active = ?", userID, true).
		First(&cfg).Error
	if err != nil {
		return nil, translate(err)
	}
	return &cfg, nil
}

func (s *GormStore) GetConfigByID(ctx context.Context, id uint) (*models.DashboardConfig, error) {
	var cfg models.DashboardConfig
	if err := s.db.WithContext(ctx).First(&cfg, id).Error; err != nil {
		return nil, translate(err)
	}
	return &cfg, nil
}

func (s *GormStore) CreateConfig(ctx context.Context, cfg *models.DashboardConfig) error {
	return translate(s.db.WithContext(ctx).Create(cfg).Error)
}

// UpdateConfig writes the patch as a single row update and returns the
// stored document.
func (s *GormStore) UpdateConfig(ctx context.Context, id uint, patch ConfigPatch) (*models.DashboardConfig, error) {
	updates := map[string]interface{}{"updated_at": time.Now()}
	if patch.Tabs != nil {
		updates["tabs"] = datatypes.NewJSONType(patch.Tabs)
	}
	if patch.Colors != nil {
		updates["colors"] = datatypes.NewJSONType(patch.Colors)
	}

	result := s.db.WithContext(ctx).Model(&models.DashboardConfig{}).
		Where("id = ?", id).
		Updates(updates)
	if result.Error != nil {
		return nil, translate(result.Error)
	}
	// RowsAffected is no existence check: MySQL reports 0 for an update that
	// changes nothing. The reload decides.
	return s.GetConfigByID(ctx, id)
}

func (s *GormStore) InsertVersion(ctx context.Context, configID uint, snap Snapshot) (*models.ConfigVersion, error) {
	tabs := snap.Tabs
	if tabs == nil {
		tabs = []models.Tab{}
	}
	colors := snap.Colors
	if colors == nil {
		colors = models.Palette{}
	}
	version := &models.ConfigVersion{
		ConfigID: configID,
		Tabs:     datatypes.NewJSONType(tabs),
		Colors:   datatypes.NewJSONType(colors),
	}
	if err := s.db.WithContext(ctx).Create(version).Error; err != nil {
		return nil, translate(err)
	}
	return version, nil
}

func (s *GormStore) PruneVersions(ctx context.Context, configID uint, keep int) (int64, error) {
	if keep < 0 {
		keep = 0
	}

	var ids []uint
	err := s.db.WithContext(ctx).Model(&models.ConfigVersion{}).
		Where("config_id = ?", configID).
		Order("id DESC").
		Pluck("id", &ids).Error
	if err != nil {
		return 0, err
	}
	if len(ids) <= keep {
		return 0, nil
	}

	result := s.db.WithContext(ctx).
		Where("id IN ?", ids[keep:]).
		Delete(&models.ConfigVersion{})
	return result.RowsAffected, result.Error
}

func (s *GormStore) ListVersions(ctx context.Context, configID uint) ([]models.ConfigVersion, error) {
	var versions []models.ConfigVersion
	err := s.db.WithContext(ctx).
		Where("config_id = ?", configID).
		Order("id DESC").
		Find(&versions).Error
	if err != nil {
		return nil, err
	}
	return versions, nil
}

func (s *GormStore) GetVersion(ctx context.Context, id uint) (*models.ConfigVersion, error) {
	var version models.ConfigVersion
	if err := s.db.WithContext(ctx).First(&version, id).Error; err != nil {
		return nil, translate(err)
	}
	return &version, nil
}

func (s *GormStore) ListConfigIDsOverRetention(ctx context.Context, keep int) ([]uint, error) {
	var ids []uint
	err := s.db.WithContext(ctx).Model(&models.ConfigVersion{}).
		Select("config_id").
		Group("config_id").
		Having("COUNT(*) > ?", keep).
		Order("config_id").
		Pluck("config_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (s *GormStore) AcquireLock(ctx context.Context, job, slot, holder string, ttl time.Duration) (bool, error) {
	now := time.Now()
	err := s.db.WithContext(ctx).
		Where("job = ? AND expires_at < ?", job, now).
		Delete(&models.JobLock{}).Error
	if err != nil {
		return false, err
	}

	lock := &models.JobLock{
		Job:        job,
		Slot:       slot,
		Holder:     holder,
		AcquiredAt: now,
		ExpiresAt:  now.Add(ttl),
	}
	if err := translate(s.db.WithContext(ctx).Create(lock).Error); err != nil {
		if errors.Is(err, ErrDuplicate) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

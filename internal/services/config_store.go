package services

import (
	"context"
	"errors"

	"github.com/huangang/bizboard/internal/models"
	"github.com/huangang/bizboard/internal/observability"
	"github.com/huangang/bizboard/internal/presets"
	"github.com/huangang/bizboard/internal/store"
	"github.com/huangang/bizboard/pkg/logger"
	"github.com/huangang/bizboard/pkg/response"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Draft is the working copy a Transform edits. It never aliases the loaded
// document, so a failed transform leaves nothing behind.
type Draft struct {
	Tabs         []models.Tab
	Colors       models.Palette
	BusinessType presets.BusinessType
}

// Component returns the addressed component inside the draft, or a 404
// AppError.
func (d *Draft) Component(tabID, componentID string) (*models.Component, error) {
	ti, ci, ok := LocateComponent(d.Tabs, tabID, componentID)
	if !ok {
		return nil, response.NewNotFound("component not found")
	}
	return &d.Tabs[ti].Components[ci], nil
}

func businessTypeOf(cfg *models.DashboardConfig) presets.BusinessType {
	return presets.ParseBusinessType(cfg.BusinessType)
}

// Transform edits a draft in place. Returning an error aborts the mutation
// before anything is written.
type Transform func(d *Draft) error

// ConfigStore is the only writer of dashboard configs. Every change goes
// through Mutate, which snapshots the previous state and prunes history.
type ConfigStore struct {
	store     store.Store
	presets   *presets.Registry
	retention int
	metrics   *observability.Metrics
	tracer    trace.Tracer
}

func NewConfigStore(s store.Store, reg *presets.Registry, retention int, metrics *observability.Metrics) *ConfigStore {
	if retention <= 0 {
		retention = 20
	}
	return &ConfigStore{
		store:     s,
		presets:   reg,
		retention: retention,
		metrics:   metrics,
		tracer:    otel.Tracer("github.com/huangang/bizboard/internal/services"),
	}
}

func (cs *ConfigStore) Presets() *presets.Registry { return cs.presets }

func (cs *ConfigStore) Retention() int { return cs.retention }

// LocateComponent returns the first component with componentID. An empty
// tabID searches every tab in order, so callers that need a specific
// instance of a repeated component must pass the tab.
func LocateComponent(tabs []models.Tab, tabID, componentID string) (int, int, bool) {
	for ti := range tabs {
		if tabID != "" && tabs[ti].ID != tabID {
			continue
		}
		for ci := range tabs[ti].Components {
			if tabs[ti].Components[ci].ID == componentID {
				return ti, ci, true
			}
		}
	}
	return -1, -1, false
}

// Get loads a config the caller owns.
func (cs *ConfigStore) Get(ctx context.Context, configID, callerUserID uint) (*models.DashboardConfig, error) {
	cfg, err := cs.store.GetConfigByID(ctx, configID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, response.NewNotFound("config not found")
		}
		return nil, response.WrapUpstream("load config", err)
	}
	if cfg.UserID != callerUserID {
		return nil, response.NewForbidden("config belongs to another account")
	}
	return cfg, nil
}

// GetActive returns the caller's active config.
func (cs *ConfigStore) GetActive(ctx context.Context, userID uint) (*models.DashboardConfig, error) {
	cfg, err := cs.store.GetActiveConfig(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, response.NewNotFound("no active config")
		}
		return nil, response.WrapUpstream("load active config", err)
	}
	return cfg, nil
}

// Mutate applies transform to a copy of the config and persists it. The
// pre-mutation tabs and colors are written as a version before the document
// is updated; history beyond the retention bound is pruned afterwards.
// Concurrent mutations are last-writer-wins.
func (cs *ConfigStore) Mutate(ctx context.Context, configID, callerUserID uint, op string, transform Transform) (cfg *models.DashboardConfig, err error) {
	ctx, span := cs.tracer.Start(ctx, "config.Mutate", trace.WithAttributes(
		attribute.Int64("config.id", int64(configID)),
		attribute.String("config.operation", op),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
		cs.metrics.ObserveMutation(op, err)
	}()

	current, err := cs.Get(ctx, configID, callerUserID)
	if err != nil {
		return nil, err
	}

	before := current.Tabs.Data()
	tabs, err := models.CloneTabs(before)
	if err != nil {
		return nil, response.WrapUpstream("copy config", err)
	}
	draft := &Draft{
		Tabs:         tabs,
		Colors:       models.ClonePalette(current.Colors.Data()),
		BusinessType: businessTypeOf(current),
	}
	if err := transform(draft); err != nil {
		return nil, err
	}

	snap := store.Snapshot{Tabs: before, Colors: current.Colors.Data()}
	if _, err := cs.store.InsertVersion(ctx, current.ID, snap); err != nil {
		return nil, response.WrapUpstream("snapshot config", err)
	}

	updated, err := cs.store.UpdateConfig(ctx, current.ID, store.ConfigPatch{Tabs: draft.Tabs, Colors: draft.Colors})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, response.NewNotFound("config not found")
		}
		return nil, response.WrapUpstream("save config", err)
	}

	pruned, err := cs.store.PruneVersions(ctx, current.ID, cs.retention)
	if err != nil {
		logger.Warn().Err(err).Uint("config_id", current.ID).Str("operation", op).Msg("[ConfigStore] version prune failed")
	} else {
		cs.metrics.ObservePruned(pruned)
	}

	logger.Info().Uint("config_id", current.ID).Str("operation", op).Msg("[ConfigStore] config updated")
	return updated, nil
}

// ListVersions returns the config's history, newest first.
func (cs *ConfigStore) ListVersions(ctx context.Context, configID, callerUserID uint) ([]models.ConfigVersion, error) {
	if _, err := cs.Get(ctx, configID, callerUserID); err != nil {
		return nil, err
	}
	versions, err := cs.store.ListVersions(ctx, configID)
	if err != nil {
		return nil, response.WrapUpstream("list versions", err)
	}
	return versions, nil
}

// RestoreVersion writes a version's tabs and colors back onto its config.
// The restore goes through Mutate, so the state it replaces is itself kept
// as a version.
func (cs *ConfigStore) RestoreVersion(ctx context.Context, versionID, callerUserID uint) (*models.DashboardConfig, error) {
	version, err := cs.store.GetVersion(ctx, versionID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, response.NewNotFound("version not found")
		}
		return nil, response.WrapUpstream("load version", err)
	}

	return cs.Mutate(ctx, version.ConfigID, callerUserID, "restore_version", func(d *Draft) error {
		tabs, err := models.CloneTabs(version.Tabs.Data())
		if err != nil {
			return response.WrapUpstream("copy version", err)
		}
		if tabs == nil {
			tabs = []models.Tab{}
		}
		colors := models.ClonePalette(version.Colors.Data())
		if colors == nil {
			colors = models.Palette{}
		}
		d.Tabs = tabs
		d.Colors = colors
		return nil
	})
}

package services

import (
	"context"
	"fmt"

	"github.com/huangang/bizboard/internal/models"
	"github.com/huangang/bizboard/internal/presets"
	"github.com/huangang/bizboard/pkg/response"
)

type ViewService struct {
	configs *ConfigStore
}

func NewViewService(configs *ConfigStore) *ViewService {
	return &ViewService{configs: configs}
}

// ComponentRef addresses one component of one config.
type ComponentRef struct {
	ConfigID    uint   `json:"config_id" form:"config_id" binding:"required"`
	TabID       string `json:"tab_id" form:"tab_id"`
	ComponentID string `json:"component_id" form:"component_id" binding:"required"`
}

type UpdateViewRequest struct {
	ComponentRef
	View string `json:"view" binding:"required"`
}

type ViewOptions struct {
	ComponentID string             `json:"component_id"`
	Default     presets.ViewMode   `json:"default"`
	Available   []presets.ViewMode `json:"available"`
	Current     presets.ViewMode   `json:"current,omitempty"`
}

// UpdatePreference stores the view a component renders with. Views the
// component kind does not support are rejected, never coerced.
func (s *ViewService) UpdatePreference(ctx context.Context, userID uint, req *UpdateViewRequest) (*models.DashboardConfig, error) {
	reg := s.configs.Presets()
	if !reg.IsViewAvailable(req.ComponentID, req.View) {
		return nil, response.NewBadRequest(fmt.Sprintf("view %q is not available for %q", req.View, req.ComponentID))
	}

	return s.configs.Mutate(ctx, req.ConfigID, userID, "update_view", func(d *Draft) error {
		comp, err := d.Component(req.TabID, req.ComponentID)
		if err != nil {
			return err
		}
		view := req.View
		comp.View = &view
		return nil
	})
}

// Options lists the views a component kind supports and its default. With a
// non-zero ConfigID it also reports the view that component renders with now.
func (s *ViewService) Options(ctx context.Context, userID uint, ref ComponentRef) (*ViewOptions, error) {
	reg := s.configs.Presets()
	if !reg.KnownKind(ref.ComponentID) {
		return nil, response.NewNotFound(fmt.Sprintf("unknown component %q", ref.ComponentID))
	}
	opts := &ViewOptions{
		ComponentID: ref.ComponentID,
		Default:     reg.DefaultView(ref.ComponentID),
		Available:   reg.AvailableViews(ref.ComponentID),
	}
	if ref.ConfigID == 0 {
		return opts, nil
	}

	cfg, err := s.configs.Get(ctx, ref.ConfigID, userID)
	if err != nil {
		return nil, err
	}
	tabs := cfg.Tabs.Data()
	ti, ci, ok := LocateComponent(tabs, ref.TabID, ref.ComponentID)
	if !ok {
		return nil, response.NewNotFound("component not found")
	}
	opts.Current = reg.EffectiveView(tabs[ti].Components[ci])
	return opts, nil
}

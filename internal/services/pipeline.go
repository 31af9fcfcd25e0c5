package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/huangang/bizboard/internal/models"
	"github.com/huangang/bizboard/pkg/response"
)

const defaultStageColor = "#6b7280"

type PipelineService struct {
	configs *ConfigStore
}

func NewPipelineService(configs *ConfigStore) *PipelineService {
	return &PipelineService{configs: configs}
}

type AddStageRequest struct {
	ComponentRef
	Name  string `json:"name" binding:"required"`
	Color string `json:"color"`
}

type ReorderStagesRequest struct {
	ComponentRef
	StageIDs []string `json:"stage_ids" binding:"required"`
}

type UpdateStageRequest struct {
	ComponentRef
	Name  *string `json:"name"`
	Color *string `json:"color"`
}

type SetDefaultStageRequest struct {
	ComponentRef
	StageID string `json:"stage_id" binding:"required"`
}

// List returns the component's stored pipeline, or the default one for the
// tenant's business type when nothing is stored yet. It never writes.
func (s *PipelineService) List(ctx context.Context, userID uint, ref *ComponentRef) (*models.Pipeline, error) {
	cfg, err := s.configs.Get(ctx, ref.ConfigID, userID)
	if err != nil {
		return nil, err
	}
	draft := &Draft{Tabs: cfg.Tabs.Data()}
	comp, err := draft.Component(ref.TabID, ref.ComponentID)
	if err != nil {
		return nil, err
	}
	if comp.Pipeline != nil {
		return comp.Pipeline, nil
	}
	p := s.configs.Presets().DefaultPipeline(businessTypeOf(cfg), comp.ID)
	return &p, nil
}

// AddStage appends a stage. A component without a pipeline first gets the
// default stages for the tenant's business type.
func (s *PipelineService) AddStage(ctx context.Context, userID uint, req *AddStageRequest) (*models.DashboardConfig, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, response.NewBadRequest("stage name is required")
	}
	color := strings.TrimSpace(req.Color)
	if color == "" {
		color = defaultStageColor
	}

	return s.configs.Mutate(ctx, req.ConfigID, userID, "add_stage", func(d *Draft) error {
		p, err := s.pipeline(d, &req.ComponentRef)
		if err != nil {
			return err
		}
		p.Stages = append(p.Stages, models.Stage{
			ID:    nextStageID(p),
			Name:  name,
			Color: color,
			Order: len(p.Stages),
		})
		return nil
	})
}

// Reorder rewrites stage order to match stageIDs, which must be a
// permutation of the current stage ids.
func (s *PipelineService) Reorder(ctx context.Context, userID uint, req *ReorderStagesRequest) (*models.DashboardConfig, error) {
	return s.configs.Mutate(ctx, req.ConfigID, userID, "reorder_stages", func(d *Draft) error {
		p, err := s.pipeline(d, &req.ComponentRef)
		if err != nil {
			return err
		}
		if err := validatePermutation(p, req.StageIDs); err != nil {
			return err
		}

		reordered := make([]models.Stage, len(req.StageIDs))
		for i, id := range req.StageIDs {
			reordered[i] = p.Stages[p.StageIndex(id)]
		}
		p.Stages = reordered
		p.Reindex()
		return nil
	})
}

func (s *PipelineService) UpdateStage(ctx context.Context, userID uint, stageID string, req *UpdateStageRequest) (*models.DashboardConfig, error) {
	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		return nil, response.NewBadRequest("stage name cannot be empty")
	}

	return s.configs.Mutate(ctx, req.ConfigID, userID, "update_stage", func(d *Draft) error {
		p, err := s.pipeline(d, &req.ComponentRef)
		if err != nil {
			return err
		}
		i := p.StageIndex(stageID)
		if i < 0 {
			return response.NewNotFound(fmt.Sprintf("stage %q not found", stageID))
		}
		if req.Name != nil {
			p.Stages[i].Name = strings.TrimSpace(*req.Name)
		}
		if req.Color != nil && strings.TrimSpace(*req.Color) != "" {
			p.Stages[i].Color = strings.TrimSpace(*req.Color)
		}
		return nil
	})
}

// DeleteStage removes a stage and closes the gap in the order values. The
// last remaining stage cannot be deleted.
func (s *PipelineService) DeleteStage(ctx context.Context, userID uint, stageID string, ref *ComponentRef) (*models.DashboardConfig, error) {
	return s.configs.Mutate(ctx, ref.ConfigID, userID, "delete_stage", func(d *Draft) error {
		p, err := s.pipeline(d, ref)
		if err != nil {
			return err
		}
		i := p.StageIndex(stageID)
		if i < 0 {
			return response.NewNotFound(fmt.Sprintf("stage %q not found", stageID))
		}
		if len(p.Stages) == 1 {
			return response.NewBadRequest("a pipeline needs at least one stage")
		}

		p.Stages = append(p.Stages[:i], p.Stages[i+1:]...)
		p.Reindex()
		if p.StageIndex(p.DefaultStageID) < 0 {
			p.DefaultStageID = p.Stages[0].ID
		}
		return nil
	})
}

func (s *PipelineService) SetDefaultStage(ctx context.Context, userID uint, req *SetDefaultStageRequest) (*models.DashboardConfig, error) {
	return s.configs.Mutate(ctx, req.ConfigID, userID, "set_default_stage", func(d *Draft) error {
		p, err := s.pipeline(d, &req.ComponentRef)
		if err != nil {
			return err
		}
		if p.StageIndex(req.StageID) < 0 {
			return response.NewNotFound(fmt.Sprintf("stage %q not found", req.StageID))
		}
		p.DefaultStageID = req.StageID
		return nil
	})
}

// pipeline returns the addressed component's pipeline inside the draft,
// materializing the default one when the component has none.
func (s *PipelineService) pipeline(d *Draft, ref *ComponentRef) (*models.Pipeline, error) {
	comp, err := d.Component(ref.TabID, ref.ComponentID)
	if err != nil {
		return nil, err
	}
	if comp.Pipeline == nil {
		p := s.configs.Presets().DefaultPipeline(d.BusinessType, comp.ID)
		comp.Pipeline = &p
	}
	return comp.Pipeline, nil
}

func validatePermutation(p *models.Pipeline, ids []string) error {
	if len(ids) != len(p.Stages) {
		return response.NewBadRequest(fmt.Sprintf("expected %d stage ids, got %d", len(p.Stages), len(ids)))
	}
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			return response.NewBadRequest(fmt.Sprintf("stage %q listed more than once", id))
		}
		seen[id] = true
		if p.StageIndex(id) < 0 {
			return response.NewBadRequest(fmt.Sprintf("unknown stage %q", id))
		}
	}
	return nil
}

// nextStageID probes stage_1, stage_2, ... for the first unused id.
func nextStageID(p *models.Pipeline) string {
	for n := 1; ; n++ {
		id := "stage_" + strconv.Itoa(n)
		if p.StageIndex(id) < 0 {
			return id
		}
	}
}

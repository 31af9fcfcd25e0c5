package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/huangang/bizboard/internal/middleware"
	"github.com/huangang/bizboard/internal/services"
	"github.com/huangang/bizboard/pkg/response"
)

type PipelineHandler struct {
	pipelines *services.PipelineService
	timeout   time.Duration
}

func NewPipelineHandler(pipelines *services.PipelineService, timeout time.Duration) *PipelineHandler {
	return &PipelineHandler{pipelines: pipelines, timeout: timeout}
}

// List returns the stored or default pipeline of a component
// GET /api/pipeline/stages?config_id&tab_id&component_id
func (h *PipelineHandler) List(c *gin.Context) {
	var ref services.ComponentRef
	if err := c.ShouldBindQuery(&ref); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	ctx, cancel := storeContext(c, h.timeout)
	defer cancel()

	p, err := h.pipelines.List(ctx, middleware.GetUserID(c), &ref)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, p)
}

// AddStage appends a stage
// POST /api/pipeline/stages
func (h *PipelineHandler) AddStage(c *gin.Context) {
	var req services.AddStageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	ctx, cancel := storeContext(c, h.timeout)
	defer cancel()

	cfg, err := h.pipelines.AddStage(ctx, middleware.GetUserID(c), &req)
	if err != nil {
		fail(c, err)
		return
	}
	response.Created(c, cfg)
}

// Reorder PUT /api/pipeline/stages/reorder
func (h *PipelineHandler) Reorder(c *gin.Context) {
	var req services.ReorderStagesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	ctx, cancel := storeContext(c, h.timeout)
	defer cancel()

	cfg, err := h.pipelines.Reorder(ctx, middleware.GetUserID(c), &req)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, cfg)
}

// UpdateStage PUT /api/pipeline/stages/:stage_id
func (h *PipelineHandler) UpdateStage(c *gin.Context) {
	var req services.UpdateStageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	ctx, cancel := storeContext(c, h.timeout)
	defer cancel()

	cfg, err := h.pipelines.UpdateStage(ctx, middleware.GetUserID(c), c.Param("stage_id"), &req)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, cfg)
}

// DeleteStage DELETE /api/pipeline/stages/:stage_id?config_id&tab_id&component_id
func (h *PipelineHandler) DeleteStage(c *gin.Context) {
	var ref services.ComponentRef
	if err := c.ShouldBindQuery(&ref); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	ctx, cancel := storeContext(c, h.timeout)
	defer cancel()

	cfg, err := h.pipelines.DeleteStage(ctx, middleware.GetUserID(c), c.Param("stage_id"), &ref)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, cfg)
}

// SetDefaultStage PUT /api/pipeline/default-stage
func (h *PipelineHandler) SetDefaultStage(c *gin.Context) {
	var req services.SetDefaultStageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	ctx, cancel := storeContext(c, h.timeout)
	defer cancel()

	cfg, err := h.pipelines.SetDefaultStage(ctx, middleware.GetUserID(c), &req)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, cfg)
}

package handlers

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/huangang/bizboard/internal/middleware"
	"github.com/huangang/bizboard/internal/services"
	"github.com/huangang/bizboard/pkg/response"
)

type ViewHandler struct {
	views   *services.ViewService
	timeout time.Duration
}

func NewViewHandler(views *services.ViewService, timeout time.Duration) *ViewHandler {
	return &ViewHandler{views: views, timeout: timeout}
}

// UpdatePreference sets the view a component renders with
// PUT /api/views/preference
func (h *ViewHandler) UpdatePreference(c *gin.Context) {
	var req services.UpdateViewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	ctx, cancel := storeContext(c, h.timeout)
	defer cancel()

	cfg, err := h.views.UpdatePreference(ctx, middleware.GetUserID(c), &req)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, cfg)
}

// Options lists the views a component kind supports
// GET /api/views/options?component_id=&config_id=&tab_id=
func (h *ViewHandler) Options(c *gin.Context) {
	ref := services.ComponentRef{ComponentID: c.Query("component_id"), TabID: c.Query("tab_id")}
	if ref.ComponentID == "" {
		response.BadRequest(c, "component_id is required")
		return
	}
	if raw := c.Query("config_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil || id == 0 {
			response.BadRequest(c, "invalid config_id")
			return
		}
		ref.ConfigID = uint(id)
	}

	ctx, cancel := storeContext(c, h.timeout)
	defer cancel()

	opts, err := h.views.Options(ctx, middleware.GetUserID(c), ref)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, opts)
}

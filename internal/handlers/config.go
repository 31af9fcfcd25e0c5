package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/huangang/bizboard/internal/middleware"
	"github.com/huangang/bizboard/internal/services"
	"github.com/huangang/bizboard/pkg/response"
)

type ConfigHandler struct {
	configs *services.ConfigStore
	timeout time.Duration
}

func NewConfigHandler(configs *services.ConfigStore, timeout time.Duration) *ConfigHandler {
	return &ConfigHandler{configs: configs, timeout: timeout}
}

type listVersionsQuery struct {
	ConfigID uint `form:"config_id" binding:"required"`
}

// GetActive returns the caller's active dashboard config
// GET /api/config
func (h *ConfigHandler) GetActive(c *gin.Context) {
	ctx, cancel := storeContext(c, h.timeout)
	defer cancel()

	cfg, err := h.configs.GetActive(ctx, middleware.GetUserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, cfg)
}

// ListVersions returns a config's history, newest first
// GET /api/config/versions?config_id=
func (h *ConfigHandler) ListVersions(c *gin.Context) {
	var q listVersionsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	ctx, cancel := storeContext(c, h.timeout)
	defer cancel()

	versions, err := h.configs.ListVersions(ctx, q.ConfigID, middleware.GetUserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, versions)
}

// RestoreVersion writes a version back onto its config
// POST /api/config/versions/:id/restore
func (h *ConfigHandler) RestoreVersion(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	ctx, cancel := storeContext(c, h.timeout)
	defer cancel()

	cfg, err := h.configs.RestoreVersion(ctx, id, middleware.GetUserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, cfg)
}

package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/huangang/bizboard/internal/middleware"
	"github.com/huangang/bizboard/internal/services"
	"github.com/huangang/bizboard/pkg/response"
)

type TenantHandler struct {
	tenants *services.TenantService
	timeout time.Duration
}

func NewTenantHandler(tenants *services.TenantService, timeout time.Duration) *TenantHandler {
	return &TenantHandler{tenants: tenants, timeout: timeout}
}

// Check reports whether a subdomain can be claimed
// GET /api/tenant/subdomain/check?label=
func (h *TenantHandler) Check(c *gin.Context) {
	label := c.Query("label")
	if label == "" {
		response.BadRequest(c, "label is required")
		return
	}

	ctx, cancel := storeContext(c, h.timeout)
	defer cancel()

	result, err := h.tenants.Check(ctx, label)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, result)
}

// Claim assigns the caller a subdomain and an initial dashboard
// POST /api/tenant/claim
func (h *TenantHandler) Claim(c *gin.Context) {
	var req services.ClaimRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	ctx, cancel := storeContext(c, h.timeout)
	defer cancel()

	result, err := h.tenants.Claim(ctx, middleware.GetUserID(c), &req)
	if err != nil {
		fail(c, err)
		return
	}
	response.Created(c, result)
}

package handlers

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/huangang/bizboard/internal/middleware"
	"github.com/huangang/bizboard/internal/tenant"
	"github.com/huangang/bizboard/pkg/response"
)

// PublicSiteHandler serves the anonymous tenant surfaces. Requests only
// arrive here through the edge router's rewrite, which has already put the
// host-derived label into the path and the request metadata.
type PublicSiteHandler struct {
	resolver *tenant.Resolver
	timeout  time.Duration
}

func NewPublicSiteHandler(resolver *tenant.Resolver, timeout time.Duration) *PublicSiteHandler {
	return &PublicSiteHandler{resolver: resolver, timeout: timeout}
}

type surfacePage struct {
	Surface string            `json:"surface"`
	Path    string            `json:"path"`
	Site    tenant.PublicSite `json:"site"`
}

// Surface returns the handler for one internal namespace, e.g. "portal" for
// /_portal/:label/*path.
func (h *PublicSiteHandler) Surface(surface string) gin.HandlerFunc {
	return func(c *gin.Context) {
		t, ok := h.resolve(c, c.Param("label"))
		if !ok {
			return
		}
		response.Success(c, surfacePage{
			Surface: surface,
			Path:    c.Param("path"),
			Site:    t.PublicSite(),
		})
	}
}

// Site returns the public read model of the tenant whose host was requested
// GET /api/public/site
func (h *PublicSiteHandler) Site(c *gin.Context) {
	t, ok := h.resolve(c, middleware.GetTenant(c))
	if !ok {
		return
	}
	response.Success(c, t.PublicSite())
}

func (h *PublicSiteHandler) resolve(c *gin.Context, label string) (*tenant.Tenant, bool) {
	ctx, cancel := storeContext(c, h.timeout)
	defer cancel()

	t, err := h.resolver.Resolve(ctx, label)
	if err != nil {
		if errors.Is(err, tenant.ErrTenantNotFound) {
			response.NotFound(c, "site not found")
			return nil, false
		}
		fail(c, response.WrapUpstream("resolve tenant", err))
		return nil, false
	}
	return t, true
}

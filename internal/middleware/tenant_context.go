package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
)

const (
	// HeaderTenant carries the resolved tenant label to downstream handlers.
	// Client-supplied values are stripped by the edge router.
	HeaderTenant  = "X-Tenant-Subdomain"
	ContextTenant = "tenant_subdomain"
)

type tenantCtxKey struct{}
type rewrittenCtxKey struct{}

func WithTenant(ctx context.Context, label string) context.Context {
	return context.WithValue(ctx, tenantCtxKey{}, label)
}

func TenantFromContext(ctx context.Context) (string, bool) {
	label, ok := ctx.Value(tenantCtxKey{}).(string)
	return label, ok && label != ""
}

// GetTenant returns the tenant label the edge router attached, or "".
func GetTenant(c *gin.Context) string {
	if label := c.GetString(ContextTenant); label != "" {
		return label
	}
	if label, ok := TenantFromContext(c.Request.Context()); ok {
		return label
	}
	return c.Request.Header.Get(HeaderTenant)
}

func withRewritten(ctx context.Context) context.Context {
	return context.WithValue(ctx, rewrittenCtxKey{}, true)
}

func isRewritten(ctx context.Context) bool {
	v, _ := ctx.Value(rewrittenCtxKey{}).(bool)
	return v
}

// FirstPass runs h only on the original request. The edge router re-enters the
// engine for rewritten tenant requests; middleware that observes a request end
// to end (access log, tracing, metrics) must not run twice.
func FirstPass(h gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		if isRewritten(c.Request.Context()) {
			c.Next()
			return
		}
		h(c)
	}
}

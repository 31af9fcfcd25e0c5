package middleware

import (
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/huangang/bizboard/internal/observability"
	"github.com/huangang/bizboard/internal/tenant"
	"github.com/huangang/bizboard/pkg/response"
)

// Internal namespaces tenant requests are rewritten into. They are never
// reachable from outside.
const (
	NamespaceSites    = "/_sites"
	NamespacePortal   = "/_portal"
	NamespaceBooking  = "/_booking"
	NamespaceOrdering = "/_ordering"
	NamespaceSigning  = "/_signing"
	NamespaceBoard    = "/_board"
)

var internalNamespaces = []string{
	NamespaceSites, NamespacePortal, NamespaceBooking, NamespaceOrdering, NamespaceSigning, NamespaceBoard,
}

// specialPaths maps tenant-facing entry points to their internal namespace.
var specialPaths = []struct {
	prefix    string
	namespace string
}{
	{"/portal", NamespacePortal},
	{"/book", NamespaceBooking},
	{"/order", NamespaceOrdering},
	{"/sign", NamespaceSigning},
	{"/board", NamespaceBoard},
}

var staticPrefixes = []string{"/_next/", "/static/", "/assets/"}

var staticFiles = map[string]bool{"/favicon.ico": true, "/robots.txt": true}

var assetExtensions = map[string]bool{
	".js": true, ".css": true, ".map": true, ".png": true, ".jpg": true, ".jpeg": true,
	".gif": true, ".svg": true, ".ico": true, ".webp": true, ".avif": true,
	".woff": true, ".woff2": true, ".ttf": true, ".otf": true, ".webmanifest": true,
}

// HostClassifier decides which surface a host targets.
type HostClassifier interface {
	Classify(host string) tenant.Classification
}

type RouterConfig struct {
	PublicRoutes     []string
	TenantPublicAPIs []string
	LoginPath        string
}

// EdgeRouter runs first on every request: it classifies the host, keeps
// tenant visitors inside their public namespaces and guards everything else
// behind a session.
type EdgeRouter struct {
	engine     *gin.Engine
	classifier HostClassifier
	sessions   SessionVerifier
	cfg        RouterConfig
	metrics    *observability.Metrics
}

func NewEdgeRouter(engine *gin.Engine, classifier HostClassifier, sessions SessionVerifier, cfg RouterConfig, metrics *observability.Metrics) *EdgeRouter {
	if cfg.LoginPath == "" {
		cfg.LoginPath = "/login"
	}
	return &EdgeRouter{
		engine:     engine,
		classifier: classifier,
		sessions:   sessions,
		cfg:        cfg,
		metrics:    metrics,
	}
}

func (er *EdgeRouter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		// second pass of a request this router already rewrote
		if isRewritten(c.Request.Context()) {
			c.Next()
			return
		}

		c.Request.Header.Del(HeaderTenant)
		reqPath := c.Request.URL.Path

		if hasAnyPrefix(reqPath, internalNamespaces) {
			response.AbortWithError(c, response.NewNotFound("page not found"))
			return
		}
		if IsStaticAsset(reqPath) {
			c.Next()
			return
		}

		cls := er.classifier.Classify(c.Request.Host)
		er.metrics.ObserveClassification(string(cls.Kind))

		if cls.IsTenant() {
			er.routeTenant(c, cls.Label)
			return
		}
		er.routeApp(c)
	}
}

func (er *EdgeRouter) routeTenant(c *gin.Context, label string) {
	reqPath := c.Request.URL.Path

	c.Request.Header.Set(HeaderTenant, label)
	c.Request = c.Request.WithContext(WithTenant(c.Request.Context(), label))
	c.Set(ContextTenant, label)

	// Owner-only data must never be reachable from a tenant host, so the
	// allowlist is checked before any rewrite.
	if isAPIPath(reqPath) {
		if !hasAnyPrefix(reqPath, er.cfg.TenantPublicAPIs) {
			response.AbortWithError(c, response.NewUnauthorized("endpoint not available on tenant sites"))
			return
		}
		c.Next()
		return
	}

	req := c.Request.Clone(withRewritten(c.Request.Context()))
	req.URL.Path = RewriteTenantPath(label, reqPath)
	req.URL.RawPath = ""
	c.Request = req

	er.engine.HandleContext(c)
	c.Abort()
}

func (er *EdgeRouter) routeApp(c *gin.Context) {
	reqPath := c.Request.URL.Path
	if reqPath == er.cfg.LoginPath || er.isPublicRoute(reqPath) {
		c.Next()
		return
	}

	userID, ok := er.sessions.SessionUser(c.Request)
	if !ok {
		if isAPIPath(reqPath) {
			response.AbortWithError(c, response.NewUnauthorized("authentication required"))
			return
		}
		c.Redirect(http.StatusFound, er.loginURL(c.Request.URL))
		c.Abort()
		return
	}

	c.Set(ContextUserID, userID)
	c.Request = c.Request.WithContext(WithUserID(c.Request.Context(), userID))
	c.Next()
}

func (er *EdgeRouter) isPublicRoute(reqPath string) bool {
	for _, p := range er.cfg.PublicRoutes {
		if p == "/" {
			if reqPath == "/" {
				return true
			}
			continue
		}
		if matchesPrefix(reqPath, p) {
			return true
		}
	}
	return false
}

func (er *EdgeRouter) loginURL(u *url.URL) string {
	target := u.Path
	if u.RawQuery != "" {
		target += "?" + u.RawQuery
	}
	return er.cfg.LoginPath + "?" + url.Values{"redirect": {target}}.Encode()
}

// RewriteTenantPath maps a tenant-host path onto its internal route. Special
// entry points get their own namespace; everything else is the public site.
func RewriteTenantPath(label, reqPath string) string {
	if reqPath == "" {
		reqPath = "/"
	}
	for _, sp := range specialPaths {
		if matchesPrefix(reqPath, sp.prefix) {
			rest := strings.TrimPrefix(reqPath, sp.prefix)
			if rest == "" {
				rest = "/"
			}
			return sp.namespace + "/" + label + rest
		}
	}
	return NamespaceSites + "/" + label + reqPath
}

// IsStaticAsset reports paths that skip routing entirely. API paths never
// do, whatever their extension.
func IsStaticAsset(reqPath string) bool {
	if isAPIPath(reqPath) {
		return false
	}
	if staticFiles[reqPath] {
		return true
	}
	for _, p := range staticPrefixes {
		if strings.HasPrefix(reqPath, p) {
			return true
		}
	}
	return assetExtensions[strings.ToLower(path.Ext(reqPath))]
}

func isAPIPath(reqPath string) bool {
	return matchesPrefix(reqPath, "/api")
}

// matchesPrefix matches p itself or anything below it, never a sibling that
// merely shares the leading characters.
func matchesPrefix(reqPath, p string) bool {
	p = strings.TrimSuffix(p, "/")
	return reqPath == p || strings.HasPrefix(reqPath, p+"/")
}

func hasAnyPrefix(reqPath string, prefixes []string) bool {
	for _, p := range prefixes {
		if matchesPrefix(reqPath, p) {
			return true
		}
	}
	return false
}

package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/go-cmp/cmp"
	"github.com/huangang/bizboard/internal/config"
	"github.com/huangang/bizboard/internal/middleware"
	"github.com/huangang/bizboard/internal/models"
	"github.com/huangang/bizboard/internal/observability"
	"github.com/huangang/bizboard/internal/presets"
	"github.com/huangang/bizboard/internal/services"
	"github.com/huangang/bizboard/internal/store"
	"github.com/huangang/bizboard/internal/store/storetest"
	"github.com/huangang/bizboard/internal/subdomain"
	"github.com/huangang/bizboard/internal/tenant"
	"github.com/huangang/bizboard/internal/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
	utils.SetJWTSecret("test-secret-for-handler-testing")
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Code    string          `json:"code"`
}

type testApp struct {
	engine *gin.Engine
	store  *store.GormStore
	acme   *models.DashboardConfig
	bolt   *models.DashboardConfig
}

// newTestApp serves two tenants: acme (user 1) and bolt (user 2), both on
// storetest.Tabs().
func newTestApp(t *testing.T) *testApp {
	t.Helper()
	db := storetest.DB(t)
	s := store.NewGormStore(db)
	_, acme := storetest.Tenant(t, s, 1, "acme", storetest.Tabs())
	_, bolt := storetest.Tenant(t, s, 2, "bolt", storetest.Tabs())

	reg := presets.Default()
	configs := services.NewConfigStore(s, reg, 20, nil)
	resolver := tenant.NewResolver(s, "root.test", "app")
	sessions := middleware.NewJWTSessionVerifier("session")
	codec := subdomain.NewCodec(config.DefaultReservedSubdomains)
	timeout := time.Second

	engine := gin.New()
	edge := middleware.NewEdgeRouter(engine, resolver, sessions, middleware.RouterConfig{
		PublicRoutes:     []string{"/health", "/metrics", "/api/tenant/subdomain/check"},
		TenantPublicAPIs: []string{"/api/public"},
		LoginPath:        "/login",
	}, nil)
	engine.Use(edge.Middleware())

	engine.GET("/health", NewHealthHandler(db, services.NewSyncQueue()).CheckHealth)
	engine.GET("/metrics", Metrics(observability.NewMetrics("test"), db))

	sites := NewPublicSiteHandler(resolver, timeout)
	engine.GET("/_sites/:label/*path", sites.Surface("site"))
	engine.GET("/_portal/:label/*path", sites.Surface("portal"))
	engine.GET("/api/public/site", sites.Site)

	tenants := NewTenantHandler(services.NewTenantService(s, codec, reg, 3, 5, nil), timeout)
	engine.GET("/api/tenant/subdomain/check", tenants.Check)

	cfgH := NewConfigHandler(configs, timeout)
	viewH := NewViewHandler(services.NewViewService(configs), timeout)
	pipeH := NewPipelineHandler(services.NewPipelineService(configs), timeout)

	api := engine.Group("/api", middleware.AuthRequired(sessions))
	api.POST("/tenant/claim", tenants.Claim)
	api.GET("/config", cfgH.GetActive)
	api.GET("/config/versions", cfgH.ListVersions)
	api.POST("/config/versions/:id/restore", cfgH.RestoreVersion)
	api.PUT("/views/preference", viewH.UpdatePreference)
	api.GET("/views/options", viewH.Options)
	api.GET("/pipeline/stages", pipeH.List)
	api.POST("/pipeline/stages", pipeH.AddStage)
	api.PUT("/pipeline/stages/reorder", pipeH.Reorder)
	api.PUT("/pipeline/stages/:stage_id", pipeH.UpdateStage)
	api.DELETE("/pipeline/stages/:stage_id", pipeH.DeleteStage)
	api.PUT("/pipeline/default-stage", pipeH.SetDefaultStage)

	return &testApp{engine: engine, store: s, acme: acme, bolt: bolt}
}

// do sends a request to host. A non-zero userID signs the request in.
func (a *testApp) do(t *testing.T, method, host, target string, userID uint, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, _ := http.NewRequest(method, target, reader)
	req.Host = host
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if userID != 0 {
		token, err := utils.GenerateToken(userID, "owner@example.com", 1)
		if err != nil {
			t.Fatalf("GenerateToken() error = %v", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)

	var env envelope
	_ = json.Unmarshal(w.Body.Bytes(), &env)
	return w, env
}

func (a *testApp) reload(t *testing.T, id uint) *models.DashboardConfig {
	t.Helper()
	cfg, err := a.store.GetConfigByID(context.Background(), id)
	if err != nil {
		t.Fatalf("GetConfigByID() error = %v", err)
	}
	return cfg
}

func leadsStageIDs(t *testing.T, cfg *models.DashboardConfig) []string {
	t.Helper()
	tabs := cfg.Tabs.Data()
	ti, ci, ok := services.LocateComponent(tabs, "sales", "leads")
	if !ok {
		t.Fatal("leads component missing")
	}
	var ids []string
	for _, s := range tabs[ti].Components[ci].Pipeline.Stages {
		ids = append(ids, s.ID)
	}
	return ids
}

const appHost = "app.root.test"

func TestPipelineAPI_Reorder(t *testing.T) {
	app := newTestApp(t)

	w, env := app.do(t, "PUT", appHost, "/api/pipeline/stages/reorder", 1, gin.H{
		"config_id":    app.acme.ID,
		"tab_id":       "sales",
		"component_id": "leads",
		"stage_ids":    []string{"won", "contacted", "new"},
	})
	if w.Code != http.StatusOK || !env.Success {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if diff := cmp.Diff([]string{"won", "contacted", "new"}, leadsStageIDs(t, app.reload(t, app.acme.ID))); diff != "" {
		t.Errorf("stage order mismatch (-want +got):\n%s", diff)
	}

	w, env = app.do(t, "PUT", appHost, "/api/pipeline/stages/reorder", 1, gin.H{
		"config_id":    app.acme.ID,
		"component_id": "leads",
		"stage_ids":    []string{"won", "new"},
	})
	if w.Code != http.StatusBadRequest || env.Code != "invalid_input" {
		t.Errorf("partial order: status = %d, body = %s", w.Code, w.Body.String())
	}
}

func TestPipelineAPI_StageLifecycle(t *testing.T) {
	app := newTestApp(t)
	ref := gin.H{"config_id": app.acme.ID, "tab_id": "sales", "component_id": "leads"}
	with := func(extra gin.H) gin.H {
		out := gin.H{}
		for k, v := range ref {
			out[k] = v
		}
		for k, v := range extra {
			out[k] = v
		}
		return out
	}

	w, _ := app.do(t, "POST", appHost, "/api/pipeline/stages", 1, with(gin.H{"name": "Lost"}))
	if w.Code != http.StatusCreated {
		t.Fatalf("add: status = %d, body = %s", w.Code, w.Body.String())
	}
	w, _ = app.do(t, "PUT", appHost, "/api/pipeline/stages/stage_1", 1, with(gin.H{"name": "Closed Lost"}))
	if w.Code != http.StatusOK {
		t.Fatalf("update: status = %d, body = %s", w.Code, w.Body.String())
	}
	w, _ = app.do(t, "PUT", appHost, "/api/pipeline/default-stage", 1, with(gin.H{"stage_id": "stage_1"}))
	if w.Code != http.StatusOK {
		t.Fatalf("default: status = %d, body = %s", w.Code, w.Body.String())
	}
	target := "/api/pipeline/stages/new?config_id=" + uintString(app.acme.ID) + "&tab_id=sales&component_id=leads"
	w, _ = app.do(t, "DELETE", appHost, target, 1, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("delete: status = %d, body = %s", w.Code, w.Body.String())
	}

	w, env := app.do(t, "GET", appHost, "/api/pipeline/stages?config_id="+uintString(app.acme.ID)+"&tab_id=sales&component_id=leads", 1, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list: status = %d, body = %s", w.Code, w.Body.String())
	}
	var p models.Pipeline
	if err := json.Unmarshal(env.Data, &p); err != nil {
		t.Fatalf("decode pipeline: %v", err)
	}
	want := models.Pipeline{
		Stages: []models.Stage{
			{ID: "contacted", Name: "Contacted", Color: "#8b5cf6", Order: 0},
			{ID: "won", Name: "Won", Color: "#10b981", Order: 1},
			{ID: "stage_1", Name: "Closed Lost", Color: "#6b7280", Order: 2},
		},
		DefaultStageID: "stage_1",
	}
	if diff := cmp.Diff(want, p); diff != "" {
		t.Errorf("pipeline mismatch (-want +got):\n%s", diff)
	}
}

func TestAPI_TenantIsolation(t *testing.T) {
	app := newTestApp(t)
	before := app.reload(t, app.bolt.ID).Tabs.Data()

	// acme's owner addresses bolt's config by id
	w, env := app.do(t, "PUT", appHost, "/api/pipeline/stages/reorder", 1, gin.H{
		"config_id":    app.bolt.ID,
		"component_id": "leads",
		"stage_ids":    []string{"won", "contacted", "new"},
	})
	if w.Code != http.StatusForbidden || env.Code != "forbidden" {
		t.Errorf("cross-tenant reorder: status = %d, body = %s", w.Code, w.Body.String())
	}
	w, _ = app.do(t, "PUT", appHost, "/api/views/preference", 1, gin.H{
		"config_id":    app.bolt.ID,
		"component_id": "leads",
		"view":         "table",
	})
	if w.Code != http.StatusForbidden {
		t.Errorf("cross-tenant view update: status = %d", w.Code)
	}
	w, _ = app.do(t, "GET", appHost, "/api/config/versions?config_id="+uintString(app.bolt.ID), 1, nil)
	if w.Code != http.StatusForbidden {
		t.Errorf("cross-tenant version list: status = %d", w.Code)
	}

	// owner APIs are closed on tenant hosts, even for a signed-in owner
	w, _ = app.do(t, "PUT", "bolt.root.test", "/api/pipeline/stages/reorder", 2, gin.H{
		"config_id":    app.bolt.ID,
		"component_id": "leads",
		"stage_ids":    []string{"won", "contacted", "new"},
	})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("owner API via tenant host: status = %d", w.Code)
	}

	if diff := cmp.Diff(before, app.reload(t, app.bolt.ID).Tabs.Data()); diff != "" {
		t.Errorf("bolt's config changed (-want +got):\n%s", diff)
	}
}

func TestAPI_RequiresSession(t *testing.T) {
	app := newTestApp(t)

	w, env := app.do(t, "GET", appHost, "/api/config", 0, nil)
	if w.Code != http.StatusUnauthorized || env.Code != "unauthenticated" {
		t.Errorf("status = %d, body = %s", w.Code, w.Body.String())
	}
}

func TestViewAPI(t *testing.T) {
	app := newTestApp(t)

	w, env := app.do(t, "GET", appHost, "/api/views/options?component_id=leads", 1, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("options: status = %d", w.Code)
	}
	var opts services.ViewOptions
	if err := json.Unmarshal(env.Data, &opts); err != nil || opts.Default != presets.ViewKanban {
		t.Errorf("options = %+v, %v", opts, err)
	}

	w, env = app.do(t, "PUT", appHost, "/api/views/preference", 1, gin.H{
		"config_id":    app.acme.ID,
		"component_id": "leads",
		"view":         "calendar",
	})
	if w.Code != http.StatusBadRequest || env.Code != "invalid_input" {
		t.Errorf("unsupported view: status = %d, body = %s", w.Code, w.Body.String())
	}

	w, _ = app.do(t, "PUT", appHost, "/api/views/preference", 1, gin.H{
		"config_id":    app.acme.ID,
		"component_id": "leads",
		"view":         "table",
	})
	if w.Code != http.StatusOK {
		t.Errorf("supported view: status = %d, body = %s", w.Code, w.Body.String())
	}

	w, env = app.do(t, "GET", appHost, "/api/views/options?component_id=leads&config_id="+uintString(app.acme.ID), 1, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("options with config: status = %d", w.Code)
	}
	opts = services.ViewOptions{}
	if err := json.Unmarshal(env.Data, &opts); err != nil || opts.Current != presets.ViewTable {
		t.Errorf("options with config = %+v, %v", opts, err)
	}

	w, _ = app.do(t, "GET", appHost, "/api/views/options?component_id=leads&config_id=abc", 1, nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("malformed config_id: status = %d", w.Code)
	}
}

func TestConfigAPI_VersionsAndRestore(t *testing.T) {
	app := newTestApp(t)

	w, env := app.do(t, "GET", appHost, "/api/config", 1, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get config: status = %d", w.Code)
	}
	var active models.DashboardConfig
	if err := json.Unmarshal(env.Data, &active); err != nil || active.ID != app.acme.ID {
		t.Fatalf("active config = %+v, %v", active, err)
	}

	app.do(t, "PUT", appHost, "/api/views/preference", 1, gin.H{
		"config_id": app.acme.ID, "component_id": "leads", "view": "table",
	})

	w, env = app.do(t, "GET", appHost, "/api/config/versions?config_id="+uintString(app.acme.ID), 1, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("versions: status = %d", w.Code)
	}
	var versions []models.ConfigVersion
	if err := json.Unmarshal(env.Data, &versions); err != nil || len(versions) != 1 {
		t.Fatalf("versions = %d, %v", len(versions), err)
	}

	w, _ = app.do(t, "POST", appHost, "/api/config/versions/"+uintString(versions[0].ID)+"/restore", 1, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("restore: status = %d, body = %s", w.Code, w.Body.String())
	}
	if diff := cmp.Diff(app.acme.Tabs.Data(), app.reload(t, app.acme.ID).Tabs.Data()); diff != "" {
		t.Errorf("restored tabs mismatch (-want +got):\n%s", diff)
	}

	w, _ = app.do(t, "POST", appHost, "/api/config/versions/abc/restore", 1, nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("bad id: status = %d", w.Code)
	}
}

func TestPublicSite(t *testing.T) {
	app := newTestApp(t)

	tests := []struct {
		target  string
		surface string
		path    string
	}{
		{"/", "site", "/"},
		{"/about", "site", "/about"},
		{"/portal/invoices", "portal", "/invoices"},
	}
	for _, tt := range tests {
		w, env := app.do(t, "GET", "acme.root.test", tt.target, 0, nil)
		if w.Code != http.StatusOK {
			t.Fatalf("%s: status = %d, body = %s", tt.target, w.Code, w.Body.String())
		}
		var page surfacePage
		if err := json.Unmarshal(env.Data, &page); err != nil {
			t.Fatalf("decode page: %v", err)
		}
		if page.Surface != tt.surface || page.Path != tt.path || page.Site.Subdomain != "acme" {
			t.Errorf("%s: page = %+v", tt.target, page)
		}
		if strings.Contains(w.Body.String(), "pipeline") {
			t.Errorf("%s: public page leaks owner data: %s", tt.target, w.Body.String())
		}
	}

	w, env := app.do(t, "GET", "bolt.root.test", "/api/public/site", 0, nil)
	var site tenant.PublicSite
	if w.Code != http.StatusOK || json.Unmarshal(env.Data, &site) != nil || site.Subdomain != "bolt" {
		t.Errorf("public api: status = %d, body = %s", w.Code, w.Body.String())
	}
	if len(site.Pages) != 2 || site.Pages[0].ID != "sales" {
		t.Errorf("pages = %+v", site.Pages)
	}
}

func TestPublicSite_UnknownTenant(t *testing.T) {
	app := newTestApp(t)

	for _, target := range []string{"/", "/portal", "/api/public/site"} {
		w, env := app.do(t, "GET", "ghost.root.test", target, 0, nil)
		if w.Code != http.StatusNotFound || env.Code != "not_found" {
			t.Errorf("%s: status = %d, body = %s", target, w.Code, w.Body.String())
		}
	}

	// a profile without an active config is not served either
	if err := app.store.CreateProfile(context.Background(), &models.Profile{ID: 9, Subdomain: "halfway"}); err != nil {
		t.Fatalf("CreateProfile() error = %v", err)
	}
	w, _ := app.do(t, "GET", "halfway.root.test", "/", 0, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("profile without config: status = %d", w.Code)
	}
}

func TestTenantAPI_CheckAndClaim(t *testing.T) {
	app := newTestApp(t)

	w, env := app.do(t, "GET", "root.test", "/api/tenant/subdomain/check?label=acme", 0, nil)
	var check services.SubdomainCheck
	if w.Code != http.StatusOK || json.Unmarshal(env.Data, &check) != nil || check.Available {
		t.Errorf("check acme: status = %d, body = %s", w.Code, w.Body.String())
	}

	w, _ = app.do(t, "GET", "root.test", "/api/tenant/subdomain/check", 0, nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("check without label: status = %d", w.Code)
	}

	w, env = app.do(t, "POST", appHost, "/api/tenant/claim", 3, gin.H{
		"business_name": "Corner Bakery",
		"business_type": "restaurant",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("claim: status = %d, body = %s", w.Code, w.Body.String())
	}
	var claimed services.ClaimResult
	if err := json.Unmarshal(env.Data, &claimed); err != nil || claimed.Profile.Subdomain != "corner-bakery" {
		t.Fatalf("claim result = %s, %v", env.Data, err)
	}

	w, _ = app.do(t, "GET", "corner-bakery.root.test", "/", 0, nil)
	if w.Code != http.StatusOK {
		t.Errorf("new site: status = %d", w.Code)
	}

	w, env = app.do(t, "POST", appHost, "/api/tenant/claim", 3, gin.H{"business_name": "Again"})
	if w.Code != http.StatusConflict || env.Code != "conflict" {
		t.Errorf("second claim: status = %d, body = %s", w.Code, w.Body.String())
	}

	w, _ = app.do(t, "POST", appHost, "/api/tenant/claim", 4, gin.H{})
	if w.Code != http.StatusBadRequest {
		t.Errorf("claim without name: status = %d", w.Code)
	}
}

func TestHealthAndMetrics(t *testing.T) {
	app := newTestApp(t)

	w, _ := app.do(t, "GET", "root.test", "/health", 0, nil)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"status":"healthy"`) {
		t.Errorf("health: status = %d, body = %s", w.Code, w.Body.String())
	}

	w, _ = app.do(t, "GET", "root.test", "/metrics", 0, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("metrics: status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `test_store_rows{table="profiles"} 2`) {
		t.Errorf("metrics body missing profile count:\n%s", w.Body.String())
	}
}

func uintString(n uint) string {
	return strconv.FormatUint(uint64(n), 10)
}

package middleware

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestParseRouteInfo(t *testing.T) {
	tests := []struct {
		fullPath   string
		method     string
		wantModule string
		wantAction string
	}{
		{"/api/pipeline/stages/:stage_id", "PUT", "Pipeline", "Update"},
		{"/api/pipeline/stages", "POST", "Pipeline", "Create"},
		{"/api/pipeline/stages/:stage_id", "DELETE", "Pipeline", "Delete"},
		{"/api/config/versions/:id/restore", "POST", "Config", "Restore"},
		{"/api/tenant/claim", "POST", "Tenant", "Create"},
		{"/api/default-stage", "PUT", "Default Stage", "Update"},
		{"", "PATCH", "Unknown", "PATCH"},
	}

	for _, tt := range tests {
		module, action := parseRouteInfo(tt.fullPath, tt.method)
		if module != tt.wantModule || action != tt.wantAction {
			t.Errorf("parseRouteInfo(%q, %q) = (%q, %q), want (%q, %q)",
				tt.fullPath, tt.method, module, action, tt.wantModule, tt.wantAction)
		}
	}
}

func TestMaskSensitiveFields(t *testing.T) {
	tests := []struct {
		body string
		want string
	}{
		{`{"business_name":"Acme","email":"owner@acme.test"}`, `{"business_name":"Acme","email":"***"}`},
		{`{"token": "abc"}`, `{"token": "***"}`},
		{`{"stage_ids":["new","won"]}`, `{"stage_ids":["new","won"]}`},
		{`{"secret": 42}`, `{"secret": 42}`},
	}

	for _, tt := range tests {
		if got := maskSensitiveFields(tt.body); got != tt.want {
			t.Errorf("maskSensitiveFields(%s) = %s, want %s", tt.body, got, tt.want)
		}
	}
}

func TestAuditLog_PreservesBody(t *testing.T) {
	router := gin.New()
	router.Use(AuditLog())

	var got string
	router.POST("/api/tenant/claim", func(c *gin.Context) {
		raw, _ := io.ReadAll(c.Request.Body)
		got = string(raw)
		c.Status(http.StatusCreated)
	})

	body := `{"business_name":"Acme"}`
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/tenant/claim", bytes.NewBufferString(body))
	router.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d", w.Code)
	}
	if got != body {
		t.Errorf("handler saw body %q, want %q", got, body)
	}
}

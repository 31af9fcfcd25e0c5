package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func performRequest(handler gin.HandlerFunc) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest("GET", "/test", nil)
	handler(c)
	return w
}

func parseResponse(t *testing.T, w *httptest.ResponseRecorder) Response {
	t.Helper()
	var resp Response
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	return resp
}

func TestSuccess(t *testing.T) {
	w := performRequest(func(c *gin.Context) {
		Success(c, map[string]string{"name": "test"})
	})

	if w.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, w.Code)
	}

	resp := parseResponse(t, w)
	if !resp.Success {
		t.Error("expected success=true")
	}
	if resp.Error != "" {
		t.Errorf("expected empty error, got %q", resp.Error)
	}
}

func TestCreated(t *testing.T) {
	w := performRequest(func(c *gin.Context) {
		Created(c, map[string]int{"id": 1})
	})

	if w.Code != http.StatusCreated {
		t.Errorf("expected status %d, got %d", http.StatusCreated, w.Code)
	}

	resp := parseResponse(t, w)
	if !resp.Success {
		t.Error("expected success=true")
	}
}

func TestConvenienceHelpers(t *testing.T) {
	tests := []struct {
		name   string
		fn     func(c *gin.Context, msg string)
		status int
		code   string
	}{
		{"bad request", BadRequest, http.StatusBadRequest, CodeInvalidInput},
		{"not found", NotFound, http.StatusNotFound, CodeNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := performRequest(func(c *gin.Context) {
				tt.fn(c, "boom")
			})
			if w.Code != tt.status {
				t.Errorf("expected status %d, got %d", tt.status, w.Code)
			}
			resp := parseResponse(t, w)
			if resp.Success {
				t.Error("expected success=false")
			}
			if resp.Code != tt.code {
				t.Errorf("expected code %q, got %q", tt.code, resp.Code)
			}
			if resp.Error != "boom" {
				t.Errorf("expected error 'boom', got %q", resp.Error)
			}
		})
	}
}

func TestError_WithAppError(t *testing.T) {
	w := performRequest(func(c *gin.Context) {
		Error(c, NewConflict("subdomain taken"))
	})

	if w.Code != http.StatusConflict {
		t.Errorf("expected status %d, got %d", http.StatusConflict, w.Code)
	}

	resp := parseResponse(t, w)
	if resp.Code != CodeConflict {
		t.Errorf("expected code %q, got %q", CodeConflict, resp.Code)
	}
	if resp.Error != "subdomain taken" {
		t.Errorf("expected message 'subdomain taken', got %q", resp.Error)
	}
}

func TestError_WithWrappedAppError(t *testing.T) {
	w := performRequest(func(c *gin.Context) {
		Error(c, fmt.Errorf("mutate: %w", NewForbidden("not your config")))
	})

	if w.Code != http.StatusForbidden {
		t.Errorf("expected status %d, got %d", http.StatusForbidden, w.Code)
	}
}

func TestError_WithGenericError(t *testing.T) {
	w := performRequest(func(c *gin.Context) {
		Error(c, errors.New("something went wrong"))
	})

	if w.Code != http.StatusInternalServerError {
		t.Errorf("expected status %d, got %d", http.StatusInternalServerError, w.Code)
	}

	resp := parseResponse(t, w)
	if resp.Code != CodeUpstream {
		t.Errorf("expected code %q, got %q", CodeUpstream, resp.Code)
	}
}

func TestWrapUpstream(t *testing.T) {
	cause := errors.New("connection refused")
	err := WrapUpstream("update config", cause)

	if err.HTTPStatus != http.StatusInternalServerError {
		t.Errorf("expected status 500, got %d", err.HTTPStatus)
	}
	if !errors.Is(err, cause) {
		t.Error("wrapped error should unwrap to its cause")
	}
	if err.Error() != "update config: connection refused" {
		t.Errorf("unexpected message %q", err.Error())
	}
}

func TestIsCode(t *testing.T) {
	if !IsCode(NewNotFound("x"), CodeNotFound) {
		t.Error("expected not_found code to match")
	}
	if IsCode(NewNotFound("x"), CodeForbidden) {
		t.Error("codes should not cross-match")
	}
	if IsCode(errors.New("plain"), CodeUpstream) {
		t.Error("plain errors carry no code")
	}
}

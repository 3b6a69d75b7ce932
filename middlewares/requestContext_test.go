package middlewares

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"bitbucket.org/mmdatafocus/reports_backend/utils"
	"github.com/gin-gonic/gin"
)

func runRequest(t *testing.T, headers map[string]string) (*httptest.ResponseRecorder, *http.Request) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	var captured *http.Request
	r := gin.New()
	r.Use(RequestContextMiddleware())
	r.GET("/", func(c *gin.Context) {
		captured = c.Request
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w, captured
}

func TestCorrelationIdGenerated(t *testing.T) {
	w, req := runRequest(t, nil)

	cid, ok := utils.GetCorrelationIdFromContext(req.Context())
	if !ok || cid == "" {
		t.Fatal("correlation id must be generated when absent")
	}
	if w.Header().Get("X-Correlation-Id") != cid {
		t.Error("correlation id must be echoed on the response")
	}
}

func TestCorrelationIdPassedThrough(t *testing.T) {
	w, req := runRequest(t, map[string]string{"X-Correlation-Id": "abc-123"})

	cid, _ := utils.GetCorrelationIdFromContext(req.Context())
	if cid != "abc-123" {
		t.Errorf("correlation id = %q, want abc-123", cid)
	}
	if w.Header().Get("X-Correlation-Id") != "abc-123" {
		t.Error("incoming correlation id must be echoed unchanged")
	}
}

func TestUserNameThreadedIntoContext(t *testing.T) {
	_, req := runRequest(t, map[string]string{"X-User-Name": "aye.chan"})

	user, ok := utils.GetUserNameFromContext(req.Context())
	if !ok || user != "aye.chan" {
		t.Errorf("user name from context = %q, %v, want aye.chan", user, ok)
	}

	_, req = runRequest(t, nil)
	if _, ok := utils.GetUserNameFromContext(req.Context()); ok {
		t.Error("user name must be absent when the header is not sent")
	}
}

func TestViewerRoleFlag(t *testing.T) {
	tests := []struct {
		name string
		role string
		want bool
	}{
		{"no header is unprivileged", "", false},
		{"User role is unprivileged", "User", false},
		{"user role case-insensitive", "user", false},
		{"Admin role is privileged", "Admin", true},
		{"Owner role is privileged", "Owner", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			headers := map[string]string{}
			if tt.role != "" {
				headers["X-Viewer-Role"] = tt.role
			}
			_, req := runRequest(t, headers)
			got, _ := utils.GetIsPrivilegedFromContext(req.Context())
			if got != tt.want {
				t.Errorf("isPrivileged for role %q = %v, want %v", tt.role, got, tt.want)
			}
		})
	}
}

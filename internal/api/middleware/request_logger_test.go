package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/easygenerator/auth-api/internal/core/domain"
	"github.com/easygenerator/auth-api/internal/infrastructure/security"
)

func TestRequestLogger_IncludesAuthenticatedUser(t *testing.T) {
	var buf bytes.Buffer
	tokens := security.NewTokenIssuer(testSecret, time.Hour)
	users := &stubValidator{users: map[string]*domain.User{
		"admin-1": {ID: "admin-1", Role: domain.RoleAdmin},
	}}
	policy := NewAccessPolicy().Group("/users", domain.RoleAdmin)

	e := echo.New()
	e.Use(RequestLogger(zerolog.New(&buf)))
	e.GET("/health", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	g := e.Group("/users", NewGuard(tokens, users, policy, zerolog.Nop()).Middleware())
	g.GET("", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	token, err := tokens.Issue("admin-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	req := httptest.NewRequest(http.MethodGet, "/users", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	e.ServeHTTP(httptest.NewRecorder(), req)

	line := buf.String()
	if !strings.Contains(line, `"user_id":"admin-1"`) || !strings.Contains(line, `"role":"ADMIN"`) {
		t.Fatalf("expected user fields in access log, got %s", line)
	}
	if !strings.Contains(line, `"route":"/users"`) || !strings.Contains(line, `"status":200`) {
		t.Fatalf("expected route and status in access log, got %s", line)
	}

	buf.Reset()
	e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))
	if strings.Contains(buf.String(), "user_id") {
		t.Fatalf("anonymous request must not log a user, got %s", buf.String())
	}
}

package middleware

import (
	"context"
	"errors"
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

const testSecret = "test-secret"

type stubValidator struct {
	users map[string]*domain.User
	err   error
}

func (s *stubValidator) ValidateUser(_ context.Context, subject string) (*domain.User, bool, error) {
	if s.err != nil {
		return nil, false, s.err
	}
	u, ok := s.users[subject]
	return u, ok, nil
}

type guardFixture struct {
	e      *echo.Echo
	tokens *security.TokenIssuer
	users  *stubValidator
}

func newGuardFixture() *guardFixture {
	tokens := security.NewTokenIssuer(testSecret, time.Hour)
	users := &stubValidator{users: map[string]*domain.User{
		"admin-1": {ID: "admin-1", Role: domain.RoleAdmin},
		"user-1":  {ID: "user-1", Role: domain.RoleUser},
	}}
	policy := NewAccessPolicy().
		Group("/users", domain.RoleAdmin).
		Restrict(http.MethodGet, "/users", domain.RoleAdmin, domain.RoleUser)

	e := echo.New()
	g := e.Group("/users", NewGuard(tokens, users, policy, zerolog.Nop()).Middleware())
	whoami := func(c echo.Context) error {
		u, ok := CurrentUser(c)
		if !ok {
			return c.NoContent(http.StatusTeapot)
		}
		ctxUser, ok := UserFromContext(c.Request().Context())
		if !ok || ctxUser.ID != u.ID {
			return c.NoContent(http.StatusTeapot)
		}
		return c.String(http.StatusOK, u.ID)
	}
	g.GET("", whoami)
	g.GET("/:id", whoami)

	return &guardFixture{e: e, tokens: tokens, users: users}
}

func (f *guardFixture) do(t *testing.T, path, authorization string) (*httptest.ResponseRecorder, error) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authorization != "" {
		req.Header.Set(echo.HeaderAuthorization, authorization)
	}
	rec := httptest.NewRecorder()

	var handlerErr error
	f.e.HTTPErrorHandler = func(err error, c echo.Context) { handlerErr = err }
	f.e.ServeHTTP(rec, req)
	return rec, handlerErr
}

func (f *guardFixture) bearer(t *testing.T, subject string) string {
	t.Helper()
	token, err := f.tokens.Issue(subject)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return "Bearer " + token
}

func TestGuard_GrantsAndAttachesUser(t *testing.T) {
	f := newGuardFixture()

	rec, err := f.do(t, "/users/abc", f.bearer(t, "admin-1"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK || rec.Body.String() != "admin-1" {
		t.Fatalf("expected 200 admin-1, got %d %q", rec.Code, rec.Body.String())
	}
}

func TestGuard_RouteOverridesGroup(t *testing.T) {
	f := newGuardFixture()

	rec, err := f.do(t, "/users", f.bearer(t, "user-1"))
	if err != nil || rec.Code != http.StatusOK {
		t.Fatalf("USER should list users, got %d %v", rec.Code, err)
	}

	_, err = f.do(t, "/users/abc", f.bearer(t, "user-1"))
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for USER on admin route, got %v", err)
	}
}

func TestGuard_Unauthorized(t *testing.T) {
	f := newGuardFixture()
	expired, err := f.tokens.WithClock(func() time.Time { return time.Now().Add(-2 * time.Hour) }).Issue("admin-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	foreign, err := security.NewTokenIssuer("other-secret", time.Hour).Issue("admin-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"wrong scheme", "Token abc"},
		{"lowercase scheme", "bearer " + strings.TrimPrefix(f.bearer(t, "admin-1"), "Bearer ")},
		{"empty bearer", "Bearer "},
		{"garbage token", "Bearer not.a.jwt"},
		{"expired token", "Bearer " + expired},
		{"foreign signature", "Bearer " + foreign},
		{"deleted user", f.bearer(t, "ghost")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.do(t, "/users", tt.header)
			if !errors.Is(err, domain.ErrUnauthorized) {
				t.Fatalf("expected ErrUnauthorized, got %v", err)
			}
		})
	}
}

func TestGuard_LookupFailureIsNotUnauthorized(t *testing.T) {
	f := newGuardFixture()
	f.users.err = domain.Wrap(domain.ErrInternal, errors.New("db down"))

	_, err := f.do(t, "/users", f.bearer(t, "admin-1"))
	if !errors.Is(err, domain.ErrInternal) {
		t.Fatalf("expected ErrInternal, got %v", err)
	}
	if errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("store failure must not look like a bad token")
	}
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		want   string
		ok     bool
	}{
		{"Bearer abc", "abc", true},
		{"bearer abc", "", false},
		{"BEARER abc", "", false},
		{"  Bearer   abc  ", "abc", true},
		{"Basic abc", "", false},
		{"Bearer", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := bearerToken(tt.header)
		if got != tt.want || ok != tt.ok {
			t.Errorf("bearerToken(%q) = %q, %v; want %q, %v", tt.header, got, ok, tt.want, tt.ok)
		}
	}
}

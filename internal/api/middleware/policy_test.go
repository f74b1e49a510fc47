package middleware

import (
	"net/http"
	"slices"
	"testing"

	"github.com/easygenerator/auth-api/internal/core/domain"
)

func TestAccessPolicy_RequiredRoles(t *testing.T) {
	p := NewAccessPolicy().
		Group("/api", domain.RoleUser).
		Group("/api/users/", domain.RoleAdmin).
		Restrict(http.MethodGet, "/api/users", domain.RoleAdmin, domain.RoleUser).
		Restrict("patch", "/api/users/me", domain.RoleAdmin, domain.RoleUser)

	tests := []struct {
		method, path string
		want         []domain.Role
		ok           bool
	}{
		{http.MethodGet, "/api/users", []domain.Role{domain.RoleAdmin, domain.RoleUser}, true},
		{http.MethodPost, "/api/users", []domain.Role{domain.RoleAdmin}, true},
		{http.MethodGet, "/api/users/:id", []domain.Role{domain.RoleAdmin}, true},
		{http.MethodPatch, "/api/users/me", []domain.Role{domain.RoleAdmin, domain.RoleUser}, true},
		{http.MethodGet, "/api/profile", []domain.Role{domain.RoleUser}, true},
		{http.MethodGet, "/api-docs", nil, false},
		{http.MethodGet, "/health", nil, false},
	}
	for _, tt := range tests {
		got, ok := p.RequiredRoles(tt.method, tt.path)
		if ok != tt.ok || !slices.Equal(got, tt.want) {
			t.Errorf("RequiredRoles(%s %s) = %v, %v; want %v, %v", tt.method, tt.path, got, ok, tt.want, tt.ok)
		}
	}
}

package middleware

import (
	"net/http"
	"strings"

	"github.com/easygenerator/auth-api/internal/core/domain"
)

// AccessPolicy is the role declaration table consulted by the Guard.
// Routes are keyed by method and echo path template ("/users/:id").
// A route declaration overrides the longest matching group declaration.
// Paths with no declaration only require authentication.
type AccessPolicy struct {
	groups []groupRule
	routes map[string][]domain.Role
}

type groupRule struct {
	prefix string
	roles  []domain.Role
}

func NewAccessPolicy() *AccessPolicy {
	return &AccessPolicy{routes: make(map[string][]domain.Role)}
}

// Group declares the default roles for every route under prefix.
func (p *AccessPolicy) Group(prefix string, roles ...domain.Role) *AccessPolicy {
	p.groups = append(p.groups, groupRule{prefix: strings.TrimSuffix(prefix, "/"), roles: roles})
	return p
}

// Restrict declares the roles for a single route.
func (p *AccessPolicy) Restrict(method, path string, roles ...domain.Role) *AccessPolicy {
	p.routes[routeKey(method, path)] = roles
	return p
}

// RequiredRoles resolves the role set for a route. ok is false when nothing
// was declared for it.
func (p *AccessPolicy) RequiredRoles(method, path string) (roles []domain.Role, ok bool) {
	if roles, ok := p.routes[routeKey(method, path)]; ok {
		return roles, true
	}

	best := -1
	for _, g := range p.groups {
		if path != g.prefix && !strings.HasPrefix(path, g.prefix+"/") {
			continue
		}
		if len(g.prefix) > best {
			best = len(g.prefix)
			roles = g.roles
		}
	}
	return roles, best >= 0
}

func routeKey(method, path string) string {
	if method == "" {
		method = http.MethodGet
	}
	return strings.ToUpper(method) + " " + path
}

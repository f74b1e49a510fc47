package api

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/easygenerator/auth-api/docs"
	"github.com/easygenerator/auth-api/internal/api/handler"
	"github.com/easygenerator/auth-api/internal/api/middleware"
	"github.com/easygenerator/auth-api/internal/core/domain"
	"github.com/easygenerator/auth-api/internal/core/ports"
	"github.com/easygenerator/auth-api/internal/infrastructure/http/handlers"
	"github.com/easygenerator/auth-api/internal/pkg/config"
)

// Dependencies are the collaborators the router wires into handlers.
type Dependencies struct {
	Auth   ports.AuthService
	Users  ports.UserService
	Tokens middleware.TokenVerifier
	// Checks are run by the readiness probe, keyed by dependency name.
	Checks map[string]handlers.Check
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(cfg *config.Config, log zerolog.Logger, deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log, !cfg.IsProduction())

	// --- Global middleware ---
	reg := prometheus.NewRegistry()
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestIDWithConfig(echomiddleware.RequestIDConfig{
		Generator: func() string { return uuid.NewString() },
	}))
	e.Use(middleware.RequestLogger(log))
	origins := corsOrigins(cfg.ClientURL)
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:     origins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowCredentials: origins[0] != "*",
	}))
	e.Use(echomiddleware.Secure())
	e.Use(echomiddleware.Gzip())
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  "authapi",
		Registerer: reg,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics" || strings.HasPrefix(c.Path(), "/api/docs")
		},
	}))

	// --- Operational endpoints (no auth required) ---
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{
		Gatherer: prometheus.Gatherers{reg, prometheus.DefaultGatherer},
	}))
	e.GET("/api/docs/*", echoSwagger.WrapHandler)
	healthHandler := handlers.NewHealthHandler()
	healthDepsHandler := handlers.NewHealthDependenciesHandler(deps.Checks)
	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?

	// --- API ---
	base := ""
	if cfg.APIPrefix != "" {
		base = "/" + cfg.APIPrefix
	}
	policy := middleware.NewAccessPolicy()
	guard := middleware.NewGuard(deps.Tokens, deps.Auth, policy, log)

	authHandler := handler.NewAuthHandler(deps.Auth)
	auth := e.Group(base + "/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)

	userHandler := handler.NewUserHandler(deps.Users)
	users := &routeGroup{
		group:  e.Group(base+"/users", guard.Middleware()),
		prefix: base + "/users",
		policy: policy,
	}
	policy.Group(users.prefix, domain.RoleAdmin)
	anyRole := []domain.Role{domain.RoleAdmin, domain.RoleUser}

	users.add(http.MethodGet, "", userHandler.List, anyRole...)
	users.add(http.MethodGet, "/me", userHandler.Me, anyRole...)
	users.add(http.MethodPatch, "/me", userHandler.UpdateMe, anyRole...)
	users.add(http.MethodPost, "", userHandler.Create)
	users.add(http.MethodGet, "/:id", userHandler.Get)
	users.add(http.MethodPut, "/:id", userHandler.Update)
	users.add(http.MethodDelete, "/:id", userHandler.Delete)

	return e
}

// routeGroup registers a route and its role declaration together, so the
// guard's table always matches what is mounted.
type routeGroup struct {
	group  *echo.Group
	prefix string
	policy *middleware.AccessPolicy
}

// add mounts h under the group. With no roles the group default applies.
func (g *routeGroup) add(method, path string, h echo.HandlerFunc, roles ...domain.Role) {
	g.group.Add(method, path, h)
	if len(roles) > 0 {
		g.policy.Restrict(method, g.prefix+path, roles...)
	}
}

func corsOrigins(clientURL string) []string {
	var origins []string
	for _, o := range strings.Split(clientURL, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}

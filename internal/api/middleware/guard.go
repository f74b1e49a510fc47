package middleware

import (
	"context"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/easygenerator/auth-api/internal/core/domain"
	"github.com/easygenerator/auth-api/internal/core/ports"
	"github.com/easygenerator/auth-api/internal/pkg/metrics"
)

// TokenVerifier is the subset of ports.TokenIssuer the Guard needs.
type TokenVerifier interface {
	Verify(token string) (*ports.TokenClaims, error)
}

// UserValidator resolves a verified token subject to a user.
type UserValidator interface {
	ValidateUser(ctx context.Context, subject string) (*domain.User, bool, error)
}

// Guard authenticates bearer tokens and enforces the AccessPolicy.
type Guard struct {
	tokens TokenVerifier
	users  UserValidator
	policy *AccessPolicy
	log    zerolog.Logger
}

func NewGuard(tokens TokenVerifier, users UserValidator, policy *AccessPolicy, log zerolog.Logger) *Guard {
	if policy == nil {
		policy = NewAccessPolicy()
	}
	return &Guard{tokens: tokens, users: users, policy: policy, log: log}
}

// Middleware returns the echo middleware. It must be attached to a group or
// route so that c.Path() holds the matched route template.
func (g *Guard) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, err := g.authenticate(c)
			if err != nil {
				return err
			}

			method, path := c.Request().Method, c.Path()
			if roles, ok := g.policy.RequiredRoles(method, path); ok && !user.Role.OneOf(roles) {
				g.log.Warn().
					Str("user_id", user.ID).
					Str("role", string(user.Role)).
					Str("method", method).
					Str("path", path).
					Msg("access denied: insufficient role")
				metrics.AccessDecisionsTotal.WithLabelValues("forbidden").Inc()
				return domain.NewError(domain.ErrForbidden, "", nil)
			}

			c.Set(ContextKeyUser, user)
			c.SetRequest(c.Request().WithContext(WithUser(c.Request().Context(), user)))
			metrics.AccessDecisionsTotal.WithLabelValues("granted").Inc()
			return next(c)
		}
	}
}

func (g *Guard) authenticate(c echo.Context) (*domain.User, error) {
	token, ok := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
	if !ok {
		g.log.Warn().Str("path", c.Path()).Msg("authentication failed: missing bearer token")
		metrics.AccessDecisionsTotal.WithLabelValues("missing_token").Inc()
		return nil, domain.NewError(domain.ErrUnauthorized, "", nil)
	}

	claims, err := g.tokens.Verify(token)
	if err != nil {
		g.log.Warn().Err(err).Str("path", c.Path()).Msg("authentication failed: invalid token")
		metrics.AccessDecisionsTotal.WithLabelValues("invalid_token").Inc()
		return nil, domain.NewError(domain.ErrUnauthorized, "", nil)
	}

	user, found, err := g.users.ValidateUser(c.Request().Context(), claims.Subject)
	if err != nil {
		g.log.Error().Err(err).Str("user_id", claims.Subject).Msg("authentication failed: user lookup error")
		metrics.AccessDecisionsTotal.WithLabelValues("error").Inc()
		return nil, err
	}
	if !found {
		g.log.Warn().Str("user_id", claims.Subject).Msg("authentication failed: user no longer exists")
		metrics.AccessDecisionsTotal.WithLabelValues("unknown_user").Inc()
		return nil, domain.NewError(domain.ErrUnauthorized, "", nil)
	}
	return user, nil
}

// bearerToken extracts the credential from "Bearer <token>". The scheme is
// matched exactly.
func bearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || scheme != "Bearer" {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

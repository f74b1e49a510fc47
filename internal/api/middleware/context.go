package middleware

import (
	"context"

	"github.com/labstack/echo/v4"

	"github.com/easygenerator/auth-api/internal/core/domain"
)

// ContextKeyUser is the echo.Context key holding the authenticated *domain.User.
const ContextKeyUser = "user"

type userCtxKey struct{}

// WithUser returns a copy of ctx carrying user.
func WithUser(ctx context.Context, user *domain.User) context.Context {
	return context.WithValue(ctx, userCtxKey{}, user)
}

// UserFromContext returns the user attached by the Guard, if any.
func UserFromContext(ctx context.Context) (*domain.User, bool) {
	u, ok := ctx.Value(userCtxKey{}).(*domain.User)
	return u, ok && u != nil
}

// CurrentUser returns the user attached to c by the Guard, if any.
func CurrentUser(c echo.Context) (*domain.User, bool) {
	u, ok := c.Get(ContextKeyUser).(*domain.User)
	return u, ok && u != nil
}

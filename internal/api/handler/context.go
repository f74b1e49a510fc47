package handler

import (
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/easygenerator/auth-api/internal/api/middleware"
	"github.com/easygenerator/auth-api/internal/core/domain"
)

// currentUser returns the user attached by the Guard. Its absence means the
// route was mounted without the Guard, which is reported as unauthorized.
func currentUser(c echo.Context) (*domain.User, error) {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		return nil, domain.NewError(domain.ErrUnauthorized, "", nil)
	}
	return u, nil
}

// idParam reads the :id path parameter and rejects malformed ObjectIDs
// before any lookup.
func idParam(c echo.Context) (string, error) {
	id := c.Param("id")
	if !primitive.IsValidObjectID(id) {
		return "", domain.InvalidIDError(id)
	}
	return id, nil
}

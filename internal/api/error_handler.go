package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/easygenerator/auth-api/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	ErrorCode string `json:"errorCode"`
	Message   string `json:"message"`
	Details   any    `json:"details,omitempty"`
	Stack     string `json:"stack,omitempty"`
}

type errorKind struct {
	kind    error
	status  int
	code    string
	message string
}

// Order matters: the first matching kind wins.
var errorKinds = []errorKind{
	{domain.ErrValidation, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed for the provided input"},
	{domain.ErrBadRequest, http.StatusBadRequest, "BAD_REQUEST", "Bad request"},
	{domain.ErrUserExists, http.StatusBadRequest, "UNIQUE_CONSTRAINT_VIOLATION", "Resource already exists"},
	{domain.ErrInvalidID, http.StatusBadRequest, "INVALID_MONGO_ID", "Invalid MongoDB ObjectId"},
	{domain.ErrInvalidCredentials, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid email or password"},
	{domain.ErrUnauthorized, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication failed"},
	{domain.ErrInvalidToken, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication failed"},
	{domain.ErrForbidden, http.StatusForbidden, "FORBIDDEN", "Access denied"},
	{domain.ErrUserNotFound, http.StatusNotFound, "NOT_FOUND", "Resource not found"},
}

const (
	internalCode    = "INTERNAL_SERVER_ERROR"
	internalMessage = "Something went wrong"
)

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps domain error kinds to their HTTP status and error code.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders {"errorCode", "message", "details"?, "stack"?}; stack only when
//     exposeStack is set (non-production).
func NewHTTPErrorHandler(log zerolog.Logger, exposeStack bool) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status, body := resolveError(err, log, c)
		if exposeStack {
			body.Stack = err.Error()
		}

		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(status)
			return
		}
		_ = c.JSON(status, body)
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, errorResponse) {
	for _, k := range errorKinds {
		if !errors.Is(err, k.kind) {
			continue
		}
		body := errorResponse{ErrorCode: k.code, Message: k.message}
		var de *domain.Error
		if errors.As(err, &de) {
			if de.Message != "" {
				body.Message = de.Message
			}
			body.Details = de.Details
		}
		return k.status, body
	}

	// Echo's own errors (router 404/405, body too large, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) && he.Code < http.StatusInternalServerError {
		return he.Code, errorResponse{ErrorCode: statusCode(he.Code), Message: fmt.Sprint(he.Message)}
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
		Msg("unhandled error")

	return http.StatusInternalServerError, errorResponse{ErrorCode: internalCode, Message: internalMessage}
}

// statusCode turns an HTTP status into an error code, e.g. 405 → METHOD_NOT_ALLOWED.
func statusCode(status int) string {
	text := http.StatusText(status)
	if text == "" {
		return "BAD_REQUEST"
	}
	return strings.ToUpper(strings.ReplaceAll(text, " ", "_"))
}

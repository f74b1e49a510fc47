package domain

import (
	"errors"
	"fmt"
)

// Error kinds. The HTTP boundary maps each kind to a status and error code.
var (
	ErrValidation         = errors.New("validation failed")
	ErrBadRequest         = errors.New("bad request")
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("access forbidden")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidID          = errors.New("invalid identifier")
	ErrInvalidToken       = errors.New("invalid token")
	ErrInternal           = errors.New("internal error")
)

// FieldError describes a single rejected input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error is a classified failure. Message and Details are safe to show to
// clients; cause is kept for logs only.
type Error struct {
	Kind    error
	Message string
	Details any
	cause   error
}

// NewError returns an Error of the given kind with a client-facing message.
func NewError(kind error, message string, details any) *Error {
	return &Error{Kind: kind, Message: message, Details: details}
}

// Wrap classifies cause under kind without exposing it to clients.
func Wrap(kind error, cause error) *Error {
	return &Error{Kind: kind, cause: cause}
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.Kind.Error()
	}
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.cause)
	}
	return msg
}

// Unwrap exposes both the kind and the cause to errors.Is / errors.As.
func (e *Error) Unwrap() []error {
	if e.cause == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.cause}
}

// UserExistsError reports a duplicate email.
func UserExistsError(email string) *Error {
	return NewError(ErrUserExists, email+" already exists", map[string]string{"field": "email", "value": email})
}

// UserNotFoundError reports a missing user by id.
func UserNotFoundError(id string) *Error {
	return NewError(ErrUserNotFound, fmt.Sprintf("User with ID %s not found", id), nil)
}

// InvalidIDError reports a malformed store identifier.
func InvalidIDError(value string) *Error {
	return NewError(ErrInvalidID, "", map[string]string{"field": "id", "value": value})
}

// ValidationError bundles field errors under ErrValidation.
func ValidationError(fields []FieldError) *Error {
	return NewError(ErrValidation, "", fields)
}

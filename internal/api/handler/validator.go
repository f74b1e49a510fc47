package handler

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/easygenerator/auth-api/internal/core/domain"
)

// echoValidator wraps go-playground/validator so Echo can call c.Validate(req).
// Failures are reported as a domain validation error whose details list one
// {field, message} per rejected field, with message codes such as
// EMAIL_MUST_BE_VALID.
type echoValidator struct {
	v *validator.Validate
}

// NewValidator returns an echoValidator ready to be assigned to echo.Echo.Validator.
func NewValidator() echo.Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	_ = v.RegisterValidation("password_policy", passwordPolicy)
	return &echoValidator{v: v}
}

// Validate satisfies the echo.Validator interface.
func (ev *echoValidator) Validate(i any) error {
	err := ev.v.Struct(i)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return domain.Wrap(domain.ErrBadRequest, err)
	}

	fields := make([]domain.FieldError, 0, len(ve))
	for _, fe := range ve {
		fields = append(fields, domain.FieldError{Field: fe.Field(), Message: messageCode(fe)})
	}
	return domain.ValidationError(fields)
}

// messageCode converts a single FieldError into a stable message code.
func messageCode(fe validator.FieldError) string {
	field := strings.ToUpper(fe.Field())
	switch fe.Tag() {
	case "required":
		return field + "_IS_REQUIRED"
	case "email", "oneof":
		return field + "_MUST_BE_VALID"
	case "min":
		return field + "_MIN_LENGTH"
	case "max":
		return field + "_MAX_LENGTH"
	case "password_policy":
		return "PASSWORD_REQUIREMENTS"
	default:
		return field + "_IS_INVALID"
	}
}

const passwordSpecials = "@$!%*?&"

// passwordPolicy requires at least one letter, one digit and one of
// @$!%*?&, and nothing outside those three classes.
func passwordPolicy(fl validator.FieldLevel) bool {
	var letter, digit, special bool
	for _, r := range fl.Field().String() {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
			letter = true
		case r >= '0' && r <= '9':
			digit = true
		case strings.ContainsRune(passwordSpecials, r):
			special = true
		default:
			return false
		}
	}
	return letter && digit && special
}

// bindAndValidate decodes the request body into req and validates it.
// Malformed bodies are reported as bad requests.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return domain.Wrap(domain.ErrBadRequest, err)
	}
	return c.Validate(req)
}

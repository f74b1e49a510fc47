package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/easygenerator/auth-api/internal/core/domain"
	"github.com/easygenerator/auth-api/internal/core/ports"
)

type stubAuthService struct {
	registerFn func(ctx context.Context, in ports.RegisterInput) (*ports.AuthResult, error)
	loginFn    func(ctx context.Context, email, password string) (*ports.AuthResult, error)
}

func (s *stubAuthService) Register(ctx context.Context, in ports.RegisterInput) (*ports.AuthResult, error) {
	return s.registerFn(ctx, in)
}

func (s *stubAuthService) Login(ctx context.Context, email, password string) (*ports.AuthResult, error) {
	return s.loginFn(ctx, email, password)
}

func (s *stubAuthService) ValidateUser(context.Context, string) (*domain.User, bool, error) {
	return nil, false, nil
}

func newEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

func jsonContext(e *echo.Echo, method, path, body string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func fieldErrors(t *testing.T, err error) []domain.FieldError {
	t.Helper()
	var de *domain.Error
	if !errors.As(err, &de) || !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	fields, ok := de.Details.([]domain.FieldError)
	if !ok {
		t.Fatalf("unexpected details type %T", de.Details)
	}
	return fields
}

func TestAuthHandler_Register_Success(t *testing.T) {
	e := newEcho()
	stub := &stubAuthService{
		registerFn: func(ctx context.Context, in ports.RegisterInput) (*ports.AuthResult, error) {
			if in.Name != "John Doe" || in.Email != "john@example.com" || in.Password != "password123" {
				t.Fatalf("unexpected input: %+v", in)
			}
			return &ports.AuthResult{Token: "tok", User: &domain.User{ID: "1"}}, nil
		},
	}
	handler := NewAuthHandler(stub)

	c, rec := jsonContext(e, http.MethodPost, "/auth/register",
		`{"name":"John Doe","email":"john@example.com","password":"password123"}`)
	if err := handler.Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["token"] != "tok" || len(resp) != 1 {
		t.Fatalf("expected only the token, got %v", resp)
	}
}

func TestAuthHandler_Register_Validation(t *testing.T) {
	e := newEcho()
	handler := NewAuthHandler(&stubAuthService{
		registerFn: func(context.Context, ports.RegisterInput) (*ports.AuthResult, error) {
			t.Fatalf("service must not be called")
			return nil, nil
		},
	})

	c, _ := jsonContext(e, http.MethodPost, "/auth/register",
		`{"email":"not-an-email","password":"123","role":"ADMIN"}`)
	fields := fieldErrors(t, handler.Register(c))

	want := map[string]string{
		"name":     "NAME_IS_REQUIRED",
		"email":    "EMAIL_MUST_BE_VALID",
		"password": "PASSWORD_MIN_LENGTH",
	}
	if len(fields) != len(want) {
		t.Fatalf("expected %d field errors, got %v", len(want), fields)
	}
	for _, f := range fields {
		if want[f.Field] != f.Message {
			t.Errorf("field %s: got %s, want %s", f.Field, f.Message, want[f.Field])
		}
	}
}

func TestAuthHandler_Register_MalformedBody(t *testing.T) {
	e := newEcho()
	handler := NewAuthHandler(&stubAuthService{})

	c, _ := jsonContext(e, http.MethodPost, "/auth/register", `{"name":`)
	if err := handler.Register(c); !errors.Is(err, domain.ErrBadRequest) {
		t.Fatalf("expected ErrBadRequest, got %v", err)
	}
}

func TestAuthHandler_Register_PropagatesServiceError(t *testing.T) {
	e := newEcho()
	handler := NewAuthHandler(&stubAuthService{
		registerFn: func(_ context.Context, in ports.RegisterInput) (*ports.AuthResult, error) {
			return nil, domain.UserExistsError(in.Email)
		},
	})

	c, _ := jsonContext(e, http.MethodPost, "/auth/register",
		`{"name":"John","email":"john@example.com","password":"password123","role":"ADMIN"}`)
	if err := handler.Register(c); !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestAuthHandler_Login(t *testing.T) {
	e := newEcho()
	handler := NewAuthHandler(&stubAuthService{
		loginFn: func(_ context.Context, email, password string) (*ports.AuthResult, error) {
			if password != "password123" {
				return nil, domain.NewError(domain.ErrInvalidCredentials, "", nil)
			}
			return &ports.AuthResult{Token: "tok-" + email}, nil
		},
	})

	c, rec := jsonContext(e, http.MethodPost, "/auth/login", `{"email":"john@example.com","password":"password123"}`)
	if err := handler.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"token":"tok-john@example.com"`) {
		t.Fatalf("unexpected response %d %s", rec.Code, rec.Body.String())
	}

	c, _ = jsonContext(e, http.MethodPost, "/auth/login", `{"email":"john@example.com","password":"wrongpass"}`)
	if err := handler.Login(c); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}

	c, _ = jsonContext(e, http.MethodPost, "/auth/login", `{"email":"john@example.com","password":"123"}`)
	fields := fieldErrors(t, handler.Login(c))
	if len(fields) != 1 || fields[0].Message != "PASSWORD_MIN_LENGTH" {
		t.Fatalf("unexpected field errors %v", fields)
	}
}

func TestPasswordPolicy(t *testing.T) {
	v := NewValidator()
	tests := []struct {
		password string
		ok       bool
	}{
		{"P@ssw0rd", true},
		{"abc123!!", true},
		{"password1", false}, // no special
		{"P@ssword", false},  // no digit
		{"1234567@", false},  // no letter
		{"P@ss w0rd", false}, // space not allowed
		{"P@ssw0rd#", false}, // # not in the allowed set
		{"Pässw0rd@", false}, // non-ASCII letter
	}
	for _, tt := range tests {
		err := v.Validate(&createUserRequest{Name: "John", Email: "j@example.com", Password: tt.password})
		if (err == nil) != tt.ok {
			t.Errorf("password %q: ok=%v, err=%v", tt.password, tt.ok, err)
		}
	}
}

package ports

import (
	"context"

	"github.com/easygenerator/auth-api/internal/core/domain"
)

// RegisterInput carries a self-service registration. Registered users
// always get the USER role; admins are created through UserService.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// AuthResult is returned by successful registration and login.
type AuthResult struct {
	Token string
	User  *domain.User
}

type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	// ValidateUser resolves a token subject. A missing user is reported as
	// found == false, not as an error.
	ValidateUser(ctx context.Context, subject string) (user *domain.User, found bool, err error)
}

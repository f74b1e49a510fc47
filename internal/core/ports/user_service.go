package ports

import (
	"context"

	"github.com/easygenerator/auth-api/internal/core/domain"
)

// CreateUserInput is the admin-side create payload. An empty Role means USER.
type CreateUserInput struct {
	Name     string
	Email    string
	Password string
	Role     domain.Role
}

// UpdateUserInput is a partial update; nil fields are left untouched.
// Password is plaintext and is hashed only when present.
type UpdateUserInput struct {
	Name     *string
	Email    *string
	Password *string
	Role     *domain.Role
}

// UserService defines the CRUD use cases over user accounts.
type UserService interface {
	Create(ctx context.Context, input CreateUserInput) (*domain.User, error)
	FindAll(ctx context.Context) ([]*domain.User, error)
	FindOne(ctx context.Context, id string) (*domain.User, error)
	Update(ctx context.Context, id string, input UpdateUserInput) (*domain.User, error)
	Delete(ctx context.Context, id string) error
}

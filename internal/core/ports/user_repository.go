package ports

import (
	"context"

	"github.com/easygenerator/auth-api/internal/core/domain"
)

// UserRepository defines persistence operations for user accounts.
//
// Implementations enforce email uniqueness and report it as
// domain.ErrUserExists. Lookups by a malformed id fail with domain.ErrInvalidID;
// well-formed ids that do not resolve fail with domain.ErrUserNotFound.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context) ([]*domain.User, error)
	// Update applies changes and returns the updated user.
	Update(ctx context.Context, id string, changes domain.UserChanges) (*domain.User, error)
	Delete(ctx context.Context, id string) error
}

// UserCache is a best-effort read-through cache for users resolved by id.
// Get returns (nil, false, nil) on a miss.
type UserCache interface {
	Get(ctx context.Context, id string) (*domain.User, bool, error)
	Set(ctx context.Context, user *domain.User) error
	Delete(ctx context.Context, id string) error
}

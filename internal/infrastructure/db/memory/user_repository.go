// Package memory is a process-local user store for development and tests.
// It honours the same contract as the Mongo repository, including ObjectID
// identifiers and email uniqueness.
package memory

import (
	"context"
	"sort"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/easygenerator/auth-api/internal/core/domain"
)

type UserRepository struct {
	mu      sync.RWMutex
	users   map[string]*domain.User // by id
	byEmail map[string]string       // email -> id
}

func NewUserRepository() *UserRepository {
	return &UserRepository{
		users:   make(map[string]*domain.User),
		byEmail: make(map[string]string),
	}
}

func (r *UserRepository) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.byEmail[user.Email]; taken {
		return nil, domain.ErrUserExists
	}

	stored := *user
	stored.ID = primitive.NewObjectID().Hex()
	r.users[stored.ID] = &stored
	r.byEmail[stored.Email] = stored.ID

	out := stored
	return &out, nil
}

func (r *UserRepository) FindByID(_ context.Context, id string) (*domain.User, error) {
	if !primitive.IsValidObjectID(id) {
		return nil, domain.ErrInvalidID
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	out := *u
	return &out, nil
}

func (r *UserRepository) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[email]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	out := *r.users[id]
	return &out, nil
}

// List returns all users ordered by creation time.
func (r *UserRepository) List(_ context.Context) ([]*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]*domain.User, 0, len(r.users))
	for _, u := range r.users {
		out := *u
		users = append(users, &out)
	}
	sort.Slice(users, func(i, j int) bool {
		if users[i].CreatedAt.Equal(users[j].CreatedAt) {
			return users[i].ID < users[j].ID
		}
		return users[i].CreatedAt.Before(users[j].CreatedAt)
	})
	return users, nil
}

func (r *UserRepository) Update(_ context.Context, id string, changes domain.UserChanges) (*domain.User, error) {
	if !primitive.IsValidObjectID(id) {
		return nil, domain.ErrInvalidID
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	if changes.Email != nil && *changes.Email != u.Email {
		if _, taken := r.byEmail[*changes.Email]; taken {
			return nil, domain.ErrUserExists
		}
		delete(r.byEmail, u.Email)
		r.byEmail[*changes.Email] = id
		u.Email = *changes.Email
	}
	if changes.Name != nil {
		u.Name = *changes.Name
	}
	if changes.PasswordHash != nil {
		u.PasswordHash = *changes.PasswordHash
	}
	if changes.Role != nil {
		u.Role = *changes.Role
	}
	u.UpdatedAt = changes.UpdatedAt

	out := *u
	return &out, nil
}

func (r *UserRepository) Delete(_ context.Context, id string) error {
	if !primitive.IsValidObjectID(id) {
		return domain.ErrInvalidID
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	delete(r.byEmail, u.Email)
	delete(r.users, id)
	return nil
}

package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/easygenerator/auth-api/internal/core/domain"
	"github.com/easygenerator/auth-api/internal/core/ports"
	"github.com/easygenerator/auth-api/internal/pkg/metrics"
)

// UserService implements CRUD over user accounts.
type UserService struct {
	repo   ports.UserRepository
	hasher ports.PasswordHasher
	cache  ports.UserCache
	log    zerolog.Logger
}

func NewUserService(repo ports.UserRepository, hasher ports.PasswordHasher, cache ports.UserCache, log zerolog.Logger) *UserService {
	if cache == nil {
		cache = noopCache{}
	}
	return &UserService{repo: repo, hasher: hasher, cache: cache, log: log}
}

// Create persists a new user with a hashed password. Role defaults to USER.
func (s *UserService) Create(ctx context.Context, in ports.CreateUserInput) (*domain.User, error) {
	email := normalizeEmail(in.Email)
	s.log.Info().Str("email", email).Msg("creating new user")

	role := in.Role
	if role == "" {
		role = domain.RoleUser
	}
	if !role.Valid() {
		return nil, domain.ValidationError([]domain.FieldError{{Field: "role", Message: "ROLE_MUST_BE_VALID"}})
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, domain.Wrap(domain.ErrInternal, err)
	}

	now := time.Now().UTC()
	user, err := s.repo.Create(ctx, &domain.User{
		Name:         strings.TrimSpace(in.Name),
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		if errors.Is(err, domain.ErrUserExists) {
			return nil, domain.UserExistsError(email)
		}
		s.log.Error().Err(err).Str("email", email).Msg("failed to create user")
		return nil, err
	}

	metrics.UserMutationsTotal.WithLabelValues("create").Inc()
	s.log.Debug().Str("user_id", user.ID).Msg("user created")
	return user, nil
}

func (s *UserService) FindAll(ctx context.Context) ([]*domain.User, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	s.log.Debug().Int("count", len(users)).Msg("users fetched")
	return users, nil
}

func (s *UserService) FindOne(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.lookupError(id, err)
	}
	return user, nil
}

// Update applies a partial update. The password is hashed only when a new
// one is supplied, so unrelated updates never re-hash the stored digest.
func (s *UserService) Update(ctx context.Context, id string, in ports.UpdateUserInput) (*domain.User, error) {
	s.log.Info().Str("user_id", id).Msg("updating user")

	changes := domain.UserChanges{UpdatedAt: time.Now().UTC()}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		changes.Name = &name
	}
	if in.Email != nil {
		email := normalizeEmail(*in.Email)
		changes.Email = &email
	}
	if in.Role != nil {
		if !in.Role.Valid() {
			return nil, domain.ValidationError([]domain.FieldError{{Field: "role", Message: "ROLE_MUST_BE_VALID"}})
		}
		role := *in.Role
		changes.Role = &role
	}
	if in.Password != nil {
		hash, err := s.hasher.Hash(*in.Password)
		if err != nil {
			return nil, domain.Wrap(domain.ErrInternal, err)
		}
		changes.PasswordHash = &hash
	}

	user, err := s.repo.Update(ctx, id, changes)
	if err != nil {
		if errors.Is(err, domain.ErrUserExists) && changes.Email != nil {
			return nil, domain.UserExistsError(*changes.Email)
		}
		return nil, s.lookupError(id, err)
	}
	s.evict(ctx, id)

	metrics.UserMutationsTotal.WithLabelValues("update").Inc()
	s.log.Debug().Str("user_id", id).Msg("user updated")
	return user, nil
}

func (s *UserService) Delete(ctx context.Context, id string) error {
	s.log.Info().Str("user_id", id).Msg("deleting user")

	if err := s.repo.Delete(ctx, id); err != nil {
		return s.lookupError(id, err)
	}
	s.evict(ctx, id)

	metrics.UserMutationsTotal.WithLabelValues("delete").Inc()
	s.log.Debug().Str("user_id", id).Msg("user deleted")
	return nil
}

func (s *UserService) lookupError(id string, err error) error {
	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		s.log.Warn().Str("user_id", id).Msg("user not found")
		return domain.UserNotFoundError(id)
	case errors.Is(err, domain.ErrInvalidID):
		return domain.InvalidIDError(id)
	default:
		return err
	}
}

func (s *UserService) evict(ctx context.Context, id string) {
	if err := s.cache.Delete(ctx, id); err != nil {
		s.log.Warn().Err(err).Str("user_id", id).Msg("user cache eviction failed")
	}
}

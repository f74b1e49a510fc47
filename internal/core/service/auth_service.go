package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/easygenerator/auth-api/internal/core/domain"
	"github.com/easygenerator/auth-api/internal/core/ports"
	"github.com/easygenerator/auth-api/internal/pkg/metrics"
)

// AuthService implements registration, login and token subject resolution.
type AuthService struct {
	repo   ports.UserRepository
	hasher ports.PasswordHasher
	tokens ports.TokenIssuer
	cache  ports.UserCache
	log    zerolog.Logger

	// dummyHash is compared against on unknown emails so that both login
	// failure paths cost one bcrypt comparison.
	dummyHash string
}

func NewAuthService(
	repo ports.UserRepository,
	hasher ports.PasswordHasher,
	tokens ports.TokenIssuer,
	cache ports.UserCache,
	log zerolog.Logger,
) (*AuthService, error) {
	if cache == nil {
		cache = noopCache{}
	}
	dummy, err := hasher.Hash("dummy-password-for-timing")
	if err != nil {
		return nil, fmt.Errorf("prepare login timing digest: %w", err)
	}
	return &AuthService{
		repo:      repo,
		hasher:    hasher,
		tokens:    tokens,
		cache:     cache,
		log:       log,
		dummyHash: dummy,
	}, nil
}

// Register creates a USER and returns a token for it.
func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (*ports.AuthResult, error) {
	email := normalizeEmail(in.Email)
	s.log.Info().Str("email", email).Msg("registering new user")

	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
		s.log.Warn().Str("email", email).Msg("registration failed: email already exists")
		metrics.AuthAttemptsTotal.WithLabelValues("register", "duplicate").Inc()
		return nil, domain.UserExistsError(email)
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		s.log.Error().Err(err).Str("email", email).Msg("registration lookup failed")
		return nil, domain.Wrap(domain.ErrInternal, err)
	}

	hash, err := s.hashPassword(in.Password)
	if err != nil {
		s.log.Error().Err(err).Str("email", email).Msg("failed to hash password")
		return nil, domain.Wrap(domain.ErrInternal, err)
	}

	now := time.Now().UTC()
	created, err := s.repo.Create(ctx, &domain.User{
		Name:         strings.TrimSpace(in.Name),
		Email:        email,
		PasswordHash: hash,
		Role:         domain.RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		if errors.Is(err, domain.ErrUserExists) {
			// Lost a race with a concurrent registration; the store decided.
			s.log.Warn().Str("email", email).Msg("registration failed: email already exists")
			metrics.AuthAttemptsTotal.WithLabelValues("register", "duplicate").Inc()
			return nil, domain.UserExistsError(email)
		}
		s.log.Error().Err(err).Str("email", email).Msg("failed to register user")
		return nil, domain.Wrap(domain.ErrInternal, err)
	}
	s.log.Debug().Str("user_id", created.ID).Msg("user registered")

	token, err := s.tokens.Issue(created.ID)
	if err != nil {
		s.log.Error().Err(err).Str("user_id", created.ID).Msg("failed to issue token")
		return nil, domain.Wrap(domain.ErrInternal, err)
	}

	metrics.AuthAttemptsTotal.WithLabelValues("register", "success").Inc()
	return &ports.AuthResult{Token: token, User: created}, nil
}

// Login verifies credentials. Unknown email and wrong password are
// indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (*ports.AuthResult, error) {
	email = normalizeEmail(email)
	s.log.Info().Str("email", email).Msg("user login attempt")

	user, err := s.repo.FindByEmail(ctx, email)
	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		s.hasher.Verify(password, s.dummyHash)
		return nil, s.invalidCredentials(email)
	case err != nil:
		s.log.Error().Err(err).Str("email", email).Msg("login lookup failed")
		return nil, domain.Wrap(domain.ErrInternal, err)
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return nil, s.invalidCredentials(email)
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		s.log.Error().Err(err).Str("user_id", user.ID).Msg("failed to issue token")
		return nil, domain.Wrap(domain.ErrInternal, err)
	}
	s.log.Debug().Str("user_id", user.ID).Msg("user logged in, token generated")

	metrics.AuthAttemptsTotal.WithLabelValues("login", "success").Inc()
	return &ports.AuthResult{Token: token, User: user}, nil
}

// ValidateUser resolves a token subject to a user, consulting the cache first.
// Malformed subjects resolve to "not found".
func (s *AuthService) ValidateUser(ctx context.Context, subject string) (*domain.User, bool, error) {
	if cached, ok, err := s.cache.Get(ctx, subject); err != nil {
		s.log.Warn().Err(err).Str("user_id", subject).Msg("user cache read failed")
	} else if ok {
		return cached, true, nil
	}

	user, err := s.repo.FindByID(ctx, subject)
	switch {
	case errors.Is(err, domain.ErrUserNotFound), errors.Is(err, domain.ErrInvalidID):
		s.log.Warn().Str("user_id", subject).Msg("user not found during validation")
		return nil, false, nil
	case err != nil:
		return nil, false, domain.Wrap(domain.ErrInternal, err)
	}

	if err := s.cache.Set(ctx, user); err != nil {
		s.log.Warn().Err(err).Str("user_id", subject).Msg("user cache write failed")
	}
	return user, true, nil
}

func (s *AuthService) invalidCredentials(email string) error {
	s.log.Warn().Str("email", email).Msg("login failed: invalid credentials")
	metrics.AuthAttemptsTotal.WithLabelValues("login", "invalid_credentials").Inc()
	return domain.NewError(domain.ErrInvalidCredentials, "", nil)
}

func (s *AuthService) hashPassword(plaintext string) (string, error) {
	start := time.Now()
	defer func() { metrics.PasswordHashDuration.Observe(time.Since(start).Seconds()) }()
	return s.hasher.Hash(plaintext)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

type noopCache struct{}

func (noopCache) Get(context.Context, string) (*domain.User, bool, error) { return nil, false, nil }
func (noopCache) Set(context.Context, *domain.User) error                 { return nil }
func (noopCache) Delete(context.Context, string) error                    { return nil }

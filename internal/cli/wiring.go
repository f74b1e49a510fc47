package cli

import (
	"context"

	"github.com/easygenerator/auth-api/internal/core/ports"
	"github.com/easygenerator/auth-api/internal/core/service"
	"github.com/easygenerator/auth-api/internal/infrastructure/db/memory"
	mongodb "github.com/easygenerator/auth-api/internal/infrastructure/db/mongo"
	redisdb "github.com/easygenerator/auth-api/internal/infrastructure/db/redis"
	"github.com/easygenerator/auth-api/internal/infrastructure/http/handlers"
	"github.com/easygenerator/auth-api/internal/infrastructure/security"
)

// components is the assembled object graph behind every command.
type components struct {
	repo   ports.UserRepository
	cache  ports.UserCache
	hasher *security.BcryptHasher
	tokens *security.TokenIssuer
	auth   *service.AuthService
	users  *service.UserService
	checks map[string]handlers.Check

	closers []func(context.Context) error
}

func (c *components) Close(ctx context.Context) {
	for i := len(c.closers) - 1; i >= 0; i-- {
		_ = c.closers[i](ctx)
	}
}

// build connects to the configured stores and wires services. The caller
// must Close the result.
func (a *App) build(ctx context.Context) (*components, error) {
	cfg, log := a.Config, a.Log
	c := &components{checks: make(map[string]handlers.Check)}

	switch cfg.Store.Driver {
	case "memory":
		log.Warn().Msg("using in-memory user store; data is lost on restart")
		c.repo = memory.NewUserRepository()
	default:
		client, db, err := mongodb.Connect(ctx, mongodb.Config{
			URI:      cfg.Mongo.URI,
			Database: cfg.Mongo.Database,
			AppName:  "authapi",
		})
		if err != nil {
			return nil, err
		}
		c.closers = append(c.closers, client.Disconnect)
		c.checks["mongodb"] = mongodb.Ping(client)

		repo := mongodb.NewUserRepository(db)
		if err := repo.EnsureIndexes(ctx); err != nil {
			c.Close(ctx)
			return nil, err
		}
		c.repo = repo
		log.Info().Str("database", cfg.Mongo.Database).Msg("connected to MongoDB")
	}

	if cfg.Redis.Addr != "" {
		rdb, err := redisdb.Connect(ctx, redisdb.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			c.Close(ctx)
			return nil, err
		}
		c.closers = append(c.closers, func(context.Context) error { return rdb.Close() })
		c.checks["redis"] = redisdb.Ping(rdb)
		c.cache = redisdb.NewUserCache(rdb, cfg.Redis.UserTTL.Duration())
		log.Info().Str("addr", cfg.Redis.Addr).Msg("user cache enabled")
	}

	c.hasher = security.NewBcryptHasher(cfg.Auth.BcryptCost)
	c.tokens = security.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.JWTExpiration.Duration())
	auth, err := service.NewAuthService(c.repo, c.hasher, c.tokens, c.cache, log)
	if err != nil {
		c.Close(ctx)
		return nil, err
	}
	c.auth = auth
	c.users = service.NewUserService(c.repo, c.hasher, c.cache, log)
	return c, nil
}

package config

import (
	"context"
	"fmt"
	"strings"

	"github.com/sethvargo/go-envconfig"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
	EnvTest        = "test"
)

type Config struct {
	Env        string `env:"ENV,         default=development"`
	Port       string `env:"PORT,        default=8080"`
	APIPrefix  string `env:"API_PREFIX"`
	ServerURL  string `env:"SERVER_URL,  default=http://localhost:8080"`
	ClientURL  string `env:"CLIENT_URL,  default=http://localhost:5173"`
	LogLevel   string `env:"LOG_LEVEL,   default=info"`
	LogFile    string `env:"LOG_FILE"`
	LogErrFile string `env:"LOG_ERROR_FILE"`

	Auth  AuthConfig
	Store StoreConfig
	Mongo MongoConfig
	Redis RedisConfig
}

type AuthConfig struct {
	JWTSecret     string   `env:"JWT_SECRET, required"`
	JWTExpiration Lifetime `env:"JWT_EXPIRATION_DATE, default=1d"`
	BcryptCost    int      `env:"BCRYPT_COST, default=10"`
}

type StoreConfig struct {
	Driver string `env:"STORE_DRIVER, default=mongo"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=auth"`
}

type RedisConfig struct {
	// Addr left empty disables the user cache.
	Addr     string   `env:"REDIS_ADDR"`
	Password string   `env:"REDIS_PASSWORD"`
	DB       int      `env:"REDIS_DB, default=0"`
	UserTTL  Lifetime `env:"USER_CACHE_TTL, default=5m"`
}

// IsProduction reports whether internal error details must be withheld.
func (c *Config) IsProduction() bool {
	return c.Env == EnvProduction
}

// Load reads configuration from the process environment.
func Load(ctx context.Context) (*Config, error) {
	return load(ctx, envconfig.OsLookuper())
}

func load(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	cfg.APIPrefix = strings.Trim(cfg.APIPrefix, "/")
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Env {
	case EnvDevelopment, EnvProduction, EnvTest:
	default:
		return fmt.Errorf("ENV must be one of development, production, test (got %q)", c.Env)
	}
	switch c.Store.Driver {
	case "mongo", "memory":
	default:
		return fmt.Errorf("STORE_DRIVER must be mongo or memory (got %q)", c.Store.Driver)
	}
	if strings.TrimSpace(c.Auth.JWTSecret) == "" {
		return fmt.Errorf("JWT_SECRET must not be blank")
	}
	if c.Auth.JWTExpiration.Duration() <= 0 {
		return fmt.Errorf("JWT_EXPIRATION_DATE must be positive")
	}
	return nil
}

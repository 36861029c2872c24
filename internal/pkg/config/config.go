package config

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port            string        `env:"PORT,             default=8080"`
	Env             string        `env:"ENV,              default=development"`
	LogLevel        string        `env:"LOG_LEVEL,        default=info"`
	ClientDomain    string        `env:"CLIENT_DOMAIN,    default=http://localhost:5173"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT, default=10s"`

	Mongo    MongoConfig
	Redis    RedisConfig
	Identity IdentityConfig
	Stripe   StripeConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=contest_hub"`
}

// RedisConfig configures the payment confirmation cache. An empty Addr
// disables the cache.
type RedisConfig struct {
	Addr     string        `env:"REDIS_ADDR,        default=localhost:6379"`
	DB       int           `env:"REDIS_DB,          default=0"`
	CacheTTL time.Duration `env:"PAYMENT_CACHE_TTL, default=24h"`
}

type IdentityConfig struct {
	Secret   string `env:"IDENTITY_SECRET, required"`
	Issuer   string `env:"IDENTITY_ISSUER"`
	Audience string `env:"IDENTITY_AUDIENCE"`
}

type StripeConfig struct {
	SecretKey string        `env:"STRIPE_SECRET_KEY,        required"`
	Currency  string        `env:"STRIPE_CURRENCY,          default=usd"`
	Timeout   time.Duration `env:"PAYMENT_PROVIDER_TIMEOUT, default=10s"`
}

// IsDevelopment reports whether the service runs with development defaults
// such as pretty console logs.
func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.Env, "development")
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	cfg, err := LoadWith(context.Background(), envconfig.OsLookuper())
	if err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return cfg
}

// LoadWith resolves configuration from an arbitrary lookuper.
func LoadWith(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, err
	}
	cfg.ClientDomain = strings.TrimRight(cfg.ClientDomain, "/")
	return &cfg, nil
}

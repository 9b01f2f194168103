package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App       AppConfig
	Commerce  CommerceConfig
	Firebase  FirebaseConfig
	Redis     RedisConfig
	Currency  CurrencyConfig
	Cart      CartConfig
	JWT       JWTConfig
	RateLimit RateLimitConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.JWT.validate(cfg.App); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"STOREFRONT_APP_ENV" required:"true"`
	Port         string `envconfig:"STOREFRONT_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"STOREFRONT_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"STOREFRONT_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// CommerceConfig points at the storefront GraphQL backend.
type CommerceConfig struct {
	Endpoint       string        `envconfig:"STOREFRONT_COMMERCE_ENDPOINT" required:"true"`
	StorefrontKey  string        `envconfig:"STOREFRONT_COMMERCE_ACCESS_TOKEN" required:"true"`
	RequestTimeout time.Duration `envconfig:"STOREFRONT_COMMERCE_TIMEOUT" default:"15s"`
	LinePageSize   int           `envconfig:"STOREFRONT_COMMERCE_LINE_PAGE_SIZE" default:"50"`
}

type FirebaseConfig struct {
	ProjectID       string `envconfig:"STOREFRONT_FIREBASE_PROJECT_ID"`
	CredentialsFile string `envconfig:"STOREFRONT_FIREBASE_CREDENTIALS_FILE"`
}

type RedisConfig struct {
	URL          string        `envconfig:"STOREFRONT_REDIS_URL" required:"true"`
	Address      string        `envconfig:"STOREFRONT_REDIS_ADDR"`
	Password     string        `envconfig:"STOREFRONT_REDIS_PASSWORD"`
	DB           int           `envconfig:"STOREFRONT_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"STOREFRONT_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"STOREFRONT_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"STOREFRONT_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"STOREFRONT_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"STOREFRONT_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// CurrencyConfig points at the exchange-rate API used by the presentation layer.
type CurrencyConfig struct {
	BaseURL      string        `envconfig:"STOREFRONT_CURRENCY_BASE_URL" default:"https://open.er-api.com/v6"`
	BaseCurrency string        `envconfig:"STOREFRONT_CURRENCY_BASE" default:"USD"`
	CacheTTL     time.Duration `envconfig:"STOREFRONT_CURRENCY_CACHE_TTL" default:"1h"`
}

type CartConfig struct {
	// CacheTTL bounds how long a cached snapshot is trusted; zero disables expiry.
	CacheTTL time.Duration `envconfig:"STOREFRONT_CART_CACHE_TTL" default:"5m"`
}

// JWTConfig drives the HS256 verifier used outside production (local dev, tests).
type JWTConfig struct {
	Secret            string `envconfig:"STOREFRONT_JWT_SECRET"`
	Issuer            string `envconfig:"STOREFRONT_JWT_ISSUER" default:"storefront-sync"`
	ExpirationMinutes int    `envconfig:"STOREFRONT_JWT_EXPIRATION_MINUTES" default:"60"`
}

func (j JWTConfig) validate(app AppConfig) error {
	if app.IsProd() {
		return nil
	}
	if j.Secret == "" {
		return fmt.Errorf("%s is required outside production", EnvJWTSecret)
	}
	if j.ExpirationMinutes <= 0 {
		return fmt.Errorf("jwt expiration minutes must be positive")
	}
	return nil
}

type RateLimitConfig struct {
	CartWindow    time.Duration `envconfig:"STOREFRONT_RATE_LIMIT_CART_WINDOW" default:"1m"`
	CartUserLimit int           `envconfig:"STOREFRONT_RATE_LIMIT_CART_USER_LIMIT" default:"60"`
}

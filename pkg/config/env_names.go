package config

// Env var names referenced outside struct tags (tests, error messages).
const (
	EnvPrefix = "storefront"

	AppEnvDev  = "development"
	AppEnvProd = "production"

	EnvAppEnv           = "STOREFRONT_APP_ENV"
	EnvPort             = "STOREFRONT_APP_PORT"
	EnvRedisURL         = "STOREFRONT_REDIS_URL"
	EnvCommerceEndpoint = "STOREFRONT_COMMERCE_ENDPOINT"
	EnvCommerceToken    = "STOREFRONT_COMMERCE_ACCESS_TOKEN"
	EnvJWTSecret        = "STOREFRONT_JWT_SECRET"
)

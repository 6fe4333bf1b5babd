package config

const EnvPrefix = "STOREFRONT"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	VerifierJWKS = "jwks"
	VerifierHMAC = "hmac"
)

const (
	EnvAppEnv = "STOREFRONT_APP_ENV"
	EnvPort   = "STOREFRONT_APP_PORT"

	EnvDBDSN    = "STOREFRONT_DB_DSN"
	EnvDBDriver = "STOREFRONT_DB_DRIVER"
	EnvDBHost   = "STOREFRONT_DB_HOST"
	EnvDBUser   = "STOREFRONT_DB_USER"
	EnvDBName   = "STOREFRONT_DB_NAME"

	EnvRedisURL = "STOREFRONT_REDIS_URL"

	EnvAdminUserID        = "STOREFRONT_ADMIN_USER_ID"
	EnvAuthVerifier       = "STOREFRONT_AUTH_VERIFIER"
	EnvAuthJWKSURL        = "STOREFRONT_AUTH_JWKS_URL"
	EnvAuthIssuer         = "STOREFRONT_AUTH_ISSUER"
	EnvAuthHMACSecret     = "STOREFRONT_AUTH_HMAC_SECRET"
	EnvAuthAuthorizedPart = "STOREFRONT_AUTH_AUTHORIZED_PARTY"

	EnvGCSBucket       = "STOREFRONT_GCS_BUCKET_NAME"
	EnvPubSubCatalog   = "STOREFRONT_PUBSUB_CATALOG_TOPIC"
	EnvCacheRouteTTL   = "STOREFRONT_CACHE_ROUTE_TTL"
	EnvMaxUploadMB     = "STOREFRONT_MAX_UPLOAD_MB"
	EnvGCPProjectID    = "STOREFRONT_GCP_PROJECT_ID"
	EnvAutoMigrateFlag = "STOREFRONT_AUTO_MIGRATE"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

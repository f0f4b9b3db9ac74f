package config

// EnvPrefix is passed to envconfig; every field carries its full name in the tag.
const EnvPrefix = "CAMPUSEATS"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	LogFormatJSON    = "json"
	LogFormatConsole = "console"

	defaultSQLiteFile = "campuseats.db"
)

const (
	EnvAppEnv      = "CAMPUSEATS_APP_ENV"
	EnvPort        = "CAMPUSEATS_APP_PORT"
	EnvLogLevel    = "CAMPUSEATS_LOG_LEVEL"
	EnvLogFormat   = "CAMPUSEATS_LOG_FORMAT"
	EnvCORSOrigins = "CAMPUSEATS_CORS_ORIGINS"

	EnvDBDSN    = "CAMPUSEATS_DB_DSN"
	EnvDBDriver = "CAMPUSEATS_DB_DRIVER"
	EnvDBHost   = "CAMPUSEATS_DB_HOST"
	EnvDBPort   = "CAMPUSEATS_DB_PORT"
	EnvDBUser   = "CAMPUSEATS_DB_USER"
	EnvDBPass   = "CAMPUSEATS_DB_PASSWORD"
	EnvDBName   = "CAMPUSEATS_DB_NAME"

	EnvRedisURL = "CAMPUSEATS_REDIS_URL"

	EnvUseSQLite   = "CAMPUSEATS_USE_SQLITE"
	EnvAutoMigrate = "CAMPUSEATS_AUTO_MIGRATE"

	EnvOrdersResolveConcurrency = "CAMPUSEATS_ORDERS_RESOLVE_CONCURRENCY"
	EnvIdempotencyTTL           = "CAMPUSEATS_IDEMPOTENCY_TTL"
	EnvCronInterval             = "CAMPUSEATS_CRON_INTERVAL"
	EnvCronReconcileGrace       = "CAMPUSEATS_CRON_RECONCILE_GRACE"

	// Client-side settings read by the campuseats CLI.
	EnvClientBaseURL = "CAMPUSEATS_API_URL"
	EnvClientTimeout = "CAMPUSEATS_API_TIMEOUT"
)

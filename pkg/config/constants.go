package config

const (
	EnvPrefix = "DRIVEWISE"

	AppEnvDev  = "development"
	AppEnvProd = "production"

	EnvAppEnv   = "DRIVEWISE_APP_ENV"
	EnvPort     = "DRIVEWISE_APP_PORT"
	EnvDBDSN    = "DRIVEWISE_DB_DSN"
	EnvDBHost   = "DRIVEWISE_DB_HOST"
	EnvDBUser   = "DRIVEWISE_DB_USER"
	EnvDBName   = "DRIVEWISE_DB_NAME"
	EnvRedisURL = "DRIVEWISE_REDIS_URL"

	PlaceholderContractAddress = "0x0000000000000000000000000000000000000000"
	PlaceholderPrivateKey      = "0x0000000000000000000000000000000000000000000000000000000000000000"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

package config

const (
	// EnvPrefix scopes every environment variable the service reads.
	EnvPrefix = "KFCCFK"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "KFCCFK_DB_DSN"
	EnvDBHost = "KFCCFK_DB_HOST"
	EnvDBUser = "KFCCFK_DB_USER"
	EnvDBName = "KFCCFK_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

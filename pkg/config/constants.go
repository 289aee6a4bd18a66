package config

const EnvPrefix = "STOREFRONT"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	DBDriverSQLite   = "sqlite"
	DBDriverPostgres = "postgres"
)

const (
	StorageBackendDB   = "db"
	StorageBackendRest = "rest"
)

const (
	EnvDBDSN          = "STOREFRONT_DB_DSN"
	EnvDBDriver       = "STOREFRONT_DB_DRIVER"
	EnvDBSQLitePath   = "STOREFRONT_DB_SQLITE_PATH"
	EnvStorageBackend = "STOREFRONT_STORAGE_BACKEND"
	EnvRemoteAPIURL   = "STOREFRONT_REMOTE_API_URL"
)

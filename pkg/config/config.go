package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Storage      StorageConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.Storage.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"STOREFRONT_APP_ENV" default:"dev"`
	Port         string `envconfig:"STOREFRONT_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"STOREFRONT_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"STOREFRONT_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"STOREFRONT_DB_DSN"`
	Driver string `envconfig:"STOREFRONT_DB_DRIVER" default:"sqlite"`

	SQLitePath string `envconfig:"STOREFRONT_DB_SQLITE_PATH" default:"storefront.db"`

	MaxOpenConns    int           `envconfig:"STOREFRONT_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"STOREFRONT_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"STOREFRONT_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"STOREFRONT_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// StorageConfig selects how the ledger and catalog reach their storage
// collaborator: the local database or a remote storefront API.
type StorageConfig struct {
	Backend string `envconfig:"STOREFRONT_STORAGE_BACKEND" default:"db"`

	RemoteBaseURL string        `envconfig:"STOREFRONT_REMOTE_API_URL"`
	RemoteTimeout time.Duration `envconfig:"STOREFRONT_REMOTE_API_TIMEOUT" default:"10s"`
}

func (s StorageConfig) IsRemote() bool {
	return strings.EqualFold(s.Backend, StorageBackendRest)
}

func (s *StorageConfig) validate() error {
	switch strings.ToLower(s.Backend) {
	case StorageBackendDB:
		return nil
	case StorageBackendRest:
		if strings.TrimSpace(s.RemoteBaseURL) == "" {
			return fmt.Errorf("%s is required when %s=%s", EnvRemoteAPIURL, EnvStorageBackend, StorageBackendRest)
		}
		return nil
	default:
		return fmt.Errorf("%s must be %q or %q", EnvStorageBackend, StorageBackendDB, StorageBackendRest)
	}
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"STOREFRONT_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	switch strings.ToLower(db.Driver) {
	case DBDriverSQLite:
		if strings.TrimSpace(db.SQLitePath) == "" {
			return fmt.Errorf("%s is required for the sqlite driver", EnvDBSQLitePath)
		}
		db.DSN = db.SQLitePath
		return nil
	case DBDriverPostgres:
		return fmt.Errorf("%s is required for the postgres driver", EnvDBDSN)
	default:
		return fmt.Errorf("%s must be %q or %q", EnvDBDriver, DBDriverSQLite, DBDriverPostgres)
	}
}

package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "PANTRY"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.normalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string   `envconfig:"PANTRY_APP_ENV" default:"dev"`
	Port         string   `envconfig:"PANTRY_APP_PORT" default:"8080"`
	LogLevel     string   `envconfig:"PANTRY_LOG_LEVEL" default:"info"`
	LogWarnStack bool     `envconfig:"PANTRY_LOG_WARN_STACK" default:"false"`
	CORSOrigins  []string `envconfig:"PANTRY_CORS_ORIGINS"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// DBConfig selects between the embedded SQLite file (the default for a
// single-household install) and a Postgres DSN for shared deployments.
type DBConfig struct {
	Driver string `envconfig:"PANTRY_DB_DRIVER" default:"sqlite"`
	Path   string `envconfig:"PANTRY_DB_PATH" default:"pantry.db"`
	DSN    string `envconfig:"PANTRY_DB_DSN"`

	Host     string `envconfig:"PANTRY_DB_HOST"`
	Port     int    `envconfig:"PANTRY_DB_PORT" default:"5432"`
	User     string `envconfig:"PANTRY_DB_USER"`
	Password string `envconfig:"PANTRY_DB_PASSWORD"`
	Name     string `envconfig:"PANTRY_DB_NAME"`
	SSLMode  string `envconfig:"PANTRY_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"PANTRY_DB_MAX_OPEN_CONNS" default:"10"`
	MaxIdleConns    int           `envconfig:"PANTRY_DB_MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `envconfig:"PANTRY_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"PANTRY_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

func (db DBConfig) IsSQLite() bool {
	return strings.EqualFold(db.Driver, DriverSQLite)
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"PANTRY_AUTO_MIGRATE" default:"true"`
}

func (db *DBConfig) normalize() error {
	switch strings.ToLower(db.Driver) {
	case DriverSQLite:
		if db.Path == "" {
			return fmt.Errorf("%s requires a database path", DriverSQLite)
		}
		return nil
	case DriverPostgres:
		return db.ensureDSN()
	default:
		return fmt.Errorf("unsupported db driver %q", db.Driver)
	}
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	required := map[string]string{
		"PANTRY_DB_HOST": db.Host,
		"PANTRY_DB_USER": db.User,
		"PANTRY_DB_NAME": db.Name,
	}
	for _, key := range []string{"PANTRY_DB_HOST", "PANTRY_DB_USER", "PANTRY_DB_NAME"} {
		if required[key] == "" {
			missing = append(missing, key)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either PANTRY_DB_DSN or %s are required", strings.Join(missing, ", "))
	}

	userInfo := url.User(db.User)
	if db.Password != "" {
		userInfo = url.UserPassword(db.User, db.Password)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:   db.Name,
	}

	if db.SSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.SSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}

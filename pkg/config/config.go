// Package config reads process settings from CAMPUSEATS_* environment
// variables.
package config

import (
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"go.uber.org/multierr"
)

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	FeatureFlags FeatureFlagsConfig
	Orders       OrdersConfig
	Idempotency  IdempotencyConfig
	Catalog      CatalogConfig
	Cron         CronConfig
}

// Load parses the environment, fills in the database DSN and validates the
// result. Every invalid setting is reported, not just the first.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.FeatureFlags.UseSQLite {
		cfg.DB.Driver = DriverSQLite
		if cfg.DB.DSN == "" {
			cfg.DB.DSN = defaultSQLiteFile
		}
	}
	if cfg.DB.DSN == "" {
		dsn, err := cfg.DB.Postgres.dsn()
		if err != nil {
			return nil, err
		}
		cfg.DB.DSN = dsn
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	var errs error
	if c.Orders.ResolveConcurrency <= 0 {
		errs = multierr.Append(errs, fmt.Errorf("%s must be positive", EnvOrdersResolveConcurrency))
	}
	if c.DB.Driver != DriverPostgres && c.DB.Driver != DriverSQLite {
		errs = multierr.Append(errs, fmt.Errorf("%s: unsupported driver %q", EnvDBDriver, c.DB.Driver))
	}
	if f := c.App.LogFormat; f != LogFormatJSON && f != LogFormatConsole {
		errs = multierr.Append(errs, fmt.Errorf("%s: want json or console, got %q", EnvLogFormat, f))
	}
	if c.Cron.Interval <= 0 {
		errs = multierr.Append(errs, fmt.Errorf("%s must be positive", EnvCronInterval))
	}
	return errs
}

type AppConfig struct {
	Env          string `envconfig:"CAMPUSEATS_APP_ENV" required:"true"`
	Port         string `envconfig:"CAMPUSEATS_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"CAMPUSEATS_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"CAMPUSEATS_LOG_WARN_STACK" default:"false"`
	LogFormat    string `envconfig:"CAMPUSEATS_LOG_FORMAT" default:"json"`
	CORSOrigins  string `envconfig:"CAMPUSEATS_CORS_ORIGINS" default:"*"`
}

func (a AppConfig) IsDev() bool  { return strings.EqualFold(a.Env, AppEnvDev) }
func (a AppConfig) IsProd() bool { return strings.EqualFold(a.Env, AppEnvProd) }

// AllowedOrigins splits the comma separated CORS origin list.
func (a AppConfig) AllowedOrigins() []string {
	var origins []string
	for _, p := range strings.Split(a.CORSOrigins, ",") {
		if p = strings.TrimSpace(p); p != "" {
			origins = append(origins, p)
		}
	}
	return origins
}

type ServiceConfig struct {
	Kind string `envconfig:"CAMPUSEATS_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"CAMPUSEATS_DB_DSN"`
	Driver string `envconfig:"CAMPUSEATS_DB_DRIVER" default:"postgres"`

	Postgres PostgresParts

	MaxOpenConns    int           `envconfig:"CAMPUSEATS_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"CAMPUSEATS_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"CAMPUSEATS_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"CAMPUSEATS_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// PostgresParts is the split-out form of a DSN, used when CAMPUSEATS_DB_DSN
// is unset.
type PostgresParts struct {
	Host     string `envconfig:"CAMPUSEATS_DB_HOST"`
	Port     int    `envconfig:"CAMPUSEATS_DB_PORT" default:"5432"`
	User     string `envconfig:"CAMPUSEATS_DB_USER"`
	Password string `envconfig:"CAMPUSEATS_DB_PASSWORD"`
	Name     string `envconfig:"CAMPUSEATS_DB_NAME"`
	SSLMode  string `envconfig:"CAMPUSEATS_DB_SSLMODE" default:"disable"`
}

func (p PostgresParts) dsn() (string, error) {
	var missing []string
	for env, v := range map[string]string{EnvDBHost: p.Host, EnvDBUser: p.User, EnvDBName: p.Name} {
		if v == "" {
			missing = append(missing, env)
		}
	}
	if len(missing) > 0 {
		slices.Sort(missing)
		return "", fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   url.User(p.User),
		Host:   p.Host + ":" + strconv.Itoa(p.Port),
		Path:   p.Name,
	}
	if p.Password != "" {
		u.User = url.UserPassword(p.User, p.Password)
	}
	if p.SSLMode != "" {
		u.RawQuery = url.Values{"sslmode": {p.SSLMode}}.Encode()
	}
	return u.String(), nil
}

type RedisConfig struct {
	URL          string        `envconfig:"CAMPUSEATS_REDIS_URL" required:"true"`
	Address      string        `envconfig:"CAMPUSEATS_REDIS_ADDR"`
	Password     string        `envconfig:"CAMPUSEATS_REDIS_PASSWORD"`
	DB           int           `envconfig:"CAMPUSEATS_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"CAMPUSEATS_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"CAMPUSEATS_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"CAMPUSEATS_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"CAMPUSEATS_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"CAMPUSEATS_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"CAMPUSEATS_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"CAMPUSEATS_AUTO_MIGRATE" default:"false"`
}

// OrdersConfig tunes the server side of order submission.
type OrdersConfig struct {
	ResolveConcurrency int `envconfig:"CAMPUSEATS_ORDERS_RESOLVE_CONCURRENCY" default:"4"`
}

type IdempotencyConfig struct {
	TTL time.Duration `envconfig:"CAMPUSEATS_IDEMPOTENCY_TTL" default:"24h"`
}

type CatalogConfig struct {
	VendorCacheTTL time.Duration `envconfig:"CAMPUSEATS_CATALOG_VENDOR_CACHE_TTL" default:"60s"`
}

type CronConfig struct {
	Interval       time.Duration `envconfig:"CAMPUSEATS_CRON_INTERVAL" default:"1m"`
	LockTTL        time.Duration `envconfig:"CAMPUSEATS_CRON_LOCK_TTL" default:"5m"`
	ReconcileGrace time.Duration `envconfig:"CAMPUSEATS_CRON_RECONCILE_GRACE" default:"10m"`
	ReconcileBatch int           `envconfig:"CAMPUSEATS_CRON_RECONCILE_BATCH" default:"100"`
}

package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	// EnvPrefix namespaces every environment variable the app reads.
	EnvPrefix = "SOUKPLACE"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "SOUKPLACE_DB_DSN"
	EnvDBHost = "SOUKPLACE_DB_HOST"
	EnvDBUser = "SOUKPLACE_DB_USER"
	EnvDBName = "SOUKPLACE_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Checkout     CheckoutConfig
	FeatureFlags FeatureFlagsConfig
	Outbox       OutboxConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"SOUKPLACE_APP_ENV" required:"true"`
	Port         string `envconfig:"SOUKPLACE_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"SOUKPLACE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"SOUKPLACE_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"SOUKPLACE_DB_DSN"`
	Driver string `envconfig:"SOUKPLACE_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"SOUKPLACE_DB_HOST"`
	LegacyPort     int    `envconfig:"SOUKPLACE_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"SOUKPLACE_DB_USER"`
	LegacyPassword string `envconfig:"SOUKPLACE_DB_PASSWORD"`
	LegacyName     string `envconfig:"SOUKPLACE_DB_NAME"`
	LegacySSLMode  string `envconfig:"SOUKPLACE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"SOUKPLACE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"SOUKPLACE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"SOUKPLACE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"SOUKPLACE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"SOUKPLACE_REDIS_URL"`
	Address      string        `envconfig:"SOUKPLACE_REDIS_ADDRESS"`
	Password     string        `envconfig:"SOUKPLACE_REDIS_PASSWORD"`
	DB           int           `envconfig:"SOUKPLACE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"SOUKPLACE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"SOUKPLACE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"SOUKPLACE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"SOUKPLACE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"SOUKPLACE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"SOUKPLACE_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"SOUKPLACE_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"SOUKPLACE_JWT_EXPIRATION_MINUTES" default:"60"`
}

type CheckoutConfig struct {
	// EligibilityHorizonDays bounds how far ahead the next-available scan looks.
	EligibilityHorizonDays int `envconfig:"SOUKPLACE_CHECKOUT_ELIGIBILITY_HORIZON_DAYS" default:"60"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"SOUKPLACE_AUTO_MIGRATE" default:"false"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"SOUKPLACE_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"SOUKPLACE_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"SOUKPLACE_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}

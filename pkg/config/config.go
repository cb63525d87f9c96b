package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = ""

	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Password     PasswordConfig
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
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"SIVANYA_APP_ENV" default:"dev"`
	Port         string `envconfig:"SIVANYA_APP_PORT" default:"3000"`
	LogLevel     string `envconfig:"SIVANYA_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"SIVANYA_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN string `envconfig:"SIVANYA_DB_DSN"`

	Host     string `envconfig:"SIVANYA_DB_HOST"`
	Port     int    `envconfig:"SIVANYA_DB_PORT" default:"5432"`
	User     string `envconfig:"SIVANYA_DB_USER"`
	Password string `envconfig:"SIVANYA_DB_PASSWORD"`
	Name     string `envconfig:"SIVANYA_DB_NAME"`
	SSLMode  string `envconfig:"SIVANYA_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"SIVANYA_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"SIVANYA_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"SIVANYA_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"SIVANYA_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

func (d *DBConfig) ensureDSN() error {
	if d.DSN != "" {
		return nil
	}
	if d.Host == "" || d.User == "" || d.Name == "" {
		return fmt.Errorf("either SIVANYA_DB_DSN or SIVANYA_DB_HOST/USER/NAME must be set")
	}
	d.DSN = fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode,
	)
	return nil
}

type RedisConfig struct {
	URL          string        `envconfig:"SIVANYA_REDIS_URL"`
	Address      string        `envconfig:"SIVANYA_REDIS_ADDR"`
	Password     string        `envconfig:"SIVANYA_REDIS_PASSWORD"`
	DB           int           `envconfig:"SIVANYA_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"SIVANYA_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"SIVANYA_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"SIVANYA_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"SIVANYA_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"SIVANYA_REDIS_WRITE_TIMEOUT" default:"5s"`

	CheckoutLockTTL time.Duration `envconfig:"SIVANYA_CHECKOUT_LOCK_TTL" default:"30s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"SIVANYA_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"SIVANYA_JWT_ISSUER" default:"sivanya-api"`
	ExpirationMinutes int    `envconfig:"SIVANYA_JWT_EXPIRATION_MINUTES" default:"1440"`
}

// Expiration returns the access token lifetime.
func (j JWTConfig) Expiration() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"SIVANYA_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"SIVANYA_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"SIVANYA_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"SIVANYA_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"SIVANYA_ARGON_KEY_LEN" default:"32"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"SIVANYA_AUTO_MIGRATE" default:"true"`
}

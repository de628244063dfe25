package config

import (
	"fmt"
	"net/url"
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
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	Razorpay     RazorpayConfig
	Reconciler   ReconcilerConfig
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
	Env          string `envconfig:"PARKLOOP_APP_ENV" required:"true"`
	Port         string `envconfig:"PARKLOOP_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"PARKLOOP_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"PARKLOOP_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"PARKLOOP_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"PARKLOOP_DB_DSN"`
	Driver string `envconfig:"PARKLOOP_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"PARKLOOP_DB_HOST"`
	Port     int    `envconfig:"PARKLOOP_DB_PORT" default:"5432"`
	User     string `envconfig:"PARKLOOP_DB_USER"`
	Password string `envconfig:"PARKLOOP_DB_PASSWORD"`
	Name     string `envconfig:"PARKLOOP_DB_NAME"`
	SSLMode  string `envconfig:"PARKLOOP_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"PARKLOOP_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"PARKLOOP_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"PARKLOOP_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"PARKLOOP_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

func (d *DBConfig) ensureDSN() error {
	if d.DSN != "" {
		return nil
	}
	if d.Host == "" || d.User == "" || d.Name == "" {
		return fmt.Errorf("either PARKLOOP_DB_DSN or host/user/name settings are required")
	}
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.Name,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	d.DSN = u.String()
	return nil
}

type RedisConfig struct {
	URL          string        `envconfig:"PARKLOOP_REDIS_URL" required:"true"`
	Address      string        `envconfig:"PARKLOOP_REDIS_ADDR"`
	Password     string        `envconfig:"PARKLOOP_REDIS_PASSWORD"`
	DB           int           `envconfig:"PARKLOOP_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"PARKLOOP_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"PARKLOOP_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"PARKLOOP_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"PARKLOOP_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"PARKLOOP_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// RazorpayConfig carries the gateway credentials and HTTP budget. The struct
// is injected into the gateway client at construction; nothing reads these
// values from process globals.
type RazorpayConfig struct {
	KeyID         string        `envconfig:"PARKLOOP_RAZORPAY_KEY_ID" required:"true"`
	KeySecret     string        `envconfig:"PARKLOOP_RAZORPAY_KEY_SECRET" required:"true"`
	WebhookSecret string        `envconfig:"PARKLOOP_RAZORPAY_WEBHOOK_SECRET"`
	BaseURL       string        `envconfig:"PARKLOOP_RAZORPAY_BASE_URL" default:"https://api.razorpay.com"`
	Timeout       time.Duration `envconfig:"PARKLOOP_RAZORPAY_TIMEOUT" default:"10s"`
	Currency      string        `envconfig:"PARKLOOP_RAZORPAY_CURRENCY" default:"INR"`
}

// ReconcilerConfig bounds how long a payment may sit pending before the
// sweep marks it failed and returns its slots.
type ReconcilerConfig struct {
	PendingTTL     time.Duration `envconfig:"PARKLOOP_RECONCILER_PENDING_TTL" default:"30m"`
	SweepInterval  time.Duration `envconfig:"PARKLOOP_RECONCILER_SWEEP_INTERVAL" default:"5m"`
	LockTTL        time.Duration `envconfig:"PARKLOOP_RECONCILER_LOCK_TTL" default:"10m"`
	WebhookIdemTTL time.Duration `envconfig:"PARKLOOP_WEBHOOK_IDEMPOTENCY_TTL" default:"720h"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"PARKLOOP_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"PARKLOOP_AUTO_MIGRATE" default:"false"`
}

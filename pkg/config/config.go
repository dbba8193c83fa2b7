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
	App       AppConfig
	DB        DBConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Password  PasswordConfig
	Razorpay  RazorpayConfig
	Listings  ListingsConfig
	Cron      CronConfig
	RateLimit RateLimitConfig
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
	Env          string   `envconfig:"SCRAPMANDI_APP_ENV" required:"true"`
	Port         string   `envconfig:"SCRAPMANDI_APP_PORT" required:"true"`
	LogLevel     string   `envconfig:"SCRAPMANDI_LOG_LEVEL" default:"info"`
	LogWarnStack bool     `envconfig:"SCRAPMANDI_LOG_WARN_STACK" default:"false"`
	CORSOrigins  []string `envconfig:"SCRAPMANDI_CORS_ORIGINS" default:"http://localhost:3000"`
	AutoMigrate  bool     `envconfig:"SCRAPMANDI_AUTO_MIGRATE" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN string `envconfig:"SCRAPMANDI_DB_DSN"`

	Host     string `envconfig:"SCRAPMANDI_DB_HOST"`
	Port     int    `envconfig:"SCRAPMANDI_DB_PORT" default:"5432"`
	User     string `envconfig:"SCRAPMANDI_DB_USER"`
	Password string `envconfig:"SCRAPMANDI_DB_PASSWORD"`
	Name     string `envconfig:"SCRAPMANDI_DB_NAME"`
	SSLMode  string `envconfig:"SCRAPMANDI_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"SCRAPMANDI_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"SCRAPMANDI_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"SCRAPMANDI_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"SCRAPMANDI_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"SCRAPMANDI_REDIS_URL"`
	Address      string        `envconfig:"SCRAPMANDI_REDIS_ADDR"`
	Password     string        `envconfig:"SCRAPMANDI_REDIS_PASSWORD"`
	DB           int           `envconfig:"SCRAPMANDI_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"SCRAPMANDI_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"SCRAPMANDI_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"SCRAPMANDI_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"SCRAPMANDI_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"SCRAPMANDI_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"SCRAPMANDI_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"SCRAPMANDI_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"SCRAPMANDI_JWT_EXPIRATION_MINUTES" default:"1440"`
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"SCRAPMANDI_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"SCRAPMANDI_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"SCRAPMANDI_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"SCRAPMANDI_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"SCRAPMANDI_ARGON_KEY_LEN" default:"32"`
}

type RazorpayConfig struct {
	KeyID         string        `envconfig:"SCRAPMANDI_RAZORPAY_KEY_ID"`
	KeySecret     string        `envconfig:"SCRAPMANDI_RAZORPAY_KEY_SECRET"`
	WebhookSecret string        `envconfig:"SCRAPMANDI_RAZORPAY_WEBHOOK_SECRET"`
	BaseURL       string        `envconfig:"SCRAPMANDI_RAZORPAY_BASE_URL" default:"https://api.razorpay.com"`
	Timeout       time.Duration `envconfig:"SCRAPMANDI_RAZORPAY_TIMEOUT" default:"15s"`
	Currency      string        `envconfig:"SCRAPMANDI_RAZORPAY_CURRENCY" default:"INR"`
	// WebhookEventTTL bounds how long a delivered event id blocks replays.
	WebhookEventTTL time.Duration `envconfig:"SCRAPMANDI_RAZORPAY_WEBHOOK_EVENT_TTL" default:"48h"`
}

type ListingsConfig struct {
	MinImages     int `envconfig:"SCRAPMANDI_LISTING_MIN_IMAGES" default:"4"`
	BrowsePreview int `envconfig:"SCRAPMANDI_LISTING_BROWSE_PREVIEW" default:"6"`
}

type RateLimitConfig struct {
	AuthLimit  int64         `envconfig:"SCRAPMANDI_RATE_AUTH_LIMIT" default:"10"`
	AuthWindow time.Duration `envconfig:"SCRAPMANDI_RATE_AUTH_WINDOW" default:"1m"`
}

type CronConfig struct {
	Interval time.Duration `envconfig:"SCRAPMANDI_CRON_INTERVAL" default:"1h"`
	LockTTL  time.Duration `envconfig:"SCRAPMANDI_CRON_LOCK_TTL" default:"55m"`
	LockKey  string        `envconfig:"SCRAPMANDI_CRON_LOCK_KEY" default:"cron:reconcile"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	for envName, value := range map[string]string{
		"SCRAPMANDI_DB_HOST": db.Host,
		"SCRAPMANDI_DB_USER": db.User,
		"SCRAPMANDI_DB_NAME": db.Name,
	} {
		if value == "" {
			missing = append(missing, envName)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("either SCRAPMANDI_DB_DSN or %s are required", strings.Join(missing, ", "))
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

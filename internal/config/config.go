package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Storage backends for persisted device state.
const (
	StorageMemory   = "memory"
	StorageSQLite   = "sqlite"
	StorageRedis    = "redis"
	StoragePostgres = "postgres"
)

// Config aggregates runtime configuration for the portal.
type Config struct {
	App      AppConfig
	API      APIConfig
	Storage  StorageConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	SQLite   SQLiteConfig
	Logger   LoggerConfig
	Device   DeviceConfig
	Portal   PortalConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// APIConfig points the portal at the remote booking API.
type APIConfig struct {
	BaseURL               string
	DefaultLocale         string
	TimeoutSeconds        int
	BreakerMaxRequests    uint32
	BreakerIntervalSec    int
	BreakerOpenTimeoutSec int
	BreakerFailureRatio   float64
	BreakerMinRequests    uint32
}

// StorageConfig selects where device-local session state lives.
type StorageConfig struct {
	Backend string
	// SealKey is a 32 byte key (hex encoded) used to encrypt values at rest; empty disables sealing.
	SealKey string
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr      string
	Password  string
	DB        int
	KeyPrefix string
	TTLHours  int
}

// SQLiteConfig holds the local database path.
type SQLiteConfig struct {
	Path string
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// DeviceConfig defines the signed device cookie.
type DeviceConfig struct {
	Secret     string
	CookieName string
	TTLDays    int
	Secure     bool
}

// PortalConfig tunes page behavior.
type PortalConfig struct {
	LoadingWaitMillis  int
	DeviceIdleMinutes  int
	SweepIntervalSec   int
	ConsumerLoginRoute string
	ProLoginRoute      string
	AdminLoginRoute    string
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	ratio, err := strconv.ParseFloat(getEnv("API_BREAKER_FAILURE_RATIO", "0.6"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid API_BREAKER_FAILURE_RATIO: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "booking-portal"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		API: APIConfig{
			BaseURL:               strings.TrimRight(getEnv("API_BASE_URL", "http://localhost:8000/api"), "/"),
			DefaultLocale:         getEnv("API_DEFAULT_LOCALE", "en"),
			TimeoutSeconds:        getEnvAsInt("API_TIMEOUT_SECONDS", 15),
			BreakerMaxRequests:    uint32(getEnvAsInt("API_BREAKER_MAX_REQUESTS", 5)),
			BreakerIntervalSec:    getEnvAsInt("API_BREAKER_INTERVAL_SECONDS", 30),
			BreakerOpenTimeoutSec: getEnvAsInt("API_BREAKER_OPEN_TIMEOUT_SECONDS", 10),
			BreakerFailureRatio:   ratio,
			BreakerMinRequests:    uint32(getEnvAsInt("API_BREAKER_MIN_REQUESTS", 5)),
		},
		Storage: StorageConfig{
			Backend: strings.ToLower(getEnv("STORAGE_BACKEND", StorageMemory)),
			SealKey: os.Getenv("STORAGE_SEAL_KEY"),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Redis: RedisConfig{
			Addr:      getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password:  os.Getenv("REDIS_PASSWORD"),
			DB:        redisDB,
			KeyPrefix: getEnv("REDIS_KEY_PREFIX", "portal"),
			TTLHours:  getEnvAsInt("REDIS_TTL_HOURS", 24*30),
		},
		SQLite: SQLiteConfig{
			Path: getEnv("SQLITE_PATH", "data/portal.db"),
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Device: DeviceConfig{
			Secret:     getEnv("DEVICE_SECRET", "dev-secret"),
			CookieName: getEnv("DEVICE_COOKIE_NAME", "bp_device"),
			TTLDays:    getEnvAsInt("DEVICE_TTL_DAYS", 365),
			Secure:     getEnvAsBool("DEVICE_COOKIE_SECURE", false),
		},
		Portal: PortalConfig{
			LoadingWaitMillis:  getEnvAsInt("PORTAL_LOADING_WAIT_MS", 1500),
			DeviceIdleMinutes:  getEnvAsInt("PORTAL_DEVICE_IDLE_MINUTES", 60),
			SweepIntervalSec:   getEnvAsInt("PORTAL_SWEEP_INTERVAL_SECONDS", 300),
			ConsumerLoginRoute: getEnv("PORTAL_CONSUMER_LOGIN_ROUTE", "/login"),
			ProLoginRoute:      getEnv("PORTAL_PRO_LOGIN_ROUTE", "/pro/login"),
			AdminLoginRoute:    getEnv("PORTAL_ADMIN_LOGIN_ROUTE", "/admin/login"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Storage.Backend {
	case StorageMemory, StorageSQLite, StorageRedis:
	case StoragePostgres:
		if c.Postgres.DSN == "" {
			return fmt.Errorf("POSTGRES_DSN required for %s storage", StoragePostgres)
		}
	default:
		return fmt.Errorf("unknown STORAGE_BACKEND %q", c.Storage.Backend)
	}
	if c.API.BaseURL == "" {
		return fmt.Errorf("API_BASE_URL required")
	}
	return nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// Timeout returns the outbound request timeout.
func (a APIConfig) Timeout() time.Duration {
	return time.Duration(a.TimeoutSeconds) * time.Second
}

// TTL returns how long device keys live in Redis; zero means no expiry.
func (r RedisConfig) TTL() time.Duration {
	if r.TTLHours <= 0 {
		return 0
	}
	return time.Duration(r.TTLHours) * time.Hour
}

// LoadingWait bounds how long a guard waits for session initialization.
func (p PortalConfig) LoadingWait() time.Duration {
	return time.Duration(p.LoadingWaitMillis) * time.Millisecond
}

// DeviceIdle is the idle time after which a device's sessions are evicted from memory.
func (p PortalConfig) DeviceIdle() time.Duration {
	return time.Duration(p.DeviceIdleMinutes) * time.Minute
}

// SweepInterval is the period of the idle-device sweeper.
func (p PortalConfig) SweepInterval() time.Duration {
	return time.Duration(p.SweepIntervalSec) * time.Second
}

// TTL returns the lifetime of a device cookie.
func (d DeviceConfig) TTL() time.Duration {
	return time.Duration(d.TTLDays) * 24 * time.Hour
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}

package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App          AppConfig
	Postgres     PostgresConfig
	Redis        RedisConfig
	Logger       LoggerConfig
	Auth         AuthConfig
	Notification NotificationConfig
	RateLimit    RateLimitConfig
	Cleanup      CleanupConfig
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
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// AuthConfig defines token and password-hashing parameters. Access and
// refresh tokens are signed with distinct secrets.
type AuthConfig struct {
	AccessTokenSecret       string
	AccessTokenTTLMinutes   int
	RefreshTokenSecret      string
	RefreshTokenTTLHours    int
	PasswordResetTTLMinutes int
	BcryptCost              int
}

// NotificationConfig holds outbound email settings.
type NotificationConfig struct {
	APIURL    string
	APIKey    string
	FromEmail string
	FromName  string
}

// RateWindow is one route class ceiling: Max requests per Window per client.
type RateWindow struct {
	Window time.Duration
	Max    int
}

// RateLimitConfig carries per route class admission ceilings.
type RateLimitConfig struct {
	Login         RateWindow
	Register      RateWindow
	PasswordReset RateWindow
	Auth          RateWindow
	General       RateWindow
}

// CleanupConfig controls the reset-token sweeper.
type CleanupConfig struct {
	Interval           time.Duration
	UsedTokenRetention time.Duration
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	maxConns := int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10))
	minConns := int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2))
	runMigrations := getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true)
	connMaxIdle := int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30))
	connMaxLife := int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300))

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "account-service"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       maxConns,
			MinConns:       minConns,
			RunMigrations:  runMigrations,
			ConnMaxIdleSec: connMaxIdle,
			ConnMaxLifeSec: connMaxLife,
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			AccessTokenSecret:       getEnv("AUTH_ACCESS_TOKEN_SECRET", "dev-access-secret"),
			AccessTokenTTLMinutes:   getEnvAsInt("AUTH_ACCESS_TOKEN_TTL_MINUTES", 15),
			RefreshTokenSecret:      getEnv("AUTH_REFRESH_TOKEN_SECRET", "dev-refresh-secret"),
			RefreshTokenTTLHours:    getEnvAsInt("AUTH_REFRESH_TOKEN_TTL_HOURS", 168),
			PasswordResetTTLMinutes: getEnvAsInt("AUTH_PASSWORD_RESET_TTL_MINUTES", 60),
			BcryptCost:              getEnvAsInt("AUTH_BCRYPT_COST", 12),
		},
		Notification: NotificationConfig{
			APIURL:    getEnv("NOTIFY_API_URL", "https://api.brevo.com/v3/smtp/email"),
			APIKey:    os.Getenv("NOTIFY_API_KEY"),
			FromEmail: getEnv("NOTIFY_EMAIL_FROM", "noreply@example.com"),
			FromName:  getEnv("NOTIFY_EMAIL_FROM_NAME", "Account Service"),
		},
		RateLimit: RateLimitConfig{
			Login:         rateWindowFromEnv("RATE_LIMIT_LOGIN", time.Minute, 1),
			Register:      rateWindowFromEnv("RATE_LIMIT_REGISTER", 3*time.Minute, 1),
			PasswordReset: rateWindowFromEnv("RATE_LIMIT_PASSWORD_RESET", 2*time.Minute, 1),
			Auth:          rateWindowFromEnv("RATE_LIMIT_AUTH", 15*time.Minute, 10),
			General:       rateWindowFromEnv("RATE_LIMIT_GENERAL", 15*time.Minute, 100),
		},
		Cleanup: CleanupConfig{
			Interval:           time.Duration(getEnvAsInt("CLEANUP_INTERVAL_MINUTES", 60)) * time.Minute,
			UsedTokenRetention: time.Duration(getEnvAsInt("CLEANUP_USED_TOKEN_RETENTION_HOURS", 24)) * time.Hour,
		},
	}

	return cfg, nil
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

// AccessTokenTTL returns the access token lifetime.
func (a AuthConfig) AccessTokenTTL() time.Duration {
	return time.Duration(a.AccessTokenTTLMinutes) * time.Minute
}

// RefreshTokenTTL returns the refresh token lifetime.
func (a AuthConfig) RefreshTokenTTL() time.Duration {
	return time.Duration(a.RefreshTokenTTLHours) * time.Hour
}

// PasswordResetTTL returns the reset-token lifetime.
func (a AuthConfig) PasswordResetTTL() time.Duration {
	return time.Duration(a.PasswordResetTTLMinutes) * time.Minute
}

func rateWindowFromEnv(prefix string, window time.Duration, max int) RateWindow {
	seconds := getEnvAsInt(prefix+"_WINDOW_SECONDS", int(window.Seconds()))
	return RateWindow{
		Window: time.Duration(seconds) * time.Second,
		Max:    getEnvAsInt(prefix+"_MAX", max),
	}
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

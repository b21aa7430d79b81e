package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store drivers.
const (
	StoreMongo    = "mongo"
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

// Mail transports.
const (
	MailLog     = "log"
	MailSES     = "ses"
	MailWebhook = "webhook"
)

type Config struct {
	Server    ServerConfig
	App       AppConfig
	Store     StoreConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Auth      AuthConfig
	Notify    NotifyConfig
	RateLimit RateLimitConfig
	Worker    WorkerConfig
}

type ServerConfig struct {
	Port        string
	CORSOrigins []string
}

type AppConfig struct {
	Environment string
	LogLevel    string
	Version     string
}

type StoreConfig struct {
	Driver   string
	MongoURI string
	MongoDB  string
}

// DatabaseConfig is used by the postgres store. DB_DSN, when set, wins over the parts.
type DatabaseConfig struct {
	DSN      string
	Host     string
	Port     int
	User     string
	Password string
	Name     string
}

type RedisConfig struct {
	URL string
}

type AuthConfig struct {
	AdminUsername           string
	AdminPasswordHash       string
	SessionSecret           string
	SessionTTL              time.Duration
	FirebaseCredentialsPath string
}

type NotifyConfig struct {
	Transport  string
	From       string
	WebhookURL string
	AWSRegion  string
	Timeout    time.Duration
}

type RateLimitConfig struct {
	RegisterPerMinute int
	RegisterBurst     int
}

type WorkerConfig struct {
	ReconcileSchedule string
	// ReconcileGrace is how recent a count change must be for reconciliation to leave a
	// too-high count alone. Zero keeps the rules engine default.
	ReconcileGrace time.Duration
}

func Load() (*Config, error) {
	// Load .env file if it exists (ignore error in production)
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file found, using environment variables")
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:        getEnv("PORT", "8080"),
			CORSOrigins: getEnvAsList("CORS_ORIGINS", []string{"http://localhost:3000"}),
		},
		App: AppConfig{
			Environment: getEnv("APP_ENV", "development"),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
		},
		Store: StoreConfig{
			Driver:   getEnv("STORE_DRIVER", StoreMongo),
			MongoURI: getEnv("MONGO_URI", "mongodb://localhost:27017"),
			MongoDB:  getEnv("MONGO_DB", "ngo_platform"),
		},
		Database: DatabaseConfig{
			DSN:      getEnv("DB_DSN", ""),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Name:     getEnv("DB_NAME", "ngo_platform"),
		},
		Redis: RedisConfig{
			URL: getEnv("REDIS_URL", ""),
		},
		Auth: AuthConfig{
			AdminUsername:           getEnv("ADMIN_USERNAME", "admin"),
			AdminPasswordHash:       getEnv("ADMIN_PASSWORD_HASH", ""),
			SessionSecret:           getEnv("SESSION_SECRET", ""),
			SessionTTL:              getEnvAsDuration("SESSION_TTL", 8*time.Hour),
			FirebaseCredentialsPath: getEnv("FIREBASE_CREDENTIALS_PATH", ""),
		},
		Notify: NotifyConfig{
			Transport:  getEnv("MAIL_TRANSPORT", MailLog),
			From:       getEnv("MAIL_FROM", "noreply@y4d.ngo"),
			WebhookURL: getEnv("MAIL_WEBHOOK_URL", ""),
			AWSRegion:  getEnv("AWS_REGION", "ap-south-1"),
			Timeout:    getEnvAsDuration("NOTIFY_TIMEOUT", 5*time.Second),
		},
		RateLimit: RateLimitConfig{
			RegisterPerMinute: getEnvAsInt("REGISTER_RATE_PER_MIN", 10),
			RegisterBurst:     getEnvAsInt("REGISTER_BURST", 5),
		},
		Worker: WorkerConfig{
			ReconcileSchedule: getEnv("RECONCILE_SCHEDULE", "@every 15m"),
			ReconcileGrace:    getEnvAsDuration("RECONCILE_GRACE", 2*time.Minute),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	switch c.Store.Driver {
	case StoreMongo:
		if c.Store.MongoURI == "" {
			return fmt.Errorf("MONGO_URI is required for the mongo store")
		}
	case StorePostgres:
		if c.Database.DSN == "" && c.Database.Host == "" {
			return fmt.Errorf("DB_DSN or DB_HOST is required for the postgres store")
		}
	case StoreMemory:
	default:
		return fmt.Errorf("STORE_DRIVER must be one of %s, %s, %s", StoreMongo, StorePostgres, StoreMemory)
	}

	switch c.Notify.Transport {
	case MailLog, MailSES:
	case MailWebhook:
		if c.Notify.WebhookURL == "" {
			return fmt.Errorf("MAIL_WEBHOOK_URL is required for the webhook transport")
		}
	default:
		return fmt.Errorf("MAIL_TRANSPORT must be one of %s, %s, %s", MailLog, MailSES, MailWebhook)
	}

	if c.IsProduction() {
		if c.Auth.SessionSecret == "" {
			return fmt.Errorf("SESSION_SECRET is required in production")
		}
		if c.Auth.AdminPasswordHash == "" && c.Auth.FirebaseCredentialsPath == "" {
			return fmt.Errorf("ADMIN_PASSWORD_HASH or FIREBASE_CREDENTIALS_PATH is required in production")
		}
	}

	if c.RateLimit.RegisterPerMinute <= 0 || c.RateLimit.RegisterBurst <= 0 {
		return fmt.Errorf("REGISTER_RATE_PER_MIN and REGISTER_BURST must be positive")
	}

	return nil
}

// IsProduction reports whether APP_ENV is production.
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		slog.Warn("invalid integer, using default", "key", key, "default", defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := time.ParseDuration(valueStr)
	if err != nil {
		slog.Warn("invalid duration, using default", "key", key, "default", defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App         AppConfig
	Server      ServerConfig
	Database    DatabaseConfig
	JWT         JWTConfig
	Mailjet     MailjetConfig
	Redis       RedisConfig
	Catalog     CatalogConfig
	Queue       QueueConfig
	Worker      WorkerConfig
	Suggestions SuggestionsConfig
}

type AppConfig struct {
	Name                    string
	Version                 string
	Environment             string
	AppDeploymentUrl        string
	AppEmailVerificationKey string
}

type ServerConfig struct {
	Port string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

type JWTConfig struct {
	SecretKey string
	TokenTTL  time.Duration
}

type MailjetConfig struct {
	MailjetBaseUrl           string
	MailjetBasicAuthUsername string
	MailjetBasicAuthPassword string
	MailjetSenderEmail       string
	MailjetSenderName        string
}

type RedisConfig struct {
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
}

// CatalogConfig points at the external music catalog search API.
type CatalogConfig struct {
	BaseURL  string
	Country  string
	PageSize int
	Timeout  time.Duration
}

type QueueConfig struct {
	MaxCapacity   int
	LowWatermark  int
	HighWatermark int
}

type WorkerConfig struct {
	Interval             time.Duration
	BackoffBase          time.Duration
	BackoffCap           time.Duration
	HistoryRetentionDays int
}

type SuggestionsConfig struct {
	DefaultLimit    int
	MaxLimit        int
	RateLimitPerSec float64
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		App: AppConfig{
			Name:                    getEnv("APP_NAME", "otodoki API"),
			Version:                 getEnv("APP_VERSION", "1.0.0"),
			Environment:             getEnv("APP_ENV", "development"),
			AppDeploymentUrl:        getEnv("APP_DEPLOYMENT_URL", "http://localhost:8080"),
			AppEmailVerificationKey: getEnv("APP_EMAIL_VERIFICATION_KEY", ""),
		},
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Name:     getEnv("DB_NAME", "otodoki"),
			SSLMode:  getEnv("DB_SSL_MODE", "disable"),
		},
		JWT: JWTConfig{
			SecretKey: getEnv("JWT_SECRET", ""),
			TokenTTL:  getEnvDuration("JWT_TOKEN_TTL", 24*time.Hour),
		},
		Mailjet: MailjetConfig{
			MailjetBaseUrl:           getEnv("MAILJET_BASE_URL", ""),
			MailjetBasicAuthUsername: getEnv("MAILJET_BASIC_AUTH_USERNAME", ""),
			MailjetBasicAuthPassword: getEnv("MAILJET_BASIC_AUTH_PASSWORD", ""),
			MailjetSenderEmail:       getEnv("MAILJET_SENDER_EMAIL", ""),
			MailjetSenderName:        getEnv("MAILJET_SENDER_NAME", ""),
		},
		Redis: RedisConfig{
			RedisHost:     getEnv("REDIS_HOST", "localhost"),
			RedisPort:     getEnv("REDIS_PORT", "6379"),
			RedisPassword: getEnv("REDIS_PASSWORD", ""),
			RedisDB:       getEnvInt("REDIS_DB", 0),
		},
		Catalog: CatalogConfig{
			BaseURL:  getEnv("CATALOG_BASE_URL", "https://itunes.apple.com"),
			Country:  getEnv("CATALOG_COUNTRY", "JP"),
			PageSize: getEnvInt("CATALOG_PAGE_SIZE", 50),
			Timeout:  getEnvDuration("CATALOG_TIMEOUT", 10*time.Second),
		},
		Queue: QueueConfig{
			MaxCapacity:   getEnvInt("QUEUE_MAX_CAPACITY", 100),
			LowWatermark:  getEnvInt("QUEUE_LOW_WATERMARK", 20),
			HighWatermark: getEnvInt("QUEUE_HIGH_WATERMARK", 80),
		},
		Worker: WorkerConfig{
			Interval:             getEnvDuration("WORKER_INTERVAL", 30*time.Second),
			BackoffBase:          getEnvDuration("WORKER_BACKOFF_BASE", 1*time.Second),
			BackoffCap:           getEnvDuration("WORKER_BACKOFF_CAP", 60*time.Second),
			HistoryRetentionDays: getEnvInt("WORKER_HISTORY_RETENTION_DAYS", 90),
		},
		Suggestions: SuggestionsConfig{
			DefaultLimit:    getEnvInt("SUGGESTIONS_DEFAULT_LIMIT", 10),
			MaxLimit:        getEnvInt("SUGGESTIONS_MAX_LIMIT", 50),
			RateLimitPerSec: getEnvFloat("SUGGESTIONS_RATE_LIMIT_PER_SEC", 10),
		},
	}

	if cfg.JWT.SecretKey == "" {
		return nil, errors.New("missing jwt secret")
	}

	if cfg.App.AppEmailVerificationKey == "" {
		return nil, errors.New("missing app email verification key")
	}

	if cfg.Database.Password == "" {
		return nil, errors.New("missing database password")
	}

	if cfg.Queue.HighWatermark > cfg.Queue.MaxCapacity {
		return nil, errors.New("queue high watermark exceeds max capacity")
	}

	if cfg.Queue.LowWatermark >= cfg.Queue.HighWatermark {
		return nil, errors.New("queue low watermark must be below high watermark")
	}

	return cfg, nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}

	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}

	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}

	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}

	return defaultVal
}

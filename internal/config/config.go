package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

const defaultJWTSecret = "change-me-in-production"

// Config is populated from environment variables (optionally via .env).
type Config struct {
	App   AppConfig
	Redis RedisConfig
	JWT   JWTConfig
	Email EmailConfig
	MinIO MinIOConfig
	Auth  AuthConfig
	Jobs  JobConfig
}

type AppConfig struct {
	Name        string
	Environment string // development, staging, production
	Port        string
	Version     string
	AutoMigrate bool
}

type RedisConfig struct {
	Host     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret         string
	AccessTokenTTL time.Duration
}

// EmailConfig configures the SMTP relay used by the worker.
type EmailConfig struct {
	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	From         string
}

type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// AuthConfig governs confirmation codes.
type AuthConfig struct {
	ConfirmationCodeTTL time.Duration
	MaxCodeAttempts     int
	AttemptWindow       time.Duration
}

// JobConfig schedules the worker's periodic tasks. Specs are cron expressions in UTC.
type JobConfig struct {
	ReissueCron        string
	ReissueBatchLimit  int
	CleanupCron        string
	WorkerConcurrency  int
	HealthCheckAddress string
}

func Load() (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "YaMDb API"),
			Environment: getEnv("APP_ENV", "development"),
			Port:        getEnv("APP_PORT", "8080"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
			AutoMigrate: getEnvBool("APP_AUTO_MIGRATE", true),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		JWT: JWTConfig{
			Secret:         getEnv("JWT_SECRET", defaultJWTSecret),
			AccessTokenTTL: getEnvDuration("JWT_ACCESS_TTL", 24*time.Hour),
		},
		Email: EmailConfig{
			SMTPHost:     getEnv("SMTP_HOST", "localhost"),
			SMTPPort:     getEnvInt("SMTP_PORT", 1025),
			SMTPUser:     getEnv("SMTP_USER", ""),
			SMTPPassword: getEnv("SMTP_PASSWORD", ""),
			From:         getEnv("EMAIL_FROM", "noreply@yamdb.local"),
		},
		MinIO: MinIOConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", "localhost:9000"),
			AccessKey: getEnv("MINIO_ACCESS_KEY", "minioadmin"),
			SecretKey: getEnv("MINIO_SECRET_KEY", "minioadmin"),
			Bucket:    getEnv("MINIO_BUCKET", "yamdb-import"),
			UseSSL:    getEnvBool("MINIO_USE_SSL", false),
		},
		Auth: AuthConfig{
			ConfirmationCodeTTL: getEnvDuration("CONFIRMATION_CODE_TTL", 24*time.Hour),
			MaxCodeAttempts:     getEnvInt("CONFIRMATION_MAX_ATTEMPTS", 5),
			AttemptWindow:       getEnvDuration("CONFIRMATION_ATTEMPT_WINDOW", 15*time.Minute),
		},
		Jobs: JobConfig{
			ReissueCron:        getEnv("JOB_REISSUE_CRON", "*/10 * * * *"),
			ReissueBatchLimit:  getEnvInt("JOB_REISSUE_LIMIT", 100),
			CleanupCron:        getEnv("JOB_CLEANUP_CRON", "0 2 * * *"),
			WorkerConcurrency:  getEnvInt("WORKER_CONCURRENCY", 10),
			HealthCheckAddress: getEnv("WORKER_HEALTH_ADDR", ":9999"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func (c *Config) IsProduction() bool { return c.App.Environment == "production" }

// Validate rejects development defaults in production.
func (c *Config) Validate() error {
	if c.Auth.MaxCodeAttempts < 1 {
		return fmt.Errorf("CONFIRMATION_MAX_ATTEMPTS must be positive")
	}
	if c.Auth.ConfirmationCodeTTL <= 0 {
		return fmt.Errorf("CONFIRMATION_CODE_TTL must be positive")
	}

	if c.IsProduction() {
		if c.JWT.Secret == defaultJWTSecret {
			return fmt.Errorf("JWT_SECRET must be set in production")
		}
		if len(c.JWT.Secret) < 32 {
			return fmt.Errorf("JWT_SECRET must be at least 32 bytes in production")
		}
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvBool(key string, defaultValue bool) bool {
	value, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type DatabaseConfig struct {
	Host     string
	User     string
	Password string
	Name     string
	Port     string
	SSLMode  string
}

type Config struct {
	Env  string
	Port string

	Database DatabaseConfig

	RedisAddr   string
	KafkaBroker string
	KafkaGroup  string

	JWTSecret     string
	RBACModelPath string

	ReportExportDir string

	// WorkStart is the time of day after which a check-in counts as late.
	WorkStart time.Duration
	// WorkHours is the standard working day; anything above is overtime.
	WorkHours time.Duration

	MaxRetries int
}

// Load reads .env when present and then the process environment.
func Load() (Config, error) {
	_ = godotenv.Load()

	workStart, err := parseClock(getEnv("WORK_START", "09:15"))
	if err != nil {
		return Config{}, fmt.Errorf("WORK_START: %w", err)
	}

	cfg := Config{
		Env:  getEnv("APP_ENV", "development"),
		Port: getEnv("PORT", "3000"),
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Name:     getEnv("DB_NAME", "hr_backoffice"),
			Port:     getEnv("DB_PORT", "5432"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		RedisAddr:       getEnv("REDIS_ADDR", "localhost:6379"),
		KafkaBroker:     getEnv("KAFKA_BROKER", "localhost:9092"),
		KafkaGroup:      getEnv("KAFKA_GROUP_ID", "hr-backoffice"),
		JWTSecret:       getEnv("JWT_SECRET", ""),
		RBACModelPath:   getEnv("RBAC_MODEL_PATH", "internal/rbac/infra/model.conf"),
		ReportExportDir: getEnv("REPORT_EXPORT_DIR", "exports"),
		WorkStart:       workStart,
		WorkHours:       getEnvDuration("WORK_HOURS", 8*time.Hour),
		MaxRetries:      getEnvInt("CONNECT_MAX_RETRIES", 5),
	}

	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.JWTSecret) == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.WorkHours <= 0 {
		return fmt.Errorf("WORK_HOURS must be positive")
	}
	if c.MaxRetries <= 0 {
		return fmt.Errorf("CONNECT_MAX_RETRIES must be positive")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}

// parseClock converts "HH:MM" into an offset from midnight.
func parseClock(v string) (time.Duration, error) {
	t, err := time.Parse("15:04", v)
	if err != nil {
		return 0, err
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, nil
}

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Addr                    string
	Environment             string
	LogLevel                string
	DatabaseURL             string
	JWTSecret               string
	TokenTTL                time.Duration
	MigrationsDir           string
	SeedFile                string
	RunMigrations           bool
	RunSeed                 bool
	SeedAdminEmail          string
	SeedAdminPassword       string
	DefaultEmployeePassword string
	RedisURL                string
	ScoreCacheTTL           time.Duration
	IdempotencyTTL          time.Duration
	EmailEnabled            bool
	EmailFrom               string
	SMTPHost                string
	SMTPPort                int
	SMTPUser                string
	SMTPPassword            string
	SMTPUseTLS              bool
	MaxBodyBytes            int64
	RateLimitPerMinute      int
	BalanceRolloverInterval time.Duration
	MetricsEnabled          bool
	MetricsPrefix           string
}

// Load reads an optional dotenv file and then the process environment.
// Variables already present in the environment win over the file.
func Load(envFiles ...string) Config {
	loadDotenv(envFiles)
	return Config{
		Addr:                    getEnv("APP_ADDR", ":7000"),
		Environment:             getEnv("APP_ENV", "development"),
		LogLevel:                getEnv("LOG_LEVEL", "info"),
		DatabaseURL:             getEnv("DATABASE_URL", ""),
		JWTSecret:               getEnv("JWT_SECRET", ""),
		TokenTTL:                getEnvDuration("TOKEN_TTL", 24*time.Hour),
		MigrationsDir:           getEnv("MIGRATIONS_DIR", "migrations"),
		SeedFile:                getEnv("SEED_FILE", "config/seed.yaml"),
		RunMigrations:           getEnvBool("RUN_MIGRATIONS", true),
		RunSeed:                 getEnvBool("RUN_SEED", true),
		SeedAdminEmail:          getEnv("SEED_ADMIN_EMAIL", ""),
		SeedAdminPassword:       getEnv("SEED_ADMIN_PASSWORD", ""),
		DefaultEmployeePassword: getEnv("DEFAULT_EMPLOYEE_PASSWORD", "defaultPassword123"),
		RedisURL:                getEnv("REDIS_URL", ""),
		ScoreCacheTTL:           getEnvDuration("SCORE_CACHE_TTL", 5*time.Minute),
		IdempotencyTTL:          getEnvDuration("IDEMPOTENCY_TTL", 24*time.Hour),
		EmailEnabled:            getEnvBool("EMAIL_ENABLED", false),
		EmailFrom:               getEnv("EMAIL_FROM", "no-reply@example.com"),
		SMTPHost:                getEnv("SMTP_HOST", ""),
		SMTPPort:                getEnvInt("SMTP_PORT", 587),
		SMTPUser:                getEnv("SMTP_USER", ""),
		SMTPPassword:            getEnv("SMTP_PASSWORD", ""),
		SMTPUseTLS:              getEnvBool("SMTP_USE_TLS", true),
		MaxBodyBytes:            int64(getEnvInt("MAX_BODY_BYTES", 1048576)),
		RateLimitPerMinute:      getEnvInt("RATE_LIMIT_PER_MINUTE", 120),
		BalanceRolloverInterval: getEnvDuration("BALANCE_ROLLOVER_INTERVAL", 24*time.Hour),
		MetricsEnabled:          getEnvBool("METRICS_ENABLED", true),
		MetricsPrefix:           getEnv("METRICS_PREFIX", "elms"),
	}
}

func loadDotenv(files []string) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	existing := make([]string, 0, len(files))
	for _, file := range files {
		if strings.TrimSpace(file) == "" {
			continue
		}
		if _, err := os.Stat(file); err == nil {
			existing = append(existing, file)
		}
	}
	if len(existing) == 0 {
		return
	}
	_ = godotenv.Load(existing...)
}

func (c Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
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

func (c Config) Validate() error {
	if strings.TrimSpace(c.DatabaseURL) == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if strings.TrimSpace(c.JWTSecret) == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.IsProduction() {
		if len(c.JWTSecret) < 32 {
			return fmt.Errorf("JWT_SECRET must be at least 32 characters in production")
		}
		if c.RunSeed && strings.TrimSpace(c.SeedAdminPassword) == "" {
			return fmt.Errorf("SEED_ADMIN_PASSWORD must be set or RUN_SEED disabled in production")
		}
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("TOKEN_TTL must be positive")
	}
	if c.MaxBodyBytes < 1024 {
		return fmt.Errorf("MAX_BODY_BYTES must be at least 1024")
	}
	if c.RateLimitPerMinute <= 0 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE must be positive")
	}
	if c.EmailEnabled && c.SMTPHost == "" {
		return fmt.Errorf("SMTP_HOST must be set when EMAIL_ENABLED is true")
	}
	return nil
}

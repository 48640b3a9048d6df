package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata" // APP_TIMEZONE must resolve on hosts without zoneinfo

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	JWT      JWTConfig
	Redis    RedisConfig
	Storage  StorageConfig
	Ledger   LedgerConfig
	Kiosk    KioskConfig
	Cron     CronConfig
	SMTP     SMTPConfig
}

// AppConfig holds application configuration
type AppConfig struct {
	Port        int
	Env         string
	LogLevel    string
	Timezone    string
	FrontendURL []string
}

// Location loads the business timezone. Config validation has already checked it.
func (a AppConfig) Location() *time.Location {
	loc, err := time.LoadLocation(a.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

const (
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
	DriverMemory   = "memory"
)

type DatabaseConfig struct {
	Driver   string
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
	MongoURI string
}

// JWTConfig holds the verification settings for tokens issued by the identity provider.
type JWTConfig struct {
	Secret           string
	Issuer           string
	AccessExpiration time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type StorageConfig struct {
	Type     string
	BasePath string
	BaseURL  string
}

type LedgerConfig struct {
	MaxEditableHours int
	SyncRetries      int
}

type KioskConfig struct {
	RatePerSecond  float64
	Burst          int
	IdempotencyTTL time.Duration
	// RescanWindow is how long after a clock-in a badge scan still counts as the same clock-in.
	RescanWindow time.Duration
}

type CronConfig struct {
	SweepInterval time.Duration
}

// SMTPConfig enables email copies of leave decisions. An empty Host disables sending.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
	AppURL   string
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file loaded, using process environment", "error", err)
	}

	var (
		config = &Config{}
		p      parser
	)

	config.App = AppConfig{
		Port:        p.integer("APP_PORT", 8080),
		Env:         getEnv("APP_ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		Timezone:    getEnv("APP_TIMEZONE", "Europe/Rome"),
		FrontendURL: getEnvSlice("FRONTEND_URL"),
	}

	config.Database = DatabaseConfig{
		Driver:   getEnv("DB_DRIVER", DriverPostgres),
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     p.integer("DB_PORT", 5432),
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "timesheet"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
		MongoURI: getEnv("MONGO_URI", "mongodb://localhost:27017"),
	}

	config.JWT = JWTConfig{
		Secret:           getEnv("JWT_SECRET_KEY", ""),
		Issuer:           getEnv("JWT_ISSUER", ""),
		AccessExpiration: p.duration("JWT_ACCESS_EXPIRATION_TIME", time.Hour),
	}

	config.Redis = RedisConfig{
		Addr:     getEnv("REDIS_ADDR", ""),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       p.integer("REDIS_DB", 0),
	}

	config.Storage = StorageConfig{
		Type:     getEnv("STORAGE_TYPE", "local"),
		BasePath: getEnv("STORAGE_BASE_PATH", "./uploads"),
		BaseURL:  getEnv("STORAGE_BASE_URL", "http://localhost:8080/uploads"),
	}

	config.Ledger = LedgerConfig{
		MaxEditableHours: p.integer("LEDGER_MAX_EDITABLE_HOURS", 8),
		SyncRetries:      p.integer("LEDGER_SYNC_RETRIES", 3),
	}

	config.Kiosk = KioskConfig{
		RatePerSecond:  p.number("KIOSK_RATE_PER_SECOND", 2),
		Burst:          p.integer("KIOSK_BURST", 5),
		IdempotencyTTL: p.duration("KIOSK_IDEMPOTENCY_TTL", 30*time.Second),
		RescanWindow:   p.duration("KIOSK_RESCAN_WINDOW", 5*time.Minute),
	}

	config.Cron = CronConfig{
		SweepInterval: p.duration("CRON_SWEEP_INTERVAL", 15*time.Minute),
	}

	config.SMTP = SMTPConfig{
		Host:     getEnv("SMTP_HOST", ""),
		Port:     p.integer("SMTP_PORT", 587),
		Username: getEnv("SMTP_USERNAME", ""),
		Password: getEnv("SMTP_PASSWORD", ""),
		From:     getEnv("SMTP_FROM", "noreply@localhost"),
		FromName: getEnv("SMTP_FROM_NAME", "Timesheet"),
		AppURL:   getEnv("SMTP_APP_URL", ""),
	}

	if p.err != nil {
		return nil, p.err
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverPostgres:
		if c.Database.Password == "" {
			return fmt.Errorf("DB_PASSWORD is required for the postgres driver")
		}
	case DriverMongo:
		if c.Database.MongoURI == "" {
			return fmt.Errorf("MONGO_URI is required for the mongo driver")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("DB_DRIVER must be one of: postgres, mongo, memory")
	}

	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if _, err := time.LoadLocation(c.App.Timezone); err != nil {
		return fmt.Errorf("APP_TIMEZONE is invalid: %w", err)
	}
	if c.Storage.Type != "local" {
		return fmt.Errorf("STORAGE_TYPE must be local")
	}
	if c.Ledger.MaxEditableHours <= 0 || c.Ledger.MaxEditableHours > 24 {
		return fmt.Errorf("LEDGER_MAX_EDITABLE_HOURS must be between 1 and 24")
	}
	if c.Ledger.SyncRetries <= 0 {
		return fmt.Errorf("LEDGER_SYNC_RETRIES must be positive")
	}
	if c.Cron.SweepInterval < time.Minute {
		return fmt.Errorf("CRON_SWEEP_INTERVAL must be at least 1m")
	}
	return nil
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// parser keeps the first conversion error so Load can report it once.
type parser struct {
	err error
}

func (p *parser) integer(key string, fallback int) int {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil && p.err == nil {
		p.err = fmt.Errorf("invalid %s: %w", key, err)
	}
	return v
}

func (p *parser) number(key string, fallback float64) float64 {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil && p.err == nil {
		p.err = fmt.Errorf("invalid %s: %w", key, err)
	}
	return v
}

func (p *parser) duration(key string, fallback time.Duration) time.Duration {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback
	}
	v, err := time.ParseDuration(raw)
	if err != nil && p.err == nil {
		p.err = fmt.Errorf("invalid %s: %w", key, err)
	}
	return v
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvSlice(env string) []string {
	value := getEnv(env, "")
	if value == "" {
		return []string{}
	}
	parts := strings.Split(value, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

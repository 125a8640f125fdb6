package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"
)

// Config holds the application configuration.
type Config struct {
	AppAddr          string
	DBDriver         string // sqlite, postgres or memory
	DBDSN            string
	JWTSecret        string
	JWTIssuer        string
	JWTTTL           time.Duration
	BcryptCost       int
	RabbitMQURL      string // empty disables event publishing
	RabbitMQExchange string
	LogLevel         logrus.Level

	// GeneratedSecret is set when no JWT_SECRET was configured and a random one was used.
	GeneratedSecret bool
}

// DriverMemory keeps both stores in process memory; nothing survives a restart.
const DriverMemory = "memory"

// Load reads configuration from an optional .env file and the environment.
func Load() (Config, error) {
	_ = godotenv.Load() // .env is optional
	return FromViper(viper.New())
}

// FromViper builds a Config from v after registering defaults and environment binding.
func FromViper(v *viper.Viper) (Config, error) {
	v.SetDefault("APP_ADDR", "127.0.0.1:8080")
	v.SetDefault("DB_DRIVER", "sqlite")
	v.SetDefault("DB_DSN", "expense_tracker.db")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("JWT_ISSUER", "expensebuddy")
	v.SetDefault("JWT_TTL", "24h")
	v.SetDefault("BCRYPT_COST", bcrypt.DefaultCost)
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("RABBITMQ_EXCHANGE", "transaction_events")
	v.SetDefault("LOG_LEVEL", "info")
	v.AutomaticEnv()

	cfg := Config{
		AppAddr:          strings.TrimSpace(v.GetString("APP_ADDR")),
		DBDriver:         strings.ToLower(strings.TrimSpace(v.GetString("DB_DRIVER"))),
		DBDSN:            strings.TrimSpace(v.GetString("DB_DSN")),
		JWTSecret:        strings.TrimSpace(v.GetString("JWT_SECRET")),
		JWTIssuer:        strings.TrimSpace(v.GetString("JWT_ISSUER")),
		JWTTTL:           v.GetDuration("JWT_TTL"),
		BcryptCost:       v.GetInt("BCRYPT_COST"),
		RabbitMQURL:      strings.TrimSpace(v.GetString("RABBITMQ_URL")),
		RabbitMQExchange: strings.TrimSpace(v.GetString("RABBITMQ_EXCHANGE")),
	}

	level, err := logrus.ParseLevel(v.GetString("LOG_LEVEL"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}
	cfg.LogLevel = level

	switch cfg.DBDriver {
	case "sqlite", "postgres", DriverMemory:
	default:
		return Config{}, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}
	if cfg.DBDriver != DriverMemory && cfg.DBDSN == "" {
		return Config{}, fmt.Errorf("DB_DSN is required for driver %s", cfg.DBDriver)
	}
	if cfg.JWTTTL <= 0 {
		return Config{}, fmt.Errorf("JWT_TTL must be positive, got %s", cfg.JWTTTL)
	}
	if cfg.BcryptCost < bcrypt.MinCost || cfg.BcryptCost > bcrypt.MaxCost {
		return Config{}, fmt.Errorf("BCRYPT_COST must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = uuid.NewString()
		cfg.GeneratedSecret = true
	}

	return cfg, nil
}

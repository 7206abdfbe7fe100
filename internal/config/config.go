package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds all configuration for our application
type Config struct {
	Server    ServerConfig    `mapstructure:",squash"`
	Database  DatabaseConfig  `mapstructure:",squash"`
	Redis     RedisConfig     `mapstructure:",squash"`
	Scheduler SchedulerConfig `mapstructure:",squash"`
	Business  BusinessConfig  `mapstructure:",squash"`
}

type ServerConfig struct {
	Port         string        `mapstructure:"SERVER_PORT"`
	Host         string        `mapstructure:"SERVER_HOST"`
	Env          string        `mapstructure:"ENV"`
	ReadTimeout  time.Duration `mapstructure:"SERVER_READ_TIMEOUT"`
	WriteTimeout time.Duration `mapstructure:"SERVER_WRITE_TIMEOUT"`
}

type DatabaseConfig struct {
	Host            string        `mapstructure:"DATABASE_HOST"`
	Port            string        `mapstructure:"DATABASE_PORT"`
	Name            string        `mapstructure:"DATABASE_NAME"`
	User            string        `mapstructure:"DATABASE_USER"`
	Password        string        `mapstructure:"DATABASE_PASSWORD"`
	SSLMode         string        `mapstructure:"DATABASE_SSLMODE"`
	MaxOpenConns    int           `mapstructure:"DATABASE_MAX_OPEN_CONNS"`
	MaxIdleConns    int           `mapstructure:"DATABASE_MAX_IDLE_CONNS"`
	ConnMaxLifetime time.Duration `mapstructure:"DATABASE_CONN_MAX_LIFETIME"`
}

type RedisConfig struct {
	Host     string `mapstructure:"REDIS_HOST"`
	Port     string `mapstructure:"REDIS_PORT"`
	Password string `mapstructure:"REDIS_PASSWORD"`
	DB       int    `mapstructure:"REDIS_DB"`
}

type SchedulerConfig struct {
	ReminderSpec string `mapstructure:"SCHEDULER_REMINDER_SPEC"`
	Timezone     string `mapstructure:"SCHEDULER_TIMEZONE"`
}

// BusinessConfig carries the economic policy of the loan engine. The values
// feed an immutable engine.Policy so tests can vary policy without touching
// the allocation logic.
type BusinessConfig struct {
	DailyAdjustmentRate  string        `mapstructure:"DAILY_ADJUSTMENT_RATE"`
	PaymentHorizonMonths int           `mapstructure:"PAYMENT_HORIZON_MONTHS"`
	AllowedInstallments  string        `mapstructure:"ALLOWED_INSTALLMENTS"`
	MinInterestRate      string        `mapstructure:"MIN_INTEREST_RATE"`
	MaxInterestRate      string        `mapstructure:"MAX_INTEREST_RATE"`
	LoanCacheTTL         time.Duration `mapstructure:"LOAN_CACHE_TTL"`
}

// Load reads configuration from environment variables and files
func Load() (*Config, error) {
	// Set defaults
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("SERVER_HOST", "0.0.0.0")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("SERVER_READ_TIMEOUT", "15s")
	viper.SetDefault("SERVER_WRITE_TIMEOUT", "15s")
	viper.SetDefault("DATABASE_HOST", "localhost")
	viper.SetDefault("DATABASE_PORT", "5432")
	viper.SetDefault("DATABASE_NAME", "credit_module")
	viper.SetDefault("DATABASE_USER", "postgres")
	viper.SetDefault("DATABASE_PASSWORD", "postgres")
	viper.SetDefault("DATABASE_SSLMODE", "disable")
	viper.SetDefault("DATABASE_MAX_OPEN_CONNS", 25)
	viper.SetDefault("DATABASE_MAX_IDLE_CONNS", 5)
	viper.SetDefault("DATABASE_CONN_MAX_LIFETIME", "5m")
	viper.SetDefault("REDIS_HOST", "localhost")
	viper.SetDefault("REDIS_PORT", "6379")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("SCHEDULER_REMINDER_SPEC", "0 0 9 * * *")
	viper.SetDefault("SCHEDULER_TIMEZONE", "UTC")
	viper.SetDefault("DAILY_ADJUSTMENT_RATE", "0.001")
	viper.SetDefault("PAYMENT_HORIZON_MONTHS", 3)
	viper.SetDefault("ALLOWED_INSTALLMENTS", "6,9,12,24")
	viper.SetDefault("MIN_INTEREST_RATE", "0.1")
	viper.SetDefault("MAX_INTEREST_RATE", "0.5")
	viper.SetDefault("LOAN_CACHE_TTL", "10m")

	// Read from environment variables
	viper.AutomaticEnv()

	// Try to read from .env file (optional)
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./deployments")

	// Don't fail if .env file doesn't exist
	_ = viper.ReadInConfig()

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Validate configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("SERVER_PORT is required")
	}

	if c.Database.Host == "" || c.Database.Name == "" {
		return fmt.Errorf("DATABASE_HOST and DATABASE_NAME are required")
	}

	if c.Business.PaymentHorizonMonths <= 0 {
		return fmt.Errorf("PAYMENT_HORIZON_MONTHS must be greater than 0")
	}

	rate, err := decimal.NewFromString(c.Business.DailyAdjustmentRate)
	if err != nil {
		return fmt.Errorf("DAILY_ADJUSTMENT_RATE must be a valid decimal: %w", err)
	}
	if rate.IsNegative() {
		return fmt.Errorf("DAILY_ADJUSTMENT_RATE must not be negative")
	}

	if _, err := decimal.NewFromString(c.Business.MinInterestRate); err != nil {
		return fmt.Errorf("MIN_INTEREST_RATE must be a valid decimal: %w", err)
	}
	if _, err := decimal.NewFromString(c.Business.MaxInterestRate); err != nil {
		return fmt.Errorf("MAX_INTEREST_RATE must be a valid decimal: %w", err)
	}

	if _, err := c.GetAllowedInstallments(); err != nil {
		return err
	}

	return nil
}

// IsDevelopment returns true if running in development environment
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development" || c.Server.Env == "dev"
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production" || c.Server.Env == "prod"
}

// DSN returns the Postgres connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode)
}

// GetDailyAdjustmentRate returns the daily discount/penalty rate as decimal
func (c *Config) GetDailyAdjustmentRate() decimal.Decimal {
	rate, _ := decimal.NewFromString(c.Business.DailyAdjustmentRate)
	return rate
}

// GetMinInterestRate returns the minimum allowed interest rate as decimal
func (c *Config) GetMinInterestRate() decimal.Decimal {
	rate, _ := decimal.NewFromString(c.Business.MinInterestRate)
	return rate
}

// GetMaxInterestRate returns the maximum allowed interest rate as decimal
func (c *Config) GetMaxInterestRate() decimal.Decimal {
	rate, _ := decimal.NewFromString(c.Business.MaxInterestRate)
	return rate
}

// GetAllowedInstallments parses the comma-separated installment options
func (c *Config) GetAllowedInstallments() ([]int, error) {
	parts := strings.Split(c.Business.AllowedInstallments, ",")
	counts := make([]int, 0, len(parts))
	for _, part := range parts {
		count, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || count <= 0 {
			return nil, fmt.Errorf("ALLOWED_INSTALLMENTS must be a comma-separated list of positive integers, got %q", c.Business.AllowedInstallments)
		}
		counts = append(counts, count)
	}
	return counts, nil
}

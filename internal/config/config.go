package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"github.com/nagnet2050/quick-sale-hr/internal/domain/payroll"
)

type Config struct {
	Database DatabaseConfig
	JWT      JWTConfig
	App      AppConfig
	Payroll  payroll.Config
	// AutoGenerate turns on the scheduled batch job for the current
	// month. Off by default.
	AutoGenerate bool
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret           string
	AccessExpiration string
}

// AppConfig holds application configuration
type AppConfig struct {
	Port     int
	Env      string
	LogLevel string
}

func Load() (*Config, error) {
	// A missing .env is fine; the environment may carry everything.
	_ = godotenv.Load()

	config := &Config{}

	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	config.Database = DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     dbPort,
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "quick-sale-hr"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
	}

	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	config.App = AppConfig{
		Port:     appPort,
		Env:      getEnv("APP_ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	config.JWT = JWTConfig{
		Secret:           getEnv("JWT_SECRET_KEY", ""),
		AccessExpiration: getEnv("JWT_ACCESS_EXPIRATION_TIME", "1h"),
	}

	config.Payroll = loadPayrollConfig()
	config.AutoGenerate = getEnvBool("PAYROLL_AUTO_GENERATE", false)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// loadPayrollConfig reads the payroll rule knobs, falling back to the
// documented defaults for anything unset or unparseable.
func loadPayrollConfig() payroll.Config {
	cfg := payroll.DefaultConfig()

	cfg.TaxRate = getEnvDecimal("PAYROLL_TAX_RATE", cfg.TaxRate)
	cfg.InsuranceRate = getEnvDecimal("PAYROLL_INSURANCE_RATE", cfg.InsuranceRate)
	cfg.HealthInsuranceRate = getEnvDecimal("PAYROLL_HEALTH_INSURANCE_RATE", cfg.HealthInsuranceRate)
	cfg.TaxExemptLimit = getEnvDecimal("PAYROLL_TAX_EXEMPT_LIMIT", cfg.TaxExemptLimit)
	cfg.AbsenceDeductionRate = getEnvDecimal("PAYROLL_ABSENCE_DEDUCTION_RATE", cfg.AbsenceDeductionRate)
	cfg.LateDeductionPerHour = getEnvDecimal("PAYROLL_LATE_DEDUCTION_PER_HOUR", cfg.LateDeductionPerHour)
	cfg.OvertimeRate = getEnvDecimal("PAYROLL_OVERTIME_RATE", cfg.OvertimeRate)
	cfg.AutoLoanDeduction = getEnvBool("PAYROLL_AUTO_LOAN_DEDUCTION", cfg.AutoLoanDeduction)
	cfg.WorkDays = getEnv("WORK_DAYS", cfg.WorkDays)
	cfg.WorkStart = getEnv("WORK_START", cfg.WorkStart)

	return cfg
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
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

func getEnvDecimal(key string, fallback decimal.Decimal) decimal.Decimal {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := decimal.NewFromString(value)
	if err != nil {
		return fallback
	}
	return parsed
}

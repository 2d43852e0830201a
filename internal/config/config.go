package config

import (
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds all configuration for our application
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Scheduler SchedulerConfig
	Logging   LoggingConfig
	Business  BusinessConfig
}

type ServerConfig struct {
	Port         string
	Host         string
	Env          string
	ReadTimeout  string
	WriteTimeout string
}

type DatabaseConfig struct {
	Driver          string // postgres, mysql or sqlite
	URL             string
	Host            string
	Port            string
	Name            string
	User            string
	Password        string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime string
}

type RedisConfig struct {
	Host           string
	Port           string
	Password       string
	DB             int
	CacheTTL       string
	IdempotencyTTL string
}

type SchedulerConfig struct {
	OverdueCron string
	Timezone    string
}

type LoggingConfig struct {
	Level string
}

type BusinessConfig struct {
	MarkupRate       string
	DefaultLoanWeeks int
}

// CronParser accepts the six-field specs (seconds first) the scheduler runs with.
var CronParser = cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

var drivers = map[string]bool{"postgres": true, "mysql": true, "sqlite": true}

// Load reads configuration from environment variables, after loading an
// optional .env file into the environment.
func Load() (*Config, error) {
	// Don't fail if .env file doesn't exist
	_ = godotenv.Load()

	return FromViper(newViper())
}

func newViper() *viper.Viper {
	v := viper.New()

	// Set defaults
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("ENV", "development")
	v.SetDefault("SERVER_READ_TIMEOUT", "15s")
	v.SetDefault("SERVER_WRITE_TIMEOUT", "15s")
	v.SetDefault("DATABASE_DRIVER", "postgres")
	v.SetDefault("DATABASE_HOST", "localhost")
	v.SetDefault("DATABASE_PORT", "5432")
	v.SetDefault("DATABASE_NAME", "ledger")
	v.SetDefault("DATABASE_USER", "ledger")
	v.SetDefault("DATABASE_PASSWORD", "")
	v.SetDefault("DATABASE_MAX_OPEN_CONNS", 25)
	v.SetDefault("DATABASE_MAX_IDLE_CONNS", 5)
	v.SetDefault("DATABASE_CONN_MAX_LIFETIME", "30m")
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("CACHE_TTL", "5m")
	v.SetDefault("IDEMPOTENCY_TTL", "24h")
	v.SetDefault("SCHEDULER_OVERDUE_CRON", "0 0 6 * * *")
	v.SetDefault("SCHEDULER_TIMEZONE", "UTC")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOAN_MARKUP_RATE", "0.30")
	v.SetDefault("DEFAULT_LOAN_WEEKS", 13)

	// Read from environment variables
	v.AutomaticEnv()

	return v
}

// FromViper builds and validates a Config from the keys held by v.
func FromViper(v *viper.Viper) (*Config, error) {
	config := &Config{
		Server: ServerConfig{
			Port:         v.GetString("SERVER_PORT"),
			Host:         v.GetString("SERVER_HOST"),
			Env:          v.GetString("ENV"),
			ReadTimeout:  v.GetString("SERVER_READ_TIMEOUT"),
			WriteTimeout: v.GetString("SERVER_WRITE_TIMEOUT"),
		},
		Database: DatabaseConfig{
			Driver:          strings.ToLower(v.GetString("DATABASE_DRIVER")),
			URL:             v.GetString("DATABASE_URL"),
			Host:            v.GetString("DATABASE_HOST"),
			Port:            v.GetString("DATABASE_PORT"),
			Name:            v.GetString("DATABASE_NAME"),
			User:            v.GetString("DATABASE_USER"),
			Password:        v.GetString("DATABASE_PASSWORD"),
			MaxOpenConns:    v.GetInt("DATABASE_MAX_OPEN_CONNS"),
			MaxIdleConns:    v.GetInt("DATABASE_MAX_IDLE_CONNS"),
			ConnMaxLifetime: v.GetString("DATABASE_CONN_MAX_LIFETIME"),
		},
		Redis: RedisConfig{
			Host:           v.GetString("REDIS_HOST"),
			Port:           v.GetString("REDIS_PORT"),
			Password:       v.GetString("REDIS_PASSWORD"),
			DB:             v.GetInt("REDIS_DB"),
			CacheTTL:       v.GetString("CACHE_TTL"),
			IdempotencyTTL: v.GetString("IDEMPOTENCY_TTL"),
		},
		Scheduler: SchedulerConfig{
			OverdueCron: v.GetString("SCHEDULER_OVERDUE_CRON"),
			Timezone:    v.GetString("SCHEDULER_TIMEZONE"),
		},
		Logging: LoggingConfig{
			Level: v.GetString("LOG_LEVEL"),
		},
		Business: BusinessConfig{
			MarkupRate:       v.GetString("LOAN_MARKUP_RATE"),
			DefaultLoanWeeks: v.GetInt("DEFAULT_LOAN_WEEKS"),
		},
	}

	// Validate configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("SERVER_PORT is required")
	}

	if !drivers[c.Database.Driver] {
		return fmt.Errorf("DATABASE_DRIVER must be one of postgres, mysql, sqlite: got %q", c.Database.Driver)
	}

	if c.Database.URL == "" && c.Database.Driver != "sqlite" && c.Database.Host == "" {
		return fmt.Errorf("DATABASE_URL or DATABASE_HOST is required")
	}

	if c.Business.DefaultLoanWeeks <= 0 {
		return fmt.Errorf("DEFAULT_LOAN_WEEKS must be greater than 0")
	}

	markup, err := decimal.NewFromString(c.Business.MarkupRate)
	if err != nil {
		return fmt.Errorf("LOAN_MARKUP_RATE must be a valid decimal: %w", err)
	}
	if markup.IsNegative() {
		return fmt.Errorf("LOAN_MARKUP_RATE must not be negative")
	}

	durations := map[string]string{
		"SERVER_READ_TIMEOUT":        c.Server.ReadTimeout,
		"SERVER_WRITE_TIMEOUT":       c.Server.WriteTimeout,
		"DATABASE_CONN_MAX_LIFETIME": c.Database.ConnMaxLifetime,
		"CACHE_TTL":                  c.Redis.CacheTTL,
		"IDEMPOTENCY_TTL":            c.Redis.IdempotencyTTL,
	}
	for key, val := range durations {
		if _, err := time.ParseDuration(val); err != nil {
			return fmt.Errorf("%s must be a valid duration: %w", key, err)
		}
	}

	if _, err := time.LoadLocation(c.Scheduler.Timezone); err != nil {
		return fmt.Errorf("SCHEDULER_TIMEZONE must be a valid location: %w", err)
	}

	if _, err := CronParser.Parse(c.Scheduler.OverdueCron); err != nil {
		return fmt.Errorf("SCHEDULER_OVERDUE_CRON must be a six-field cron spec: %w", err)
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

// Addr is the listen address of the HTTP server.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Server.Host, c.Server.Port)
}

// DSN returns DATABASE_URL when set, otherwise builds one for the driver.
func (c *DatabaseConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	switch c.Driver {
	case "mysql":
		// parseTime needed for DATETIME
		return fmt.Sprintf("%s:%s@tcp(%s)/%s?parseTime=true&loc=UTC&charset=utf8mb4",
			c.User, c.Password, net.JoinHostPort(c.Host, c.Port), c.Name)
	case "sqlite":
		return "file:" + c.Name + ".db?_foreign_keys=on"
	default:
		return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
			c.Host, c.Port, c.User, c.Password, c.Name)
	}
}

// GetMarkupRate returns the loan markup as decimal
func (c *Config) GetMarkupRate() decimal.Decimal {
	rate, _ := decimal.NewFromString(c.Business.MarkupRate)
	return rate
}

func (c *Config) GetReadTimeout() time.Duration { return mustDuration(c.Server.ReadTimeout) }

func (c *Config) GetWriteTimeout() time.Duration { return mustDuration(c.Server.WriteTimeout) }

func (c *Config) GetConnMaxLifetime() time.Duration { return mustDuration(c.Database.ConnMaxLifetime) }

func (c *Config) GetCacheTTL() time.Duration { return mustDuration(c.Redis.CacheTTL) }

func (c *Config) GetIdempotencyTTL() time.Duration { return mustDuration(c.Redis.IdempotencyTTL) }

// GetSchedulerLocation returns the timezone cron schedules run in
func (c *Config) GetSchedulerLocation() *time.Location {
	loc, err := time.LoadLocation(c.Scheduler.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// RedisAddr returns host:port of the redis server
func (c *Config) RedisAddr() string {
	return net.JoinHostPort(c.Redis.Host, c.Redis.Port)
}

// durations are checked by Validate
func mustDuration(s string) time.Duration {
	d, _ := time.ParseDuration(s)
	return d
}

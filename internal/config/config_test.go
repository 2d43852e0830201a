package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromViper_Defaults(t *testing.T) {
	cfg, err := FromViper(newViper())

	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, 13, cfg.Business.DefaultLoanWeeks)
	assert.Equal(t, "0.3", cfg.GetMarkupRate().String())
	assert.Equal(t, 5*time.Minute, cfg.GetCacheTTL())
	assert.Equal(t, 24*time.Hour, cfg.GetIdempotencyTTL())
	assert.Equal(t, time.UTC, cfg.GetSchedulerLocation())
	assert.Equal(t, "0.0.0.0:8080", cfg.Addr())
	assert.Equal(t, "localhost:6379", cfg.RedisAddr())
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("DATABASE_DRIVER", "MySQL")
	t.Setenv("DEFAULT_LOAN_WEEKS", "20")
	t.Setenv("LOAN_MARKUP_RATE", "0.25")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "mysql", cfg.Database.Driver)
	assert.Equal(t, 20, cfg.Business.DefaultLoanWeeks)
	assert.Equal(t, "0.25", cfg.GetMarkupRate().String())
}

func TestFromViper_Invalid(t *testing.T) {
	tests := []struct {
		name          string
		key           string
		value         interface{}
		errorContains string
	}{
		{name: "missing port", key: "SERVER_PORT", value: "", errorContains: "SERVER_PORT is required"},
		{name: "unknown driver", key: "DATABASE_DRIVER", value: "oracle", errorContains: "DATABASE_DRIVER"},
		{name: "zero weeks", key: "DEFAULT_LOAN_WEEKS", value: 0, errorContains: "DEFAULT_LOAN_WEEKS"},
		{name: "bad markup", key: "LOAN_MARKUP_RATE", value: "thirty", errorContains: "LOAN_MARKUP_RATE"},
		{name: "negative markup", key: "LOAN_MARKUP_RATE", value: "-0.1", errorContains: "LOAN_MARKUP_RATE"},
		{name: "bad ttl", key: "CACHE_TTL", value: "soon", errorContains: "CACHE_TTL"},
		{name: "bad timezone", key: "SCHEDULER_TIMEZONE", value: "Mars/Olympus", errorContains: "SCHEDULER_TIMEZONE"},
		{name: "five-field cron", key: "SCHEDULER_OVERDUE_CRON", value: "0 6 * * *", errorContains: "SCHEDULER_OVERDUE_CRON"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := newViper()
			v.Set(tt.key, tt.value)

			_, err := FromViper(v)

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errorContains)
		})
	}
}

func TestDatabaseConfig_DSN(t *testing.T) {
	tests := []struct {
		name     string
		cfg      DatabaseConfig
		expected string
	}{
		{
			name:     "explicit url wins",
			cfg:      DatabaseConfig{Driver: "postgres", URL: "postgres://u:p@db/ledger"},
			expected: "postgres://u:p@db/ledger",
		},
		{
			name:     "postgres",
			cfg:      DatabaseConfig{Driver: "postgres", Host: "db", Port: "5432", User: "u", Password: "p", Name: "ledger"},
			expected: "host=db port=5432 user=u password=p dbname=ledger sslmode=disable",
		},
		{
			name:     "mysql",
			cfg:      DatabaseConfig{Driver: "mysql", Host: "db", Port: "3306", User: "u", Password: "p", Name: "ledger"},
			expected: "u:p@tcp(db:3306)/ledger?parseTime=true&loc=UTC&charset=utf8mb4",
		},
		{
			name:     "sqlite",
			cfg:      DatabaseConfig{Driver: "sqlite", Name: "ledger"},
			expected: "file:ledger.db?_foreign_keys=on",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.cfg.DSN())
		})
	}
}

func TestConfig_Env(t *testing.T) {
	cfg := &Config{Server: ServerConfig{Env: "prod"}}

	assert.True(t, cfg.IsProduction())
	assert.False(t, cfg.IsDevelopment())
}

// internal/common/config/config.go
package config

import (
	"fmt"
	"time"
)

// Config is the main application configuration struct.
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	APIs     APIsConfig     `mapstructure:"apis"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment" validate:"required"`
}

// IsProduction reports whether raw error details must be hidden from callers.
func (a AppConfig) IsProduction() bool {
	return a.Environment == "production"
}

type ServerConfig struct {
	Port            int    `mapstructure:"port" validate:"min=1,max=65535"`
	ReadTimeout     int    `mapstructure:"read_timeout"`     // milliseconds
	WriteTimeout    int    `mapstructure:"write_timeout"`    // milliseconds
	ShutdownTimeout int    `mapstructure:"shutdown_timeout"` // milliseconds
	AllowedOrigin   string `mapstructure:"allowed_origin" validate:"required"`
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf(":%d", s.Port)
}

type DatabaseConfig struct {
	Postgres PostgresConfig `mapstructure:"postgres"`
	Redis    RedisConfig    `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host" validate:"required"`
	Port           int    `mapstructure:"port" validate:"min=1,max=65535"`
	Database       string `mapstructure:"database" validate:"required"`
	User           string `mapstructure:"user" validate:"required"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections" validate:"min=1"`
	MaxIdle        int    `mapstructure:"max_idle" validate:"min=0"`
	SSLMode        string `mapstructure:"sslmode" validate:"oneof=disable require verify-ca verify-full"`
	QueryTimeout   int    `mapstructure:"query_timeout"` // milliseconds
	ConnectRetries int    `mapstructure:"connect_retries"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

// RedisConfig configures the intent cache. An empty address disables it.
type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Enabled reports whether a cache backend was configured.
func (r RedisConfig) Enabled() bool {
	return r.Address != ""
}

// APIsConfig holds settings for external API integrations.
type APIsConfig struct {
	GenAI GenAIConfig `mapstructure:"genai"`
}

type GenAIConfig struct {
	APIKey          string  `mapstructure:"api_key"`
	Model           string  `mapstructure:"model" validate:"required"`
	BaseURL         string  `mapstructure:"base_url"`
	Timeout         int     `mapstructure:"timeout"` // milliseconds
	Temperature     float32 `mapstructure:"temperature" validate:"gte=0,lte=2"`
	MaxOutputTokens int32   `mapstructure:"max_output_tokens" validate:"min=1"`
}

// Configured reports whether an API key is present.
func (g GenAIConfig) Configured() bool {
	return g.APIKey != ""
}

type CacheConfig struct {
	IntentTTL int `mapstructure:"intent_ttl"` // milliseconds
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"oneof=json console"`
}

// GetDuration converts milliseconds from config to time.Duration
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}

// Package config provides configuration for the assistant service.
package config

import (
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/viper"
)

// Config holds the service configuration.
type Config struct {
	// Server settings
	HTTPPort int

	// Storage
	DatabaseURL string
	RecordStore string // memory, sqlite or redis
	RedisAddr   string
	RedisTTL    time.Duration

	// Generation backend
	LLMProvider string
	LLMBaseURL  string
	LLMAPIKey   string
	LLMModel    string
	LLMTimeout  time.Duration

	// Quota
	DailyLimit       int
	WarningThreshold int
	Timezone         string

	// Auth settings
	APIKey string // Static API key for hello.api_key validation

	// WebSocket settings
	PingInterval   time.Duration
	WriteTimeout   time.Duration
	ReadTimeout    time.Duration
	MaxMessageSize int64

	// Logging
	LogLevel string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("HTTP_PORT", 8080)
	v.SetDefault("DATABASE_URL", "file:asksarkar.db?cache=shared&mode=rwc")
	v.SetDefault("RECORD_STORE", "sqlite")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_TTL_MS", 0)
	v.SetDefault("LLM_PROVIDER", "gemini")
	v.SetDefault("LLM_BASE_URL", "")
	v.SetDefault("LLM_API_KEY", "")
	v.SetDefault("LLM_MODEL", "")
	v.SetDefault("LLM_TIMEOUT_MS", 60000)
	v.SetDefault("DAILY_LIMIT", 50)
	v.SetDefault("WARNING_THRESHOLD", 40)
	v.SetDefault("TIMEZONE", "Local")
	v.SetDefault("API_KEY", "")
	v.SetDefault("WS_PING_INTERVAL_MS", 30000)
	v.SetDefault("WS_WRITE_TIMEOUT_MS", 10000)
	v.SetDefault("WS_READ_TIMEOUT_MS", 60000)
	v.SetDefault("WS_MAX_MESSAGE_SIZE", 65536)
	v.SetDefault("LOG_LEVEL", "info")
}

// Load loads configuration from environment variables.
func Load() *Config {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	return &Config{
		HTTPPort:         v.GetInt("HTTP_PORT"),
		DatabaseURL:      v.GetString("DATABASE_URL"),
		RecordStore:      v.GetString("RECORD_STORE"),
		RedisAddr:        v.GetString("REDIS_ADDR"),
		RedisTTL:         millis(v, "REDIS_TTL_MS"),
		LLMProvider:      v.GetString("LLM_PROVIDER"),
		LLMBaseURL:       v.GetString("LLM_BASE_URL"),
		LLMAPIKey:        v.GetString("LLM_API_KEY"),
		LLMModel:         v.GetString("LLM_MODEL"),
		LLMTimeout:       millis(v, "LLM_TIMEOUT_MS"),
		DailyLimit:       v.GetInt("DAILY_LIMIT"),
		WarningThreshold: v.GetInt("WARNING_THRESHOLD"),
		Timezone:         v.GetString("TIMEZONE"),
		APIKey:           v.GetString("API_KEY"),
		PingInterval:     millis(v, "WS_PING_INTERVAL_MS"),
		WriteTimeout:     millis(v, "WS_WRITE_TIMEOUT_MS"),
		ReadTimeout:      millis(v, "WS_READ_TIMEOUT_MS"),
		MaxMessageSize:   v.GetInt64("WS_MAX_MESSAGE_SIZE"),
		LogLevel:         v.GetString("LOG_LEVEL"),
	}
}

func millis(v *viper.Viper, key string) time.Duration {
	return time.Duration(v.GetInt(key)) * time.Millisecond
}

// Location resolves the configured time zone used for the daily reset.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// Level parses LogLevel, defaulting to info.
func (c *Config) Level() log.Level {
	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		return log.InfoLevel
	}
	return level
}

// Package config provides application configuration.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	BotToken   string
	AdminUsers []string
	ProxyHost  string
	ProxyPort  string
	DBPath     string
	HTTPPort   string
	SessionTTL time.Duration
	Redis      RedisConfig
}

// RedisConfig controls the optional Redis session backend.
// When Addr is empty, sessions are kept in process memory.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		BotToken:   getEnv("BOT_TOKEN", ""),
		AdminUsers: splitList(getEnv("ADMIN_USERS", "")),
		ProxyHost:  getEnv("PROXY_HOST", ""),
		ProxyPort:  getEnv("PROXY_PORT", "1080"),
		DBPath:     getEnv("DB_PATH", "./data/proxybot.db"),
		HTTPPort:   getEnv("HTTP_PORT", "8080"),
		SessionTTL: getEnvDuration("SESSION_TTL", 24*time.Hour),
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required configuration fields are set.
func (c *Config) Validate() error {
	if c.BotToken == "" {
		return fmt.Errorf("BOT_TOKEN cannot be empty")
	}
	if len(c.AdminUsers) == 0 {
		return fmt.Errorf("ADMIN_USERS cannot be empty")
	}
	if c.ProxyHost == "" {
		return fmt.Errorf("PROXY_HOST cannot be empty")
	}
	if c.DBPath == "" {
		return fmt.Errorf("DB_PATH cannot be empty")
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be > 0")
	}
	return nil
}

// UseRedisSessions returns true if sessions should be stored in Redis.
func (c *Config) UseRedisSessions() bool {
	return c.Redis.Addr != ""
}

func splitList(value string) []string {
	var out []string
	for _, item := range strings.Split(value, ",") {
		item = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(item), "@"))
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return n
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	d, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return d
}

package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config 应用配置，全部来自环境变量（可由 .env 提供）
type Config struct {
	Port        string
	DBDriver    string
	DatabaseURL string
	JWTSecret   string
	TokenTTL    time.Duration
	CacheTTL    time.Duration
	CacheSize   int
	LogLevel    string
	GinMode     string
	CORSOrigins []string
}

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Load 读取 .env 与环境变量
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, finding env vars from system")
	}

	return &Config{
		Port:        getEnv("PORT", "8080"),
		DBDriver:    getEnv("DB_DRIVER", DriverPostgres),
		DatabaseURL: getEnv("DATABASE_URL", "host=localhost user=postgres password=postgres dbname=postboard port=5432 sslmode=disable TimeZone=UTC"),
		JWTSecret:   getEnv("JWT_SECRET", ""),
		TokenTTL:    getEnvAsDuration("TOKEN_TTL", time.Hour),
		CacheTTL:    getEnvAsDuration("CACHE_TTL", 30*time.Second),
		CacheSize:   getEnvAsInt("CACHE_SIZE", 500),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		GinMode:     getEnv("GIN_MODE", "release"),
		CORSOrigins: splitList(getEnv("CORS_ORIGINS", "*")),
	}
}

// Validate 检查必填项
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is not set")
	}
	if c.DBDriver != DriverPostgres && c.DBDriver != DriverSQLite {
		return fmt.Errorf("unknown DB_DRIVER %q", c.DBDriver)
	}
	if c.TokenTTL <= 0 {
		return errors.New("TOKEN_TTL must be positive")
	}
	if c.CacheTTL <= 0 {
		return errors.New("CACHE_TTL must be positive")
	}
	if c.CacheSize <= 0 {
		return errors.New("CACHE_SIZE must be positive")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultVal int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultVal
}

func getEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultVal
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

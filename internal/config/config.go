package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

var AppEnv Config

type Config struct {
	Port           string
	StoreBackend   string // redis | mongo | memory
	RedisAddr      string
	MongoURI       string
	DBName         string
	JWTSecret      string
	AccessTokenTTL time.Duration
	SessionIdleTTL time.Duration
	CatalogPath    string
	PageSize       int
	ShippingFee    decimal.Decimal
	ExchangeRate   decimal.Decimal
	DemoOTP        string
}

func Load() {
	if err := godotenv.Load(); err != nil {
		log.Println(".env not loaded:", err)
	}
	AppEnv = Config{
		Port:           getEnvOrDefault("PORT", "8080"),
		StoreBackend:   getEnvOrDefault("STORE_BACKEND", "redis"),
		RedisAddr:      getEnvOrDefault("REDIS_ADDR", "localhost:6379"),
		MongoURI:       getEnvOrDefault("MONGO_URI", ""),
		DBName:         getEnvOrDefault("DB_NAME", "clothfit"),
		JWTSecret:      getEnvOrDefault("JWT_SECRET", ""),
		AccessTokenTTL: getDurationEnv("ACCESS_TOKEN_TTL", 60, time.Minute),
		SessionIdleTTL: getDurationEnv("SESSION_IDLE_TTL", 30, time.Minute),
		CatalogPath:    getEnvOrDefault("CATALOG_PATH", "catalog.json"),
		PageSize:       getIntEnv("PAGE_SIZE", 12),
		ShippingFee:    getDecimalEnv("SHIPPING_FEE", "50.00"),
		ExchangeRate:   getDecimalEnv("EXCHANGE_RATE", "83"),
		DemoOTP:        getEnvOrDefault("DEMO_OTP", "123456"),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil && parsed > 0 {
			return parsed
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue int, unit time.Duration) time.Duration {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil && parsed > 0 {
			return time.Duration(parsed) * unit
		}
	}
	return time.Duration(defaultValue) * unit
}

func getDecimalEnv(key, defaultValue string) decimal.Decimal {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		if parsed, err := decimal.NewFromString(value); err == nil && parsed.IsPositive() {
			return parsed
		}
	}
	parsed, err := decimal.NewFromString(defaultValue)
	if err != nil {
		log.Fatalf("invalid default for %s: %v", key, err)
	}
	return parsed
}

package config

import (
	"os"
	"strings"
	"time"
)

type Config struct {
	HTTPAddr string
	DataFile string

	// Fonte da verdade remota (planilha via API HTTP).
	ExternalInventoryURL       string
	ExternalProductsURL        string
	ExternalOrdersURL          string
	ExternalOrderUpdateURL     string
	ExternalOrderDeleteURL     string
	ExternalInventoryUpdateURL string
	ExternalAPIKey             string
	ExternalCacheTTL           time.Duration
	ExternalTimeout            time.Duration

	WebhookURL     string
	WebhookSecret  string
	WebhookTimeout time.Duration

	RedisAddr    string
	KafkaBrokers []string
	KafkaTopic   string

	ServiceName string
	LogLevel    string
	LogFormat   string
}

func Load() Config {
	return Config{
		HTTPAddr: getenv("HTTP_ADDR", ":8080"),
		DataFile: getenv("DATA_FILE", "db.json"),

		ExternalInventoryURL:       os.Getenv("EXTERNAL_INVENTORY_URL"),
		ExternalProductsURL:        os.Getenv("EXTERNAL_PRODUCTS_URL"),
		ExternalOrdersURL:          os.Getenv("EXTERNAL_ORDERS_URL"),
		ExternalOrderUpdateURL:     os.Getenv("EXTERNAL_ORDER_UPDATE_URL"),
		ExternalOrderDeleteURL:     os.Getenv("EXTERNAL_ORDER_DELETE_URL"),
		ExternalInventoryUpdateURL: os.Getenv("EXTERNAL_INVENTORY_UPDATE_URL"),
		ExternalAPIKey:             os.Getenv("EXTERNAL_API_KEY"),
		ExternalCacheTTL:           duration("EXTERNAL_CACHE_TTL", 5*time.Minute),
		ExternalTimeout:            duration("EXTERNAL_TIMEOUT", 10*time.Second),

		WebhookURL:     os.Getenv("WEBHOOK_URL"),
		WebhookSecret:  os.Getenv("WEBHOOK_SECRET"),
		WebhookTimeout: duration("WEBHOOK_TIMEOUT", 5*time.Second),

		RedisAddr:    os.Getenv("REDIS_ADDR"),
		KafkaBrokers: splitCSV(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:   getenv("KAFKA_TOPIC", "backoffice.events"),

		ServiceName: getenv("SERVICE_NAME", "jn-restaurant"),
		LogLevel:    getenv("LOG_LEVEL", "info"),
		LogFormat:   getenv("LOG_FORMAT", "text"),
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func duration(k string, def time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil && d > 0 {
		return d
	}
	return def
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}

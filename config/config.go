package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server  ServerConfig
	Sources SourcesConfig
	Redis   RedisConfig
	Kafka   KafkaConfig
	Observ  ObservabilityConfig
	Catalog CatalogConfig
}

type ServerConfig struct {
	Port string
	Env  string
}

type SourcesConfig struct {
	BaseURL       string
	ItemsPath     string
	DiscountsPath string
	SettingsPath  string
	FetchTimeout  time.Duration
}

type RedisConfig struct {
	Addr        string
	Password    string
	DB          int
	SnapshotTTL time.Duration
}

type KafkaConfig struct {
	Enabled       bool
	Brokers       []string
	TopicCatalog  string
	ConsumerGroup string
}

type ObservabilityConfig struct {
	JaegerEndpoint string
}

type CatalogConfig struct {
	DefaultPageSize int
	RefreshInterval time.Duration
	WholeUnitPrices bool
	CurrencyCode    string
	Locale          string
}

func Load() *Config {
	_ = godotenv.Load()

	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	snapshotTTL, _ := strconv.Atoi(getEnv("REDIS_SNAPSHOT_TTL_HOURS", "72"))
	fetchTimeout, _ := strconv.Atoi(getEnv("SOURCE_FETCH_TIMEOUT_SECONDS", "10"))
	pageSize, _ := strconv.Atoi(getEnv("CATALOG_PAGE_SIZE", "24"))
	refreshInterval, _ := strconv.Atoi(getEnv("CATALOG_REFRESH_INTERVAL_SECONDS", "0"))

	cfg := &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
			Env:  getEnv("ENV", "development"),
		},
		Sources: SourcesConfig{
			BaseURL:       getEnv("SOURCES_BASE_URL", "http://localhost:8000"),
			ItemsPath:     getEnv("SOURCES_ITEMS_PATH", "items.json"),
			DiscountsPath: getEnv("SOURCES_DISCOUNTS_PATH", "discounts.json"),
			SettingsPath:  getEnv("SOURCES_SETTINGS_PATH", "settings.json"),
			FetchTimeout:  time.Duration(fetchTimeout) * time.Second,
		},
		Redis: RedisConfig{
			Addr:        getEnv("REDIS_ADDR", "localhost:6379"),
			Password:    getEnv("REDIS_PASSWORD", ""),
			DB:          redisDB,
			SnapshotTTL: time.Duration(snapshotTTL) * time.Hour,
		},
		Kafka: KafkaConfig{
			Enabled:       getEnv("KAFKA_ENABLED", "true") == "true",
			Brokers:       strings.Split(getEnv("KAFKA_BROKERS", "localhost:9092"), ","),
			TopicCatalog:  getEnv("KAFKA_TOPIC_CATALOG_EVENTS", "catalog-events"),
			ConsumerGroup: getEnv("KAFKA_CONSUMER_GROUP", "storefront-service-group"),
		},
		Observ: ObservabilityConfig{
			JaegerEndpoint: getEnv("JAEGER_ENDPOINT", "http://localhost:14268/api/traces"),
		},
		Catalog: CatalogConfig{
			DefaultPageSize: pageSize,
			RefreshInterval: time.Duration(refreshInterval) * time.Second,
			WholeUnitPrices: getEnv("PRICE_WHOLE_UNITS", "false") == "true",
			CurrencyCode:    getEnv("CURRENCY_CODE", "PEN"),
			Locale:          getEnv("CURRENCY_LOCALE", "es-PE"),
		},
	}

	log.Printf("Config loaded: env=%s, port=%s, sources=%s", cfg.Server.Env, cfg.Server.Port, cfg.Sources.BaseURL)
	return cfg
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

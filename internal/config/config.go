package config

import (
	"os"
	"strconv"
)

type Config struct {
	// Server
	Port        string
	Environment string

	// Catalog API
	CatalogAPIURL   string
	CatalogAPIToken string

	// Redis
	RedisURL string

	// Pagination
	DefaultPageSize int
	MaxPageSize     int

	// Storefront settings
	TrendingLimit int
}

func Load() *Config {
	defaultPageSize, _ := strconv.Atoi(getEnv("DEFAULT_PAGE_SIZE", "9"))
	maxPageSize, _ := strconv.Atoi(getEnv("MAX_PAGE_SIZE", "100"))
	trendingLimit, _ := strconv.Atoi(getEnv("TRENDING_LIMIT", "10"))

	return &Config{
		Port:        getEnv("PORT", "8093"),
		Environment: getEnv("ENVIRONMENT", "development"),

		CatalogAPIURL:   getEnv("CATALOG_API_URL", "http://catalog-api:8080/graphql"),
		CatalogAPIToken: getEnv("CATALOG_API_TOKEN", ""),

		RedisURL: getEnv("REDIS_URL", "redis://localhost:6379/0"),

		DefaultPageSize: defaultPageSize,
		MaxPageSize:     maxPageSize,

		TrendingLimit: trendingLimit,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

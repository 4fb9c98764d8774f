package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Port        string
	Environment string
	Database    DatabaseConfig
	Redis       RedisConfig
	Marketplace MarketplaceConfig
	Cart        CartConfig
	LogLevel    string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// RedisConfig configures the optional checkout snapshot cache.
// An empty Host means the in-memory cache is used instead.
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// MarketplaceConfig is used to call the marketplace backend (orders, catalog, wishlist)
type MarketplaceConfig struct {
	BaseURL string // e.g. http://marketplace:5000; empty means checkout submit returns 503
}

// CartConfig tunes cart-side behavior
type CartConfig struct {
	SnapshotTTLMinutes int // checkout drafts expire after this many minutes
	CatalogRefreshMins int // catalog warm loop interval; 0 disables the loop
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

func Load() (*Config, error) {
	viper.SetConfigType("env")
	viper.SetConfigName(".env")
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")
	viper.AddConfigPath("../..")

	// Set defaults
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("ENVIRONMENT", "development")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("SNAPSHOT_TTL_MINUTES", "30")
	viper.SetDefault("CATALOG_REFRESH_MINUTES", "10")

	// Read from environment variables
	viper.AutomaticEnv()

	// Try to read .env file (optional)
	if err := viper.ReadInConfig(); err != nil {
		// It's okay if .env doesn't exist, we'll use env vars
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := &Config{
		Port:        getEnvOrViper("PORT", "8080"),
		Environment: getEnvOrViper("ENVIRONMENT", "development"),
		Database: DatabaseConfig{
			Host:     getEnvOrViper("DB_HOST", "localhost"),
			Port:     getEnvOrViper("DB_PORT", "5432"),
			User:     getEnvOrViper("DB_USER", "postgres"),
			Password: getEnvOrViper("DB_PASSWORD", "postgres"),
			DBName:   getEnvOrViper("DB_NAME", "storefront"),
			SSLMode:  getEnvOrViper("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Host:     strings.TrimSpace(getEnvOrViper("REDIS_HOST", "")),
			Port:     getEnvIntOrViper("REDIS_PORT", 6379),
			Password: getEnvOrViper("REDIS_PASSWORD", ""),
			DB:       getEnvIntOrViper("REDIS_DB", 0),
		},
		Marketplace: MarketplaceConfig{
			BaseURL: strings.TrimSpace(getEnvOrViper("MARKETPLACE_URL", "")),
		},
		Cart: CartConfig{
			SnapshotTTLMinutes: getEnvIntOrViper("SNAPSHOT_TTL_MINUTES", 30),
			CatalogRefreshMins: getEnvIntOrViper("CATALOG_REFRESH_MINUTES", 10),
		},
		LogLevel: getEnvOrViper("LOG_LEVEL", "info"),
	}

	// Validate required fields
	if cfg.Marketplace.BaseURL == "" {
		return nil, fmt.Errorf("MARKETPLACE_URL is required")
	}

	return cfg, nil
}

func getEnvOrViper(key, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	if viper.IsSet(key) {
		return viper.GetString(key)
	}
	return defaultValue
}

func getEnvIntOrViper(key string, defaultValue int) int {
	if val := getEnvOrViper(key, ""); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return defaultValue
}

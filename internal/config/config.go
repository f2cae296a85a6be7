package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

var ErrMissingAPIKey = errors.New("ALPHA_VANTAGE_API_KEY is not set")

type Config struct {
	LogLevel     string
	Server       ServerConfig
	AlphaVantage AlphaVantageConfig
	Cache        CacheConfig
	Viewer       ViewerConfig
	Redis        RedisConfig
}

type ServerConfig struct {
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type AlphaVantageConfig struct {
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	OutputSize string
}

// Validate reports configuration the proxy cannot start without.
func (c AlphaVantageConfig) Validate() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return ErrMissingAPIKey
	}
	if c.OutputSize != "" && c.OutputSize != "compact" && c.OutputSize != "full" {
		return fmt.Errorf("ALPHA_VANTAGE_OUTPUT_SIZE must be compact or full, got %q", c.OutputSize)
	}
	return nil
}

type CacheConfig struct {
	TTL      time.Duration
	Capacity int
}

type ViewerConfig struct {
	ProxyURL  string
	Store     string
	StorePath string
	Timeout   time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

func LoadConfig() (*Config, error) {
	config := &Config{
		LogLevel: getEnvString("LOG_LEVEL", "info"),
		Server: ServerConfig{
			Port:         getEnvInt("SERVER_PORT", 8080),
			ReadTimeout:  getEnvDuration("SERVER_READ_TIMEOUT", 5*time.Second),
			WriteTimeout: getEnvDuration("SERVER_WRITE_TIMEOUT", 15*time.Second),
			IdleTimeout:  getEnvDuration("SERVER_IDLE_TIMEOUT", 120*time.Second),
		},
		AlphaVantage: AlphaVantageConfig{
			BaseURL:    getEnvString("ALPHA_VANTAGE_BASE_URL", "https://www.alphavantage.co/query"),
			APIKey:     getEnvString("ALPHA_VANTAGE_API_KEY", ""),
			Timeout:    getEnvDuration("ALPHA_VANTAGE_TIMEOUT", 10*time.Second),
			OutputSize: getEnvString("ALPHA_VANTAGE_OUTPUT_SIZE", ""),
		},
		Cache: CacheConfig{
			TTL:      getEnvDuration("CACHE_TTL", 30*time.Minute),
			Capacity: getEnvInt("CACHE_CAPACITY", 100),
		},
		Viewer: ViewerConfig{
			ProxyURL:  getEnvString("VIEWER_PROXY_URL", "http://localhost:8080"),
			Store:     getEnvString("VIEWER_STORE", "file"),
			StorePath: getEnvString("VIEWER_STORE_PATH", defaultStorePath()),
			Timeout:   getEnvDuration("VIEWER_TIMEOUT", 15*time.Second),
		},
		Redis: RedisConfig{
			Addr:     getEnvString("REDIS_ADDR", "localhost:6379"),
			Password: getEnvString("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
	}

	if config.Cache.Capacity <= 0 {
		return nil, fmt.Errorf("CACHE_CAPACITY must be positive, got %d", config.Cache.Capacity)
	}
	if config.Cache.TTL <= 0 {
		return nil, fmt.Errorf("CACHE_TTL must be positive, got %s", config.Cache.TTL)
	}
	if config.Viewer.Store != "file" && config.Viewer.Store != "redis" {
		return nil, fmt.Errorf("VIEWER_STORE must be file or redis, got %q", config.Viewer.Store)
	}

	return config, nil
}

func defaultStorePath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "currency-viewer", "store.json")
}

func getEnvString(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		fmt.Printf("Warning: Invalid value for %s, using default: %d\n", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := time.ParseDuration(valueStr)
	if err != nil {
		fmt.Printf("Warning: Invalid duration for %s, using default: %s\n", key, defaultValue)
		return defaultValue
	}

	return value
}

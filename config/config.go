package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	StorageDriverMemory = "memory"
	StorageDriverRedis  = "redis"
	StorageDriverMySQL  = "mysql"
)

type Config struct {
	App        AppConfig
	HTTP       ServerConfig
	Storage    StorageConfig
	Log        LogConfig
	Dispatcher DispatcherConfig
	Faucet     FaucetConfig
}

type AppConfig struct {
	ServiceName string
}

type ServerConfig struct {
	Host string
	Port string
}

type StorageConfig struct {
	Driver          string
	RedisURL        string
	MySQLDSN        string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type LogConfig struct {
	Level string
}

type DispatcherConfig struct {
	PollInterval time.Duration
	BatchSize    int
}

type FaucetConfig struct {
	Enabled bool
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	storageDriver := getEnv("STORAGE_DRIVER", StorageDriverMemory)
	switch storageDriver {
	case StorageDriverMemory:
	case StorageDriverRedis:
		if os.Getenv("REDIS_URL") == "" {
			return nil, errors.New("REDIS_URL environment variable is required for the redis storage driver")
		}
	case StorageDriverMySQL:
		if os.Getenv("MYSQL_DSN") == "" {
			return nil, errors.New("MYSQL_DSN environment variable is required for the mysql storage driver")
		}
	default:
		return nil, fmt.Errorf("unknown STORAGE_DRIVER %q", storageDriver)
	}

	return &Config{
		App: AppConfig{
			ServiceName: getEnv("APP_SERVICE_NAME", "billing-ledger"),
		},
		HTTP: ServerConfig{
			Host: getEnv("HTTP_HOST", "0.0.0.0"),
			Port: getEnv("HTTP_PORT", "8080"),
		},
		Storage: StorageConfig{
			Driver:          storageDriver,
			RedisURL:        getEnv("REDIS_URL", ""),
			MySQLDSN:        getEnv("MYSQL_DSN", ""),
			MaxOpenConns:    getIntEnv("MYSQL_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    getIntEnv("MYSQL_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getDurationEnv("MYSQL_CONN_MAX_LIFETIME_MINUTES", 30*time.Minute, time.Minute),
		},
		Log: LogConfig{Level: getEnv("LOG_LEVEL", "info")},
		Dispatcher: DispatcherConfig{
			PollInterval: getDurationEnv("DISPATCHER_POLL_INTERVAL_SECONDS", time.Second, time.Second),
			BatchSize:    getIntEnv("DISPATCHER_BATCH_SIZE", 100),
		},
		Faucet: FaucetConfig{
			Enabled: getBoolEnv("FAUCET_ENABLED", false),
		},
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue, unit time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return time.Duration(n) * unit
		}
	}
	return defaultValue
}

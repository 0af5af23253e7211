package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Environment constants
const (
	Development = "development"
	Production  = "production"
	Test        = "test"
)

// EnvPrefix prefixes every environment override, e.g. PL_SERVER_PORT
const EnvPrefix = "PL"

// ConfigPaths defines the paths to look for config files
var ConfigPaths = []string{
	"./configs",
	"../configs",
	"../../configs",
}

// DotEnvPaths defines the paths to look for .env files
var DotEnvPaths = []string{
	".env",
	"./configs/.env",
	"../.env",
	"../../.env",
}

// envAliases are short variable names kept for deployment scripts
var envAliases = map[string]string{
	"PL_DB_DSN":      "database.dsn",
	"PL_DB_HOST":     "database.host",
	"PL_DB_PORT":     "database.port",
	"PL_DB_USERNAME": "database.username",
	"PL_DB_PASSWORD": "database.password",
	"PL_DB_NAME":     "database.database",
	"PL_DB_SSL_MODE": "database.sslMode",
	"PL_REDIS_ADDR":  "notifications.redis.addr",
	"PL_KAFKA_TOPIC": "notifications.kafka.topic",
}

// LoadConfig loads configuration for the environment named by PL_ENV
func LoadConfig() (*Config, error) {
	// A missing .env file is normal outside local development
	_ = loadDotEnvFile()

	return Load(getEnvironment(), ConfigPaths...)
}

// Load reads configs/<env>.yaml from the first path containing it, then applies PL_* overrides.
// A missing file leaves the defaults in place.
func Load(env string, paths ...string) (*Config, error) {
	v := viper.New()
	v.SetConfigName(env)
	v.SetConfigType("yaml")
	for _, path := range paths {
		v.AddConfigPath(path)
	}

	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	processEnvOverrides(v)

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}
	config.Environment = env

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &config, nil
}

// loadDotEnvFile loads the first .env file found. Variables already set are kept.
func loadDotEnvFile() error {
	for _, path := range DotEnvPaths {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("could not load %s: %w", path, err)
		}
		return nil
	}
	return errors.New("no .env file found in search paths")
}

// setDefaults registers every key, which also makes AutomaticEnv see it during Unmarshal
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.readTimeout", "15s")
	v.SetDefault("server.writeTimeout", "15s")
	v.SetDefault("server.idleTimeout", "60s")
	v.SetDefault("server.readHeaderTimeout", "10s")
	v.SetDefault("server.shutdownTimeout", "10s")
	v.SetDefault("server.rateLimit.rps", 50)
	v.SetDefault("server.rateLimit.burst", 100)

	v.SetDefault("storage.driver", DriverMemory)
	v.SetDefault("storage.seedDemo", false)
	v.SetDefault("storage.demoBonus", "10000")

	v.SetDefault("database.dsn", "")
	v.SetDefault("database.host", "")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.username", "")
	v.SetDefault("database.password", "")
	v.SetDefault("database.database", "")
	v.SetDefault("database.sslMode", "disable")
	v.SetDefault("database.maxOpenConns", 25)
	v.SetDefault("database.maxIdleConns", 25)
	v.SetDefault("database.connMaxLifetime", "30m")
	v.SetDefault("database.connMaxIdleTime", "15m")
	v.SetDefault("database.queryTimeout", "5s")
	v.SetDefault("database.slowQueryThreshold", "200ms")
	v.SetDefault("database.logLevel", "warn")
	v.SetDefault("database.retryAttempts", 3)
	v.SetDefault("database.retryDelay", "1s")
	v.SetDefault("database.autoMigrate", true)

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "json")

	v.SetDefault("finance.moderationFee", "5000")
	v.SetDefault("finance.minimumWithdrawal", "1000")
	v.SetDefault("finance.withdrawalFeeRate", "0.025")
	v.SetDefault("finance.currency", "RUB")

	v.SetDefault("ledger.pageSize", 100)
	v.SetDefault("ledger.queueSize", 100)

	v.SetDefault("notifications.sinks", []string{SinkLog, SinkInbox})
	v.SetDefault("notifications.bufferSize", 1024)
	v.SetDefault("notifications.dispatchTimeout", "5s")
	v.SetDefault("notifications.redis.addr", "")
	v.SetDefault("notifications.redis.password", "")
	v.SetDefault("notifications.redis.db", 0)
	v.SetDefault("notifications.redis.channel", "promo_notifications")
	v.SetDefault("notifications.kafka.brokers", []string{})
	v.SetDefault("notifications.kafka.topic", "promo.notifications")
}

// getEnvironment determines the environment from PL_ENV, defaulting to development
func getEnvironment() string {
	env := os.Getenv(EnvPrefix + "_ENV")
	if env == "" {
		env = Development
	}
	return strings.ToLower(env)
}

// processEnvOverrides applies the short alias variables over file and default values
func processEnvOverrides(v *viper.Viper) {
	for name, key := range envAliases {
		if value := os.Getenv(name); value != "" {
			v.Set(key, value)
		}
	}
}

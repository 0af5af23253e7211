package config

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/amirhossein-jamali/promo-ledger/internal/domain/entity"
)

// Storage drivers
const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Notification sinks
const (
	SinkLog   = "log"
	SinkInbox = "inbox"
	SinkRedis = "redis"
	SinkKafka = "kafka"
)

// Config holds all configuration for the application
type Config struct {
	Environment   string              `mapstructure:"environment"`
	Server        ServerConfig        `mapstructure:"server"`
	Storage       StorageConfig       `mapstructure:"storage"`
	Database      DatabaseConfig      `mapstructure:"database"`
	Logger        LoggerConfig        `mapstructure:"logger"`
	Finance       FinanceConfig       `mapstructure:"finance"`
	Ledger        LedgerConfig        `mapstructure:"ledger"`
	Notifications NotificationsConfig `mapstructure:"notifications"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Host              string          `mapstructure:"host"`
	Port              int             `mapstructure:"port"`
	ReadTimeout       time.Duration   `mapstructure:"readTimeout"`
	WriteTimeout      time.Duration   `mapstructure:"writeTimeout"`
	IdleTimeout       time.Duration   `mapstructure:"idleTimeout"`
	ReadHeaderTimeout time.Duration   `mapstructure:"readHeaderTimeout"`
	ShutdownTimeout   time.Duration   `mapstructure:"shutdownTimeout"`
	RateLimit         RateLimitConfig `mapstructure:"rateLimit"`
}

// RateLimitConfig is the per client IP token bucket. Zero RPS disables limiting.
type RateLimitConfig struct {
	RPS   float64 `mapstructure:"rps"`
	Burst int     `mapstructure:"burst"`
}

// StorageConfig selects the persistence backend
type StorageConfig struct {
	Driver    string `mapstructure:"driver"`
	SeedDemo  bool   `mapstructure:"seedDemo"`
	DemoBonus string `mapstructure:"demoBonus"`
}

// DatabaseConfig contains database connection settings
type DatabaseConfig struct {
	DSN                string        `mapstructure:"dsn"`
	Host               string        `mapstructure:"host"`
	Port               int           `mapstructure:"port"`
	Username           string        `mapstructure:"username"`
	Password           string        `mapstructure:"password"`
	Database           string        `mapstructure:"database"`
	SSLMode            string        `mapstructure:"sslMode"`
	MaxOpenConns       int           `mapstructure:"maxOpenConns"`
	MaxIdleConns       int           `mapstructure:"maxIdleConns"`
	ConnMaxLifetime    time.Duration `mapstructure:"connMaxLifetime"`
	ConnMaxIdleTime    time.Duration `mapstructure:"connMaxIdleTime"`
	QueryTimeout       time.Duration `mapstructure:"queryTimeout"`
	SlowQueryThreshold time.Duration `mapstructure:"slowQueryThreshold"`
	LogLevel           string        `mapstructure:"logLevel"`
	RetryAttempts      int           `mapstructure:"retryAttempts"`
	RetryDelay         time.Duration `mapstructure:"retryDelay"`
	AutoMigrate        bool          `mapstructure:"autoMigrate"`
}

// LoggerConfig contains logger settings
type LoggerConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // json or console
}

// FinanceConfig holds the fee and threshold values as decimal strings
type FinanceConfig struct {
	ModerationFee     string `mapstructure:"moderationFee"`
	MinimumWithdrawal string `mapstructure:"minimumWithdrawal"`
	WithdrawalFeeRate string `mapstructure:"withdrawalFeeRate"`
	Currency          string `mapstructure:"currency"`
}

// LedgerConfig tunes ledger iteration and the per-account queues
type LedgerConfig struct {
	PageSize  int `mapstructure:"pageSize"`
	QueueSize int `mapstructure:"queueSize"`
}

// NotificationsConfig selects and configures the notification sinks
type NotificationsConfig struct {
	Sinks           []string      `mapstructure:"sinks"`
	BufferSize      int           `mapstructure:"bufferSize"`
	DispatchTimeout time.Duration `mapstructure:"dispatchTimeout"`
	Redis           RedisConfig   `mapstructure:"redis"`
	Kafka           KafkaConfig   `mapstructure:"kafka"`
}

// RedisConfig configures the redis pub/sub sink
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Channel  string `mapstructure:"channel"`
}

// KafkaConfig configures the kafka sink
type KafkaConfig struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

// FeePolicy parses the finance section
func (f FinanceConfig) FeePolicy() (entity.FeePolicy, error) {
	return entity.NewFeePolicy(f.ModerationFee, f.MinimumWithdrawal, f.WithdrawalFeeRate)
}

// HasSink reports whether name is among the configured sinks
func (n NotificationsConfig) HasSink(name string) bool {
	return slices.Contains(n.Sinks, name)
}

// Validate checks values that would otherwise fail at first use
func (c *Config) Validate() error {
	var errList []error

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errList = append(errList, fmt.Errorf("server.port: invalid port number %d", c.Server.Port))
	}
	if c.Server.RateLimit.RPS < 0 {
		errList = append(errList, errors.New("server.rateLimit.rps must not be negative"))
	}

	switch c.Storage.Driver {
	case DriverMemory:
	case DriverPostgres:
		if c.Database.DSN == "" && c.Database.Host == "" {
			errList = append(errList, errors.New("database.host or database.dsn is required for postgres storage"))
		}
	default:
		errList = append(errList, fmt.Errorf("storage.driver: unknown driver %q", c.Storage.Driver))
	}

	if _, err := c.Finance.FeePolicy(); err != nil {
		errList = append(errList, fmt.Errorf("finance: %w", err))
	}
	if c.Storage.SeedDemo {
		if _, err := entity.ParseMoney(c.Storage.DemoBonus); err != nil {
			errList = append(errList, fmt.Errorf("storage.demoBonus: %w", err))
		}
	}

	for _, sink := range c.Notifications.Sinks {
		switch sink {
		case SinkLog, SinkInbox:
		case SinkRedis:
			if c.Notifications.Redis.Addr == "" {
				errList = append(errList, errors.New("notifications.redis.addr is required for the redis sink"))
			}
		case SinkKafka:
			if len(c.Notifications.Kafka.Brokers) == 0 {
				errList = append(errList, errors.New("notifications.kafka.brokers is required for the kafka sink"))
			}
		default:
			errList = append(errList, fmt.Errorf("notifications.sinks: unknown sink %q", sink))
		}
	}

	return errors.Join(errList...)
}

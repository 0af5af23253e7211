package database

import (
	"errors"
	"fmt"
	"time"

	"github.com/amirhossein-jamali/promo-ledger/internal/infrastructure/config"
)

// Config represents database configuration
type Config struct {
	DSN                string // Overrides the discrete connection fields when set
	Host               string
	Port               int
	Username           string
	Password           string
	Database           string
	SSLMode            string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetime    time.Duration
	ConnMaxIdleTime    time.Duration
	QueryTimeout       time.Duration
	SlowQueryThreshold time.Duration
	LogLevel           string
	RetryAttempts      int
	RetryDelay         time.Duration
}

// DefaultConfig returns a Config with default pool and retry settings and no connection target
func DefaultConfig() *Config {
	return &Config{
		Port:               5432,
		SSLMode:            "disable",
		MaxOpenConns:       25,
		MaxIdleConns:       25,
		ConnMaxLifetime:    30 * time.Minute,
		ConnMaxIdleTime:    15 * time.Minute,
		QueryTimeout:       5 * time.Second,
		SlowQueryThreshold: 200 * time.Millisecond,
		LogLevel:           "warn",
		RetryAttempts:      3,
		RetryDelay:         time.Second,
	}
}

// NewConfig adapts the application configuration to database configuration
func NewConfig(db config.DatabaseConfig, logLevel string) *Config {
	c := DefaultConfig()
	c.DSN = db.DSN
	c.Host = db.Host
	c.Username = db.Username
	c.Password = db.Password
	c.Database = db.Database

	if db.Port > 0 {
		c.Port = db.Port
	}
	if db.SSLMode != "" {
		c.SSLMode = db.SSLMode
	}
	if db.MaxOpenConns > 0 {
		c.MaxOpenConns = db.MaxOpenConns
	}
	if db.MaxIdleConns > 0 {
		c.MaxIdleConns = db.MaxIdleConns
	}
	if db.ConnMaxLifetime > 0 {
		c.ConnMaxLifetime = db.ConnMaxLifetime
	}
	if db.ConnMaxIdleTime > 0 {
		c.ConnMaxIdleTime = db.ConnMaxIdleTime
	}
	if db.QueryTimeout > 0 {
		c.QueryTimeout = db.QueryTimeout
	}
	if db.SlowQueryThreshold > 0 {
		c.SlowQueryThreshold = db.SlowQueryThreshold
	}
	if db.RetryAttempts > 0 {
		c.RetryAttempts = db.RetryAttempts
	}
	if db.RetryDelay > 0 {
		c.RetryDelay = db.RetryDelay
	}
	if logLevel != "" {
		c.LogLevel = logLevel
	}
	return c
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.DSN == "" {
		if c.Host == "" {
			return errors.New("database host is required")
		}
		if c.Port <= 0 || c.Port > 65535 {
			return fmt.Errorf("invalid port number: %d", c.Port)
		}
		if c.Username == "" {
			return errors.New("database username is required")
		}
		if c.Database == "" {
			return errors.New("database name is required")
		}

		validSSLModes := map[string]bool{
			"disable":     true,
			"require":     true,
			"verify-ca":   true,
			"verify-full": true,
			"prefer":      true,
		}
		if !validSSLModes[c.SSLMode] {
			return fmt.Errorf("invalid SSL mode: %s", c.SSLMode)
		}
	}

	if c.MaxOpenConns <= 0 {
		return fmt.Errorf("max open connections must be positive, got: %d", c.MaxOpenConns)
	}
	if c.MaxIdleConns <= 0 {
		return fmt.Errorf("max idle connections must be positive, got: %d", c.MaxIdleConns)
	}
	if c.QueryTimeout <= 0 {
		return errors.New("query timeout must be positive")
	}
	if c.RetryAttempts <= 0 {
		return fmt.Errorf("retry attempts must be positive, got: %d", c.RetryAttempts)
	}
	return nil
}

// ConnectionString returns the DSN, built from the discrete fields unless one was given
func (c *Config) ConnectionString() string {
	if c.DSN != "" {
		return c.DSN
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
		c.Host, c.Port, c.Username, c.Password, c.Database, c.SSLMode,
	)
}

package database

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amirhossein-jamali/promo-ledger/internal/infrastructure/config"
)

func TestNewConfig(t *testing.T) {
	c := NewConfig(config.DatabaseConfig{
		Host:         "db",
		Username:     "ledger",
		Password:     "secret",
		Database:     "promo",
		MaxOpenConns: 50,
		QueryTimeout: 3 * time.Second,
	}, "error")

	require.NoError(t, c.Validate())
	assert.Equal(t, 5432, c.Port)
	assert.Equal(t, 50, c.MaxOpenConns)
	assert.Equal(t, 25, c.MaxIdleConns)
	assert.Equal(t, 3*time.Second, c.QueryTimeout)
	assert.Equal(t, "error", c.LogLevel)
	assert.Equal(t, "host=db port=5432 user=ledger password=secret dbname=promo sslmode=disable TimeZone=UTC", c.ConnectionString())
}

func TestConfig_Validate(t *testing.T) {
	testCases := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"Valid", func(c *Config) {}, ""},
		{"MissingHost", func(c *Config) { c.Host = "" }, "database host is required"},
		{"BadPort", func(c *Config) { c.Port = 70000 }, "invalid port number: 70000"},
		{"BadSSLMode", func(c *Config) { c.SSLMode = "sometimes" }, "invalid SSL mode: sometimes"},
		{"DSNSkipsFields", func(c *Config) { c.Host = ""; c.DSN = "postgres://x" }, ""},
		{"NoRetries", func(c *Config) { c.RetryAttempts = 0 }, "retry attempts must be positive, got: 0"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c := DefaultConfig()
			c.Host, c.Username, c.Database = "localhost", "postgres", "promo"
			tc.mutate(c)

			err := c.Validate()
			if tc.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.EqualError(t, err, tc.wantErr)
		})
	}
}

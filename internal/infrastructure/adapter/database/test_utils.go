package database

import (
	"context"
	"os"
	"testing"
	"time"

	coreport "github.com/amirhossein-jamali/promo-ledger/internal/domain/port/core"
	"github.com/amirhossein-jamali/promo-ledger/internal/infrastructure/adapter/database/migration"
	timeprovider "github.com/amirhossein-jamali/promo-ledger/internal/infrastructure/adapter/time"
)

// TestDSNEnv names the variable holding the DSN of a disposable test database
const TestDSNEnv = "PL_TEST_DATABASE_DSN"

// TestDBManager provides utilities for testing against a real PostgreSQL database
type TestDBManager struct {
	Manager      *Manager
	Config       *Config
	Logger       coreport.Logger
	TimeProvider coreport.TimeProvider
}

// NewTestDBManager connects to the database named by PL_TEST_DATABASE_DSN, migrates it and
// empties every table. The test is skipped when the variable is unset.
func NewTestDBManager(t *testing.T, logger coreport.Logger) *TestDBManager {
	t.Helper()

	dsn := os.Getenv(TestDSNEnv)
	if dsn == "" {
		t.Skipf("%s not set, skipping PostgreSQL test", TestDSNEnv)
	}

	timeProvider := timeprovider.NewRealTimeProvider()
	config := DefaultConfig()
	config.DSN = dsn
	config.MaxOpenConns = 10
	config.MaxIdleConns = 5
	config.LogLevel = "silent"
	config.RetryAttempts = 1 // fail fast
	config.RetryDelay = 100 * time.Millisecond

	manager := NewManager(config, logger, timeProvider)
	if _, err := manager.Connect(context.Background()); err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	m := &TestDBManager{
		Manager:      manager,
		Config:       config,
		Logger:       logger,
		TimeProvider: timeProvider,
	}
	t.Cleanup(func() { m.Close(t) })

	if err := migration.NewMigrationManager(manager.DB(), logger, timeProvider).MigrateAll(context.Background()); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
	m.TruncateAllTables(t)
	return m
}

// Close closes the test database connection
func (m *TestDBManager) Close(t *testing.T) {
	t.Helper()

	if err := m.Manager.Close(); err != nil {
		t.Logf("Warning: Failed to close test database connection: %v", err)
	}
}

// TruncateAllTables empties the application tables, keeping the schema version
func (m *TestDBManager) TruncateAllTables(t *testing.T) {
	t.Helper()

	err := m.Manager.DB().Exec(`TRUNCATE TABLE balance_transactions, accounts, withdrawal_requests,
		content_items, notifications RESTART IDENTITY CASCADE`).Error
	if err != nil {
		t.Fatalf("Failed to truncate tables: %v", err)
	}
}

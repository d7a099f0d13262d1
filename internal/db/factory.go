package db

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/vdblog/vdblog-backend/internal/db/backends/memory"
	"github.com/vdblog/vdblog-backend/internal/db/backends/sqlstore"
	"github.com/vdblog/vdblog-backend/internal/db/interfaces"
)

// Config holds database configuration
type Config struct {
	Type            string // "memory", "postgres", "sqlite"
	DSN             string // Data Source Name / Connection String
	MaxOpenConns    int    // Maximum open connections (for SQL backends)
	MaxIdleConns    int    // Maximum idle connections (for SQL backends)
	ConnMaxLifetime time.Duration
}

// NewDatabase creates a new database instance based on configuration
func NewDatabase(config Config, logger *zap.SugaredLogger) (interfaces.Database, error) {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	switch config.Type {
	case "", "memory":
		logger.Info("Using in-memory database")
		return memory.NewDatabase(logger), nil
	case "postgres", "sqlite":
		if config.DSN == "" {
			return nil, fmt.Errorf("database type %s requires a DSN", config.Type)
		}
		dialect, err := sqlstore.ParseDialect(config.Type)
		if err != nil {
			return nil, err
		}
		logger.Infow("Using SQL database", "dialect", dialect)
		return sqlstore.NewDatabase(dialect, config.DSN, sqlstore.Options{
			MaxOpenConns:    config.MaxOpenConns,
			MaxIdleConns:    config.MaxIdleConns,
			ConnMaxLifetime: config.ConnMaxLifetime,
		}, logger), nil
	default:
		return nil, fmt.Errorf("unsupported database type: %s", config.Type)
	}
}

// NewInMemoryDatabase creates a new in-memory database instance
func NewInMemoryDatabase() interfaces.Database {
	return memory.NewDatabase(nil)
}

// ConnectAndMigrate connects to the database and runs migrations
func ConnectAndMigrate(ctx context.Context, db interfaces.Database) error {
	if err := db.Connect(ctx); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	if !db.IsHealthy(ctx) {
		return fmt.Errorf("database health check failed")
	}

	if err := db.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	return nil
}

// internal/common/database/sql.go
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"car-market-assistant/internal/common/config"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// SQLClient wraps the SQL database connection listings are read from.
type SQLClient struct {
	DB     *sql.DB
	Driver string
}

// NewSQL opens a postgres or sqlite3 connection as configured in database.sql.
func NewSQL(cfg config.DatabaseConfig) (*SQLClient, error) {
	driver, dsn, err := ResolveDSN(cfg)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", driver, err)
	}

	if driver == "postgres" {
		db.SetMaxOpenConns(cfg.Postgres.MaxConnections)
		db.SetMaxIdleConns(cfg.Postgres.MaxIdle)
		db.SetConnMaxLifetime(5 * time.Minute)
		db.SetConnMaxIdleTime(5 * time.Minute)
	} else {
		db.SetMaxOpenConns(1)
	}

	return &SQLClient{DB: db, Driver: driver}, nil
}

// ResolveDSN picks the driver name and connection string. An empty postgres DSN is built from
// the postgres section.
func ResolveDSN(cfg config.DatabaseConfig) (string, string, error) {
	driver := cfg.SQL.Driver
	if driver == "" {
		driver = "postgres"
	}

	switch driver {
	case "postgres":
		if cfg.SQL.DSN != "" {
			return driver, cfg.SQL.DSN, nil
		}
		if cfg.Postgres.Host == "" {
			return "", "", fmt.Errorf("database.sql.dsn or database.postgres.host is required")
		}
		return driver, cfg.Postgres.GetDSN(), nil
	case "sqlite3":
		if cfg.SQL.DSN == "" {
			return "", "", fmt.Errorf("database.sql.dsn is required for sqlite3")
		}
		return driver, cfg.SQL.DSN, nil
	default:
		return "", "", fmt.Errorf("unsupported sql driver %q", driver)
	}
}

// Ping tests the database connection
func (c *SQLClient) Ping(ctx context.Context) error {
	return c.DB.PingContext(ctx)
}

// Close closes the database connection
func (c *SQLClient) Close() error {
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}

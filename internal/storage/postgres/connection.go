package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/y4d-ngo/beneficiary-portal/config"
)

// NewConnection opens and pings a pooled connection. The driver is registered by lib/pq.
func NewConnection(ctx context.Context, cfg *config.DatabaseConfig) (*sql.DB, error) {
	connector, err := pq.NewConnector(DSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to parse database dsn: %w", err)
	}
	db := sql.OpenDB(connector)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)

	return db, nil
}

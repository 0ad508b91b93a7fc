package database

import (
	"context"
	_ "embed"
	"fmt"
)

//go:embed schema.sql
var schemaSQL string

// Schema returns the DDL applied by Migrate.
func Schema() string {
	return schemaSQL
}

// Migrate applies the idempotent schema. It requires the PostGIS extension to
// be installable on the server.
func (db *Database) Migrate(ctx context.Context) error {
	// Simple protocol allows multiple statements in one Exec
	conn, err := db.Pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("failed to acquire connection for migration: %w", err)
	}
	defer conn.Release()

	if _, err := conn.Conn().PgConn().Exec(ctx, schemaSQL).ReadAll(); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

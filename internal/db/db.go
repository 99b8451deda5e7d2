// Package db provides read-only PostgreSQL access to the parsing service's candidate table.
package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DB wraps a PostgreSQL connection pool
type DB struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool to the database
func Connect(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{pool: pool}, nil
}

// Close closes the connection pool
func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

// Ping checks that the database is reachable
func (db *DB) Ping(ctx context.Context) error {
	return db.pool.Ping(ctx)
}

// Schema is the candidate table as written by the parsing service.
// Skills are stored as a JSON-encoded text array.
const Schema = `
CREATE TABLE IF NOT EXISTS candidates (
	id               SERIAL PRIMARY KEY,
	name             VARCHAR(255) NOT NULL,
	email            VARCHAR(255),
	phone            VARCHAR(50),
	resume_text      TEXT NOT NULL DEFAULT '',
	ai_metadata      JSON,
	skills           TEXT,
	experience_years INTEGER DEFAULT 0,
	education        TEXT,
	match_score      DOUBLE PRECISION DEFAULT 0,
	created_at       TIMESTAMP DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_candidates_name ON candidates (name);
CREATE INDEX IF NOT EXISTS idx_candidates_email ON candidates (email);
`

// EnsureSchema creates the candidate table when it does not exist.
func (db *DB) EnsureSchema(ctx context.Context) error {
	if _, err := db.pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("failed to ensure schema: %w", err)
	}
	return nil
}

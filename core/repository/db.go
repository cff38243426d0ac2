package repository

import (
	"database/sql"
	"time"

	"github.com/cockroachdb/errors"
	_ "github.com/lib/pq"
)

// DB wraps the shared Postgres connection pool used by all repositories.
type DB struct {
	*sql.DB
}

// NewDB opens and verifies a Postgres connection.
func NewDB(databaseURL string) (*DB, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, errors.Wrap(err, "open database")
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)
	if err := db.Ping(); err != nil {
		return nil, errors.Wrap(err, "ping database")
	}
	return &DB{DB: db}, nil
}

// Migrate creates the board tables when they do not exist yet. The wider
// CRM owns the canonical migrations; this bootstrap keeps a fresh
// development database usable.
func (d *DB) Migrate() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS technicians (
			id UUID PRIMARY KEY,
			name TEXT NOT NULL,
			phone TEXT NOT NULL DEFAULT '',
			active BOOLEAN NOT NULL DEFAULT TRUE
		)`,
		`CREATE TABLE IF NOT EXISTS jobs (
			id UUID PRIMARY KEY,
			customer_id UUID NOT NULL,
			customer_name TEXT NOT NULL DEFAULT '',
			customer_phone TEXT NOT NULL DEFAULT '',
			address TEXT NOT NULL DEFAULT '',
			description TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL DEFAULT 'pending',
			technician_id UUID,
			zone TEXT,
			scheduled_date DATE,
			scheduled_time_start TIME,
			scheduled_time_end TIME,
			position DOUBLE PRECISION NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_jobs_scheduled_date ON jobs (scheduled_date)`,
		`CREATE INDEX IF NOT EXISTS idx_jobs_technician_date ON jobs (technician_id, scheduled_date)`,
		`CREATE TABLE IF NOT EXISTS audit_log (
			id UUID PRIMARY KEY,
			entity_type TEXT NOT NULL,
			entity_id UUID NOT NULL,
			before_json JSONB NOT NULL DEFAULT '{}',
			after_json JSONB NOT NULL DEFAULT '{}',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
	}
	for _, stmt := range statements {
		if _, err := d.Exec(stmt); err != nil {
			return errors.Wrap(err, "run migration")
		}
	}
	return nil
}

// Package sqlstore implements the catalogue ports over sqlx for PostgreSQL
// (pgx) and SQLite (modernc). Queries are written with ? placeholders and
// rebound per driver.
package sqlstore

import (
	"fmt"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"gstrates/internal/config"
)

const (
	sqlDriverPostgres = "pgx"
	sqlDriverSQLite   = "sqlite"
)

func init() {
	sqlx.BindDriver(sqlDriverSQLite, sqlx.QUESTION)
}

var sqlitePragmas = []string{
	"PRAGMA foreign_keys=ON",
	"PRAGMA journal_mode=WAL",
	"PRAGMA busy_timeout=5000",
	"PRAGMA synchronous=NORMAL",
}

// NewDB opens the configured catalogue database.
func NewDB(cfg *config.DBConfig) (*sqlx.DB, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		db, err := sqlx.Connect(sqlDriverPostgres, cfg.DSN())
		if err != nil {
			return nil, fmt.Errorf("connecting to postgres: %w", err)
		}
		db.SetMaxOpenConns(cfg.MaxOpen)
		db.SetMaxIdleConns(cfg.MaxIdle)
		return db, nil
	case config.DriverSQLite:
		return OpenSQLite(cfg.DSN())
	default:
		return nil, fmt.Errorf("unsupported db driver %q", cfg.Driver)
	}
}

// OpenSQLite opens a SQLite database with a single connection, so the
// pragmas and in-memory databases apply to every query.
func OpenSQLite(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Connect(sqlDriverSQLite, dsn)
	if err != nil {
		return nil, fmt.Errorf("connecting to sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	for _, pragma := range sqlitePragmas {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("sqlite: exec %s: %w", pragma, err)
		}
	}
	return db, nil
}

// isUniqueViolation recognises unique-index errors from both drivers.
func isUniqueViolation(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "UNIQUE constraint failed")
}

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3" // sqlite3 driver
	"github.com/rs/zerolog"

	"hebergement/internal/config"
	"hebergement/internal/models"
)

// pgExclusionViolation is raised by the reservations_no_overlap constraint.
const pgExclusionViolation = "23P01"

// DB is the relational store backing the engine. It speaks SQLite or
// Postgres; queries are written with ? placeholders and rebound per driver.
type DB struct {
	*sql.DB
	driver string
	logger *zerolog.Logger
}

// Open connects using cfg and creates the schema.
func Open(cfg config.DatabaseConfig, logger *zerolog.Logger) (*DB, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		return NewPostgres(cfg.DSN, logger)
	case config.DriverSQLite, "":
		return NewSQLite(cfg.Path, logger)
	}
	return nil, fmt.Errorf("unsupported driver %q", cfg.Driver)
}

// NewSQLite opens (creating if needed) a SQLite database file.
func NewSQLite(path string, logger *zerolog.Logger) (*DB, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// Immediate transactions take the write lock at BEGIN so two bookings
	// cannot both pass the overlap check.
	dsn := path + "?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000&_txlock=immediate&_foreign_keys=on"
	sqlDB, err := sql.Open(config.DriverSQLite, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return initialize(sqlDB, config.DriverSQLite, logger, "path", path)
}

// NewPostgres connects to a Postgres server.
func NewPostgres(dsn string, logger *zerolog.Logger) (*DB, error) {
	sqlDB, err := sql.Open(config.DriverPostgres, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	return initialize(sqlDB, config.DriverPostgres, logger, "driver", config.DriverPostgres)
}

func initialize(sqlDB *sql.DB, driver string, logger *zerolog.Logger, key, value string) (*DB, error) {
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db := Wrap(sqlDB, driver, logger)
	if err := db.createTables(context.Background()); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	db.logger.Info().Str(key, value).Msg("Database initialized")
	return db, nil
}

// Wrap adopts an existing connection pool without migrating it.
func Wrap(sqlDB *sql.DB, driver string, logger *zerolog.Logger) *DB {
	l := logger.With().Str("component", "database").Logger()
	return &DB{DB: sqlDB, driver: driver, logger: &l}
}

// Driver returns the SQL driver name in use.
func (db *DB) Driver() string {
	return db.driver
}

func (db *DB) isPostgres() bool {
	return db.driver == config.DriverPostgres
}

// rebind rewrites ? placeholders to $n for Postgres.
func (db *DB) rebind(query string) string {
	if !db.isPostgres() {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (db *DB) createTables(ctx context.Context) error {
	queries := sqliteSchema
	if db.isPostgres() {
		queries = postgresSchema
	}
	for _, q := range queries {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("%w (query: %.60s)", err, strings.TrimSpace(q))
		}
	}
	return nil
}

// classify maps driver errors onto domain errors.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return models.ErrNotFound
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && string(pqErr.Code) == pgExclusionViolation {
		return fmt.Errorf("%w: %s", models.ErrRoomNoLongerAvailable, pqErr.Constraint)
	}
	return err
}

func formatDate(t time.Time) string {
	return models.Day(t).Format(models.DateLayout)
}

func nullDate(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return formatDate(*t)
}

func timePtr(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	d := models.Day(nt.Time)
	return &d
}

func blockingStatusArgs() (string, []interface{}) {
	placeholders := make([]string, len(models.BlockingStatuses))
	args := make([]interface{}, len(models.BlockingStatuses))
	for i, s := range models.BlockingStatuses {
		placeholders[i] = "?"
		args[i] = string(s)
	}
	return strings.Join(placeholders, ", "), args
}

// internal/storage/database.go
package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // Driver registration ("pgx")
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3" // Driver registration ("sqlite3")

	"github.com/Annany2002/projecthub-backend/config"
)

// Store bundles the shared connection pool and the repositories built on it.
// It is created once at startup and closed once on shutdown.
type Store struct {
	db       *sqlx.DB
	Users    *UserRepo
	Projects *ProjectRepo
}

// NewStore wraps an open pool. timeout bounds every storage call; zero disables it.
func NewStore(db *sqlx.DB, timeout time.Duration) *Store {
	return &Store{
		db:       db,
		Users:    &UserRepo{db: db, timeout: timeout},
		Projects: &ProjectRepo{db: db, timeout: timeout},
	}
}

// DB exposes the underlying pool.
func (s *Store) DB() *sqlx.DB { return s.db }

// Close releases the pool.
func (s *Store) Close() error { return s.db.Close() }

// Open connects using cfg, ensures the schema and returns a ready Store.
func Open(ctx context.Context, cfg *config.Config) (*Store, error) {
	db, err := Connect(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := EnsureSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return NewStore(db, cfg.DBQueryTimeout), nil
}

// Connect opens and pings the configured database.
func Connect(ctx context.Context, cfg *config.Config) (*sqlx.DB, error) {
	switch cfg.DBDriver {
	case config.DriverPostgres:
		customLog.Println("Storage: Initializing PostgreSQL database")
		db, err := sqlx.ConnectContext(ctx, config.DriverPostgres, cfg.DatabaseURL)
		if err != nil {
			customLog.Errorf("Storage: Failed to connect to postgres: %v", err)
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)
		customLog.Println("Storage: Database connection successful.")
		return db, nil
	default:
		dbPath := filepath.Join(cfg.DatabaseDir, cfg.DatabaseFile)
		customLog.Printf("Storage: Initializing database: %s", dbPath)

		// Ensure the data directory exists
		if err := os.MkdirAll(cfg.DatabaseDir, 0750); err != nil {
			customLog.Errorf("Storage: Error creating data directory '%s': %v", cfg.DatabaseDir, err)
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
		return ConnectSQLite(ctx, dbPath)
	}
}

// ConnectSQLite opens a SQLite file with foreign keys on and WAL journaling so
// the listing executor's concurrent reads do not serialize behind each other.
func ConnectSQLite(ctx context.Context, dbPath string) (*sqlx.DB, error) {
	dsn := dbPath + "?_foreign_keys=on&_journal_mode=WAL&_busy_timeout=5000"
	db, err := sqlx.ConnectContext(ctx, config.DriverSQLite, dsn)
	if err != nil {
		customLog.Errorf("Storage: Failed to open db '%s': %v", dbPath, err)
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	customLog.Println("Storage: Database connection successful.")
	return db, nil
}

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		user_name TEXT NOT NULL,
		email TEXT NOT NULL,
		password_hash TEXT NOT NULL,
		role TEXT NOT NULL DEFAULT 'USER',
		is_active BOOLEAN NOT NULL DEFAULT 1,
		status INTEGER NOT NULL DEFAULT 1,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS users_email_active_idx ON users(email) WHERE is_active = 1;`,
	`CREATE UNIQUE INDEX IF NOT EXISTS users_user_name_active_idx ON users(user_name) WHERE is_active = 1;`,
	`CREATE TABLE IF NOT EXISTS projects (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL,
		title TEXT NOT NULL,
		semester TEXT,
		link TEXT,
		file_path TEXT,
		file_name TEXT,
		file_size INTEGER,
		mime_type TEXT,
		created_by INTEGER NOT NULL,
		updated_by INTEGER NOT NULL,
		is_active BOOLEAN NOT NULL DEFAULT 1,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL,
		FOREIGN KEY (user_id) REFERENCES users(id),
		FOREIGN KEY (created_by) REFERENCES users(id)
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS projects_user_title_active_idx ON projects(user_id, title) WHERE is_active = 1;`,
}

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		user_name TEXT NOT NULL,
		email TEXT NOT NULL,
		password_hash TEXT NOT NULL,
		role TEXT NOT NULL DEFAULT 'USER',
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		status INTEGER NOT NULL DEFAULT 1,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS users_email_active_idx ON users(email) WHERE is_active;`,
	`CREATE UNIQUE INDEX IF NOT EXISTS users_user_name_active_idx ON users(user_name) WHERE is_active;`,
	`CREATE TABLE IF NOT EXISTS projects (
		id BIGSERIAL PRIMARY KEY,
		user_id BIGINT NOT NULL REFERENCES users(id),
		title TEXT NOT NULL,
		semester TEXT,
		link TEXT,
		file_path TEXT,
		file_name TEXT,
		file_size BIGINT,
		mime_type TEXT,
		created_by BIGINT NOT NULL REFERENCES users(id),
		updated_by BIGINT NOT NULL REFERENCES users(id),
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS projects_user_title_active_idx ON projects(user_id, title) WHERE is_active;`,
}

// EnsureSchema creates the users and projects tables if they do not exist.
func EnsureSchema(ctx context.Context, db *sqlx.DB) error {
	statements := sqliteSchema
	if db.DriverName() == config.DriverPostgres {
		statements = postgresSchema
	}
	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			customLog.Errorf("Storage: Failed to ensure schema: %v", err)
			return fmt.Errorf("failed to ensure schema: %w", err)
		}
	}
	customLog.Println("Storage: Schema ensured.")
	return nil
}

// now is the timestamp written on insert/update: UTC, second precision, so
// that stored values compare consistently with date-filter bounds.
func now() time.Time {
	return time.Now().UTC().Truncate(time.Second)
}

func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}

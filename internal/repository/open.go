package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"tutorials/internal/config"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"
)

// Options selects and configures the storage engine opened by Open.
type Options struct {
	Driver      string
	DSN         string
	SQLitePath  string
	Development bool
}

// Open connects to the configured store, brings its schema up to date and
// returns the repository together with a function releasing the connection.
func Open(ctx context.Context, opts Options, logger zerolog.Logger) (TutorialRepository, func() error, error) {
	switch opts.Driver {
	case config.DriverMemory:
		logger.Warn().Msg("Using in-memory tutorial store, data will not survive a restart")
		return NewMemoryTutorialRepository(), func() error { return nil }, nil
	case config.DriverSQLite:
		return openSQL(ctx, DialectSQLite, sqliteDSN(opts.SQLitePath), logger)
	case config.DriverPostgres:
		return openSQL(ctx, DialectPostgres, postgresDSN(opts.DSN, opts.Development), logger)
	default:
		return nil, nil, fmt.Errorf("unsupported storage driver %q", opts.Driver)
	}
}

func openSQL(ctx context.Context, dialect Dialect, dsn string, logger zerolog.Logger) (TutorialRepository, func() error, error) {
	db, err := sqlx.Open(dialect.driverName(), dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s connection: %w", dialect, err)
	}

	if dialect == DialectSQLite {
		// sqlite serialises writers; a single connection avoids SQLITE_BUSY
		// and keeps ":memory:" databases alive across queries.
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(25)
		db.SetConnMaxIdleTime(5 * time.Minute)
	}

	// Ping the database to ensure connection is valid
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("ping %s: %w", dialect, err)
	}
	logger.Info().Str("dialect", string(dialect)).Msg("Database connection successful")

	if err := NewMigrator(db, dialect, logger).Up(ctx); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("migrate %s: %w", dialect, err)
	}

	return NewTutorialRepository(db, dialect, logger), db.Close, nil
}

// postgresDSN adjusts the connection string for the environment. In development
// SSL is disabled unless asked for; elsewhere a transaction pooler like
// pgbouncer may sit in front, so the simple query protocol is used to avoid
// server-side prepared statements.
func postgresDSN(dsn string, development bool) string {
	if development && !strings.Contains(dsn, "sslmode") {
		dsn += dsnSeparator(dsn) + "sslmode=disable"
	}
	if !development && !strings.Contains(dsn, "default_query_exec_mode") {
		dsn += dsnSeparator(dsn) + "default_query_exec_mode=simple_protocol"
	}
	return dsn
}

func dsnSeparator(dsn string) string {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		if strings.Contains(dsn, "?") {
			return "&"
		}
		return "?"
	}
	return " "
}

func sqliteDSN(path string) string {
	if path == ":memory:" || strings.HasPrefix(path, "file:") {
		return path
	}
	return "file:" + path + "?_foreign_keys=on&_busy_timeout=5000"
}

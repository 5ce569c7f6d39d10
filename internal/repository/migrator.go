package repository

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strconv"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"
)

//go:embed migrations
var migrationsFS embed.FS

const migrationsTableName = "schema_migrations"

type Migrator struct {
	db      *sqlx.DB
	dialect Dialect
	logger  zerolog.Logger
}

func NewMigrator(db *sqlx.DB, dialect Dialect, logger zerolog.Logger) *Migrator {
	return &Migrator{db: db, dialect: dialect, logger: logger}
}

// Up applies every embedded migration for the dialect newer than the recorded schema version.
func (m *Migrator) Up(ctx context.Context) error {
	source, err := fs.Sub(migrationsFS, "migrations/"+string(m.dialect))
	if err != nil {
		return err
	}
	list, err := fs.ReadDir(source, ".")
	if err != nil {
		return err
	}
	if len(list) == 0 {
		return nil
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].Name() < list[j].Name()
	})

	if _, err := m.db.ExecContext(ctx, fmt.Sprintf(
		`CREATE TABLE IF NOT EXISTS %s (version INTEGER NOT NULL PRIMARY KEY)`, migrationsTableName)); err != nil {
		return fmt.Errorf("create %s: %w", migrationsTableName, err)
	}

	current, err := m.version(ctx)
	if err != nil {
		return err
	}
	final, err := scriptVersion(list[len(list)-1].Name())
	if err != nil {
		return err
	}
	if final > current {
		m.logger.Info().Int("migration_count", final-current).Msg("Bringing up schema migrations")
	}

	for _, f := range list {
		n := f.Name()
		v, err := scriptVersion(n)
		if err != nil {
			return err
		}
		if v <= current {
			continue
		}

		m.logger.Debug().Str("migration_name", n).Msg("Executing schema migration")
		script, err := fs.ReadFile(source, n)
		if err != nil {
			return err
		}
		if err := m.apply(ctx, v, string(script)); err != nil {
			return fmt.Errorf("migration %s: %w", n, err)
		}
		current = v
	}
	return nil
}

func (m *Migrator) version(ctx context.Context) (int, error) {
	var v int
	query := fmt.Sprintf(`SELECT COALESCE(MAX(version), 0) FROM %s`, migrationsTableName)
	if err := m.db.GetContext(ctx, &v, query); err != nil {
		return 0, err
	}
	return v, nil
}

func (m *Migrator) apply(ctx context.Context, version int, script string) error {
	tx, err := m.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, script); err != nil {
		tx.Rollback()
		return err
	}
	insert := m.db.Rebind(fmt.Sprintf(`INSERT INTO %s (version) VALUES (?)`, migrationsTableName))
	if _, err := tx.ExecContext(ctx, insert, version); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

// extract the version number as an integer from a file named like "0002_migration_name.sql"
func scriptVersion(filename string) (int, error) {
	return strconv.Atoi(strings.Split(filename, "_")[0])
}

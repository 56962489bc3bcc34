package db

import (
	"database/sql"
	"embed"
	"path"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/teranos/wdlint/errors"
	"github.com/teranos/wdlint/logger"
)

//go:embed sqlite/migrations/*.sql
var migrations embed.FS

const migrationsDir = "sqlite/migrations"

// migration is one embedded schema file, e.g. 001_create_entities.sql.
type migration struct {
	version string
	file    string
}

// Migrate brings the cache schema up to date. Every embedded migration not
// yet recorded in schema_migrations runs in its own transaction, in version
// order; 000 creates schema_migrations itself.
func Migrate(conn *sql.DB, log *zap.SugaredLogger) error {
	log = logger.OrNop(log).With(logger.FieldComponent, "db")

	pending, err := embeddedMigrations()
	if err != nil {
		return err
	}

	applied := 0
	for _, m := range pending {
		done, err := isApplied(conn, m)
		if err != nil {
			return err
		}
		if done {
			continue
		}
		log.Debugw("Applying migration", logger.FieldFile, m.file)
		if err := apply(conn, m); err != nil {
			return err
		}
		applied++
	}

	log.Debugw("Cache schema up to date",
		logger.FieldCount, applied,
		"known", len(pending),
	)
	return nil
}

// embeddedMigrations lists the migration files sorted by version.
func embeddedMigrations() ([]migration, error) {
	entries, err := migrations.ReadDir(migrationsDir)
	if err != nil {
		return nil, errors.Wrap(err, "read migrations")
	}
	var out []migration
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".sql") {
			continue
		}
		version, _, ok := strings.Cut(name, "_")
		if !ok {
			return nil, errors.Newf("migration %s has no version prefix", name)
		}
		out = append(out, migration{version: version, file: name})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].version < out[j].version })
	return out, nil
}

// isApplied checks schema_migrations. Before 000 has run the table does not
// exist, which only 000 may tolerate.
func isApplied(conn *sql.DB, m migration) (bool, error) {
	var exists bool
	err := conn.QueryRow("SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE version = ?)", m.version).Scan(&exists)
	switch {
	case err == nil:
		return exists, nil
	case IsDatabaseClosed(err):
		return false, errors.Wrapf(err, "check %s", m.file)
	case m.version == "000":
		return false, nil
	}
	return false, errors.Newf("schema_migrations table missing, but migration is not 000: %s", m.file)
}

func apply(conn *sql.DB, m migration) error {
	body, err := migrations.ReadFile(path.Join(migrationsDir, m.file))
	if err != nil {
		return errors.Wrapf(err, "read %s", m.file)
	}

	tx, err := conn.Begin()
	if err != nil {
		return errors.Wrapf(err, "begin tx for %s", m.file)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(string(body)); err != nil {
		return errors.Wrapf(err, "execute %s", m.file)
	}
	if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", m.version); err != nil {
		return errors.Wrapf(err, "record %s", m.file)
	}
	return errors.Wrapf(tx.Commit(), "commit %s", m.file)
}

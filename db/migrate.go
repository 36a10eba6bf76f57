package db

import (
	"database/sql"
	"embed"
	"io/fs"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/teranos/libref/errors"
)

//go:embed sqlite/migrations/*.sql
var migrations embed.FS

// migration is one embedded schema file, NNN_description.sql.
type migration struct {
	version string
	name    string
}

// Migrate applies the embedded migrations not yet recorded in
// schema_migrations, each in its own transaction, in version order.
// Migration 000 creates schema_migrations itself.
func Migrate(db *sql.DB, logger *zap.SugaredLogger) error {
	all, err := embeddedMigrations()
	if err != nil {
		return err
	}
	applied, err := appliedVersions(db)
	if err != nil {
		return err
	}

	pending := 0
	for _, m := range all {
		if applied[m.version] {
			continue
		}
		if len(applied) == 0 && m.version != "000" && pending == 0 {
			return errors.Newf("schema_migrations table missing, but first migration is %s", m.name)
		}
		if err := apply(db, m); err != nil {
			return err
		}
		pending++
		if logger != nil {
			logger.Debugw("Applied migration", "migration", m.name, "version", m.version)
		}
	}

	if logger != nil && pending > 0 {
		logger.Debugw("Migrations complete", "applied", pending, "total_migrations", len(all))
	}
	return nil
}

func embeddedMigrations() ([]migration, error) {
	names, err := fs.Glob(migrations, "sqlite/migrations/*.sql")
	if err != nil {
		return nil, errors.Wrap(err, "read migrations")
	}
	sort.Strings(names)

	out := make([]migration, 0, len(names))
	for _, name := range names {
		base := name[strings.LastIndex(name, "/")+1:]
		version, _, _ := strings.Cut(base, "_")
		out = append(out, migration{version: version, name: name})
	}
	return out, nil
}

// appliedVersions returns the recorded versions. A database without
// schema_migrations has none.
func appliedVersions(db *sql.DB) (map[string]bool, error) {
	applied := map[string]bool{}

	var n int
	err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'schema_migrations'").Scan(&n)
	if err != nil {
		return nil, errors.Wrap(err, "inspect schema")
	}
	if n == 0 {
		return applied, nil
	}

	rows, err := db.Query("SELECT version FROM schema_migrations")
	if err != nil {
		return nil, errors.Wrap(err, "read schema_migrations")
	}
	defer rows.Close()
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, errors.Wrap(err, "scan schema_migrations")
		}
		applied[v] = true
	}
	return applied, rows.Err()
}

func apply(db *sql.DB, m migration) error {
	body, err := migrations.ReadFile(m.name)
	if err != nil {
		return errors.Wrapf(err, "read %s", m.name)
	}

	tx, err := db.Begin()
	if err != nil {
		return errors.Wrapf(err, "begin tx for %s", m.name)
	}
	if _, err := tx.Exec(string(body)); err != nil {
		tx.Rollback()
		return errors.Wrapf(err, "execute %s", m.name)
	}
	if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", m.version); err != nil {
		tx.Rollback()
		return errors.Wrapf(err, "record %s", m.name)
	}
	return errors.Wrapf(tx.Commit(), "commit %s", m.name)
}

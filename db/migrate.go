package db

import (
	"database/sql"
	"embed"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/cartops/proctools/errors"
)

//go:embed sqlite/migrations/*.sql
var migrations embed.FS

// Migrate applies every migration file not yet recorded in
// schema_migrations, in filename order. The first migration creates the
// version table itself, so a fresh database simply has no versions yet.
// If logger is provided, logs migration progress; otherwise operates
// silently.
func Migrate(database *sql.DB, logger *zap.SugaredLogger) error {
	filenames, err := migrationFilenames()
	if err != nil {
		return err
	}
	applied, err := appliedVersions(database)
	if err != nil {
		return err
	}

	pending := 0
	for _, filename := range filenames {
		version, _, _ := strings.Cut(filename, "_")
		if applied[version] {
			if logger != nil {
				logger.Debugw("Skipping migration (already applied)",
					"migration", filename,
					"version", version,
				)
			}
			continue
		}
		if err := applyMigration(database, filename, version, logger); err != nil {
			return err
		}
		pending++
	}

	if logger != nil {
		logger.Infow("Migrations complete",
			"applied", pending,
			"total_migrations", len(filenames),
		)
	}
	return nil
}

// migrationFilenames lists the embedded migration files in apply order.
func migrationFilenames() ([]string, error) {
	entries, err := migrations.ReadDir("sqlite/migrations")
	if err != nil {
		return nil, errors.Wrap(err, "read migrations")
	}
	var filenames []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".sql") {
			filenames = append(filenames, entry.Name())
		}
	}
	sort.Strings(filenames)
	return filenames, nil
}

// appliedVersions returns the set of recorded migration versions. A missing
// schema_migrations table means a fresh database: nothing applied.
func appliedVersions(database *sql.DB) (map[string]bool, error) {
	versions := map[string]bool{}
	rows, err := database.Query("SELECT version FROM schema_migrations")
	if err != nil {
		if strings.Contains(err.Error(), "no such table") {
			return versions, nil
		}
		return nil, errors.Wrap(err, "query applied migrations")
	}
	defer rows.Close()
	for rows.Next() {
		var version string
		if err := rows.Scan(&version); err != nil {
			return nil, errors.Wrap(err, "scan migration version")
		}
		versions[version] = true
	}
	return versions, rows.Err()
}

// applyMigration executes one migration file and records its version, both
// inside a single transaction.
func applyMigration(database *sql.DB, filename, version string, logger *zap.SugaredLogger) error {
	sqlBytes, err := migrations.ReadFile(filepath.Join("sqlite/migrations", filename))
	if err != nil {
		return errors.Wrapf(err, "read %s", filename)
	}
	if logger != nil {
		logger.Infow("Applying migration",
			"migration", filename,
			"version", version,
		)
	}

	tx, err := database.Begin()
	if err != nil {
		return errors.Wrapf(err, "begin tx for %s", filename)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(string(sqlBytes)); err != nil {
		return errors.Wrapf(err, "execute %s", filename)
	}
	if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
		return errors.Wrapf(err, "record %s", filename)
	}
	return errors.Wrapf(tx.Commit(), "commit %s", filename)
}
